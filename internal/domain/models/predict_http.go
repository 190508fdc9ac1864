package models

// Requests for prediction HTTP endpoints. Defined in domain for consistency and reuse.

type PredictRequest struct {
	Ticker string `query:"ticker" json:"ticker" validate:"required,ticker"`
	Period string `query:"period" json:"period" validate:"omitempty,period"`
}

type FeaturesRequest struct {
	Ticker   string `query:"ticker" json:"ticker" validate:"required,ticker"`
	Period   string `query:"period" json:"period" validate:"omitempty,period"`
	Limit    int    `query:"limit" json:"limit" default:"60" validate:"gte=1,lte=2000"`
	Complete bool   `query:"complete" json:"complete"`
}

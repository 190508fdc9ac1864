package http

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"StockPulse/pkg/util"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report fields by the name clients send
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"query", "json"} {
			if name, _, _ := strings.Cut(f.Tag.Get(tag), ","); name != "" && name != "-" {
				return name
			}
		}
		return f.Name
	})
	_ = v.RegisterValidation("period", func(fl validator.FieldLevel) bool {
		return util.ValidPeriod(fl.Field().String())
	})
	_ = v.RegisterValidation("ticker", func(fl validator.FieldLevel) bool {
		return util.ValidTicker(fl.Field().String())
	})
	return v
}

// ReadAndValidateRequest binds c into req, fills defaults and validates it. A
// non-nil result is the []ValidationError to send back with a 400.
func ReadAndValidateRequest(c echo.Context, req interface{}) interface{} {
	if err := c.Bind(req); err != nil {
		return toValidationErrors(err)
	}
	if err := defaults.Set(req); err != nil {
		return toValidationErrors(err)
	}
	if err := validate.StructCtx(c.Request().Context(), req); err != nil {
		return toValidationErrors(err)
	}
	return nil
}

func toValidationErrors(err error) []ValidationError {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		out := make([]ValidationError, len(fieldErrs))
		for i, fe := range fieldErrs {
			out[i] = ValidationError{
				Code:    "ERR_" + strings.ToUpper(fe.Tag()),
				Field:   fe.Field(),
				Message: fieldMessage(fe),
				Params:  fieldParams(fe),
			}
		}
		return out
	}

	msg := err.Error()
	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg = fmt.Sprint(he.Message)
	}
	return []ValidationError{{Code: "ERR_UNKNOWN", Message: msg}}
}

// ruleText completes "<field> must ..." for rules that take a parameter.
var ruleText = map[string]string{
	"gt":    "be greater than %s",
	"gte":   "be at least %s",
	"lt":    "be less than %s",
	"lte":   "be at most %s",
	"oneof": "be one of: %s",
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch tag := fe.Tag(); tag {
	case "required":
		return field + " is required"
	case "period":
		return field + " must be one of 1mo, 3mo, 6mo, 1y, 2y, 5y, max or a day count like 120d"
	case "ticker":
		return field + " must be a ticker symbol such as AAPL, BRK-B or ^GSPC"
	case "min", "max":
		unit := ""
		if fe.Kind() == reflect.String {
			unit = " characters"
		}
		bound := map[string]string{"min": "at least", "max": "at most"}[tag]
		return fmt.Sprintf("%s must be %s %s%s", field, bound, fe.Param(), unit)
	default:
		if text, ok := ruleText[tag]; ok {
			param := strings.ReplaceAll(fe.Param(), " ", ", ")
			return field + " must " + fmt.Sprintf(text, param)
		}
		return fmt.Sprintf("%s failed validation: %s", field, tag)
	}
}

func fieldParams(fe validator.FieldError) map[string]interface{} {
	switch fe.Tag() {
	case "min", "gte":
		return map[string]interface{}{"min": fe.Param()}
	case "max", "lte":
		return map[string]interface{}{"max": fe.Param()}
	case "gt", "lt":
		return map[string]interface{}{"value": fe.Param()}
	case "oneof":
		return map[string]interface{}{"options": strings.Fields(fe.Param())}
	}
	return nil
}

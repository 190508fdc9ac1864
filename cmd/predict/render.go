package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"StockPulse/internal/domain/models"
	"StockPulse/internal/handler/api"
)

type report struct {
	Prediction api.PredictionResponse   `json:"prediction"`
	Features   []api.FeatureRowResponse `json:"features,omitempty"`
}

func renderText(w io.Writer, r report) error {
	p := r.Prediction
	arrow := "▲"
	if p.Prediction == string(models.DirectionDown) {
		arrow = "▼"
	}
	if _, err := fmt.Fprintf(w, "%s %s %s\n", p.Ticker, arrow, p.Prediction); err != nil {
		return err
	}
	fmt.Fprintf(w, "  probability up  %.2f%%\n", p.ProbabilityUp*100)
	fmt.Fprintf(w, "  confidence      %s\n", p.Confidence)
	fmt.Fprintf(w, "  threshold       %.2f\n", p.Threshold)
	fmt.Fprintf(w, "  as of           %s\n", p.AsOf)

	if len(r.Features) == 0 {
		return nil
	}
	fmt.Fprintln(w)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "Date\tClose\t%s\t\n", strings.Join(models.FeatureNames, "\t"))
	for _, row := range r.Features {
		cells := make([]string, 0, len(models.FeatureNames))
		for _, name := range models.FeatureNames {
			cells = append(cells, formatCell(row.Features[name]))
		}
		fmt.Fprintf(tw, "%s\t%.2f\t%s\t\n", row.Date, row.Close, strings.Join(cells, "\t"))
	}
	return tw.Flush()
}

func formatCell(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.4f", *v)
}

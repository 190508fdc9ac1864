// Command predict runs one direction prediction from the terminal.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"StockPulse/internal/di"
	"StockPulse/internal/handler/api"
	"StockPulse/pkg/config"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	ticker := flag.String("ticker", "", "ticker symbol, e.g. AAPL")
	period := flag.String("period", "", "lookback period (1mo, 3mo, 6mo, 1y, 2y, 5y, max or Nd)")
	nFeatures := flag.Int("features", 0, "print the last N feature rows")
	asJSON := flag.Bool("json", false, "print JSON instead of text")
	verbose := flag.Bool("v", false, "log pipeline events to stderr")
	flag.Parse()

	if *ticker == "" && flag.NArg() > 0 {
		*ticker = flag.Arg(0)
	}
	if *ticker == "" {
		fmt.Fprintln(os.Stderr, "usage: predict -ticker AAPL [-period 3mo] [-features 10] [-json]")
		return 2
	}

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		return 1
	}
	cfg.Logger.Output = "stderr"
	cfg.Logger.Format = "console"
	if !*verbose {
		cfg.Logger.Level = "warn"
	}
	cfg.Metrics.Enabled = false

	p, err := di.InitializePipeline(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "initialization failed: %v\n", err)
		return 1
	}
	defer func() { _ = p.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := p.UseCase.Predict(ctx, *ticker, *period)
	if err != nil {
		fmt.Fprintf(os.Stderr, "prediction failed: %s\n", api.ToAppError(err).Message)
		fmt.Fprintf(os.Stderr, "  %v\n", err)
		return 1
	}

	out := report{Prediction: api.NewPredictionResponse(res)}
	if *nFeatures > 0 {
		table, err := p.UseCase.Features(ctx, *ticker, *period, *nFeatures, false)
		if err != nil {
			fmt.Fprintf(os.Stderr, "features failed: %v\n", err)
			return 1
		}
		for _, row := range table.Rows {
			out.Features = append(out.Features, api.NewFeatureRowResponse(row))
		}
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			fmt.Fprintf(os.Stderr, "encode: %v\n", err)
			return 1
		}
		return 0
	}
	if err := renderText(os.Stdout, out); err != nil {
		fmt.Fprintf(os.Stderr, "write: %v\n", err)
		return 1
	}
	return 0
}

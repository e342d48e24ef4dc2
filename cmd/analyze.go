package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sunledger/sunledger/app"
	"github.com/sunledger/sunledger/config"
	"github.com/sunledger/sunledger/core/aggregate"
	"github.com/sunledger/sunledger/infra/logger"
	"github.com/sunledger/sunledger/pkg/export"
)

var analyzeOut string

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run the full loss analysis over the stored table",
	RunE:  runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeOut, "out", "o", ".", "output directory for summary tables")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	log := logger.New("analyze-command")
	defer func() {
		if err := svc.Close(); err != nil {
			log.Errorf("service close: %v", err)
		}
	}()

	go func() {
		if err := svc.StartMetricsServer(ctx); err != nil {
			log.Errorf("metrics server: %v", err)
		}
	}()

	res, err := svc.Analyze(ctx)
	if err != nil {
		return err
	}

	log.Infof("loss ratio: mean %.3f, median %.3f over %d hours (%.1f%% at capacity, %.1f%% zero output)",
		res.Loss.Summary.Mean, res.Loss.Summary.Median, res.Loss.Summary.Count,
		res.Loss.Summary.FracAtZero*100, res.Loss.Summary.FracAtOne*100)
	if res.Beta != nil {
		log.Infof("loss distribution: Beta(%.2f, %.2f) over %d interior hours",
			res.Beta.Alpha, res.Beta.Beta, res.Beta.Interior)
	}
	if res.Trend != nil {
		log.Infof("degradation: %.2f%% per year across %d complete years",
			res.Trend.PercentPerYear, res.Trend.Years)
	}

	return writeTables(analyzeOut, res.Annual, res.Weekly)
}

func writeTables(dir string, annual []aggregate.AnnualSummary, weekly []aggregate.WeeklySummary) error {
	writers := []struct {
		name  string
		write func(f *os.File) error
	}{
		{"annual.csv", func(f *os.File) error { return export.WriteAnnualCSV(f, annual) }},
		{"annual.json", func(f *os.File) error { return export.WriteAnnualJSON(f, annual) }},
		{"weekly.csv", func(f *os.File) error { return export.WriteWeeklyCSV(f, weekly) }},
		{"weekly.json", func(f *os.File) error { return export.WriteWeeklyJSON(f, weekly) }},
	}
	for _, w := range writers {
		f, err := os.Create(filepath.Join(dir, w.name))
		if err != nil {
			return err
		}
		if err := w.write(f); err != nil {
			_ = f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
	}
	return nil
}

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sunledger/sunledger/app"
	"github.com/sunledger/sunledger/config"
	"github.com/sunledger/sunledger/infra/logger"
	"github.com/sunledger/sunledger/pkg/export"
)

var (
	reportWeek int
	reportJSON bool
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Compare one ISO week's output across all years",
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().IntVarP(&reportWeek, "week", "w", 0, "ISO week number (1-53), required")
	reportCmd.Flags().BoolVar(&reportJSON, "json", false, "emit JSON instead of CSV")
	_ = reportCmd.MarkFlagRequired("week")
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
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
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("main").Errorf("service close: %v", err)
		}
	}()

	rep, err := svc.WeeklyReport(ctx, reportWeek)
	if err != nil {
		return err
	}
	if reportJSON {
		return export.WriteReportJSON(os.Stdout, rep)
	}
	return export.WriteReportCSV(os.Stdout, rep)
}

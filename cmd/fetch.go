package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sunledger/sunledger/app"
	"github.com/sunledger/sunledger/config"
	"github.com/sunledger/sunledger/infra/logger"
)

var (
	fetchFrom string
	fetchTo   string
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch meter data from the utility API into the local archive",
	RunE:  runFetch,
}

func init() {
	fetchCmd.Flags().StringVar(&fetchFrom, "from", "", "start date (YYYY-MM-DD), required")
	fetchCmd.Flags().StringVar(&fetchTo, "to", "", "end date (YYYY-MM-DD), defaults to today")
	_ = fetchCmd.MarkFlagRequired("from")
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	from, err := time.ParseInLocation("2006-01-02", fetchFrom, time.UTC)
	if err != nil {
		return fmt.Errorf("parse --from: %w", err)
	}
	to := time.Now().UTC().Truncate(24 * time.Hour)
	if fetchTo != "" {
		if to, err = time.ParseInLocation("2006-01-02", fetchTo, time.UTC); err != nil {
			return fmt.Errorf("parse --to: %w", err)
		}
	}
	// The end date is inclusive: fetch through the last hour of that day.
	to = to.Add(24 * time.Hour)

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
	return svc.Fetch(ctx, from, to)
}

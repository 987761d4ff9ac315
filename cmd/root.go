package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"charityfund/config"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	flagJSON  bool
	flagActor string
)

var rootCmd = &cobra.Command{
	Use:   "charityfund",
	Short: "Donation allocation engine",
	Long:  "Record donations, allocate them across needs and beneficiaries, and report on the ledger.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLogging(config.Get())
	},
	SilenceUsage: true,
}

// Execute is the main entry point called from main.go.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Print results as JSON")
	rootCmd.PersistentFlags().StringVar(&flagActor, "actor", "", "Actor recorded on allocations")
}

func setupLogging(cfg *config.Config) error {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	log.SetLevel(level)

	if cfg.LogFormat == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	log.SetOutput(os.Stderr)
	return nil
}

func actorFlag() *string {
	if flagActor == "" {
		return nil
	}
	return &flagActor
}

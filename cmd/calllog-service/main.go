package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	_ "calllog/cmd/calllog-service/docs"
	"calllog/internal/calllog"
	"calllog/internal/config"
	"calllog/internal/logger"
	"calllog/pkg/bootstrap"
	"calllog/pkg/logging"
	"calllog/pkg/models"
)

var (
	configFile string
)

// @title           Call Log Service API
// @version         1.0
// @description     Filtered, newest-first access to the call history
// @termsOfService  http://swagger.io/terms/

// @contact.name   API Support
// @contact.url    http://www.example.com/support
// @contact.email  support@example.com

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:8080
// @BasePath  /api/v1

// @schemes   http https

func main() {
	rootCmd := &cobra.Command{
		Use:   "calllog-service",
		Short: "Call log query service",
		Long:  "Call Log Service answers filtered queries over the call history via HTTP and Kafka",
		RunE:  serveCmd().RunE,
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to config file (required)")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(queryCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setup loads the config and builds the logger shared by every command.
func setup() (*config.Config, logger.Logger, error) {
	earlyLog := logging.NewEarlyLog()

	if configFile == "" {
		configFile = os.Getenv("CONFIG_FILE")
		if configFile == "" {
			earlyLog.Error("Config file is required. Use --config flag or CONFIG_FILE environment variable")
			return nil, nil, fmt.Errorf("config file is required")
		}
	}

	cfg, err := config.Load(configFile)
	if err != nil {
		earlyLog.Error("Failed to load config: %v", err)
		return nil, nil, err
	}

	log, err := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		earlyLog.Error("Failed to init logger: %v", err)
		return nil, nil, err
	}

	return cfg, log, nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the call log service",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			defer log.Sync()

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			log.InfowCtx(ctx, "Starting Call Log Service", "source", cfg.Source.Type)

			app := NewApp(cfg, log)
			if err := app.Initialize(ctx); err != nil {
				log.Fatalf("Failed to initialize application: %v", err)
			}

			log.InfowCtx(ctx, "Service running")
			if err := app.Run(ctx); err != nil && err != context.Canceled {
				log.ErrorwCtx(ctx, "Service stopped with error", "error", err)
				return err
			}
			log.InfowCtx(ctx, "Service shutdown complete")
			return nil
		},
	}
}

type queryFlags struct {
	limit        int
	minTimestamp string
	maxTimestamp string
	types        string
	phoneNumbers string
	expression   string
}

// spec keeps flags the user did not set absent, as an omitted query
// parameter would be.
func (f *queryFlags) spec(cmd *cobra.Command) *models.FilterSpec {
	optional := func(name, value string) *string {
		if !cmd.Flags().Changed(name) {
			return nil
		}
		return &value
	}

	return &models.FilterSpec{
		MinTimestamp: optional("min-timestamp", f.minTimestamp),
		MaxTimestamp: optional("max-timestamp", f.maxTimestamp),
		Types:        optional("types", f.types),
		PhoneNumbers: optional("phone-numbers", f.phoneNumbers),
		Expression:   optional("expression", f.expression),
	}
}

func queryCmd() *cobra.Command {
	flags := &queryFlags{}

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Run a single call log query and print the records as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			defer log.Sync()

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			connector := bootstrap.NewDatabaseConnector(cfg, log)
			conns, err := connector.Connect(ctx)
			if err != nil {
				return fmt.Errorf("failed to connect call store: %w", err)
			}
			defer connector.ShutdownDatabases(context.Background(), conns)

			service, err := buildService(cfg, conns, log)
			if err != nil {
				return err
			}

			limit := flags.limit
			if !cmd.Flags().Changed("limit") {
				limit = cfg.CallLog.DefaultLimit
			}

			records, err := service.LoadWithFilter(ctx, limit, flags.spec(cmd))
			if err != nil {
				return err
			}

			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			return encoder.Encode(models.CallLogResponse{
				Count:   len(records),
				Records: calllog.ToMaps(records),
			})
		},
	}

	cmd.Flags().IntVar(&flags.limit, "limit", -1, "Maximum number of records, negative for no limit")
	cmd.Flags().StringVar(&flags.minTimestamp, "min-timestamp", "", `Lower bound in epoch milliseconds, "0" for none`)
	cmd.Flags().StringVar(&flags.maxTimestamp, "max-timestamp", "", `Upper bound in epoch milliseconds, "-1" for none`)
	cmd.Flags().StringVar(&flags.types, "types", "", `JSON list of call types, e.g. '["INCOMING","MISSED"]'`)
	cmd.Flags().StringVar(&flags.phoneNumbers, "phone-numbers", "", `JSON list of phone numbers`)
	cmd.Flags().StringVar(&flags.expression, "expression", "", "CEL expression over call")

	return cmd
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/carllingstrom/AI-Delning-sub001/internal/config"
	"github.com/carllingstrom/AI-Delning-sub001/internal/database"
	"github.com/carllingstrom/AI-Delning-sub001/internal/metrics"
	"github.com/carllingstrom/AI-Delning-sub001/internal/project"
	"github.com/carllingstrom/AI-Delning-sub001/internal/scenario"
	"github.com/carllingstrom/AI-Delning-sub001/internal/server"
	"github.com/carllingstrom/AI-Delning-sub001/internal/service"
	"github.com/carllingstrom/AI-Delning-sub001/pkg/constants"
	"github.com/carllingstrom/AI-Delning-sub001/pkg/output"
	"github.com/carllingstrom/AI-Delning-sub001/pkg/validation"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

var args struct {
	configPath   string
	logLevel     string
	inputPath    string
	outputFormat string
}

var Cmd = &cobra.Command{
	Use:           "impact-valuation",
	Short:         "Value project effects and project them onto more organizations",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var calcCmd = &cobra.Command{
	Use:   "calc",
	Short: "Compute ROI and scaled impact for a scenario file",
	RunE:  runCalc,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the valuation HTTP API",
	RunE:  runServe,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version)
	},
}

func init() {
	flags := Cmd.PersistentFlags()
	flags.StringVar(&args.configPath, "config", constants.DefaultConfigFile, "path to configuration file")
	flags.StringVar(&args.logLevel, "log-level", "", "log level override (debug, info, warn, error)")

	calcCmd.Flags().StringVar(&args.inputPath, "input", "", "path to scenario file")
	calcCmd.Flags().StringVar(&args.outputFormat, "output-format", "", "type of output override: pretty, csv, json")
	_ = calcCmd.MarkFlagRequired("input")
	_ = calcCmd.RegisterFlagCompletionFunc("output-format", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{constants.OutputFormatPretty, constants.OutputFormatCSV, constants.OutputFormatJSON}, cobra.ShellCompDirectiveDefault
	})

	Cmd.AddCommand(calcCmd, serveCmd, versionCmd)
}

func main() {
	if err := Cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "{\"op\": \"main\", \"level\": \"fatal\", \"error\": %q}\n", err.Error())
		os.Exit(1)
	}
}

// setup loads the configuration and builds the logger, logging any
// configuration warnings.
func setup() (*config.Configuration, *zap.Logger, error) {
	conf, err := config.LoadConfiguration(args.configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration at %s: %w", args.configPath, err)
	}

	logger, err := initializeLogger(conf.Logging, args.logLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	for _, warning := range conf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}
	return conf, logger, nil
}

func runCalc(cmd *cobra.Command, _ []string) error {
	conf, logger, err := setup()
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	// CLI override takes precedence over config
	outputFormat := conf.Output.Format
	if args.outputFormat != "" {
		outputFormat = args.outputFormat
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}
	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		return err
	}

	file, err := scenario.Load(args.inputPath)
	if err != nil {
		return err
	}

	svc := service.New(nil, conf.Valuation, nil, logger)
	result, err := svc.CalculateStateless(cmd.Context(), file.Request())
	if err != nil {
		logger.Error("failed to compute valuation",
			zap.String("op", "main.runCalc"),
			zap.Error(err),
		)
		return err
	}

	return output.Write(cmd.OutOrStdout(), outputFormat, output.Report{
		Name:   file.Name,
		ROI:    result.ROI,
		Scaled: result.Scaled,
	})
}

func runServe(cmd *cobra.Command, _ []string) error {
	conf, logger, err := setup()
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	db, err := database.Open(conf.Database)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(db); err != nil {
			logger.Warn("failed to close database", zap.String("op", "main.runServe"), zap.Error(err))
		}
	}()

	store := project.NewStore(db, logger)
	if conf.Database.AutoMigrate {
		if err := store.Migrate(); err != nil {
			return err
		}
	}

	serverConfig, err := server.NewConfig(conf.Server)
	if err != nil {
		return err
	}

	m := metrics.New()
	handler := server.NewHandler(server.Options{
		Service: service.New(store, conf.Valuation, m, logger),
		Config:  serverConfig,
		Metrics: m,
		Logger:  logger,
		Version: version,
		Health: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return server.Run(ctx, serverConfig, handler, logger)
}

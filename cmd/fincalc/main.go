package main

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"
	"strings"

	"github.com/iwvelando/fincalc/internal/assistant"
	"github.com/iwvelando/fincalc/internal/calculators"
	"github.com/iwvelando/fincalc/internal/config"
	"github.com/iwvelando/fincalc/internal/history"
	"github.com/iwvelando/fincalc/internal/predict"
	"github.com/iwvelando/fincalc/pkg/constants"
	"github.com/iwvelando/fincalc/pkg/validation"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// app carries the state shared by every command once the configuration and
// logger are loaded.
type app struct {
	configPath   string
	outputFormat string
	logLevel     string

	conf     *config.Configuration
	logger   *zap.Logger
	format   string
	registry *calculators.Registry
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	conf, err := config.LoadConfiguration(a.configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration at %s: %w", a.configPath, err)
	}
	warnings, err := conf.Validate()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := initializeLogger(conf.Logging, a.logLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	for _, warning := range warnings {
		logger.Info("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	format := strings.ToLower(conf.Output.Format)
	if a.outputFormat != "" {
		format = a.outputFormat
	}
	if format == "" {
		format = constants.OutputFormatPretty
	}
	if err := validation.ValidateOutputFormat(format); err != nil {
		return err
	}

	a.conf = conf
	a.logger = logger
	a.format = format
	a.registry = calculators.NewRegistry(calculators.Options{FuelProjectionSeed: conf.Fuel.ProjectionSeed})
	return nil
}

func (a *app) teardown(*cobra.Command, []string) {
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

// openHistory returns the configured store and a recorder around it. The
// returned close function drains pending saves before releasing the store.
func (a *app) openHistory(ctx context.Context) (*history.Recorder, func(), error) {
	var store history.Store
	closeStore := func() error { return nil }

	switch strings.ToLower(a.conf.History.Backend) {
	case constants.HistoryBackendRedis:
		redisStore := history.NewRedisStore(history.RedisOptions{
			Address:   a.conf.History.RedisAddress,
			Password:  a.conf.History.RedisPassword,
			DB:        a.conf.History.RedisDB,
			KeyPrefix: a.conf.History.KeyPrefix,
		})
		if err := redisStore.Ping(ctx); err != nil {
			_ = redisStore.Close()
			return nil, nil, fmt.Errorf("failed to reach redis at %s: %w", a.conf.History.RedisAddress, err)
		}
		store = redisStore
		closeStore = redisStore.Close
	default:
		store = history.NewMemoryStore()
	}

	recorder := history.NewRecorder(store, a.conf.History.SaveTimeout, a.logger)
	return recorder, func() {
		recorder.Wait()
		if err := closeStore(); err != nil {
			a.logger.Warn("failed to close history store",
				zap.String("op", "main.openHistory"),
				zap.Error(err),
			)
		}
	}, nil
}

func (a *app) assistantClient() *assistant.Client {
	return assistant.NewClient(assistant.Config{
		Endpoint: a.conf.Assistant.Endpoint,
		APIKey:   a.conf.Assistant.APIKey,
		Model:    a.conf.Assistant.Model,
		Timeout:  a.conf.Assistant.Timeout,
	}, a.logger)
}

func (a *app) loanClient() *predict.LoanClient {
	if strings.TrimSpace(a.conf.Predictor.LoanEndpoint) == "" {
		return nil
	}
	return predict.NewLoanClient(a.conf.Predictor.LoanEndpoint, a.conf.Predictor.Timeout, a.logger)
}

func (a *app) propertyPredictor(client *assistant.Client) *predict.PropertyPredictor {
	if !client.Enabled() {
		return nil
	}
	return predict.NewPropertyPredictor(client, a.logger)
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "fincalc",
		Short: "Personal finance calculators",
		Long: "Loan, investment, retirement and household budget calculators with " +
			"calculation history, a calculator assistant and prediction services.",
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: a.teardown,
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", constants.DefaultConfigFile, "path to configuration file")
	root.PersistentFlags().StringVar(&a.outputFormat, "output-format", "", "type of output override: pretty, csv, json, yaml")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level override (debug, info, warn, error)")

	root.AddCommand(
		newCalcCmd(a),
		newBatchCmd(a),
		newCalculatorsCmd(a),
		newHistoryCmd(a),
		newAskCmd(a),
		newPredictCmd(a),
		newServeCmd(a),
		versionCmd(),
	)
	return root
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		// The root pre-run loads configuration, which version does not need.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "fincalc %s (commit %s, built %s)\n", version, commit, date)
			if info := buildInfo(); info != "" {
				fmt.Fprintln(cmd.OutOrStdout(), info)
			}
		},
	}
}

func buildInfo() string {
	if bi, ok := debug.ReadBuildInfo(); ok && bi != nil && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		return "module " + bi.Main.Path + " " + bi.Main.Version
	}
	return ""
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/iwvelando/fincalc/internal/calculators"
	"github.com/iwvelando/fincalc/pkg/output"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// parseParams turns repeated key=value flags into calculator params. Values
// stay strings; the calculators decode them weakly.
func parseParams(pairs []string) (calculators.Params, error) {
	params := make(calculators.Params, len(pairs))
	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !found || key == "" {
			return nil, fmt.Errorf("invalid param %q: expected key=value", pair)
		}
		params[key] = strings.TrimSpace(value)
	}
	return params, nil
}

func newCalcCmd(a *app) *cobra.Command {
	var (
		pairs         []string
		user          string
		showAnalytics bool
		showSchedule  bool
	)

	cmd := &cobra.Command{
		Use:   "calc <type>",
		Short: "Run one calculator",
		Long: "Run one calculator with --param key=value inputs. List inputs such as " +
			"appliances or expenses take a JSON array, e.g. " +
			`--param 'expenses=[{"name":"Rent","amount":15000}]'.`,
		Example: "  fincalc calc emi --param principal=1000000 --param rate=10 --param tenure=20",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := parseParams(pairs)
			if err != nil {
				return err
			}

			outcome, err := a.registry.Calculate(args[0], params)
			if err != nil {
				if errors.Is(err, calculators.ErrUnknownCalculator) {
					return fmt.Errorf("%w; available: %s", err, strings.Join(a.registry.Types(), ", "))
				}
				return err
			}
			if !showAnalytics {
				outcome.Analytics = nil
			}
			if !showSchedule {
				outcome.Schedule = nil
			}

			if user != "" {
				recorder, closeHistory, err := a.openHistory(cmd.Context())
				if err != nil {
					return err
				}
				defer closeHistory()
				recorder.Record(user, outcome.Type, outcome.Description, outcome.Data)
			}

			return output.Outcome(cmd.OutOrStdout(), a.format, outcome)
		},
	}
	cmd.Flags().StringArrayVarP(&pairs, "param", "p", nil, "calculator input as key=value (repeatable)")
	cmd.Flags().StringVarP(&user, "user", "u", "", "record the calculation in this user's history")
	cmd.Flags().BoolVar(&showAnalytics, "analytics", false, "include KPIs and chart data")
	cmd.Flags().BoolVar(&showSchedule, "schedule", false, "include the amortization schedule (emi)")
	return cmd
}

// batchFile lists calculations to run together.
type batchFile struct {
	User         string       `yaml:"user"`
	Calculations []batchEntry `yaml:"calculations"`
}

type batchEntry struct {
	Type   string                 `yaml:"type"`
	Params map[string]interface{} `yaml:"params"`
}

func loadBatch(path string) (*batchFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read batch file: %w", err)
	}
	var batch batchFile
	if err := yaml.Unmarshal(raw, &batch); err != nil {
		return nil, fmt.Errorf("failed to parse batch file %s: %w", path, err)
	}
	if len(batch.Calculations) == 0 {
		return nil, fmt.Errorf("batch file %s lists no calculations", path)
	}
	return &batch, nil
}

func newBatchCmd(a *app) *cobra.Command {
	var (
		user          string
		showAnalytics bool
	)

	cmd := &cobra.Command{
		Use:   "batch <file.yaml>",
		Short: "Run the calculations listed in a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			batch, err := loadBatch(args[0])
			if err != nil {
				return err
			}
			if user == "" {
				user = batch.User
			}

			record := func(*calculators.Outcome) {}
			if user != "" {
				recorder, closeHistory, err := a.openHistory(cmd.Context())
				if err != nil {
					return err
				}
				defer closeHistory()
				record = func(o *calculators.Outcome) {
					recorder.Record(user, o.Type, o.Description, o.Data)
				}
			}

			outcomes := make([]*calculators.Outcome, 0, len(batch.Calculations))
			var errs []error
			for i, entry := range batch.Calculations {
				outcome, err := a.registry.Calculate(entry.Type, entry.Params)
				if err != nil {
					a.logger.Warn("batch calculation failed",
						zap.String("op", "main.batch"),
						zap.Int("index", i),
						zap.String("calculator", entry.Type),
						zap.Error(err),
					)
					errs = append(errs, fmt.Errorf("calculation %d (%s): %w", i+1, entry.Type, err))
					continue
				}
				outcome.Schedule = nil
				if !showAnalytics {
					outcome.Analytics = nil
				}
				record(outcome)
				outcomes = append(outcomes, outcome)
			}

			if err := output.Outcomes(cmd.OutOrStdout(), a.format, outcomes); err != nil {
				return err
			}
			return errors.Join(errs...)
		},
	}
	cmd.Flags().StringVarP(&user, "user", "u", "", "record the calculations in this user's history (overrides the file)")
	cmd.Flags().BoolVar(&showAnalytics, "analytics", false, "include KPIs and chart data")
	return cmd
}

func newCalculatorsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "calculators",
		Short: "List the available calculators",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return output.Catalog(cmd.OutOrStdout(), a.format, a.registry.Catalog())
		},
	}
}

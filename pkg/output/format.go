// Package output renders calculation results, history and the calculator
// catalog for the terminal.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/iwvelando/fincalc/internal/calculators"
	"github.com/iwvelando/fincalc/internal/history"
	"github.com/iwvelando/fincalc/pkg/constants"
	"github.com/iwvelando/fincalc/pkg/loans"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"
)

func printer() *message.Printer {
	return message.NewPrinter(language.English)
}

// Outcomes writes one or more calculation outcomes in the requested format.
func Outcomes(w io.Writer, format string, outcomes []*calculators.Outcome) error {
	switch format {
	case constants.OutputFormatPretty:
		return prettyOutcomes(w, outcomes)
	case constants.OutputFormatCSV:
		return csvOutcomes(w, outcomes)
	case constants.OutputFormatJSON:
		return writeJSON(w, outcomes)
	case constants.OutputFormatYAML:
		return writeYAML(w, outcomes)
	}
	return fmt.Errorf("unsupported output format %q", format)
}

// Outcome writes a single outcome. Structured formats emit the object rather
// than a one-element list.
func Outcome(w io.Writer, format string, outcome *calculators.Outcome) error {
	switch format {
	case constants.OutputFormatJSON:
		return writeJSON(w, outcome)
	case constants.OutputFormatYAML:
		return writeYAML(w, outcome)
	}
	return Outcomes(w, format, []*calculators.Outcome{outcome})
}

func prettyOutcomes(w io.Writer, outcomes []*calculators.Outcome) error {
	p := printer()
	for i, o := range outcomes {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "--- %s ---\n", o.Title)
		if o.Description != "" {
			fmt.Fprintln(w, o.Description)
		}
		fmt.Fprintf(w, "Result: %s\n", formatValue(p, o.Result))

		if o.Analytics != nil && len(o.Analytics.KPIs) > 0 {
			fmt.Fprintf(w, "\nKey figures\n")
			width := 0
			for _, kpi := range o.Analytics.KPIs {
				if len(kpi.Label) > width {
					width = len(kpi.Label)
				}
			}
			for _, kpi := range o.Analytics.KPIs {
				line := fmt.Sprintf("  %-*s | %s", width, kpi.Label, kpi.Value)
				if kpi.Change != nil {
					line += p.Sprintf(" (%+.1f%%)", *kpi.Change)
				}
				fmt.Fprintln(w, line)
			}
		}

		keys := sortedKeys(o.Data)
		if len(keys) > 0 {
			fmt.Fprintf(w, "\nDetails\n")
			width := 0
			for _, k := range keys {
				if len(k) > width {
					width = len(k)
				}
			}
			for _, k := range keys {
				fmt.Fprintf(w, "  %-*s | %s\n", width, k, formatValue(p, o.Data[k]))
			}
		}

		if len(o.Schedule) > 0 {
			fmt.Fprintln(w)
			if err := prettySchedule(w, o.Schedule); err != nil {
				return err
			}
		}
	}
	return nil
}

func csvOutcomes(w io.Writer, outcomes []*calculators.Outcome) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"type", "title", "description", "result"}); err != nil {
		return err
	}
	for _, o := range outcomes {
		if err := cw.Write([]string{o.Type, o.Title, o.Description, rawValue(o.Result)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Schedule writes an amortization schedule. The pretty format is a table;
// csv emits one row per period.
func Schedule(w io.Writer, format string, rows []loans.AmortizationRow) error {
	switch format {
	case constants.OutputFormatPretty:
		return prettySchedule(w, rows)
	case constants.OutputFormatCSV:
		cw := csv.NewWriter(w)
		if err := cw.Write([]string{"month", "payment", "principal", "interest", "balance"}); err != nil {
			return err
		}
		for _, row := range rows {
			if err := cw.Write([]string{
				strconv.Itoa(row.Period),
				strconv.FormatFloat(row.Principal+row.Interest, 'f', 2, 64),
				strconv.FormatFloat(row.Principal, 'f', 2, 64),
				strconv.FormatFloat(row.Interest, 'f', 2, 64),
				strconv.FormatFloat(row.RemainingBalance, 'f', 2, 64),
			}); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	case constants.OutputFormatJSON:
		return writeJSON(w, rows)
	case constants.OutputFormatYAML:
		return writeYAML(w, rows)
	}
	return fmt.Errorf("unsupported output format %q", format)
}

func prettySchedule(w io.Writer, rows []loans.AmortizationRow) error {
	p := printer()
	fmt.Fprintf(w, "Month | Payment       | Principal     | Interest      | Balance\n")
	fmt.Fprintf(w, "_____ | _____________ | _____________ | _____________ | _______\n")
	for _, row := range rows {
		if _, err := p.Fprintf(w, "%5d | %13.2f | %13.2f | %13.2f | %.2f\n",
			row.Period, row.Principal+row.Interest, row.Principal, row.Interest, row.RemainingBalance); err != nil {
			return err
		}
	}
	return nil
}

// History writes saved records, newest first as given.
func History(w io.Writer, format string, records []history.Record) error {
	switch format {
	case constants.OutputFormatPretty:
		if len(records) == 0 {
			fmt.Fprintln(w, "No calculations recorded.")
			return nil
		}
		p := printer()
		fmt.Fprintf(w, "Date             | Calculator         | Result          | Description\n")
		fmt.Fprintf(w, "________________ | __________________ | _______________ | ___________\n")
		for _, r := range records {
			_, _ = p.Fprintf(w, "%s | %-18s | %15.2f | %s\n",
				r.CreatedAt.Local().Format("2006-01-02 15:04"), r.CalculatorType, r.ResultValue, r.Description)
		}
		fmt.Fprintln(w)
		for _, c := range history.CountByType(records) {
			fmt.Fprintf(w, "%s: %d\n", c.CalculatorType, c.Count)
		}
		return nil
	case constants.OutputFormatCSV:
		cw := csv.NewWriter(w)
		if err := cw.Write([]string{"id", "created_at", "calculator_type", "result_value", "description"}); err != nil {
			return err
		}
		for _, r := range records {
			if err := cw.Write([]string{
				r.ID,
				r.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
				r.CalculatorType,
				strconv.FormatFloat(r.ResultValue, 'f', -1, 64),
				r.Description,
			}); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	case constants.OutputFormatJSON:
		return writeJSON(w, records)
	case constants.OutputFormatYAML:
		return writeYAML(w, records)
	}
	return fmt.Errorf("unsupported output format %q", format)
}

// Catalog writes the registered calculators.
func Catalog(w io.Writer, format string, infos []calculators.Info) error {
	switch format {
	case constants.OutputFormatPretty:
		width := 0
		for _, info := range infos {
			if len(info.Type) > width {
				width = len(info.Type)
			}
		}
		for _, info := range infos {
			fmt.Fprintf(w, "%-*s  %s\n", width, info.Type, info.Title)
		}
		return nil
	case constants.OutputFormatCSV:
		cw := csv.NewWriter(w)
		if err := cw.Write([]string{"type", "title"}); err != nil {
			return err
		}
		for _, info := range infos {
			if err := cw.Write([]string{info.Type, info.Title}); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	case constants.OutputFormatJSON:
		return writeJSON(w, infos)
	case constants.OutputFormatYAML:
		return writeYAML(w, infos)
	}
	return fmt.Errorf("unsupported output format %q", format)
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeYAML(w io.Writer, v interface{}) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// formatValue groups numbers for reading; lists and maps are shown as JSON.
func formatValue(p *message.Printer, v interface{}) string {
	switch val := v.(type) {
	case nil:
		return "-"
	case float64:
		if val == float64(int64(val)) {
			return p.Sprintf("%d", int64(val))
		}
		return p.Sprintf("%.2f", val)
	case int:
		return p.Sprintf("%d", val)
	case int64:
		return p.Sprintf("%d", val)
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(raw)
}

// rawValue renders a value without grouping for machine-readable output.
func rawValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case string:
		return val
	}
	return strings.TrimSpace(fmt.Sprint(v))
}

// Field is one labelled value in a flat result such as a prediction.
type Field struct {
	Label string
	Value string
}

// Fields writes a flat result. Pretty and csv render the labelled fields;
// json and yaml encode v.
func Fields(w io.Writer, format, title string, fields []Field, v interface{}) error {
	switch format {
	case constants.OutputFormatPretty:
		fmt.Fprintf(w, "--- %s ---\n", title)
		width := 0
		for _, f := range fields {
			if len(f.Label) > width {
				width = len(f.Label)
			}
		}
		for _, f := range fields {
			fmt.Fprintf(w, "  %-*s | %s\n", width, f.Label, f.Value)
		}
		return nil
	case constants.OutputFormatCSV:
		cw := csv.NewWriter(w)
		if err := cw.Write([]string{"field", "value"}); err != nil {
			return err
		}
		for _, f := range fields {
			if err := cw.Write([]string{f.Label, f.Value}); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	case constants.OutputFormatJSON:
		return writeJSON(w, v)
	case constants.OutputFormatYAML:
		return writeYAML(w, v)
	}
	return fmt.Errorf("unsupported output format %q", format)
}

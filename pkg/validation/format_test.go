package validation

import (
	"strings"
	"testing"

	"github.com/iwvelando/fincalc/pkg/constants"
)

func TestSupportedFormatsAreAccepted(t *testing.T) {
	if len(OutputFormats) != 4 {
		t.Fatalf("OutputFormats = %v, expected pretty, csv, json and yaml", OutputFormats)
	}
	for _, format := range OutputFormats {
		if err := ValidateOutputFormat(format); err != nil {
			t.Errorf("ValidateOutputFormat(%q) error = %v", format, err)
		}
	}
}

// Callers lower-case configured values before validating, so the check
// itself only accepts the canonical spelling of each renderer.
func TestNonCanonicalSpellingsAreRejected(t *testing.T) {
	variants := map[string][]string{
		constants.OutputFormatPretty: {"Pretty", "PRETTY", " pretty", "text", "table"},
		constants.OutputFormatCSV:    {"CSV", "tsv", "csv\n"},
		constants.OutputFormatJSON:   {"JSON", "jsonl", "ndjson"},
		constants.OutputFormatYAML:   {"YAML", "yml", "Yaml"},
	}

	for format, rejected := range variants {
		for _, variant := range rejected {
			t.Run(format+"/"+variant, func(t *testing.T) {
				if err := ValidateOutputFormat(variant); err == nil {
					t.Errorf("ValidateOutputFormat(%q) accepted a non-canonical spelling of %s", variant, format)
				}
			})
		}
	}
}

func TestRejectionNamesTheChoices(t *testing.T) {
	for _, format := range []string{"", "xml", "toml"} {
		err := ValidateOutputFormat(format)
		if err == nil {
			t.Fatalf("ValidateOutputFormat(%q) expected an error", format)
		}
		msg := err.Error()
		for _, supported := range OutputFormats {
			if !strings.Contains(msg, supported) {
				t.Errorf("error %q does not list %s", msg, supported)
			}
		}
		if format != "" && !strings.HasSuffix(msg, "got "+format) {
			t.Errorf("error %q does not echo %q", msg, format)
		}
	}
}

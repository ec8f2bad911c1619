// Package history persists completed calculations per user.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when a record does not exist or belongs to
	// another user.
	ErrNotFound = errors.New("history record not found")

	// ErrUserRequired is returned when an operation is attempted without a
	// user identity.
	ErrUserRequired = errors.New("user id is required")
)

// Record is one saved calculation.
type Record struct {
	ID             string                 `json:"id" yaml:"id"`
	UserID         string                 `json:"user_id" yaml:"user_id"`
	CalculatorType string                 `json:"calculator_type" yaml:"calculator_type"`
	Description    string                 `json:"description" yaml:"description"`
	Data           map[string]interface{} `json:"calculation_data" yaml:"calculation_data"`
	ResultValue    float64                `json:"result_value" yaml:"result_value"`
	CreatedAt      time.Time              `json:"created_at" yaml:"created_at"`
}

// Store saves, lists and deletes records. Implementations must be safe for
// concurrent use.
type Store interface {
	// Save assigns an ID and creation time when missing and stores the record.
	Save(ctx context.Context, record Record) (Record, error)
	// Recent returns at most limit records for the user, newest first.
	Recent(ctx context.Context, userID string, limit int) ([]Record, error)
	// Delete removes a record owned by the user.
	Delete(ctx context.Context, userID, id string) error
}

// NewRecord builds a record for a calculation. The numeric value of
// data["result"] becomes ResultValue; anything else records 0.
func NewRecord(userID, calculatorType, description string, data map[string]interface{}) Record {
	return Record{
		UserID:         userID,
		CalculatorType: calculatorType,
		Description:    description,
		Data:           data,
		ResultValue:    ResultValue(data),
	}
}

// ResultValue extracts the numeric result from calculation data.
func ResultValue(data map[string]interface{}) float64 {
	switch v := data["result"].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0
		}
		return f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// prepare validates a record and fills in its identity.
func prepare(record Record, now time.Time) (Record, error) {
	if strings.TrimSpace(record.UserID) == "" {
		return Record{}, ErrUserRequired
	}
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now.UTC()
	}
	return record, nil
}

// TypeCount is the number of records for one calculator type.
type TypeCount struct {
	CalculatorType string `json:"calculator_type" yaml:"calculator_type"`
	Count          int    `json:"count" yaml:"count"`
}

// CountByType tallies records per calculator type, most used first.
func CountByType(records []Record) []TypeCount {
	counts := make(map[string]int)
	for _, r := range records {
		counts[r.CalculatorType]++
	}
	result := make([]TypeCount, 0, len(counts))
	for t, n := range counts {
		result = append(result, TypeCount{CalculatorType: t, Count: n})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].CalculatorType < result[j].CalculatorType
	})
	return result
}

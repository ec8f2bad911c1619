// Package predict wraps the external prediction services: the loan approval
// model and the property value estimate.
package predict

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/iwvelando/fincalc/pkg/mathutil"
	"go.uber.org/zap"
)

// Type tags used when predictions are recorded in history.
const (
	TypeLoanPrediction     = "loan_prediction"
	TypePropertyPrediction = "property_prediction"
)

var (
	// ErrInvalidResponse is returned when a service answers with something
	// that cannot be interpreted.
	ErrInvalidResponse = errors.New("invalid prediction response")

	// ErrInvalidInput is returned for inputs the services should never see.
	ErrInvalidInput = errors.New("invalid prediction input")

	// ErrUnavailable is returned when a service cannot be reached.
	ErrUnavailable = errors.New("prediction service unavailable")
)

// LoanApplication is the model's feature vector.
type LoanApplication struct {
	LoanAmount   float64 `json:"loan_amnt" mapstructure:"loan_amnt"`
	InterestRate float64 `json:"int_rate" mapstructure:"int_rate"`
	AnnualIncome float64 `json:"annual_inc" mapstructure:"annual_inc"`
	DTI          float64 `json:"dti" mapstructure:"dti"`
}

// Validate rejects non-finite or non-positive amounts.
func (a LoanApplication) Validate() error {
	if !mathutil.AllFinite(a.LoanAmount, a.InterestRate, a.AnnualIncome, a.DTI) {
		return fmt.Errorf("%w: values must be finite", ErrInvalidInput)
	}
	if a.LoanAmount <= 0 || a.AnnualIncome <= 0 {
		return fmt.Errorf("%w: loan amount and annual income must be positive", ErrInvalidInput)
	}
	if a.InterestRate < 0 || a.DTI < 0 {
		return fmt.Errorf("%w: interest rate and dti cannot be negative", ErrInvalidInput)
	}
	return nil
}

// LoanPrediction is the model's answer.
type LoanPrediction struct {
	Message     string  `json:"message" yaml:"message"`
	Probability float64 `json:"probability" yaml:"probability"`
}

// Approved reports whether the model approved the application.
func (p LoanPrediction) Approved() bool {
	return strings.Contains(p.Message, "Approved") && !strings.Contains(p.Message, "Not Approved")
}

// Status is "Approved" or "Not Approved".
func (p LoanPrediction) Status() string {
	if p.Approved() {
		return "Approved"
	}
	return "Not Approved"
}

// Description summarizes the prediction for history.
func (p LoanPrediction) Description() string {
	return fmt.Sprintf("Loan Prediction: %s (%.1f%% probability)", p.Status(), p.Probability*100)
}

// HistoryData is the calculation data recorded for a prediction.
func (p LoanPrediction) HistoryData(app LoanApplication) map[string]interface{} {
	return map[string]interface{}{
		"inputs": map[string]interface{}{
			"loan_amount":   app.LoanAmount,
			"interest_rate": app.InterestRate,
			"annual_income": app.AnnualIncome,
			"dti":           app.DTI,
		},
		"status":      p.Status(),
		"probability": p.Probability,
		"message":     p.Message,
		"result":      p.Probability,
	}
}

// LoanClient posts applications to the loan approval model service.
type LoanClient struct {
	endpoint   string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewLoanClient returns a client for endpoint.
func NewLoanClient(endpoint string, timeout time.Duration, logger *zap.Logger) *LoanClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &LoanClient{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Predict asks the model whether the application would be approved.
func (c *LoanClient) Predict(ctx context.Context, app LoanApplication) (LoanPrediction, error) {
	if err := app.Validate(); err != nil {
		return LoanPrediction{}, err
	}
	if strings.TrimSpace(c.endpoint) == "" {
		return LoanPrediction{}, fmt.Errorf("%w: no endpoint configured", ErrUnavailable)
	}

	body, err := json.Marshal(app)
	if err != nil {
		return LoanPrediction{}, fmt.Errorf("failed to encode application: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return LoanPrediction{}, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("loan predictor unreachable",
			zap.String("op", "predict.LoanClient.Predict"),
			zap.Error(err),
		)
		return LoanPrediction{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return LoanPrediction{}, fmt.Errorf("%w: failed to read response: %v", ErrUnavailable, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var detail struct {
			Detail interface{} `json:"detail"`
		}
		if json.Unmarshal(raw, &detail) == nil && detail.Detail != nil {
			return LoanPrediction{}, fmt.Errorf("%w: status %d: %v", ErrUnavailable, resp.StatusCode, detail.Detail)
		}
		return LoanPrediction{}, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var prediction LoanPrediction
	if err := json.Unmarshal(raw, &prediction); err != nil {
		return LoanPrediction{}, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if prediction.Message == "" || !mathutil.IsFinite(prediction.Probability) {
		return LoanPrediction{}, fmt.Errorf("%w: missing message or probability", ErrInvalidResponse)
	}
	return prediction, nil
}

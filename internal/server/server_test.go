package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/iwvelando/fincalc/internal/calculators"
	"github.com/iwvelando/fincalc/internal/history"
	"github.com/iwvelando/fincalc/internal/predict"
	"go.uber.org/zap"
)

type testEnv struct {
	handler  http.Handler
	store    *history.MemoryStore
	recorder *history.Recorder
}

func newTestEnv(t *testing.T, opts Options) testEnv {
	t.Helper()
	store := history.NewMemoryStore()
	recorder := history.NewRecorder(store, time.Second, zap.NewNop())
	opts.Recorder = recorder
	if opts.Registry == nil {
		opts.Registry = calculators.NewRegistry(calculators.Options{})
	}
	return testEnv{handler: NewHandler(zap.NewNop(), opts), store: store, recorder: recorder}
}

func (e testEnv) do(method, target, user, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set(UserIDHeader, user)
	}
	rr := httptest.NewRecorder()
	e.handler.ServeHTTP(rr, req)
	return rr
}

func decodeMap(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v (%s)", err, rr.Body.String())
	}
	return resp
}

const emiBody = `{"principal": 1000000, "rate": "10", "tenure": 20}`

func TestHandleVersion(t *testing.T) {
	env := newTestEnv(t, Options{Version: "  v1.2.3  "})
	rr := env.do(http.MethodGet, "/api/version", "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if got := decodeMap(t, rr)["version"]; got != "v1.2.3" {
		t.Fatalf("expected trimmed version, got %v", got)
	}

	env = newTestEnv(t, Options{})
	if got := decodeMap(t, env.do(http.MethodGet, "/api/version", "", ""))["version"]; got != "dev" {
		t.Fatalf("expected dev version, got %v", got)
	}
}

func TestHandleCatalog(t *testing.T) {
	env := newTestEnv(t, Options{})
	rr := env.do(http.MethodGet, "/api/calculators", "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}

	var resp struct {
		Calculators []calculators.Info `json:"calculators"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Calculators) != 10 {
		t.Fatalf("expected 10 calculators, got %d", len(resp.Calculators))
	}
	if resp.Calculators[0].Type != calculators.TypeEMI {
		t.Fatalf("expected emi first, got %s", resp.Calculators[0].Type)
	}
}

func TestHandleCalculateRecordsHistory(t *testing.T) {
	env := newTestEnv(t, Options{})
	rr := env.do(http.MethodPost, "/api/calculators/emi", "user-1", emiBody)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	resp := decodeMap(t, rr)
	if resp["result"] != 9650.22 {
		t.Fatalf("expected EMI 9650.22, got %v", resp["result"])
	}
	if resp["recorded"] != true {
		t.Fatal("expected calculation to be recorded")
	}
	if _, ok := resp["schedule"]; ok {
		t.Fatal("expected schedule to be omitted by default")
	}
	if _, ok := resp["analytics"]; !ok {
		t.Fatal("expected analytics by default")
	}

	env.recorder.Wait()
	records, err := env.store.Recent(context.Background(), "user-1", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].CalculatorType != calculators.TypeEMI || records[0].ResultValue != 9650.22 {
		t.Fatalf("unexpected record: %+v", records[0])
	}
}

func TestHandleCalculateAnonymousIsNotRecorded(t *testing.T) {
	env := newTestEnv(t, Options{})
	rr := env.do(http.MethodPost, "/api/calculators/emi", "", emiBody)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if decodeMap(t, rr)["recorded"] != false {
		t.Fatal("expected anonymous calculation to skip history")
	}
}

func TestHandleCalculateOptions(t *testing.T) {
	env := newTestEnv(t, Options{})
	rr := env.do(http.MethodPost, "/api/calculators/emi?schedule=true&analytics=false", "", emiBody)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}

	resp := decodeMap(t, rr)
	schedule, ok := resp["schedule"].([]interface{})
	if !ok || len(schedule) != 240 {
		t.Fatalf("expected 240 schedule rows, got %v", len(schedule))
	}
	if _, ok := resp["analytics"]; ok {
		t.Fatal("expected analytics to be omitted")
	}
}

func TestHandleCalculateErrors(t *testing.T) {
	tests := []struct {
		name   string
		target string
		body   string
		status int
	}{
		{"Unknown calculator", "/api/calculators/mortgage", emiBody, http.StatusNotFound},
		{"Missing field", "/api/calculators/emi", `{"principal": 1000000}`, http.StatusBadRequest},
		{"Non-numeric field", "/api/calculators/emi", `{"principal": "lots", "rate": 10, "tenure": 20}`, http.StatusBadRequest},
		{"Out of range", "/api/calculators/emi", `{"principal": -5, "rate": 10, "tenure": 20}`, http.StatusBadRequest},
		{"Malformed JSON", "/api/calculators/emi", `{"principal":`, http.StatusBadRequest},
		{"Empty body", "/api/calculators/emi", ``, http.StatusBadRequest},
		{"Overflowing projection", "/api/calculators/lumpsum", `{"amount": 1000000, "rate": 1000, "years": 400}`, http.StatusBadRequest},
		{"Fractional tenure", "/api/calculators/emi", `{"principal": 1000000, "rate": 10, "tenure": 20.5}`, http.StatusBadRequest},
	}

	env := newTestEnv(t, Options{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := env.do(http.MethodPost, tt.target, "user-1", tt.body)
			if rr.Code != tt.status {
				t.Fatalf("expected status %d, got %d: %s", tt.status, rr.Code, rr.Body.String())
			}
			if decodeMap(t, rr)["error"] == "" {
				t.Fatal("expected error message")
			}
		})
	}

	env.recorder.Wait()
	records, _ := env.store.Recent(context.Background(), "user-1", 10)
	if len(records) != 0 {
		t.Fatalf("expected failed calculations to skip history, got %d records", len(records))
	}
}

func TestHandleCalculateBodyLimit(t *testing.T) {
	env := newTestEnv(t, Options{MaxBodySize: 16})
	rr := env.do(http.MethodPost, "/api/calculators/emi", "", emiBody)
	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected status 413, got %d", rr.Code)
	}
}

func TestHandleHistory(t *testing.T) {
	env := newTestEnv(t, Options{RecentLimit: 2})
	for _, body := range []struct{ target, body string }{
		{"/api/calculators/emi", emiBody},
		{"/api/calculators/lumpsum", `{"amount": 100000, "rate": 12, "years": 10}`},
		{"/api/calculators/emi", `{"principal": 500000, "rate": 9, "tenure": 10}`},
	} {
		if rr := env.do(http.MethodPost, body.target, "user-1", body.body); rr.Code != http.StatusOK {
			t.Fatalf("setup calculation failed: %d %s", rr.Code, rr.Body.String())
		}
		env.recorder.Wait()
	}

	rr := env.do(http.MethodGet, "/api/history", "user-1", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	var resp historyResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Records) != 2 {
		t.Fatalf("expected default limit of 2 records, got %d", len(resp.Records))
	}

	rr = env.do(http.MethodGet, "/api/history?limit=10", "user-1", "")
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(resp.Records))
	}
	if len(resp.Summary) != 2 || resp.Summary[0].CalculatorType != calculators.TypeEMI || resp.Summary[0].Count != 2 {
		t.Fatalf("unexpected summary: %+v", resp.Summary)
	}

	if rr := env.do(http.MethodGet, "/api/history", "", ""); rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401 without user, got %d", rr.Code)
	}
	if rr := env.do(http.MethodGet, "/api/history?limit=zero", "user-1", ""); rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for bad limit, got %d", rr.Code)
	}
	rr = env.do(http.MethodGet, "/api/history", "user-2", "")
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Records) != 0 {
		t.Fatalf("expected no records for another user, got %d", len(resp.Records))
	}
}

func TestHandleDeleteHistory(t *testing.T) {
	env := newTestEnv(t, Options{})
	saved, err := env.store.Save(context.Background(),
		history.NewRecord("user-1", calculators.TypeEMI, "EMI", map[string]interface{}{"result": 1.0}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rr := env.do(http.MethodDelete, "/api/history/"+saved.ID, "user-2", ""); rr.Code != http.StatusNotFound {
		t.Fatalf("expected status 404 for another user, got %d", rr.Code)
	}
	if rr := env.do(http.MethodDelete, "/api/history/"+saved.ID, "", ""); rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401 without user, got %d", rr.Code)
	}
	if rr := env.do(http.MethodDelete, "/api/history/"+saved.ID, "user-1", ""); rr.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", rr.Code)
	}
	if rr := env.do(http.MethodDelete, "/api/history/"+saved.ID, "user-1", ""); rr.Code != http.StatusNotFound {
		t.Fatalf("expected status 404 after delete, got %d", rr.Code)
	}
}

func TestHandleHistoryUnconfigured(t *testing.T) {
	handler := NewHandler(nil, Options{})
	req := httptest.NewRequest(http.MethodGet, "/api/history", nil)
	req.Header.Set(UserIDHeader, "user-1")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", rr.Code)
	}
}

func TestHandleAssistantFallback(t *testing.T) {
	env := newTestEnv(t, Options{})
	rr := env.do(http.MethodPost, "/api/assistant", "", `{"query": "I want to invest monthly"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	resp := decodeMap(t, rr)
	if resp["fallback"] != true {
		t.Fatal("expected fallback reply")
	}
	if !strings.Contains(resp["text"].(string), "SIP") {
		t.Fatalf("expected SIP suggestion, got %v", resp["text"])
	}

	if rr := env.do(http.MethodPost, "/api/assistant", "", `{"query": "  "}`); rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for empty query, got %d", rr.Code)
	}
}

func TestHandlePredictLoan(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"message":"Loan Approved","probability":0.91}`))
	}))
	defer upstream.Close()

	env := newTestEnv(t, Options{Loans: predict.NewLoanClient(upstream.URL, time.Second, nil)})
	rr := env.do(http.MethodPost, "/api/predict/loan", "user-1",
		`{"loan_amnt": 500000, "int_rate": 11.5, "annual_inc": 1200000, "dti": 18}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	resp := decodeMap(t, rr)
	if resp["status"] != "Approved" || resp["probability"] != 0.91 || resp["recorded"] != true {
		t.Fatalf("unexpected response: %v", resp)
	}

	env.recorder.Wait()
	records, _ := env.store.Recent(context.Background(), "user-1", 10)
	if len(records) != 1 || records[0].CalculatorType != predict.TypeLoanPrediction || records[0].ResultValue != 0.91 {
		t.Fatalf("unexpected history: %+v", records)
	}

	if rr := env.do(http.MethodPost, "/api/predict/loan", "", `{"loan_amnt": 0, "int_rate": 1, "annual_inc": 1, "dti": 1}`); rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for invalid application, got %d", rr.Code)
	}
}

func TestHandlePredictLoanUpstreamFailure(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer upstream.Close()

	env := newTestEnv(t, Options{Loans: predict.NewLoanClient(upstream.URL, time.Second, nil)})
	rr := env.do(http.MethodPost, "/api/predict/loan", "user-1",
		`{"loan_amnt": 500000, "int_rate": 11.5, "annual_inc": 1200000, "dti": 18}`)
	if rr.Code != http.StatusBadGateway {
		t.Fatalf("expected status 502, got %d", rr.Code)
	}
}

type stubGenerator string

func (s stubGenerator) Prompt(context.Context, string) (string, error) {
	return string(s), nil
}

func TestHandlePredictProperty(t *testing.T) {
	body := `{"lat": 20.29, "lng": 85.82, "dismil": 10, "price": 500000, "years": 5}`

	env := newTestEnv(t, Options{})
	if rr := env.do(http.MethodPost, "/api/predict/property", "user-1", body); rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503 when unconfigured, got %d", rr.Code)
	}

	env = newTestEnv(t, Options{Property: predict.NewPropertyPredictor(stubGenerator("7500000"), nil)})
	rr := env.do(http.MethodPost, "/api/predict/property", "user-1", body)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	resp := decodeMap(t, rr)
	if resp["currentValue"] != 5000000.0 || resp["predictedValue"] != 7500000.0 {
		t.Fatalf("unexpected response: %v", resp)
	}

	env = newTestEnv(t, Options{Property: predict.NewPropertyPredictor(stubGenerator("no idea"), nil)})
	if rr := env.do(http.MethodPost, "/api/predict/property", "user-1", body); rr.Code != http.StatusBadGateway {
		t.Fatalf("expected status 502 for unparseable estimate, got %d", rr.Code)
	}
}

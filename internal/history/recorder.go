package history

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Recorder saves calculations in the background so a slow or failing store
// never delays or fails the calculation itself.
type Recorder struct {
	store   Store
	timeout time.Duration
	logger  *zap.Logger
	wg      sync.WaitGroup
}

// NewRecorder wraps a store. A non-positive timeout defaults to five seconds.
func NewRecorder(store Store, timeout time.Duration, logger *zap.Logger) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Recorder{store: store, timeout: timeout, logger: logger}
}

// Store returns the underlying store.
func (r *Recorder) Store() Store {
	return r.store
}

// Record saves a calculation for userID without blocking. It reports whether
// a save was started; calculations without a user are not recorded.
func (r *Recorder) Record(userID, calculatorType, description string, data map[string]interface{}) bool {
	if r == nil || r.store == nil || strings.TrimSpace(userID) == "" {
		return false
	}

	record := NewRecord(userID, calculatorType, description, data)
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()

		saved, err := r.store.Save(ctx, record)
		if err != nil {
			r.logger.Warn("failed to save calculation history",
				zap.String("op", "history.Record"),
				zap.String("calculator", calculatorType),
				zap.Error(err),
			)
			return
		}
		r.logger.Debug("saved calculation history",
			zap.String("op", "history.Record"),
			zap.String("id", saved.ID),
			zap.String("calculator", calculatorType),
		)
	}()
	return true
}

// Wait blocks until every started save has finished.
func (r *Recorder) Wait() {
	if r == nil {
		return
	}
	r.wg.Wait()
}

package service

import (
	"errors"
	"fmt"
	"math"

	"github.com/jonboulle/clockwork"

	"github.com/jengzang/retention-backend-go/internal/analysis"
	"github.com/jengzang/retention-backend-go/internal/cache"
	"github.com/jengzang/retention-backend-go/internal/metrics"
	"github.com/jengzang/retention-backend-go/internal/models"
)

// memoEntry keeps the error next to the value: computations are pure
// functions of (dataset version, params), so failures are cached too
type memoEntry[T any] struct {
	value T
	err   error
}

// memo returns the cached outcome of operation for (version, params),
// computing and storing it on a miss
func memo[T any](results *cache.Store, version, operation string, params any, compute func() (T, error)) (T, error) {
	key, err := cache.Key(version, operation, params)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("failed to build cache key: %w", err)
	}

	if cached, ok := results.Get(key); ok {
		e := cached.(memoEntry[T])
		return e.value, e.err
	}

	value, err := compute()
	if err != nil {
		metrics.EngineErrorsTotal.WithLabelValues(operation).Inc()
	}
	results.Set(key, memoEntry[T]{value: value, err: err})
	return value, err
}

// report memoises compute and wraps its value with the snapshot version.
// A result carrying analysis.ErrDivisionUndefined is still returned.
func report[T any](l *DatasetLoader, clock clockwork.Clock, version, operation string, params any,
	compute func() (T, error)) (*models.Report[T], error) {
	r, err := memo(l.Results(), version, operation, params, func() (*models.Report[T], error) {
		value, err := compute()
		return &models.Report[T]{
			DatasetVersion: version,
			GeneratedAt:    clock.Now(),
			Data:           value,
		}, err
	})
	if err != nil && !isNonFatal(err) {
		return nil, err
	}
	return r, err
}

func isNonFatal(err error) bool {
	return errors.Is(err, analysis.ErrDivisionUndefined)
}

// finite rejects NaN and infinite numeric parameters, which cannot be
// encoded into a cache key
func finite(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return analysis.InvalidParameter(name, v)
	}
	return nil
}

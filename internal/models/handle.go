// Package models holds the process-wide model handles. A handle is either
// Loaded with a named model or Unavailable; it is built once at startup and is
// read-only afterwards.
package models

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Handle is a loaded model of type T or the absent variant.
type Handle[T any] struct {
	value T
	name  string
	light bool
	ok    bool
}

// Loaded wraps a ready model. Light marks small/fast variants that callers
// should drive with reduced limits.
func Loaded[T any](value T, name string, light bool) Handle[T] {
	return Handle[T]{value: value, name: name, light: light, ok: true}
}

// Unavailable returns the absent variant.
func Unavailable[T any]() Handle[T] {
	return Handle[T]{}
}

// Get returns the model and whether it is present.
func (h Handle[T]) Get() (T, bool) {
	return h.value, h.ok
}

// Available reports whether a model is loaded.
func (h Handle[T]) Available() bool {
	return h.ok
}

// Name is the loaded model's name, empty when unavailable.
func (h Handle[T]) Name() string {
	return h.name
}

// Light reports whether the loaded model is a small/fast variant.
func (h Handle[T]) Light() bool {
	return h.light
}

// Candidate is one entry in a load preference list.
type Candidate[T any] struct {
	Name  string
	Light bool
	Load  func(ctx context.Context) (T, error)
}

// ErrNoCandidates is returned by LoadFirst when the preference list is empty.
var ErrNoCandidates = errors.New("models: no candidates configured")

// Load tries candidates in order and returns the first that loads. When every
// candidate fails the handle is Unavailable; startup is never aborted.
func Load[T any](ctx context.Context, kind string, candidates []Candidate[T], logger *slog.Logger) Handle[T] {
	handle, err := LoadFirst(ctx, candidates, logger.With(slog.String("kind", kind)))
	if err != nil {
		logger.Warn("models: no model available, continuing without one",
			slog.String("kind", kind),
			slog.String("error", err.Error()))
		return Unavailable[T]()
	}
	return handle
}

// LoadFirst is Load without the degrade-to-Unavailable step.
func LoadFirst[T any](ctx context.Context, candidates []Candidate[T], logger *slog.Logger) (Handle[T], error) {
	if len(candidates) == 0 {
		return Unavailable[T](), ErrNoCandidates
	}

	var errs []error
	for _, c := range candidates {
		start := time.Now()
		logger.Info("models: loading candidate", slog.String("model", c.Name))
		value, err := c.Load(ctx)
		if err != nil {
			logger.Warn("models: candidate failed to load",
				slog.String("model", c.Name),
				slog.Duration("elapsed", time.Since(start)),
				slog.String("error", err.Error()))
			errs = append(errs, fmt.Errorf("%s: %w", c.Name, err))
			continue
		}
		logger.Info("models: candidate loaded",
			slog.String("model", c.Name),
			slog.Bool("light", c.Light),
			slog.Duration("elapsed", time.Since(start)))
		return Loaded(value, c.Name, c.Light), nil
	}
	return Unavailable[T](), errors.Join(errs...)
}

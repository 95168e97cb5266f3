// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package tessgrid

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/2dChan/tessgrid/grid"
	"github.com/sirupsen/logrus"
)

const (
	defaultEps            = 1e-12
	defaultPlaneTolerance = 1e-5
)

// DegeneratePolicy selects what happens when a sample cannot be inserted
// into the triangulation.
type DegeneratePolicy int

const (
	// SkipDegenerate drops the sample, logs a warning and continues.
	SkipDegenerate DegeneratePolicy = iota
	// AbortOnDegenerate stops the run and returns the error.
	AbortOnDegenerate
)

func (p DegeneratePolicy) String() string {
	switch p {
	case SkipDegenerate:
		return "skip"
	case AbortOnDegenerate:
		return "abort"
	}
	return fmt.Sprintf("DegeneratePolicy(%d)", int(p))
}

// ParseDegeneratePolicy parses "skip" or "abort".
func ParseDegeneratePolicy(s string) (DegeneratePolicy, error) {
	switch s {
	case "skip":
		return SkipDegenerate, nil
	case "abort":
		return AbortOnDegenerate, nil
	}
	return 0, fmt.Errorf("tessgrid: unknown degenerate policy %q (want skip or abort)", s)
}

type Options struct {
	AOI              grid.AreaOfInterest
	Monitor          Monitor
	Logger           logrus.FieldLogger
	Workers          int
	Eps              float64
	PlaneTolerance   float64
	DegeneratePolicy DegeneratePolicy
}

type Option func(*Options) error

func defaultOptions() Options {
	return Options{
		Monitor:          NopMonitor{},
		Logger:           discardLogger(),
		Workers:          1,
		Eps:              defaultEps,
		PlaneTolerance:   defaultPlaneTolerance,
		DegeneratePolicy: SkipDegenerate,
	}
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// WithAOI restricts both sample collection and filled cells to aoi. A nil
// aoi accepts everything.
func WithAOI(aoi grid.AreaOfInterest) Option {
	return func(o *Options) error {
		o.AOI = aoi
		return nil
	}
}

// WithMonitor sets the progress and cancellation monitor. When more than
// one worker is used, IsCanceled must be safe for concurrent use.
func WithMonitor(m Monitor) Option {
	return func(o *Options) error {
		if m == nil {
			return errors.New("WithMonitor: monitor must not be nil")
		}
		o.Monitor = m
		return nil
	}
}

func WithLogger(l logrus.FieldLogger) Option {
	return func(o *Options) error {
		if l == nil {
			return errors.New("WithLogger: logger must not be nil")
		}
		o.Logger = l
		return nil
	}
}

// WithWorkers sets the number of goroutines used to fill the grid.
func WithWorkers(n int) Option {
	return func(o *Options) error {
		if n < 1 {
			return fmt.Errorf("WithWorkers: n must be at least 1, got %d", n)
		}
		o.Workers = n
		return nil
	}
}

// WithEps sets the relative tolerance below which a circumcircle solve is
// treated as singular.
func WithEps(eps float64) Option {
	return func(o *Options) error {
		if eps <= 0 || math.IsNaN(eps) {
			return fmt.Errorf("WithEps: eps must be positive, got %v", eps)
		}
		o.Eps = eps
		return nil
	}
}

// WithPlaneTolerance sets the relative tolerance below which a triangle is
// considered flat in plan view and skipped.
func WithPlaneTolerance(tol float64) Option {
	return func(o *Options) error {
		if tol < 0 || math.IsNaN(tol) || math.IsInf(tol, 0) {
			return fmt.Errorf("WithPlaneTolerance: tol must be a finite value >= 0, got %v", tol)
		}
		o.PlaneTolerance = tol
		return nil
	}
}

func WithDegeneratePolicy(p DegeneratePolicy) Option {
	return func(o *Options) error {
		if p != SkipDegenerate && p != AbortOnDegenerate {
			return fmt.Errorf("WithDegeneratePolicy: unknown policy %v", p)
		}
		o.DegeneratePolicy = p
		return nil
	}
}

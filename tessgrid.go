// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

// Package tessgrid fills the null cells of a regular grid by tessellation
// interpolation: the valid cells are triangulated with an incremental
// Delaunay triangulation and every null cell inside a triangle takes the
// value of the plane through its three corners.
package tessgrid

import (
	"errors"
	"fmt"

	"github.com/2dChan/tessgrid/delaunay"
	"github.com/2dChan/tessgrid/grid"
	"github.com/sirupsen/logrus"
)

// ErrInvalidGeometry is returned when the grid's bounding box has zero
// width or height.
var ErrInvalidGeometry = errors.New("tessgrid: invalid geometry")

// ErrDegenerateGeometry is delaunay.ErrDegenerateGeometry.
var ErrDegenerateGeometry = delaunay.ErrDegenerateGeometry

// Stats summarizes a run.
type Stats struct {
	Samples   int
	Inserted  int
	Skipped   int
	Triangles int
	Filled    int
}

// Result holds the output of Interpolate.
type Result struct {
	// Grid has the dimensions of the input. Cells that were not filled hold
	// the input values.
	Grid *grid.Dense
	// TIN is the triangulation over the inserted samples, or nil when the
	// run stopped before it was finished.
	TIN      *TIN
	Stats    Stats
	Canceled bool
}

// OutputName returns the default name of a grid interpolated from name.
func OutputName(name string) string {
	return name + "_it1"
}

// Interpolate fills the null cells of g. The input is never modified.
//
// Option errors are returned with a nil Result. Every other error comes
// with a Result whose Grid is an unmodified copy of g. Cancellation is not
// an error: it sets Result.Canceled and the Grid holds the input plus the
// cells written before the monitor was canceled.
func Interpolate(g grid.Grid, setters ...Option) (*Result, error) {
	opts := defaultOptions()
	for _, set := range setters {
		if err := set(&opts); err != nil {
			return nil, err
		}
	}
	if g == nil {
		return nil, errors.New("tessgrid: nil grid")
	}

	m, log := opts.Monitor, opts.Logger
	defer m.Done()

	res := &Result{Grid: grid.Copy(g)}
	log = log.WithFields(logrus.Fields{"rows": g.NumRows(), "cols": g.NumCols()})

	norm, err := NewNormalizer(g.Corners())
	if err != nil {
		return res, err
	}

	samples, canceled := collectSamples(g, opts.AOI, m)
	if canceled {
		log.Info("canceled while extracting samples")
		res.Canceled = true
		return res, nil
	}
	for i := range samples {
		samples[i].N = norm.Normalize(samples[i].P)
	}
	res.Stats.Samples = len(samples)
	log.WithField("samples", len(samples)).Debug("samples extracted")

	tin, canceled, err := triangulate(samples, &opts, &res.Stats, m, log)
	if err != nil {
		return res, err
	}
	if canceled {
		log.WithField("inserted", res.Stats.Inserted).Info("canceled while triangulating")
		res.Canceled = true
		return res, nil
	}
	res.TIN = tin
	res.Stats.Triangles = tin.NumFacets()
	log.WithFields(logrus.Fields{
		"inserted":  res.Stats.Inserted,
		"skipped":   res.Stats.Skipped,
		"triangles": res.Stats.Triangles,
	}).Debug("triangulation finished")

	// Rasterize into a scratch copy so an error leaves res.Grid untouched.
	out := res.Grid.Clone()
	r := &Rasterizer{
		AOI:            opts.AOI,
		PlaneTolerance: opts.PlaneTolerance,
		Workers:        opts.Workers,
		Monitor:        m,
	}
	filled, canceled, err := r.Rasterize(tin, g, out)
	if err != nil {
		return res, err
	}
	res.Grid = out
	res.Stats.Filled = filled
	if canceled {
		log.WithField("filled", filled).Info("canceled while filling grid")
		res.Canceled = true
		return res, nil
	}
	log.WithField("filled", filled).Debug("grid filled")
	return res, nil
}

// triangulate inserts the samples in order and returns the TIN over the
// ones that were inserted.
func triangulate(samples []Sample, opts *Options, stats *Stats, m Monitor, log logrus.FieldLogger) (*TIN, bool, error) {
	tr, err := delaunay.New(delaunay.WithEps(opts.Eps))
	if err != nil {
		return nil, false, err
	}

	m.BeginTask(TaskTessellate, len(samples))
	kept := make([]Sample, 0, len(samples))
	for i, s := range samples {
		if m.IsCanceled() {
			return nil, true, nil
		}
		if _, err := tr.Insert(s.N); err != nil {
			if !errors.Is(err, delaunay.ErrDegenerateGeometry) || opts.DegeneratePolicy == AbortOnDegenerate {
				return nil, false, fmt.Errorf("tessgrid: sample %d at cell (%d, %d): %w", i, s.Row, s.Col, err)
			}
			stats.Skipped++
			log.WithFields(logrus.Fields{
				"row": s.Row,
				"col": s.Col,
			}).WithError(err).Warn("skipping degenerate sample")
		} else {
			kept = append(kept, s)
			stats.Inserted++
		}
		m.Worked(1)
	}

	tris, err := tr.Triangles()
	if err != nil {
		return nil, false, fmt.Errorf("tessgrid: %w", err)
	}
	return &TIN{Samples: kept, Triangles: tris}, false, nil
}

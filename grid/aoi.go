// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package grid

import (
	"errors"
	"fmt"

	"github.com/golang/geo/r2"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
)

// AreaOfInterest restricts which world locations take part in a run.
type AreaOfInterest interface {
	Contains(p r2.Point) bool
}

// AOIFunc adapts a plain function to AreaOfInterest.
type AOIFunc func(p r2.Point) bool

func (f AOIFunc) Contains(p r2.Point) bool { return f(p) }

// RectAOI accepts points inside (or on the boundary of) an axis-aligned
// rectangle.
type RectAOI r2.Rect

func (a RectAOI) Contains(p r2.Point) bool { return r2.Rect(a).ContainsPoint(p) }

// PolygonAOI accepts points inside any of its polygons. Holes are honored
// and boundary points count as inside.
type PolygonAOI struct {
	polygons orb.MultiPolygon
	bound    orb.Bound
}

// NewPolygonAOI builds an area of interest from one or more polygons.
func NewPolygonAOI(polygons ...orb.Polygon) (*PolygonAOI, error) {
	if len(polygons) == 0 {
		return nil, errors.New("grid: area of interest needs at least one polygon")
	}
	for i, p := range polygons {
		if len(p) == 0 || len(p[0]) < 3 {
			return nil, fmt.Errorf("grid: polygon %d outer ring must have at least 3 points", i)
		}
	}
	mp := orb.MultiPolygon(polygons)
	return &PolygonAOI{polygons: mp, bound: mp.Bound()}, nil
}

// ParseGeoJSONAOI parses a GeoJSON Polygon or MultiPolygon. The geometry
// may be bare, wrapped in a Feature, or spread over the features of a
// FeatureCollection.
func ParseGeoJSONAOI(data []byte) (*PolygonAOI, error) {
	var geoms []orb.Geometry
	if g, err := geojson.UnmarshalGeometry(data); err == nil {
		geoms = append(geoms, g.Geometry())
	} else if f, ferr := geojson.UnmarshalFeature(data); ferr == nil {
		geoms = append(geoms, f.Geometry)
	} else if fc, cerr := geojson.UnmarshalFeatureCollection(data); cerr == nil {
		for _, f := range fc.Features {
			geoms = append(geoms, f.Geometry)
		}
	} else {
		return nil, fmt.Errorf("grid: failed to parse area of interest: %w", err)
	}

	var polygons []orb.Polygon
	for _, g := range geoms {
		switch geom := g.(type) {
		case orb.Polygon:
			polygons = append(polygons, geom)
		case orb.MultiPolygon:
			polygons = append(polygons, geom...)
		case nil:
			return nil, errors.New("grid: area of interest has no geometry")
		default:
			return nil, fmt.Errorf("grid: unsupported area of interest type %s (only Polygon and MultiPolygon are supported)",
				geom.GeoJSONType())
		}
	}
	return NewPolygonAOI(polygons...)
}

func (a *PolygonAOI) Contains(p r2.Point) bool {
	pt := orb.Point{p.X, p.Y}
	if !a.bound.Contains(pt) {
		return false
	}
	return planar.MultiPolygonContains(a.polygons, pt)
}

// Bound returns the bounding rectangle of the area of interest.
func (a *PolygonAOI) Bound() r2.Rect {
	return r2.RectFromPoints(
		r2.Point{X: a.bound.Min[0], Y: a.bound.Min[1]},
		r2.Point{X: a.bound.Max[0], Y: a.bound.Max[1]},
	)
}

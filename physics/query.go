package physics

import (
	"sort"

	"github.com/jakecoffman/cp"
)

// RayFilter selects which shapes a ray may report.
type RayFilter struct {
	// Self is excluded.
	Self *cp.Body
	// Group excludes every shape sharing a non-zero filter group.
	Group uint
	// Accept limits hits to these categories. Zero accepts everything.
	Accept Category
	// IncludeSensors reports sensor shapes too.
	IncludeSensors bool
	// Predicate, when set, gets the final say on a candidate hit.
	Predicate func(hit RayHit) bool
}

// RayHit is a single segment query result.
type RayHit struct {
	Shape    *cp.Shape
	Point    cp.Vector
	Normal   cp.Vector
	Fraction float64
	Category Category
	Owner    any
}

func (w *World) rayHits(start, end cp.Vector, f RayFilter) []RayHit {
	if w == nil || w.space == nil {
		return nil
	}
	var hits []RayHit
	w.space.SegmentQuery(start, end, 0, cp.SHAPE_FILTER_ALL, func(shape *cp.Shape, point, normal cp.Vector, alpha float64, data interface{}) {
		if shape == nil {
			return
		}
		if f.Self != nil && shape.Body() == f.Self {
			return
		}
		if f.Group != 0 && shape.Filter.Group == f.Group {
			return
		}
		if !f.IncludeSensors && shape.Sensor() {
			return
		}
		cat := shapeCategory(shape)
		if f.Accept != CategoryNone && !f.Accept.Has(cat) {
			return
		}
		owner := shape.UserData
		if owner == nil {
			owner = w.Owner(shape.Body())
		}
		hits = append(hits, RayHit{Shape: shape, Point: point, Normal: normal, Fraction: alpha, Category: cat, Owner: owner})
	}, nil)
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Fraction < hits[j].Fraction })
	return hits
}

// RayCast returns the nearest hit between start and end that passes f.
func (w *World) RayCast(start, end cp.Vector, f RayFilter) (RayHit, bool) {
	for _, hit := range w.rayHits(start, end, f) {
		if f.Predicate != nil && !f.Predicate(hit) {
			continue
		}
		return hit, true
	}
	return RayHit{}, false
}

// RayCastAny reports whether the nearest shape on the segment passes f.
// Shapes rejected by Accept or Self are transparent; the first remaining
// shape decides the answer through Predicate.
func (w *World) RayCastAny(start, end cp.Vector, f RayFilter) bool {
	hits := w.rayHits(start, end, f)
	if len(hits) == 0 {
		return false
	}
	if f.Predicate == nil {
		return true
	}
	return f.Predicate(hits[0])
}

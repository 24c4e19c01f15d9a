package tables

import (
	"sort"

	"github.com/tidwall/rtree"

	"github.com/tsawler/gridmatch/model"
)

// IntersectionPoint is a clustered location where segments meet, together
// with the horizontal and vertical segments incident to it.
type IntersectionPoint struct {
	Point      model.Point
	Horizontal []Segment
	Vertical   []Segment
}

// Degree returns the number of incident segments.
func (ip *IntersectionPoint) Degree() int {
	return len(ip.Horizontal) + len(ip.Vertical)
}

// EdgeExistsBetween reports whether one of the point's incident segments of
// the given orientation passes within tol of pt.
func (ip *IntersectionPoint) EdgeExistsBetween(pt model.Point, o Orientation, tol float64) bool {
	edges := ip.Horizontal
	if o == Vertical {
		edges = ip.Vertical
	}
	for _, s := range edges {
		if s.MinDistance(pt) <= tol {
			return true
		}
	}
	return false
}

func (ip *IntersectionPoint) addSegment(s Segment, tol float64) {
	set := &ip.Horizontal
	if s.Orientation() == Vertical {
		set = &ip.Vertical
	}
	for _, existing := range *set {
		if existing.IsClose(s, tol) {
			return
		}
	}
	*set = append(*set, s)
}

// Index clusters pairwise segment intersections into deduplicated points.
// Candidate pairs and merge targets are looked up through R-trees; the
// result is the same as the exhaustive pairwise scan.
type Index struct {
	params Params
	points []*IntersectionPoint
	tree   rtree.RTreeG[int]
}

// NewIndex creates an empty index.
func NewIndex(p Params) *Index {
	return &Index{params: p}
}

// Build computes the intersection points of segments.
func Build(segments []Segment, p Params) []*IntersectionPoint {
	ix := NewIndex(p)
	ix.AddSegments(segments)
	return ix.Points()
}

// AddSegments intersects every unordered pair of segments that are not the
// same edge and records the accepted points.
func (ix *Index) AddSegments(segments []Segment) {
	ordered := make([]Segment, len(segments))
	copy(ordered, segments)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].BBox().Bottom() > ordered[j].BBox().Bottom()
	})

	var segTree rtree.RTreeG[int]
	for i, s := range ordered {
		lo, hi := s.BBox().Bounds()
		segTree.Insert(lo, hi, i)
	}

	// Accepted points lie within PositionTol of both segments, so their
	// boxes are at most twice the tolerance apart.
	reach := 2*ix.params.PositionTol + 1e-9
	for i, s0 := range ordered {
		lo, hi := s0.BBox().Expand(reach).Bounds()
		var candidates []int
		segTree.Search(lo, hi, func(_, _ [2]float64, j int) bool {
			if j > i {
				candidates = append(candidates, j)
			}
			return true
		})
		sort.Ints(candidates)

		for _, j := range candidates {
			s1 := ordered[j]
			if s0.IsClose(s1, ix.params.PositionTol) {
				continue
			}
			pt, ok := s0.Intersect(s1, ix.params)
			if !ok {
				continue
			}
			ix.Add(pt, s0, s1)
		}
	}
}

// Add records that s0 and s1 meet at pt, merging into an existing point
// within tolerance when there is one.
func (ix *Index) Add(pt model.Point, s0, s1 Segment) {
	tol := ix.params.PositionTol
	if ip := ix.nearest(pt); ip != nil {
		ip.addSegment(s0, tol)
		ip.addSegment(s1, tol)
		return
	}

	ip := &IntersectionPoint{Point: pt}
	ip.addSegment(s0, tol)
	ip.addSegment(s1, tol)
	ix.points = append(ix.points, ip)
	ix.tree.Insert([2]float64{pt.X, pt.Y}, [2]float64{pt.X, pt.Y}, len(ix.points)-1)
}

// nearest returns the earliest recorded point within tolerance of pt.
func (ix *Index) nearest(pt model.Point) *IntersectionPoint {
	tol := ix.params.PositionTol
	found := -1
	ix.tree.Search(
		[2]float64{pt.X - tol, pt.Y - tol},
		[2]float64{pt.X + tol, pt.Y + tol},
		func(_, _ [2]float64, i int) bool {
			if ix.points[i].Point.IsClose(pt, tol) && (found < 0 || i < found) {
				found = i
			}
			return true
		},
	)
	if found < 0 {
		return nil
	}
	return ix.points[found]
}

// Points returns the recorded points ordered top-to-bottom, then
// left-to-right.
func (ix *Index) Points() []*IntersectionPoint {
	out := make([]*IntersectionPoint, len(ix.points))
	copy(out, ix.points)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Point, out[j].Point
		if a.Y != b.Y {
			return a.Y > b.Y
		}
		return a.X < b.X
	})
	return out
}

// Len returns the number of distinct points.
func (ix *Index) Len() int {
	return len(ix.points)
}

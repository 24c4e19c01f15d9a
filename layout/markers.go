package layout

import "github.com/tsawler/gridmatch/model"

// MarkerRule selects stroked lines that draw status marks (for example a red
// "X") instead of cell borders.
type MarkerRule struct {
	Color     model.Color
	Tolerance float64 // maximum RGB distance from Color
}

// ExtractMarkers pulls the lines matching rule out of prims and collapses
// them into curve markers, one per mark: a line whose center falls inside an
// existing marker is merged into it. It returns the markers and the
// remaining primitives.
func ExtractMarkers(prims []model.Primitive, rule MarkerRule) (markers, rest []model.Primitive) {
	for _, prim := range prims {
		if prim.Kind != model.KindLine || !prim.Style.Stroked ||
			prim.Style.Stroke.Distance(rule.Color) > rule.Tolerance {
			rest = append(rest, prim)
			continue
		}

		center := prim.BBox.Center()
		merged := false
		for i := range markers {
			if markers[i].BBox.Contains(center) {
				markers[i].Points = append(markers[i].Points, prim.Points...)
				markers[i].BBox = markers[i].BBox.Union(prim.BBox)
				merged = true
				break
			}
		}
		if !merged {
			markers = append(markers, model.NewCurve(append([]model.Point(nil), prim.Points...), prim.Style))
		}
	}
	return markers, rest
}

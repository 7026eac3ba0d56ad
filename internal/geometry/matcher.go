package geometry

// Candidate is a stored polygon with the lot id it belongs to.
// The caller supplies candidates in its snapshot iteration order;
// matching is first-wins, not best-wins.
type Candidate struct {
	LotID   int64
	Polygon Polygon
}

// Resolve maps an edited polygon, which arrives from the drawing tool
// with no identifier attached, back to the lot it was edited from.
//
// A candidate matches when it has exactly the same number of vertices
// and its first vertex lies within MatchTolerance of the edited
// polygon's first vertex on both axes. The first matching candidate
// wins. Resolve returns false when no candidate matches; the caller is
// expected to treat that as a no-op, not an error.
func Resolve(edited Polygon, candidates []Candidate) (int64, bool) {
	if len(edited) == 0 {
		return 0, false
	}
	for _, c := range candidates {
		if len(c.Polygon) != len(edited) {
			continue
		}
		if Near(c.Polygon[0], edited[0], MatchTolerance) {
			return c.LotID, true
		}
	}
	return 0, false
}

// Copyright 2026 The Clusterview Authors
// SPDX-License-Identifier: Apache-2.0

package supercluster

// Leaves returns the offsets of the original points aggregated under the given
// cluster id, in hierarchy order. A limit of zero or less returns all of them.
// Returns nil for ids unknown to the current index generation.
func (x *Index) Leaves(id int64, limit int) []int {
	e, ok := x.byID[id]
	if !ok {
		return nil
	}

	var out []int

	var walk func(n *entry) bool

	walk = func(n *entry) bool {
		if limit > 0 && len(out) >= limit {
			return false
		}

		if n.origin >= 0 {
			out = append(out, n.origin)

			return true
		}

		for _, c := range n.children {
			if !walk(c) {
				return false
			}
		}

		return true
	}

	walk(e)

	return out
}

// ExpansionZoom returns the lowest zoom level at which the given cluster
// splits into its children. The second result is false when the id is unknown
// to the current index generation, for example after a Load replaced the point
// set that produced it.
func (x *Index) ExpansionZoom(id int64) (int, bool) {
	e, ok := x.byID[id]
	if !ok {
		return 0, false
	}

	// A cluster formed while merging for zoom z renders its children
	// separately one level further in.
	return e.created + 1, true
}

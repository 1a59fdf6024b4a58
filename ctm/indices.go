package ctm

import "sort"

// rearrangeTriangles rotates each triangle so its smallest index comes first,
// keeping the winding, then sorts triangles by first and second index. This
// keeps the MG1 deltas small and non-negative.
func rearrangeTriangles(idx []uint32) {
	n := len(idx) / 3
	for i := 0; i < n; i++ {
		a, b, c := idx[i*3], idx[i*3+1], idx[i*3+2]
		switch {
		case b < a && b < c:
			a, b, c = b, c, a
		case c < a && c < b:
			a, b, c = c, a, b
		}
		idx[i*3], idx[i*3+1], idx[i*3+2] = a, b, c
	}
	sort.Sort(triangles(idx[:n*3]))
}

type triangles []uint32

func (t triangles) Len() int { return len(t) / 3 }

func (t triangles) Less(i, j int) bool {
	if t[i*3] != t[j*3] {
		return t[i*3] < t[j*3]
	}
	return t[i*3+1] < t[j*3+1]
}

func (t triangles) Swap(i, j int) {
	t[i*3], t[j*3] = t[j*3], t[i*3]
	t[i*3+1], t[j*3+1] = t[j*3+1], t[i*3+1]
	t[i*3+2], t[j*3+2] = t[j*3+2], t[i*3+2]
}

// makeIndexDeltas replaces indices with MG1 deltas in place. Arithmetic wraps,
// so unsorted input still round-trips.
func makeIndexDeltas(idx []uint32) {
	n := len(idx) / 3
	for i := n - 1; i >= 0; i-- {
		if i >= 1 && idx[i*3] == idx[(i-1)*3] {
			idx[i*3+1] -= idx[(i-1)*3+1]
		} else {
			idx[i*3+1] -= idx[i*3]
		}
		idx[i*3+2] -= idx[i*3]
		if i >= 1 {
			idx[i*3] -= idx[(i-1)*3]
		}
	}
}

// restoreIndices is the inverse of makeIndexDeltas.
func restoreIndices(idx []uint32) {
	n := len(idx) / 3
	for i := 0; i < n; i++ {
		if i >= 1 {
			idx[i*3] += idx[(i-1)*3]
		}
		idx[i*3+2] += idx[i*3]
		if i >= 1 && idx[i*3] == idx[(i-1)*3] {
			idx[i*3+1] += idx[(i-1)*3+1]
		} else {
			idx[i*3+1] += idx[i*3]
		}
	}
}

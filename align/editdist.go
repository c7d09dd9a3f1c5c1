package align

// Direction codes recorded per DP cell for the traceback.
const (
	dirDiag = iota
	dirUp
	dirLeft
)

type editAligner struct{}

// NewEditAligner returns a PairwiseAligner that minimizes unit-cost edit
// distance. The text prefix and suffix around the pattern are free; the
// DP abandons early once every extension already exceeds maxDistance.
func NewEditAligner() PairwiseAligner {
	return editAligner{}
}

func (editAligner) Align(pattern, text []byte, maxDistance int) (Alignment, bool) {
	m, n := len(pattern), len(text)
	if m == 0 || n == 0 {
		return Alignment{}, false
	}

	// Row-major (m+1) x (n+1) direction matrix; distances use two rolling
	// rows. Row 0 is all zeros: the alignment may start anywhere in text.
	dirs := make([]byte, (m+1)*(n+1))
	prev := make([]int, n+1)
	curr := make([]int, n+1)

	for i := 1; i <= m; i++ {
		curr[0] = i
		dirs[i*(n+1)] = dirUp
		rowMin := curr[0]
		for j := 1; j <= n; j++ {
			best := prev[j-1]
			if pattern[i-1] != text[j-1] {
				best++
			}
			d := byte(dirDiag)
			if up := prev[j] + 1; up < best {
				best, d = up, dirUp
			}
			if left := curr[j-1] + 1; left < best {
				best, d = left, dirLeft
			}
			curr[j] = best
			dirs[i*(n+1)+j] = d
			if best < rowMin {
				rowMin = best
			}
		}
		// The per-row minimum never decreases, so once it passes the
		// bound no full-pattern alignment can come back under it.
		if maxDistance >= 0 && rowMin > maxDistance {
			return Alignment{}, false
		}
		prev, curr = curr, prev
	}

	bestJ, bestD := 0, prev[0]
	for j := 1; j <= n; j++ {
		if prev[j] < bestD {
			bestJ, bestD = j, prev[j]
		}
	}
	if maxDistance >= 0 && bestD > maxDistance {
		return Alignment{}, false
	}

	path := make([]byte, 0, m+bestD)
	for i, j := m, bestJ; i > 0; {
		switch dirs[i*(n+1)+j] {
		case dirUp:
			path = append(path, opInsert)
			i--
		case dirLeft:
			path = append(path, opDelete)
			j--
		default:
			if pattern[i-1] == text[j-1] {
				path = append(path, opMatch)
			} else {
				path = append(path, opMismatch)
			}
			i--
			j--
		}
	}
	reversePath(path)
	return pathAlignment(path), true
}

func reversePath(path []byte) {
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
}

package align

// gapAffineAligner implements Gotoh's three-state dynamic program with
// affine gap penalties in semi-global mode. A run of k gap bases costs
// gapOpen + k*gapExtend; matches cost zero. The three-state recurrence
// mirrors the wavefront formulation of the gap-affine model, so paths
// score as they would under a wavefront gap-affine aligner.
type gapAffineAligner struct {
	mismatch  int
	gapOpen   int
	gapExtend int
}

// NewGapAffineAligner returns a PairwiseAligner scoring under the
// gap-affine model. maxDistance still bounds the unit-cost edit count of
// the returned path, not its affine score, so the acceptance criterion is
// the same for both backends.
func NewGapAffineAligner(mismatch, gapOpen, gapExtend int) PairwiseAligner {
	return &gapAffineAligner{mismatch: mismatch, gapOpen: gapOpen, gapExtend: gapExtend}
}

// DefaultGapAffinePenalties are the mismatch, gap-open, and gap-extend
// penalties used when the backend is selected without explicit scores.
var DefaultGapAffinePenalties = [3]int{4, 6, 2}

const scoreInf = 1 << 30

// Predecessor-state bits packed per DP cell.
const (
	predMMask = 0x3 // predecessor of the match state: stateM/stateIx/stateIy
	predIxExt = 0x4 // Ix extends a previous Ix (rather than opening from M)
	predIyExt = 0x8 // Iy extends a previous Iy
	stateM    = 0
	stateIx   = 1
	stateIy   = 2
)

func (g *gapAffineAligner) Align(pattern, text []byte, maxDistance int) (Alignment, bool) {
	m, n := len(pattern), len(text)
	if m == 0 || n == 0 {
		return Alignment{}, false
	}

	preds := make([]byte, (m+1)*(n+1))
	prevM := make([]int, n+1)
	prevIx := make([]int, n+1)
	prevIy := make([]int, n+1)
	currM := make([]int, n+1)
	currIx := make([]int, n+1)
	currIy := make([]int, n+1)

	// Row 0: the alignment may start at any text offset for free.
	for j := 0; j <= n; j++ {
		prevM[j] = 0
		prevIx[j] = scoreInf
		prevIy[j] = scoreInf
	}

	for i := 1; i <= m; i++ {
		currM[0] = scoreInf
		currIy[0] = scoreInf
		currIx[0] = g.gapOpen + i*g.gapExtend
		if i > 1 {
			preds[i*(n+1)] = predIxExt
		}
		for j := 1; j <= n; j++ {
			var pred byte

			// Ix: gap consuming pattern[i-1].
			open := prevM[j] + g.gapOpen + g.gapExtend
			extend := prevIx[j] + g.gapExtend
			if extend < open {
				currIx[j] = extend
				pred |= predIxExt
			} else {
				currIx[j] = open
			}

			// M: pattern[i-1] aligned against text[j-1].
			diag := prevM[j-1]
			from := byte(stateM)
			if prevIx[j-1] < diag {
				diag = prevIx[j-1]
				from = stateIx
			}
			if prevIy[j-1] < diag {
				diag = prevIy[j-1]
				from = stateIy
			}
			if pattern[i-1] != text[j-1] {
				diag += g.mismatch
			}
			currM[j] = diag
			pred |= from

			// Iy: gap consuming text[j-1].
			open = currM[j-1] + g.gapOpen + g.gapExtend
			extend = currIy[j-1] + g.gapExtend
			if extend < open {
				currIy[j] = extend
				pred |= predIyExt
			} else {
				currIy[j] = open
			}

			preds[i*(n+1)+j] = pred
		}
		prevM, currM = currM, prevM
		prevIx, currIx = currIx, prevIx
		prevIy, currIy = currIy, prevIy
	}

	// The text suffix is free, so the alignment ends at the best
	// last-row cell in the M or Ix state. Ending in Iy would append
	// deletions that the free suffix makes redundant.
	bestJ, bestScore, endState := 0, scoreInf, stateM
	for j := 0; j <= n; j++ {
		if prevM[j] < bestScore {
			bestJ, bestScore, endState = j, prevM[j], stateM
		}
		if prevIx[j] < bestScore {
			bestJ, bestScore, endState = j, prevIx[j], stateIx
		}
	}
	if bestScore >= scoreInf {
		return Alignment{}, false
	}

	path := make([]byte, 0, m)
	state := endState
	for i, j := m, bestJ; i > 0; {
		pred := preds[i*(n+1)+j]
		switch state {
		case stateIx:
			path = append(path, opInsert)
			if pred&predIxExt == 0 {
				state = stateM
			}
			i--
		case stateIy:
			path = append(path, opDelete)
			if pred&predIyExt == 0 {
				state = stateM
			}
			j--
		default:
			if pattern[i-1] == text[j-1] {
				path = append(path, opMatch)
			} else {
				path = append(path, opMismatch)
			}
			state = int(pred & predMMask)
			i--
			j--
		}
	}
	reversePath(path)
	aln := pathAlignment(path)
	if maxDistance >= 0 && aln.EditDistance > maxDistance {
		return Alignment{}, false
	}
	return aln, true
}

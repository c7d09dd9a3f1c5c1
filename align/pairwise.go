package align

import "strconv"

// Extended CIGAR operation codes. Matches and mismatches are
// distinguished ('=' vs 'X'); 'I' consumes only the pattern and 'D'
// consumes only the text.
const (
	opMatch    = '='
	opMismatch = 'X'
	opInsert   = 'I'
	opDelete   = 'D'
)

// An Alignment is the result of aligning a pattern against a text window.
type Alignment struct {
	// EditDistance is the number of mismatches and indels on the path.
	EditDistance int
	// Length is the total number of path operations.
	Length int
	// Cigar is the extended CIGAR rendering of the path.
	Cigar []byte
}

// A PairwiseAligner computes a semi-global alignment: the pattern must
// align end-to-end while the text may extend beyond it on both sides.
// maxDistance bounds the edit distance of an acceptable alignment; a
// negative value means unbounded. Implementations return ok=false when no
// alignment satisfies the bound. Implementations must be safe for
// concurrent use.
type PairwiseAligner interface {
	Align(pattern, text []byte, maxDistance int) (aln Alignment, ok bool)
}

// cigarFromPath run-length encodes a path of per-base operation codes.
func cigarFromPath(path []byte) []byte {
	cigar := make([]byte, 0, 16)
	for i := 0; i < len(path); {
		j := i
		for j < len(path) && path[j] == path[i] {
			j++
		}
		cigar = strconv.AppendInt(cigar, int64(j-i), 10)
		cigar = append(cigar, path[i])
		i = j
	}
	return cigar
}

// pathEdits counts the non-match operations on a path.
func pathEdits(path []byte) int {
	edits := 0
	for _, op := range path {
		if op != opMatch {
			edits++
		}
	}
	return edits
}

// pathAlignment packages a finished operation path as an Alignment.
func pathAlignment(path []byte) Alignment {
	return Alignment{
		EditDistance: pathEdits(path),
		Length:       len(path),
		Cigar:        cigarFromPath(path),
	}
}

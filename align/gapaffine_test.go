package align

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGapAffine() PairwiseAligner {
	p := DefaultGapAffinePenalties
	return NewGapAffineAligner(p[0], p[1], p[2])
}

func TestGapAffineIdentity(t *testing.T) {
	aln, ok := newTestGapAffine().Align([]byte("ACGTACGT"), []byte("ACGTACGT"), -1)
	require.True(t, ok)
	assert.Equal(t, 0, aln.EditDistance)
	assert.Equal(t, "8=", string(aln.Cigar))
}

func TestGapAffineSemiGlobal(t *testing.T) {
	pattern, text := []byte("CGTA"), []byte("AACGTAAA")
	aln, ok := newTestGapAffine().Align(pattern, text, -1)
	require.True(t, ok)
	assert.Equal(t, 0, aln.EditDistance)
	assert.Equal(t, "4=", string(aln.Cigar))
	checkAlignment(t, aln, pattern, text)
}

func TestGapAffineMismatchOverGap(t *testing.T) {
	// A substitution (4) is cheaper than an indel pair (8 each).
	pattern, text := []byte("ACGTA"), []byte("ACCTA")
	aln, ok := newTestGapAffine().Align(pattern, text, -1)
	require.True(t, ok)
	assert.Equal(t, "2=1X2=", string(aln.Cigar))
	checkAlignment(t, aln, pattern, text)
}

func TestGapAffineContiguousGap(t *testing.T) {
	// The affine model keeps the two inserted bases in one run.
	pattern, text := []byte("ACGTTCGA"), []byte("ACGCGA")
	aln, ok := newTestGapAffine().Align(pattern, text, -1)
	require.True(t, ok)
	assert.Equal(t, 2, aln.EditDistance)
	assert.Equal(t, "3=2I3=", string(aln.Cigar))
	checkAlignment(t, aln, pattern, text)
}

func TestGapAffineDeletionRun(t *testing.T) {
	pattern, text := []byte("ACGCGA"), []byte("ACGTTCGA")
	aln, ok := newTestGapAffine().Align(pattern, text, -1)
	require.True(t, ok)
	assert.Equal(t, 2, aln.EditDistance)
	checkAlignment(t, aln, pattern, text)
}

func TestGapAffineBound(t *testing.T) {
	_, ok := newTestGapAffine().Align([]byte("AAAA"), []byte("TTTT"), 2)
	assert.False(t, ok)

	aln, ok := newTestGapAffine().Align([]byte("ACGTA"), []byte("ACCTA"), 1)
	require.True(t, ok)
	assert.Equal(t, 1, aln.EditDistance)
}

func TestGapAffineEmpty(t *testing.T) {
	_, ok := newTestGapAffine().Align(nil, []byte("ACGT"), -1)
	assert.False(t, ok)
}

func TestBackendsAgreeOnCleanCases(t *testing.T) {
	cases := [][2]string{
		{"ACGTACGT", "ACGTACGT"},
		{"CGTA", "AACGTAAA"},
		{"ACGTA", "ACCTA"},
	}
	edit := NewEditAligner()
	affine := newTestGapAffine()
	for _, c := range cases {
		p, x := []byte(c[0]), []byte(c[1])
		a1, ok1 := edit.Align(p, x, -1)
		a2, ok2 := affine.Align(p, x, -1)
		require.True(t, ok1 && ok2)
		assert.Equal(t, a1.EditDistance, a2.EditDistance, "pattern %s text %s", c[0], c[1])
	}
}

package align

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMapping(t *testing.T) {
	m, err := ParseMapping("q1\t100\t5\t94\t+\tr1\t5000\t250\t340\t60\textra")
	require.NoError(t, err)
	assert.Equal(t, Mapping{
		QueryID:    "q1",
		QueryStart: 5,
		QueryEnd:   94,
		Strand:     Fwd,
		RefID:      "r1",
		RefStart:   250,
		RefEnd:     340,
	}, m)

	// Any whitespace separates columns.
	m, err = ParseMapping("q2 8 0 7 - r2 10 0 7 42")
	require.NoError(t, err)
	assert.Equal(t, Rev, m.Strand)
	assert.Equal(t, "r2", m.RefID)
}

func TestParseMappingErrors(t *testing.T) {
	for _, line := range []string{
		"",
		"q1\t100\t5\t94\t+\tr1\t5000\t250", // 8 columns
		"q1 100 5 94 * r1 5000 250 340",   // bad strand
		"q1 100 five 94 + r1 5000 250 340",
		"q1 100 5 94 + r1 5000 250 -340",
		"q1 100 94 5 + r1 5000 250 340", // inverted query interval
		"q1 100 5 94 + r1 5000 340 250", // inverted reference interval
	} {
		_, err := ParseMapping(line)
		assert.Error(t, err, "line %q", line)
	}
}

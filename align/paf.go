package align

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Strand orients a mapped query segment relative to the reference.
type Strand uint8

const (
	// Fwd means the query segment maps to the forward reference strand.
	Fwd Strand = iota
	// Rev means the query segment maps to the reverse-complement strand.
	Rev
)

// A Mapping is one approximate mapping produced by the upstream
// sketch-based mapper, parsed from a PAF-shaped row. Positions are
// 0-based and both interval ends are inclusive.
type Mapping struct {
	QueryID    string
	QueryStart int
	QueryEnd   int
	Strand     Strand
	RefID      string
	RefStart   int
	RefEnd     int
}

// A mashmap mapping row carries at least these many columns. Columns past
// the ninth are ignored.
const minMappingColumns = 9

// ParseMapping parses one whitespace-delimited mapping row.
func ParseMapping(line string) (Mapping, error) {
	tokens := strings.Fields(line)
	if len(tokens) < minMappingColumns {
		return Mapping{}, errors.Errorf("mapping row has %d columns, need at least %d: %q",
			len(tokens), minMappingColumns, line)
	}
	m := Mapping{QueryID: tokens[0], RefID: tokens[5]}
	var err error
	if m.QueryStart, err = parsePos(tokens[2]); err != nil {
		return Mapping{}, errors.Wrapf(err, "bad query start in %q", line)
	}
	if m.QueryEnd, err = parsePos(tokens[3]); err != nil {
		return Mapping{}, errors.Wrapf(err, "bad query end in %q", line)
	}
	switch tokens[4] {
	case "+":
		m.Strand = Fwd
	case "-":
		m.Strand = Rev
	default:
		return Mapping{}, errors.Errorf("bad strand %q in %q", tokens[4], line)
	}
	if m.RefStart, err = parsePos(tokens[7]); err != nil {
		return Mapping{}, errors.Wrapf(err, "bad reference start in %q", line)
	}
	if m.RefEnd, err = parsePos(tokens[8]); err != nil {
		return Mapping{}, errors.Wrapf(err, "bad reference end in %q", line)
	}
	if m.QueryEnd < m.QueryStart {
		return Mapping{}, errors.Errorf("inverted query interval in %q", line)
	}
	if m.RefEnd < m.RefStart {
		return Mapping{}, errors.Errorf("inverted reference interval in %q", line)
	}
	return m, nil
}

func parsePos(s string) (int, error) {
	v, err := strconv.ParseUint(s, 10, 63)
	return int(v), err
}

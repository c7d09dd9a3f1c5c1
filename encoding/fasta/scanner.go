package fasta

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"strings"
)

// ErrInvalid is returned when sequence data precedes the first header.
var ErrInvalid = errors.New("invalid FASTA file")

var errEOF = errors.New("eof")

// maxTokenSize bounds a single FASTA line; some references put a whole
// chromosome on one line.
const maxTokenSize = 1024 * 1024 * 300 // 300 MB

// A Record is one FASTA record, comprising a name and the concatenated
// sequence bytes.
type Record struct {
	ID  string
	Seq []byte
}

// Scanner provides a convenient interface for reading FASTA records
// sequentially. The Scan method reads the next record, returning a boolean
// indicating whether the read succeeded. Record.Seq is freshly allocated
// on each Scan; the caller owns it afterwards. Scanners are not
// threadsafe.
type Scanner struct {
	b       *bufio.Scanner
	header  string
	pending bool
	err     error
}

// NewScanner constructs a new Scanner that reads raw FASTA data from the
// provided reader.
func NewScanner(r io.Reader) *Scanner {
	b := bufio.NewScanner(r)
	b.Buffer(nil, maxTokenSize)
	return &Scanner{b: b}
}

// Scan the next record into the provided record. Scan returns a boolean
// indicating whether the scan succeeded. Once Scan returns false, it never
// returns true again. Upon completion, the user should check the Err
// method to determine whether scanning stopped because of an error or
// because the end of the stream was reached.
func (s *Scanner) Scan(rec *Record) bool {
	if s.err != nil {
		return false
	}
	if !s.pending && !s.scanHeader() {
		return false
	}
	rec.ID = headerID(s.header)
	s.header = ""
	s.pending = false
	var seq []byte
	for s.b.Scan() {
		line := s.b.Bytes()
		if len(line) == 0 {
			continue
		}
		if line[0] == '>' {
			s.header = string(line)
			s.pending = true
			break
		}
		seq = append(seq, bytes.TrimSpace(line)...)
	}
	if !s.pending {
		if s.err = s.b.Err(); s.err != nil {
			return false
		}
		s.err = errEOF
	}
	rec.Seq = seq
	return true
}

// scanHeader advances to the first header line of the stream.
func (s *Scanner) scanHeader() bool {
	for s.b.Scan() {
		line := s.b.Bytes()
		if len(line) == 0 {
			continue
		}
		if line[0] != '>' {
			s.err = ErrInvalid
			return false
		}
		s.header = string(line)
		s.pending = true
		return true
	}
	if s.err = s.b.Err(); s.err == nil {
		s.err = errEOF
	}
	return false
}

// Err returns the scanning error, if any.
func (s *Scanner) Err() error {
	if s.err == errEOF {
		return nil
	}
	return s.err
}

func headerID(header string) string {
	id := strings.TrimSpace(header[1:])
	if i := strings.IndexAny(id, " \t"); i >= 0 {
		id = id[:i]
	}
	return id
}

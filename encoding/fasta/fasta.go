// Package fasta contains code for loading and streaming FASTA files.
// Briefly, FASTA files consist of a number of named sequences that may be
// interrupted by newlines.  For example:
//
// >chr7
// ACGTAC
// GAGGAC
// GCG
// >chr8
// ACGT
//
// Note: Sequence names are defined to be the stretch of characters excluding
// spaces immediately after '>'.  Any text appearing after a space is ignored.
// For example, '>chr1 A viral sequence' becomes 'chr1'.
package fasta

import (
	"context"
	"io"
	"sync"

	"github.com/grailbio/base/compress"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/traverse"
	"github.com/pkg/errors"
)

// Index holds a set of named sequences in memory. Sequence bytes are
// uppercased at load time. Once built, an Index is immutable and may be
// read from any number of goroutines without locking.
type Index struct {
	mu   sync.Mutex // guards seqs/ids during the build only
	seqs map[string][]byte
	ids  []string
}

// NewIndex reads the given FASTA files, which may be gzipped or plain, and
// returns an Index keyed by sequence name. An identifier that repeats
// within or across files is an error.
func NewIndex(ctx context.Context, paths []string) (*Index, error) {
	idx := &Index{seqs: make(map[string][]byte)}
	err := traverse.Each(len(paths), func(i int) error {
		return idx.addFile(ctx, paths[i])
	})
	if err != nil {
		return nil, err
	}
	return idx, nil
}

func (x *Index) addFile(ctx context.Context, path string) error {
	in, err := file.Open(ctx, path)
	if err != nil {
		return err
	}
	var r io.Reader = in.Reader(ctx)
	if u := compress.NewReaderPath(r, in.Name()); u != nil {
		r = u
	}
	err = x.add(r, path)
	if cerr := in.Close(ctx); err == nil {
		err = cerr
	}
	return err
}

func (x *Index) add(r io.Reader, path string) error {
	sc := NewScanner(r)
	var rec Record
	for sc.Scan(&rec) {
		ToUpper(rec.Seq)
		x.mu.Lock()
		if _, ok := x.seqs[rec.ID]; ok {
			x.mu.Unlock()
			return errors.Errorf("%s: duplicate sequence %s", path, rec.ID)
		}
		x.seqs[rec.ID] = rec.Seq
		x.ids = append(x.ids, rec.ID)
		x.mu.Unlock()
	}
	return errors.Wrapf(sc.Err(), "couldn't read FASTA data from %s", path)
}

// Get returns the full sequence for the given name. The returned slice is
// shared and must not be modified. Asking for an unregistered sequence is a
// programmer error; callers check Has first.
func (x *Index) Get(id string) []byte {
	seq, ok := x.seqs[id]
	if !ok {
		log.Panicf("sequence not found: %s", id)
	}
	return seq
}

// Has reports whether a sequence with the given name was loaded.
func (x *Index) Has(id string) bool {
	_, ok := x.seqs[id]
	return ok
}

// Len returns the length of the given sequence, or zero if it is absent.
func (x *Index) Len(id string) int {
	return len(x.seqs[id])
}

// SeqIDs returns the names of all sequences in load order.
func (x *Index) SeqIDs() []string {
	return x.ids
}

var upperTable = func() (t [256]byte) {
	for i := 0; i < 256; i++ {
		c := byte(i)
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		t[i] = c
	}
	return
}()

// ToUpper uppercases sequence bytes in place.
func ToUpper(seq []byte) {
	for i, c := range seq {
		seq[i] = upperTable[c]
	}
}

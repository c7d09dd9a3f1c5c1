// Package align computes base-level pairwise alignments for the
// approximate query-to-reference mappings produced by a sketch-based
// mapper. Mappings stream through a single reader, a pool of alignment
// workers, and a single writer; the reference sequences are loaded once
// and shared read-only by all workers.
package align

import (
	"bufio"
	"context"
	"io"
	"strconv"
	"sync"

	"github.com/ASLeonard/wfmash/encoding/fasta"
	"github.com/grailbio/base/compress"
	"github.com/grailbio/base/errorreporter"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	gunsafe "github.com/grailbio/base/unsafe"
	"github.com/pkg/errors"
)

// Opts configures an Aligner.
type Opts struct {
	// RefPaths lists the reference FASTA files, gzipped or plain.
	RefPaths []string
	// QueryPaths lists the query FASTA files. Queries must appear in the
	// same order as their mappings in MappingPath.
	QueryPaths []string
	// MappingPath is the mashmap mapping file, grouped by query id.
	MappingPath string
	// OutputPath receives one PAF-shaped row per successful alignment.
	OutputPath string
	// Threads is the number of alignment workers, >= 1.
	Threads int
	// PercentIdentity is the target minimum percent identity. Zero leaves
	// the edit distance unbounded.
	PercentIdentity float64
	// Aligner selects the pairwise backend: "edit" or "gap-affine".
	Aligner string
}

// DefaultOpts sets the default values for Opts.
var DefaultOpts = Opts{
	OutputPath:      "./alignments.paf", // -out
	Threads:         1,                  // -threads
	PercentIdentity: 0,                  // -identity
	Aligner:         "edit",             // -aligner
}

// Q1 and Q2 depth, sized to the upstream segment stream.
const queueDepth = 1 << 17

// Progress log cadence, in query records.
const progressInterval = 1 << 20

// A workUnit pairs one mapping with the query sequence it refers to. The
// query bytes are owned by the pipeline, never by the FASTA scanner, so
// the reader is free to advance; units for the same query share one
// immutable buffer.
type workUnit struct {
	rec  Mapping
	line string
	qSeq []byte
}

// Stats counts pipeline outcomes.
type Stats struct {
	// Mappings is the number of work units dequeued by workers.
	Mappings int64
	// Aligned is the number of mappings that produced an output row.
	Aligned int64
	// Failed is the number of mappings the pairwise aligner rejected.
	Failed int64
}

// Merge adds the counters of other to s and returns the result.
func (s Stats) Merge(other Stats) Stats {
	s.Mappings += other.Mappings
	s.Aligned += other.Aligned
	s.Failed += other.Failed
	return s
}

// An Aligner owns the loaded reference index and the pipeline
// configuration. Construct with NewAligner, then call Run once.
type Aligner struct {
	opts Opts
	refs *fasta.Index
	pw   PairwiseAligner
}

// NewAligner validates opts and loads the reference sequences.
func NewAligner(ctx context.Context, opts Opts) (*Aligner, error) {
	if opts.Threads < 1 {
		return nil, errors.Errorf("threads must be >= 1, got %d", opts.Threads)
	}
	var pw PairwiseAligner
	switch opts.Aligner {
	case "", "edit":
		pw = NewEditAligner()
	case "gap-affine":
		p := DefaultGapAffinePenalties
		pw = NewGapAffineAligner(p[0], p[1], p[2])
	default:
		return nil, errors.Errorf("unknown aligner backend %q", opts.Aligner)
	}
	refs, err := fasta.NewIndex(ctx, opts.RefPaths)
	if err != nil {
		return nil, err
	}
	return &Aligner{opts: opts, refs: refs, pw: pw}, nil
}

// Run executes the pipeline: one reader goroutine feeding Q1, Threads
// workers feeding Q2, and one writer draining Q2 into OutputPath. It
// returns the first fatal error recorded by any of them.
//
// Termination protocol: closing Q1 is the reader-done signal; a worker
// exits only once Q1 is closed and drained, with its in-flight result
// already on Q2. Q2 closes after the worker join, so the writer exits
// only after every worker has terminated and Q2 is drained.
func (a *Aligner) Run(ctx context.Context) error {
	units := make(chan workUnit, queueDepth)
	results := make(chan string, queueDepth)
	errp := errorreporter.T{}

	go func() {
		a.readMappings(ctx, units, &errp)
		close(units)
	}()

	var stats Stats
	var statsMu sync.Mutex
	var workers sync.WaitGroup
	workers.Add(a.opts.Threads)
	for t := 0; t < a.opts.Threads; t++ {
		go func() {
			defer workers.Done()
			s := a.alignUnits(units, results)
			statsMu.Lock()
			stats = stats.Merge(s)
			statsMu.Unlock()
		}()
	}

	var writer sync.WaitGroup
	writer.Add(1)
	go func() {
		defer writer.Done()
		a.writeResults(ctx, results, &errp)
	}()

	workers.Wait()
	close(results)
	writer.Wait()

	log.Printf("Stats: aligned %d of %d mappings, %d rejected by the aligner",
		stats.Aligned, stats.Mappings, stats.Failed)
	return errp.Err()
}

// readMappings walks the query FASTA stream and the mapping file in
// lock-step. The mapping file is grouped by query id in query order, so a
// single held row decides whether the current query has mappings: on an
// id mismatch the query is dropped and the row kept for a later query.
func (a *Aligner) readMappings(ctx context.Context, units chan<- workUnit, errp *errorreporter.T) {
	maps, err := file.Open(ctx, a.opts.MappingPath)
	if err != nil {
		errp.Set(err)
		return
	}
	defer func() { errp.Set(maps.Close(ctx)) }()
	rows := bufio.NewScanner(maps.Reader(ctx))
	rows.Buffer(nil, 1<<26)

	var (
		held      string
		heldValid bool
		done      bool
		nQueries  int64
	)
	for _, path := range a.opts.QueryPaths {
		if done {
			break
		}
		in, err := file.Open(ctx, path)
		if err != nil {
			errp.Set(err)
			return
		}
		var r io.Reader = in.Reader(ctx)
		if u := compress.NewReaderPath(r, in.Name()); u != nil {
			r = u
		}
		queries := fasta.NewScanner(r)
		var rec fasta.Record
		for queries.Scan(&rec) {
			nQueries++
			if nQueries%progressInterval == 0 {
				log.Printf("%s: %dMi query records", path, nQueries/progressInterval)
			}
			fasta.ToUpper(rec.Seq)
			if !heldValid {
				if !rows.Scan() {
					errp.Set(rows.Err())
					done = true
					break
				}
				held = rows.Text()
				heldValid = true
			}
			m, err := ParseMapping(held)
			if err != nil {
				errp.Set(err)
				done = true
				break
			}
			if m.QueryID != rec.ID {
				// This query has no mappings; the held row belongs to a
				// later one.
				continue
			}
			if !a.enqueue(units, m, held, rec.Seq, errp) {
				done = true
				break
			}
			heldValid = false
			for rows.Scan() {
				held = rows.Text()
				m, err := ParseMapping(held)
				if err != nil {
					errp.Set(err)
					done = true
					break
				}
				if m.QueryID != rec.ID {
					heldValid = true
					break
				}
				if !a.enqueue(units, m, held, rec.Seq, errp) {
					done = true
					break
				}
			}
			if done {
				break
			}
			if !heldValid {
				// Mapping stream exhausted; remaining queries cannot
				// produce work.
				errp.Set(rows.Err())
				done = true
				break
			}
		}
		errp.Set(errors.Wrapf(queries.Err(), "couldn't read query FASTA %s", path))
		errp.Set(in.Close(ctx))
	}
}

// enqueue checks the coordinate invariants the workers rely on, then
// pushes the unit onto Q1. A violated invariant is fatal.
func (a *Aligner) enqueue(units chan<- workUnit, m Mapping, line string, qSeq []byte, errp *errorreporter.T) bool {
	if m.QueryEnd >= len(qSeq) {
		errp.Set(errors.Errorf("mapping overruns query %s (len %d): %q", m.QueryID, len(qSeq), line))
		return false
	}
	if !a.refs.Has(m.RefID) {
		errp.Set(errors.Errorf("unknown reference sequence %s: %q", m.RefID, line))
		return false
	}
	if m.RefEnd >= a.refs.Len(m.RefID) {
		errp.Set(errors.Errorf("mapping overruns reference %s (len %d): %q", m.RefID, a.refs.Len(m.RefID), line))
		return false
	}
	units <- workUnit{rec: m, line: line, qSeq: qSeq}
	return true
}

// alignUnits is the worker loop: one pairwise alignment per unit. Failed
// alignments push an empty result so the accounting downstream stays
// simple; the writer discards them.
func (a *Aligner) alignUnits(units <-chan workUnit, results chan<- string) Stats {
	var stats Stats
	for u := range units {
		stats.Mappings++
		row, ok := a.alignOne(u)
		if ok {
			stats.Aligned++
		} else {
			stats.Failed++
		}
		results <- row
	}
	return stats
}

func (a *Aligner) alignOne(u workUnit) (string, bool) {
	ref := a.refs.Get(u.rec.RefID)
	text := ref[u.rec.RefStart : u.rec.RefEnd+1]
	region := u.qSeq[u.rec.QueryStart : u.rec.QueryEnd+1]

	// The aligner wants a contiguous strand-oriented window, so both
	// strands copy into a fresh buffer.
	pattern := make([]byte, len(region))
	if u.rec.Strand == Fwd {
		copy(pattern, region)
	} else {
		reverseComplement(pattern, region)
	}

	maxDistance := -1
	if a.opts.PercentIdentity != 0 {
		maxDistance = int((100 - a.opts.PercentIdentity) * float64(len(pattern)) / 100)
	}
	aln, ok := a.pw.Align(pattern, text, maxDistance)
	if !ok || aln.Length == 0 {
		return "", false
	}
	return formatResult(u.line, aln), true
}

// formatResult appends the alignment tags to the original mapping row.
// The al tag deliberately omits the type colon; downstream consumers
// parse the historical "al:i<len>" form.
func formatResult(line string, aln Alignment) string {
	buf := make([]byte, 0, len(line)+len(aln.Cigar)+48)
	buf = append(buf, line...)
	buf = append(buf, "\ted:i:"...)
	buf = strconv.AppendInt(buf, int64(aln.EditDistance), 10)
	buf = append(buf, "\tal:i"...)
	buf = strconv.AppendInt(buf, int64(aln.Length), 10)
	buf = append(buf, "\tad:f:"...)
	buf = strconv.AppendFloat(buf, float64(aln.EditDistance)/float64(aln.Length), 'g', -1, 64)
	buf = append(buf, "\tcg:Z:"...)
	buf = append(buf, aln.Cigar...)
	buf = append(buf, '\n')
	return string(buf)
}

// writeResults drains Q2 into the output file. On any error it keeps
// draining so the workers never block on a full queue, but writes stop.
func (a *Aligner) writeResults(ctx context.Context, results <-chan string, errp *errorreporter.T) {
	out, err := file.Create(ctx, a.opts.OutputPath)
	if err != nil {
		errp.Set(err)
		for range results {
		}
		return
	}
	w := bufio.NewWriterSize(out.Writer(ctx), 1<<20)
	failed := false
	for row := range results {
		if row == "" || failed {
			continue
		}
		if _, err := w.Write(gunsafe.StringToBytes(row)); err != nil {
			errp.Set(err)
			failed = true
		}
	}
	if !failed {
		errp.Set(w.Flush())
	}
	errp.Set(out.Close(ctx))
}

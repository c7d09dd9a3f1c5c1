package fasta_test

import (
	"bytes"
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/ASLeonard/wfmash/encoding/fasta"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/testutil"
	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, data string) string {
	path := filepath.Join(dir, name)
	require.NoError(t, ioutil.WriteFile(path, []byte(data), 0644))
	return path
}

func writeGzFile(t *testing.T, dir, name, data string) string {
	path := filepath.Join(dir, name)
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	_, err := w.Write([]byte(data))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, ioutil.WriteFile(path, buf.Bytes(), 0644))
	return path
}

func TestNewIndex(t *testing.T) {
	ctx := vcontext.Background()
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()

	plain := writeFile(t, tempDir, "a.fa", ">seq1\nacgta\nCGTAC\nGT\n>seq2 A viral sequence\nACGT\nACGT\n")
	gzipped := writeGzFile(t, tempDir, "b.fa.gz", ">seq3\nnnACGTnn\n")

	idx, err := fasta.NewIndex(ctx, []string{plain, gzipped})
	require.NoError(t, err)

	assert.Equal(t, "ACGTACGTACGT", string(idx.Get("seq1")))
	assert.Equal(t, "ACGTACGT", string(idx.Get("seq2")))
	assert.Equal(t, "NNACGTNN", string(idx.Get("seq3")))
	assert.Equal(t, 12, idx.Len("seq1"))
	assert.Equal(t, 0, idx.Len("seq0"))
	assert.True(t, idx.Has("seq2"))
	assert.False(t, idx.Has("seq0"))
	assert.ElementsMatch(t, []string{"seq1", "seq2", "seq3"}, idx.SeqIDs())
}

func TestNewIndexDuplicate(t *testing.T) {
	ctx := vcontext.Background()
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()

	path := writeFile(t, tempDir, "dup.fa", ">seq1\nACGT\n>seq1\nTTTT\n")
	_, err := fasta.NewIndex(ctx, []string{path})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate sequence seq1")
}

func TestNewIndexDuplicateAcrossFiles(t *testing.T) {
	ctx := vcontext.Background()
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()

	a := writeFile(t, tempDir, "a.fa", ">seq1\nACGT\n")
	b := writeFile(t, tempDir, "b.fa", ">seq1\nTTTT\n")
	_, err := fasta.NewIndex(ctx, []string{a, b})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate sequence seq1")
}

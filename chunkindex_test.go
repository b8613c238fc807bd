package chunkindex

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testChunk struct {
	id, parent, file, ext, text string
	start, end                  uint32
	emb                         []float32
}

// encodeIndex serializes chunks in the on-disk format. Index writing is the
// external builder's job in production, so the encoder lives in the tests.
func encodeIndex(t *testing.T, chunks []testChunk) []byte {
	t.Helper()

	var b bytes.Buffer
	writeU32 := func(v uint32) {
		require.NoError(t, binary.Write(&b, binary.LittleEndian, v))
	}
	writeStr := func(s string) {
		writeU32(uint32(len(s)))
		b.WriteString(s)
	}

	writeU32(uint32(len(chunks)))
	for _, c := range chunks {
		writeStr(c.id)
		writeStr(c.parent)
		writeStr(c.file)
		writeStr(c.ext)
		writeU32(c.start)
		writeU32(c.end)
		writeStr(c.text)
		writeU32(uint32(len(c.emb)))
		for _, f := range c.emb {
			writeU32(math.Float32bits(f))
		}
	}
	return b.Bytes()
}

func writeIndexFile(t *testing.T, chunks []testChunk) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "chunks.bin")
	require.NoError(t, os.WriteFile(path, encodeIndex(t, chunks), 0o600))
	return path
}

func testChunks() []testChunk {
	return []testChunk{
		{
			id: "c1", parent: "", file: "pkg/a.go", ext: ".go",
			start: 1, end: 12, text: "func A() {}",
			emb: []float32{1, 0, 0, 0},
		},
		{
			id: "c2", parent: "c1", file: "pkg/a.go", ext: ".go",
			start: 14, end: 20, text: "func B() {}",
			emb: []float32{0, 2, 0, 0}, // not unit length on disk
		},
		{
			id: "c3", parent: "", file: "README.md", ext: ".md",
			start: 1, end: 3, text: "# readme",
			emb: []float32{0.5, 0.5},
		},
	}
}

func TestLoad(t *testing.T) {
	ctx := context.Background()

	t.Run("Fields", func(t *testing.T) {
		ci, err := Load(ctx, writeIndexFile(t, testChunks()))
		require.NoError(t, err)
		defer ci.Close()

		require.Equal(t, 3, ci.Len())

		id, err := ci.ID(1)
		require.NoError(t, err)
		assert.Equal(t, "c2", id)

		parent, err := ci.Parent(1)
		require.NoError(t, err)
		assert.Equal(t, "c1", parent)

		parent, err = ci.Parent(0)
		require.NoError(t, err)
		assert.Equal(t, "", parent)

		file, err := ci.File(2)
		require.NoError(t, err)
		assert.Equal(t, "README.md", file)

		ext, err := ci.Ext(2)
		require.NoError(t, err)
		assert.Equal(t, ".md", ext)

		text, err := ci.Text(0)
		require.NoError(t, err)
		assert.Equal(t, "func A() {}", text)

		start, err := ci.StartLine(1)
		require.NoError(t, err)
		assert.Equal(t, uint32(14), start)

		end, err := ci.EndLine(1)
		require.NoError(t, err)
		assert.Equal(t, uint32(20), end)

		dim, err := ci.Dim(2)
		require.NoError(t, err)
		assert.Equal(t, uint32(2), dim)
	})

	t.Run("NormalizesOnLoad", func(t *testing.T) {
		// The on-disk state is not trusted: c2 is stored with norm 2 and
		// must come back with unit norm within the rsqrt tolerance.
		ci, err := Load(ctx, writeIndexFile(t, testChunks()))
		require.NoError(t, err)
		defer ci.Close()

		for i := uint32(0); i < uint32(ci.Len()); i++ {
			emb, err := ci.Embedding(i)
			require.NoError(t, err)

			var sum float64
			for _, x := range emb {
				sum += float64(x) * float64(x)
			}
			assert.InDelta(t, 1.0, sum, 1e-3, "record %d", i)
		}
	})

	t.Run("MissingFile", func(t *testing.T) {
		_, err := Load(ctx, filepath.Join(t.TempDir(), "nope.bin"))
		require.Error(t, err)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("EmptyIndex", func(t *testing.T) {
		ci, err := Load(ctx, writeIndexFile(t, nil))
		require.NoError(t, err)
		defer ci.Close()

		assert.Equal(t, 0, ci.Len())
	})

	t.Run("Truncated", func(t *testing.T) {
		data := encodeIndex(t, testChunks())

		// Chop at several depths: inside the last embedding, inside a
		// string, and inside a length prefix.
		for _, cut := range []int{len(data) - 3, len(data) / 2, 5} {
			path := filepath.Join(t.TempDir(), "trunc.bin")
			require.NoError(t, os.WriteFile(path, data[:cut], 0o600))

			_, err := Load(ctx, path)
			require.Error(t, err, "cut at %d", cut)

			var corrupt *ErrCorruptIndex
			assert.ErrorAs(t, err, &corrupt, "cut at %d", cut)
		}
	})

	t.Run("BogusLengthPrefix", func(t *testing.T) {
		data := encodeIndex(t, testChunks())
		// Overwrite the id length prefix of the first record with a value
		// far past the end of the buffer.
		binary.LittleEndian.PutUint32(data[4:], 0xFFFFFF00)

		path := filepath.Join(t.TempDir(), "bogus.bin")
		require.NoError(t, os.WriteFile(path, data, 0o600))

		_, err := Load(ctx, path)
		var corrupt *ErrCorruptIndex
		require.ErrorAs(t, err, &corrupt)
		assert.Equal(t, "id", corrupt.Field)
	})

	t.Run("RecordCountLimit", func(t *testing.T) {
		_, err := Load(ctx, writeIndexFile(t, testChunks()), WithMaxRecords(2))
		var corrupt *ErrCorruptIndex
		require.ErrorAs(t, err, &corrupt)
		assert.Equal(t, "record count", corrupt.Field)
	})

	t.Run("DimensionLimit", func(t *testing.T) {
		_, err := Load(ctx, writeIndexFile(t, testChunks()), WithMaxDimension(2))
		var corrupt *ErrCorruptIndex
		require.ErrorAs(t, err, &corrupt)
		assert.Equal(t, "dim", corrupt.Field)
	})

	t.Run("ZeroVector", func(t *testing.T) {
		chunks := []testChunk{
			{id: "z", emb: []float32{0, 0, 0, 0}},
			{id: "u", emb: []float32{0, 1, 0, 0}},
		}
		ci, err := Load(ctx, writeIndexFile(t, chunks))
		require.NoError(t, err)
		defer ci.Close()

		// Zero-norm embeddings stay zero instead of becoming Inf/NaN.
		emb, err := ci.Embedding(0)
		require.NoError(t, err)
		assert.Equal(t, []float32{0, 0, 0, 0}, emb)

		// And they never outrank a real match.
		results, err := ci.Search(ctx, []float32{0, 1, 0, 0}, 1)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, uint32(1), results[0].Index)
	})

	t.Run("IdempotentLoad", func(t *testing.T) {
		path := writeIndexFile(t, testChunks())

		a, err := Load(ctx, path)
		require.NoError(t, err)
		defer a.Close()

		b, err := Load(ctx, path)
		require.NoError(t, err)
		defer b.Close()

		require.Equal(t, a.Len(), b.Len())
		for i := uint32(0); i < uint32(a.Len()); i++ {
			for name, get := range map[string]func(*Index, uint32) (string, error){
				"id":     (*Index).ID,
				"parent": (*Index).Parent,
				"file":   (*Index).File,
				"ext":    (*Index).Ext,
				"text":   (*Index).Text,
			} {
				va, err := get(a, i)
				require.NoError(t, err)
				vb, err := get(b, i)
				require.NoError(t, err)
				assert.Equal(t, va, vb, "%s of record %d", name, i)
			}

			ea, err := a.Embedding(i)
			require.NoError(t, err)
			eb, err := b.Embedding(i)
			require.NoError(t, err)
			assert.Equal(t, ea, eb, "embedding of record %d", i)
		}
	})

	t.Run("ZstdContainer", func(t *testing.T) {
		enc, err := zstd.NewWriter(nil)
		require.NoError(t, err)
		compressed := enc.EncodeAll(encodeIndex(t, testChunks()), nil)
		require.NoError(t, enc.Close())

		path := filepath.Join(t.TempDir(), "chunks.bin.zst")
		require.NoError(t, os.WriteFile(path, compressed, 0o600))

		ci, err := Load(ctx, path)
		require.NoError(t, err)
		defer ci.Close()

		require.Equal(t, 3, ci.Len())
		text, err := ci.Text(0)
		require.NoError(t, err)
		assert.Equal(t, "func A() {}", text)
	})

	t.Run("CanceledContext", func(t *testing.T) {
		canceled, cancel := context.WithCancel(ctx)
		cancel()

		_, err := Load(canceled, writeIndexFile(t, testChunks()))
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestAccessors(t *testing.T) {
	ctx := context.Background()

	ci, err := Load(ctx, writeIndexFile(t, testChunks()))
	require.NoError(t, err)
	defer ci.Close()

	t.Run("OutOfRange", func(t *testing.T) {
		_, err := ci.ID(3)
		var oor *ErrIndexOutOfRange
		require.ErrorAs(t, err, &oor)
		assert.Equal(t, uint32(3), oor.Index)
		assert.Equal(t, 3, oor.Count)

		_, err = ci.StartLine(99)
		assert.ErrorAs(t, err, &oor)
	})
}

func TestClose(t *testing.T) {
	ctx := context.Background()

	ci, err := Load(ctx, writeIndexFile(t, testChunks()))
	require.NoError(t, err)
	require.NoError(t, ci.Close())
	require.NoError(t, ci.Close()) // idempotent

	_, err = ci.ID(0)
	assert.ErrorIs(t, err, ErrClosed)

	_, err = ci.Search(ctx, []float32{1, 0, 0, 0}, 1)
	assert.ErrorIs(t, err, ErrClosed)

	_, err = ci.BatchSearch(ctx, [][]float32{{1, 0, 0, 0}}, 1)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestStats(t *testing.T) {
	ctx := context.Background()

	ci, err := Load(ctx, writeIndexFile(t, testChunks()))
	require.NoError(t, err)
	defer ci.Close()

	stats := ci.Stats()
	assert.Equal(t, 3, stats.Records)
	assert.Equal(t, 10, stats.VectorFloats)
	assert.Equal(t, []uint32{2, 4}, stats.Dimensions)
	assert.Positive(t, stats.ArenaBytes)
}

func TestErrCorruptIndexUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := &ErrCorruptIndex{Offset: 42, Field: "dim", cause: cause}
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "dim")
	assert.Contains(t, err.Error(), "42")
}

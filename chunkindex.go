package chunkindex

import (
	"context"
	"fmt"
	"os"

	"github.com/RoaringBitmap/roaring/v2"
)

// chunk is one record of the index. String fields are zero-copy views into
// the arena; emb is a view into the vector slab.
type chunk struct {
	id     string
	parent string
	file   string
	ext    string
	text   string

	startLine uint32
	endLine   uint32

	emb []float32
}

// Index is an immutable, in-memory chunk index loaded from a binary file.
//
// All accessor strings borrow from the arena and stay valid until Close.
// The index itself performs no I/O after Load and may be shared across
// goroutines for concurrent searches.
type Index struct {
	arena  []byte    // backing buffer; owns all string bytes
	slab   []float32 // all embeddings, contiguous, normalized at load
	chunks []chunk

	// dims maps embedding dimensionality to the positions of records
	// carrying it, so heterogeneous corpora skip non-matching records
	// without touching them.
	dims map[uint32]*roaring.Bitmap

	logger *Logger
}

// Load reads the index file at path into memory in one pass.
//
// It fails with a wrapped I/O error if the file cannot be read and with
// *ErrCorruptIndex if the payload is truncated or a length prefix exceeds
// the configured sanity limits. Every embedding is normalized in place
// during the pass; records whose embedding has zero norm are kept as zero
// vectors and logged at warn level.
func Load(ctx context.Context, path string, optFns ...func(o *Options)) (*Index, error) {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = NoopLogger()
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	buf, err := os.ReadFile(path)
	if err != nil {
		err = fmt.Errorf("chunkindex: read index file: %w", err)
		opts.Logger.LogLoad(ctx, path, 0, err)
		return nil, err
	}

	ci, err := parse(ctx, buf, opts)
	if err != nil {
		opts.Logger.LogLoad(ctx, path, 0, err)
		return nil, err
	}

	opts.Logger.LogLoad(ctx, path, len(ci.chunks), nil)
	return ci, nil
}

// Len returns the number of records in the index.
func (ci *Index) Len() int { return len(ci.chunks) }

// Close releases the arena, the vector slab, and the record table as a
// unit. The index must not be used afterwards; strings previously returned
// by accessors remain valid only as long as the caller retains them (the
// runtime keeps the arena alive through them).
func (ci *Index) Close() error {
	ci.arena = nil
	ci.slab = nil
	ci.chunks = nil
	ci.dims = nil
	return nil
}

func (ci *Index) chunkAt(i uint32) (*chunk, error) {
	if ci.chunks == nil {
		return nil, ErrClosed
	}
	if int(i) >= len(ci.chunks) {
		return nil, &ErrIndexOutOfRange{Index: i, Count: len(ci.chunks)}
	}
	return &ci.chunks[i], nil
}

// ID returns the opaque identifier of record i.
func (ci *Index) ID(i uint32) (string, error) {
	c, err := ci.chunkAt(i)
	if err != nil {
		return "", err
	}
	return c.id, nil
}

// Parent returns the identifier of the containing chunk, or "" if none.
func (ci *Index) Parent(i uint32) (string, error) {
	c, err := ci.chunkAt(i)
	if err != nil {
		return "", err
	}
	return c.parent, nil
}

// File returns the source path the chunk was extracted from.
func (ci *Index) File(i uint32) (string, error) {
	c, err := ci.chunkAt(i)
	if err != nil {
		return "", err
	}
	return c.file, nil
}

// Ext returns the file extension of record i.
func (ci *Index) Ext(i uint32) (string, error) {
	c, err := ci.chunkAt(i)
	if err != nil {
		return "", err
	}
	return c.ext, nil
}

// Text returns the literal snippet content of record i.
func (ci *Index) Text(i uint32) (string, error) {
	c, err := ci.chunkAt(i)
	if err != nil {
		return "", err
	}
	return c.text, nil
}

// StartLine returns the 1-based first line of record i within File(i).
func (ci *Index) StartLine(i uint32) (uint32, error) {
	c, err := ci.chunkAt(i)
	if err != nil {
		return 0, err
	}
	return c.startLine, nil
}

// EndLine returns the 1-based inclusive last line of record i.
func (ci *Index) EndLine(i uint32) (uint32, error) {
	c, err := ci.chunkAt(i)
	if err != nil {
		return 0, err
	}
	return c.endLine, nil
}

// Dim returns the embedding dimensionality of record i.
func (ci *Index) Dim(i uint32) (uint32, error) {
	c, err := ci.chunkAt(i)
	if err != nil {
		return 0, err
	}
	return uint32(len(c.emb)), nil
}

// Embedding returns the normalized embedding of record i.
// The slice aliases the vector slab and must be treated as read-only.
func (ci *Index) Embedding(i uint32) ([]float32, error) {
	c, err := ci.chunkAt(i)
	if err != nil {
		return nil, err
	}
	return c.emb, nil
}

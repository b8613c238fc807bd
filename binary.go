package chunkindex

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"unsafe"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/klauspost/compress/zstd"

	"github.com/hupe1980/chunkindex/internal/simd"
)

// zstdMagic is the little-endian zstd frame magic (RFC 8878).
var zstdMagic = [4]byte{0x28, 0xB5, 0x2F, 0xFD}

func isZstdFrame(buf []byte) bool {
	return len(buf) >= 4 && [4]byte(buf[:4]) == zstdMagic
}

// cursor walks the arena sequentially. Every advance is bounds-checked so a
// truncated or corrupt file surfaces as *ErrCorruptIndex instead of reading
// out of bounds.
type cursor struct {
	buf []byte
	off int
}

func (c *cursor) corrupt(field string, cause error) error {
	return &ErrCorruptIndex{Offset: c.off, Field: field, cause: cause}
}

func (c *cursor) uint32Field(field string) (uint32, error) {
	if c.off+4 > len(c.buf) {
		return 0, c.corrupt(field, nil)
	}
	v := binary.LittleEndian.Uint32(c.buf[c.off:])
	c.off += 4
	return v, nil
}

func (c *cursor) bytesField(n int, field string) ([]byte, error) {
	if n < 0 || c.off+n > len(c.buf) {
		return nil, c.corrupt(field, nil)
	}
	b := c.buf[c.off : c.off+n : c.off+n]
	c.off += n
	return b, nil
}

// stringField reads a length prefix followed by that many bytes and returns
// them as a zero-copy string view into the arena. Safe because the arena
// bytes backing strings are never written after parse.
func (c *cursor) stringField(field string) (string, error) {
	n, err := c.uint32Field(field)
	if err != nil {
		return "", err
	}
	b, err := c.bytesField(int(n), field)
	if err != nil {
		return "", err
	}
	if len(b) == 0 {
		return "", nil
	}
	return unsafe.String(&b[0], len(b)), nil
}

// parse walks buf once, building the record table, the vector slab, and the
// per-dimension posting bitmaps. buf becomes the arena owned by the Index.
func parse(ctx context.Context, buf []byte, opts Options) (*Index, error) {
	if isZstdFrame(buf) {
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, fmt.Errorf("chunkindex: init zstd decoder: %w", err)
		}
		defer dec.Close()

		buf, err = dec.DecodeAll(buf, nil)
		if err != nil {
			return nil, fmt.Errorf("chunkindex: decompress index: %w", err)
		}
	}

	cur := &cursor{buf: buf}

	count, err := cur.uint32Field("record count")
	if err != nil {
		return nil, err
	}
	if count > opts.MaxRecords {
		return nil, cur.corrupt("record count",
			fmt.Errorf("%d records exceeds limit %d", count, opts.MaxRecords))
	}

	// vecRef defers slicing the slab until it stops growing; append may
	// reallocate the backing array mid-parse.
	type vecRef struct {
		off int
		dim int
	}

	chunks := make([]chunk, count)
	refs := make([]vecRef, count)
	slab := make([]float32, 0, len(buf)/4)

	for i := range chunks {
		c := &chunks[i]

		if c.id, err = cur.stringField("id"); err != nil {
			return nil, err
		}
		if c.parent, err = cur.stringField("parent"); err != nil {
			return nil, err
		}
		if c.file, err = cur.stringField("file"); err != nil {
			return nil, err
		}
		if c.ext, err = cur.stringField("ext"); err != nil {
			return nil, err
		}
		if c.startLine, err = cur.uint32Field("start line"); err != nil {
			return nil, err
		}
		if c.endLine, err = cur.uint32Field("end line"); err != nil {
			return nil, err
		}
		if c.text, err = cur.stringField("text"); err != nil {
			return nil, err
		}

		dim, err := cur.uint32Field("dim")
		if err != nil {
			return nil, err
		}
		if dim > opts.MaxDimension {
			return nil, cur.corrupt("dim",
				fmt.Errorf("dimension %d exceeds limit %d", dim, opts.MaxDimension))
		}

		raw, err := cur.bytesField(int(dim)*4, "embedding")
		if err != nil {
			return nil, err
		}

		refs[i] = vecRef{off: len(slab), dim: int(dim)}
		for j := 0; j < int(dim); j++ {
			slab = append(slab, math.Float32frombits(binary.LittleEndian.Uint32(raw[j*4:])))
		}
	}

	ci := &Index{
		arena:  buf,
		slab:   slab,
		chunks: chunks,
		dims:   make(map[uint32]*roaring.Bitmap),
		logger: opts.Logger,
	}

	for i := range chunks {
		ref := refs[i]
		emb := slab[ref.off : ref.off+ref.dim : ref.off+ref.dim]
		chunks[i].emb = emb

		if len(emb) > 0 && !simd.NormalizeInPlace(emb) {
			opts.Logger.LogZeroVector(ctx, i)
		}

		dim := uint32(ref.dim)
		bm := ci.dims[dim]
		if bm == nil {
			bm = roaring.New()
			ci.dims[dim] = bm
		}
		bm.Add(uint32(i))
	}

	return ci, nil
}

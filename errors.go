package chunkindex

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidK is returned when k is not positive.
	ErrInvalidK = errors.New("k must be positive")

	// ErrClosed is returned when the index is used after Close.
	ErrClosed = errors.New("index is closed")

	// ErrShortBuffer is returned by SearchInto when a result buffer cannot
	// hold k entries.
	ErrShortBuffer = errors.New("result buffer shorter than k")
)

// ErrCorruptIndex indicates that parsing the index file would have read past
// the end of the buffer, or that a length prefix failed a sanity limit.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrCorruptIndex struct {
	Offset int    // byte offset at which parsing failed
	Field  string // field being parsed
	cause  error
}

func (e *ErrCorruptIndex) Error() string {
	return fmt.Sprintf("corrupt index: %s at offset %d", e.Field, e.Offset)
}

func (e *ErrCorruptIndex) Unwrap() error { return e.cause }

// ErrIndexOutOfRange indicates a record index outside [0, Len).
type ErrIndexOutOfRange struct {
	Index uint32
	Count int
}

func (e *ErrIndexOutOfRange) Error() string {
	return fmt.Sprintf("record index %d out of range [0, %d)", e.Index, e.Count)
}

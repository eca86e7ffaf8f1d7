// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package buffer implements an auto-expanding byte buffer with separate
// read and write cursors, used by every connection for both its receive
// and send sides.
//
//	┌───────────────────┬────────────────┬────────────────┐
//	│ Prependable Bytes  │ Readable Bytes │ Writable Bytes │
//	└───────────────────┴────────────────┴────────────────┘
//	                    readPos          writePos        cap
//
// Prependable space (the already-consumed prefix) is reclaimed by
// compaction before the buffer grows.
package buffer

// NewLine selects the line terminator Append writes after a string.
type NewLine int

const (
	// LF appends a bare '\n'.
	LF NewLine = iota
	// CRLF appends "\r\n", the terminator HTTP/1.1 requires.
	CRLF
)

const defaultInitialSize = 1024

// Buffer is a growable byte region with monotonic read/write cursors.
// It is not safe for concurrent use; callers must serialize access
// (the reactor's ONE_SHOT discipline guarantees this for connections).
type Buffer struct {
	buf      []byte
	readPos  int
	writePos int
}

// New creates a buffer with the given initial capacity. A size of 0
// uses a small default.
func New(size int) *Buffer {
	if size <= 0 {
		size = defaultInitialSize
	}
	return &Buffer{buf: make([]byte, size)}
}

// ReadableSize returns the number of bytes available to read.
func (b *Buffer) ReadableSize() int {
	return b.writePos - b.readPos
}

// WritableSize returns the number of bytes that can be written without
// growing the buffer.
func (b *Buffer) WritableSize() int {
	return len(b.buf) - b.writePos
}

func (b *Buffer) prependableSize() int {
	return b.readPos
}

// Empty reports whether there is nothing left to read.
func (b *Buffer) Empty() bool {
	return b.ReadableSize() == 0
}

// Peek returns the first readable byte, and false if the buffer is empty.
func (b *Buffer) Peek() (byte, bool) {
	if b.Empty() {
		return 0, false
	}
	return b.buf[b.readPos], true
}

// ReadableBytes returns a view of the readable region without moving
// the read cursor. The slice aliases the buffer's storage and is only
// valid until the next mutating call.
func (b *Buffer) ReadableBytes() []byte {
	return b.buf[b.readPos:b.writePos]
}

// ReadableString is a string-typed alias of ReadableBytes. Callers must
// only use it on buffers known to hold printable/text data.
func (b *Buffer) ReadableString() string {
	return string(b.ReadableBytes())
}

// WritableBytes returns a view of the writable region for direct
// scatter writes (e.g. a non-blocking socket read). Callers must call
// HasWritten afterwards to advance the write cursor.
func (b *Buffer) WritableBytes() []byte {
	return b.buf[b.writePos:]
}

// HasWritten advances the write cursor after a direct write into the
// span returned by WritableBytes.
func (b *Buffer) HasWritten(n int) {
	b.writePos += n
}

// Retrieve advances the read cursor by n, which must not exceed
// ReadableSize.
func (b *Buffer) Retrieve(n int) {
	if n > b.ReadableSize() {
		n = b.ReadableSize()
	}
	b.readPos += n
}

// RetrieveUntil advances the read cursor to the given offset into the
// readable region (an offset previously obtained by scanning
// ReadableBytes, e.g. via bytes.Index).
func (b *Buffer) RetrieveUntil(offset int) {
	if offset < 0 {
		return
	}
	b.Retrieve(offset)
}

// RetrieveAll resets both cursors to the start of the buffer and
// returns the number of bytes that were consumed.
func (b *Buffer) RetrieveAll() int {
	n := b.ReadableSize()
	b.readPos = 0
	b.writePos = 0
	return n
}

// Clear resets the buffer to empty without shrinking its capacity.
func (b *Buffer) Clear() {
	b.RetrieveAll()
}

// Append appends raw bytes, growing the buffer if necessary.
func (b *Buffer) Append(p []byte) {
	b.ensureWritable(len(p))
	copy(b.buf[b.writePos:], p)
	b.writePos += len(p)
}

// AppendString appends a string and, if nl is non-nil, a line
// terminator.
func (b *Buffer) AppendString(s string, nl *NewLine) {
	b.Append([]byte(s))
	if nl != nil {
		switch *nl {
		case CRLF:
			b.Append([]byte("\r\n"))
		default:
			b.Append([]byte("\n"))
		}
	}
}

// ensureWritable guarantees WritableSize() >= needed, compacting the
// prependable prefix before growing the backing array. This is the
// amortized O(1)-per-byte growth policy spec.md §4.1 requires.
func (b *Buffer) ensureWritable(needed int) {
	if b.WritableSize() >= needed {
		return
	}
	if b.WritableSize()+b.prependableSize() >= needed {
		b.compact()
		return
	}
	b.grow(needed)
}

func (b *Buffer) compact() {
	n := b.ReadableSize()
	copy(b.buf, b.buf[b.readPos:b.writePos])
	b.readPos = 0
	b.writePos = n
}

func (b *Buffer) grow(needed int) {
	newCap := b.writePos + needed
	grown := make([]byte, newCap)
	copy(grown, b.buf[b.readPos:b.writePos])
	n := b.ReadableSize()
	b.buf = grown
	b.readPos = 0
	b.writePos = n
}

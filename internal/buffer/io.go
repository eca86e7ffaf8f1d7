// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

package buffer

import (
	"golang.org/x/sys/unix"
)

// ReadFromFD drains readable bytes from a non-blocking file descriptor
// into the buffer until the kernel reports EAGAIN/EWOULDBLOCK, growing
// the buffer's writable span as needed. It returns the total number of
// bytes read; unix.EAGAIN/EWOULDBLOCK is swallowed, any other error is
// returned.
func (b *Buffer) ReadFromFD(fd int) (int, error) {
	total := 0
	for {
		if b.WritableSize() < 4096 {
			b.ensureWritable(4096)
		}
		n, err := unix.Read(fd, b.WritableBytes())
		if n > 0 {
			b.HasWritten(n)
			total += n
		}
		if err != nil {
			if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
				return total, nil
			}
			if err == unix.EINTR {
				continue
			}
			return total, err
		}
		if n == 0 {
			// Peer closed the connection (orderly EOF).
			return total, nil
		}
	}
}

// WriteToFD writes the readable region to a non-blocking file
// descriptor until it is empty, stopping early (without error) on
// EAGAIN/EWOULDBLOCK so the caller can retry once the descriptor is
// writable again.
func (b *Buffer) WriteToFD(fd int) (int, error) {
	total := 0
	for !b.Empty() {
		n, err := unix.Write(fd, b.ReadableBytes())
		if n > 0 {
			b.Retrieve(n)
			total += n
		}
		if err != nil {
			if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
				return total, nil
			}
			if err == unix.EINTR {
				continue
			}
			return total, err
		}
		if n == 0 {
			return total, nil
		}
	}
	return total, nil
}

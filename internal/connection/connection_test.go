// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

package connection

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/sys/unix"
)

func socketpair(t *testing.T) (int, int) {
	t.Helper()
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	if err != nil {
		t.Fatalf("socketpair: %v", err)
	}
	if err := unix.SetNonblock(fds[0], true); err != nil {
		t.Fatalf("set non-blocking: %v", err)
	}
	return fds[0], fds[1]
}

func TestProcessServesStaticFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "hello.txt"), []byte("hi there"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	server, peer := socketpair(t)
	defer unix.Close(peer)

	c := New(server, "127.0.0.1:1234", 1234, dir)
	defer c.Close()

	req := "GET /hello.txt HTTP/1.1\r\nHost: x\r\n\r\n"
	if _, err := unix.Write(peer, []byte(req)); err != nil {
		t.Fatalf("write: %v", err)
	}

	if _, err := c.Receive(); err != nil {
		t.Fatalf("Receive: %v", err)
	}
	wantWrite, err := c.Process()
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if !wantWrite {
		t.Fatalf("expected Process to request a write rearm")
	}

	done, err := c.Send()
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if !done {
		t.Fatalf("expected Send to fully drain in one call for a small file")
	}

	buf := make([]byte, 4096)
	n, err := unix.Read(peer, buf)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	resp := string(buf[:n])
	if !strings.Contains(resp, "200 OK") || !strings.Contains(resp, "hi there") {
		t.Fatalf("unexpected response: %q", resp)
	}
}

func TestPortReturnsAcceptTimeValue(t *testing.T) {
	server, peer := socketpair(t)
	defer unix.Close(peer)

	c := New(server, "127.0.0.1:1234", 1234, t.TempDir())
	defer c.Close()

	if c.Port() != 1234 {
		t.Fatalf("expected Port() 1234, got %d", c.Port())
	}
}

func TestProcessOnEmptyBufferRequestsReadRearm(t *testing.T) {
	server, peer := socketpair(t)
	defer unix.Close(peer)

	c := New(server, "127.0.0.1:1234", 1234, t.TempDir())
	defer c.Close()

	wantWrite, err := c.Process()
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if wantWrite {
		t.Fatalf("expected Process on empty buffer to request a read rearm")
	}
}

func TestProcessUnknownFileBuildsBadRequestPage(t *testing.T) {
	server, peer := socketpair(t)
	defer unix.Close(peer)

	c := New(server, "127.0.0.1:1234", 1234, t.TempDir())
	defer c.Close()

	req := "GET /missing.txt HTTP/1.1\r\nHost: x\r\n\r\n"
	if _, err := unix.Write(peer, []byte(req)); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := c.Receive(); err != nil {
		t.Fatalf("Receive: %v", err)
	}
	if _, err := c.Process(); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if _, err := c.Send(); err != nil {
		t.Fatalf("Send: %v", err)
	}

	buf := make([]byte, 4096)
	n, err := unix.Read(peer, buf)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	resp := string(buf[:n])
	if !strings.Contains(resp, "400") {
		t.Fatalf("expected 400 response, got %q", resp)
	}
}

func TestIndexPagePopulatesUserAndMsgFromPostForm(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte("<p><$user$>: <$msg$> (<$hide-msg$>)</p>"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	server, peer := socketpair(t)
	defer unix.Close(peer)

	c := New(server, "127.0.0.1:1234", 1234, dir)
	defer c.Close()

	req := "POST / HTTP/1.1\r\nContent-Type: application/x-www-form-urlencoded\r\n\r\nuser=mike&msg=hi"
	if _, err := unix.Write(peer, []byte(req)); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := c.Receive(); err != nil {
		t.Fatalf("Receive: %v", err)
	}
	if _, err := c.Process(); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if _, err := c.Send(); err != nil {
		t.Fatalf("Send: %v", err)
	}

	buf := make([]byte, 4096)
	n, err := unix.Read(peer, buf)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	resp := string(buf[:n])
	if !strings.Contains(resp, "<p>mike: hi (false)</p>") {
		t.Fatalf("unexpected response: %q", resp)
	}
}

func TestIndexPageHidesMsgWhenFieldsAbsent(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte("<p><$hide-msg$></p>"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	server, peer := socketpair(t)
	defer unix.Close(peer)

	c := New(server, "127.0.0.1:1234", 1234, dir)
	defer c.Close()

	req := "GET / HTTP/1.1\r\n\r\n"
	if _, err := unix.Write(peer, []byte(req)); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := c.Receive(); err != nil {
		t.Fatalf("Receive: %v", err)
	}
	if _, err := c.Process(); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if _, err := c.Send(); err != nil {
		t.Fatalf("Send: %v", err)
	}

	buf := make([]byte, 4096)
	n, err := unix.Read(peer, buf)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	resp := string(buf[:n])
	if !strings.Contains(resp, "<p>true</p>") {
		t.Fatalf("unexpected response: %q", resp)
	}
}

// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

package server

import (
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/momentics/reactord/log"
)

func startTestReactor(t *testing.T) (*Reactor, uint16) {
	t.Helper()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "hello.txt"), []byte("hi"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	logger := log.New("test", log.Fatal, 0)

	port := freePort(t)
	r, err := New(Config{
		Port:        port,
		AliveTime:   5 * time.Second,
		AssetFolder: dir,
		WorkerCount: 2,
	}, logger)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	go func() {
		if err := r.Start(); err != nil {
			t.Logf("Start returned: %v", err)
		}
	}()
	t.Cleanup(func() { r.Close() })

	waitForListener(t, port)
	return r, port
}

func freePort(t *testing.T) uint16 {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("finding a free port: %v", err)
	}
	port := uint16(l.Addr().(*net.TCPAddr).Port)
	l.Close()
	return port
}

func waitForListener(t *testing.T, port uint16) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		conn, err := net.Dial("tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(int(port))))
		if err == nil {
			conn.Close()
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("listener on port %d never came up", port)
}

func TestReactorServesStaticFileOverRealSocket(t *testing.T) {
	_, port := startTestReactor(t)

	conn, err := net.Dial("tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(int(port))))
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if _, err := conn.Write([]byte("GET /hello.txt HTTP/1.1\r\nHost: x\r\nConnection: close\r\n\r\n")); err != nil {
		t.Fatalf("write: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	buf := make([]byte, 4096)
	n, err := conn.Read(buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	resp := string(buf[:n])
	if !strings.Contains(resp, "200 OK") || !strings.Contains(resp, "hi") {
		t.Fatalf("unexpected response: %q", resp)
	}
}

func TestReactorCloseIsIdempotent(t *testing.T) {
	r, _ := startTestReactor(t)
	if err := r.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}

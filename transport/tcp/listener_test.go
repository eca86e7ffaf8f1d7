// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

package tcp

import (
	"testing"

	"golang.org/x/sys/unix"
)

func TestListenAcceptRoundTrip(t *testing.T) {
	fd, err := Listen(0)
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer unix.Close(fd)

	sa, err := unix.Getsockname(fd)
	if err != nil {
		t.Fatalf("getsockname: %v", err)
	}
	port := sa.(*unix.SockaddrInet4).Port

	client, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM, 0)
	if err != nil {
		t.Fatalf("socket: %v", err)
	}
	defer unix.Close(client)

	dst := unix.SockaddrInet4{Port: port, Addr: [4]byte{127, 0, 0, 1}}
	if err := unix.Connect(client, &dst); err != nil {
		t.Fatalf("connect: %v", err)
	}

	accepted := 0
	var gotAddr unix.Sockaddr
	for accepted == 0 {
		if err := AcceptAll(fd, func(cfd int, addr unix.Sockaddr) error {
			accepted++
			gotAddr = addr
			unix.Close(cfd)
			return nil
		}); err != nil {
			t.Fatalf("AcceptAll: %v", err)
		}
	}
	if accepted != 1 {
		t.Fatalf("expected exactly one accepted connection, got %d", accepted)
	}
	if IPAddress(gotAddr) == "unknown" {
		t.Fatalf("expected a resolvable address, got %q", IPAddress(gotAddr))
	}
	if Port(gotAddr) == 0 {
		t.Fatalf("expected a nonzero client port, got 0")
	}
}

func TestAcceptAllReturnsCleanlyWhenEmpty(t *testing.T) {
	fd, err := Listen(0)
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer unix.Close(fd)

	if err := AcceptAll(fd, func(cfd int, addr unix.Sockaddr) error {
		t.Fatalf("unexpected accept")
		return nil
	}); err != nil {
		t.Fatalf("AcceptAll on empty listener: %v", err)
	}
}

// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package tcp opens the reactor's listening socket directly over
// golang.org/x/sys/unix, bypassing the net package so the reactor can
// drive it non-blocking under epoll. The socket option sequence
// (SO_LINGER, SO_REUSEADDR, bind, listen with a full backlog,
// non-blocking) mirrors original_source/include/web_server.h's
// InitNetwork exactly.
package tcp

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Listen opens a non-blocking IPv4 TCP listening socket bound to port
// on every local address, with SO_REUSEADDR and a one-second
// SO_LINGER, and a backlog set to the kernel maximum (SOMAXCONN).
func Listen(port uint16) (int, error) {
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM, 0)
	if err != nil {
		return -1, fmt.Errorf("socket: %w", err)
	}

	ok := false
	defer func() {
		if !ok {
			unix.Close(fd)
		}
	}()

	if err := unix.SetsockoptLinger(fd, unix.SOL_SOCKET, unix.SO_LINGER, &unix.Linger{Onoff: 1, Linger: 1}); err != nil {
		return -1, fmt.Errorf("setsockopt(SO_LINGER): %w", err)
	}
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		return -1, fmt.Errorf("setsockopt(SO_REUSEADDR): %w", err)
	}

	addr := unix.SockaddrInet4{Port: int(port)}
	if err := unix.Bind(fd, &addr); err != nil {
		return -1, fmt.Errorf("bind: %w", err)
	}
	if err := unix.Listen(fd, unix.SOMAXCONN); err != nil {
		return -1, fmt.Errorf("listen: %w", err)
	}
	if err := unix.SetNonblock(fd, true); err != nil {
		return -1, fmt.Errorf("set non-blocking: %w", err)
	}

	ok = true
	return fd, nil
}

// AcceptAll drains every pending connection from a non-blocking
// listener, invoking accepted for each. It stops cleanly on
// EAGAIN/EWOULDBLOCK (spec.md §7's "benign WouldBlock is swallowed to
// terminate the accept loop") and returns any other error.
func AcceptAll(listenerFd int, accepted func(fd int, addr unix.Sockaddr) error) error {
	for {
		fd, addr, err := unix.Accept(listenerFd)
		if err != nil {
			if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
				return nil
			}
			if err == unix.EINTR {
				continue
			}
			return fmt.Errorf("accept: %w", err)
		}
		if err := unix.SetNonblock(fd, true); err != nil {
			unix.Close(fd)
			continue
		}
		if err := accepted(fd, addr); err != nil {
			unix.Close(fd)
		}
	}
}

// IPAddress renders a unix.Sockaddr obtained from AcceptAll as a
// human-readable "ip:port" string, per spec.md's Connection.ip_address.
func IPAddress(addr unix.Sockaddr) string {
	switch a := addr.(type) {
	case *unix.SockaddrInet4:
		return fmt.Sprintf("%d.%d.%d.%d:%d", a.Addr[0], a.Addr[1], a.Addr[2], a.Addr[3], a.Port)
	case *unix.SockaddrInet6:
		return fmt.Sprintf("[%x]:%d", a.Addr, a.Port)
	default:
		return "unknown"
	}
}

// Port extracts the peer's port number from a unix.Sockaddr obtained
// from AcceptAll, per spec.md's Connection.port.
func Port(addr unix.Sockaddr) uint16 {
	switch a := addr.(type) {
	case *unix.SockaddrInet4:
		return uint16(a.Port)
	case *unix.SockaddrInet6:
		return uint16(a.Port)
	default:
		return 0
	}
}

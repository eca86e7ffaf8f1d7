// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package connection composes the request parser and response builder
// over a pair of buffers to drive one TCP connection's receive/process/
// send lifecycle, as directed by the reactor's event loop.
package connection

import (
	"path"
	"path/filepath"

	"golang.org/x/sys/unix"

	"github.com/momentics/reactord/internal/buffer"
	"github.com/momentics/reactord/internal/mmap"
	"github.com/momentics/reactord/protocol/http"
)

const indexTemplate = "index.html"

// Connection owns one accepted socket's read/write buffers, parser, and
// any mapped file backing the current response.
type Connection struct {
	fd          int
	ipAddress   string
	port        uint16
	assetFolder string

	readBuf  *buffer.Buffer
	writeBuf *buffer.Buffer
	mapped   *mmap.File
	mappedAt int

	parser    *http.Parser
	keepAlive bool
	valid     bool
}

// New constructs a Connection over an already-accepted, non-blocking
// socket fd.
func New(fd int, ipAddress string, port uint16, assetFolder string) *Connection {
	return &Connection{
		fd:          fd,
		ipAddress:   ipAddress,
		port:        port,
		assetFolder: assetFolder,
		readBuf:     buffer.New(0),
		writeBuf:    buffer.New(0),
		parser:      http.NewParser(),
		valid:       true,
	}
}

// Socket returns the connection's file descriptor.
func (c *Connection) Socket() int {
	return c.fd
}

// IPAddress returns the peer's address as captured at accept time.
func (c *Connection) IPAddress() string {
	return c.ipAddress
}

// Port returns the peer's port number as captured at accept time.
func (c *Connection) Port() uint16 {
	return c.port
}

// KeepAlive reports whether the most recently parsed request asked to
// keep the connection open.
func (c *Connection) KeepAlive() bool {
	return c.keepAlive
}

// IsValid reports whether the connection has not yet been closed.
func (c *Connection) IsValid() bool {
	return c.valid
}

// Receive drains readable bytes from the socket into the read buffer
// in a non-blocking loop until the kernel signals no more data.
func (c *Connection) Receive() (int, error) {
	return c.readBuf.ReadFromFD(c.fd)
}

// Process parses whatever is in the read buffer and builds a response
// into the write buffer. It returns false if there was nothing to
// parse (the reactor should rearm for READ), true if a response was
// built (the reactor should rearm for WRITE).
func (c *Connection) Process() (bool, error) {
	if c.readBuf.Empty() {
		return false, nil
	}

	req, err := c.parser.Parse(c.readBuf)
	if err != nil {
		c.keepAlive = false
		if buildErr := c.buildErrorPage(http.StatusBadRequest, err.Error()); buildErr != nil {
			return true, buildErr
		}
		return true, nil
	}

	c.keepAlive = req.KeepAlive
	if err := c.buildResponseFor(req); err != nil {
		return true, err
	}
	return true, nil
}

func (c *Connection) buildResponseFor(req *http.Request) error {
	if c.mapped != nil {
		c.mapped.Close()
		c.mapped = nil
		c.mappedAt = 0
	}

	if req.Path == "/" || req.Path == "/index.html" {
		return c.buildIndexResponse(req)
	}
	return c.buildStaticFileResponse(req)
}

func (c *Connection) buildIndexResponse(req *http.Request) error {
	params := map[string]string{}
	user, msg := req.Form["user"], req.Form["msg"]
	if user != "" && msg != "" {
		params["user"] = user
		params["msg"] = msg
		params["hide-msg"] = "false"
	} else {
		params["hide-msg"] = "true"
	}

	templatePath := filepath.Join(c.assetFolder, indexTemplate)
	mapped, err := http.BuildResponse(c.writeBuf, http.StatusOK, http.Template(templatePath, params), c.keepAlive)
	if err != nil {
		return c.buildErrorPage(statusFor(err), err.Error())
	}
	c.mapped = mapped
	return nil
}

func (c *Connection) buildStaticFileResponse(req *http.Request) error {
	cleaned := path.Clean("/" + req.Path)
	fullPath := filepath.Join(c.assetFolder, cleaned)

	mapped, err := http.BuildResponse(c.writeBuf, http.StatusOK, http.FileMap(fullPath), c.keepAlive)
	if err != nil {
		return c.buildErrorPage(statusFor(err), err.Error())
	}
	c.mapped = mapped
	return nil
}

func (c *Connection) buildErrorPage(status http.StatusCode, message string) error {
	c.writeBuf.Clear()
	_, err := http.BuildResponse(c.writeBuf, status, http.ErrorPage(c.assetFolder, message), c.keepAlive)
	return err
}

// statusFor maps any file-map or template-read failure to BadRequest.
// The original implementation's Response::Build catch block collapses
// every such failure to one status regardless of errno, and a request
// for a file that does not exist under the asset root is expected to
// produce a 400 response, not a 404.
func statusFor(err error) http.StatusCode {
	return http.StatusBadRequest
}

// Send writes the write buffer to the socket until empty, then, if a
// mapped file is held, writes its bytes until the full size has been
// transmitted. It returns true once both the buffer and any mapped
// file have fully drained.
func (c *Connection) Send() (bool, error) {
	if !c.writeBuf.Empty() {
		if _, err := c.writeBuf.WriteToFD(c.fd); err != nil {
			return false, err
		}
		if !c.writeBuf.Empty() {
			return false, nil
		}
	}

	if c.mapped == nil {
		return true, nil
	}

	data := c.mapped.Data()[c.mappedAt:]
	for len(data) > 0 {
		n, err := unix.Write(c.fd, data)
		if n > 0 {
			data = data[n:]
			c.mappedAt += n
		}
		if err != nil {
			if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
				return false, nil
			}
			if err == unix.EINTR {
				continue
			}
			return false, err
		}
		if n == 0 {
			break
		}
	}

	c.mapped.Close()
	c.mapped = nil
	c.mappedAt = 0
	return true, nil
}

// Close releases the connection's socket and any mapped file.
func (c *Connection) Close() error {
	if !c.valid {
		return nil
	}
	c.valid = false
	if c.mapped != nil {
		c.mapped.Close()
		c.mapped = nil
	}
	return unix.Close(c.fd)
}

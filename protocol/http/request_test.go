// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

package http

import (
	"testing"

	"github.com/momentics/reactord/internal/buffer"
)

func TestParseMinimalPostWithoutForm(t *testing.T) {
	buf := buffer.New(0)
	buf.AppendString("POST /path HTTP/1.1\r\nHost: s\r\nContent-Type: application/x-www-form-urlencoded\r\nContent-Length: 0\r\n\r\n", nil)

	req, err := NewParser().Parse(buf)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if req.Method != "POST" || req.Path != "/path" {
		t.Fatalf("unexpected method/path: %q %q", req.Method, req.Path)
	}
	if len(req.Headers) != 3 {
		t.Fatalf("expected 3 headers, got %d: %v", len(req.Headers), req.Headers)
	}
	if len(req.Form) != 0 {
		t.Fatalf("expected 0 form fields, got %d", len(req.Form))
	}
	if req.KeepAlive {
		t.Fatalf("expected keep_alive false")
	}
}

func TestParsePostWithURLEncodedForm(t *testing.T) {
	buf := buffer.New(0)
	buf.AppendString("POST /submit HTTP/1.1\r\nContent-Type: application/x-www-form-urlencoded\r\n\r\nid=1&name=mike+chen&msg=hello%21", nil)

	req, err := NewParser().Parse(buf)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(req.Form) != 3 {
		t.Fatalf("expected 3 form fields, got %d: %v", len(req.Form), req.Form)
	}
	if req.Form["id"] != "1" || req.Form["name"] != "mike chen" || req.Form["msg"] != "hello!" {
		t.Fatalf("unexpected form: %v", req.Form)
	}
}

func TestKeepAliveDetection(t *testing.T) {
	buf := buffer.New(0)
	buf.AppendString("GET / HTTP/1.1\r\nConnection: keep-alive\r\n\r\n", nil)
	req, err := NewParser().Parse(buf)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !req.KeepAlive {
		t.Fatalf("expected keep_alive true")
	}

	buf2 := buffer.New(0)
	buf2.AppendString("GET / HTTP/1.0\r\nConnection: keep-alive\r\n\r\n", nil)
	req2, err := NewParser().Parse(buf2)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if req2.KeepAlive {
		t.Fatalf("expected keep_alive false for HTTP/1.0")
	}
}

func TestUnrecognizedMethodIsBadRequest(t *testing.T) {
	buf := buffer.New(0)
	buf.AppendString("TRACE / HTTP/1.1\r\n\r\n", nil)
	if _, err := NewParser().Parse(buf); err == nil {
		t.Fatalf("expected error for unrecognized method")
	}
}

func TestMalformedHeaderLineIsBadRequest(t *testing.T) {
	buf := buffer.New(0)
	buf.AppendString("GET / HTTP/1.1\r\nno-colon-here\r\n\r\n", nil)
	if _, err := NewParser().Parse(buf); err == nil {
		t.Fatalf("expected error for malformed header")
	}
}

func TestNoEmptyLineBetweenHeadersAndBodyIsInvalid(t *testing.T) {
	buf := buffer.New(0)
	buf.AppendString("GET / HTTP/1.1\r\nHost: s\r\n", nil)
	if _, err := NewParser().Parse(buf); err == nil {
		t.Fatalf("expected error for missing empty line")
	}
}

func TestGetWithBodyIsBadRequest(t *testing.T) {
	buf := buffer.New(0)
	buf.AppendString("GET / HTTP/1.1\r\nContent-Length: 7\r\n\r\nshould-not-be-here", nil)
	if _, err := NewParser().Parse(buf); err == nil {
		t.Fatalf("expected error for GET request carrying a body")
	}
}

func TestDuplicateFormKeyIsBadRequest(t *testing.T) {
	buf := buffer.New(0)
	buf.AppendString("POST /x HTTP/1.1\r\nContent-Type: application/x-www-form-urlencoded\r\n\r\na=1&a=2", nil)
	if _, err := NewParser().Parse(buf); err == nil {
		t.Fatalf("expected error for duplicate form key")
	}
}

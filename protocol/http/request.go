// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

package http

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/momentics/reactord/errors"
	"github.com/momentics/reactord/internal/buffer"
)

// ParseState is one of the request parser's tagged states.
type ParseState int

const (
	NotStarted ParseState = iota
	Headers
	Body
	Finished
)

var recognizedMethods = map[string]string{
	"GET":    "GET",
	"POST":   "POST",
	"PUT":    "PUT",
	"PATCH":  "PATCH",
	"DELETE": "DELETE",
}

// Request is the parsed form of an HTTP/1.1 request.
type Request struct {
	Method      string
	Path        string
	Version     string
	Headers     map[string]string
	headerOrder []string
	Form        map[string]string
	KeepAlive   bool
}

// HeaderKeys returns header names in the order they were parsed.
func (r *Request) HeaderKeys() []string {
	return r.headerOrder
}

func (r *Request) setHeader(key, value string) {
	if r.Headers == nil {
		r.Headers = make(map[string]string)
	}
	if _, exists := r.Headers[key]; !exists {
		r.headerOrder = append(r.headerOrder, key)
	}
	r.Headers[key] = value
}

// Parser drives the NotStarted -> Headers -> Body -> Finished state
// machine over a connection's read buffer. A Parser is single-shot:
// Parse resets all state before driving the machine.
type Parser struct {
	state ParseState
	req   *Request
}

// NewParser constructs an idle request parser.
func NewParser() *Parser {
	return &Parser{}
}

// State reports the parser's current tagged state.
func (p *Parser) State() ParseState {
	return p.state
}

// Parse drains buf line by line (retrieving each line's bytes including
// its CRLF from the buffer's read cursor) and drives the state machine
// until the buffer is empty or an error is raised. It returns the fully
// parsed Request once the machine reaches Finished.
func (p *Parser) Parse(buf *buffer.Buffer) (*Request, error) {
	p.state = NotStarted
	p.req = &Request{Headers: make(map[string]string), Form: make(map[string]string)}

	for p.state != Finished {
		switch p.state {
		case NotStarted:
			line, ok := readLine(buf)
			if !ok {
				return nil, fmt.Errorf("incomplete status line: %w", errors.ErrInvalidInput)
			}
			if err := p.parseStatusLine(line); err != nil {
				return nil, err
			}
			p.state = Headers

		case Headers:
			line, ok := readLine(buf)
			if !ok {
				return nil, fmt.Errorf("incomplete headers: %w", errors.ErrInvalidInput)
			}
			if len(line) == 0 {
				p.state = Body
				continue
			}
			if err := p.parseHeaderLine(line); err != nil {
				return nil, err
			}

		case Body:
			if err := p.parseBody(buf); err != nil {
				return nil, err
			}
			p.state = Finished
		}
	}

	p.req.KeepAlive = p.req.Version == "1.1" && strings.EqualFold(p.req.Headers["Connection"], "keep-alive")
	return p.req, nil
}

// readLine retrieves one CRLF-terminated line from buf, consuming the
// line and its terminator. It returns ok=false if no terminator is
// present in the readable region.
func readLine(buf *buffer.Buffer) ([]byte, bool) {
	readable := buf.ReadableBytes()
	idx := bytes.Index(readable, []byte("\r\n"))
	if idx < 0 {
		return nil, false
	}
	line := make([]byte, idx)
	copy(line, readable[:idx])
	buf.Retrieve(idx + 2)
	return line, true
}

func (p *Parser) parseStatusLine(line []byte) error {
	parts := strings.SplitN(string(line), " ", 3)
	if len(parts) != 3 {
		return fmt.Errorf("malformed status line %q: %w", line, errors.ErrInvalidInput)
	}
	method, ok := recognizedMethods[strings.ToUpper(parts[0])]
	if !ok {
		return fmt.Errorf("unrecognized method %q: %w", parts[0], errors.ErrInvalidInput)
	}
	const prefix = "HTTP/"
	if !strings.HasPrefix(parts[2], prefix) {
		return fmt.Errorf("malformed version %q: %w", parts[2], errors.ErrInvalidInput)
	}
	p.req.Method = method
	p.req.Path = parts[1]
	p.req.Version = strings.TrimPrefix(parts[2], prefix)
	return nil
}

func (p *Parser) parseHeaderLine(line []byte) error {
	colon := bytes.IndexByte(line, ':')
	if colon < 0 {
		return fmt.Errorf("malformed header line %q: %w", line, errors.ErrInvalidInput)
	}
	key := string(line[:colon])
	value := strings.TrimPrefix(string(line[colon+1:]), " ")
	if key == "" {
		return fmt.Errorf("empty header key: %w", errors.ErrInvalidInput)
	}
	p.req.setHeader(key, value)
	return nil
}

func (p *Parser) parseBody(buf *buffer.Buffer) error {
	body := buf.ReadableString()
	buf.Retrieve(buf.ReadableSize())

	switch p.req.Method {
	case "POST":
		ct := p.req.Headers["Content-Type"]
		if body == "" {
			return nil
		}
		if !strings.Contains(ct, "application/x-www-form-urlencoded") {
			return fmt.Errorf("unsupported content type %q: %w", ct, errors.ErrInvalidInput)
		}
		return p.parseForm(body)
	case "GET", "PUT", "PATCH", "DELETE":
		if body != "" {
			return fmt.Errorf("unexpected body on %s request: %w", p.req.Method, errors.ErrInvalidInput)
		}
		return nil
	default:
		return fmt.Errorf("unsupported method %q: %w", p.req.Method, errors.ErrInvalidInput)
	}
}

func (p *Parser) parseForm(body string) error {
	for _, pair := range strings.Split(body, "&") {
		if pair == "" {
			continue
		}
		eq := strings.IndexByte(pair, '=')
		if eq < 0 {
			return fmt.Errorf("malformed form pair %q: %w", pair, errors.ErrInvalidInput)
		}
		key, err := decodeURLComponent(pair[:eq])
		if err != nil {
			return err
		}
		value, err := decodeURLComponent(pair[eq+1:])
		if err != nil {
			return err
		}
		if key == "" || value == "" {
			return fmt.Errorf("empty form key or value in %q: %w", pair, errors.ErrInvalidInput)
		}
		if _, dup := p.req.Form[key]; dup {
			return fmt.Errorf("duplicate form key %q: %w", key, errors.ErrInvalidInput)
		}
		p.req.Form[key] = value
	}
	return nil
}

// decodeURLComponent decodes '+' to space and '%HH' to the byte with
// that hexadecimal value.
func decodeURLComponent(s string) (string, error) {
	var out strings.Builder
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '+':
			out.WriteByte(' ')
		case '%':
			if i+2 >= len(s) {
				return "", fmt.Errorf("truncated percent-escape in %q: %w", s, errors.ErrInvalidInput)
			}
			hi, ok1 := hexDigit(s[i+1])
			lo, ok2 := hexDigit(s[i+2])
			if !ok1 || !ok2 {
				return "", fmt.Errorf("invalid percent-escape in %q: %w", s, errors.ErrInvalidInput)
			}
			out.WriteByte(byte(hi<<4 | lo))
			i += 2
		default:
			out.WriteByte(s[i])
		}
	}
	return out.String(), nil
}

func hexDigit(c byte) (int, bool) {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0'), true
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10, true
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10, true
	default:
		return 0, false
	}
}

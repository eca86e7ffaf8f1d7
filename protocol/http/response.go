// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

package http

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/momentics/reactord/errors"
	"github.com/momentics/reactord/internal/buffer"
	"github.com/momentics/reactord/internal/mmap"
)

// SourceKind tags which variant of BodySource a response plan carries.
type SourceKind int

const (
	// SourceFileMap serves a static file by zero-copy mapping.
	SourceFileMap SourceKind = iota
	// SourceTemplate renders an HTML template with placeholder substitution.
	SourceTemplate
	// SourceErrorPage renders the error-page template, or a built-in
	// inline page if that template cannot be read.
	SourceErrorPage
)

// BodySource is the tagged-variant response plan input: exactly one of
// FileMap(path), Template(path, params), or ErrorPage(assetFolder, message).
type BodySource struct {
	Kind    SourceKind
	Path    string
	Params  map[string]string
	Message string
}

// FileMap builds a BodySource that serves path via a zero-copy mapping.
func FileMap(path string) BodySource {
	return BodySource{Kind: SourceFileMap, Path: path}
}

// Template builds a BodySource that renders path with params substituted.
func Template(path string, params map[string]string) BodySource {
	return BodySource{Kind: SourceTemplate, Path: path, Params: params}
}

const statusTemplate = "http-status.html"

// ErrorPage builds a BodySource that renders assetFolder/http-status.html
// with status-code/status/msg placeholders substituted. If assetFolder
// is empty or that template cannot be read, BuildResponse falls back to
// a built-in inline page.
func ErrorPage(assetFolder, message string) BodySource {
	var path string
	if assetFolder != "" {
		path = filepath.Join(assetFolder, statusTemplate)
	}
	return BodySource{Kind: SourceErrorPage, Path: path, Message: message}
}

const crlf = "\r\n"

// BuildResponse serializes a status line, headers, and body into buf,
// per spec.md §4.6's output layout. For SourceFileMap, the returned
// *mmap.File holds the body; the reactor writes its bytes after buf
// drains and must Close it once the send completes. For the other two
// variants, the body is written directly into buf and the returned
// *mmap.File is nil.
func BuildResponse(buf *buffer.Buffer, status StatusCode, source BodySource, keepAlive bool) (*mmap.File, error) {
	switch source.Kind {
	case SourceFileMap:
		return buildFileMap(buf, status, source, keepAlive)
	case SourceTemplate:
		return nil, buildTemplate(buf, status, source, keepAlive)
	case SourceErrorPage:
		return nil, buildErrorPage(buf, status, source, keepAlive)
	default:
		return nil, fmt.Errorf("unknown body source kind %d: %w", source.Kind, errors.ErrInvalidInput)
	}
}

func buildFileMap(buf *buffer.Buffer, status StatusCode, source BodySource, keepAlive bool) (*mmap.File, error) {
	f, err := mmap.Open(source.Path)
	if err != nil {
		return nil, err
	}
	writeHeaders(buf, status, MIMEType(source.Path), f.Size(), keepAlive)
	return f, nil
}

func buildTemplate(buf *buffer.Buffer, status StatusCode, source BodySource, keepAlive bool) error {
	raw, err := os.ReadFile(source.Path)
	if err != nil {
		return classifyReadErr(err)
	}
	body := normalizeLineEndings(string(raw))
	body = substitutePlaceholders(body, source.Params)

	writeHeaders(buf, status, MIMEType(source.Path), len(body), keepAlive)
	buf.Append([]byte(body))
	return nil
}

func buildErrorPage(buf *buffer.Buffer, status StatusCode, source BodySource, keepAlive bool) error {
	body, err := renderErrorPageTemplate(status, source)
	if err != nil {
		body = renderErrorPage(status, source.Message)
	}
	writeHeaders(buf, status, "text/html", len(body), keepAlive)
	buf.Append([]byte(body))
	return nil
}

// renderErrorPageTemplate maps source.Path (assetFolder/http-status.html)
// and substitutes status-code/status/msg, mirroring the original
// implementation's Response::Build, which maps the same template for
// every error status before falling back to a literal inline page.
func renderErrorPageTemplate(status StatusCode, source BodySource) (string, error) {
	if source.Path == "" {
		return "", fmt.Errorf("no error page template configured")
	}
	raw, err := os.ReadFile(source.Path)
	if err != nil {
		return "", err
	}
	body := normalizeLineEndings(string(raw))
	params := map[string]string{
		"status-code": strconv.Itoa(int(status)),
		"status":      status.Reason(),
		"msg":         source.Message,
	}
	return substitutePlaceholders(body, params), nil
}

func renderErrorPage(status StatusCode, message string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<html><body><h1>%d %s</h1><p>%d : %s</p>", int(status), status.Reason(), int(status), status.Reason())
	if message != "" {
		fmt.Fprintf(&b, "<pre>%s</pre>", message)
	}
	b.WriteString("</body></html>")
	return b.String()
}

func writeHeaders(buf *buffer.Buffer, status StatusCode, contentType string, contentLength int, keepAlive bool) {
	nl := buffer.CRLF
	buf.AppendString(fmt.Sprintf("HTTP/1.1 %d %s", int(status), status.Reason()), &nl)
	if keepAlive {
		buf.AppendString("Connection: keep-alive", &nl)
		buf.AppendString("keep-alive: max=6, timeout=120", &nl)
	} else {
		buf.AppendString("Connection: close", &nl)
	}
	buf.AppendString(fmt.Sprintf("Content-Type: %s", contentType), &nl)
	buf.AppendString(fmt.Sprintf("Content-Length: %d", contentLength), &nl)
	buf.AppendString("", &nl)
}

// normalizeLineEndings rewrites every line ending in s to CRLF, per
// spec.md §4.6's template-substitution rule.
func normalizeLineEndings(s string) string {
	lines := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	return strings.Join(lines, crlf)
}

// substitutePlaceholders replaces every "<$KEY$>" token with its
// parameter value. Keys absent from params are left unreplaced.
func substitutePlaceholders(body string, params map[string]string) string {
	for key, value := range params {
		body = strings.ReplaceAll(body, "<$"+key+"$>", value)
	}
	return body
}

func classifyReadErr(err error) error {
	switch {
	case os.IsNotExist(err):
		return errors.ErrNotFound
	case os.IsPermission(err):
		return errors.ErrForbidden
	default:
		return errors.ErrInvalidInput
	}
}

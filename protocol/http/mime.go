// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

package http

import "strings"

const defaultMIME = "application/octet-stream"

var mimeByExtension = map[string]string{
	".html": "text/html",
	".htm":  "text/html",
	".css":  "text/css",
	".js":   "application/javascript",
	".json": "application/json",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".svg":  "image/svg+xml",
	".ico":  "image/x-icon",
	".txt":  "text/plain",
	".xml":  "application/xml",
	".pdf":  "application/pdf",
	".woff": "font/woff",
	".woff2": "font/woff2",
}

// MIMEType resolves a file's extension to a MIME type, case-insensitive,
// defaulting to application/octet-stream for unrecognized extensions.
func MIMEType(path string) string {
	dot := strings.LastIndexByte(path, '.')
	if dot < 0 {
		return defaultMIME
	}
	ext := strings.ToLower(path[dot:])
	if mt, ok := mimeByExtension[ext]; ok {
		return mt
	}
	return defaultMIME
}

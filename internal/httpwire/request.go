// Package httpwire implements the narrow HTTP/1.1 subset this server speaks
// over a raw TCP stream: a request line, `Key: Value` headers, a blank-line
// separator, and an optional body sized by Content-Length. It owns framing
// only and never interprets domain semantics.
package httpwire

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

// Request is one decoded wire message.
type Request struct {
	Method  string
	Path    string
	Version string
	Headers map[string]string
	Body    string
}

// ParseError reports malformed wire input. It is connection-local: the
// message cannot be recovered mid-stream and the connection is abandoned.
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string {
	return "parse request: " + e.Reason
}

// ReadRequest decodes exactly one request from r. It fails fast on the first
// malformed line and never attempts recovery.
func ReadRequest(r *bufio.Reader) (Request, error) {
	line, err := readLine(r)
	if err != nil {
		return Request{}, &ParseError{Reason: "missing request line"}
	}

	req, perr := parseRequestLine(line)
	if perr != nil {
		return Request{}, perr
	}

	req.Headers, perr = readHeaders(r)
	if perr != nil {
		return Request{}, perr
	}

	if perr := readBody(r, &req); perr != nil {
		return Request{}, perr
	}

	return req, nil
}

func parseRequestLine(line string) (Request, *ParseError) {
	parts := strings.Split(line, " ")
	if len(parts) != 3 {
		return Request{}, &ParseError{Reason: "malformed request line"}
	}
	return Request{Method: parts[0], Path: parts[1], Version: parts[2]}, nil
}

// readHeaders consumes lines until the blank separator. Duplicate header
// names keep the last occurrence.
func readHeaders(r *bufio.Reader) (map[string]string, *ParseError) {
	headers := make(map[string]string)
	for {
		line, err := readLine(r)
		if err != nil || line == "" {
			return headers, nil
		}
		key, value, found := strings.Cut(line, ": ")
		if !found || key == "" {
			return nil, &ParseError{Reason: "malformed header"}
		}
		headers[key] = value
	}
}

func readBody(r *bufio.Reader, req *Request) *ParseError {
	raw, ok := req.Headers["Content-Length"]
	if !ok {
		return nil
	}
	length, err := strconv.Atoi(raw)
	if err != nil || length < 0 {
		return &ParseError{Reason: "malformed Content-Length"}
	}
	if length == 0 {
		return nil
	}
	body := make([]byte, length)
	if _, err := io.ReadFull(r, body); err != nil {
		return &ParseError{Reason: "truncated body"}
	}
	req.Body = string(body)
	return nil
}

// readLine reads up to the next LF and strips the terminator, accepting both
// CRLF and bare LF. A final unterminated line before EOF is still returned.
func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil {
		if err == io.EOF && line != "" {
			return strings.TrimSuffix(line, "\r"), nil
		}
		return "", err
	}
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r"), nil
}

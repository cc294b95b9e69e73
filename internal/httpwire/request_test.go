package httpwire

import (
	"bufio"
	"errors"
	"strings"
	"testing"
)

func decode(t *testing.T, raw string) (Request, error) {
	t.Helper()
	return ReadRequest(bufio.NewReader(strings.NewReader(raw)))
}

func TestReadRequestCRLF(t *testing.T) {
	raw := "POST /signup HTTP/1.1\r\n" +
		"Content-Type: application/json\r\n" +
		"Content-Length: 35\r\n" +
		"\r\n" +
		`{"login":"alice","password":"pw1"}X`

	req, err := decode(t, raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if req.Method != "POST" || req.Path != "/signup" || req.Version != "HTTP/1.1" {
		t.Fatalf("unexpected request line: %+v", req)
	}
	if req.Headers["Content-Type"] != "application/json" {
		t.Fatalf("unexpected headers: %v", req.Headers)
	}
	if len(req.Body) != 35 {
		t.Fatalf("expected body of 35 bytes, got %d", len(req.Body))
	}
}

func TestReadRequestLF(t *testing.T) {
	raw := "GET /money HTTP/1.1\nAuthorization: Bearer abc\n\n"
	req, err := decode(t, raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if req.Method != "GET" || req.Path != "/money" {
		t.Fatalf("unexpected request line: %+v", req)
	}
	if req.Headers["Authorization"] != "Bearer abc" {
		t.Fatalf("unexpected headers: %v", req.Headers)
	}
	if req.Body != "" {
		t.Fatalf("expected empty body, got %q", req.Body)
	}
}

func TestReadRequestBodyExactLength(t *testing.T) {
	// Declared length is shorter than the stream; the rest must not be read.
	raw := "POST /money HTTP/1.1\r\nContent-Length: 4\r\n\r\nabcdEXTRA"
	req, err := decode(t, raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if req.Body != "abcd" {
		t.Fatalf("expected body %q, got %q", "abcd", req.Body)
	}
}

func TestReadRequestTruncatedBody(t *testing.T) {
	raw := "POST /money HTTP/1.1\r\nContent-Length: 50\r\n\r\nshort"
	_, err := decode(t, raw)
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected ParseError, got %v", err)
	}
	if perr.Reason != "truncated body" {
		t.Fatalf("unexpected reason: %s", perr.Reason)
	}
}

func TestReadRequestMalformedRequestLine(t *testing.T) {
	cases := []string{
		"POST /signup\r\n\r\n",
		"POST  /signup HTTP/1.1\r\n\r\n",
		"POST /signup HTTP/1.1 extra\r\n\r\n",
	}
	for _, raw := range cases {
		_, err := decode(t, raw)
		var perr *ParseError
		if !errors.As(err, &perr) || perr.Reason != "malformed request line" {
			t.Fatalf("raw %q: expected malformed request line, got %v", raw, err)
		}
	}
}

func TestReadRequestMalformedHeader(t *testing.T) {
	raw := "GET /money HTTP/1.1\r\nAuthorization-no-separator\r\n\r\n"
	_, err := decode(t, raw)
	var perr *ParseError
	if !errors.As(err, &perr) || perr.Reason != "malformed header" {
		t.Fatalf("expected malformed header, got %v", err)
	}
}

func TestReadRequestHeaderValueMayContainSeparator(t *testing.T) {
	raw := "GET /money HTTP/1.1\r\nX-Note: a: b: c\r\n\r\n"
	req, err := decode(t, raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if req.Headers["X-Note"] != "a: b: c" {
		t.Fatalf("expected value split on first separator, got %q", req.Headers["X-Note"])
	}
}

func TestReadRequestDuplicateHeaderLastWins(t *testing.T) {
	raw := "GET /money HTTP/1.1\r\nX-Tag: first\r\nX-Tag: second\r\n\r\n"
	req, err := decode(t, raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if req.Headers["X-Tag"] != "second" {
		t.Fatalf("expected last duplicate to win, got %q", req.Headers["X-Tag"])
	}
}

func TestReadRequestEmptyStream(t *testing.T) {
	_, err := decode(t, "")
	var perr *ParseError
	if !errors.As(err, &perr) || perr.Reason != "missing request line" {
		t.Fatalf("expected missing request line, got %v", err)
	}
}

func TestReadRequestBadContentLength(t *testing.T) {
	raw := "POST /money HTTP/1.1\r\nContent-Length: many\r\n\r\n"
	_, err := decode(t, raw)
	var perr *ParseError
	if !errors.As(err, &perr) || perr.Reason != "malformed Content-Length" {
		t.Fatalf("expected malformed Content-Length, got %v", err)
	}
}

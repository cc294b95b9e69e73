package httpwire

import (
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
)

// WriteResponse serializes a response: status line, headers, blank line, body.
// Content-Length and Connection: close are always emitted so real HTTP
// clients can frame the body even though the connection closes afterwards.
// Caller headers are written in sorted order to keep output deterministic.
func WriteResponse(w io.Writer, status int, headers map[string]string, body string) error {
	var b strings.Builder
	fmt.Fprintf(&b, "HTTP/1.1 %d %s\r\n", status, reason(status))

	keys := make([]string, 0, len(headers))
	for key := range headers {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Fprintf(&b, "%s: %s\r\n", key, headers[key])
	}

	fmt.Fprintf(&b, "Content-Length: %d\r\n", len(body))
	b.WriteString("Connection: close\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)

	_, err := io.WriteString(w, b.String())
	return err
}

func reason(status int) string {
	if text := http.StatusText(status); text != "" {
		return text
	}
	return "Unknown"
}

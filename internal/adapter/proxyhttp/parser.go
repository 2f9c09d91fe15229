package proxyhttp

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/clauderelay/proxypool/internal/core/domain"
)

// parseHeaderBlock splits the bytes before the header terminator into the
// request line and the ordered header list (§4.3). Header names are
// preserved verbatim for reassembly but compared case-insensitively
// elsewhere; duplicate whitespace around the colon is normalised away.
func parseHeaderBlock(block []byte) (requestLine string, headers domain.Headers, err error) {
	lines := bytes.Split(block, []byte("\r\n"))
	if len(lines) == 0 || len(bytes.TrimSpace(lines[0])) == 0 {
		return "", nil, domain.NewClientProtocolError("malformed_request_line", 400,
			errors.New("missing request line"))
	}

	requestLine = string(bytes.TrimSpace(lines[0]))
	headers = make(domain.Headers, 0, len(lines)-1)

	for _, raw := range lines[1:] {
		line := string(raw)
		if strings.TrimSpace(line) == "" {
			continue
		}
		colon := strings.IndexByte(line, ':')
		if colon < 0 {
			return "", nil, domain.NewClientProtocolError("malformed_header", 400,
				fmt.Errorf("header line missing colon: %q", line))
		}
		name := strings.TrimSpace(line[:colon])
		value := strings.TrimSpace(line[colon+1:])
		if name == "" {
			return "", nil, domain.NewClientProtocolError("malformed_header", 400,
				errors.New("empty header name"))
		}
		headers = append(headers, domain.Header{Name: name, Value: value})
	}

	return requestLine, headers, nil
}

// parseRequestLine splits "METHOD SP request-target SP HTTP/1.1" into method
// and request-target (§4.3). The HTTP version is validated but discarded;
// this core only ever speaks HTTP/1.1.
func parseRequestLine(line string) (method, target string, err error) {
	parts := strings.Split(line, " ")
	if len(parts) != 3 {
		return "", "", domain.NewClientProtocolError("malformed_request_line", 400,
			fmt.Errorf("expected 3 space-separated fields, got %d", len(parts)))
	}
	method, target, version := parts[0], parts[1], parts[2]
	if method == "" || target == "" {
		return "", "", domain.NewClientProtocolError("malformed_request_line", 400,
			errors.New("empty method or target"))
	}
	if !strings.HasPrefix(version, "HTTP/1.1") && !strings.HasPrefix(version, "HTTP/1.0") {
		return "", "", domain.NewClientProtocolError("unsupported_http_version", 400,
			fmt.Errorf("unsupported version %q", version))
	}
	return method, target, nil
}

// NormalizeTarget reduces an absolute-form or origin-form request-target to
// origin-form (path + optional query), per §4.3.
func NormalizeTarget(target string) string {
	if strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://") {
		if parsed, err := url.Parse(target); err == nil {
			origin := parsed.Path
			if origin == "" {
				origin = "/"
			}
			if parsed.RawQuery != "" {
				origin += "?" + parsed.RawQuery
			}
			return origin
		}
	}
	if !strings.HasPrefix(target, "/") {
		return "/" + target
	}
	return target
}

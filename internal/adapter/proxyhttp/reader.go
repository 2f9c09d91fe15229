package proxyhttp

import (
	"bytes"
	"errors"
	"io"
	"net"
	"strconv"
	"strings"

	"github.com/clauderelay/proxypool/internal/core/domain"
	litepool "github.com/clauderelay/proxypool/pkg/pool"
)

const (
	// ReadChunkSize is the maximum number of bytes read from the connection
	// per Read call (§4.2).
	ReadChunkSize = 64 * 1024
	// MaxHeaderBytes is the limit on bytes buffered without a complete
	// header terminator before the connection is rejected with 413 (§4.2).
	MaxHeaderBytes = 1024 * 1024

	crlfcrlf = "\r\n\r\n"
)

// ErrConnectionClosed indicates the client closed the connection before a
// complete request was read; the caller should close silently (§4.2).
var ErrConnectionClosed = errors.New("connection closed before complete request")

// chunkBuffer wraps the fixed-size read buffer so it can live in a litepool.Pool
// across connections without reallocating ReadChunkSize bytes per request.
type chunkBuffer struct {
	bytes []byte
}

func (c *chunkBuffer) Reset() {}

var chunkBufferPool = litepool.NewLitePool(func() *chunkBuffer {
	return &chunkBuffer{bytes: make([]byte, ReadChunkSize)}
})

// ReadRequest reads raw bytes from conn until a complete HTTP/1.1 request
// (headers terminated by CRLF CRLF, plus a body honouring Content-Length) has
// been buffered, then parses it with parseHeaderBlock and parseRequestLine
// and normalises the target to origin-form. A buffer exceeding
// MaxHeaderBytes without a complete header terminator is a ClientProtocolError
// carrying status 413 (§4.2).
func ReadRequest(conn net.Conn) (*domain.BufferedRequest, error) {
	cb := chunkBufferPool.Get()
	defer chunkBufferPool.Put(cb)

	buf := make([]byte, 0, ReadChunkSize)
	chunk := cb.bytes

	headerEnd := -1
	for headerEnd < 0 {
		n, err := conn.Read(chunk)
		if n > 0 {
			buf = append(buf, chunk[:n]...)
			headerEnd = bytes.Index(buf, []byte(crlfcrlf))
		}
		if headerEnd < 0 && len(buf) > MaxHeaderBytes {
			return nil, domain.NewOversizedHeadersError(413,
				errors.New("request headers exceeded 1 MiB without terminator"), len(buf))
		}
		if err != nil {
			if headerEnd >= 0 {
				break
			}
			if errors.Is(err, io.EOF) {
				return nil, ErrConnectionClosed
			}
			return nil, err
		}
	}

	headerBlock := buf[:headerEnd]
	bodySoFar := buf[headerEnd+len(crlfcrlf):]

	requestLine, headers, err := parseHeaderBlock(headerBlock)
	if err != nil {
		return nil, err
	}

	if te, ok := headers.Get("Transfer-Encoding"); ok && strings.Contains(strings.ToLower(te), "chunked") {
		return nil, domain.NewClientProtocolError("chunked_unsupported", 400,
			errors.New("Transfer-Encoding: chunked is not supported"))
	}

	contentLength := 0
	if cl, ok := headers.Get("Content-Length"); ok {
		contentLength, err = strconv.Atoi(strings.TrimSpace(cl))
		if err != nil || contentLength < 0 {
			return nil, domain.NewClientProtocolError("malformed_content_length", 400,
				errors.New("invalid Content-Length header"))
		}
	}

	body := make([]byte, 0, contentLength)
	body = append(body, bodySoFar...)
	for len(body) < contentLength {
		n, err := conn.Read(chunk)
		if n > 0 {
			body = append(body, chunk[:n]...)
		}
		if err != nil {
			if len(body) >= contentLength {
				break
			}
			if errors.Is(err, io.EOF) {
				return nil, ErrConnectionClosed
			}
			return nil, err
		}
	}
	if len(body) > contentLength {
		body = body[:contentLength]
	}

	method, target, err := parseRequestLine(requestLine)
	if err != nil {
		return nil, err
	}

	return &domain.BufferedRequest{
		Method:  method,
		Target:  NormalizeTarget(target),
		Headers: headers,
		Body:    body,
	}, nil
}

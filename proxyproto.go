// Package proxyproto decodes and encodes the HAProxy PROXY protocol,
// both the version 1 human-readable form and the version 2 binary form.
//
// The package never performs I/O: every decoder consumes a byte slice the
// caller has already read from its connection and returns a structured
// header, the number of bytes consumed, and a typed error on failure.
// Bytes beyond the header are left for the caller — they are the start of
// the wrapped protocol's own traffic.
//
// https://www.haproxy.org/download/1.8/doc/proxy-protocol.txt
package proxyproto

import (
	"net"
)

const (
	v1Prefix  = "PROXY"
	separator = ' '
	crlf      = "\r\n"
)

// sigV2 is the fixed 12-byte signature of a version 2 binary header.
var sigV2 = []byte("\x0D\x0A\x0D\x0A\x00\x0D\x0A\x51\x55\x49\x54\x0A")

// Header provides information decoded from a PROXY header.
type Header interface {
	Version() int
	Src() net.Addr
	Dest() net.Addr
}

// Parse decodes a version 1 or version 2 header from the front of buf,
// picking the format from the first byte. It returns the header and the
// number of bytes it occupies; the remainder of buf is untouched.
func Parse(buf []byte) (Header, int, error) {
	if len(buf) > 0 && buf[0] == sigV2[0] {
		h, n, err := ParseV2(buf)
		if err != nil {
			return nil, n, err
		}
		return h, n, nil
	}
	h, n, err := ParseV1(buf)
	if err != nil {
		return nil, n, err
	}
	return h, n, nil
}

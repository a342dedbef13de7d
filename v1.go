package proxyproto

import (
	"bytes"
	"errors"
	"io"
	"net"
	"net/netip"
	"strconv"
)

// V1Proto represents the address family and transport protocol token of a
// PROXY protocol version 1 header.
type V1Proto string

const (
	// V1ProtoUnknown indicates other, unsupported, or unknown protocols.
	V1ProtoUnknown V1Proto = "UNKNOWN"

	// V1ProtoTCP4 for TCP over IPv4
	V1ProtoTCP4 V1Proto = "TCP4"

	// V1ProtoTCP6 for TCP over IPv6
	V1ProtoTCP6 V1Proto = "TCP6"
)

// Worst case v1 line length per the protocol spec:
// "PROXY UNKNOWN ffff:...:ffff ffff:...:ffff 65535 65535\r\n" = 107 bytes.
const maxV1Len = 107

// HeaderV1 contains information relayed by the PROXY protocol version 1
// (human-readable) header.
//
// A decoded HeaderV1 borrows from the caller's buffer: Raw is a subslice of
// the input to ParseV1, and must not be used after the buffer is reused or
// modified. Addrs is one of IPv4Pair, IPv6Pair, or nil for UNKNOWN.
type HeaderV1 struct {
	Raw   []byte
	Addrs Addrs
}

// ParseV1 decodes exactly one version 1 text header from the front of buf,
// returning the header and the number of bytes consumed, including the
// terminating "\r\n". Bytes after the terminator are not inspected.
func ParseV1(buf []byte) (*HeaderV1, int, error) {
	if !bytes.HasPrefix(buf, []byte(v1Prefix)) {
		return nil, 0, ErrInvalidPrefix
	}
	limit := len(buf)
	if limit > maxV1Len {
		limit = maxV1Len
	}
	end := bytes.Index(buf[:limit], []byte(crlf))
	if end < 0 {
		return nil, 0, ErrMissingCRLF
	}
	h := &HeaderV1{Raw: buf[:end+len(crlf)]}

	rest := buf[len(v1Prefix):end]
	if len(rest) == 0 || rest[0] != separator {
		// "PROXYUNKNOWN" with no separator is tolerated, matching the
		// protocol's permissive treatment of UNKNOWN lines.
		if bytes.HasPrefix(rest, []byte(V1ProtoUnknown)) {
			return h, end + len(crlf), nil
		}
		return nil, 0, ErrMissingSeparator
	}

	fields := bytes.Split(rest[1:], []byte{separator})
	var fam V1Proto
	switch string(fields[0]) {
	case string(V1ProtoUnknown):
		// The rest of the line is ignored for UNKNOWN.
		return h, end + len(crlf), nil
	case string(V1ProtoTCP4):
		fam = V1ProtoTCP4
	case string(V1ProtoTCP6):
		fam = V1ProtoTCP6
	default:
		return nil, 0, ErrInvalidProtocol
	}

	if len(fields) < 5 {
		return nil, 0, ErrMissingSeparator
	}
	if len(fields) > 5 {
		// Trailing tokens before the terminator.
		return nil, 0, ErrMissingCRLF
	}

	srcIP, err := parseV1Addr(fam, fields[1])
	if err != nil {
		return nil, 0, err
	}
	destIP, err := parseV1Addr(fam, fields[2])
	if err != nil {
		return nil, 0, err
	}
	srcPort, err := parseV1Port(fields[3])
	if err != nil {
		return nil, 0, err
	}
	destPort, err := parseV1Port(fields[4])
	if err != nil {
		return nil, 0, err
	}

	if fam == V1ProtoTCP4 {
		h.Addrs = IPv4Pair{
			SrcIP:    srcIP.As4(),
			DestIP:   destIP.As4(),
			SrcPort:  srcPort,
			DestPort: destPort,
		}
	} else {
		h.Addrs = IPv6Pair{
			SrcIP:    srcIP.As16(),
			DestIP:   destIP.As16(),
			SrcPort:  srcPort,
			DestPort: destPort,
		}
	}
	return h, end + len(crlf), nil
}

func parseV1Addr(fam V1Proto, tok []byte) (netip.Addr, error) {
	addr, err := netip.ParseAddr(string(tok))
	if err != nil || addr.Zone() != "" {
		return netip.Addr{}, ErrInvalidAddress
	}
	switch fam {
	case V1ProtoTCP4:
		if !addr.Is4() {
			return netip.Addr{}, ErrInvalidAddress
		}
	case V1ProtoTCP6:
		if !addr.Is6() {
			return netip.Addr{}, ErrInvalidAddress
		}
	}
	return addr, nil
}

func parseV1Port(tok []byte) (uint16, error) {
	if len(tok) == 0 || (len(tok) > 1 && tok[0] == '0') {
		return 0, ErrInvalidPort
	}
	port, err := strconv.ParseUint(string(tok), 10, 16)
	if err != nil {
		return 0, ErrInvalidPort
	}
	return uint16(port), nil
}

// Version always returns 1.
func (HeaderV1) Version() int { return 1 }

// Protocol returns the protocol token carried by the header, derived from
// the decoded addresses rather than by re-scanning the text.
func (h HeaderV1) Protocol() V1Proto {
	switch h.Addrs.(type) {
	case IPv4Pair:
		return V1ProtoTCP4
	case IPv6Pair:
		return V1ProtoTCP6
	}
	return V1ProtoUnknown
}

// Addresses returns the address portion of the original header text, located
// by offset arithmetic on the fixed layout: everything between the protocol
// token and the terminator, with the leading separator stripped. It is empty
// for an UNKNOWN header with no address tail.
func (h HeaderV1) Addresses() string {
	start := len(v1Prefix) + 1 + len(h.Protocol())
	end := len(h.Raw) - len(crlf)
	if start >= end {
		return ""
	}
	addrs := h.Raw[start:end]
	if addrs[0] == separator {
		addrs = addrs[1:]
	}
	return string(addrs)
}

// Src returns the TCP source address, or nil for UNKNOWN.
func (h HeaderV1) Src() net.Addr {
	switch a := h.Addrs.(type) {
	case IPv4Pair:
		return net.TCPAddrFromAddrPort(a.Src())
	case IPv6Pair:
		return net.TCPAddrFromAddrPort(a.Src())
	}
	return nil
}

// Dest returns the TCP destination address, or nil for UNKNOWN.
func (h HeaderV1) Dest() net.Addr {
	switch a := h.Addrs.(type) {
	case IPv4Pair:
		return net.TCPAddrFromAddrPort(a.Dest())
	case IPv6Pair:
		return net.TCPAddrFromAddrPort(a.Dest())
	}
	return nil
}

// FromConn will populate header data from the given net.Conn.
//
// The RemoteAddr of the Conn is used as the source address/port and the
// LocalAddr of the Conn as the destination address/port.
func (h *HeaderV1) FromConn(c net.Conn) error {
	local, ok := c.LocalAddr().(*net.TCPAddr)
	if !ok {
		return errors.New("proxyproto: unsupported local address type")
	}
	remote, ok := c.RemoteAddr().(*net.TCPAddr)
	if !ok {
		return errors.New("proxyproto: unsupported remote address type")
	}
	src := remote.AddrPort()
	dest := local.AddrPort()
	if src.Addr().Unmap().Is4() && dest.Addr().Unmap().Is4() {
		h.Addrs = IPv4Pair{
			SrcIP:    src.Addr().Unmap().As4(),
			DestIP:   dest.Addr().Unmap().As4(),
			SrcPort:  src.Port(),
			DestPort: dest.Port(),
		}
	} else {
		h.Addrs = IPv6Pair{
			SrcIP:    src.Addr().As16(),
			DestIP:   dest.Addr().As16(),
			SrcPort:  src.Port(),
			DestPort: dest.Port(),
		}
	}
	return nil
}

// WriteTo writes the canonical text form of the header to w in a single
// write. Addresses other than IPv4Pair or IPv6Pair render as UNKNOWN.
func (h HeaderV1) WriteTo(w io.Writer) (int64, error) {
	buf := make([]byte, 0, maxV1Len+1)
	buf = append(buf, v1Prefix...)
	buf = append(buf, separator)
	buf = append(buf, string(h.Protocol())...)
	switch a := h.Addrs.(type) {
	case IPv4Pair:
		buf = appendV1Addrs(buf, a.Src(), a.Dest())
	case IPv6Pair:
		buf = appendV1Addrs(buf, a.Src(), a.Dest())
	}
	buf = append(buf, crlf...)

	n, err := w.Write(buf)
	return int64(n), err
}

func appendV1Addrs(buf []byte, src, dest netip.AddrPort) []byte {
	buf = append(buf, separator)
	buf = src.Addr().AppendTo(buf)
	buf = append(buf, separator)
	buf = dest.Addr().AppendTo(buf)
	buf = append(buf, separator)
	buf = strconv.AppendUint(buf, uint64(src.Port()), 10)
	buf = append(buf, separator)
	buf = strconv.AppendUint(buf, uint64(dest.Port()), 10)
	return buf
}

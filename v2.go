package proxyproto

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"net"
	"net/netip"
)

// v2 fixed header: 12 signature bytes, version/command, family/protocol,
// and the 16-bit length of everything that follows.
const v2FixedLen = 16

// HeaderV2 contains information relayed by the PROXY protocol version 2
// (binary) header.
//
// Unlike HeaderV1, a decoded HeaderV2 owns all of its data: TLV values are
// copied out of the input buffer and may outlive it. Addrs is one of
// IPv4Pair, IPv6Pair, UnixPair, or nil for AF_UNSPEC.
type HeaderV2 struct {
	Command Command
	Family  AddrFamily
	Proto   Proto
	Addrs   Addrs
	TLVs    []TLV
}

// ParseV2 decodes exactly one version 2 binary header from the front of buf,
// returning the header and the number of bytes it occupies. Bytes past the
// declared length are not part of the header and are not inspected.
//
// IncompleteError and PartialError indicate a truncated read; the caller may
// retry after reading more bytes. Any other error means buf does not carry a
// valid v2 header.
func ParseV2(buf []byte) (*HeaderV2, int, error) {
	if len(buf) < v2FixedLen {
		return nil, 0, &IncompleteError{Len: len(buf)}
	}
	if !bytes.Equal(buf[:len(sigV2)], sigV2) {
		return nil, 0, ErrSignature
	}

	verCmd := buf[12]
	if verCmd>>4 != 2 {
		return nil, 0, &VersionError{Byte: verCmd}
	}
	h := &HeaderV2{Command: Command(verCmd & 0xf)}
	if h.Command > CommandProxy {
		return nil, 0, &CommandError{Byte: verCmd}
	}

	famProto := buf[13]
	h.Family = AddrFamily(famProto >> 4)
	if h.Family > AddrFamilyUnix {
		return nil, 0, &AddressFamilyError{Byte: famProto}
	}
	h.Proto = Proto(famProto & 0xf)
	if h.Proto > ProtoDGram {
		return nil, 0, &ProtocolError{Byte: famProto}
	}

	declared := int(binary.BigEndian.Uint16(buf[14:16]))
	rest := buf[v2FixedLen:]
	if len(rest) < declared {
		return nil, 0, &PartialError{Available: len(rest), Declared: declared}
	}
	rest = rest[:declared]

	required := addrLen(h.Family)
	if declared < required {
		return nil, 0, &AddressesError{Declared: declared, Required: required}
	}

	switch h.Family {
	case AddrFamilyInet:
		h.Addrs = IPv4Pair{
			SrcIP:    [4]byte(rest[0:4]),
			DestIP:   [4]byte(rest[4:8]),
			SrcPort:  binary.BigEndian.Uint16(rest[8:10]),
			DestPort: binary.BigEndian.Uint16(rest[10:12]),
		}
	case AddrFamilyInet6:
		h.Addrs = IPv6Pair{
			SrcIP:    [16]byte(rest[0:16]),
			DestIP:   [16]byte(rest[16:32]),
			SrcPort:  binary.BigEndian.Uint16(rest[32:34]),
			DestPort: binary.BigEndian.Uint16(rest[34:36]),
		}
	case AddrFamilyUnix:
		h.Addrs = UnixPair{
			Src:  [108]byte(rest[0:108]),
			Dest: [108]byte(rest[108:216]),
		}
	}

	tlvs, err := ParseTLVs(rest[required:])
	if err != nil {
		return nil, 0, err
	}
	h.TLVs = tlvs
	return h, v2FixedLen + declared, nil
}

// Version always returns 2.
func (HeaderV2) Version() int { return 2 }

// Src returns the source address as TCP, UDP, or Unix depending on Proto and
// Family, or nil when either is unspecified.
func (h HeaderV2) Src() net.Addr {
	switch a := h.Addrs.(type) {
	case IPv4Pair:
		return ipAddr(h.Proto, a.Src())
	case IPv6Pair:
		return ipAddr(h.Proto, a.Src())
	case UnixPair:
		return unixAddr(h.Proto, a.SrcName())
	}
	return nil
}

// Dest returns the destination address as TCP, UDP, or Unix depending on
// Proto and Family, or nil when either is unspecified.
func (h HeaderV2) Dest() net.Addr {
	switch a := h.Addrs.(type) {
	case IPv4Pair:
		return ipAddr(h.Proto, a.Dest())
	case IPv6Pair:
		return ipAddr(h.Proto, a.Dest())
	case UnixPair:
		return unixAddr(h.Proto, a.DestName())
	}
	return nil
}

func ipAddr(p Proto, ap netip.AddrPort) net.Addr {
	switch p {
	case ProtoStream:
		return net.TCPAddrFromAddrPort(ap)
	case ProtoDGram:
		return net.UDPAddrFromAddrPort(ap)
	}
	return nil
}

func unixAddr(p Proto, name string) net.Addr {
	switch p {
	case ProtoStream:
		return &net.UnixAddr{Net: "unix", Name: name}
	case ProtoDGram:
		return &net.UnixAddr{Net: "unixgram", Name: name}
	}
	return nil
}

// FromConn will populate header data from the given net.Conn.
//
// The RemoteAddr of the Conn is used as the source address/port and the
// LocalAddr of the Conn as the destination address/port.
func (h *HeaderV2) FromConn(c net.Conn) error {
	h.Command = CommandProxy
	switch local := c.LocalAddr().(type) {
	case *net.TCPAddr:
		h.Proto = ProtoStream
		return h.fromIP(c.RemoteAddr().(*net.TCPAddr).AddrPort(), local.AddrPort())
	case *net.UDPAddr:
		h.Proto = ProtoDGram
		return h.fromIP(c.RemoteAddr().(*net.UDPAddr).AddrPort(), local.AddrPort())
	case *net.UnixAddr:
		switch local.Net {
		case "unix":
			h.Proto = ProtoStream
		case "unixgram":
			h.Proto = ProtoDGram
		default:
			return errors.New("proxyproto: unknown unix network")
		}
		remote, ok := c.RemoteAddr().(*net.UnixAddr)
		if !ok || len(remote.Name) > 108 || len(local.Name) > 108 {
			return errors.New("proxyproto: unsupported remote address type")
		}
		h.Family = AddrFamilyUnix
		var pair UnixPair
		copy(pair.Src[:], remote.Name)
		copy(pair.Dest[:], local.Name)
		h.Addrs = pair
		return nil
	}
	return errors.New("proxyproto: unsupported local address type")
}

func (h *HeaderV2) fromIP(src, dest netip.AddrPort) error {
	if src.Addr().Unmap().Is4() && dest.Addr().Unmap().Is4() {
		h.Family = AddrFamilyInet
		h.Addrs = IPv4Pair{
			SrcIP:    src.Addr().Unmap().As4(),
			DestIP:   dest.Addr().Unmap().As4(),
			SrcPort:  src.Port(),
			DestPort: dest.Port(),
		}
		return nil
	}
	h.Family = AddrFamilyInet6
	h.Addrs = IPv6Pair{
		SrcIP:    src.Addr().As16(),
		DestIP:   dest.Addr().As16(),
		SrcPort:  src.Port(),
		DestPort: dest.Port(),
	}
	return nil
}

// WriteTo writes the binary form of the header to w in a single write. The
// Addrs variant must match Family, and the address block plus TLVs must fit
// the 16-bit length field.
func (h HeaderV2) WriteTo(w io.Writer) (int64, error) {
	blockLen := addrLen(h.Family)
	declared := blockLen
	for _, tlv := range h.TLVs {
		if len(tlv.Value) > 0xffff {
			return 0, errors.New("proxyproto: TLV value too long")
		}
		declared += 3 + len(tlv.Value)
	}
	if declared > 0xffff {
		return 0, errors.New("proxyproto: header too long")
	}

	buf := make([]byte, 0, v2FixedLen+declared)
	buf = append(buf, sigV2...)
	buf = append(buf, 2<<4|byte(h.Command)&0xf, byte(h.Family)<<4|byte(h.Proto)&0xf)
	buf = binary.BigEndian.AppendUint16(buf, uint16(declared))

	switch a := h.Addrs.(type) {
	case IPv4Pair:
		if h.Family != AddrFamilyInet {
			return 0, errors.New("proxyproto: address family mismatch")
		}
		buf = append(buf, a.SrcIP[:]...)
		buf = append(buf, a.DestIP[:]...)
		buf = binary.BigEndian.AppendUint16(buf, a.SrcPort)
		buf = binary.BigEndian.AppendUint16(buf, a.DestPort)
	case IPv6Pair:
		if h.Family != AddrFamilyInet6 {
			return 0, errors.New("proxyproto: address family mismatch")
		}
		buf = append(buf, a.SrcIP[:]...)
		buf = append(buf, a.DestIP[:]...)
		buf = binary.BigEndian.AppendUint16(buf, a.SrcPort)
		buf = binary.BigEndian.AppendUint16(buf, a.DestPort)
	case UnixPair:
		if h.Family != AddrFamilyUnix {
			return 0, errors.New("proxyproto: address family mismatch")
		}
		buf = append(buf, a.Src[:]...)
		buf = append(buf, a.Dest[:]...)
	case nil:
		if h.Family != AddrFamilyUnspec {
			return 0, errors.New("proxyproto: address family mismatch")
		}
	}

	for _, tlv := range h.TLVs {
		buf = append(buf, byte(tlv.Type))
		buf = binary.BigEndian.AppendUint16(buf, uint16(len(tlv.Value)))
		buf = append(buf, tlv.Value...)
	}

	n, err := w.Write(buf)
	return int64(n), err
}

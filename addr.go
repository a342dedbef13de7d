package proxyproto

import (
	"net/netip"
	"strings"
)

// Addrs is the address block of a header: one of IPv4Pair, IPv6Pair, or
// UnixPair. A nil Addrs means the peer addresses are unknown (v1 UNKNOWN)
// or unspecified (v2 AF_UNSPEC).
type Addrs interface {
	family() AddrFamily
}

// IPv4Pair holds the source and destination IPv4 addresses and ports of a header.
type IPv4Pair struct {
	SrcIP    [4]byte
	DestIP   [4]byte
	SrcPort  uint16
	DestPort uint16
}

func (IPv4Pair) family() AddrFamily { return AddrFamilyInet }

// Src returns the source address and port.
func (p IPv4Pair) Src() netip.AddrPort {
	return netip.AddrPortFrom(netip.AddrFrom4(p.SrcIP), p.SrcPort)
}

// Dest returns the destination address and port.
func (p IPv4Pair) Dest() netip.AddrPort {
	return netip.AddrPortFrom(netip.AddrFrom4(p.DestIP), p.DestPort)
}

// IPv6Pair holds the source and destination IPv6 addresses and ports of a header.
type IPv6Pair struct {
	SrcIP    [16]byte
	DestIP   [16]byte
	SrcPort  uint16
	DestPort uint16
}

func (IPv6Pair) family() AddrFamily { return AddrFamilyInet6 }

// Src returns the source address and port.
func (p IPv6Pair) Src() netip.AddrPort {
	return netip.AddrPortFrom(netip.AddrFrom16(p.SrcIP), p.SrcPort)
}

// Dest returns the destination address and port.
func (p IPv6Pair) Dest() netip.AddrPort {
	return netip.AddrPortFrom(netip.AddrFrom16(p.DestIP), p.DestPort)
}

// UnixPair holds the source and destination unix socket paths of a version 2
// header. Paths are kept as the raw 108-byte NUL-padded blocks from the wire;
// they are not required to be NUL-terminated text.
type UnixPair struct {
	Src  [108]byte
	Dest [108]byte
}

func (UnixPair) family() AddrFamily { return AddrFamilyUnix }

// SrcName returns the source path with trailing NUL padding removed.
func (p UnixPair) SrcName() string {
	return strings.TrimRight(string(p.Src[:]), "\x00")
}

// DestName returns the destination path with trailing NUL padding removed.
func (p UnixPair) DestName() string {
	return strings.TrimRight(string(p.Dest[:]), "\x00")
}

// addrLen returns the wire size of the version 2 address block for a family.
func addrLen(f AddrFamily) int {
	switch f {
	case AddrFamilyInet:
		return 12
	case AddrFamilyInet6:
		return 36
	case AddrFamilyUnix:
		return 216
	}
	return 0
}

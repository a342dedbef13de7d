package proxyproto

// AddrFamily is the address family nibble of a version 2 header. It fixes
// the size and layout of the address block that follows the fixed header.
// https://www.haproxy.org/download/1.8/doc/proxy-protocol.txt
type AddrFamily byte

const (
	// AddrFamilyUnspec carries no address block; the sender either does not
	// know the original endpoints or cannot express them.
	AddrFamilyUnspec AddrFamily = 0x00

	// AddrFamilyInet carries a 12-byte AF_INET (IPv4) address block.
	AddrFamilyInet AddrFamily = 0x01

	// AddrFamilyInet6 carries a 36-byte AF_INET6 (IPv6) address block.
	AddrFamilyInet6 AddrFamily = 0x02

	// AddrFamilyUnix carries a 216-byte AF_UNIX address block of two
	// NUL-padded socket paths.
	AddrFamilyUnix AddrFamily = 0x03
)

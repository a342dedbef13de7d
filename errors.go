package proxyproto

import (
	"errors"
	"fmt"
)

// Version 1 parse failures. Each is a distinct sentinel so callers can
// branch with errors.Is.
var (
	// ErrInvalidPrefix is returned when the header does not start with "PROXY".
	ErrInvalidPrefix = errors.New("proxyproto: header must start with \"PROXY\"")

	// ErrMissingSeparator is returned when a required space between tokens is absent.
	ErrMissingSeparator = errors.New("proxyproto: missing separator between header tokens")

	// ErrInvalidProtocol is returned when the protocol token is not one of
	// TCP4, TCP6 or UNKNOWN. Matching is case sensitive.
	ErrInvalidProtocol = errors.New("proxyproto: protocol must be one of TCP4, TCP6, or UNKNOWN")

	// ErrInvalidAddress is returned when an address token is not a valid IP
	// literal of the declared protocol.
	ErrInvalidAddress = errors.New("proxyproto: invalid IP address literal")

	// ErrInvalidPort is returned when a port token is not a decimal integer
	// in 0-65535 without redundant leading zeros.
	ErrInvalidPort = errors.New("proxyproto: invalid port number")

	// ErrMissingCRLF is returned when the header line is not terminated by
	// "\r\n" immediately after the last token.
	ErrMissingCRLF = errors.New("proxyproto: header must end with \"\\r\\n\"")
)

// ErrSignature is returned when the first 12 bytes of a version 2 header do
// not match the protocol signature.
var ErrSignature = errors.New("proxyproto: header must start with the signature \"\\r\\n\\r\\n\\x00\\r\\nQUIT\\n\"")

// IncompleteError is returned when buf holds fewer bytes than a version 2
// fixed header; reading more and retrying may succeed.
type IncompleteError struct {
	Len int
}

func (e *IncompleteError) Error() string {
	return fmt.Sprintf("proxyproto: need at least 16 bytes to decode a v2 header, have %d", e.Len)
}

// VersionError is returned when the version nibble is not 2. Byte is the
// full version/command byte.
type VersionError struct {
	Byte byte
}

func (e *VersionError) Error() string {
	return fmt.Sprintf("proxyproto: version in byte %#02x must be 2", e.Byte)
}

// CommandError is returned when the command nibble is not LOCAL or PROXY.
// Byte is the full version/command byte.
type CommandError struct {
	Byte byte
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("proxyproto: command in byte %#02x must be LOCAL or PROXY", e.Byte)
}

// AddressFamilyError is returned when the address family nibble is
// unrecognized. Byte is the full family/protocol byte.
type AddressFamilyError struct {
	Byte byte
}

func (e *AddressFamilyError) Error() string {
	return fmt.Sprintf("proxyproto: address family in byte %#02x must be UNSPEC, INET, INET6, or UNIX", e.Byte)
}

// ProtocolError is returned when the transport protocol nibble is
// unrecognized. Byte is the full family/protocol byte.
type ProtocolError struct {
	Byte byte
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("proxyproto: protocol in byte %#02x must be UNSPEC, STREAM, or DGRAM", e.Byte)
}

// PartialError is returned when buf holds fewer bytes after the fixed header
// than the declared length; reading more and retrying may succeed.
type PartialError struct {
	Available int
	Declared  int
}

func (e *PartialError) Error() string {
	return fmt.Sprintf("proxyproto: header declares %d bytes of addresses and TLVs, have %d", e.Declared, e.Available)
}

// AddressesError is returned when the declared length cannot hold the
// address block required by the address family.
type AddressesError struct {
	Declared int
	Required int
}

func (e *AddressesError) Error() string {
	return fmt.Sprintf("proxyproto: declared length of %d bytes cannot store the %d byte address block", e.Declared, e.Required)
}

// TLVError is returned when a TLV record's declared length runs past the end
// of the header's declared region.
type TLVError struct {
	Type PP2Type
	Len  uint16
}

func (e *TLVError) Error() string {
	return fmt.Sprintf("proxyproto: header is not long enough to contain TLV %#02x with length %d", byte(e.Type), e.Len)
}

// LeftoversError is returned when the declared region is not exactly covered
// by the address block and whole TLV records.
type LeftoversError struct {
	Count int
}

func (e *LeftoversError) Error() string {
	return fmt.Sprintf("proxyproto: header contains %d leftover bytes not covered by the address block or TLVs", e.Count)
}

package proxyproto

// Proto is the transport protocol nibble of a version 2 header.
type Proto byte

const (
	// ProtoUnspec is sent when the transport is unknown or unsupported; the
	// receiver must not interpret the address block.
	ProtoUnspec Proto = 0x00

	// ProtoStream is a byte-stream transport: TCP or SOCK_STREAM unix sockets.
	ProtoStream Proto = 0x01

	// ProtoDGram is a datagram transport: UDP or SOCK_DGRAM unix sockets.
	ProtoDGram Proto = 0x02
)

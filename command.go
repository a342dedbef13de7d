package proxyproto

// Command is the command nibble of a version 2 header.
type Command byte

const (
	// CommandLocal marks a connection the proxy opened for itself, such as
	// a health check; any address block is to be ignored.
	CommandLocal Command = 0x00

	// CommandProxy marks a relayed connection whose header carries the
	// original client's endpoints.
	CommandProxy Command = 0x01
)

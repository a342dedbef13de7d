package proxyproto

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseV1(t *testing.T) {
	check := func(name, input string, exp Addrs, expN int) {
		t.Helper()
		h, n, err := ParseV1([]byte(input))
		assert.NoError(t, err, name)
		assert.Equal(t, exp, h.Addrs, name)
		assert.Equal(t, expN, n, name)
		assert.Equal(t, input[:expN], string(h.Raw), name)
	}
	checkErr := func(name, input string, exp error) {
		t.Helper()
		_, _, err := ParseV1([]byte(input))
		assert.ErrorIs(t, err, exp, name)
	}

	check("unknown", "PROXY UNKNOWN\r\n", nil, 15)
	check("unknown-tail", "PROXY UNKNOWN ffff::ffff ffff::ffff 65535 65535\r\n", nil, 49)
	check("unknown-no-separator", "PROXYUNKNOWN\r\n", nil, 14)
	check("unknown-next-line", "PROXY UNKNOWN\r\nGET / HTTP/1.1\r\n", nil, 15)
	check("tcp4", "PROXY TCP4 127.0.1.2 192.168.1.101 80 443\r\n", IPv4Pair{
		SrcIP:    [4]byte{127, 0, 1, 2},
		DestIP:   [4]byte{192, 168, 1, 101},
		SrcPort:  80,
		DestPort: 443,
	}, 43)
	check("tcp4-next-line", "PROXY TCP4 127.0.1.2 192.168.1.101 80 443\r\nhello", IPv4Pair{
		SrcIP:    [4]byte{127, 0, 1, 2},
		DestIP:   [4]byte{192, 168, 1, 101},
		SrcPort:  80,
		DestPort: 443,
	}, 43)
	check("tcp6",
		"PROXY TCP6 1234:5678:90ab:cdef:fedc:ba09:8765:4321 4321:8765:ba09:fedc:cdef:90ab:5678:1234 443 65535\r\n",
		IPv6Pair{
			SrcIP:    [16]byte{0x12, 0x34, 0x56, 0x78, 0x90, 0xab, 0xcd, 0xef, 0xfe, 0xdc, 0xba, 0x09, 0x87, 0x65, 0x43, 0x21},
			DestIP:   [16]byte{0x43, 0x21, 0x87, 0x65, 0xba, 0x09, 0xfe, 0xdc, 0xcd, 0xef, 0x90, 0xab, 0x56, 0x78, 0x12, 0x34},
			SrcPort:  443,
			DestPort: 65535,
		}, 102)
	check("port-zero", "PROXY TCP4 1.2.3.4 5.6.7.8 0 0\r\n", IPv4Pair{
		SrcIP:  [4]byte{1, 2, 3, 4},
		DestIP: [4]byte{5, 6, 7, 8},
	}, 32)

	checkErr("empty", "", ErrInvalidPrefix)
	checkErr("no-prefix", "TCP4 1.2.3.4 5.6.7.8 80 443\r\n", ErrInvalidPrefix)
	checkErr("lowercase-prefix", "proxy UNKNOWN\r\n", ErrInvalidPrefix)
	checkErr("lowercase-protocol", "PROXY tcp4\r\n", ErrInvalidProtocol)
	checkErr("bad-protocol", "PROXY TCP5 1.2.3.4 5.6.7.8 80 443\r\n", ErrInvalidProtocol)
	checkErr("no-protocol", "PROXY\r\n", ErrMissingSeparator)
	checkErr("no-crlf", "PROXY TCP4 1.2.3.4 5.6.7.8 80 443", ErrMissingCRLF)
	checkErr("lf-only", "PROXY UNKNOWN\n", ErrMissingCRLF)
	checkErr("too-long", "PROXY UNKNOWN "+string(bytes.Repeat([]byte{'x'}, 100))+"\r\n", ErrMissingCRLF)
	checkErr("missing-port", "PROXY TCP4 1.2.3.4 5.6.7.8 80\r\n", ErrMissingSeparator)
	checkErr("trailing-garbage", "PROXY TCP4 1.2.3.4 5.6.7.8 80 443 extra\r\n", ErrMissingCRLF)
	checkErr("v6-in-v4", "PROXY TCP4 ::1 5.6.7.8 80 443\r\n", ErrInvalidAddress)
	checkErr("v4-in-v6", "PROXY TCP6 1.2.3.4 ::2 80 443\r\n", ErrInvalidAddress)
	checkErr("bad-address", "PROXY TCP4 1.2.3.4.5 5.6.7.8 80 443\r\n", ErrInvalidAddress)
	checkErr("zone", "PROXY TCP6 fe80::1%eth0 ::2 80 443\r\n", ErrInvalidAddress)
	checkErr("double-space", "PROXY TCP4 1.2.3.4  5.6.7.8 80 443\r\n", ErrMissingCRLF)
	checkErr("leading-zero-port", "PROXY TCP4 1.2.3.4 5.6.7.8 080 443\r\n", ErrInvalidPort)
	checkErr("port-overflow", "PROXY TCP4 1.2.3.4 5.6.7.8 80 65536\r\n", ErrInvalidPort)
	checkErr("negative-port", "PROXY TCP4 1.2.3.4 5.6.7.8 -80 443\r\n", ErrInvalidPort)
}

func TestHeaderV1_Accessors(t *testing.T) {
	check := func(name, input string, proto V1Proto, addrs string) {
		t.Helper()
		h, _, err := ParseV1([]byte(input))
		assert.NoError(t, err, name)
		assert.Equal(t, proto, h.Protocol(), name)
		assert.Equal(t, addrs, h.Addresses(), name)
		// accessors are idempotent
		assert.Equal(t, proto, h.Protocol(), name)
		assert.Equal(t, addrs, h.Addresses(), name)
	}

	check("unknown", "PROXY UNKNOWN\r\n", V1ProtoUnknown, "")
	check("unknown-tail", "PROXY UNKNOWN not validated\r\n", V1ProtoUnknown, "not validated")
	check("unknown-no-separator", "PROXYUNKNOWN\r\n", V1ProtoUnknown, "")
	check("tcp4", "PROXY TCP4 127.0.1.2 192.168.1.101 80 443\r\n",
		V1ProtoTCP4, "127.0.1.2 192.168.1.101 80 443")
	check("tcp6",
		"PROXY TCP6 1234:5678:90ab:cdef:fedc:ba09:8765:4321 4321:8765:ba09:fedc:cdef:90ab:5678:1234 443 65535\r\n",
		V1ProtoTCP6, "1234:5678:90ab:cdef:fedc:ba09:8765:4321 4321:8765:ba09:fedc:cdef:90ab:5678:1234 443 65535")
}

func TestHeaderV1_WriteTo(t *testing.T) {
	check := func(name string, hdr HeaderV1, exp string) {
		t.Helper()
		buf := new(bytes.Buffer)
		n, err := hdr.WriteTo(buf)
		assert.NoError(t, err, name)
		assert.Equal(t, exp, buf.String(), name)
		assert.Equal(t, int64(len(exp)), n, name)
	}

	check("blank", HeaderV1{}, "PROXY UNKNOWN\r\n")
	check("ipv4", HeaderV1{Addrs: IPv4Pair{
		SrcIP:    [4]byte{192, 168, 0, 1},
		DestIP:   [4]byte{192, 168, 0, 2},
		SrcPort:  1234,
		DestPort: 5678,
	}},
		"PROXY TCP4 192.168.0.1 192.168.0.2 1234 5678\r\n",
	)
	check("ipv6", HeaderV1{Addrs: IPv6Pair{
		SrcIP:    [16]byte{0x20, 0x01, 0x0d, 0xb8, 0x85, 0xa3, 0, 0, 0, 0, 0x8a, 0x2e, 0x03, 0x70, 0x73, 0x34},
		DestIP:   [16]byte{0x20, 0x02, 0x0d, 0xb8, 0x85, 0xa3, 0, 0, 0, 0, 0x8a, 0x2e, 0x03, 0x70, 0x73, 0x34},
		SrcPort:  1234,
		DestPort: 5678,
	}},
		"PROXY TCP6 2001:db8:85a3::8a2e:370:7334 2002:db8:85a3::8a2e:370:7334 1234 5678\r\n",
	)
	check("unix-falls-back", HeaderV1{Addrs: UnixPair{}}, "PROXY UNKNOWN\r\n")
}

func TestHeaderV1_RoundTrip(t *testing.T) {
	check := func(name string, addrs Addrs) {
		t.Helper()
		var buf bytes.Buffer
		_, err := HeaderV1{Addrs: addrs}.WriteTo(&buf)
		assert.NoError(t, err, name)
		h, n, err := ParseV1(buf.Bytes())
		assert.NoError(t, err, name)
		assert.Equal(t, addrs, h.Addrs, name)
		assert.Equal(t, buf.Len(), n, name)
	}

	check("unknown", nil)
	check("ipv4", IPv4Pair{
		SrcIP:    [4]byte{10, 0, 0, 1},
		DestIP:   [4]byte{10, 0, 0, 2},
		SrcPort:  56324,
		DestPort: 443,
	})
	check("ipv6", IPv6Pair{
		SrcIP:    [16]byte{0xfe, 0x80, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 1},
		DestIP:   [16]byte{0xfe, 0x80, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 2},
		SrcPort:  1,
		DestPort: 65535,
	})
}

package proxyproto

import (
	"encoding/binary"
	"errors"
	"io"
)

// TLV is a single Type-Length-Value extension record of a version 2 header.
type TLV struct {
	Type  PP2Type
	Value []byte
}

// PP2Type identifies a TLV record type.
type PP2Type byte

const (
	PP2TypeALPN      PP2Type = 0x01
	PP2TypeAuthority PP2Type = 0x02
	PP2TypeCRC32C    PP2Type = 0x03
	PP2TypeNOOP      PP2Type = 0x04
	PP2TypeUniqueID  PP2Type = 0x05
	PP2TypeSSL       PP2Type = 0x20
	PP2TypeNetNS     PP2Type = 0x30

	PP2SubTypeSSLVersion PP2Type = 0x21
	PP2SubTypeSSLCN      PP2Type = 0x22
	PP2SubTypeSSLCipher  PP2Type = 0x23
	PP2SubTypeSSLSigAlg  PP2Type = 0x24
	PP2SubTypeSSLKeyAlg  PP2Type = 0x25

	// Ranges reserved for application, experimental, and future use.
	PP2TypeMinCustom     PP2Type = 0xE0
	PP2TypeMaxCustom     PP2Type = 0xEF
	PP2TypeMinExperiment PP2Type = 0xF0
	PP2TypeMaxExperiment PP2Type = 0xF7
	PP2TypeMinFuture     PP2Type = 0xF8
	PP2TypeMaxFuture     PP2Type = 0xFF
)

// Registered is true if the type is registered in the protocol spec.
func (p PP2Type) Registered() bool {
	switch p {
	case PP2TypeALPN, PP2TypeAuthority, PP2TypeCRC32C, PP2TypeNOOP,
		PP2TypeUniqueID, PP2TypeSSL, PP2SubTypeSSLVersion, PP2SubTypeSSLCN,
		PP2SubTypeSSLCipher, PP2SubTypeSSLSigAlg, PP2SubTypeSSLKeyAlg,
		PP2TypeNetNS:
		return true
	}
	return false
}

// App is true if the type is reserved for application-specific data.
func (p PP2Type) App() bool { return p >= PP2TypeMinCustom && p <= PP2TypeMaxCustom }

// Experiment is true if the type is reserved for temporary experimental use.
func (p PP2Type) Experiment() bool { return p >= PP2TypeMinExperiment && p <= PP2TypeMaxExperiment }

// Future is true if the type is reserved for future use.
func (p PP2Type) Future() bool { return p >= PP2TypeMinFuture }

// Spec is true if the type is covered by the protocol spec, either
// registered or inside one of the reserved ranges.
func (p PP2Type) Spec() bool {
	return p.Registered() || p.App() || p.Experiment() || p.Future()
}

// ParseTLVs walks b as a sequence of TLV records, copying each value out of
// b. The records must cover b exactly: a record running past the end of b
// fails with TLVError, and trailing bytes too short to hold a record header
// fail with LeftoversError. An empty b yields no records.
func ParseTLVs(b []byte) ([]TLV, error) {
	var res []TLV
	for len(b) >= 3 {
		t := PP2Type(b[0])
		vlen := binary.BigEndian.Uint16(b[1:3])
		if int(vlen) > len(b)-3 {
			return nil, &TLVError{Type: t, Len: vlen}
		}
		var value []byte
		if vlen > 0 {
			value = make([]byte, vlen)
			copy(value, b[3:])
		}
		res = append(res, TLV{Type: t, Value: value})
		b = b[3+int(vlen):]
	}
	if len(b) > 0 {
		return nil, &LeftoversError{Count: len(b)}
	}
	return res, nil
}

// WriteTo writes the record to w as type, big-endian length, then value.
func (t TLV) WriteTo(w io.Writer) (int64, error) {
	if len(t.Value) > 0xffff {
		return 0, errors.New("proxyproto: TLV value too long")
	}

	var hdr [3]byte
	hdr[0] = byte(t.Type)
	binary.BigEndian.PutUint16(hdr[1:], uint16(len(t.Value)))

	n, err := w.Write(hdr[:])
	if err != nil {
		return int64(n), err
	}

	n, err = w.Write(t.Value)
	return int64(3 + n), err
}

// FindTLV is a convenience function to find the first value of a TLV
// in a Header.
func FindTLV(h Header, t PP2Type) (value []byte, has bool) {
	var tlvs []TLV
	switch h := h.(type) {
	case HeaderV2:
		tlvs = h.TLVs
	case *HeaderV2:
		tlvs = h.TLVs
	default:
		return nil, false
	}

	for _, tlv := range tlvs {
		if tlv.Type != t {
			continue
		}

		return tlv.Value, true
	}

	return nil, false
}

// Package rlp implements the encode side of Recursive Length Prefix.
package rlp

import "encoding/binary"

const (
	offsetShortString = 0x80
	offsetLongString  = 0xb7
	offsetShortList   = 0xc0
	offsetLongList    = 0xf7
	maxShortPayload   = 55
)

// EncodeUint encodes v as a minimal big-endian byte string. Zero is the
// empty string.
func EncodeUint(v uint64) []byte {
	switch {
	case v == 0:
		return []byte{offsetShortString}
	case v < offsetShortString:
		return []byte{byte(v)}
	}
	b := minimalBigEndian(v)
	out := make([]byte, 0, 1+len(b))
	out = append(out, offsetShortString+byte(len(b)))
	return append(out, b...)
}

// EncodeBytes encodes a byte string.
func EncodeBytes(data []byte) []byte {
	if len(data) == 1 && data[0] < offsetShortString {
		return []byte{data[0]}
	}
	return withPrefix(offsetShortString, offsetLongString, data)
}

// EncodeList wraps already-encoded items in a list header.
func EncodeList(items ...[]byte) []byte {
	size := 0
	for _, item := range items {
		size += len(item)
	}
	payload := make([]byte, 0, size)
	for _, item := range items {
		payload = append(payload, item...)
	}
	return withPrefix(offsetShortList, offsetLongList, payload)
}

// ListSize returns the encoded size of a list whose items encode to the given
// payload length.
func ListSize(payloadLen int) int {
	if payloadLen <= maxShortPayload {
		return 1 + payloadLen
	}
	return 1 + len(minimalBigEndian(uint64(payloadLen))) + payloadLen
}

func withPrefix(short, long byte, payload []byte) []byte {
	if len(payload) <= maxShortPayload {
		out := make([]byte, 0, 1+len(payload))
		out = append(out, short+byte(len(payload)))
		return append(out, payload...)
	}
	lenBytes := minimalBigEndian(uint64(len(payload)))
	out := make([]byte, 0, 1+len(lenBytes)+len(payload))
	out = append(out, long+byte(len(lenBytes)))
	out = append(out, lenBytes...)
	return append(out, payload...)
}

func minimalBigEndian(v uint64) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	i := 0
	for i < 7 && buf[i] == 0 {
		i++
	}
	return buf[i:]
}

package websocket

import (
	"bytes"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"math"

	"github.com/hornet-web/hornet/transport"
)

type Opcode uint8

const (
	OpContinuation Opcode = 0x0
	OpText         Opcode = 0x1
	OpBinary       Opcode = 0x2
	OpClose        Opcode = 0x8
	OpPing         Opcode = 0x9
	OpPong         Opcode = 0xA
)

// IsControl reports whether the opcode belongs to the control frames range (0x8-0xF).
func (o Opcode) IsControl() bool {
	return o&0x8 != 0
}

const (
	finBit         = 0x80
	maskBit        = 0x80
	opcodeBits     = 0x0f
	lengthBits     = 0x7f
	extLength16    = 126
	extLength64    = 127
	maskKeyLength  = 4
	maxShortLength = 125
)

// ErrPayloadTooLarge is returned when a frame declares a payload longer than allowed. The
// payload isn't read in this case, so the stream position can't be trusted anymore.
var ErrPayloadTooLarge = errors.New("websocket: declared payload length exceeds the limit")

// Frame is a single protocol unit. The payload is always unmasked.
type Frame struct {
	Fin     bool
	Opcode  Opcode
	Payload []byte
}

// ReadFrame reads exactly one frame from the client. Bytes read past the frame are pushed
// back, so frames sent back-to-back are decoded one by one. The declared length is checked
// before the payload is buffered.
func ReadFrame(client transport.Client, maxPayload uint64) (Frame, error) {
	var buff []byte

	fill := func(n int) error {
		for len(buff) < n {
			chunk, err := client.Read()
			if err != nil {
				return err
			}

			buff = append(buff, chunk...)
		}

		return nil
	}

	if err := fill(2); err != nil {
		return Frame{}, err
	}

	frame := Frame{
		Fin:    buff[0]&finBit != 0,
		Opcode: Opcode(buff[0] & opcodeBits),
	}
	masked := buff[1]&maskBit != 0
	length := uint64(buff[1] & lengthBits)
	offset := 2

	switch length {
	case extLength16:
		if err := fill(offset + 2); err != nil {
			return Frame{}, err
		}

		length = uint64(binary.BigEndian.Uint16(buff[offset:]))
		offset += 2
	case extLength64:
		if err := fill(offset + 8); err != nil {
			return Frame{}, err
		}

		length = binary.BigEndian.Uint64(buff[offset:])
		offset += 8
	}

	if length > maxPayload {
		return Frame{}, ErrPayloadTooLarge
	}

	var key [maskKeyLength]byte
	if masked {
		if err := fill(offset + maskKeyLength); err != nil {
			return Frame{}, err
		}

		copy(key[:], buff[offset:])
		offset += maskKeyLength
	}

	// the limit may be set as high as to mean "unlimited", yet the payload must be addressable
	if length > uint64(math.MaxInt-offset) {
		return Frame{}, ErrPayloadTooLarge
	}

	end := offset + int(length)
	if err := fill(end); err != nil {
		return Frame{}, err
	}

	frame.Payload = buff[offset:end:end]
	if masked {
		Mask(key, frame.Payload)
	}

	if end < len(buff) {
		client.Pushback(bytes.Clone(buff[end:]))
	}

	return frame, nil
}

// Build serializes an unmasked frame, as servers send them.
func Build(frame Frame) []byte {
	out := appendHeader(make([]byte, 0, 10+len(frame.Payload)), frame, false)
	return append(out, frame.Payload...)
}

// BuildMasked serializes a frame masked with a fresh random key, as clients send them. The
// payload of the passed frame stays untouched.
func BuildMasked(frame Frame) ([]byte, error) {
	var key [maskKeyLength]byte
	if _, err := rand.Read(key[:]); err != nil {
		return nil, err
	}

	out := appendHeader(make([]byte, 0, 14+len(frame.Payload)), frame, true)
	out = append(out, key[:]...)
	payloadStart := len(out)
	out = append(out, frame.Payload...)
	Mask(key, out[payloadStart:])

	return out, nil
}

// Mask XORs the data with the key in place. Applying it twice gives the data back.
func Mask(key [4]byte, data []byte) {
	for i := range data {
		data[i] ^= key[i%maskKeyLength]
	}
}

func appendHeader(out []byte, frame Frame, masked bool) []byte {
	first := byte(frame.Opcode) & opcodeBits
	if frame.Fin {
		first |= finBit
	}

	var mask byte
	if masked {
		mask = maskBit
	}

	switch length := len(frame.Payload); {
	case length <= maxShortLength:
		return append(out, first, mask|byte(length))
	case length <= 0xffff:
		out = append(out, first, mask|extLength16)
		return binary.BigEndian.AppendUint16(out, uint16(length))
	default:
		out = append(out, first, mask|extLength64)
		return binary.BigEndian.AppendUint64(out, uint64(length))
	}
}

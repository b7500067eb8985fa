package fwbus

import (
	"errors"
	"fmt"
)

// MaxPayload is the largest payload a single asynchronous transaction may
// carry through the channel abstraction.
const MaxPayload = 512

// A ConfigError reports a request that is malformed before any I/O has been
// attempted. It is always detected during encoding and never reaches the
// channel.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "invalid request: " + e.Reason
}

func configErrorf(format string, args ...any) error {
	return &ConfigError{Reason: fmt.Sprintf(format, args...)}
}

// quadletSized reports whether a transfer of the given length at the given
// offset may use the quadlet transaction form. Quadlet form requires both an
// exact 4-byte length and a 4-byte-aligned address; everything else must use
// the block form, including 4-byte transfers at unaligned addresses.
func quadletSized(offset uint64, length uint32) bool {
	return length == 4 && offset&3 == 0
}

// NewReadRequest encodes a read of length bytes at offset.
func NewReadRequest(offset uint64, length uint32) (*Request, error) {
	if length == 0 || length > MaxPayload {
		return nil, configErrorf("read length %d out of range", length)
	}

	tcode := uint32(TcodeReadBlockRequest)
	if quadletSized(offset, length) {
		tcode = TcodeReadQuadletRequest
	}

	return &Request{
		Kind:   KindRead,
		Tcode:  tcode,
		Offset: offset,
		Length: length,
	}, nil
}

// NewWriteRequest encodes a write of data at offset. The kind selects between
// an addressed write and a broadcast; both use the same wire encoding and
// differ only in how the channel dispatches them.
func NewWriteRequest(kind Kind, offset uint64, data []byte) (*Request, error) {
	if kind != KindWrite && kind != KindBroadcast {
		return nil, configErrorf("%s is not a write kind", kind)
	}
	if len(data) == 0 || len(data) > MaxPayload {
		return nil, configErrorf("write length %d out of range", len(data))
	}

	tcode := uint32(TcodeWriteBlockRequest)
	if quadletSized(offset, uint32(len(data))) {
		tcode = TcodeWriteQuadletRequest
	}

	return &Request{
		Kind:   kind,
		Tcode:  tcode,
		Offset: offset,
		Length: uint32(len(data)),
		Data:   append([]byte(nil), data...),
	}, nil
}

// NewLockRequest encodes an atomic lock transaction. Dual-operand kinds
// (mask-swap, compare-swap, bounded-add, wrap-add) carry the concatenation of
// both operands, first followed by second, and require both to have the same
// size. Single-operand kinds (fetch-add, little-endian add) send op1 alone
// and reject a second operand. Operands must be 32 or 64 bits wide.
func NewLockRequest(kind Kind, offset uint64, op1, op2 []byte) (*Request, error) {
	if !kind.IsLock() {
		return nil, configErrorf("%s is not a lock kind", kind)
	}
	if len(op1) != 4 && len(op1) != 8 {
		return nil, configErrorf("lock operand must be 32 or 64 bits, got %d bytes", len(op1))
	}

	payload := append([]byte(nil), op1...)
	if kind.HasSecondOperand() {
		if len(op2) != 4 && len(op2) != 8 {
			return nil, configErrorf("lock operand must be 32 or 64 bits, got %d bytes", len(op2))
		}
		if len(op1) != len(op2) {
			return nil, configErrorf("lock operands must have the same size, got %d and %d bytes",
				len(op1), len(op2))
		}
		payload = append(payload, op2...)
	} else if op2 != nil {
		return nil, configErrorf("%s takes a single operand", kind)
	}

	return &Request{
		Kind:   kind,
		Tcode:  kind.lockTcode(),
		Offset: offset,
		Length: uint32(len(payload)),
		Data:   payload,
	}, nil
}

// DecodeReply interprets a response event for the given request. The payload
// is returned raw; the caller decides whether to view it as a value.
func DecodeReply(req *Request, ev *ResponseReceived) (Result, error) {
	if ev.Status == StatusComplete && req.Kind == KindRead &&
		uint32(len(ev.Data)) > req.Length {
		return Result{}, errors.New("reply longer than requested")
	}
	return Result{Status: ev.Status, Data: ev.Data}, nil
}

package fwbus

import "fmt"

// Kind identifies the logical transaction type a caller wants to perform.
// The wire-level tcode is derived from the kind together with the payload
// length and address alignment; see the codec.
type Kind int

const (
	KindRead Kind = iota
	KindWrite
	KindBroadcast
	KindLockMaskSwap
	KindLockCompareSwap
	KindLockFetchAdd
	KindLockLittleAdd
	KindLockBoundedAdd
	KindLockWrapAdd
	KindPhyControl
)

// Wire-level transaction codes. The lock variants use the extended encoding
// of the kernel character-device ABI, which folds the lock extcode into the
// tcode value.
const (
	TcodeWriteQuadletRequest = 0x0
	TcodeWriteBlockRequest   = 0x1
	TcodeReadQuadletRequest  = 0x4
	TcodeReadBlockRequest    = 0x5
	TcodeLockMaskSwap        = 0x10
	TcodeLockCompareSwap     = 0x11
	TcodeLockFetchAdd        = 0x12
	TcodeLockLittleAdd       = 0x13
	TcodeLockBoundedAdd      = 0x14
	TcodeLockWrapAdd         = 0x15
)

func (k Kind) String() string {
	switch k {
	case KindRead:
		return "read"
	case KindWrite:
		return "write"
	case KindBroadcast:
		return "broadcast"
	case KindLockMaskSwap:
		return "mask_swap"
	case KindLockCompareSwap:
		return "compare_swap"
	case KindLockFetchAdd:
		return "fetch_add"
	case KindLockLittleAdd:
		return "little_add"
	case KindLockBoundedAdd:
		return "bounded_add"
	case KindLockWrapAdd:
		return "wrap_add"
	case KindPhyControl:
		return "phy_control"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// IsLock reports whether the kind is an atomic read-modify-write operation.
func (k Kind) IsLock() bool {
	switch k {
	case KindLockMaskSwap, KindLockCompareSwap, KindLockFetchAdd,
		KindLockLittleAdd, KindLockBoundedAdd, KindLockWrapAdd:
		return true
	}
	return false
}

// HasSecondOperand reports whether the lock kind carries two operands on the
// wire. Fetch-add and little-endian add send a single addend.
func (k Kind) HasSecondOperand() bool {
	switch k {
	case KindLockMaskSwap, KindLockCompareSwap, KindLockBoundedAdd,
		KindLockWrapAdd:
		return true
	}
	return false
}

func (k Kind) lockTcode() uint32 {
	switch k {
	case KindLockMaskSwap:
		return TcodeLockMaskSwap
	case KindLockCompareSwap:
		return TcodeLockCompareSwap
	case KindLockFetchAdd:
		return TcodeLockFetchAdd
	case KindLockLittleAdd:
		return TcodeLockLittleAdd
	case KindLockBoundedAdd:
		return TcodeLockBoundedAdd
	case KindLockWrapAdd:
		return TcodeLockWrapAdd
	default:
		panic("not a lock kind: " + k.String())
	}
}

// A Request is one fully encoded outbound transaction. Requests are built by
// the codec constructors and stamped with the current bus generation by the
// session immediately before each send attempt.
type Request struct {
	Kind       Kind
	Tcode      uint32
	Offset     uint64
	Length     uint32
	Data       []byte
	Generation uint32
}

// A Result is the terminal outcome of one transaction.
type Result struct {
	Status Status
	Data   []byte
}

// Value renders 4- and 8-byte payloads as a big-endian hexadecimal value.
// Other lengths have no single-value interpretation and return ok=false.
func (r Result) Value() (string, bool) {
	switch len(r.Data) {
	case 4:
		return fmt.Sprintf("%02x%02x%02x%02x",
			r.Data[0], r.Data[1], r.Data[2], r.Data[3]), true
	case 8:
		return fmt.Sprintf("%02x%02x%02x%02x%02x%02x%02x%02x",
			r.Data[0], r.Data[1], r.Data[2], r.Data[3],
			r.Data[4], r.Data[5], r.Data[6], r.Data[7]), true
	}
	return "", false
}

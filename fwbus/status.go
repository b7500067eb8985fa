package fwbus

import "fmt"

// Status is the outcome of a bus transaction. The values are the wire-level
// response codes of the bus protocol, extended with the pseudo codes the
// kernel driver reports for failures that never left the local node.
type Status uint32

const (
	StatusComplete           Status = 0x00
	StatusConflictError      Status = 0x04
	StatusDataError          Status = 0x05
	StatusTypeError          Status = 0x06
	StatusAddressError       Status = 0x07
	StatusSendError          Status = 0x10
	StatusCancelled          Status = 0x11
	StatusBusy               Status = 0x12
	StatusGenerationMismatch Status = 0x13
	StatusNoAck              Status = 0x14
)

func (s Status) String() string {
	switch s {
	case StatusComplete:
		return "complete"
	case StatusConflictError:
		return "conflict error"
	case StatusDataError:
		return "data error"
	case StatusTypeError:
		return "type error"
	case StatusAddressError:
		return "address error"
	case StatusSendError:
		return "send error"
	case StatusCancelled:
		return "cancelled"
	case StatusBusy:
		return "busy"
	case StatusGenerationMismatch:
		return "bus generation mismatch"
	case StatusNoAck:
		return "no ack"
	default:
		return fmt.Sprintf("unknown status %#x", uint32(s))
	}
}

// A StatusError wraps a non-Complete transaction status for code paths that
// cannot report the status as a value, such as the split-transaction
// exchange aborting on its outbound leg.
type StatusError struct {
	Status Status
}

func (e *StatusError) Error() string {
	return "transaction failed: " + e.Status.String()
}

package fwbus

import (
	"errors"
	"time"
)

// ResetKind selects between the two bus reset signalling forms.
type ResetKind int

const (
	ShortReset ResetKind = iota
	LongReset
)

// Errors a channel implementation reports when attaching to a node fails.
var (
	ErrNotFound           = errors.New("node not found")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrUnsupportedVersion = errors.New("channel ABI version not supported")
)

// Structural failures. These indicate a bug in the channel or its peer, not
// a bus condition, and abort the current operation without retry.
var (
	ErrMalformedEvent  = errors.New("malformed event frame")
	ErrUnexpectedEvent = errors.New("unexpected event type")
	ErrBusReset        = errors.New("bus reset")
)

// A TimeoutError is returned when the bounded wait is exhausted with the
// transaction still incomplete. It names the legs that were still missing so
// split exchanges can report which side went silent.
type TimeoutError struct {
	AwaitingAck      bool
	AwaitingResponse bool
}

func (e *TimeoutError) Error() string {
	switch {
	case e.AwaitingAck:
		return "timeout (no ack)"
	case e.AwaitingResponse:
		return "timeout (no response)"
	default:
		return "timeout"
	}
}

// BusInfo describes the bus position of an attached node at a point in time.
type BusInfo struct {
	NodeID      uint32
	LocalNodeID uint32
	RootNodeID  uint32
	Generation  uint32
	Card        uint32
}

// IsLocal reports whether the attached node is the local one. PHY control
// packets can only be sent through a local node.
func (i BusInfo) IsLocal() bool {
	return i.NodeID == i.LocalNodeID
}

// PhyID extracts the 6-bit PHY identifier from a node id.
func (i BusInfo) PhyID() uint32 {
	return i.NodeID & 0x3f
}

// RootPhyID extracts the PHY identifier of the current root node.
func (i BusInfo) RootPhyID() uint32 {
	return i.RootNodeID & 0x3f
}

// A Channel is a duplex transaction channel to one node on the bus. One
// channel belongs to exactly one session and carries at most one transaction
// at a time.
//
// Poll returns (nil, nil) when the timeout elapses with no event pending.
// A channel must deliver a SentAck for every accepted send and must keep
// delivering BusReset events at any time.
type Channel interface {
	Send(req *Request) error
	SendBroadcast(req *Request) error
	SendPhyPacket(quadlet0, quadlet1, generation uint32) error
	ReceivePhyPackets() error
	Allocate(offset uint64, length uint32) (handle uint32, err error)
	Respond(handle uint32, status Status) error
	Poll(timeout time.Duration) (Event, error)
	InitiateBusReset(kind ResetKind) error
	Close() error
}

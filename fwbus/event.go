package fwbus

// An Event is one item delivered by a channel poll. The concrete types below
// are the complete set a conforming channel may produce; anything else is a
// channel-level bug.
type Event interface {
	isEvent()
}

// SentAck reports that an earlier send has been put on the bus (or has
// failed locally). A PHY ping acknowledgment additionally carries the
// round-trip time in 24.576 MHz ticks.
type SentAck struct {
	Status       Status
	Timestamp    uint32
	HasTimestamp bool
}

// ResponseReceived carries the remote node's reply to an addressed
// transaction.
type ResponseReceived struct {
	Status Status
	Data   []byte
}

// RequestReceived is an inbound write hitting an address range this session
// has registered to serve. It must be answered through Channel.Respond or
// the remote side stalls.
type RequestReceived struct {
	Handle uint32
	Tcode  uint32
	Offset uint64
	Data   []byte
}

// PhyReplyReceived is an inbound PHY packet. Quadlet carries the primary
// quadlet; the check quadlet has already been consumed by the link layer.
type PhyReplyReceived struct {
	Quadlet uint32
	Length  int
}

// BusReset announces a topology reconfiguration. Every transaction in flight
// at the time of the reset carries a stale generation and will be rejected.
type BusReset struct {
	Generation  uint32
	NodeID      uint32
	LocalNodeID uint32
	RootNodeID  uint32
}

func (*SentAck) isEvent()          {}
func (*ResponseReceived) isEvent() {}
func (*RequestReceived) isEvent()  {}
func (*PhyReplyReceived) isEvent() {}
func (*BusReset) isEvent()         {}

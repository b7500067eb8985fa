package fwbus

import (
	"time"
)

// DefaultPollTimeout bounds each wait step of the multiplexer. The bound
// keeps a stuck transaction from wedging the caller and lets externally
// triggered bus resets surface promptly. Exhausting it is a failure, never a
// retry.
const DefaultPollTimeout = 123 * time.Millisecond

// MaxSelfIDQuadlets is the structural maximum length of a self-ID chain.
const MaxSelfIDQuadlets = 3

// EventMux drives a channel until the current transaction reaches a terminal
// state. The local "frame was put on the bus" acknowledgment and the remote
// response arrive as two independent, unordered events on the same channel;
// depending on the transaction kind the wait starts needing the ack only
// (fire-and-forget PHY packets), the response only (self-ID listening), or
// both (addressed data transactions), and ends once every required leg has
// been observed.
type EventMux struct {
	ch      Channel
	gen     *GenerationTracker
	timeout time.Duration
}

// NewEventMux creates a multiplexer over ch that stamps and tracks
// generations through gen. A non-positive timeout selects
// DefaultPollTimeout.
func NewEventMux(ch Channel, gen *GenerationTracker, timeout time.Duration) *EventMux {
	if timeout <= 0 {
		timeout = DefaultPollTimeout
	}
	return &EventMux{ch: ch, gen: gen, timeout: timeout}
}

// Transact sends an addressed read/write/broadcast/lock request and waits
// for its terminal outcome.
//
// A bus reset observed while waiting, or a generation-mismatch status in the
// response, triggers exactly one automatic resend with the updated
// generation. A second mismatch in the same invocation is surfaced as a
// GenerationMismatch result; the single-resend bound is a deliberate policy,
// an application wanting more attempts loops at its own level.
func (m *EventMux) Transact(req *Request) (Result, error) {
	retried := false
	for {
		req.Generation = m.gen.Current()

		var err error
		if req.Kind == KindBroadcast {
			err = m.ch.SendBroadcast(req)
		} else {
			err = m.ch.Send(req)
		}
		if err != nil {
			return Result{}, err
		}

		res, reset, err := m.awaitResult(req)
		if err != nil {
			return Result{}, err
		}
		if reset || res.Status == StatusGenerationMismatch {
			if retried {
				return Result{Status: StatusGenerationMismatch}, nil
			}
			retried = true
			continue
		}
		return res, nil
	}
}

// awaitResult waits for both legs of an addressed transaction. It returns
// reset=true when a bus reset interrupted the wait; the tracker has been
// updated and the request must be resent or abandoned by the caller.
func (m *EventMux) awaitResult(req *Request) (res Result, reset bool, err error) {
	needAck := true
	needResponse := true

	for needAck || needResponse {
		ev, err := m.ch.Poll(m.timeout)
		if err != nil {
			return Result{}, false, err
		}
		if ev == nil {
			return Result{}, false, &TimeoutError{
				AwaitingAck:      needAck,
				AwaitingResponse: needResponse,
			}
		}

		switch ev := ev.(type) {
		case *SentAck:
			if ev.Status != StatusComplete {
				return Result{Status: ev.Status}, false, nil
			}
			needAck = false
		case *ResponseReceived:
			res, err = DecodeReply(req, ev)
			if err != nil {
				return Result{}, false, err
			}
			needResponse = false
		case *BusReset:
			m.gen.ObserveReset(ev.Generation)
			return Result{}, true, nil
		default:
			return Result{}, false, ErrUnexpectedEvent
		}
	}

	return res, false, nil
}

// PhyWait describes what a PHY control send expects back. A zero
// ResponseMask is fire-and-forget: only the send acknowledgment is awaited.
// A reply quadlet is accepted when its echoed address and type fields match
// ResponseBits under ResponseMask.
type PhyWait struct {
	ResponseMask uint32
	ResponseBits uint32
}

// PhyOutcome is the terminal result of a PHY control exchange.
type PhyOutcome struct {
	Reply    uint32
	SelfIDs  []uint32
	PingTime uint32
	HasPing  bool
}

// SendPhyPacket transmits the quadlet and its bitwise complement and waits
// per w. A matched reply whose top two bits carry the self-ID signature
// starts chain accumulation: quadlets are collected while each one's "more
// follows" bit is set, up to MaxSelfIDQuadlets; a further quadlet at the
// maximum is ignored and the wait is forced terminal.
//
// PHY exchanges are one-shot diagnostics: a bus reset while waiting is fatal
// and never resent.
func (m *EventMux) SendPhyPacket(quadlet uint32, w PhyWait) (PhyOutcome, error) {
	return m.SendRawPhyPacket(quadlet, ^quadlet, w)
}

// SendRawPhyPacket transmits both quadlets exactly as given. It exists for
// packet formats that carry payload in the second quadlet instead of the
// integrity complement.
func (m *EventMux) SendRawPhyPacket(quadlet0, quadlet1 uint32, w PhyWait) (PhyOutcome, error) {
	err := m.ch.SendPhyPacket(quadlet0, quadlet1, m.gen.Current())
	if err != nil {
		return PhyOutcome{}, err
	}
	return m.awaitPhy(w)
}

func (m *EventMux) awaitPhy(w PhyWait) (PhyOutcome, error) {
	var out PhyOutcome
	needAck := true
	needResponse := w.ResponseMask != 0

	for needAck || needResponse {
		ev, err := m.ch.Poll(m.timeout)
		if err != nil {
			return out, err
		}
		if ev == nil {
			return out, &TimeoutError{
				AwaitingAck:      needAck,
				AwaitingResponse: needResponse,
			}
		}

		switch ev := ev.(type) {
		case *SentAck:
			if ev.Status != StatusComplete {
				return out, &StatusError{Status: ev.Status}
			}
			if ev.HasTimestamp {
				out.PingTime = ev.Timestamp
				out.HasPing = true
			}
			needAck = false
		case *PhyReplyReceived:
			q := ev.Quadlet
			if !needResponse || q&w.ResponseMask != w.ResponseBits {
				break
			}
			if q&0xc0000000 == 0x80000000 {
				if len(out.SelfIDs) < MaxSelfIDQuadlets {
					out.SelfIDs = append(out.SelfIDs, q)
				}
				if len(out.SelfIDs) >= MaxSelfIDQuadlets || q&1 == 0 {
					needResponse = false
				}
			} else {
				out.Reply = q
				needResponse = false
			}
		case *BusReset:
			m.gen.ObserveReset(ev.Generation)
			return out, ErrBusReset
		default:
			return out, ErrUnexpectedEvent
		}
	}

	return out, nil
}

// Collect runs the bounded poll loop, feeding every non-reset event to fn
// until fn reports completion. Bus resets update the generation tracker and
// abort with ErrBusReset: collection waits are one-shot diagnostics with no
// resend. A poll timeout aborts with a TimeoutError.
func (m *EventMux) Collect(fn func(Event) (done bool, err error)) error {
	for {
		ev, err := m.ch.Poll(m.timeout)
		if err != nil {
			return err
		}
		if ev == nil {
			return &TimeoutError{AwaitingResponse: true}
		}
		if reset, ok := ev.(*BusReset); ok {
			m.gen.ObserveReset(reset.Generation)
			return ErrBusReset
		}

		done, err := fn(ev)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
}

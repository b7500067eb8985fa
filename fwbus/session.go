package fwbus

import (
	"time"

	"github.com/rs/xid"
)

// A Recorder observes completed transactions. Recording failures must not
// disturb the transaction path; implementations buffer and flush on their
// own schedule.
type Recorder interface {
	RecordTransaction(sessionID string, req *Request, res Result, elapsed time.Duration)
}

// A Session owns one open channel to a node together with the generation
// tracker and the node identity captured at attach time. A session drives at
// most one transaction at a time and is confined to a single goroutine;
// independent sessions on different channels may run concurrently.
type Session struct {
	id   string
	ch   Channel
	info BusInfo
	gen  GenerationTracker
	mux  *EventMux
	rec  Recorder
}

// NewSession wraps an opened channel. The bus info seeds the generation
// tracker; later resets observed through the multiplexer update it.
func NewSession(ch Channel, info BusInfo) *Session {
	s := &Session{
		id:   xid.New().String(),
		ch:   ch,
		info: info,
	}
	s.gen.ObserveReset(info.Generation)
	s.mux = NewEventMux(ch, &s.gen, 0)

	return s
}

// ID returns the session identifier used to key trace records.
func (s *Session) ID() string {
	return s.id
}

// Info returns the node identity captured when the channel was attached.
func (s *Session) Info() BusInfo {
	return s.info
}

// Generation returns the bus generation the next send will be stamped with.
func (s *Session) Generation() uint32 {
	return s.gen.Current()
}

// Mux returns the event multiplexer bound to this session's channel.
func (s *Session) Mux() *EventMux {
	return s.mux
}

// Channel returns the underlying channel for operations that bypass the
// multiplexer, such as registering an inbound address range.
func (s *Session) Channel() Channel {
	return s.ch
}

// SetPollTimeout overrides the per-step wait bound. Zero restores
// DefaultPollTimeout.
func (s *Session) SetPollTimeout(d time.Duration) {
	s.mux = NewEventMux(s.ch, &s.gen, d)
}

// SetRecorder attaches a transaction recorder.
func (s *Session) SetRecorder(r Recorder) {
	s.rec = r
}

// Execute runs one addressed transaction to its terminal outcome, including
// the single automatic resend after a generation mismatch.
func (s *Session) Execute(req *Request) (Result, error) {
	start := time.Now()
	res, err := s.mux.Transact(req)
	if err == nil && s.rec != nil {
		s.rec.RecordTransaction(s.id, req, res, time.Since(start))
	}

	return res, err
}

// InitiateBusReset asks the local node to signal a bus reset. The reset
// itself arrives later as a BusReset event.
func (s *Session) InitiateBusReset(kind ResetKind) error {
	return s.ch.InitiateBusReset(kind)
}

// Close releases the channel. It must be called on every exit path; the
// session is unusable afterwards.
func (s *Session) Close() error {
	return s.ch.Close()
}

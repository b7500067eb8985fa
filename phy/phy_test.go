package phy

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buslab/fwprobe/fwbus"
)

// scriptChannel plays back a fixed event sequence and records sends.
type scriptChannel struct {
	events    []fwbus.Event
	phySends  [][2]uint32
	listening int
}

func (c *scriptChannel) Send(*fwbus.Request) error          { return errors.New("unexpected send") }
func (c *scriptChannel) SendBroadcast(*fwbus.Request) error { return errors.New("unexpected send") }

func (c *scriptChannel) SendPhyPacket(q0, q1, _ uint32) error {
	c.phySends = append(c.phySends, [2]uint32{q0, q1})
	return nil
}

func (c *scriptChannel) ReceivePhyPackets() error {
	c.listening++
	return nil
}

func (c *scriptChannel) Allocate(uint64, uint32) (uint32, error) { return 0, nil }
func (c *scriptChannel) Respond(uint32, fwbus.Status) error      { return nil }
func (c *scriptChannel) InitiateBusReset(fwbus.ResetKind) error  { return nil }
func (c *scriptChannel) Close() error                            { return nil }

func (c *scriptChannel) Poll(time.Duration) (fwbus.Event, error) {
	if len(c.events) == 0 {
		return nil, nil
	}
	ev := c.events[0]
	c.events = c.events[1:]
	return ev, nil
}

func newTestSession(ch fwbus.Channel) *fwbus.Session {
	s := fwbus.NewSession(ch, fwbus.BusInfo{
		NodeID:      0xffc1,
		LocalNodeID: 0xffc1,
		RootNodeID:  0xffc2,
		Generation:  3,
	})
	s.SetPollTimeout(time.Millisecond)
	return s
}

func ackOK() fwbus.Event {
	return &fwbus.SentAck{Status: fwbus.StatusComplete}
}

func pagedReply(phyID, reg, value uint32) fwbus.Event {
	return &fwbus.PhyReplyReceived{
		Quadlet: remoteReplyPaged(phyID, 1, 0, reg, value),
		Length:  8,
	}
}

func TestIdentifyAccumulatesOutOfOrder(t *testing.T) {
	const phyID = 1
	values := map[uint32]uint32{
		2: 0x00, 3: 0x00, 4: 0x0e, 5: 0x08, 6: 0x66, 7: 0x13,
	}

	ch := &scriptChannel{}
	for reg := uint32(2); reg <= 7; reg++ {
		ch.events = append(ch.events, ackOK())
	}
	// Replies arrive in reverse register order; completion must not depend
	// on arrival order.
	for reg := uint32(7); reg >= 2; reg-- {
		ch.events = append(ch.events, pagedReply(phyID, reg, values[reg]))
	}

	id, err := Identify(newTestSession(ch), phyID)

	require.NoError(t, err)
	assert.Equal(t, uint32(0x00000e), id.OUI)
	assert.Equal(t, uint32(0x086613), id.Model)
	assert.Equal(t, "00000e:086613", id.String())
	assert.Len(t, ch.phySends, 6)
	assert.Equal(t, 1, ch.listening)

	// Every request quadlet must carry its complement.
	for _, send := range ch.phySends {
		assert.Equal(t, ^send[0], send[1])
	}
}

func TestIdentifyIgnoresForeignReplies(t *testing.T) {
	const phyID = 2

	ch := &scriptChannel{}
	ch.events = append(ch.events, pagedReply(5, 2, 0xaa)) // different phy
	for reg := uint32(2); reg <= 7; reg++ {
		ch.events = append(ch.events, pagedReply(phyID, reg, reg))
	}

	id, err := Identify(newTestSession(ch), phyID)

	require.NoError(t, err)
	assert.Equal(t, uint32(0x020304), id.OUI)
	assert.Equal(t, uint32(0x050607), id.Model)
}

func TestIdentifyTimesOutWhenRegistersMissing(t *testing.T) {
	const phyID = 0

	ch := &scriptChannel{}
	// Register 4 never answers.
	for _, reg := range []uint32{2, 3, 5, 6, 7} {
		ch.events = append(ch.events, pagedReply(phyID, reg, 0))
	}

	_, err := Identify(newTestSession(ch), phyID)

	var timeout *fwbus.TimeoutError
	require.True(t, errors.As(err, &timeout))
}

func TestIdentifyFailsFatallyOnBusReset(t *testing.T) {
	ch := &scriptChannel{}
	ch.events = append(ch.events, ackOK(), &fwbus.BusReset{Generation: 4})

	_, err := Identify(newTestSession(ch), 1)

	require.ErrorIs(t, err, fwbus.ErrBusReset)
	// No resend: the six initial reads are all that ever went out.
	assert.Len(t, ch.phySends, 6)
}

func TestIdentifyRejectsPhyIDBeforeIO(t *testing.T) {
	ch := &scriptChannel{}

	_, err := Identify(newTestSession(ch), MaxPhyID+1)

	var cfgErr *fwbus.ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Empty(t, ch.phySends)
	assert.Zero(t, ch.listening)
}

func TestReadRegisterMatchesEcho(t *testing.T) {
	const phyID = 3
	request := remoteAccess(phyID, 1)

	ch := &scriptChannel{}
	ch.events = append(ch.events,
		ackOK(),
		&fwbus.PhyReplyReceived{Quadlet: request | typeRemoteReply<<18 | 0x3f, Length: 8},
	)

	value, err := ReadRegister(newTestSession(ch), phyID, 1)

	require.NoError(t, err)
	assert.Equal(t, uint8(0x3f), value)
}

func TestReadPagedRegisterValidatesBeforeIO(t *testing.T) {
	ch := &scriptChannel{}
	s := newTestSession(ch)

	var cfgErr *fwbus.ConfigError
	_, err := ReadPagedRegister(s, 1, 8, 0, 8)
	assert.True(t, errors.As(err, &cfgErr))
	_, err = ReadPagedRegister(s, 1, 0, 16, 8)
	assert.True(t, errors.As(err, &cfgErr))
	_, err = ReadPagedRegister(s, 1, 0, 0, 7)
	assert.True(t, errors.As(err, &cfgErr))

	assert.Empty(t, ch.phySends)
}

func TestPortCommandDecodesStatus(t *testing.T) {
	const phyID, port = 1, 2
	_, bits := remoteCommandMatch(phyID, port, PortEnable)

	ch := &scriptChannel{}
	ch.events = append(ch.events,
		ackOK(),
		&fwbus.PhyReplyReceived{
			Quadlet: bits | 1<<3 | 1<<5 | 1<<6,
			Length:  8,
		},
	)

	status, err := PortCommand(newTestSession(ch), phyID, port, PortEnable)

	require.NoError(t, err)
	assert.True(t, status.Accepted)
	assert.True(t, status.Bias)
	assert.True(t, status.Connected)
	assert.Equal(t, "bias connected", status.String())
}

func TestPortStatusStrings(t *testing.T) {
	assert.Equal(t, "command rejected", PortStatus{}.String())
	assert.Equal(t, "ok", PortStatus{Accepted: true}.String())
	assert.Equal(t, "disabled fault",
		PortStatus{Accepted: true, Disabled: true, Fault: true}.String())
}

func TestConfigureValidation(t *testing.T) {
	ch := &scriptChannel{}
	s := newTestSession(ch)

	var cfgErr *fwbus.ConfigError
	assert.True(t, errors.As(Configure(s, -1, 64), &cfgErr))
	assert.True(t, errors.As(Configure(s, -1, -1), &cfgErr))
	assert.Empty(t, ch.phySends)

	ch.events = append(ch.events, ackOK())
	require.NoError(t, Configure(s, 5, 44))
	require.Len(t, ch.phySends, 1)
	assert.Equal(t, uint32(5<<24|1<<23|1<<22|44<<16), ch.phySends[0][0])
}

func TestSendVersaPhyPassesQuadletsThrough(t *testing.T) {
	ch := &scriptChannel{}
	s := newTestSession(ch)

	var cfgErr *fwbus.ConfigError
	assert.True(t, errors.As(SendVersaPhy(s, 0x80000000, 0), &cfgErr))
	assert.Empty(t, ch.phySends)

	ch.events = append(ch.events, ackOK())
	require.NoError(t, SendVersaPhy(s, 0xc1020304, 0x05060708))
	require.Len(t, ch.phySends, 1)
	assert.Equal(t, [2]uint32{0xc1020304, 0x05060708}, ch.phySends[0])
}

func TestPingNanoseconds(t *testing.T) {
	r := PingResult{Ticks: 24576}
	assert.Equal(t, uint64(1000000), r.Nanoseconds())
}

func TestPingCollectsChain(t *testing.T) {
	const phyID = 4

	ch := &scriptChannel{}
	ch.events = append(ch.events,
		&fwbus.SentAck{Status: fwbus.StatusComplete, Timestamp: 300, HasTimestamp: true},
		&fwbus.PhyReplyReceived{Quadlet: 0x84418841, Length: 8},
		&fwbus.PhyReplyReceived{Quadlet: 0x84bf5544, Length: 8},
	)

	result, err := Ping(newTestSession(ch), phyID)

	require.NoError(t, err)
	assert.Equal(t, uint32(300), result.Ticks)
	assert.False(t, result.Chain.Empty())
	assert.Equal(t, uint32(4), result.Chain.PhyID())
}

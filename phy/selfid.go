package phy

import (
	"fmt"
	"strings"
)

// PortState is the 2-bit connection state a self-ID packet reports per port.
type PortState uint8

const (
	PortNone        PortState = 0 // port not present
	PortUnconnected PortState = 1 // present but not connected
	PortParent      PortState = 2 // connected towards the root
	PortChild       PortState = 3 // connected away from the root
)

// Glyph renders the port state in the compact chain notation.
func (s PortState) Glyph() string {
	switch s {
	case PortUnconnected:
		return "-"
	case PortParent:
		return "p"
	case PortChild:
		return "c"
	default:
		return ""
	}
}

// Speed is the link speed a node advertises in its self-ID packet.
type Speed uint8

func (s Speed) String() string {
	switch s & 3 {
	case 0:
		return "S100"
	case 1:
		return "S200"
	case 2:
		return "S400"
	default:
		return "beta"
	}
}

var powerClasses = [8]string{
	"+0W", "+15W", "+30W", "+45W", "-3W", " ?W", "-3..-6W", "-3..-10W",
}

// moreFollows reports whether another quadlet continues the chain.
func moreFollows(quadlet uint32) bool {
	return quadlet&1 != 0
}

// A SelfIDChain is the ordered quadlet sequence one node broadcasts after a
// bus reset: a leading quadlet with identity, capability flags and three
// port states, then up to two continuation quadlets with eight further port
// states each.
type SelfIDChain struct {
	quadlets []uint32
}

// ChainFromQuadlets wraps accumulated quadlets. Quadlets beyond the
// structural maximum of three are dropped.
func ChainFromQuadlets(quadlets []uint32) SelfIDChain {
	if len(quadlets) > 3 {
		quadlets = quadlets[:3]
	}
	return SelfIDChain{quadlets: append([]uint32(nil), quadlets...)}
}

// Empty reports whether no quadlet was captured.
func (c SelfIDChain) Empty() bool {
	return len(c.quadlets) == 0
}

// PhyID returns the identifier of the node that emitted the chain.
func (c SelfIDChain) PhyID() uint32 {
	return c.quadlets[0] >> 24 & 0x3f
}

// GapCount returns the gap count the node is configured with.
func (c SelfIDChain) GapCount() uint32 {
	return c.quadlets[0] >> 16 & 0x3f
}

// Speed returns the advertised link speed.
func (c SelfIDChain) Speed() Speed {
	return Speed(c.quadlets[0] >> 14 & 3)
}

// PowerClass renders the node's power consumption/contribution class.
func (c SelfIDChain) PowerClass() string {
	return powerClasses[c.quadlets[0]>>8&7]
}

// LinkActive reports whether the node's link layer is powered on.
func (c SelfIDChain) LinkActive() bool {
	return c.quadlets[0]&(1<<22) != 0
}

// Contender reports whether the node contends for bus management.
func (c SelfIDChain) Contender() bool {
	return c.quadlets[0]&(1<<11) != 0
}

// InitiatedReset reports whether this node started the last bus reset.
func (c SelfIDChain) InitiatedReset() bool {
	return c.quadlets[0]&(1<<1) != 0
}

// Ports returns the per-port states in port order. The first quadlet
// carries three ports; each continuation quadlet carries eight more, valid
// only while its predecessor had the "more follows" bit set.
func (c SelfIDChain) Ports() []PortState {
	if len(c.quadlets) == 0 {
		return nil
	}

	ports := []PortState{}
	q := c.quadlets[0]
	for _, shift := range []uint{6, 4, 2} {
		ports = append(ports, PortState(q>>shift&3))
	}
	if !moreFollows(q) {
		return ports
	}

	for _, q := range c.quadlets[1:] {
		for shift := uint(16); shift >= 2; shift -= 2 {
			ports = append(ports, PortState(q>>shift&3))
		}
		if !moreFollows(q) {
			break
		}
	}

	return ports
}

func (c SelfIDChain) String() string {
	if c.Empty() {
		return "selfID: none"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "phy %d %s gc=%d %s ",
		c.PhyID(), c.Speed(), c.GapCount(), c.PowerClass())
	if c.LinkActive() {
		b.WriteString("L")
	}
	if c.Contender() {
		b.WriteString("c")
	}
	if c.InitiatedReset() {
		b.WriteString("i")
	}
	b.WriteString(" [")
	for _, p := range c.Ports() {
		b.WriteString(p.Glyph())
	}
	b.WriteString("]")

	return b.String()
}

// Package phy builds and decodes physical-layer control packets: remote
// register access, port commands, ping, configuration, and the self-ID
// chains nodes broadcast after a reset.
package phy

import (
	"fmt"

	"github.com/buslab/fwprobe/fwbus"
)

// Packet type selectors, quadlet bits 23..18.
const (
	typePing              = 0x0
	typeRemoteAccess      = 0x1
	typeRemoteReply       = 0x2
	typeRemoteAccessPaged = 0x5
	typeRemoteReplyPaged  = 0x7
	typeRemoteCommand     = 0x8
	typeRemoteConfirm     = 0xa
	typeResume            = 0xf
)

// MaxPhyID is the largest addressable PHY identifier on one bus.
const MaxPhyID = 62

func header(phyID, packetType uint32) uint32 {
	return phyID<<24 | packetType<<18
}

func remoteAccess(phyID, reg uint32) uint32 {
	return header(phyID, typeRemoteAccess) | (reg&7)<<8
}

func remoteAccessPaged(phyID, page, port, reg uint32) uint32 {
	return header(phyID, typeRemoteAccessPaged) | page<<15 | port<<11 | (reg&7)<<8
}

func remoteReplyPaged(phyID, page, port, reg, data uint32) uint32 {
	return header(phyID, typeRemoteReplyPaged) | page<<15 | port<<11 | (reg&7)<<8 | data
}

func pingPacket(phyID uint32) uint32 {
	return header(phyID, typePing)
}

func linkOnPacket(phyID uint32) uint32 {
	return 1<<30 | phyID<<24
}

func resumePacket(phyID uint32) uint32 {
	return header(phyID, typeResume)
}

// configPacket builds the force-root / gap-count configuration packet.
// Negative arguments leave the corresponding field unset.
func configPacket(rootPhyID, gapCount int) uint32 {
	var packet uint32
	if rootPhyID >= 0 {
		packet |= 1<<23 | uint32(rootPhyID)<<24
	}
	if gapCount >= 0 {
		packet |= 1<<22 | uint32(gapCount)<<16
	}
	return packet
}

// A PortOp is a remote port command opcode. Standby and restore carry an
// extended function selector above the 3-bit opcode.
type PortOp uint32

const (
	PortNop     PortOp = 0
	PortDisable PortOp = 1
	PortSuspend PortOp = 2
	PortClear   PortOp = 4
	PortEnable  PortOp = 5
	PortResume  PortOp = 6
	PortStandby PortOp = 7 | 1<<15
	PortRestore PortOp = 7 | 2<<15
)

func remoteCommandPacket(phyID, port uint32, op PortOp) uint32 {
	return header(phyID, typeRemoteCommand) | uint32(op) | port<<11
}

// remoteCommandMatch returns the mask and expected bits for the
// confirmation a remote port command echoes back.
func remoteCommandMatch(phyID, port uint32, op PortOp) (mask, bits uint32) {
	return 0xff3ff807, header(phyID, typeRemoteConfirm) | uint32(op) | port<<11
}

// PortStatus is the state a remote port reports in a command confirmation.
type PortStatus struct {
	Accepted     bool
	Disabled     bool
	Bias         bool
	Connected    bool
	Fault        bool
	StandbyFault bool
}

func portStatusFromReply(reply uint32) PortStatus {
	return PortStatus{
		Accepted:     reply&(1<<3) != 0,
		Disabled:     reply&(1<<4) != 0,
		Bias:         reply&(1<<5) != 0,
		Connected:    reply&(1<<6) != 0,
		Fault:        reply&(1<<7) != 0,
		StandbyFault: reply&(1<<8) != 0,
	}
}

func (s PortStatus) String() string {
	if !s.Accepted {
		return "command rejected"
	}

	out := ""
	if s.Disabled {
		out += " disabled"
	}
	if s.Bias {
		out += " bias"
	}
	if s.Connected {
		out += " connected"
	}
	if s.Fault {
		out += " fault"
	}
	if s.StandbyFault {
		out += " standby_fault"
	}
	if out == "" {
		return "ok"
	}
	return out[1:]
}

func checkPhyID(phyID uint32) error {
	if phyID > MaxPhyID {
		return configErrorf("phy id %d out of range (0..%d)", phyID, MaxPhyID)
	}
	return nil
}

func configErrorf(format string, args ...any) error {
	return &fwbus.ConfigError{Reason: fmt.Sprintf(format, args...)}
}

package phy

import (
	"github.com/buslab/fwprobe/fwbus"
)

// DeviceID is the identity a PHY exposes through its paged registers 2..7:
// a 24-bit organization identifier followed by a 24-bit model identifier.
type DeviceID struct {
	OUI   uint32
	Model uint32
}

func (id DeviceID) String() string {
	return formatID(id.OUI) + ":" + formatID(id.Model)
}

func formatID(v uint32) string {
	const digits = "0123456789abcdef"
	return string([]byte{
		digits[v>>20&0xf], digits[v>>16&0xf],
		digits[v>>12&0xf], digits[v>>8&0xf],
		digits[v>>4&0xf], digits[v&0xf],
	})
}

// Registers 2..7 of page 1, port 0, carry the identity bytes. Completion is
// tracked as a bitmask over the register numbers.
const (
	idFirstRegister = 2
	idLastRegister  = 7
	idCompleteMask  = 0xfc
)

// Identify reads the identity registers of one PHY. All six reads are
// issued up front; replies are matched by their echoed phy/page fields and
// may arrive in any order. The wait ends once every register has been
// observed.
func Identify(s *fwbus.Session, phyID uint32) (DeviceID, error) {
	if err := checkPhyID(phyID); err != nil {
		return DeviceID{}, err
	}

	ch := s.Channel()
	if err := ch.ReceivePhyPackets(); err != nil {
		return DeviceID{}, err
	}

	for reg := uint32(idFirstRegister); reg <= idLastRegister; reg++ {
		quadlet := remoteAccessPaged(phyID, 1, 0, reg)
		if err := ch.SendPhyPacket(quadlet, ^quadlet, s.Generation()); err != nil {
			return DeviceID{}, err
		}
	}

	var values [6]byte
	var seen uint32
	match := remoteReplyPaged(phyID, 1, 0, 0, 0)

	err := s.Mux().Collect(func(ev fwbus.Event) (bool, error) {
		switch ev := ev.(type) {
		case *fwbus.SentAck:
			if ev.Status != fwbus.StatusComplete {
				return false, &fwbus.StatusError{Status: ev.Status}
			}
			return false, nil
		case *fwbus.PhyReplyReceived:
			if ev.Length != 8 || ev.Quadlet&0xffff8000 != match {
				return false, nil
			}
			reg := ev.Quadlet >> 8 & 7
			if reg >= idFirstRegister {
				values[reg-idFirstRegister] = byte(ev.Quadlet)
				seen |= 1 << reg
			}
			return seen == idCompleteMask, nil
		default:
			return false, fwbus.ErrUnexpectedEvent
		}
	})
	if err != nil {
		return DeviceID{}, err
	}

	return DeviceID{
		OUI:   uint32(values[0])<<16 | uint32(values[1])<<8 | uint32(values[2]),
		Model: uint32(values[3])<<16 | uint32(values[4])<<8 | uint32(values[5]),
	}, nil
}

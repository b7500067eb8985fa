package phy

import (
	"github.com/buslab/fwprobe/fwbus"
)

// PingResult carries the round-trip time of a diagnostic ping and the
// self-ID chain the target answered with.
type PingResult struct {
	Ticks uint32
	Chain SelfIDChain
}

// Nanoseconds converts the 24.576 MHz tick count to nanoseconds, rounded.
func (r PingResult) Nanoseconds() uint64 {
	return (uint64(r.Ticks)*1000000 + 12288) / 24576
}

// Ping sends a diagnostic ping to phyID and waits for the send
// acknowledgment carrying the timing value and for the self-ID chain the
// target broadcasts in reply.
func Ping(s *fwbus.Session, phyID uint32) (PingResult, error) {
	if err := checkPhyID(phyID); err != nil {
		return PingResult{}, err
	}
	if err := s.Channel().ReceivePhyPackets(); err != nil {
		return PingResult{}, err
	}

	out, err := s.Mux().SendPhyPacket(pingPacket(phyID), fwbus.PhyWait{
		ResponseMask: 0xff000000,
		ResponseBits: 2<<30 | phyID<<24,
	})
	if err != nil {
		return PingResult{}, err
	}

	return PingResult{
		Ticks: out.PingTime,
		Chain: ChainFromQuadlets(out.SelfIDs),
	}, nil
}

// ReadRegister reads one of the eight base PHY registers of phyID.
func ReadRegister(s *fwbus.Session, phyID, reg uint32) (uint8, error) {
	if err := checkPhyID(phyID); err != nil {
		return 0, err
	}
	if reg > 7 {
		return 0, configErrorf("register number %d out of range (0..7)", reg)
	}

	return readRegister(s, remoteAccess(phyID, reg))
}

// ReadPagedRegister reads an extended PHY register through the page/port
// selection mechanism. Paged registers occupy numbers 8..15.
func ReadPagedRegister(s *fwbus.Session, phyID, page, port, reg uint32) (uint8, error) {
	if err := checkPhyID(phyID); err != nil {
		return 0, err
	}
	if page > 7 {
		return 0, configErrorf("page number %d out of range (0..7)", page)
	}
	if port > 15 {
		return 0, configErrorf("port number %d out of range (0..15)", port)
	}
	if reg < 8 || reg > 15 {
		return 0, configErrorf("register number %d out of range (8..15)", reg)
	}

	return readRegister(s, remoteAccessPaged(phyID, page, port, reg))
}

func readRegister(s *fwbus.Session, request uint32) (uint8, error) {
	if err := s.Channel().ReceivePhyPackets(); err != nil {
		return 0, err
	}

	// The reply echoes every address field and flips the type selector
	// from access to reply.
	out, err := s.Mux().SendPhyPacket(request, fwbus.PhyWait{
		ResponseMask: 0xffffff00,
		ResponseBits: request | typeRemoteReply<<18,
	})
	if err != nil {
		return 0, err
	}

	return uint8(out.Reply), nil
}

// PortCommand sends a remote port command and decodes the confirmation.
func PortCommand(s *fwbus.Session, phyID, port uint32, op PortOp) (PortStatus, error) {
	if err := checkPhyID(phyID); err != nil {
		return PortStatus{}, err
	}
	if port > 15 {
		return PortStatus{}, configErrorf("port number %d out of range (0..15)", port)
	}
	if err := s.Channel().ReceivePhyPackets(); err != nil {
		return PortStatus{}, err
	}

	mask, bits := remoteCommandMatch(phyID, port, op)
	out, err := s.Mux().SendPhyPacket(remoteCommandPacket(phyID, port, op), fwbus.PhyWait{
		ResponseMask: mask,
		ResponseBits: bits,
	})
	if err != nil {
		return PortStatus{}, err
	}

	return portStatusFromReply(out.Reply), nil
}

// Configure broadcasts a force-root / gap-count configuration packet.
// A negative rootPhyID leaves the root unchanged; a negative gapCount
// leaves the gap count unchanged.
func Configure(s *fwbus.Session, rootPhyID, gapCount int) error {
	if rootPhyID > MaxPhyID {
		return configErrorf("phy id %d out of range (0..%d)", rootPhyID, MaxPhyID)
	}
	if gapCount > 63 {
		return configErrorf("gap count %d out of range (0..63)", gapCount)
	}
	if rootPhyID < 0 && gapCount < 0 {
		return configErrorf("nothing to configure")
	}

	_, err := s.Mux().SendPhyPacket(configPacket(rootPhyID, gapCount), fwbus.PhyWait{})
	return err
}

// LinkOn asks phyID to power up its link layer.
func LinkOn(s *fwbus.Session, phyID uint32) error {
	if err := checkPhyID(phyID); err != nil {
		return err
	}

	_, err := s.Mux().SendPhyPacket(linkOnPacket(phyID), fwbus.PhyWait{})
	return err
}

// ResumeAll resumes every suspended port on the bus by announcing a resume
// from the local node.
func ResumeAll(s *fwbus.Session) error {
	_, err := s.Mux().SendPhyPacket(resumePacket(s.Info().PhyID()), fwbus.PhyWait{})
	return err
}

// SendVersaPhy transmits a raw VersaPHY quadlet pair. The second quadlet is
// payload, not a complement, so it is passed through untouched.
func SendVersaPhy(s *fwbus.Session, quadlet0, quadlet1 uint32) error {
	if quadlet0&0xc0000000 != 0xc0000000 {
		return configErrorf("not a VersaPHY packet")
	}

	_, err := s.Mux().SendRawPhyPacket(quadlet0, quadlet1, fwbus.PhyWait{})
	return err
}

// Package fcp implements the split Function Control Protocol exchange: a
// command written to the target's command register, answered by the target
// writing a response frame back into a register the initiator exposes.
package fcp

import (
	"github.com/buslab/fwprobe/fwbus"
)

// Register addresses and size defined by the protocol. Both registers are
// 0x200 bytes long.
const (
	CommandAddress  = 0xfffff0000b00
	ResponseAddress = 0xfffff0000d00
	RegionLength    = 0x200
)

// Exchange sends one FCP command and waits for the response frame. The
// response register is claimed before the command goes out so the target's
// write-back cannot race the setup. Three legs complete independently and in
// any order: the local send acknowledgment, the target's status for the
// command write, and the inbound response write. Each inbound write is
// confirmed with an empty complete response before the wait continues.
//
// A bus reset while waiting aborts with ErrBusReset; the exchange is never
// resent because the target may already have acted on the command.
func Exchange(s *fwbus.Session, command []byte) ([]byte, error) {
	if len(command) == 0 || len(command) > RegionLength {
		return nil, &fwbus.ConfigError{
			Reason: "command length out of range",
		}
	}

	req, err := fwbus.NewWriteRequest(fwbus.KindWrite, CommandAddress, command)
	if err != nil {
		return nil, err
	}

	ch := s.Channel()
	if _, err := ch.Allocate(ResponseAddress, RegionLength); err != nil {
		return nil, err
	}

	req.Generation = s.Generation()
	if err := ch.Send(req); err != nil {
		return nil, err
	}

	needAck := true
	needStatus := true
	needResponse := true
	var response []byte

	err = s.Mux().Collect(func(ev fwbus.Event) (bool, error) {
		switch ev := ev.(type) {
		case *fwbus.SentAck:
			if ev.Status != fwbus.StatusComplete {
				return false, &fwbus.StatusError{Status: ev.Status}
			}
			needAck = false
		case *fwbus.ResponseReceived:
			res, err := fwbus.DecodeReply(req, ev)
			if err != nil {
				return false, err
			}
			if res.Status != fwbus.StatusComplete {
				return false, &fwbus.StatusError{Status: res.Status}
			}
			needStatus = false
		case *fwbus.RequestReceived:
			if err := ch.Respond(ev.Handle, fwbus.StatusComplete); err != nil {
				return false, err
			}
			response = append([]byte(nil), ev.Data...)
			needResponse = false
		default:
			return false, fwbus.ErrUnexpectedEvent
		}
		return !needAck && !needStatus && !needResponse, nil
	})
	if err != nil {
		// Name the legs that were still outstanding.
		if _, ok := err.(*fwbus.TimeoutError); ok {
			return nil, &fwbus.TimeoutError{
				AwaitingAck:      needAck,
				AwaitingResponse: needStatus || needResponse,
			}
		}
		return nil, err
	}

	return response, nil
}

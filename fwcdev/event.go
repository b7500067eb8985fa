package fwcdev

import (
	"encoding/binary"

	"github.com/buslab/fwprobe/fwbus"
)

// Event type codes of the character-device ABI.
const (
	eventBusReset          = 0x00
	eventResponse          = 0x01
	eventRequest2          = 0x06
	eventPhyPacketSent     = 0x07
	eventPhyPacketReceived = 0x08
)

// Fixed header sizes preceding the variable payload of each event type.
const (
	commonHeaderLen   = 12
	busResetLen       = 36
	responseHeaderLen = 20
	request2HeaderLen = 48
	phyHeaderLen      = 20
)

var order = binary.NativeEndian

// parseEvent decodes one raw event frame read from the device. Event types
// the transaction model has no use for (isochronous interrupts, resource
// events) decode to (nil, nil) and are skipped by the poll loop.
func parseEvent(buf []byte) (fwbus.Event, error) {
	if len(buf) < commonHeaderLen {
		return nil, fwbus.ErrMalformedEvent
	}

	switch order.Uint32(buf[8:]) {
	case eventBusReset:
		if len(buf) < busResetLen {
			return nil, fwbus.ErrMalformedEvent
		}
		return &fwbus.BusReset{
			NodeID:      order.Uint32(buf[12:]),
			LocalNodeID: order.Uint32(buf[16:]),
			RootNodeID:  order.Uint32(buf[28:]),
			Generation:  order.Uint32(buf[32:]),
		}, nil

	case eventResponse:
		if len(buf) < responseHeaderLen {
			return nil, fwbus.ErrMalformedEvent
		}
		length := order.Uint32(buf[16:])
		if uint32(len(buf)-responseHeaderLen) < length {
			return nil, fwbus.ErrMalformedEvent
		}
		data := make([]byte, length)
		copy(data, buf[responseHeaderLen:])
		return &fwbus.ResponseReceived{
			Status: fwbus.Status(order.Uint32(buf[12:])),
			Data:   data,
		}, nil

	case eventRequest2:
		if len(buf) < request2HeaderLen {
			return nil, fwbus.ErrMalformedEvent
		}
		length := order.Uint32(buf[44:])
		if uint32(len(buf)-request2HeaderLen) < length {
			return nil, fwbus.ErrMalformedEvent
		}
		data := make([]byte, length)
		copy(data, buf[request2HeaderLen:])
		return &fwbus.RequestReceived{
			Tcode:  order.Uint32(buf[12:]),
			Offset: order.Uint64(buf[16:]),
			Handle: order.Uint32(buf[40:]),
			Data:   data,
		}, nil

	case eventPhyPacketSent:
		if len(buf) < phyHeaderLen {
			return nil, fwbus.ErrMalformedEvent
		}
		ack := &fwbus.SentAck{
			Status: fwbus.Status(order.Uint32(buf[12:])),
		}
		// A ping acknowledgment carries the round-trip time as payload.
		if order.Uint32(buf[16:]) >= 4 && len(buf) >= phyHeaderLen+4 {
			ack.Timestamp = order.Uint32(buf[20:])
			ack.HasTimestamp = true
		}
		return ack, nil

	case eventPhyPacketReceived:
		if len(buf) < phyHeaderLen {
			return nil, fwbus.ErrMalformedEvent
		}
		length := order.Uint32(buf[16:])
		if length < 4 || uint32(len(buf)-phyHeaderLen) < length {
			return nil, fwbus.ErrMalformedEvent
		}
		return &fwbus.PhyReplyReceived{
			Quadlet: order.Uint32(buf[20:]),
			Length:  int(length),
		}, nil
	}

	return nil, nil
}

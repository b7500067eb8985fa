//go:build linux

package fwcdev

import (
	"errors"
	"fmt"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/buslab/fwprobe/fwbus"
)

// abiVersion is the minimum character-device ABI this package needs: PHY
// packet transmission and the extended inbound request event.
const abiVersion = 4

// eventBufferLen is sized for the largest event the device can deliver: a
// response or inbound request carrying a full payload.
const eventBufferLen = 4096

// A Channel is one open /dev/fw* file descriptor. It implements
// fwbus.Channel.
//
// The device reports the outcome of an addressed transaction as a single
// response event with no separate acknowledgment, so Send queues a synthetic
// ack once the kernel has accepted the frame; PHY packet sends get a real
// acknowledgment event from the device.
type Channel struct {
	fd      int
	path    string
	pending []fwbus.Event
	buf     [eventBufferLen]byte
}

// Open attaches to a device file and captures its bus position.
func Open(path string) (*Channel, fwbus.BusInfo, error) {
	fd, err := unix.Open(path, unix.O_RDWR, 0)
	if err != nil {
		return nil, fwbus.BusInfo{}, attachError(path, err)
	}

	var reset busResetInfo
	arg := getInfoArg{
		Version:  abiVersion,
		BusReset: uint64(uintptr(unsafe.Pointer(&reset))),
	}
	if err := ioctl(fd, iocGetInfo, unsafe.Pointer(&arg)); err != nil {
		unix.Close(fd)
		return nil, fwbus.BusInfo{}, attachError(path, err)
	}
	if arg.Version < abiVersion {
		unix.Close(fd)
		return nil, fwbus.BusInfo{}, fwbus.ErrUnsupportedVersion
	}

	info := fwbus.BusInfo{
		NodeID:      reset.NodeID,
		LocalNodeID: reset.LocalNodeID,
		RootNodeID:  reset.RootNodeID,
		Generation:  reset.Generation,
		Card:        arg.Card,
	}
	return &Channel{fd: fd, path: path}, info, nil
}

func attachError(path string, err error) error {
	switch {
	case errors.Is(err, unix.ENOENT), errors.Is(err, unix.ENODEV),
		errors.Is(err, unix.ENOTTY):
		return fwbus.ErrNotFound
	case errors.Is(err, unix.EACCES), errors.Is(err, unix.EPERM):
		return fwbus.ErrPermissionDenied
	}
	return fmt.Errorf("%s: %w", path, err)
}

// Path returns the device file this channel is attached to.
func (c *Channel) Path() string {
	return c.path
}

func (c *Channel) sendRequest(cmd uintptr, req *fwbus.Request) error {
	arg := sendRequestArg{
		Tcode:      req.Tcode,
		Length:     req.Length,
		Offset:     req.Offset,
		Generation: req.Generation,
	}
	if len(req.Data) > 0 {
		arg.Data = uint64(uintptr(unsafe.Pointer(&req.Data[0])))
	}
	if err := ioctl(c.fd, cmd, unsafe.Pointer(&arg)); err != nil {
		return err
	}

	// Acceptance by the kernel is the only ack an addressed send gets.
	c.pending = append(c.pending, &fwbus.SentAck{Status: fwbus.StatusComplete})
	return nil
}

func (c *Channel) Send(req *fwbus.Request) error {
	return c.sendRequest(iocSendRequest, req)
}

func (c *Channel) SendBroadcast(req *fwbus.Request) error {
	return c.sendRequest(iocSendBroadcast, req)
}

func (c *Channel) SendPhyPacket(quadlet0, quadlet1, generation uint32) error {
	arg := sendPhyPacketArg{
		Data:       [2]uint32{quadlet0, quadlet1},
		Generation: generation,
	}
	return ioctl(c.fd, iocSendPhyPacket, unsafe.Pointer(&arg))
}

func (c *Channel) ReceivePhyPackets() error {
	var arg receivePhyPacketsArg
	return ioctl(c.fd, iocReceivePhyPackets, unsafe.Pointer(&arg))
}

func (c *Channel) Allocate(offset uint64, length uint32) (uint32, error) {
	arg := allocateArg{
		Offset:    offset,
		Length:    length,
		RegionEnd: offset + uint64(length),
	}
	if err := ioctl(c.fd, iocAllocate, unsafe.Pointer(&arg)); err != nil {
		return 0, err
	}
	return arg.Handle, nil
}

func (c *Channel) Respond(handle uint32, status fwbus.Status) error {
	arg := sendResponseArg{
		Rcode:  uint32(status),
		Handle: handle,
	}
	return ioctl(c.fd, iocSendResponse, unsafe.Pointer(&arg))
}

// Poll delivers the next event, or (nil, nil) once the timeout elapses with
// the device silent. Synthetic acks queued by Send are delivered first.
func (c *Channel) Poll(timeout time.Duration) (fwbus.Event, error) {
	if len(c.pending) > 0 {
		ev := c.pending[0]
		c.pending = c.pending[1:]
		return ev, nil
	}

	deadline := time.Now().Add(timeout)
	for {
		remaining := time.Until(deadline)
		if remaining < 0 {
			remaining = 0
		}

		fds := []unix.PollFd{{Fd: int32(c.fd), Events: unix.POLLIN}}
		n, err := unix.Poll(fds, int(remaining.Milliseconds()))
		if err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}
			return nil, err
		}
		if n == 0 {
			return nil, nil
		}

		r, err := unix.Read(c.fd, c.buf[:])
		if err != nil {
			return nil, err
		}
		ev, err := parseEvent(c.buf[:r])
		if err != nil {
			return nil, err
		}
		if ev != nil {
			return ev, nil
		}
		// Uninteresting event type, keep waiting within the deadline.
	}
}

func (c *Channel) InitiateBusReset(kind fwbus.ResetKind) error {
	arg := initiateBusResetArg{Type: resetTypeShort}
	if kind == fwbus.LongReset {
		arg.Type = resetTypeLong
	}
	return ioctl(c.fd, iocInitiateBusReset, unsafe.Pointer(&arg))
}

func (c *Channel) Close() error {
	return unix.Close(c.fd)
}

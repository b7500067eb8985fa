//go:build linux

// Package fwcdev implements fwbus.Channel on top of the Linux /dev/fw*
// character-device ABI: requests go out as ioctls, events come back through
// poll and read.
package fwcdev

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// The ioctl command space of the character device, magic '#'. The size field
// of each command is derived from the argument struct, so the struct layouts
// below must match the kernel ABI exactly.
const (
	iocMagic = '#'

	dirWrite = 1
	dirRead  = 2
)

func ioc(dir, nr, size uintptr) uintptr {
	return dir<<30 | size<<16 | iocMagic<<8 | nr
}

func iow(nr, size uintptr) uintptr  { return ioc(dirWrite, nr, size) }
func iowr(nr, size uintptr) uintptr { return ioc(dirRead|dirWrite, nr, size) }

var (
	iocGetInfo           = iowr(0x00, unsafe.Sizeof(getInfoArg{}))
	iocSendRequest       = iow(0x01, unsafe.Sizeof(sendRequestArg{}))
	iocAllocate          = iowr(0x02, unsafe.Sizeof(allocateArg{}))
	iocSendResponse      = iow(0x04, unsafe.Sizeof(sendResponseArg{}))
	iocInitiateBusReset  = iow(0x05, unsafe.Sizeof(initiateBusResetArg{}))
	iocSendBroadcast     = iow(0x12, unsafe.Sizeof(sendRequestArg{}))
	iocSendPhyPacket     = iowr(0x15, unsafe.Sizeof(sendPhyPacketArg{}))
	iocReceivePhyPackets = iow(0x16, unsafe.Sizeof(receivePhyPacketsArg{}))
)

// Argument structs of the ABI, in kernel field order.

type getInfoArg struct {
	Version         uint32
	ROMLength       uint32
	ROM             uint64
	BusReset        uint64
	BusResetClosure uint64
	Card            uint32
}

type busResetInfo struct {
	Closure     uint64
	Type        uint32
	NodeID      uint32
	LocalNodeID uint32
	BMNodeID    uint32
	IRMNodeID   uint32
	RootNodeID  uint32
	Generation  uint32
}

type sendRequestArg struct {
	Tcode      uint32
	Length     uint32
	Offset     uint64
	Closure    uint64
	Data       uint64
	Generation uint32
}

type allocateArg struct {
	Offset    uint64
	Closure   uint64
	Length    uint32
	Handle    uint32
	RegionEnd uint64
}

type sendResponseArg struct {
	Rcode  uint32
	Length uint32
	Data   uint64
	Handle uint32
}

type initiateBusResetArg struct {
	Type uint32
}

const (
	resetTypeLong  = 1
	resetTypeShort = 2
)

type sendPhyPacketArg struct {
	Closure    uint64
	Data       [2]uint32
	Generation uint32
}

type receivePhyPacketsArg struct {
	Closure uint64
}

func ioctl(fd int, req uintptr, arg unsafe.Pointer) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), req, uintptr(arg))
	if errno != 0 {
		return errno
	}
	return nil
}

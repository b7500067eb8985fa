//go:build linux

package fwcdev

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/buslab/fwprobe/fwbus"
)

// A Node describes one bus node found behind a /dev/fw* device file.
type Node struct {
	Path    string
	Card    uint32
	NodeID  uint32
	IsLocal bool
}

// PhyID extracts the node's 6-bit PHY identifier.
func (n Node) PhyID() uint32 {
	return n.NodeID & 0x3f
}

func deviceNumber(name string) (int, bool) {
	if len(name) < 3 || name[:2] != "fw" {
		return 0, false
	}
	n, err := strconv.Atoi(name[2:])
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// Scan probes every /dev/fw* device file and reports the reachable nodes in
// device order. Files that cannot be opened or probed are skipped; an empty
// result distinguishes "no devices" from "no permission".
func Scan() ([]Node, error) {
	ents, err := os.ReadDir("/dev")
	if err != nil {
		return nil, err
	}

	type entry struct {
		number int
		name   string
	}
	var found []entry
	for _, ent := range ents {
		if n, ok := deviceNumber(ent.Name()); ok {
			found = append(found, entry{number: n, name: ent.Name()})
		}
	}
	sort.Slice(found, func(i, j int) bool { return found[i].number < found[j].number })

	var nodes []Node
	denied := false
	for _, ent := range found {
		path := "/dev/" + ent.name
		ch, info, err := Open(path)
		if err != nil {
			if errors.Is(err, fwbus.ErrPermissionDenied) {
				denied = true
			}
			continue
		}
		ch.Close()

		nodes = append(nodes, Node{
			Path:    path,
			Card:    info.Card,
			NodeID:  info.NodeID,
			IsLocal: info.NodeID == info.LocalNodeID,
		})
	}

	if len(nodes) == 0 {
		if denied {
			return nil, fwbus.ErrPermissionDenied
		}
		return nil, fwbus.ErrNotFound
	}
	return nodes, nil
}

// FindLocal selects the local node of one bus. The bus argument may be
// empty (first local node wins), a card number, or a device file path; a
// path not present in nodes is probed directly to learn its card.
func FindLocal(nodes []Node, bus string) (Node, error) {
	card := -1
	if bus != "" {
		if n, err := strconv.ParseInt(bus, 0, 32); err == nil {
			if n < 0 {
				return Node{}, fmt.Errorf("invalid bus number %q", bus)
			}
			card = int(n)
		} else {
			c, err := cardOfPath(nodes, bus)
			if err != nil {
				return Node{}, err
			}
			card = c
		}
	}

	for _, n := range nodes {
		if n.IsLocal && (card == -1 || int(n.Card) == card) {
			return n, nil
		}
	}

	if card == -1 {
		return Node{}, errors.New("local node not found")
	}
	return Node{}, fmt.Errorf("local node for card %d not found", card)
}

func cardOfPath(nodes []Node, path string) (int, error) {
	for _, n := range nodes {
		if n.Path == path {
			return int(n.Card), nil
		}
	}

	ch, info, err := Open(path)
	if err != nil {
		return 0, err
	}
	ch.Close()
	return int(info.Card), nil
}

// ResolvePhy interprets a target argument of a PHY command: a bare number is
// a PHY identifier on the already selected bus, anything else names a device
// file whose node becomes the target and whose card selects the bus. The
// returned card is -1 when the bus selection is unchanged.
func ResolvePhy(nodes []Node, arg string) (phyID uint32, card int, err error) {
	if n, err := strconv.ParseInt(arg, 0, 32); err == nil {
		if n < 0 || n > 63 {
			return 0, 0, fmt.Errorf("invalid node id %q", arg)
		}
		return uint32(n), -1, nil
	}

	for _, n := range nodes {
		if n.Path == arg {
			return n.PhyID(), int(n.Card), nil
		}
	}

	ch, info, err := Open(arg)
	if err != nil {
		return 0, 0, err
	}
	ch.Close()
	return info.NodeID & 0x3f, int(info.Card), nil
}

// Package csr names the control and status registers of the serial bus
// register space, so commands can take an address argument by name.
package csr

import (
	"fmt"
	"strings"
)

// A Register is one named location in the bus register space. Hidden entries
// are obscure or vendor-specific registers that a listing only shows on
// request; they still resolve by name.
type Register struct {
	Address uint64
	Length  uint32
	Name    string
	Hidden  bool
}

var registers = []Register{
	{0xfffff0000000, 4, "state_clear", false},
	{0xfffff0000004, 4, "state_set", false},
	{0xfffff0000008, 4, "node_ids", false},
	{0xfffff000000c, 4, "reset_start", false},
	{0xfffff0000018, 8, "split_timeout", false},
	{0xfffff0000018, 4, "split_timeout_hi", false},
	{0xfffff000001c, 4, "split_timeout_lo", false},
	{0xfffff0000020, 8, "argument", true},
	{0xfffff0000020, 4, "argument_hi", true},
	{0xfffff0000024, 4, "argument_lo", true},
	{0xfffff0000028, 4, "test_start", true},
	{0xfffff000002c, 4, "test_status", true},
	{0xfffff0000050, 4, "interrupt_target", true},
	{0xfffff0000054, 4, "interrupt_mask", true},
	{0xfffff0000080, 64, "message_request", false},
	{0xfffff00000c0, 64, "message_response", false},
	{0xfffff0000180, 128, "error_log_buffer", true},
	{0xfffff0000200, 4, "cycle_time", false},
	{0xfffff0000204, 4, "bus_time", false},
	{0xfffff0000208, 4, "power_fail_imminent", true},
	{0xfffff000020c, 4, "power_source", true},
	{0xfffff0000210, 4, "busy_timeout", false},
	{0xfffff0000214, 4, "quarantine", true},
	{0xfffff0000218, 4, "priority_budget", false},
	{0xfffff000021c, 4, "bus_manager_id", false},
	{0xfffff0000220, 4, "bandwidth_available", false},
	{0xfffff0000224, 8, "channels_available", false},
	{0xfffff0000224, 4, "channels_available_hi", false},
	{0xfffff0000228, 4, "channels_available_lo", false},
	{0xfffff000022c, 4, "maint_control", true},
	{0xfffff0000230, 4, "maint_utility", false},
	{0xfffff0000234, 4, "broadcast_channel", false},
	{0xfffff0000400, 0x400, "config_rom", false},
	{0xfffff0000b00, 0x200, "fcp_command", false},
	{0xfffff0000d00, 0x200, "fcp_response", false},
	{0xfffff0001000, 0x400, "topology_map", false},
	{0xfffff0001c00, 0x200, "virtual_id_map", true},
	{0xfffff0001e00, 0x100, "route_map", true},
	{0xfffff0001f00, 8, "clan_eui_64", true},
	{0xfffff0001f08, 4, "clan_info", true},
	{0xfffff0002000, 0x1000, "speed_map", true},
}

// The isochronous plug control registers form two runs of 32 consecutive
// quadlets each. Only the master plug and the first and last plug of each
// run show up in a non-verbose listing.
func init() {
	plugs := make([]Register, 0, 64)
	for i, base := range []uint64{0xfffff0000900, 0xfffff0000980} {
		direction := [2]string{"output", "input"}[i]
		plugs = append(plugs, Register{
			Address: base,
			Length:  4,
			Name:    direction + "_master_plug",
		})
		for plug := 0; plug <= 30; plug++ {
			plugs = append(plugs, Register{
				Address: base + 4 + uint64(plug)*4,
				Length:  4,
				Name:    fmt.Sprintf("%s_plug%d", direction, plug),
				Hidden:  plug >= 1 && plug <= 29,
			})
		}
	}

	// Keep the table in address order: the plug runs sit between the
	// config ROM and the FCP registers.
	table := make([]Register, 0, len(registers)+len(plugs))
	for _, r := range registers {
		if len(plugs) > 0 && r.Address > plugs[0].Address {
			table = append(table, plugs...)
			plugs = nil
		}
		table = append(table, r)
	}
	registers = append(table, plugs...)
}

// Lookup resolves a register name, case-insensitively, to its address and
// default transfer length.
func Lookup(name string) (Register, bool) {
	for _, r := range registers {
		if strings.EqualFold(name, r.Name) {
			return r, true
		}
	}
	return Register{}, false
}

// A Row is one line of a register listing.
type Row struct {
	Address uint64
	Length  uint32
	Name    string
}

// Rows returns the listing. Non-verbose listings skip hidden registers and
// collapse a whole-register entry followed by its _hi/_lo halves into one
// row; verbose listings show every entry as-is.
func Rows(verbose bool) []Row {
	var rows []Row
	for i := 0; i < len(registers); i++ {
		r := registers[i]
		if r.Hidden && !verbose {
			continue
		}
		name := r.Name
		if !verbose && i+2 < len(registers) && registers[i+1].Address == r.Address {
			name += "[_hi|_lo]"
			i += 2
		}
		rows = append(rows, Row{Address: r.Address, Length: r.Length, Name: name})
	}
	return rows
}

// Package oui maps the 24-bit organization identifiers and model numbers
// that PHYs report through their paged identity registers to readable names.
package oui

import (
	"fmt"
	"io"
	"sort"
)

var vendors = map[uint32]string{
	0x00000e: "Fujitsu",
	0x000085: "Canon",
	0x004063: "VIA Technologies",
	0x0050c2: "IEEE Registration Authority",
	0x00a0de: "Yamaha",
	0x080028: "Texas Instruments",
	0x080046: "Sony",
}

var models = map[uint64]string{
	key(0x00000e, 0x086613): "MB86613",
}

func key(oui, model uint32) uint64 {
	return uint64(oui)<<24 | uint64(model)
}

// Vendor returns the organization name registered for an OUI.
func Vendor(oui uint32) (string, bool) {
	name, ok := vendors[oui]
	return name, ok
}

// Model returns the model name a vendor registered for a model number.
func Model(oui, model uint32) (string, bool) {
	name, ok := models[key(oui, model)]
	return name, ok
}

// A Tracker renders device identities and remembers the ones it had no name
// for, so a scan can report them in aggregate when it finishes.
type Tracker struct {
	unknown map[uint64]int
}

func NewTracker() *Tracker {
	return &Tracker{unknown: map[uint64]int{}}
}

// Describe renders an identity as "oui:model (vendor model)". Identities
// with no table entry are rendered numerically and counted for Report.
func (t *Tracker) Describe(oui, model uint32) string {
	id := fmt.Sprintf("%06x:%06x", oui, model)

	vendor, haveVendor := Vendor(oui)
	name, haveModel := Model(oui, model)
	if !haveVendor || !haveModel {
		t.unknown[key(oui, model)]++
	}

	switch {
	case haveVendor && haveModel:
		return fmt.Sprintf("%s (%s %s)", id, vendor, name)
	case haveVendor:
		return fmt.Sprintf("%s (%s)", id, vendor)
	default:
		return id
	}
}

// Report writes one line per distinct unnamed identity. It writes nothing
// when every described device was fully named.
func (t *Tracker) Report(w io.Writer) {
	if len(t.unknown) == 0 {
		return
	}

	keys := make([]uint64, 0, len(t.unknown))
	for k := range t.unknown {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	fmt.Fprintln(w, "devices without a table entry:")
	for _, k := range keys {
		fmt.Fprintf(w, "  %06x:%06x (seen %d)\n",
			uint32(k>>24)&0xffffff, uint32(k)&0xffffff, t.unknown[k])
	}
}

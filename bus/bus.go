// Package bus implements the memory-mapped address decoder that sits
// between the CPU and its devices: an ordered list of address regions,
// each binding a 16 bit range to one device.Device, with first-match-wins
// priority so newer mappings shadow older ones in any overlap.
package bus

import (
	"fmt"

	"github.com/staninna/sixfiveohtwo/device"
)

// UnmappedAddress is returned when no region covers an accessed address.
// Reachable only if a caller unmaps the default RAM region without
// installing a replacement that covers the full address space.
type UnmappedAddress struct {
	Addr uint16
}

func (e UnmappedAddress) Error() string {
	return fmt.Sprintf("bus: unmapped address %#04x", e.Addr)
}

// NoSuchRegion is returned by Unmap when no region matches the given
// (start, end) pair exactly.
type NoSuchRegion struct {
	Start, End uint16
}

func (e NoSuchRegion) Error() string {
	return fmt.Sprintf("bus: no such region %#04x-%#04x", e.Start, e.End)
}

// region binds an inclusive address range to a device.
type region struct {
	start, end uint16
	dev        device.Device
}

func (r region) contains(addr uint16) bool {
	return addr >= r.start && addr <= r.end
}

// Bus routes reads and writes to whichever mapped device's region covers
// the address, most-recently-mapped region first. It always starts with a
// single region spanning the full 16 bit address space backed by RAM, so
// every address is readable and writable by construction.
type Bus struct {
	regions []region
}

// New constructs a Bus preloaded with one region covering 0x0000-0xFFFF,
// backed by a fresh, zeroed 64 KiB RAM device.
func New() *Bus {
	return &Bus{
		regions: []region{
			{start: 0x0000, end: 0xFFFF, dev: device.NewRam(1 << 16)},
		},
	}
}

// Map installs a new region at the front of the priority list, so it
// shadows any existing region covering the same addresses. Overlap is
// permitted and no coalescing happens; the only validation is start <= end.
func (b *Bus) Map(start, end uint16, dev device.Device) error {
	if start > end {
		return fmt.Errorf("bus: invalid region %#04x-%#04x: start > end", start, end)
	}
	b.regions = append([]region{{start: start, end: end, dev: dev}}, b.regions...)
	return nil
}

// Unmap removes the first region whose (start, end) pair matches exactly.
// Returns NoSuchRegion if none matches.
func (b *Bus) Unmap(start, end uint16) error {
	for i, r := range b.regions {
		if r.start == start && r.end == end {
			b.regions = append(b.regions[:i], b.regions[i+1:]...)
			return nil
		}
	}
	return NoSuchRegion{Start: start, End: end}
}

// find returns the highest-priority region containing addr, or false if
// none does (only possible after an Unmap leaves a hole).
func (b *Bus) find(addr uint16) (region, bool) {
	for _, r := range b.regions {
		if r.contains(addr) {
			return r, true
		}
	}
	return region{}, false
}

// Read returns the byte at addr from whichever device's region covers it.
func (b *Bus) Read(addr uint16) (uint8, error) {
	r, ok := b.find(addr)
	if !ok {
		return 0, UnmappedAddress{Addr: addr}
	}
	return r.dev.Read(addr - r.start), nil
}

// Write stores val at addr in whichever device's region covers it.
func (b *Bus) Write(addr uint16, val uint8) error {
	r, ok := b.find(addr)
	if !ok {
		return UnmappedAddress{Addr: addr}
	}
	r.dev.Write(addr-r.start, val)
	return nil
}

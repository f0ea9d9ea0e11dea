// Package device defines the memory-mapped device interface used by the
// bus (package bus) and provides the basic peripherals needed to exercise
// a 6502 system: RAM, a character-output sink, and a simple framebuffer.
package device

// Device is a single flat capability set responding to 8 bit reads and
// writes at 16 bit offsets relative to wherever a bus.Bus has mapped it,
// and self-identifying for diagnostics. Implementations may be stateful
// and reads may have side effects; a device with no meaningful read
// should return 0.
type Device interface {
	// TypeName identifies the concrete device, e.g. "RAM", "Console".
	TypeName() string
	// Read returns the byte at offset, relative to the device's mapped base.
	Read(offset uint16) uint8
	// Write stores val at offset, relative to the device's mapped base.
	Write(offset uint16, val uint8)
}

var _ Device = (*Ram)(nil)

// Ram is a flat byte array backing a region of the address space. It is
// the device the bus installs by default so every address is readable.
type Ram struct {
	mem []uint8
}

// NewRam creates a zero-filled RAM device of the given size. size must be
// between 1 and 65536 (a full 16 bit address space); addresses are masked
// to the buffer length so a smaller RAM aliases across its mapped region.
func NewRam(size int) *Ram {
	if size <= 0 || size > 1<<16 {
		size = 1 << 16
	}
	return &Ram{mem: make([]uint8, size)}
}

// TypeName implements Device.
func (r *Ram) TypeName() string { return "RAM" }

// Read implements Device.
func (r *Ram) Read(offset uint16) uint8 {
	return r.mem[int(offset)%len(r.mem)]
}

// Write implements Device.
func (r *Ram) Write(offset uint16, val uint8) {
	r.mem[int(offset)%len(r.mem)] = val
}

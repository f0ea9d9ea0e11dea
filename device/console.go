package device

import (
	"bufio"
	"io"
	"os"
)

var _ Device = (*Console)(nil)

// Console is a write-only character-output sink: every byte written to it
// is emitted as a raw byte to the underlying writer. Reads always return 0,
// matching the "no meaningful read" contract in device.Device.
// Grounded on original_source's Stdout device, generalized to take any
// io.Writer so tests don't have to capture os.Stdout.
type Console struct {
	w *bufio.Writer
}

// NewConsole wraps w (os.Stdout in normal use) as a Console device.
func NewConsole(w io.Writer) *Console {
	return &Console{w: bufio.NewWriter(w)}
}

// NewStdoutConsole is a convenience constructor matching the original
// Stdout device (print each byte written as a character).
func NewStdoutConsole() *Console {
	return NewConsole(os.Stdout)
}

// TypeName implements Device.
func (c *Console) TypeName() string { return "Console" }

// Read implements Device. Console has no readable state.
func (c *Console) Read(uint16) uint8 { return 0 }

// Write implements Device, emitting val as a byte to the underlying writer
// and flushing immediately so output is visible as the program runs.
func (c *Console) Write(_ uint16, val uint8) {
	_ = c.w.WriteByte(val)
	_ = c.w.Flush()
}

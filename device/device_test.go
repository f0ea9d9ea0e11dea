package device

import (
	"bytes"
	"testing"
)

func TestRamReadWrite(t *testing.T) {
	r := NewRam(16)
	if got := r.TypeName(); got != "RAM" {
		t.Fatalf("TypeName() = %q, want RAM", got)
	}
	for addr := uint16(0); addr < 16; addr++ {
		r.Write(addr, uint8(addr*7))
	}
	for addr := uint16(0); addr < 16; addr++ {
		if got, want := r.Read(addr), uint8(addr*7); got != want {
			t.Errorf("Read(%d) = %#02x, want %#02x", addr, got, want)
		}
	}
}

func TestRamAliasesWhenSmallerThan64K(t *testing.T) {
	r := NewRam(4)
	r.Write(0, 0x42)
	if got := r.Read(4); got != 0x42 {
		t.Fatalf("Read(4) = %#02x, want 0x42 (alias of offset 0)", got)
	}
}

func TestRamDefaultSizeOnInvalidInput(t *testing.T) {
	r := NewRam(0)
	if len(r.mem) != 1<<16 {
		t.Fatalf("NewRam(0) produced %d bytes, want 65536", len(r.mem))
	}
}

func TestConsoleWritesBytesAsIs(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)
	for _, b := range []byte("hi") {
		c.Write(0, b)
	}
	if got, want := buf.String(), "hi"; got != want {
		t.Fatalf("console output = %q, want %q", got, want)
	}
	if got := c.Read(0); got != 0 {
		t.Fatalf("Console.Read() = %#02x, want 0", got)
	}
}

func TestFramebufferReadReturnsLastWrite(t *testing.T) {
	fb := NewFramebuffer(4, 4)
	fb.Write(5, 0xAB)
	if got := fb.Read(5); got != 0xAB {
		t.Fatalf("Read(5) = %#02x, want 0xAB", got)
	}
	if got := fb.Read(100); got != 0 {
		t.Fatalf("out of range Read() = %#02x, want 0", got)
	}
}

func TestFramebufferImageDimensions(t *testing.T) {
	fb := NewFramebuffer(8, 6)
	img := fb.Image()
	b := img.Bounds()
	if b.Dx() != 8 || b.Dy() != 6 {
		t.Fatalf("Image() bounds = %v, want 8x6", b)
	}
}

// Package cpu implements the 6502 fetch/decode/execute loop against a
// bus.Bus: addressing-mode evaluation, the required load/store/transfer/
// stack/logical/ADC instruction groups, and the packed status-flag
// discipline of the P register.
//
// Unlike a cycle-accurate model, Step runs one instruction to completion
// synchronously — there is no per-cycle Tick/TickDone split, matching this
// project's explicit non-goal of cycle timing.
package cpu

import (
	"fmt"

	"github.com/staninna/sixfiveohtwo/bus"
	"github.com/staninna/sixfiveohtwo/device"
)

// Flag bit positions within the P status register.
const (
	FlagCarry     = uint8(1 << 0) // C
	FlagZero      = uint8(1 << 1) // Z
	FlagInterrupt = uint8(1 << 2) // I
	FlagDecimal   = uint8(1 << 3) // D
	FlagBreak     = uint8(1 << 4) // B
	FlagUnused    = uint8(1 << 5) // U, conventionally always 1
	FlagOverflow  = uint8(1 << 6) // V
	FlagNegative  = uint8(1 << 7) // N
)

const stackPage = uint16(0x0100)

// DefaultLoadAddress is where New loads a program and sets the initial PC.
const DefaultLoadAddress = uint16(0x0800)

// Registers holds the 6502's architectural register file.
type Registers struct {
	PC uint16
	SP uint8
	A  uint8
	X  uint8
	Y  uint8
	P  uint8
}

// UnknownOpcode is returned by Step/Run when the byte fetched at PC does
// not decode against the opcode table.
type UnknownOpcode struct {
	Opcode uint8
	PC     uint16
}

func (e UnknownOpcode) Error() string {
	return fmt.Sprintf("cpu: unknown opcode %#02x at pc %#04x", e.Opcode, e.PC)
}

// CPU owns a Registers value and a Bus, and drives the fetch/decode/
// execute cycle against it.
type CPU struct {
	reg Registers
	bus *bus.Bus
}

// New constructs a CPU with a fresh Bus, loads program starting at
// DefaultLoadAddress, and sets PC there.
func New(program []byte) *CPU {
	return WithLoadAddress(program, DefaultLoadAddress)
}

// WithLoadAddress is like New but loads the program at pcStart instead of
// DefaultLoadAddress.
func WithLoadAddress(program []byte, pcStart uint16) *CPU {
	c := &CPU{
		bus: bus.New(),
		reg: Registers{PC: pcStart, P: FlagUnused},
	}
	addr := pcStart
	for _, b := range program {
		_ = c.bus.Write(addr, b) // default RAM region always accepts writes
		addr++
	}
	return c
}

// Map installs dev at [start, end] on the underlying bus.
func (c *CPU) Map(start, end uint16, dev device.Device) error {
	return c.bus.Map(start, end, dev)
}

// Unmap removes the region matching [start, end] exactly from the bus.
func (c *CPU) Unmap(start, end uint16) error {
	return c.bus.Unmap(start, end)
}

// Registers returns a pointer to the live register file. Intended for
// tests and debuggers that need to inspect or poke state directly —
// normal program flow never needs to reach through it.
func (c *CPU) Registers() *Registers {
	return &c.reg
}

// ReadMemory reads addr directly off the bus, bypassing instruction
// decode. Test/debugger helper.
func (c *CPU) ReadMemory(addr uint16) (uint8, error) {
	return c.bus.Read(addr)
}

// WriteMemory writes val to addr directly on the bus, bypassing
// instruction decode. Test/debugger helper.
func (c *CPU) WriteMemory(addr uint16, val uint8) error {
	return c.bus.Write(addr, val)
}

// Step decodes and executes exactly one instruction starting at PC.
func (c *CPU) Step() error {
	opcode, err := c.fetch8()
	if err != nil {
		return err
	}
	info, ok := opcodeTable[opcode]
	if !ok {
		return UnknownOpcode{Opcode: opcode, PC: c.reg.PC - 1}
	}
	return c.execute(info)
}

// Run executes Step in a loop until it returns an error (an unknown
// opcode, or a bus error from an unmapped address).
func (c *CPU) Run() error {
	for {
		if err := c.Step(); err != nil {
			return err
		}
	}
}

// fetch8 reads the byte at PC and advances PC by one, wrapping mod 2^16.
func (c *CPU) fetch8() (uint8, error) {
	v, err := c.bus.Read(c.reg.PC)
	if err != nil {
		return 0, err
	}
	c.reg.PC++
	return v, nil
}

// fetch16 reads a little-endian 16 bit value: low byte at PC, high byte
// at PC+1, the standard 6502 convention.
func (c *CPU) fetch16() (uint16, error) {
	lo, err := c.fetch8()
	if err != nil {
		return 0, err
	}
	hi, err := c.fetch8()
	if err != nil {
		return 0, err
	}
	return uint16(hi)<<8 | uint16(lo), nil
}

// mnemonic identifies an instruction independent of its addressing mode.
type mnemonic int

const (
	mLDA mnemonic = iota
	mLDX
	mLDY
	mSTA
	mSTX
	mSTY
	mTAX
	mTAY
	mTXA
	mTYA
	mTSX
	mTXS
	mPHA
	mPHP
	mPLA
	mPLP
	mAND
	mEOR
	mORA
	mBIT
	mADC
)

// addrMode identifies one of the addressing modes this implementation
// supports.
type addrMode int

const (
	modeImplied addrMode = iota
	modeImmediate
	modeZP
	modeZPX
	modeZPY
	modeAbs
	modeAbsX
	modeAbsY
	modeIndX
	modeIndY
)

type opcodeInfo struct {
	mnemonic mnemonic
	mode     addrMode
}

var opcodeTable = map[uint8]opcodeInfo{
	// LDA
	0xA9: {mLDA, modeImmediate}, 0xA5: {mLDA, modeZP}, 0xB5: {mLDA, modeZPX},
	0xAD: {mLDA, modeAbs}, 0xBD: {mLDA, modeAbsX}, 0xB9: {mLDA, modeAbsY},
	0xA1: {mLDA, modeIndX}, 0xB1: {mLDA, modeIndY},
	// LDX
	0xA2: {mLDX, modeImmediate}, 0xA6: {mLDX, modeZP}, 0xB6: {mLDX, modeZPY},
	0xAE: {mLDX, modeAbs}, 0xBE: {mLDX, modeAbsY},
	// LDY
	0xA0: {mLDY, modeImmediate}, 0xA4: {mLDY, modeZP}, 0xB4: {mLDY, modeZPX},
	0xAC: {mLDY, modeAbs}, 0xBC: {mLDY, modeAbsX},
	// STA
	0x85: {mSTA, modeZP}, 0x95: {mSTA, modeZPX}, 0x8D: {mSTA, modeAbs},
	0x9D: {mSTA, modeAbsX}, 0x99: {mSTA, modeAbsY}, 0x81: {mSTA, modeIndX}, 0x91: {mSTA, modeIndY},
	// STX
	0x86: {mSTX, modeZP}, 0x96: {mSTX, modeZPY}, 0x8E: {mSTX, modeAbs},
	// STY
	0x84: {mSTY, modeZP}, 0x94: {mSTY, modeZPX}, 0x8C: {mSTY, modeAbs},
	// Transfers
	0xAA: {mTAX, modeImplied}, 0xA8: {mTAY, modeImplied}, 0x8A: {mTXA, modeImplied},
	0x98: {mTYA, modeImplied}, 0xBA: {mTSX, modeImplied}, 0x9A: {mTXS, modeImplied},
	// Stack
	0x48: {mPHA, modeImplied}, 0x08: {mPHP, modeImplied}, 0x68: {mPLA, modeImplied}, 0x28: {mPLP, modeImplied},
	// AND
	0x29: {mAND, modeImmediate}, 0x25: {mAND, modeZP}, 0x35: {mAND, modeZPX},
	0x2D: {mAND, modeAbs}, 0x3D: {mAND, modeAbsX}, 0x39: {mAND, modeAbsY},
	0x21: {mAND, modeIndX}, 0x31: {mAND, modeIndY},
	// EOR
	0x49: {mEOR, modeImmediate}, 0x45: {mEOR, modeZP}, 0x55: {mEOR, modeZPX},
	0x4D: {mEOR, modeAbs}, 0x5D: {mEOR, modeAbsX}, 0x59: {mEOR, modeAbsY},
	0x41: {mEOR, modeIndX}, 0x51: {mEOR, modeIndY},
	// ORA
	0x09: {mORA, modeImmediate}, 0x05: {mORA, modeZP}, 0x15: {mORA, modeZPX},
	0x0D: {mORA, modeAbs}, 0x1D: {mORA, modeAbsX}, 0x19: {mORA, modeAbsY},
	0x01: {mORA, modeIndX}, 0x11: {mORA, modeIndY},
	// BIT
	0x24: {mBIT, modeZP}, 0x2C: {mBIT, modeAbs},
	// ADC
	0x69: {mADC, modeImmediate}, 0x65: {mADC, modeZP}, 0x75: {mADC, modeZPX},
	0x6D: {mADC, modeAbs}, 0x7D: {mADC, modeAbsX}, 0x79: {mADC, modeAbsY},
	0x61: {mADC, modeIndX}, 0x71: {mADC, modeIndY},
}

// execute dispatches a decoded instruction. Load/logical/ADC instructions
// share an operand-fetch step; stores resolve an address instead; the rest
// use implied addressing (transfers touch only registers, stack operations
// also access the stack page).
func (c *CPU) execute(info opcodeInfo) error {
	switch info.mnemonic {
	case mLDA, mLDX, mLDY, mAND, mEOR, mORA, mBIT, mADC:
		value, err := c.operand(info.mode)
		if err != nil {
			return err
		}
		switch info.mnemonic {
		case mLDA:
			c.load(&c.reg.A, value)
		case mLDX:
			c.load(&c.reg.X, value)
		case mLDY:
			c.load(&c.reg.Y, value)
		case mAND:
			c.reg.A &= value
			c.setZN(c.reg.A)
		case mEOR:
			c.reg.A ^= value
			c.setZN(c.reg.A)
		case mORA:
			c.reg.A |= value
			c.setZN(c.reg.A)
		case mBIT:
			c.bit(value)
		case mADC:
			c.adc(value)
		}
		return nil
	case mSTA, mSTX, mSTY:
		addr, err := c.effectiveAddr(info.mode)
		if err != nil {
			return err
		}
		var v uint8
		switch info.mnemonic {
		case mSTA:
			v = c.reg.A
		case mSTX:
			v = c.reg.X
		case mSTY:
			v = c.reg.Y
		}
		return c.bus.Write(addr, v)
	case mTAX:
		c.load(&c.reg.X, c.reg.A)
		return nil
	case mTAY:
		c.load(&c.reg.Y, c.reg.A)
		return nil
	case mTXA:
		c.load(&c.reg.A, c.reg.X)
		return nil
	case mTYA:
		c.load(&c.reg.A, c.reg.Y)
		return nil
	case mTSX:
		c.load(&c.reg.X, c.reg.SP)
		return nil
	case mTXS:
		// SP is not flag-affecting; the real transfer spec exempts TXS.
		c.reg.SP = c.reg.X
		return nil
	case mPHA:
		return c.push(c.reg.A)
	case mPHP:
		return c.push(c.reg.P)
	case mPLA:
		v, err := c.pull()
		if err != nil {
			return err
		}
		c.load(&c.reg.A, v)
		return nil
	case mPLP:
		v, err := c.pull()
		if err != nil {
			return err
		}
		c.reg.P = v | FlagUnused
		return nil
	}
	return nil
}

// operand returns the value an instruction operates on: the next byte for
// immediate mode, or the byte at the mode's effective address otherwise.
func (c *CPU) operand(mode addrMode) (uint8, error) {
	if mode == modeImmediate {
		return c.fetch8()
	}
	addr, err := c.effectiveAddr(mode)
	if err != nil {
		return 0, err
	}
	return c.bus.Read(addr)
}

// effectiveAddr resolves mode against the instruction stream at PC,
// consuming whatever operand bytes that mode requires.
func (c *CPU) effectiveAddr(mode addrMode) (uint16, error) {
	switch mode {
	case modeZP:
		return c.zpAddr()
	case modeZPX:
		return c.zpxAddr()
	case modeZPY:
		return c.zpyAddr()
	case modeAbs:
		return c.absAddr()
	case modeAbsX:
		return c.absXAddr()
	case modeAbsY:
		return c.absYAddr()
	case modeIndX:
		return c.indirectXAddr()
	case modeIndY:
		return c.indirectYAddr()
	}
	return 0, fmt.Errorf("cpu: addressing mode %d has no effective address", mode)
}

func (c *CPU) zpAddr() (uint16, error) {
	d, err := c.fetch8()
	if err != nil {
		return 0, err
	}
	return uint16(d), nil
}

func (c *CPU) zpxAddr() (uint16, error) {
	d, err := c.fetch8()
	if err != nil {
		return 0, err
	}
	return uint16(d + c.reg.X), nil // uint8 add wraps mod 256
}

func (c *CPU) zpyAddr() (uint16, error) {
	d, err := c.fetch8()
	if err != nil {
		return 0, err
	}
	return uint16(d + c.reg.Y), nil
}

func (c *CPU) absAddr() (uint16, error) { return c.fetch16() }

func (c *CPU) absXAddr() (uint16, error) {
	a, err := c.fetch16()
	if err != nil {
		return 0, err
	}
	return a + uint16(c.reg.X), nil // uint16 add wraps mod 65536
}

func (c *CPU) absYAddr() (uint16, error) {
	a, err := c.fetch16()
	if err != nil {
		return 0, err
	}
	return a + uint16(c.reg.Y), nil
}

func (c *CPU) indirectXAddr() (uint16, error) {
	d, err := c.fetch8()
	if err != nil {
		return 0, err
	}
	ptr := d + c.reg.X // uint8 wrap
	lo, err := c.bus.Read(uint16(ptr))
	if err != nil {
		return 0, err
	}
	hi, err := c.bus.Read(uint16(ptr + 1)) // wraps mod 256
	if err != nil {
		return 0, err
	}
	return uint16(hi)<<8 | uint16(lo), nil
}

func (c *CPU) indirectYAddr() (uint16, error) {
	d, err := c.fetch8()
	if err != nil {
		return 0, err
	}
	lo, err := c.bus.Read(uint16(d))
	if err != nil {
		return 0, err
	}
	hi, err := c.bus.Read(uint16(d + 1)) // wraps mod 256
	if err != nil {
		return 0, err
	}
	base := uint16(hi)<<8 | uint16(lo)
	return base + uint16(c.reg.Y), nil
}

// load stores value into reg and updates the Z/N flags from it, the shared
// tail of LDA/LDX/LDY, PLA, ADC and every transfer except TXS.
func (c *CPU) load(reg *uint8, value uint8) {
	*reg = value
	c.setZN(value)
}

func (c *CPU) setZN(value uint8) {
	c.reg.P &^= FlagZero | FlagNegative
	if value == 0 {
		c.reg.P |= FlagZero
	}
	if value&FlagNegative != 0 {
		c.reg.P |= FlagNegative
	}
}

// bit implements BIT: Z comes from A&operand, but N and V are copied
// straight from operand's bits 7 and 6, not from the AND result.
func (c *CPU) bit(operand uint8) {
	t := c.reg.A & operand
	c.reg.P &^= FlagZero | FlagNegative | FlagOverflow
	if t == 0 {
		c.reg.P |= FlagZero
	}
	if operand&FlagNegative != 0 {
		c.reg.P |= FlagNegative
	}
	if operand&FlagOverflow != 0 {
		c.reg.P |= FlagOverflow
	}
}

// adc implements binary add-with-carry. BCD mode is not implemented, so D
// has no effect here.
func (c *CPU) adc(operand uint8) {
	carryIn := uint16(0)
	if c.reg.P&FlagCarry != 0 {
		carryIn = 1
	}
	sum := uint16(c.reg.A) + uint16(operand) + carryIn
	result := uint8(sum)
	c.reg.P &^= FlagOverflow | FlagCarry
	if (c.reg.A^result)&(operand^result)&0x80 != 0 {
		c.reg.P |= FlagOverflow
	}
	if sum > 0xFF {
		c.reg.P |= FlagCarry
	}
	c.load(&c.reg.A, result)
}

func (c *CPU) push(val uint8) error {
	err := c.bus.Write(stackPage+uint16(c.reg.SP), val)
	if err != nil {
		return err
	}
	c.reg.SP-- // wraps mod 256
	return nil
}

func (c *CPU) pull() (uint8, error) {
	c.reg.SP++ // wraps mod 256
	return c.bus.Read(stackPage + uint16(c.reg.SP))
}

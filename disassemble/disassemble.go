// Package disassemble renders the instruction at a given address as text,
// covering the opcode subset the cpu package actually executes.
package disassemble

import "fmt"

const (
	modeImplied = iota
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

// Memory is the minimal read access Step needs. *bus.Bus satisfies a byte
// read with an error return; Step ignores the error and treats unmapped
// bytes as zero, since disassembly of speculative/future bytes should not
// abort on first unmapped operand byte.
type Memory interface {
	Read(addr uint16) (uint8, error)
}

func readOrZero(m Memory, addr uint16) uint8 {
	v, err := m.Read(addr)
	if err != nil {
		return 0
	}
	return v
}

type entry struct {
	mnemonic string
	mode     int
}

var table = map[uint8]entry{
	0xA9: {"LDA", modeImmediate}, 0xA5: {"LDA", modeZP}, 0xB5: {"LDA", modeZPX},
	0xAD: {"LDA", modeAbs}, 0xBD: {"LDA", modeAbsX}, 0xB9: {"LDA", modeAbsY},
	0xA1: {"LDA", modeIndX}, 0xB1: {"LDA", modeIndY},
	0xA2: {"LDX", modeImmediate}, 0xA6: {"LDX", modeZP}, 0xB6: {"LDX", modeZPY},
	0xAE: {"LDX", modeAbs}, 0xBE: {"LDX", modeAbsY},
	0xA0: {"LDY", modeImmediate}, 0xA4: {"LDY", modeZP}, 0xB4: {"LDY", modeZPX},
	0xAC: {"LDY", modeAbs}, 0xBC: {"LDY", modeAbsX},
	0x85: {"STA", modeZP}, 0x95: {"STA", modeZPX}, 0x8D: {"STA", modeAbs},
	0x9D: {"STA", modeAbsX}, 0x99: {"STA", modeAbsY}, 0x81: {"STA", modeIndX}, 0x91: {"STA", modeIndY},
	0x86: {"STX", modeZP}, 0x96: {"STX", modeZPY}, 0x8E: {"STX", modeAbs},
	0x84: {"STY", modeZP}, 0x94: {"STY", modeZPX}, 0x8C: {"STY", modeAbs},
	0xAA: {"TAX", modeImplied}, 0xA8: {"TAY", modeImplied}, 0x8A: {"TXA", modeImplied},
	0x98: {"TYA", modeImplied}, 0xBA: {"TSX", modeImplied}, 0x9A: {"TXS", modeImplied},
	0x48: {"PHA", modeImplied}, 0x08: {"PHP", modeImplied}, 0x68: {"PLA", modeImplied}, 0x28: {"PLP", modeImplied},
	0x29: {"AND", modeImmediate}, 0x25: {"AND", modeZP}, 0x35: {"AND", modeZPX},
	0x2D: {"AND", modeAbs}, 0x3D: {"AND", modeAbsX}, 0x39: {"AND", modeAbsY},
	0x21: {"AND", modeIndX}, 0x31: {"AND", modeIndY},
	0x49: {"EOR", modeImmediate}, 0x45: {"EOR", modeZP}, 0x55: {"EOR", modeZPX},
	0x4D: {"EOR", modeAbs}, 0x5D: {"EOR", modeAbsX}, 0x59: {"EOR", modeAbsY},
	0x41: {"EOR", modeIndX}, 0x51: {"EOR", modeIndY},
	0x09: {"ORA", modeImmediate}, 0x05: {"ORA", modeZP}, 0x15: {"ORA", modeZPX},
	0x0D: {"ORA", modeAbs}, 0x1D: {"ORA", modeAbsX}, 0x19: {"ORA", modeAbsY},
	0x01: {"ORA", modeIndX}, 0x11: {"ORA", modeIndY},
	0x24: {"BIT", modeZP}, 0x2C: {"BIT", modeAbs},
	0x69: {"ADC", modeImmediate}, 0x65: {"ADC", modeZP}, 0x75: {"ADC", modeZPX},
	0x6D: {"ADC", modeAbs}, 0x7D: {"ADC", modeAbsX}, 0x79: {"ADC", modeAbsY},
	0x61: {"ADC", modeIndX}, 0x71: {"ADC", modeIndY},
}

// Step disassembles the instruction at pc and returns its text plus the
// number of bytes to advance to reach the next instruction. Unknown
// opcodes render as "???" and advance by one byte.
func Step(pc uint16, m Memory) (string, int) {
	opcode := readOrZero(m, pc)
	e, ok := table[opcode]
	if !ok {
		return fmt.Sprintf("%04X  %02X       ???", pc, opcode), 1
	}

	switch e.mode {
	case modeImplied:
		return fmt.Sprintf("%04X  %02X       %s", pc, opcode, e.mnemonic), 1
	case modeImmediate:
		op := readOrZero(m, pc+1)
		return fmt.Sprintf("%04X  %02X %02X    %s #$%02X", pc, opcode, op, e.mnemonic, op), 2
	case modeZP:
		op := readOrZero(m, pc+1)
		return fmt.Sprintf("%04X  %02X %02X    %s $%02X", pc, opcode, op, e.mnemonic, op), 2
	case modeZPX:
		op := readOrZero(m, pc+1)
		return fmt.Sprintf("%04X  %02X %02X    %s $%02X,X", pc, opcode, op, e.mnemonic, op), 2
	case modeZPY:
		op := readOrZero(m, pc+1)
		return fmt.Sprintf("%04X  %02X %02X    %s $%02X,Y", pc, opcode, op, e.mnemonic, op), 2
	case modeIndX:
		op := readOrZero(m, pc+1)
		return fmt.Sprintf("%04X  %02X %02X    %s ($%02X,X)", pc, opcode, op, e.mnemonic, op), 2
	case modeIndY:
		op := readOrZero(m, pc+1)
		return fmt.Sprintf("%04X  %02X %02X    %s ($%02X),Y", pc, opcode, op, e.mnemonic, op), 2
	case modeAbs:
		lo, hi := readOrZero(m, pc+1), readOrZero(m, pc+2)
		return fmt.Sprintf("%04X  %02X %02X %02X %s $%02X%02X", pc, opcode, lo, hi, e.mnemonic, hi, lo), 3
	case modeAbsX:
		lo, hi := readOrZero(m, pc+1), readOrZero(m, pc+2)
		return fmt.Sprintf("%04X  %02X %02X %02X %s $%02X%02X,X", pc, opcode, lo, hi, e.mnemonic, hi, lo), 3
	case modeAbsY:
		lo, hi := readOrZero(m, pc+1), readOrZero(m, pc+2)
		return fmt.Sprintf("%04X  %02X %02X %02X %s $%02X%02X,Y", pc, opcode, lo, hi, e.mnemonic, hi, lo), 3
	}
	return fmt.Sprintf("%04X  %02X       ???", pc, opcode), 1
}

// six502dbg is an interactive bubbletea TUI for single-stepping a loaded
// program: a memory page table with the current PC highlighted, a status
// panel of registers and flags, a go-test/deep diff of the registers since
// the last step, and a go-spew dump of the current registers.
package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/davecgh/go-spew/spew"
	"github.com/go-test/deep"

	"github.com/staninna/sixfiveohtwo/cpu"
)

type model struct {
	c       *cpu.CPU
	offset  uint16
	prev    cpu.Registers
	lastErr error
	quit    bool
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quit = true
			return m, tea.Quit
		case " ", "j":
			m.prev = *m.c.Registers()
			if err := m.c.Step(); err != nil {
				m.lastErr = err
				return m, tea.Quit
			}
		}
	}
	return m, nil
}

const bytesPerRow = 16

func (m model) renderPage(start uint16) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%04X | ", start)
	pc := m.c.Registers().PC
	for i := uint16(0); i < bytesPerRow; i++ {
		addr := start + i
		v, _ := m.c.ReadMemory(addr)
		if addr == pc {
			fmt.Fprintf(&b, "[%02X] ", v)
		} else {
			fmt.Fprintf(&b, " %02X  ", v)
		}
	}
	return b.String()
}

func (m model) pageTable() string {
	header := "page | "
	for i := 0; i < bytesPerRow; i++ {
		header += fmt.Sprintf("  %01X  ", i)
	}
	rows := []string{header}
	base := m.offset &^ 0x0F
	for i := 0; i < 8; i++ {
		rows = append(rows, m.renderPage(base+uint16(i*bytesPerRow)))
	}
	return strings.Join(rows, "\n")
}

func flagRow(p uint8) string {
	var s strings.Builder
	for _, bit := range []uint8{cpu.FlagNegative, cpu.FlagOverflow, cpu.FlagUnused, cpu.FlagBreak,
		cpu.FlagDecimal, cpu.FlagInterrupt, cpu.FlagZero, cpu.FlagCarry} {
		if p&bit != 0 {
			s.WriteString("/ ")
		} else {
			s.WriteString("  ")
		}
	}
	return s.String()
}

func (m model) status() string {
	r := m.c.Registers()
	return fmt.Sprintf(`
PC: %04X
 A: %02X
 X: %02X
 Y: %02X
SP: %02X
N V U B D I Z C
%s
`, r.PC, r.A, r.X, r.Y, r.SP, flagRow(r.P))
}

func (m model) View() string {
	r := *m.c.Registers()
	diff := deep.Equal(m.prev, r)
	var diffText string
	if diff == nil {
		diffText = "(no change yet)"
	} else {
		diffText = strings.Join(diff, "\n")
	}
	return lipgloss.JoinVertical(
		lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Top, m.pageTable(), m.status()),
		"",
		"register diff since last step:",
		diffText,
		"",
		spew.Sdump(r),
	)
}

func main() {
	if len(os.Args) != 2 {
		log.Fatalf("usage: %s <image>", os.Args[0])
	}
	prog, err := os.ReadFile(os.Args[1])
	if err != nil {
		log.Fatalf("read %q: %v", os.Args[1], err)
	}
	c := cpu.New(prog)
	m := model{c: c, offset: cpu.DefaultLoadAddress, prev: *c.Registers()}
	final, err := tea.NewProgram(m).Run()
	if err != nil {
		log.Fatal(err)
	}
	fm := final.(model)
	if fm.lastErr != nil {
		fmt.Println("halted:", fm.lastErr)
	}
}

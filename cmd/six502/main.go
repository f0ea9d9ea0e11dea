// six502 is the command-line driver for the emulator: load a binary image,
// run it to completion or single-step it, and optionally disassemble it
// or mirror its framebuffer to a window.
package main

import (
	"fmt"
	"log"
	"os"

	"gopkg.in/urfave/cli.v2"

	"github.com/staninna/sixfiveohtwo/cpu"
	"github.com/staninna/sixfiveohtwo/device"
	"github.com/staninna/sixfiveohtwo/disassemble"
)

const (
	fbStart = 0x2000
	fbWidth = 64
	fbHeight = 48
)

func loadImage(path string) ([]byte, error) {
	return os.ReadFile(path)
}

func newMachine(path string, withDisplay bool) (*cpu.CPU, *device.Framebuffer, error) {
	prog, err := loadImage(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read %q: %w", path, err)
	}
	c := cpu.New(prog)
	var fb *device.Framebuffer
	if withDisplay {
		fb = device.NewFramebuffer(fbWidth, fbHeight)
		if err := c.Map(fbStart, fbStart+uint16(fbWidth*fbHeight)-1, fb); err != nil {
			return nil, nil, fmt.Errorf("map framebuffer: %w", err)
		}
	}
	_ = c.Map(0x3000, 0x3000, device.NewStdoutConsole())
	return c, fb, nil
}

type cpuMemory struct{ c *cpu.CPU }

func (m cpuMemory) Read(addr uint16) (uint8, error) { return m.c.ReadMemory(addr) }

func main() {
	app := &cli.App{
		Name:    "six502",
		Usage:   "run and inspect 6502 programs",
		Version: "v0.1.0",
		Commands: []*cli.Command{
			{
				Name:      "run",
				Usage:     "execute a binary image until it errors",
				ArgsUsage: "<image>",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "display", Usage: "mirror the framebuffer region to an SDL window"},
					&cli.IntFlag{Name: "scale", Value: 4, Usage: "display scale factor"},
				},
				Action: func(c *cli.Context) error {
					if c.Args().Len() != 1 {
						return cli.Exit("usage: six502 run <image>", 1)
					}
					machine, fb, err := newMachine(c.Args().Get(0), c.Bool("display"))
					if err != nil {
						return cli.Exit(err.Error(), 1)
					}
					var sink *device.SDLSink
					if fb != nil {
						sink, err = device.NewSDLSink(fb, "six502", c.Int("scale"))
						if err != nil {
							return cli.Exit(err.Error(), 1)
						}
						defer sink.Close()
					}
					err = machine.Run()
					if sink != nil {
						_ = sink.Present()
					}
					if err != nil {
						log.Printf("halted: %v", err)
					}
					return nil
				},
			},
			{
				Name:      "step",
				Usage:     "execute one instruction at a time, printing registers",
				ArgsUsage: "<image> <count>",
				Action: func(c *cli.Context) error {
					if c.Args().Len() != 2 {
						return cli.Exit("usage: six502 step <image> <count>", 1)
					}
					machine, _, err := newMachine(c.Args().Get(0), false)
					if err != nil {
						return cli.Exit(err.Error(), 1)
					}
					count := c.Args().Get(1)
					n := 0
					fmt.Sscanf(count, "%d", &n)
					for i := 0; i < n; i++ {
						if err := machine.Step(); err != nil {
							log.Printf("stopped after %d steps: %v", i, err)
							break
						}
						r := machine.Registers()
						fmt.Printf("PC=%04X A=%02X X=%02X Y=%02X SP=%02X P=%02X\n",
							r.PC, r.A, r.X, r.Y, r.SP, r.P)
					}
					return nil
				},
			},
			{
				Name:      "disasm",
				Usage:     "disassemble a binary image",
				ArgsUsage: "<image>",
				Flags: []cli.Flag{
					&cli.UintFlag{Name: "origin", Value: uint(cpu.DefaultLoadAddress), Usage: "address the image is loaded at"},
				},
				Action: func(c *cli.Context) error {
					if c.Args().Len() != 1 {
						return cli.Exit("usage: six502 disasm <image>", 1)
					}
					prog, err := loadImage(c.Args().Get(0))
					if err != nil {
						return cli.Exit(err.Error(), 1)
					}
					origin := uint16(c.Uint("origin"))
					machine := cpu.WithLoadAddress(prog, origin)
					mem := cpuMemory{c: machine}
					pc := origin
					end := origin + uint16(len(prog))
					for pc < end {
						text, n := disassemble.Step(pc, mem)
						fmt.Println(text)
						pc += uint16(n)
					}
					return nil
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// sixasm reads hand-assembled hex listings and produces a flat binary
// image suitable for cpu.New, the way hand_asm.go turns a text listing
// into a .bin file.
//
// Input lines look like:
//
//	A9 42
//	8D 00 20
//
// one instruction's bytes per line, in hex, space separated. Blank lines
// and lines starting with ';' are ignored.
package main

import (
	"bufio"
	"flag"
	"log"
	"os"
	"strconv"
	"strings"
)

var offset = flag.Int("offset", 0x0000, "Offset to start writing assembled data. Everything prior is zero filled.")

func main() {
	flag.Parse()
	if len(flag.Args()) != 2 {
		log.Fatalf("usage: %s <input> <output>", os.Args[0])
	}
	in, out := flag.Args()[0], flag.Args()[1]

	f, err := os.Open(in)
	if err != nil {
		log.Fatalf("can't open %q for input: %v", in, err)
	}
	defer f.Close()

	var output []byte
	for i := 0; i < *offset; i++ {
		output = append(output, 0x00)
	}

	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		t := strings.TrimSpace(scanner.Text())
		if t == "" || strings.HasPrefix(t, ";") {
			continue
		}
		for _, tok := range strings.Fields(t) {
			b, err := strconv.ParseUint(tok, 16, 8)
			if err != nil {
				log.Fatalf("can't parse byte on line %d %q: %v", line, t, err)
			}
			output = append(output, byte(b))
		}
	}
	if err := scanner.Err(); err != nil {
		log.Fatalf("error reading %q: %v", in, err)
	}

	of, err := os.Create(out)
	if err != nil {
		log.Fatalf("can't open %q for output: %v", out, err)
	}
	defer of.Close()

	n, err := of.Write(output)
	if err != nil {
		log.Fatalf("error writing to %q: %v", out, err)
	}
	if got, want := n, len(output); got != want {
		log.Fatalf("short write to %q: got %d, want %d", out, got, want)
	}
}

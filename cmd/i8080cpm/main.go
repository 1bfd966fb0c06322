// Command i8080cpm runs an 8080 or Z80 CP/M-shim program image: it loads the
// image at 0x0100, runs it against the cpu/memory/ioport/bdos/machine core,
// and proxies BDOS console calls to the real terminal.
package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/bcallahan/i8080cpm/console"
	"github.com/bcallahan/i8080cpm/cpu"
	"github.com/bcallahan/i8080cpm/machine"
)

func main() {
	app := &cli.App{
		Name:      "i8080cpm",
		Usage:     "run a CP/M-shim program image on an emulated 8080 or Z80",
		ArgsUsage: "<image>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "z80",
				Usage: "select the Z80 variant core (shadow registers, EX AF,AF'/EXX)",
			},
			&cli.BoolFlag{
				Name:  "trace",
				Usage: "write one disassembled line per instruction to stderr",
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("i8080cpm: %v", err)
	}
}

func run(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return fmt.Errorf("expected exactly one argument, a program image path")
	}
	path := ctx.Args().Get(0)

	image, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	variant := cpu.I8080
	if ctx.Bool("z80") {
		variant = cpu.Z80
	}

	con, restore, err := console.New(os.Stdin, os.Stdout, os.Stderr)
	if err != nil {
		return fmt.Errorf("putting stdin into raw mode: %w", err)
	}
	defer restore()

	m, err := machine.New(variant, image, con)
	if err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}

	var trace io.Writer
	if ctx.Bool("trace") {
		trace = os.Stderr
	}
	return m.Run(trace)
}

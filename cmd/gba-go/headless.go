package main

import (
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/Div9851/gba-core/internal/cpu"
	"github.com/Div9851/gba-core/internal/logger"
	"github.com/Div9851/gba-core/pkg/emulator"
)

func runHeadless(machine *emulator.Machine, frames int, trace bool) error {
	fd := int(os.Stdout.Fd())
	interactive := term.IsTerminal(fd)
	// trace lines are cut to the terminal width. 0 keeps whole lines
	width := 0
	if interactive {
		logger.SetEcho(os.Stderr)
		if w, _, err := term.GetSize(fd); err == nil {
			width = w
		}
	}

	var err error
	if trace {
		err = runTrace(machine, frames, width)
	} else {
		for range frames {
			if err = machine.RunFrame(); err != nil {
				break
			}
		}
	}

	fmt.Println(machine.CPU())
	if !interactive {
		logger.Write(os.Stderr)
	}
	return err
}

func runTrace(machine *emulator.Machine, frames int, width int) error {
	regs := machine.CPU().Regs
	budget := uint64(frames) * uint64(machine.Config().CyclesPerFrame)
	for spent := uint64(0); spent < budget; {
		pc := regs.PC()
		line := fmt.Sprintf("%08x  %-7s", pc, traceState(regs))
		if inst, err := machine.CPU().Decode(); err == nil {
			line += fmt.Sprintf("%-28s %s", inst.Format(), inst.Condition())
		}

		cycles, err := machine.Step()
		line += fmt.Sprintf("  +%d", cycles)
		if width > 0 && len(line) > width {
			line = line[:width]
		}
		fmt.Println(line)

		if err != nil {
			return err
		}
		spent += uint64(cycles)
	}
	return nil
}

func traceState(regs *cpu.Registers) string {
	if regs.Thumb() {
		return fmt.Sprintf("%s/T", regs.Mode())
	}
	return regs.Mode().String()
}

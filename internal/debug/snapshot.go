package debug

import "fmt"

// CPUState is the register/flag view a Snapshot captures. It mirrors
// cpu.Registers field-for-field but copies by value so callers can hold it
// past the next Step.
type CPUState struct {
	A, F, B, C, D, E, H, L uint8
	SP, PC                 uint16
	IME, Halted            bool
}

// Snapshot is a point-in-time, read-only view of machine state for a
// debugger UI: registers, the pending/enabled interrupt bits, the LCD mode,
// and a short run of disassembly starting at PC.
type Snapshot struct {
	CPU          CPUState
	IF, IE       uint8
	LCDMode      uint8
	NextLines    []Line
	Instructions uint64
	Frames       uint64
}

// String renders a one-line register dump in the teacher's terse debugger
// format: flags as a letter mask, registers as hex pairs.
func (s CPUState) String() string {
	flags := ""
	for _, f := range []struct {
		bit  uint8
		name string
	}{{7, "Z"}, {6, "N"}, {5, "H"}, {4, "C"}} {
		if s.F&(1<<f.bit) != 0 {
			flags += f.name
		} else {
			flags += "-"
		}
	}
	return fmt.Sprintf("A=%02X F=%s BC=%02X%02X DE=%02X%02X HL=%02X%02X SP=%04X PC=%04X",
		s.A, flags, s.B, s.C, s.D, s.E, s.H, s.L, s.SP, s.PC)
}

// Take builds a Snapshot by reading regs/IF/IE/LCD mode through the given
// accessors and disassembling count instructions starting at PC. Kept free
// of any concrete cpu/bus dependency so the debug package never needs to
// import the machine packages it's inspecting.
func Take(cpuState CPUState, ifReg, ieReg, lcdMode uint8, bus Reader, count int, instructions, frames uint64) Snapshot {
	snap := Snapshot{
		CPU:          cpuState,
		IF:           ifReg,
		IE:           ieReg,
		LCDMode:      lcdMode,
		Instructions: instructions,
		Frames:       frames,
	}

	pc := cpuState.PC
	for i := 0; i < count; i++ {
		line := DisassembleAt(pc, bus)
		snap.NextLines = append(snap.NextLines, line)
		pc += uint16(line.Length)
	}

	return snap
}

package cpu

// testBus is a flat 64 KiB memory implementing the Bus interface, used by
// every test in this package in place of the real memory bus.
type testBus struct {
	mem [0x10000]uint8
	ifr uint8
	ier uint8
}

func (b *testBus) Read(addr uint16) uint8      { return b.mem[addr] }
func (b *testBus) Write(addr uint16, v uint8) { b.mem[addr] = v }
func (b *testBus) IF() uint8                   { return b.ifr }
func (b *testBus) SetIF(v uint8)               { b.ifr = v }
func (b *testBus) IE() uint8                   { return b.ier }

// newTestCPU writes a program starting at 0x0100 and sets PC there, matching the
// cartridge entry point every scenario in spec.md §8 assumes.
func newTestCPU(program ...uint8) (*CPU, *testBus) {
	bus := &testBus{}
	for i := range bus.mem {
		bus.mem[i] = 0xFF
	}
	for i, b := range program {
		bus.mem[0x0100+i] = b
	}
	c := New()
	c.reg.PC = 0x0100
	return c, bus
}

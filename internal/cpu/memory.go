package cpu

// classify sorts an address into RAM, MMIO, or neither. mmioBandSize is
// cpu's own routing window starting at MmioBase; cpu only needs to know
// where the band starts and how big it is to route correctly.
const mmioBandSize = 0x1000 // 4 KiB of address space reserved for devices

func (c *Cpu) classify(addr uint32) (isRAM bool, isMmio bool) {
	if uint64(addr) < uint64(len(c.ram)) {
		return true, false
	}
	if addr >= MmioBase && uint64(addr)-uint64(MmioBase) < mmioBandSize {
		return false, true
	}
	return false, false
}

// load reads width bytes starting at addr. Unaligned accesses are
// performed byte-by-byte in little-endian order, per §4.1; they are never
// rejected for alignment. Any address outside RAM and the MMIO band raises
// BusFault.
func (c *Cpu) load(addr uint32, width Width, bus Mmio) (uint32, error) {
	if isRAM, isMmio := c.classify(addr); isRAM {
		return c.loadRAM(addr, width)
	} else if isMmio {
		return bus.Load(addr, width), nil
	}

	return 0, &Trap{Kind: BusFault, Value: addr}
}

func (c *Cpu) loadRAM(addr uint32, width Width) (uint32, error) {
	if uint64(addr)+uint64(width) > uint64(len(c.ram)) {
		return 0, &Trap{Kind: BusFault, Value: addr}
	}

	var v uint32
	for i := Width(0); i < width; i++ {
		v |= uint32(c.ram[addr+uint32(i)]) << (8 * i)
	}
	return v, nil
}

// store writes width bytes of value starting at addr. Same alignment and
// routing rules as load.
func (c *Cpu) store(addr uint32, width Width, value uint32, bus Mmio) error {
	if isRAM, isMmio := c.classify(addr); isRAM {
		return c.storeRAM(addr, width, value)
	} else if isMmio {
		bus.Store(addr, width, value)
		return nil
	}

	return &Trap{Kind: BusFault, Value: addr}
}

func (c *Cpu) storeRAM(addr uint32, width Width, value uint32) error {
	if uint64(addr)+uint64(width) > uint64(len(c.ram)) {
		return &Trap{Kind: BusFault, Value: addr}
	}

	for i := Width(0); i < width; i++ {
		c.ram[addr+uint32(i)] = byte(value >> (8 * i))
	}
	return nil
}

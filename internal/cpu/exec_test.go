package cpu

import "testing"

// nullBus is an Mmio stub for tests that never touch the MMIO band.
type nullBus struct{}

func (nullBus) Load(addr uint32, width Width) uint32         { return 0 }
func (nullBus) Store(addr uint32, width Width, value uint32) {}

// --- tiny RV32I assembler, just enough to build the pinned test vectors ---

func encI(op opcode, rd, funct3, rs1 uint32, imm int32) uint32 {
	return uint32(op) | rd<<7 | funct3<<12 | rs1<<15 | (uint32(imm)&0xFFF)<<20
}

func encR(op opcode, rd, funct3, rs1, rs2, funct7 uint32) uint32 {
	return uint32(op) | rd<<7 | funct3<<12 | rs1<<15 | rs2<<20 | funct7<<25
}

func encB(funct3, rs1, rs2 uint32, imm int32) uint32 {
	u := uint32(imm)
	b11 := (u >> 11) & 0x1
	b4_1 := (u >> 1) & 0xF
	b10_5 := (u >> 5) & 0x3F
	b12 := (u >> 12) & 0x1
	return uint32(opBranch) | b11<<7 | b4_1<<8 | funct3<<12 | rs1<<15 | rs2<<20 | b10_5<<25 | b12<<31
}

func li(rd uint32, imm int32) uint32 { return encI(opOpImm, rd, 0b000, 0, imm) }

const ebreak = 0x00100073

func assemble(words ...uint32) []byte {
	buf := make([]byte, len(words)*4)
	for i, w := range words {
		buf[i*4] = byte(w)
		buf[i*4+1] = byte(w >> 8)
		buf[i*4+2] = byte(w >> 16)
		buf[i*4+3] = byte(w >> 24)
	}
	return buf
}

func mustCpu(t *testing.T, words ...uint32) *Cpu {
	t.Helper()
	c, err := New(assemble(words...), 4096)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func run(t *testing.T, c *Cpu, steps int) {
	t.Helper()
	for i := 0; i < steps; i++ {
		if _, err := c.Step(nullBus{}); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}
}

func TestRemu(t *testing.T) {
	// li x1,-100; li x2,23; remu x3,x1,x2; remu x4,x2,x0
	c := mustCpu(t,
		li(1, -100),
		li(2, 23),
		encR(opOp, 3, 0b111, 1, 2, 0b0000001),
		encR(opOp, 4, 0b111, 2, 0, 0b0000001),
	)
	run(t, c, 4)

	if got := c.Reg(3); got != 4 {
		t.Errorf("x3 = %d, want 4", int32(got))
	}
	if got := c.Reg(4); got != 23 {
		t.Errorf("x4 = %d, want 23", int32(got))
	}
}

func TestRem(t *testing.T) {
	// li x1,-100; li x2,23; rem x3,x1,x2; rem x4,x2,x0
	c := mustCpu(t,
		li(1, -100),
		li(2, 23),
		encR(opOp, 3, 0b110, 1, 2, 0b0000001),
		encR(opOp, 4, 0b110, 2, 0, 0b0000001),
	)
	run(t, c, 4)

	if got := int32(c.Reg(3)); got != -8 {
		t.Errorf("x3 = %d, want -8", got)
	}
	if got := int32(c.Reg(4)); got != 23 {
		t.Errorf("x4 = %d, want 23", got)
	}
}

func TestSrai(t *testing.T) {
	// li x1,123; srai x2,x1,4; srai x3,x1,31
	c := mustCpu(t,
		li(1, 123),
		encI(opOpImm, 2, 0b101, 1, (0b0100000<<5)|4),
		encI(opOpImm, 3, 0b101, 1, (0b0100000<<5)|31),
	)
	run(t, c, 3)

	if got := c.Reg(2); got != 7 {
		t.Errorf("x2 = %d, want 7", got)
	}
	if got := c.Reg(3); got != 0 {
		t.Errorf("x3 = %d, want 0", got)
	}
}

func TestBltTaken(t *testing.T) {
	// li x1,123; li x2,321; li x3,50; blt x1,x2,L; ebreak; L: li x3,60
	c := mustCpu(t,
		li(1, 123),
		li(2, 321),
		li(3, 50),
		encB(0b100, 1, 2, 8), // branch over the ebreak word to L
		ebreak,
		li(3, 60),
	)
	run(t, c, 3)

	outcome, err := c.Step(nullBus{}) // the blt itself
	if err != nil || outcome != Advanced {
		t.Fatalf("blt step: outcome=%v err=%v", outcome, err)
	}

	run(t, c, 1) // li x3,60 — reached directly, ebreak was skipped

	if got := c.Reg(3); got != 60 {
		t.Errorf("x3 = %d, want 60", got)
	}
}

func TestXori(t *testing.T) {
	// li x1,123; xori x2,x1,321
	c := mustCpu(t,
		li(1, 123),
		encI(opOpImm, 2, 0b100, 1, 321),
	)
	run(t, c, 2)

	if got := c.Reg(2); got != 314 {
		t.Errorf("x2 = %d, want 314", got)
	}
}

// TestUnalignedLoad pins §8's cross-word byte-exact unaligned load vector:
// store a known 32-bit pattern at X, then lw at X-1, X, X+1 must each
// produce the three byte-shifted words implied by little-endian memory.
func TestUnalignedLoad(t *testing.T) {
	const base = 64

	c := mustCpu(t)
	c.regs[1] = base
	copy(c.ram[base:base+4], []byte{0xDD, 0xCC, 0xBB, 0xAA}) // 0xAABBCCDD, LE

	loadAt := func(offset int32) uint32 {
		c.pc = 0
		inst := encI(opLoad, 5, 0b010, 1, offset)
		copy(c.ram[0:4], assemble(inst))
		if _, err := c.Step(nullBus{}); err != nil {
			t.Fatalf("load at offset %d: %v", offset, err)
		}
		return c.Reg(5)
	}

	if got, want := loadAt(0), uint32(0xAABBCCDD); got != want {
		t.Errorf("lw(X) = 0x%08x, want 0x%08x", got, want)
	}
	// bytes at X+1..X+4 are CC BB AA <zero>, read little-endian.
	if got, want := loadAt(1), uint32(0x00AABBCC); got != want {
		t.Errorf("lw(X+1) = 0x%08x, want 0x%08x", got, want)
	}
	// bytes at X-1..X+2 are <zero> DD CC BB, read little-endian.
	if got, want := loadAt(-1), uint32(0xBBCCDD00); got != want {
		t.Errorf("lw(X-1) = 0x%08x, want 0x%08x", got, want)
	}
}

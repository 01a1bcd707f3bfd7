package cpu

import "fmt"

// opcode is the low 7 bits of an RV32I/M instruction word.
type opcode uint8

const (
	opLoad    opcode = 0b0000011
	opOpImm   opcode = 0b0010011
	opAuipc   opcode = 0b0010111
	opStore   opcode = 0b0100011
	opOp      opcode = 0b0110011
	opLui     opcode = 0b0110111
	opBranch  opcode = 0b1100011
	opJalr    opcode = 0b1100111
	opJal     opcode = 0b1101111
	opSystem  opcode = 0b1110011
)

// instruction is a decoded instruction word, carrying every field any
// execute handler might need. Unused fields for a given opcode are simply
// not read.
type instruction struct {
	raw    uint32
	op     opcode
	rd     uint32
	rs1    uint32
	rs2    uint32
	funct3 uint32
	funct7 uint32
	imm    int32 // sign-extended immediate for I/S/B/U/J forms
}

// decode splits a raw 32-bit word into an instruction. It returns an error
// only for a handful of structurally malformed encodings (the caller raises
// IllegalInstruction for those); operand validity for a given opcode is
// checked by execute, not here.
func decode(raw uint32) (instruction, error) {
	d := instruction{
		raw:    raw,
		op:     opcode(raw & 0x7F),
		rd:     (raw >> 7) & 0x1F,
		funct3: (raw >> 12) & 0x7,
		rs1:    (raw >> 15) & 0x1F,
		rs2:    (raw >> 20) & 0x1F,
		funct7: (raw >> 25) & 0x7F,
	}

	switch d.op {
	case opLoad, opOpImm, opJalr:
		d.imm = signExtend(raw>>20, 12)

	case opStore:
		lo := (raw >> 7) & 0x1F
		hi := (raw >> 25) & 0x7F
		d.imm = signExtend((hi<<5)|lo, 12)

	case opBranch:
		b11 := (raw >> 7) & 0x1
		b4_1 := (raw >> 8) & 0xF
		b10_5 := (raw >> 25) & 0x3F
		b12 := (raw >> 31) & 0x1
		imm := (b12 << 12) | (b11 << 11) | (b10_5 << 5) | (b4_1 << 1)
		d.imm = signExtend(imm, 13)

	case opLui, opAuipc:
		d.imm = int32(raw & 0xFFFFF000)

	case opJal:
		b19_12 := (raw >> 12) & 0xFF
		b11 := (raw >> 20) & 0x1
		b10_1 := (raw >> 21) & 0x3FF
		b20 := (raw >> 31) & 0x1
		imm := (b20 << 20) | (b19_12 << 12) | (b11 << 11) | (b10_1 << 1)
		d.imm = signExtend(imm, 21)

	case opOp, opSystem:
		// no immediate to decode; funct3/funct7/rs2 carry the operation

	default:
		return instruction{}, fmt.Errorf("cpu: unknown opcode 0b%07b", d.op)
	}

	return d, nil
}

// signExtend sign-extends the low `bits` bits of v.
func signExtend(v uint32, bits uint) int32 {
	shift := 32 - bits
	return int32(v<<shift) >> shift
}

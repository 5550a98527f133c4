package lito

// Instruction is the in-progress (and, on success, final) decoded
// instruction record (spec §3 "Instruction record"). It is caller
// allocated and zeroed and reused across decode calls — the decoder core
// performs no heap allocation on the happy path (spec §5).
type Instruction struct {
	Flags    Flags
	Mnemonic Mnemonic

	// Length is the total number of bytes consumed: 1..15 for a record
	// DecodeInstruction returned true for, 0 when it returned false.
	Length int
	// Data holds the raw bytes consumed, Data[:Length] valid.
	Data [15]byte

	// Opcode holds up to 3 opcode bytes, Opcode[:OpcodeLength] valid.
	Opcode      [3]byte
	OpcodeLength int

	OperandMode int // effective operand size in bits: 16/32/64
	AddressMode int // effective address size in bits: 16/32/64

	Operands [4]Operand

	Segment Register // RegNone if no segment override observed

	// REX.
	RexRaw          byte
	RexW, RexR, RexX, RexB bool

	// ModR/M.
	ModRMRaw      byte
	ModRMDecoded  bool
	Mod, Reg, Rm  uint8

	// SIB.
	SIBRaw             byte
	SIBDecoded         bool
	Scale, Index, Base uint8

	// Displacement, cached the same way ModR/M and SIB are: a node that
	// must walk past a memory operand's addressing bytes ahead of the
	// operand decoder proper (the 3DNow! trailing selector byte, spec
	// §4.3) and the operand decoder itself both resolve the same bytes
	// without either re-consuming input the other already read.
	DispRaw     uint32
	DispDecoded bool

	// VEX / XOP.
	VexPresent  bool
	VexXOP      bool // true if the primary byte was 0x8F (XOP) rather than 0xC4/0xC5
	VexByte0    byte
	VexByte1    byte
	VexByte2    byte
	VexR, VexX, VexB bool
	VexMMMMM    uint8
	VexW        bool
	VexVVVV     uint8
	VexL        bool
	VexPP       uint8

	// Effective extension/size-control bits, after masking raw REX/VEX
	// bits by the committed definition's "accepts" flags (spec §4.6).
	EffR, EffX, EffB, EffW bool
	EffVexL                bool

	// Def is the committed instruction definition, nil until the opcode
	// walker reaches a leaf.
	Def *InstructionDefinition

	InstrAddress uint64
	InstrPointer uint64

	mode   Mode
	vendor Vendor
}

// Reset zeroes the record for reuse, matching the teacher's Instruction
// pooling convention (server/generate/lito/types.go's Instruction.Reset).
func (r *Instruction) Reset() {
	*r = Instruction{mode: r.mode, vendor: r.vendor}
}

// regExt returns ModR/M.reg merged with the effective extension bit (spec
// §4.5 "Extended versions ... recomputed on demand").
func (r *Instruction) regExt() int {
	b := 0
	if r.EffR {
		b = 1
	}
	return b<<3 | int(r.Reg)
}

// rmExt returns ModR/M.rm merged with the effective B extension bit.
func (r *Instruction) rmExt() int {
	b := 0
	if r.EffB {
		b = 1
	}
	return b<<3 | int(r.Rm)
}

func (r *Instruction) sibIndexExt() int {
	b := 0
	if r.EffX {
		b = 1
	}
	return b<<3 | int(r.Index)
}

func (r *Instruction) sibBaseExt() int {
	b := 0
	if r.EffB {
		b = 1
	}
	return b<<3 | int(r.Base)
}

// fail raises one or more error bits on the record. Callers check
// r.Flags.Any(ErrorMask) after any operation that can fail.
func (r *Instruction) fail(bits Flags) {
	r.Flags |= bits
}

func (r *Instruction) failed() bool {
	return r.Flags.Any(ErrorMask)
}

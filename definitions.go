package lito

// DefFlags is the per-instruction-definition flag word (spec §3
// "Instruction definition").
type DefFlags uint16

const (
	AcceptsRexB DefFlags = 1 << iota
	AcceptsRexX
	AcceptsRexR
	AcceptsRexW
	AcceptsVexL
	Invalid64       // instruction does not exist in 64-bit mode
	Default64       // defaults to 64-bit operand size in 64-bit mode absent overrides
	Operand1Write   // operand[0] access mode is Write
	Operand1RW      // operand[0] access mode is ReadWrite
	Operand2Write   // operand[1] access mode is Write
	Operand2RW      // operand[1] access mode is ReadWrite
)

// Has reports whether every bit in mask is set.
func (f DefFlags) Has(mask DefFlags) bool { return f&mask == mask }

// operandDef is one (type, size) slot of an InstructionDefinition.
type operandDef struct {
	typ  OpType
	size OpSize
}

// InstructionDefinition is a leaf of the opcode tree: a mnemonic, up to
// four operand slots, and the flag word controlling REX/VEX acceptance and
// default access modes (spec §3).
type InstructionDefinition struct {
	Mnemonic Mnemonic
	Operands [4]operandDef
	Flags    DefFlags
}

func def(mnemonic Mnemonic, flags DefFlags, ops ...operandDef) InstructionDefinition {
	var d InstructionDefinition
	d.Mnemonic = mnemonic
	d.Flags = flags
	copy(d.Operands[:], ops)
	return d
}

func o(t OpType, s OpSize) operandDef { return operandDef{typ: t, size: s} }

package lito

/*
 * Operand Materialization (spec §4.7)
 *
 * Walks an InstructionDefinition's four operand slots left to right,
 * stopping at the first opNone slot (spec §3 invariant: "once one operand
 * is None every later operand is None"), and fills in rec.Operands from
 * whatever mix of ModR/M, SIB, displacement and immediate bytes each
 * defined operand type requires.
 */

// accessFor reads the per-slot access mode out of the definition's flag
// word. Slots 2 and 3 have no override bits defined (spec §3's flag word
// only carries Operand1/Operand2 overrides); every instruction wired into
// this decoder keeps its third and fourth operand, when present,
// read-only.
func accessFor(def *InstructionDefinition, slot int) AccessMode {
	switch slot {
	case 0:
		if def.Flags.Has(Operand1RW) {
			return AccessReadWrite
		}
		if def.Flags.Has(Operand1Write) {
			return AccessWrite
		}
		return AccessRead
	case 1:
		if def.Flags.Has(Operand2RW) {
			return AccessReadWrite
		}
		if def.Flags.Has(Operand2Write) {
			return AccessWrite
		}
		return AccessRead
	default:
		return AccessRead
	}
}

// decodeOperands fills rec.Operands per def. It returns false (with an
// error Flag already set on rec) if any underlying byte read fails.
func decodeOperands(src ByteSource, rec *Instruction, def *InstructionDefinition) bool {
	st := sizeState{mode: rec.mode, operandMode: rec.OperandMode, effVexL: rec.EffVexL}

	for i := 0; i < 4; i++ {
		opdef := def.Operands[i]
		if opdef.typ == opNone {
			break
		}
		op := &rec.Operands[i]
		op.Access = accessFor(def, i)
		if !materializeOperand(src, rec, opdef, st, op) {
			return false
		}
	}
	return true
}

func materializeOperand(src ByteSource, rec *Instruction, opdef operandDef, st sizeState, op *Operand) bool {
	size := resolveSize(opdef.size, st)

	// M accepts only the memory form of ModR/M; R, N and U accept only the
	// register form (mod == 0b11). The other form is an operand error.
	switch opdef.typ {
	case opM, opR, opN, opU:
		if !ensureModRM(src, rec) {
			return false
		}
		if (rec.Mod == 0b11) == (opdef.typ == opM) {
			rec.fail(FlagOperand)
			return false
		}
	}

	switch opdef.typ {
	// Fixed register literals.
	case opAL:
		setRegisterOperand(op, AL, 8)
	case opAX:
		setRegisterOperand(op, AX, 16)
	case opEAX:
		setRegisterOperand(op, EAX, 32)
	case opRAX:
		setRegisterOperand(op, RAX, 64)
	case opCL:
		setRegisterOperand(op, CL, 8)
	case opCX:
		setRegisterOperand(op, CX, 16)
	case opECX:
		setRegisterOperand(op, ECX, 32)
	case opRCX:
		setRegisterOperand(op, RCX, 64)
	case opDL:
		setRegisterOperand(op, DL, 8)
	case opDX:
		setRegisterOperand(op, DX, 16)
	case opEDX:
		setRegisterOperand(op, EDX, 32)
	case opRDX:
		setRegisterOperand(op, RDX, 64)
	case opES:
		setRegisterOperand(op, ES, 16)
	case opCS:
		setRegisterOperand(op, CS, 16)
	case opSS:
		setRegisterOperand(op, SS, 16)
	case opDS:
		setRegisterOperand(op, DS, 16)
	case opFS:
		setRegisterOperand(op, FS, 16)
	case opGS:
		setRegisterOperand(op, GS, 16)
	case opST0:
		setRegisterOperand(op, ST0, 80)
	case opST1:
		setRegisterOperand(op, ST1, 80)
	case opST2:
		setRegisterOperand(op, ST2, 80)
	case opST3:
		setRegisterOperand(op, ST3, 80)
	case opST4:
		setRegisterOperand(op, ST4, 80)
	case opST5:
		setRegisterOperand(op, ST5, 80)
	case opST6:
		setRegisterOperand(op, ST6, 80)
	case opST7:
		setRegisterOperand(op, ST7, 80)

	case opZAX:
		op.Kind = OperandRegister
		op.Size = size
		op.Base = makeRegister(classGP, 0, size, rec.Flags.Has(FlagRex) || rec.VexPresent)

	case opI1:
		op.Kind = OperandConstant
		op.Size = 8
		op.setValue(1)

	// Opcode-embedded register, low 3 bits of the last opcode byte,
	// extended by the effective B bit (spec §4.7).
	case opR0, opR1, opR2, opR3, opR4, opR5, opR6, opR7:
		lastByte := rec.Opcode[rec.OpcodeLength-1]
		id := int(lastByte&0x7) | boolBit(rec.EffB)<<3
		op.Kind = OperandRegister
		op.Size = size
		op.Base = makeRegister(classGP, id, size, rec.Flags.Has(FlagRex) || rec.VexPresent)

	// ModR/M.reg-selected registers.
	case opG:
		if !ensureModRM(src, rec) {
			return false
		}
		op.Kind = OperandRegister
		op.Size = size
		op.Base = makeRegister(classGP, rec.regExt(), size, rec.Flags.Has(FlagRex) || rec.VexPresent)
	case opC:
		if !ensureModRM(src, rec) {
			return false
		}
		op.Kind = OperandRegister
		op.Size = size
		op.Base = makeRegister(classControl, rec.regExt(), size, true)
	case opD:
		if !ensureModRM(src, rec) {
			return false
		}
		op.Kind = OperandRegister
		op.Size = size
		op.Base = makeRegister(classDebug, rec.regExt(), size, true)
	case opS:
		if !ensureModRM(src, rec) {
			return false
		}
		op.Kind = OperandRegister
		op.Size = size
		op.Base = makeRegister(classSegment, int(rec.Reg), size, true)
	case opP:
		if !ensureModRM(src, rec) {
			return false
		}
		op.Kind = OperandRegister
		op.Size = size
		op.Base = makeRegister(classMMX, int(rec.Reg), size, true)
	case opV:
		if !ensureModRM(src, rec) {
			return false
		}
		op.Kind = OperandRegister
		op.Size = size
		op.Base = makeRegister(classXMM, rec.regExt(), size, true)

	// VEX.vvvv-selected register (stored inverted in the encoding).
	case opH:
		id := int(^rec.VexVVVV) & 0xF
		op.Kind = OperandRegister
		op.Size = size
		op.Base = makeRegister(classXMM, id, size, true)

	// Register id taken from an immediate's high nibble (VEX /is4 form).
	case opL:
		b := src.Consume(rec)
		if rec.failed() {
			return false
		}
		op.Kind = OperandRegister
		op.Size = size
		op.Base = makeRegister(classXMM, int(b>>4)&0xF, size, true)

	// Register-or-memory types.
	case opE, opM, opMR, opR:
		return decodeRegOrMem(src, rec, op, classGP, size)
	case opN, opQ:
		return decodeRegOrMem(src, rec, op, classMMX, size)
	case opU, opW, opMU:
		return decodeRegOrMem(src, rec, op, classXMM, size)

	// Immediates.
	case opI:
		v := src.ConsumeWide(rec, size/8)
		if rec.failed() {
			return false
		}
		op.Kind = OperandImmediate
		op.Size = size
		op.setValue(v)
	case opSI:
		v := src.ConsumeWide(rec, size/8)
		if rec.failed() {
			return false
		}
		op.Kind = OperandImmediate
		op.Size = size
		op.Signed = true
		op.setValue(v)
	case opJ:
		v := src.ConsumeWide(rec, size/8)
		if rec.failed() {
			return false
		}
		op.Kind = OperandRelativeImmediate
		op.Size = size
		op.Signed = true
		op.setValue(v)
		rec.Flags |= FlagRelative
	case opO:
		width := rec.AddressMode / 8
		v := src.ConsumeWide(rec, width)
		if rec.failed() {
			return false
		}
		op.Kind = OperandPointer
		op.Size = size
		op.setValue(v)
	case opA:
		offset := src.ConsumeWide(rec, size/8)
		if rec.failed() {
			return false
		}
		seg := src.ConsumeWide(rec, 2)
		if rec.failed() {
			return false
		}
		op.Kind = OperandPointer
		op.Size = size
		op.setValue(offset | seg<<48)

	default:
		rec.fail(FlagInvalid)
		return false
	}

	return true
}

func setRegisterOperand(op *Operand, reg Register, size int) {
	op.Kind = OperandRegister
	op.Size = size
	op.Base = reg
}

func boolBit(b bool) int {
	if b {
		return 1
	}
	return 0
}

// decodeRegOrMem materializes a composite reg-or-memory operand (spec
// §4.7's E/M/N/Q/U/W family), branching on ModR/M.mod.
func decodeRegOrMem(src ByteSource, rec *Instruction, op *Operand, class regClass, size int) bool {
	if !ensureModRM(src, rec) {
		return false
	}
	if rec.Mod == 0b11 {
		op.Kind = OperandRegister
		op.Size = size
		op.Base = makeRegister(class, rec.rmExt(), size, rec.Flags.Has(FlagRex) || rec.VexPresent)
		return true
	}
	return decodeMemory(src, rec, op, size)
}

// decodeMemory materializes the Memory operand addressed by the current
// ModR/M (and, if present, SIB) per spec §4.7's 16-bit and 32/64-bit
// addressing tables.
func decodeMemory(src ByteSource, rec *Instruction, op *Operand, size int) bool {
	op.Kind = OperandMemory
	op.Size = size

	if rec.AddressMode == 16 {
		return decodeMemory16(src, rec, op)
	}
	return decodeMemory3264(src, rec, op)
}

var mem16Bases = [8][2]Register{
	{BX, SI}, {BX, DI}, {BP, SI}, {BP, DI},
	{SI, RegNone}, {DI, RegNone}, {BP, RegNone}, {BX, RegNone},
}

func decodeMemory16(src ByteSource, rec *Instruction, op *Operand) bool {
	if rec.Mod == 0b00 && rec.Rm == 0b110 {
		v, ok := ensureDisplacement(src, rec, 2)
		if !ok {
			return false
		}
		op.DispWidth = 16
		op.setValue(v)
		return true
	}

	pair := mem16Bases[rec.Rm]
	op.Base = pair[0]
	op.Index = pair[1]

	switch rec.Mod {
	case 0b01:
		v, ok := ensureDisplacement(src, rec, 1)
		if !ok {
			return false
		}
		op.DispWidth = 8
		op.setValue(signExtend(v, 8))
	case 0b10:
		v, ok := ensureDisplacement(src, rec, 2)
		if !ok {
			return false
		}
		op.DispWidth = 16
		op.setValue(signExtend(v, 16))
	}
	return true
}

func decodeMemory3264(src ByteSource, rec *Instruction, op *Operand) bool {
	addrSize := rec.AddressMode

	if needsSIB(rec) {
		if !ensureSIB(src, rec) {
			return false
		}
		scale := sibScale(rec.Scale)
		indexID := rec.sibIndexExt()
		if indexID != 0b100 {
			op.Index = makeRegister(classGP, indexID, addrSize, true)
			op.Scale = scale
		}

		baseID := rec.sibBaseExt()
		if rec.Mod == 0b00 && baseID&0x7 == 0b101 {
			v, ok := ensureDisplacement(src, rec, 4)
			if !ok {
				return false
			}
			op.DispWidth = 32
			op.setValue(signExtend(v, 32))
			return true
		}
		op.Base = makeRegister(classGP, baseID, addrSize, true)
	} else if rec.Mod == 0b00 && rec.Rm == 0b101 {
		v, ok := ensureDisplacement(src, rec, 4)
		if !ok {
			return false
		}
		op.DispWidth = 32
		op.setValue(signExtend(v, 32))
		if rec.AddressMode == 64 {
			op.Base = RIP
			rec.Flags |= FlagRelative
		}
		return true
	} else {
		op.Base = makeRegister(classGP, rec.rmExt(), addrSize, true)
	}

	switch rec.Mod {
	case 0b01:
		v, ok := ensureDisplacement(src, rec, 1)
		if !ok {
			return false
		}
		op.DispWidth = 8
		op.setValue(signExtend(v, 8))
	case 0b10:
		v, ok := ensureDisplacement(src, rec, 4)
		if !ok {
			return false
		}
		op.DispWidth = 32
		op.setValue(signExtend(v, 32))
	}
	return true
}

func signExtend(v uint64, bits int) uint64 {
	shift := uint(64 - bits)
	return uint64(int64(v<<shift) >> shift)
}

package lito

/*
 * ModR/M and SIB decode (spec §4.5)
 *
 * Both are lazily decoded on first demand and cached — ModRMDecoded /
 * SIBDecoded — because several opcode-tree node types (ModRmMod, ModRmReg,
 * ModRmRm, X87) and the operand decoder all need the same byte(s) without
 * re-consuming input.
 */

func ensureModRM(src ByteSource, rec *Instruction) bool {
	if rec.ModRMDecoded {
		return true
	}
	b := src.Consume(rec)
	if rec.failed() {
		return false
	}
	rec.ModRMRaw = b
	rec.Mod = (b >> 6) & 0x3
	rec.Reg = (b >> 3) & 0x7
	rec.Rm = b & 0x7
	rec.ModRMDecoded = true
	rec.Flags |= FlagModRM
	return true
}

func needsSIB(rec *Instruction) bool {
	return rec.AddressMode != 16 && rec.Rm == 0b100 && rec.Mod != 0b11
}

func ensureSIB(src ByteSource, rec *Instruction) bool {
	if rec.SIBDecoded {
		return true
	}
	b := src.Consume(rec)
	if rec.failed() {
		return false
	}
	rec.SIBRaw = b
	rec.Scale = (b >> 6) & 0x3
	rec.Index = (b >> 3) & 0x7
	rec.Base = b & 0x7
	rec.SIBDecoded = true
	rec.Flags |= FlagSIB
	return true
}

// ensureDisplacement reads a width-byte (1, 2, or 4) displacement once and
// caches the raw value, mirroring ensureModRM/ensureSIB's lazy-decode-and-
// cache discipline so that a node which must walk past an addressing byte
// sequence before the operand decoder runs doesn't make the operand decoder
// read its own second copy of the same bytes.
func ensureDisplacement(src ByteSource, rec *Instruction, width int) (uint64, bool) {
	if rec.DispDecoded {
		return uint64(rec.DispRaw), true
	}
	v := src.ConsumeWide(rec, width)
	if rec.failed() {
		return 0, false
	}
	rec.DispRaw = uint32(v)
	rec.DispDecoded = true
	return v, true
}

// sibScale turns the 2-bit SIB.scale field into the defined multiplier
// (spec §4.7: "scale = 1 << sib.scale ... AND with ~1 so 1->0, 2->2, 4->4,
// 8->8" — i.e. a scale of 1 collapses to "no scale" since an index with
// multiplier 1 is indistinguishable from an unscaled index).
func sibScale(raw uint8) uint8 {
	s := uint8(1) << raw
	return s &^ 1
}

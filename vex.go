package lito

/*
 * VEX / XOP decode (spec §4.4)
 *
 * Entered only for the three opcode-tree root slots 0xC4, 0xC5 and 0x8F,
 * each already consumed as opcode[0] by the time the walker reaches here.
 * In 16/32-bit mode those three bytes are ambiguous with the legacy
 * LES/LDS/POP-group opcodes; real hardware (and this decoder) disambiguates
 * by peeking the byte that would otherwise be ModR/M: LES/LDS/etc. always
 * address memory, so a following byte whose top two bits are 0b11 (mod ==
 * register-direct) cannot be one of them and must be VEX/XOP instead.
 */

// tryVex attempts to decode a VEX/XOP prefix given that primary (0xC4,
// 0xC5, or 0x8F) was just consumed as opcode[0]. It returns false without
// setting any error flag when the bytes turn out not to encode VEX/XOP
// (32/16-bit mode ambiguity), in which case the caller falls back to the
// opcode tree's legacy-instruction child.
func tryVex(src ByteSource, rec *Instruction, primary byte) bool {
	if rec.mode != Mode64 {
		next := src.Peek(rec)
		if rec.failed() {
			return false
		}
		if next&0xC0 != 0xC0 {
			return false
		}
	}

	rec.VexByte0 = primary
	rec.VexXOP = primary == 0x8F

	if primary == 0xC5 {
		b1 := src.Consume(rec)
		if rec.failed() {
			return false
		}
		rec.VexByte1 = b1
		rec.VexR = b1&0x80 != 0
		rec.VexX = true
		rec.VexB = true
		rec.VexMMMMM = 1
		rec.VexW = false
		rec.VexVVVV = (b1 >> 3) & 0xF
		rec.VexL = b1&0x04 != 0
		rec.VexPP = b1 & 0x03
	} else {
		b1 := src.Consume(rec)
		if rec.failed() {
			return false
		}
		b2 := src.Consume(rec)
		if rec.failed() {
			return false
		}
		rec.VexByte1 = b1
		rec.VexByte2 = b2
		rec.VexR = b1&0x80 != 0
		rec.VexX = b1&0x40 != 0
		rec.VexB = b1&0x20 != 0
		rec.VexMMMMM = b1 & 0x1F
		if rec.VexMMMMM > 3 {
			rec.fail(FlagInvalid)
			return false
		}
		rec.VexW = b2&0x80 != 0
		rec.VexVVVV = (b2 >> 3) & 0xF
		rec.VexL = b2&0x04 != 0
		rec.VexPP = b2 & 0x03
	}

	rec.VexPresent = true
	rec.Flags |= FlagVex
	return true
}

// vexDispatchIndex is the Vex node's 16-way fan-out selector.
func (r *Instruction) vexDispatchIndex() int {
	return int(r.VexMMMMM) | int(r.VexPP)<<2
}

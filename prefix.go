package lito

/*
 * Prefix Scanner
 *
 * Peeks the next byte, classifies it, and either consumes it and loops or
 * leaves it for the Opcode Walker. Chosen discipline for the 64-bit REX
 * prefix (spec §9 design note 4, "the exact set of prefixes that may
 * legally follow a REX byte in 64-bit mode is ambiguous in the source"):
 * REX must be the final prefix. Once FlagRex is set the loop stops without
 * peeking again, so any further legacy-prefix-looking byte is rejected
 * into the opcode stream rather than folded into the prefix set.
 */

func scanPrefixes(src ByteSource, rec *Instruction) {
	for {
		if rec.Flags.Has(FlagRex) {
			return
		}

		b := src.Peek(rec)
		if rec.failed() {
			return
		}

		switch b {
		case 0xF0:
			rec.Flags |= FlagLock
		case 0xF2:
			// spec §4.2 main rule: REPNE, last-wins against REP. (The
			// reference source's transcription bug that sets REP here
			// instead is noted but not replicated — see DESIGN.md, Open
			// Question 1.)
			rec.Flags |= FlagRepne
			rec.Flags &^= FlagRep
		case 0xF3:
			rec.Flags |= FlagRep
			rec.Flags &^= FlagRepne
		case 0x2E:
			rec.Flags |= FlagSegment
			rec.Segment = CS
		case 0x36:
			rec.Flags |= FlagSegment
			rec.Segment = SS
		case 0x3E:
			rec.Flags |= FlagSegment
			rec.Segment = DS
		case 0x26:
			rec.Flags |= FlagSegment
			rec.Segment = ES
		case 0x64:
			rec.Flags |= FlagSegment
			rec.Segment = FS
		case 0x65:
			rec.Flags |= FlagSegment
			rec.Segment = GS
		case 0x66:
			rec.Flags |= FlagOperandSize
		case 0x67:
			rec.Flags |= FlagAddressSize
		default:
			if rec.mode == Mode64 && b >= 0x40 && b <= 0x4F {
				rec.Flags |= FlagRex
				rec.RexRaw = b
				rec.RexW = b&0x08 != 0
				rec.RexR = b&0x04 != 0
				rec.RexX = b&0x02 != 0
				rec.RexB = b&0x01 != 0
			} else {
				return
			}
		}

		src.Consume(rec)
		if rec.failed() {
			return
		}
	}
}

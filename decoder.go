package lito

/*
 * Decoder - top-level orchestrator (spec §4.8, §6)
 *
 * Owns nothing but the CPU mode and preferred vendor for a decode session;
 * all per-instruction state lives on the caller-owned Instruction record.
 * A Decoder is safe to reuse across many DecodeInstruction calls and many
 * ByteSources but, like the record it fills in, is not safe for concurrent
 * use by more than one goroutine at a time (spec §5).
 */

// Decoder drives one CPU-mode-scoped decode session.
type Decoder struct {
	mode   Mode
	vendor Vendor
}

// NewDecoder constructs a Decoder for the given CPU mode with no vendor
// preference (VendorAny).
func NewDecoder(mode Mode) *Decoder {
	return &Decoder{mode: mode, vendor: VendorAny}
}

// Mode reports the decoder's configured CPU mode.
func (d *Decoder) Mode() Mode { return d.mode }

// Vendor reports the decoder's configured vendor preference.
func (d *Decoder) Vendor() Vendor { return d.vendor }

// SetMode reconfigures the CPU mode for subsequent DecodeInstruction calls.
func (d *Decoder) SetMode(m Mode) { d.mode = m }

// SetVendor reconfigures the vendor preference used to resolve
// Intel/AMD-divergent opcode-tree nodes.
func (d *Decoder) SetVendor(v Vendor) { d.vendor = v }

// DecodeInstruction decodes one instruction from src into rec.
//
// It returns true whenever rec was filled in with a usable record — which
// includes the single-byte invalid-record case, so callers can advance
// past bad bytes and keep resynchronizing with the stream (spec §7). It
// returns false only when no instruction, valid or invalid, can currently
// be produced because the source has run out of bytes (spec §8 scenario:
// a truncated instruction at end of input yields length 0 and false, not
// a partial or invalid record).
func (d *Decoder) DecodeInstruction(src ByteSource, rec *Instruction) bool {
	rec.Reset()
	rec.mode = d.mode
	rec.vendor = d.vendor
	rec.Flags = modeFlag(d.mode)
	rec.InstrPointer = src.Position()

	scanPrefixes(src, rec)
	if rec.failed() {
		return d.rollback(src, rec)
	}

	def := walkOpcodeTree(src, rec)
	if rec.failed() || def == nil {
		return d.rollback(src, rec)
	}
	rec.Def = def
	rec.Mnemonic = def.Mnemonic

	resolveEffectiveBits(rec, def)
	rec.AddressMode = resolveAddressMode(rec)
	rec.OperandMode = resolveOperandMode(rec, def)

	if def.Flags.Has(Invalid64) && rec.mode == Mode64 {
		rec.fail(FlagInvalid64)
		return d.rollback(src, rec)
	}

	// SWAPGS exists only in 64-bit mode; the opcode-tree slot it occupies
	// is otherwise unassigned in 16/32-bit mode addressing, so this is the
	// one mnemonic that needs an explicit existence check rather than a
	// DefFlags bit (spec §4.8).
	if rec.Mnemonic == SWAPGS && rec.mode != Mode64 {
		rec.fail(FlagInvalid)
		return d.rollback(src, rec)
	}

	if !decodeOperands(src, rec, def) {
		return d.rollback(src, rec)
	}

	aliasMnemonic(rec)

	return true
}

// aliasMnemonic rewrites a handful of mnemonics whose real identity
// depends on decoded operand values or surviving prefix flags rather than
// on opcode-tree position alone (spec §4.8):
//   - XCHG (e)AX, (e)AX is the textbook encoding of NOP.
//   - NOP preceded by an (unclaimed) REP prefix is PAUSE.
func aliasMnemonic(rec *Instruction) {
	if rec.Mnemonic == XCHG {
		a, b := &rec.Operands[0], &rec.Operands[1]
		if a.Kind == OperandRegister && b.Kind == OperandRegister && a.Base == b.Base &&
			(a.Base == AX || a.Base == EAX) {
			rec.Mnemonic = NOP
			*a = Operand{}
			*b = Operand{}
		}
	}
	if rec.Mnemonic == NOP && rec.Flags.Has(FlagRep) {
		rec.Mnemonic = PAUSE
		rec.Flags &^= FlagRep
	}
}

// rollback implements spec §7's byte-exact error recovery. End-of-input
// discards everything read this attempt and reports failure, so a caller
// retrying later (once more bytes exist) starts clean. Every other error
// condition collapses the record to its first byte, seeks the source back
// to immediately past that byte, and reports an invalid-but-usable record
// — the self-synchronizing behavior that lets a caller skip one byte and
// keep decoding a stream that contains garbage.
func (d *Decoder) rollback(src ByteSource, rec *Instruction) bool {
	preserved := rec.Flags & (ModeMask | ErrorMask)
	start := rec.InstrPointer
	first := rec.Data[0]
	rec.Reset()
	rec.Flags = preserved
	rec.InstrPointer = start

	if preserved.Has(FlagEndOfInput) {
		src.Seek(start)
		return false
	}

	src.Seek(start + 1)
	rec.Data[0] = first
	rec.Length = 1
	return true
}

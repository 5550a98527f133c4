package lito

import "errors"

/*
 * Flags - single bitset on the Instruction record
 *
 * Novel approach vs. the length-only flag struct this package started
 * from: one flat bitset instead of a handful of named bools, so the
 * decoder mode, every observed prefix and every error condition can all be
 * masked, copied and compared in one operation (see the error-path
 * rollback in decoder.go, which needs to preserve exactly the mode bits
 * plus the error mask and zero everything else).
 */

// Flags is a bitset recording which decoder mode was used, which prefixes
// were observed, and which error conditions (if any) were raised while
// decoding an instruction.
type Flags uint32

const (
	// Mode bits. Exactly one is set, mirroring the Mode the decoder was
	// constructed or configured with.
	FlagMode16 Flags = 1 << iota
	FlagMode32
	FlagMode64

	// Prefix bits.
	FlagLock
	FlagRep
	FlagRepne
	FlagSegment
	FlagOperandSize
	FlagAddressSize
	FlagRex
	FlagVex
	FlagModRM
	FlagSIB
	FlagRelative

	// Error bits.
	FlagEndOfInput
	FlagOverlength
	FlagInvalid
	FlagInvalid64
	FlagOperand
)

// ErrorMask is the union of every error bit. Any decode that sets a bit in
// this mask is aborted: FlagEndOfInput makes DecodeInstruction return false,
// every other bit yields a one-byte invalid record (spec §7).
const ErrorMask = FlagEndOfInput | FlagOverlength | FlagInvalid | FlagInvalid64 | FlagOperand

// ModeMask is the union of the three mode bits.
const ModeMask = FlagMode16 | FlagMode32 | FlagMode64

func modeFlag(m Mode) Flags {
	switch m {
	case Mode16:
		return FlagMode16
	case Mode32:
		return FlagMode32
	default:
		return FlagMode64
	}
}

// Has reports whether every bit in mask is set.
func (f Flags) Has(mask Flags) bool { return f&mask == mask }

// Any reports whether at least one bit in mask is set.
func (f Flags) Any(mask Flags) bool { return f&mask != 0 }

// Sentinel errors for the convenience API (InstructionStream, CLI). The
// decoder core itself never returns these — per-field decode failures are
// recorded as Flags on the Instruction record, not as Go errors (spec §7).
var (
	// ErrShortRead names a multi-byte read that found fewer bytes than
	// requested. No function in this package returns it: the ByteSource
	// implementations record that condition as FlagEndOfInput.
	ErrShortRead = errors.New("lito: short read from byte source")
	// ErrSeekOutOfRange names a seek outside the byte source's bounds. No
	// function in this package returns it: ByteSource.Seek reports that
	// case by returning false.
	ErrSeekOutOfRange = errors.New("lito: seek position out of range")
	// ErrStreamInvalidByte is returned by InstructionStream.ParseAllStrict
	// when an invalid-byte record is encountered.
	ErrStreamInvalidByte = errors.New("lito: invalid byte encountered while parsing stream")
)

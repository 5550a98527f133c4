package lito

/*
 * Convenience API - whole-buffer and stream helpers built on Decoder
 *
 * Novel implementation inspired by length disassembly techniques from
 * malware analysis, extended into a full instruction decoder with modern
 * Go idioms: proper error handling, x64 support, and no global state.
 */

import "fmt"

// InstructionStream decodes an entire byte buffer into a sequence of
// Instruction records.
type InstructionStream struct {
	Code         []byte
	Instructions []Instruction
	mode         Mode
	vendor       Vendor
}

// NewInstructionStream creates a stream over code for the given CPU mode.
func NewInstructionStream(code []byte, mode Mode) *InstructionStream {
	return &InstructionStream{Code: code, mode: mode}
}

// SetVendor configures the vendor preference used while parsing.
func (s *InstructionStream) SetVendor(v Vendor) { s.vendor = v }

// ParseAll decodes every instruction in the stream, stopping cleanly when
// the tail of the buffer is a truncated instruction (spec §7's
// end-of-input case is not an error here — it just ends the stream).
// Invalid bytes are not treated as fatal: the decoder's self-synchronizing
// rollback already produces a one-byte invalid record and advances, so
// ParseAll keeps going and the caller can inspect Mnemonic == Invalid
// records afterward.
func (s *InstructionStream) ParseAll() error {
	src := NewFixedSource(s.Code)
	dec := NewDecoder(s.mode)
	dec.SetVendor(s.vendor)

	for {
		var rec Instruction
		if !dec.DecodeInstruction(src, &rec) {
			return nil
		}
		s.Instructions = append(s.Instructions, rec)
	}
}

// ParseAllStrict behaves like ParseAll but stops and returns
// ErrStreamInvalidByte on the first invalid-byte record.
func (s *InstructionStream) ParseAllStrict() error {
	src := NewFixedSource(s.Code)
	dec := NewDecoder(s.mode)
	dec.SetVendor(s.vendor)

	for {
		var rec Instruction
		if !dec.DecodeInstruction(src, &rec) {
			return nil
		}
		if rec.failed() {
			return ErrStreamInvalidByte
		}
		s.Instructions = append(s.Instructions, rec)
	}
}

// GetTotalLength returns the total length of all decoded instructions.
func (s *InstructionStream) GetTotalLength() int {
	total := 0
	for i := range s.Instructions {
		total += s.Instructions[i].Length
	}
	return total
}

// GetControlFlowInstructions returns only control-flow instructions.
func (s *InstructionStream) GetControlFlowInstructions() []*Instruction {
	var out []*Instruction
	for i := range s.Instructions {
		if s.Instructions[i].IsControlFlow() {
			out = append(out, &s.Instructions[i])
		}
	}
	return out
}

// IsControlFlow reports whether the instruction transfers control:
// conditional/unconditional jumps, calls, returns, and loop instructions.
func (r *Instruction) IsControlFlow() bool {
	switch r.Mnemonic {
	case JMP, JCC, CALL, RET, RETF, LOOP, LOOPE, LOOPNE, JCXZ:
		return true
	default:
		return false
	}
}

// GetRelativeTarget resolves a relative control-flow instruction's target
// address given the address it was decoded from.
func (r *Instruction) GetRelativeTarget(instrAddress uint64) (uint64, error) {
	if !r.Flags.Has(FlagRelative) {
		return 0, fmt.Errorf("lito: instruction is not a relative jump/call")
	}
	var rel *Operand
	for i := range r.Operands {
		if r.Operands[i].Kind == OperandRelativeImmediate {
			rel = &r.Operands[i]
			break
		}
	}
	if rel == nil {
		return 0, fmt.Errorf("lito: no relative operand present")
	}
	next := instrAddress + uint64(r.Length)
	return uint64(int64(next) + rel.Int64()), nil
}

// QuickLength decodes a single instruction and returns only its length,
// or 1 if the bytes at offset could not be decoded at all (no instruction
// produced).
func QuickLength(code []byte, offset int, mode Mode) int {
	n, ok := DisassembleLength(code, offset, mode)
	if !ok {
		return 1
	}
	return n
}

// Disassemble decodes a single instruction at offset.
func Disassemble(code []byte, offset int, mode Mode) (*Instruction, bool) {
	src := NewFixedSource(code)
	if !src.Seek(uint64(offset)) {
		return nil, false
	}
	dec := NewDecoder(mode)
	rec := &Instruction{}
	if !dec.DecodeInstruction(src, rec) {
		return nil, false
	}
	return rec, true
}

// DisassembleLength decodes a single instruction at offset and returns its
// length.
func DisassembleLength(code []byte, offset int, mode Mode) (int, bool) {
	rec, ok := Disassemble(code, offset, mode)
	if !ok {
		return 0, false
	}
	return rec.Length, true
}

// DisassembleAll decodes up to maxInstructions instructions from code,
// starting at offset 0.
func DisassembleAll(code []byte, maxInstructions int, mode Mode) ([]Instruction, error) {
	src := NewFixedSource(code)
	dec := NewDecoder(mode)
	out := make([]Instruction, 0, maxInstructions)

	for len(out) < maxInstructions {
		var rec Instruction
		if !dec.DecodeInstruction(src, &rec) {
			break
		}
		out = append(out, rec)
	}
	return out, nil
}

// FindInstructionBoundaries returns the start offset of every instruction
// in code.
func FindInstructionBoundaries(code []byte, mode Mode) []int {
	src := NewFixedSource(code)
	dec := NewDecoder(mode)
	var bounds []int

	for {
		pos := src.Position()
		var rec Instruction
		if !dec.DecodeInstruction(src, &rec) {
			break
		}
		bounds = append(bounds, int(pos))
	}
	return bounds
}

// CodeStats summarizes a decoded code block.
type CodeStats struct {
	TotalBytes          int
	InstructionCount    int
	AverageLength       float64
	ControlFlowCount    int
	InvalidCount        int
	LongestInstruction  int
	ShortestInstruction int
}

// AnalyzeCode decodes code and returns aggregate statistics about it.
func AnalyzeCode(code []byte, mode Mode) *CodeStats {
	stream := NewInstructionStream(code, mode)
	_ = stream.ParseAll()

	stats := &CodeStats{
		TotalBytes:          len(code),
		InstructionCount:    len(stream.Instructions),
		ShortestInstruction: 255,
	}

	for i := range stream.Instructions {
		instr := &stream.Instructions[i]
		if instr.Length > stats.LongestInstruction {
			stats.LongestInstruction = instr.Length
		}
		if instr.Length < stats.ShortestInstruction {
			stats.ShortestInstruction = instr.Length
		}
		if instr.IsControlFlow() {
			stats.ControlFlowCount++
		}
		if instr.failed() {
			stats.InvalidCount++
		}
	}

	if stats.InstructionCount > 0 {
		stats.AverageLength = float64(stats.TotalBytes) / float64(stats.InstructionCount)
	}
	return stats
}

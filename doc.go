// Package lito decodes x86 and x86-64 machine code one instruction at a
// time.
//
// It is a pure state-machine decoder: given a byte source, a CPU mode and a
// preferred vendor it walks a statically compiled opcode-dispatch tree,
// resolves ModR/M and SIB addressing, computes effective operand and
// address sizes, and fills in a caller-owned Instruction record. It does
// not format instructions to text, resolve symbols, or assemble/encode —
// those are the job of separate packages built on top of the records this
// package produces.
//
// Novel implementation inspired by length-disassembly techniques from
// malware analysis, extended into a full instruction decoder:
//   - Clean Go idioms, not a line-by-line port of any particular engine
//   - Byte-exact rollback on invalid bytes (self-synchronizing stream)
//   - Zero allocation on the decode hot path
//   - Pluggable byte source (buffer or stream)
package lito

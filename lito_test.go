package lito

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// decodeOne is a small test helper: decode a single instruction from code at
// mode and fail the test if the decoder reports no instruction at all. It is
// meant for complete instructions: a truncated instruction makes the decoder
// report end of input instead (see TestTruncatedInstructionAtEndOfInput).
func decodeOne(t *testing.T, code []byte, mode Mode) *Instruction {
	t.Helper()
	rec, ok := Disassemble(code, 0, mode)
	require.True(t, ok, "Disassemble returned false for %x", code)
	return rec
}

func TestSingleByteInstructions(t *testing.T) {
	tests := []struct {
		name     string
		code     []byte
		mnemonic Mnemonic
		length   int
	}{
		{"NOP", []byte{0x90}, XCHG, 1}, // 0x90 is XCHG eAX,eAX; aliased to NOP below
		{"RET", []byte{0xC3}, RET, 1},
		{"INT3", []byte{0xCC}, INT3, 1},
		{"CLC", []byte{0xF8}, CLC, 1},
		{"STC", []byte{0xF9}, STC, 1},
		{"HLT", []byte{0xF4}, HLT, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := decodeOne(t, tt.code, Mode32)
			assert.Equal(t, tt.length, rec.Length)
			if tt.name == "NOP" {
				assert.Equal(t, NOP, rec.Mnemonic)
			} else {
				assert.Equal(t, tt.mnemonic, rec.Mnemonic)
			}
		})
	}
}

func TestModRMInstructions(t *testing.T) {
	tests := []struct {
		name   string
		code   []byte
		length int
	}{
		{"MOV EAX, EBX", []byte{0x89, 0xD8}, 2},
		{"ADD EAX, EBX", []byte{0x01, 0xD8}, 2},
		{"XOR ECX, ECX", []byte{0x31, 0xC9}, 2},
		{"TEST EAX, EAX", []byte{0x85, 0xC0}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := decodeOne(t, tt.code, Mode32)
			assert.Equal(t, tt.length, rec.Length)
			assert.NotEqual(t, Invalid, rec.Mnemonic)
		})
	}
}

func TestImmediateInstructions(t *testing.T) {
	tests := []struct {
		name   string
		code   []byte
		length int
	}{
		{"ADD AL, 0x12", []byte{0x04, 0x12}, 2},
		{"ADD EAX, 0x12345678", []byte{0x05, 0x78, 0x56, 0x34, 0x12}, 5},
		{"PUSH 0x42", []byte{0x6A, 0x42}, 2},
		{"PUSH 0x12345678", []byte{0x68, 0x78, 0x56, 0x34, 0x12}, 5},
		{"MOV AL, 0xFF", []byte{0xB0, 0xFF}, 2},
		{"MOV EAX, 0x12345678", []byte{0xB8, 0x78, 0x56, 0x34, 0x12}, 5},
		{"RET 0x10", []byte{0xC2, 0x10, 0x00}, 3},
		{"INT 0x80", []byte{0xCD, 0x80}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := decodeOne(t, tt.code, Mode32)
			assert.Equal(t, tt.length, rec.Length)
		})
	}
}

func TestMOVImmediateValue(t *testing.T) {
	rec := decodeOne(t, []byte{0xB8, 0x78, 0x56, 0x34, 0x12}, Mode32)
	require.Equal(t, MOV, rec.Mnemonic)
	require.Equal(t, OperandImmediate, rec.Operands[1].Kind)
	assert.Equal(t, uint64(0x12345678), rec.Operands[1].Uint64())
	assert.Equal(t, EAX, rec.Operands[0].Base)
	assert.Equal(t, AccessWrite, rec.Operands[0].Access)
}

func TestRelativeJumps(t *testing.T) {
	tests := []struct {
		name   string
		code   []byte
		length int
	}{
		{"JE SHORT +0x10", []byte{0x74, 0x10}, 2},
		{"JNE SHORT +0x20", []byte{0x75, 0x20}, 2},
		{"JMP SHORT +0x7F", []byte{0xEB, 0x7F}, 2},
		{"JMP SHORT -0x10", []byte{0xEB, 0xF0}, 2},
		{"CALL +0x12345678", []byte{0xE8, 0x78, 0x56, 0x34, 0x12}, 5},
		{"JMP +0x12345678", []byte{0xE9, 0x78, 0x56, 0x34, 0x12}, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := decodeOne(t, tt.code, Mode32)
			assert.Equal(t, tt.length, rec.Length)
			assert.True(t, rec.IsControlFlow())
			assert.True(t, rec.Flags.Has(FlagRelative))
		})
	}
}

func TestRelativeTargetCalculation(t *testing.T) {
	tests := []struct {
		name        string
		code        []byte
		instrAddr   uint64
		expectedTgt uint64
	}{
		{"JE SHORT +0x10", []byte{0x74, 0x10}, 0x1000, 0x1012},
		{"JMP SHORT -0x10", []byte{0xEB, 0xF0}, 0x1000, 0x0FF2},
		{"CALL +0x100", []byte{0xE8, 0x00, 0x01, 0x00, 0x00}, 0x2000, 0x2105},
		{"JNE NEAR +0x1000", []byte{0x0F, 0x85, 0x00, 0x10, 0x00, 0x00}, 0x3000, 0x4006},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := decodeOne(t, tt.code, Mode32)
			target, err := rec.GetRelativeTarget(tt.instrAddr)
			require.NoError(t, err)
			assert.Equal(t, tt.expectedTgt, target)
		})
	}
}

func TestTwoByteOpcodes(t *testing.T) {
	tests := []struct {
		name   string
		code   []byte
		length int
	}{
		{"JE NEAR +0x100", []byte{0x0F, 0x84, 0x00, 0x01, 0x00, 0x00}, 6},
		{"JNE NEAR +0x200", []byte{0x0F, 0x85, 0x00, 0x02, 0x00, 0x00}, 6},
		{"MOVZX EAX, BL", []byte{0x0F, 0xB6, 0xC3}, 3},
		{"MOVSX EAX, BL", []byte{0x0F, 0xBE, 0xC3}, 3},
		{"RDTSC", []byte{0x0F, 0x31}, 2},
		{"CPUID", []byte{0x0F, 0xA2}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := decodeOne(t, tt.code, Mode32)
			assert.Equal(t, tt.length, rec.Length)
		})
	}
}

func TestPrefixedInstructions(t *testing.T) {
	tests := []struct {
		name   string
		code   []byte
		length int
		flag   Flags
	}{
		{"LOCK ADD [EAX], EBX", []byte{0xF0, 0x01, 0x18}, 3, FlagLock},
		{"FS: MOV EAX, [EBX]", []byte{0x64, 0x8B, 0x03}, 3, FlagSegment},
		{"GS: MOV ECX, [EDX]", []byte{0x65, 0x8B, 0x0A}, 3, FlagSegment},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := decodeOne(t, tt.code, Mode32)
			assert.Equal(t, tt.length, rec.Length)
			assert.True(t, rec.Flags.Has(tt.flag))
		})
	}
}

// TestRepReplaceNEPrefixIdempotence exercises spec §8's "prefix idempotence
// for last-wins pairs" law in the REPNE, REPNE, REP direction: two REPNE
// prefixes followed by one REP behave like a single REP. The surviving REP
// turns the NOP into PAUSE and is cleared by that alias.
func TestRepReplaceNEPrefixIdempotence(t *testing.T) {
	doubleF2ThenF3 := []byte{0xF2, 0xF2, 0xF3, 0x90}
	singleF3 := []byte{0xF3, 0x90}

	a := decodeOne(t, doubleF2ThenF3, Mode32)
	b := decodeOne(t, singleF3, Mode32)

	assert.Equal(t, b.Mnemonic, a.Mnemonic)
	assert.False(t, a.Flags.Has(FlagRep))
	assert.False(t, a.Flags.Has(FlagRepne))
}

func TestModRMWithDisplacement(t *testing.T) {
	tests := []struct {
		name   string
		code   []byte
		length int
	}{
		{"MOV EAX, [EBX+0x10]", []byte{0x8B, 0x43, 0x10}, 3},
		{"MOV EAX, [EBX+0x12345678]", []byte{0x8B, 0x83, 0x78, 0x56, 0x34, 0x12}, 6},
		{"MOV [ECX+0x20], EDX", []byte{0x89, 0x51, 0x20}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := decodeOne(t, tt.code, Mode32)
			assert.Equal(t, tt.length, rec.Length)
		})
	}
}

func TestSIBInstructions(t *testing.T) {
	tests := []struct {
		name   string
		code   []byte
		length int
	}{
		{"MOV EAX, [ESP]", []byte{0x8B, 0x04, 0x24}, 3},
		{"MOV EAX, [ESP+0x10]", []byte{0x8B, 0x44, 0x24, 0x10}, 4},
		{"MOV EAX, [ESI*4+disp32]", []byte{0x8B, 0x04, 0xB5, 0x00, 0x00, 0x00, 0x00}, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := decodeOne(t, tt.code, Mode32)
			assert.Equal(t, tt.length, rec.Length)
			assert.True(t, rec.Flags.Has(FlagSIB))
		})
	}
}

func TestESPIndexIsSuppressed(t *testing.T) {
	// [ESP+ESP*2+0x10] is not representable; SIB.index==ESP always means
	// "no index" per spec §4.7, so this decodes as [ESP+0x10].
	rec := decodeOne(t, []byte{0x8B, 0x44, 0x64, 0x10}, Mode32)
	mem := rec.Operands[1]
	assert.Equal(t, OperandMemory, mem.Kind)
	assert.Equal(t, RegNone, mem.Index)
	assert.EqualValues(t, 0, mem.Scale)
}

func TestREXPrefixes(t *testing.T) {
	tests := []struct {
		name   string
		code   []byte
		length int
		mode   Mode
	}{
		{"REX.W + ADD", []byte{0x48, 0x01, 0xC3}, 3, Mode64},
		{"REX.W + MOV", []byte{0x48, 0x89, 0xC0}, 3, Mode64},
		{"REX + PUSH", []byte{0x41, 0x50}, 2, Mode64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := decodeOne(t, tt.code, tt.mode)
			assert.Equal(t, tt.length, rec.Length)
			assert.True(t, rec.Flags.Has(FlagRex))
		})
	}

	t.Run("0x40..0x4F is not a REX prefix outside 64-bit mode", func(t *testing.T) {
		rec := decodeOne(t, []byte{0x40}, Mode32)
		assert.False(t, rec.Flags.Has(FlagRex))
	})
}

func TestREXWSelectsQuadwordOperand(t *testing.T) {
	rec := decodeOne(t, []byte{0x48, 0x89, 0xD8}, Mode64) // MOV RAX, RBX
	require.Equal(t, MOV, rec.Mnemonic)
	assert.Equal(t, 64, rec.OperandMode)
	assert.Equal(t, RAX, rec.Operands[0].Base)
	assert.Equal(t, RBX, rec.Operands[1].Base)
}

func TestREXExtendedRegister(t *testing.T) {
	// 41 50 = REX.B + PUSH r8 (opcode-embedded register extended by REX.B).
	rec := decodeOne(t, []byte{0x41, 0x50}, Mode64)
	require.Equal(t, PUSH, rec.Mnemonic)
	assert.Equal(t, R8, rec.Operands[0].Base)
}

func TestXCHGAccumulatorAliasesToNOP(t *testing.T) {
	rec := decodeOne(t, []byte{0x90}, Mode32)
	assert.Equal(t, NOP, rec.Mnemonic)
	for i := 0; i < 2; i++ {
		assert.Equal(t, OperandNone, rec.Operands[i].Kind)
		assert.Equal(t, AccessNA, rec.Operands[i].Access)
	}
}

func TestRepNopAliasesToPause(t *testing.T) {
	rec := decodeOne(t, []byte{0xF3, 0x90}, Mode64)
	assert.Equal(t, PAUSE, rec.Mnemonic)
	assert.False(t, rec.Flags.Has(FlagRep))
}

func TestSwapgsInvalidOutside64BitMode(t *testing.T) {
	rec := decodeOne(t, []byte{0x0F, 0x01, 0xF8}, Mode32)
	assert.Equal(t, Invalid, rec.Mnemonic)
	assert.Equal(t, 1, rec.Length)
	assert.True(t, rec.Flags.Has(FlagInvalid))
}

func TestVEXTwoByteLoad(t *testing.T) {
	// C5 F8 10 C1 = VMOVUPS XMM0, XMM1 (2-byte VEX, L=0, pp=0).
	rec := decodeOne(t, []byte{0xC5, 0xF8, 0x10, 0xC1}, Mode64)
	require.Equal(t, VMOVUPS, rec.Mnemonic)
	assert.True(t, rec.Flags.Has(FlagVex))
	assert.Equal(t, OperandRegister, rec.Operands[0].Kind)
	assert.Equal(t, 128, rec.Operands[0].Size)
}

func TestVEXThreeByteAdd(t *testing.T) {
	// C4 E1 70 58 C1 = VADDPS XMM0, XMM1, XMM1 (3-byte VEX).
	rec := decodeOne(t, []byte{0xC4, 0xE1, 0x70, 0x58, 0xC1}, Mode64)
	require.Equal(t, VADDPS, rec.Mnemonic)
	assert.Equal(t, OperandRegister, rec.Operands[1].Kind) // H operand from ~vvvv
}

// TestVexEscapeOnlyRecognizedAsFirstOpcodeByte guards against the VEX/XOP
// detection in the NodeTable case firing on a byte that merely happens to
// equal 0xC4 while already inside the two-byte (0x0F) table — 0F C4 is an
// ordinary (if unwired, in this representative table) two-byte opcode, not
// a VEX escape, since the VEX escape only exists as the very first opcode
// byte of an instruction.
func TestVexEscapeOnlyRecognizedAsFirstOpcodeByte(t *testing.T) {
	rec := decodeOne(t, []byte{0x0F, 0xC4, 0x01, 0x10}, Mode32)
	assert.False(t, rec.Flags.Has(FlagVex))
	assert.True(t, rec.Flags.Has(FlagInvalid))
}

func TestX87FLDStackRegister(t *testing.T) {
	rec := decodeOne(t, []byte{0xD9, 0xC1}, Mode32) // FLD ST(1)
	require.Equal(t, FLD, rec.Mnemonic)
	assert.Equal(t, ST1, rec.Operands[0].Base)
	assert.Equal(t, 80, rec.Operands[0].Size)
}

func TestX87FADDMemoryForm(t *testing.T) {
	rec := decodeOne(t, []byte{0xD8, 0x00}, Mode32) // FADD ST(0), dword [EAX]
	require.Equal(t, FADD, rec.Mnemonic)
	assert.Equal(t, OperandMemory, rec.Operands[1].Kind)
}

func TestAmd3DNowTrailingOpcode(t *testing.T) {
	rec := decodeOne(t, []byte{0x0F, 0x0F, 0xC1, 0x9E}, Mode32) // PFADD MM0, MM1
	require.Equal(t, PFADD, rec.Mnemonic)
	assert.Equal(t, 4, rec.Length)
}

// TestAmd3DNowMemoryOperandTrailingOpcode covers the 3DNow! memory-operand
// form (mod != 0b11), where a displacement falls between ModR/M and the
// real trailing selector byte: 0F 0F modrm disp8 ib.
func TestAmd3DNowMemoryOperandTrailingOpcode(t *testing.T) {
	// modrm = 01 000 000: mod=01 (disp8), reg=000 (MM0), rm=000 ([EAX]).
	rec := decodeOne(t, []byte{0x0F, 0x0F, 0x40, 0x10, 0x9E}, Mode32) // PFADD MM0, [EAX+0x10]
	require.Equal(t, PFADD, rec.Mnemonic)
	assert.Equal(t, 5, rec.Length)
	assert.Equal(t, OperandMemory, rec.Operands[1].Kind)
	assert.Equal(t, EAX, rec.Operands[1].Base)
	assert.Equal(t, 8, rec.Operands[1].DispWidth)
}

func TestControlFlowDetection(t *testing.T) {
	tests := []struct {
		name          string
		code          []byte
		isControlFlow bool
	}{
		{"JE SHORT", []byte{0x74, 0x10}, true},
		{"JMP SHORT", []byte{0xEB, 0x20}, true},
		{"CALL", []byte{0xE8, 0x00, 0x00, 0x00, 0x00}, true},
		{"RET", []byte{0xC3}, true},
		{"JNE NEAR", []byte{0x0F, 0x85, 0x00, 0x00, 0x00, 0x00}, true},
		{"MOV", []byte{0x89, 0xC0}, false},
		{"ADD", []byte{0x01, 0xC3}, false},
		{"PUSH", []byte{0x50}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := decodeOne(t, tt.code, Mode32)
			assert.Equal(t, tt.isControlFlow, rec.IsControlFlow())
		})
	}
}

func TestInvalidByteSelfSynchronizes(t *testing.T) {
	// 0xFF's INC/DEC/CALL/JMP/PUSH group is deliberately left unwired in
	// the representative opcode table, so it decodes as an invalid byte.
	code := []byte{0x90, 0xFF, 0x90}
	src := NewFixedSource(code)
	dec := NewDecoder(Mode32)

	var recs []Instruction
	for {
		var rec Instruction
		if !dec.DecodeInstruction(src, &rec) {
			break
		}
		recs = append(recs, rec)
	}

	require.Len(t, recs, 3)
	assert.Equal(t, NOP, recs[0].Mnemonic)
	assert.Equal(t, Invalid, recs[1].Mnemonic)
	assert.Equal(t, 1, recs[1].Length)
	assert.True(t, recs[1].Flags.Has(FlagInvalid))
	assert.Equal(t, NOP, recs[2].Mnemonic)
}

func TestTruncatedInstructionAtEndOfInput(t *testing.T) {
	// 0x0F alone: the two-byte escape with nothing to select a row.
	src := NewFixedSource([]byte{0x0F})
	dec := NewDecoder(Mode32)
	var rec Instruction
	ok := dec.DecodeInstruction(src, &rec)
	assert.False(t, ok)
	assert.Equal(t, 0, rec.Length)
}

func TestDecoderSelfSynchronizationExhaustsStream(t *testing.T) {
	code := []byte{0x90, 0xFF, 0xFF, 0xC3}
	src := NewFixedSource(code)
	dec := NewDecoder(Mode32)

	total := 0
	calls := 0
	for {
		var rec Instruction
		if !dec.DecodeInstruction(src, &rec) {
			break
		}
		calls++
		total += rec.Length
		if calls > len(code) {
			t.Fatalf("decoder did not self-synchronize within %d calls", len(code))
		}
	}
	assert.Equal(t, len(code), total)
}

func TestDeterminism(t *testing.T) {
	code := []byte{0x48, 0x8B, 0x44, 0x24, 0x08}
	a := decodeOne(t, code, Mode64)
	b := decodeOne(t, code, Mode64)
	assert.Equal(t, a.Mnemonic, b.Mnemonic)
	assert.Equal(t, a.Length, b.Length)
	assert.Equal(t, a.Operands, b.Operands)
}

func TestInstructionStreamParseAll(t *testing.T) {
	code := []byte{
		0x50,                         // PUSH EAX
		0x51,                         // PUSH ECX
		0x89, 0xC8,                   // MOV EAX, ECX
		0x05, 0x10, 0x00, 0x00, 0x00, // ADD EAX, 0x10
		0x59, // POP ECX
		0x58, // POP EAX
		0xC3, // RET
	}

	stream := NewInstructionStream(code, Mode32)
	require.NoError(t, stream.ParseAll())

	assert.Len(t, stream.Instructions, 7)
	assert.Equal(t, len(code), stream.GetTotalLength())
	assert.Len(t, stream.GetControlFlowInstructions(), 1)
}

func TestAnalyzeCode(t *testing.T) {
	code := []byte{
		0x50,       // PUSH EAX (1 byte)
		0x89, 0xC8, // MOV EAX, ECX (2 bytes)
		0x74, 0x05, // JE SHORT (2 bytes)
		0xC3, // RET (1 byte)
	}

	stats := AnalyzeCode(code, Mode32)
	assert.Equal(t, 4, stats.InstructionCount)
	assert.Equal(t, len(code), stats.TotalBytes)
	assert.Equal(t, 2, stats.ControlFlowCount) // JE SHORT + RET
	assert.Equal(t, 2, stats.LongestInstruction)
	assert.Equal(t, 1, stats.ShortestInstruction)
}

func TestFindInstructionBoundaries(t *testing.T) {
	code := []byte{0x90, 0x50, 0x58, 0xC3}
	bounds := FindInstructionBoundaries(code, Mode32)
	assert.Equal(t, []int{0, 1, 2, 3}, bounds)
}

func TestQuickLength(t *testing.T) {
	assert.Equal(t, 2, QuickLength([]byte{0x89, 0xC8}, 0, Mode32))
	// 0xFF's unwired group: an invalid byte still reports length 1.
	assert.Equal(t, 1, QuickLength([]byte{0xFF}, 0, Mode32))
}

func BenchmarkDisassembleLength(b *testing.B) {
	code := []byte{0x89, 0xC8} // MOV EAX, ECX
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		DisassembleLength(code, 0, Mode32)
	}
}

func BenchmarkDisassembleFull(b *testing.B) {
	code := []byte{0x89, 0xC8}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Disassemble(code, 0, Mode32)
	}
}

func BenchmarkDisassembleStream(b *testing.B) {
	code := make([]byte, 0, 200)
	for i := 0; i < 100; i++ {
		code = append(code, 0x90)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		stream := NewInstructionStream(code, Mode32)
		_ = stream.ParseAll()
	}
}

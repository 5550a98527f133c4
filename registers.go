package lito

// Register identifies a concrete machine register. The zero value, RegNone,
// means "no register" (used for the absent base/index of a Memory operand).
type Register uint16

const (
	RegNone Register = iota

	// 8-bit general purpose, legacy encoding (no REX prefix): AL..BH.
	AL
	CL
	DL
	BL
	AH
	CH
	DH
	BH

	// 8-bit general purpose, REX-present encoding: SPL..DIL, R8B..R15B.
	SPL
	BPL
	SIL
	DIL
	R8B
	R9B
	R10B
	R11B
	R12B
	R13B
	R14B
	R15B

	// 16-bit general purpose.
	AX
	CX
	DX
	BX
	SP
	BP
	SI
	DI
	R8W
	R9W
	R10W
	R11W
	R12W
	R13W
	R14W
	R15W

	// 32-bit general purpose.
	EAX
	ECX
	EDX
	EBX
	ESP
	EBP
	ESI
	EDI
	R8D
	R9D
	R10D
	R11D
	R12D
	R13D
	R14D
	R15D

	// 64-bit general purpose.
	RAX
	RCX
	RDX
	RBX
	RSP
	RBP
	RSI
	RDI
	R8
	R9
	R10
	R11
	R12
	R13
	R14
	R15

	// Instruction pointer, used only as the synthetic base of a
	// RIP-relative Memory operand (spec §4.7 64-bit addressing).
	RIP

	// Segment registers.
	ES
	CS
	SS
	DS
	FS
	GS

	// Control and debug registers.
	CR0
	CR1
	CR2
	CR3
	CR4
	CR5
	CR6
	CR7
	CR8
	CR9
	CR10
	CR11
	CR12
	CR13
	CR14
	CR15

	DR0
	DR1
	DR2
	DR3
	DR4
	DR5
	DR6
	DR7
	DR8
	DR9
	DR10
	DR11
	DR12
	DR13
	DR14
	DR15

	// MMX.
	MMX0
	MMX1
	MMX2
	MMX3
	MMX4
	MMX5
	MMX6
	MMX7

	// XMM (128-bit).
	X0
	X1
	X2
	X3
	X4
	X5
	X6
	X7
	X8
	X9
	X10
	X11
	X12
	X13
	X14
	X15

	// YMM (256-bit).
	Y0
	Y1
	Y2
	Y3
	Y4
	Y5
	Y6
	Y7
	Y8
	Y9
	Y10
	Y11
	Y12
	Y13
	Y14
	Y15

	// x87 stack registers.
	ST0
	ST1
	ST2
	ST3
	ST4
	ST5
	ST6
	ST7
)

// regClass names the families Register materialization dispatches over.
type regClass uint8

const (
	classGP regClass = iota
	classSegment
	classControl
	classDebug
	classMMX
	classXMM
	classYMM
	classX87
)

// gp8 holds the two 8-bit GP encodings: legacy (no REX byte observed) and
// REX-present, selected per spec §4.7's register-operand materialization
// rule ("in 64-bit mode with REX prefix present, ids 4..7 map to
// SPL/BPL/SIL/DIL and higher ids to R8B..R15B, otherwise ids map to
// AL/CL/DL/BL/AH/CH/DH/BH").
var gp8Legacy = [8]Register{AL, CL, DL, BL, AH, CH, DH, BH}
var gp8Rex = [16]Register{AL, CL, DL, BL, SPL, BPL, SIL, DIL, R8B, R9B, R10B, R11B, R12B, R13B, R14B, R15B}
var gp16 = [16]Register{AX, CX, DX, BX, SP, BP, SI, DI, R8W, R9W, R10W, R11W, R12W, R13W, R14W, R15W}
var gp32 = [16]Register{EAX, ECX, EDX, EBX, ESP, EBP, ESI, EDI, R8D, R9D, R10D, R11D, R12D, R13D, R14D, R15D}
var gp64 = [16]Register{RAX, RCX, RDX, RBX, RSP, RBP, RSI, RDI, R8, R9, R10, R11, R12, R13, R14, R15}
var segRegs = [6]Register{ES, CS, SS, DS, FS, GS}
var ctrlRegs = [16]Register{CR0, CR1, CR2, CR3, CR4, CR5, CR6, CR7, CR8, CR9, CR10, CR11, CR12, CR13, CR14, CR15}
var debugRegs = [16]Register{DR0, DR1, DR2, DR3, DR4, DR5, DR6, DR7, DR8, DR9, DR10, DR11, DR12, DR13, DR14, DR15}
var mmxRegs = [8]Register{MMX0, MMX1, MMX2, MMX3, MMX4, MMX5, MMX6, MMX7}
var xmmRegs = [16]Register{X0, X1, X2, X3, X4, X5, X6, X7, X8, X9, X10, X11, X12, X13, X14, X15}
var ymmRegs = [16]Register{Y0, Y1, Y2, Y3, Y4, Y5, Y6, Y7, Y8, Y9, Y10, Y11, Y12, Y13, Y14, Y15}
var x87Regs = [8]Register{ST0, ST1, ST2, ST3, ST4, ST5, ST6, ST7}

// makeRegister materializes a concrete Register from a class, an extended
// id and an effective size in bits, per spec §4.7 "Register-operand
// materialization".
func makeRegister(class regClass, id int, sizeBits int, hasRex bool) Register {
	switch class {
	case classGP:
		switch sizeBits {
		case 8:
			if hasRex {
				return gp8Rex[id&0xF]
			}
			return gp8Legacy[id&0x7]
		case 16:
			return gp16[id&0xF]
		case 32:
			return gp32[id&0xF]
		default:
			return gp64[id&0xF]
		}
	case classSegment:
		return segRegs[id&0x7]
	case classControl:
		return ctrlRegs[id&0xF]
	case classDebug:
		return debugRegs[id&0xF]
	case classMMX:
		return mmxRegs[id&0x7]
	case classXMM:
		if sizeBits == 256 {
			return ymmRegs[id&0xF]
		}
		return xmmRegs[id&0xF]
	case classX87:
		return x87Regs[id&0x7]
	default:
		return RegNone
	}
}

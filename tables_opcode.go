package lito

/*
 * Representative opcode tables
 *
 * Populates the opcode-dispatch tree built by tree.go. This is a
 * representative slice of the x86/x64 instruction set, not an exhaustive
 * one: it is wide enough to exercise every opcode-tree node type, every
 * defined operand type the decoder materializes, and the VEX/XOP/3DNow!/x87
 * code paths, but it does not attempt to enumerate every opcode byte. An
 * opcode left unset resolves to the zero Node (NodeInstructionLeaf, id 0),
 * which the walker reports as FlagInvalid — the same path a genuinely
 * undefined byte takes, so there is no special-casing for "coverage gaps"
 * anywhere in the decoder itself. SPEC_FULL.md ("Supplemented features",
 * item 1) describes the scope of this table.
 */

func addLeaf(table *[256]Node, idx byte, d InstructionDefinition) {
	table[idx] = addDefinition(d)
}

// addALUGroup wires one of the eight classic 6-opcode ALU groups
// (ADD/OR/ADC/SBB/AND/SUB/XOR/CMP), all sharing the same operand-encoding
// layout at a fixed base opcode.
func addALUGroup(table *[256]Node, base byte, m Mnemonic, rw bool) {
	flags := DefFlags(0)
	if rw {
		flags = Operand1RW
	}
	addLeaf(table, base+0, def(m, flags, o(opE, szB), o(opG, szB)))
	addLeaf(table, base+1, def(m, flags, o(opE, szV), o(opG, szV)))
	addLeaf(table, base+2, def(m, flags, o(opG, szB), o(opE, szB)))
	addLeaf(table, base+3, def(m, flags, o(opG, szV), o(opE, szV)))
	addLeaf(table, base+4, def(m, flags, o(opAL, szB), o(opI, szB)))
	addLeaf(table, base+5, def(m, flags, o(opZAX, szV), o(opI, szZ)))
}

func init() {
	rootID, root := newTable()
	rootTableID = rootID

	addALUGroup(root, 0x00, ADD, true)
	addALUGroup(root, 0x08, OR, true)
	addALUGroup(root, 0x10, ADC, true)
	addALUGroup(root, 0x18, SBB, true)
	addALUGroup(root, 0x20, AND, true)
	addALUGroup(root, 0x28, SUB, true)
	addALUGroup(root, 0x30, XOR, true)
	addALUGroup(root, 0x38, CMP, false)

	for i := byte(0); i < 8; i++ {
		addLeaf(root, 0x50+i, def(PUSH, Default64|AcceptsRexB, o(opR0+OpType(i), szV)))
		addLeaf(root, 0x58+i, def(POP, Default64|AcceptsRexB|Operand1Write, o(opR0+OpType(i), szV)))
	}

	addLeaf(root, 0x68, def(PUSH, 0, o(opSI, szZ)))
	addLeaf(root, 0x69, def(IMUL, Operand1Write, o(opG, szV), o(opE, szV), o(opSI, szZ)))
	addLeaf(root, 0x6A, def(PUSH, 0, o(opSI, szB)))
	addLeaf(root, 0x6B, def(IMUL, Operand1Write, o(opG, szV), o(opE, szV), o(opSI, szB)))

	for i := byte(0); i < 16; i++ {
		addLeaf(root, 0x70+i, def(JCC, 0, o(opJ, szB)))
	}

	addLeaf(root, 0x84, def(TEST, 0, o(opE, szB), o(opG, szB)))
	addLeaf(root, 0x85, def(TEST, 0, o(opE, szV), o(opG, szV)))
	addLeaf(root, 0x88, def(MOV, Operand1Write|AcceptsRexR|AcceptsRexB, o(opE, szB), o(opG, szB)))
	addLeaf(root, 0x89, def(MOV, Operand1Write|AcceptsRexR|AcceptsRexB|AcceptsRexW, o(opE, szV), o(opG, szV)))
	addLeaf(root, 0x8A, def(MOV, Operand1Write|AcceptsRexR|AcceptsRexB, o(opG, szB), o(opE, szB)))
	addLeaf(root, 0x8B, def(MOV, Operand1Write|AcceptsRexR|AcceptsRexB|AcceptsRexW, o(opG, szV), o(opE, szV)))
	addLeaf(root, 0x8D, def(LEA, Operand1Write, o(opG, szV), o(opM, szV)))

	for i := byte(0); i < 8; i++ {
		addLeaf(root, 0x90+i, def(XCHG, AcceptsRexB, o(opR0+OpType(i), szV), o(opZAX, szV)))
	}
	addLeaf(root, 0x98, def(CBW, AcceptsRexW))
	addLeaf(root, 0x99, def(CWD, AcceptsRexW))

	addLeaf(root, 0xA8, def(TEST, 0, o(opAL, szB), o(opI, szB)))
	addLeaf(root, 0xA9, def(TEST, 0, o(opZAX, szV), o(opI, szZ)))

	for i := byte(0); i < 8; i++ {
		addLeaf(root, 0xB0+i, def(MOV, Operand1Write|AcceptsRexB, o(opR0+OpType(i), szB), o(opI, szB)))
		addLeaf(root, 0xB8+i, def(MOV, Operand1Write|AcceptsRexB|AcceptsRexW, o(opR0+OpType(i), szV), o(opI, szV)))
	}

	addLeaf(root, 0xC2, def(RET, 0, o(opI, szW)))
	addLeaf(root, 0xC3, def(RET, 0))

	// 0xC6/0xC7 MOV Eb,Ib / Ev,Iz: only ModR/M.reg == 0 is defined, the
	// rest of the group is left undefined in this representative table.
	c6ID, c6reg := newModRmRegTable()
	c6reg[0] = addDefinition(def(MOV, Operand1Write, o(opE, szB), o(opI, szB)))
	root[0xC6] = makeNode(NodeModRmReg, c6ID)
	c7ID, c7reg := newModRmRegTable()
	c7reg[0] = addDefinition(def(MOV, Operand1Write, o(opE, szV), o(opI, szZ)))
	root[0xC7] = makeNode(NodeModRmReg, c7ID)

	addLeaf(root, 0xCC, def(INT3, 0))
	addLeaf(root, 0xCD, def(INT, 0, o(opI, szB)))

	// 0xF6/0xF7 unary-group: only TEST/NOT/NEG are wired.
	f6ID, f6reg := newModRmRegTable()
	f6reg[0] = addDefinition(def(TEST, 0, o(opE, szB), o(opI, szB)))
	f6reg[2] = addDefinition(def(NOT, Operand1RW, o(opE, szB)))
	f6reg[3] = addDefinition(def(NEG, Operand1RW, o(opE, szB)))
	root[0xF6] = makeNode(NodeModRmReg, f6ID)
	f7ID, f7reg := newModRmRegTable()
	f7reg[0] = addDefinition(def(TEST, 0, o(opE, szV), o(opI, szZ)))
	f7reg[2] = addDefinition(def(NOT, Operand1RW, o(opE, szV)))
	f7reg[3] = addDefinition(def(NEG, Operand1RW, o(opE, szV)))
	root[0xF7] = makeNode(NodeModRmReg, f7ID)

	addLeaf(root, 0xF4, def(HLT, 0))
	addLeaf(root, 0xF5, def(CMC, 0))
	addLeaf(root, 0xF8, def(CLC, 0))
	addLeaf(root, 0xF9, def(STC, 0))
	addLeaf(root, 0xFA, def(CLI, 0))
	addLeaf(root, 0xFB, def(STI, 0))
	addLeaf(root, 0xFC, def(CLD, 0))
	addLeaf(root, 0xFD, def(STD, 0))

	// 0xFE INC/DEC Eb group.
	feID, fereg := newModRmRegTable()
	fereg[0] = addDefinition(def(INC, Operand1RW, o(opE, szB)))
	fereg[1] = addDefinition(def(DEC, Operand1RW, o(opE, szB)))
	root[0xFE] = makeNode(NodeModRmReg, feID)

	// 0xFF is deliberately left undefined (the zero Node): its group
	// (INC/DEC/CALL/JMP/PUSH Ev) is not part of this representative table.

	addLeaf(root, 0xE8, def(CALL, 0, o(opJ, szZ)))
	addLeaf(root, 0xE9, def(JMP, 0, o(opJ, szZ)))
	addLeaf(root, 0xEB, def(JMP, 0, o(opJ, szB)))

	buildX87Tables(root)

	secID, sec := newTable()
	tableNodes[rootID][0x0F] = makeNode(NodeTable, secID)
	buildTwoByteTable(sec)

	buildVexTables()
}

// buildTwoByteTable wires the 0x0F xx opcode space.
func buildTwoByteTable(sec *[256]Node) {
	addLeaf(sec, 0x05, def(SYSCALL, Default64))

	// 0x0F 0x01 /7: register forms dispatch down to SWAPGS at rm == 0.
	modID, mod := newModRmModTable()
	regID, reg := newModRmRegTable()
	rmID, rm := newModRmRmTable()
	rm[0] = addDefinition(def(SWAPGS, 0))
	reg[7] = makeNode(NodeModRmRm, rmID)
	mod[1] = makeNode(NodeModRmReg, regID)
	sec[0x01] = makeNode(NodeModRmMod, modID)

	// 0x0F 0x10/0x11 MOVUPS. The load form demonstrates the Mandatory
	// node: this representative table does not distinguish the
	// 66/F3/F2-prefixed SSE siblings (MOVUPD/MOVSS/MOVSD) by mnemonic,
	// only by the mechanism that would select between them.
	movupsLoad := addDefinition(def(MOVUPS, Operand1Write, o(opV, szX), o(opW, szX)))
	mandID, mand := newMandatoryTable()
	mand[0] = movupsLoad
	mand[1] = movupsLoad
	mand[2] = movupsLoad
	mand[3] = movupsLoad
	sec[0x10] = makeNode(NodeMandatory, mandID)
	addLeaf(sec, 0x11, def(MOVUPS, Operand1Write, o(opW, szX), o(opV, szX)))

	addLeaf(sec, 0x1F, def(NOP, 0, o(opE, szV)))
	addLeaf(sec, 0x31, def(RDTSC, 0))

	for i := byte(0); i < 16; i++ {
		addLeaf(sec, 0x80+i, def(JCC, 0, o(opJ, szZ)))
	}

	addLeaf(sec, 0xA2, def(CPUID, 0))
	addLeaf(sec, 0xAF, def(IMUL, Operand1Write, o(opG, szV), o(opE, szV)))
	addLeaf(sec, 0xB6, def(MOVZX, Operand1Write, o(opG, szV), o(opE, szB)))
	addLeaf(sec, 0xB7, def(MOVZX, Operand1Write, o(opG, szV), o(opE, szW)))
	addLeaf(sec, 0xBE, def(MOVSX, Operand1Write, o(opG, szV), o(opE, szB)))
	addLeaf(sec, 0xBF, def(MOVSX, Operand1Write, o(opG, szV), o(opE, szW)))

	// 0x0F 0x0F /r ib: AMD 3DNow!, trailing opcode byte selects mnemonic.
	nowID, now := newAmd3DNowTable()
	now[0x9E] = addDefinition(def(PFADD, Operand1Write, o(opP, szQ), o(opQ, szQ)))
	sec[0x0F] = makeNode(NodeAmd3DNow, nowID)
}

// buildX87Tables wires a small representative slice of the x87 opcode
// space (0xD8 FADD, 0xD9 FLD, 0xDD FST), exercising NodeModRmMod and
// NodeX87.
func buildX87Tables(root *[256]Node) {
	// 0xD8: mod != 11 -> FADD m32fp; mod == 11 -> FADD ST(0), ST(i).
	d8ModID, d8Mod := newModRmModTable()
	d8Mod[0] = addDefinition(def(FADD, 0, o(opST0, szT), o(opM, szD)))
	x87ID, x87 := newX87Table()
	for i := 0; i < 8; i++ {
		x87[i] = addDefinition(def(FADD, 0, o(opST0, szT), o(opST0+OpType(i), szT)))
	}
	d8Mod[1] = makeNode(NodeX87, x87ID)
	root[0xD8] = makeNode(NodeModRmMod, d8ModID)

	// 0xD9: mod != 11, reg == 0 -> FLD m32fp; mod == 11 -> FLD ST(i).
	d9ModID, d9Mod := newModRmModTable()
	d9RegID, d9Reg := newModRmRegTable()
	d9Reg[0] = addDefinition(def(FLD, Operand1Write, o(opM, szD)))
	d9Mod[0] = makeNode(NodeModRmReg, d9RegID)
	fldX87ID, fldX87 := newX87Table()
	for i := 0; i < 8; i++ {
		fldX87[i] = addDefinition(def(FLD, 0, o(opST0+OpType(i), szT)))
	}
	d9Mod[1] = makeNode(NodeX87, fldX87ID)
	root[0xD9] = makeNode(NodeModRmMod, d9ModID)

	// 0xDD: mod != 11, reg == 2 -> FST m64fp.
	ddModID, ddMod := newModRmModTable()
	ddRegID, ddReg := newModRmRegTable()
	ddReg[2] = addDefinition(def(FST, Operand1Write, o(opM, szQ)))
	ddMod[0] = makeNode(NodeModRmReg, ddRegID)
	root[0xDD] = makeNode(NodeModRmMod, ddModID)
}

// buildVexTables wires the VEX entry point for one representative
// instruction per size family: VMOVUPS (load) and VADDPS.
func buildVexTables() {
	vexRootID, vexRoot := newVexTable()
	vexRootTableID = vexRootID

	// index 1 == mmmmm(0F map)=1, pp=0 (no mandatory prefix).
	mapID, mapTable := newTable()
	vexRoot[1] = makeNode(NodeTable, mapID)

	addLeaf(mapTable, 0x10, def(VMOVUPS, Operand1Write|AcceptsVexL, o(opV, szX), o(opW, szX)))
	addLeaf(mapTable, 0x58, def(VADDPS, Operand1Write|AcceptsVexL, o(opV, szX), o(opH, szX), o(opW, szX)))
}

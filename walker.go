package lito

/*
 * Opcode Walker (spec §4.3)
 *
 * Drives the tree one node at a time from rootTableID until it lands on a
 * NodeInstructionLeaf, consuming input only at the node types that require
 * it (NodeTable, NodeAmd3DNow) or that need ModR/M decoded first
 * (NodeModRmMod, NodeModRmReg, NodeModRmRm, NodeX87). Every other node
 * type dispatches purely on state already gathered by the prefix scanner,
 * VEX decoder or a prior node.
 */

func recordOpcodeByte(rec *Instruction, b byte) {
	if rec.OpcodeLength < len(rec.Opcode) {
		rec.Opcode[rec.OpcodeLength] = b
	}
	rec.OpcodeLength++
}

// mandatoryDispatchIndex implements the Mandatory node's 4-way selector and
// its "consumed prefix no longer modifies sizing" side effect: once a
// legacy prefix byte is claimed as a mandatory opcode-extension prefix by
// an opcode that defines one of its four Mandatory-node children, that
// prefix stops acting as the REP/REPNE/operand-size modifier it would
// otherwise be for sizing and mnemonic-aliasing purposes (spec §4.3,
// "mandatory prefixes select an opcode-table row, they do not survive as
// modifiers once claimed"). The walker restores the prefix and falls back
// to child 0 when the selected child is undefined.
func mandatoryDispatchIndex(rec *Instruction) int {
	switch {
	case rec.Flags.Has(FlagRep):
		rec.Flags &^= FlagRep
		return 1
	case rec.Flags.Has(FlagRepne):
		rec.Flags &^= FlagRepne
		return 2
	case rec.Flags.Has(FlagOperandSize):
		rec.Flags &^= FlagOperandSize
		return 3
	default:
		return 0
	}
}

// walkOpcodeTree drives the dispatch tree to a leaf and returns its
// definition, or nil if the tree bottomed out on an undefined opcode or a
// read failed (in both cases an error Flag is already set on rec).
func walkOpcodeTree(src ByteSource, rec *Instruction) *InstructionDefinition {
	node := makeNode(NodeTable, rootTableID)

	for {
		switch node.Type() {
		case NodeInstructionLeaf:
			def := definitionAt(node.ID())
			if def == nil {
				rec.fail(FlagInvalid)
				return nil
			}
			return def

		case NodeTable:
			table := &tableNodes[node.ID()]
			peeked := src.Peek(rec)
			if rec.failed() {
				return nil
			}
			if !rec.VexPresent && rec.OpcodeLength == 0 && (peeked == 0xC4 || peeked == 0xC5 || peeked == 0x8F) {
				primary := src.Consume(rec)
				if rec.failed() {
					return nil
				}
				recordOpcodeByte(rec, primary)
				if tryVex(src, rec, primary) {
					node = makeNode(NodeVex, vexRootTableID)
					continue
				}
				node = table[primary]
				continue
			}
			b := src.Consume(rec)
			if rec.failed() {
				return nil
			}
			recordOpcodeByte(rec, b)
			node = table[b]

		case NodeModRmMod:
			if !ensureModRM(src, rec) {
				return nil
			}
			idx := 0
			if rec.Mod == 0b11 {
				idx = 1
			}
			node = modRmModNodes[node.ID()][idx]

		case NodeModRmReg:
			if !ensureModRM(src, rec) {
				return nil
			}
			node = modRmRegNodes[node.ID()][rec.Reg]

		case NodeModRmRm:
			if !ensureModRM(src, rec) {
				return nil
			}
			node = modRmRmNodes[node.ID()][rec.Rm]

		case NodeMandatory:
			children := &mandatoryNodes[node.ID()]
			saved := rec.Flags
			idx := mandatoryDispatchIndex(rec)
			if children[idx] == 0 {
				rec.Flags = saved
				idx = 0
			}
			node = children[idx]

		case NodeX87:
			if !ensureModRM(src, rec) {
				return nil
			}
			node = x87Nodes[node.ID()][rec.ModRMRaw&0x3F]

		case NodeAddressSize:
			node = addressSizeNodes[node.ID()][addressSizeDispatchIndex(rec)]

		case NodeOperandSize:
			node = operandSizeNodes[node.ID()][operandSizeDispatchIndex(rec)]

		case NodeMode:
			idx := 0
			if rec.mode == Mode64 {
				idx = 1
			}
			node = modeNodes[node.ID()][idx]

		case NodeVendor:
			// Child 0 is AMD, child 1 Intel; VendorAny prefers AMD when
			// that branch is defined.
			children := &vendorNodes[node.ID()]
			idx := 0
			if rec.vendor == VendorIntel || (rec.vendor == VendorAny && children[0] == 0) {
				idx = 1
			}
			node = children[idx]

		case NodeAmd3DNow:
			// 3DNow! instructions encode as 0F 0F modrm [sib] [disp] ib: the
			// full P,Q operand layout is walked before the trailing opcode
			// byte that selects the mnemonic is read (confirmed against
			// VerteronDisassemblerEngine's instruction decoder, which
			// resolves operands before looking at info->opcode[2]). A
			// scratch decode of the shared P,Q layout consumes any
			// SIB/displacement bytes a memory-operand form needs;
			// ensureModRM/ensureSIB/ensureDisplacement's caching means the
			// real operand decoder that runs once a leaf is chosen doesn't
			// re-read these same bytes.
			if !ensureModRM(src, rec) {
				return nil
			}
			rec.AddressMode = resolveAddressMode(rec)
			if rec.Mod != 0b11 {
				var scratch Operand
				if !decodeMemory(src, rec, &scratch, 64) {
					return nil
				}
			}
			b := src.Consume(rec)
			if rec.failed() {
				return nil
			}
			node = amd3dnowNodes[node.ID()][b]

		case NodeVex:
			node = vexNodes[node.ID()][rec.vexDispatchIndex()]

		case NodeVexW:
			idx := 0
			if rec.VexW {
				idx = 1
			}
			node = vexWNodes[node.ID()][idx]

		case NodeVexL:
			idx := 0
			if rec.VexL {
				idx = 1
			}
			node = vexLNodes[node.ID()][idx]

		default:
			rec.fail(FlagInvalid)
			return nil
		}
	}
}

package lito

/*
 * Opcode Tree - read-only, statically compiled dispatch graph
 *
 * Novel approach: each node is a packed 16-bit tagged value (top 4 bits =
 * node type, low 12 bits = table/definition id) instead of a pointer-based
 * tree, so the whole tree is a handful of flat, immutable Go slices
 * indexed by small integers — no per-node allocation, nothing to walk with
 * virtual dispatch. This mirrors the "dispatch is data, not code" guidance
 * for hosting this kind of tree in a memory-safe language (spec §9).
 */

// NodeType tags what a Node's low 12 bits mean and how many children its
// table has (spec §3 "Opcode tree").
type NodeType uint8

const (
	NodeInstructionLeaf NodeType = iota
	NodeTable                    // 256-way, next opcode byte
	NodeModRmMod                 // 2-way, mod==0b11 or not
	NodeModRmReg                 // 8-way, ModR/M.reg
	NodeModRmRm                  // 8-way, ModR/M.rm
	NodeMandatory                // 4-way, mandatory-prefix precedence
	NodeX87                      // 64-way, low 6 bits of ModR/M when mod==0b11
	NodeAddressSize               // 3-way
	NodeOperandSize               // 3-way
	NodeMode                      // 2-way, 64-bit or not
	NodeVendor                    // 2-way, AMD/Intel
	NodeAmd3DNow                  // 256-way, trailing 3DNow! opcode byte
	NodeVex                       // 16-way, m_mmmm | (pp<<2)
	NodeVexW                      // 2-way
	NodeVexL                      // 2-way
)

// Node is a tagged dispatch-tree node: top 4 bits are the NodeType, low 12
// bits are a table id (or, for NodeInstructionLeaf, an index into the
// instruction-definition table — id 0 means "undefined").
type Node uint16

const nodeTypeShift = 12
const nodeIDMask = 0x0FFF

func makeNode(t NodeType, id int) Node {
	return Node(uint16(t)<<nodeTypeShift | uint16(id)&nodeIDMask)
}

func (n Node) Type() NodeType { return NodeType(n >> nodeTypeShift) }
func (n Node) ID() int        { return int(n) & nodeIDMask }

// Flat, append-only table storage. Each slice is indexed by the id stored
// in a Node's low 12 bits. Populated once at init time in
// tables_opcode.go and never mutated afterward (spec §5: "opcode-tree
// tables ... are immutable after program initialization and shareable
// across threads without synchronization").
var (
	tableNodes       [][256]Node
	modRmModNodes    [][2]Node
	modRmRegNodes    [][8]Node
	modRmRmNodes     [][8]Node
	mandatoryNodes   [][4]Node
	x87Nodes         [][64]Node
	addressSizeNodes [][3]Node
	operandSizeNodes [][3]Node
	modeNodes        [][2]Node
	vendorNodes      [][2]Node
	amd3dnowNodes    [][256]Node
	vexNodes         [][16]Node
	vexWNodes        [][2]Node
	vexLNodes        [][2]Node

	// defsTable holds every InstructionDefinition. Index 0 is an unused
	// placeholder so that the zero Node (NodeInstructionLeaf, id 0) always
	// means "undefined opcode" per spec §4.3.
	defsTable = []InstructionDefinition{{}}
)

func newTable() (int, *[256]Node) {
	tableNodes = append(tableNodes, [256]Node{})
	id := len(tableNodes) - 1
	return id, &tableNodes[id]
}

func newModRmModTable() (int, *[2]Node) {
	modRmModNodes = append(modRmModNodes, [2]Node{})
	id := len(modRmModNodes) - 1
	return id, &modRmModNodes[id]
}

func newModRmRegTable() (int, *[8]Node) {
	modRmRegNodes = append(modRmRegNodes, [8]Node{})
	id := len(modRmRegNodes) - 1
	return id, &modRmRegNodes[id]
}

func newModRmRmTable() (int, *[8]Node) {
	modRmRmNodes = append(modRmRmNodes, [8]Node{})
	id := len(modRmRmNodes) - 1
	return id, &modRmRmNodes[id]
}

func newMandatoryTable() (int, *[4]Node) {
	mandatoryNodes = append(mandatoryNodes, [4]Node{})
	id := len(mandatoryNodes) - 1
	return id, &mandatoryNodes[id]
}

func newX87Table() (int, *[64]Node) {
	x87Nodes = append(x87Nodes, [64]Node{})
	id := len(x87Nodes) - 1
	return id, &x87Nodes[id]
}

func newAddressSizeTable() (int, *[3]Node) {
	addressSizeNodes = append(addressSizeNodes, [3]Node{})
	id := len(addressSizeNodes) - 1
	return id, &addressSizeNodes[id]
}

func newOperandSizeTable() (int, *[3]Node) {
	operandSizeNodes = append(operandSizeNodes, [3]Node{})
	id := len(operandSizeNodes) - 1
	return id, &operandSizeNodes[id]
}

func newModeTable() (int, *[2]Node) {
	modeNodes = append(modeNodes, [2]Node{})
	id := len(modeNodes) - 1
	return id, &modeNodes[id]
}

func newVendorTable() (int, *[2]Node) {
	vendorNodes = append(vendorNodes, [2]Node{})
	id := len(vendorNodes) - 1
	return id, &vendorNodes[id]
}

func newAmd3DNowTable() (int, *[256]Node) {
	amd3dnowNodes = append(amd3dnowNodes, [256]Node{})
	id := len(amd3dnowNodes) - 1
	return id, &amd3dnowNodes[id]
}

func newVexTable() (int, *[16]Node) {
	vexNodes = append(vexNodes, [16]Node{})
	id := len(vexNodes) - 1
	return id, &vexNodes[id]
}

func newVexWTable() (int, *[2]Node) {
	vexWNodes = append(vexWNodes, [2]Node{})
	id := len(vexWNodes) - 1
	return id, &vexWNodes[id]
}

func newVexLTable() (int, *[2]Node) {
	vexLNodes = append(vexLNodes, [2]Node{})
	id := len(vexLNodes) - 1
	return id, &vexLNodes[id]
}

// addDefinition appends an instruction definition and returns the leaf
// Node referencing it.
func addDefinition(d InstructionDefinition) Node {
	defsTable = append(defsTable, d)
	return makeNode(NodeInstructionLeaf, len(defsTable)-1)
}

func definitionAt(id int) *InstructionDefinition {
	if id <= 0 || id >= len(defsTable) {
		return nil
	}
	return &defsTable[id]
}

// rootTableID is the id of the 256-entry table the opcode walker starts
// from, built in tables_opcode.go's init().
var rootTableID int

// vexRootTableID is the id of the 16-way Vex node the walker jumps to
// directly once tryVex commits a VEX/XOP prefix, bypassing the table slot
// the 0xC4/0xC5/0x8F byte occupies for its legacy (non-VEX) meaning.
var vexRootTableID int

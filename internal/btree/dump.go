package btree

import (
	"fmt"
	"io"
	"strings"

	"pagedb/internal/storage"
)

// Dump writes the shell's `.btree` recursive indentation format: each
// internal node prints its key count, each leaf its cell count, with
// every key on its own line indented two spaces per tree level, as
// described in SPEC_FULL.md §4.10.
func (t *Tree) Dump(w io.Writer) error {
	return t.dumpNode(w, t.root(), 0)
}

func (t *Tree) dumpNode(w io.Writer, id storage.PageID, depth int) error {
	p, err := t.pager.Get(id)
	if err != nil {
		return err
	}
	indent := strings.Repeat("  ", depth)

	if getNodeType(p) == NodeLeaf {
		n := getNumCells(p)
		fmt.Fprintf(w, "%s- leaf (size %d)\n", indent, n)
		for i := 0; i < n; i++ {
			fmt.Fprintf(w, "%s  - %d\n", indent, leafCellKey(p, i))
		}
		return nil
	}

	keys, children := internalEntries(p)
	fmt.Fprintf(w, "%s- internal (size %d)\n", indent, len(keys))
	for i, child := range children {
		if err := t.dumpNode(w, child, depth+1); err != nil {
			return err
		}
		if i < len(keys) {
			fmt.Fprintf(w, "%s- key %d\n", indent, keys[i])
		}
	}
	return nil
}

// DumpConstants writes the shell's `.constants` output: one "NAME: value"
// line per field of Constants, in field-declaration order.
func DumpConstants(w io.Writer, c Constants) {
	fmt.Fprintf(w, "ROW_SIZE: %d\n", c.RowSize)
	fmt.Fprintf(w, "COMMON_NODE_HEADER_SIZE: %d\n", c.CommonNodeHeaderSize)
	fmt.Fprintf(w, "LEAF_NODE_HEADER_SIZE: %d\n", c.LeafNodeHeaderSize)
	fmt.Fprintf(w, "LEAF_NODE_CELL_SIZE: %d\n", c.LeafNodeCellSize)
	fmt.Fprintf(w, "LEAF_NODE_SPACE_FOR_CELLS: %d\n", c.LeafNodeSpaceForCells)
	fmt.Fprintf(w, "LEAF_NODE_MAX_CELLS: %d\n", c.LeafNodeMaxCells)
}

package btree

import "pagedb/internal/row"

// Node header layout (spec.md §3):
//
//	common: node_type(1) is_root(1) parent_page_id(4)           = 6 bytes
//	leaf:   + next_leaf_page_id(4) num_cells(4)                 = 14 bytes
//	internal: + num_keys(4) right_child_page_id(4)              = 14 bytes
const (
	CommonNodeHeaderSize = 1 + 1 + 4
	LeafNodeHeaderSize   = CommonNodeHeaderSize + 4 + 4
	InternalNodeHeaderSize = CommonNodeHeaderSize + 4 + 4

	// LeafNodeCellSize is key(4) + the row's fixed-width bytes.
	LeafNodeCellSize = 4 + row.Size

	// InternalNodeCellSize is child_page_id(4) + key(4).
	InternalNodeCellSize = 4 + 4
)

// Constants holds the page/cell constants printed by the shell's
// `.constants` command, grounded on the original implementation's field
// names and ordering (see SPEC_FULL.md §4.10).
type Constants struct {
	RowSize                int
	CommonNodeHeaderSize   int
	LeafNodeHeaderSize     int
	LeafNodeCellSize       int
	LeafNodeSpaceForCells  int
	LeafNodeMaxCells       int
}

// ComputeConstants derives every size/capacity constant from the
// configured page size.
func ComputeConstants(pageSize int) Constants {
	spaceForCells := pageSize - LeafNodeHeaderSize
	return Constants{
		RowSize:               row.Size,
		CommonNodeHeaderSize:  CommonNodeHeaderSize,
		LeafNodeHeaderSize:    LeafNodeHeaderSize,
		LeafNodeCellSize:      LeafNodeCellSize,
		LeafNodeSpaceForCells: spaceForCells,
		LeafNodeMaxCells:      spaceForCells / LeafNodeCellSize,
	}
}

// LeafMaxCells returns the number of leaf cells a page of pageSize holds
// before the next insert must split it.
func LeafMaxCells(pageSize int) int {
	return (pageSize - LeafNodeHeaderSize) / LeafNodeCellSize
}

// InternalMaxKeys returns the number of internal keyed cells a page of
// pageSize holds before the next child add must split it.
func InternalMaxKeys(pageSize int) int {
	return (pageSize - InternalNodeHeaderSize) / InternalNodeCellSize
}

// MinCells is the underflow threshold shared by leaf and internal nodes:
// floor(MAX/2).
func MinCells(max int) int {
	return max / 2
}

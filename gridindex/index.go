// Package gridindex derives the coordinate system of a grid's matrices from
// its asset tables: how many (node, phase) and (branch, phase) pairs exist,
// which integer position each pair occupies, and how element names map onto
// position lists.
//
// The flattened tables concatenate per-phase slices in phase order: all
// phase-1 entries first, then phase-2, then phase-3, each slice preserving
// element declaration order. Lines precede winding-1 transformers in the
// branch table. Matrix dimensions equal the exact count of existing pairs;
// a missing phase contributes no row or column, because a padded dimension
// would make the nodal admittance matrix singular.
//
// An Index is built once per scenario and is immutable afterwards; it may be
// read concurrently without synchronization.
package gridindex

import (
	"errors"
	"fmt"

	"github.com/voltmesh/voltmesh/griddata"
)

// Sentinel errors for grid index construction and lookups.
var (
	// ErrNilData indicates a nil *griddata.GridData was passed to New.
	ErrNilData = errors.New("gridindex: grid data is nil")
	// ErrMissingSourceNode indicates the grid's source node name matches no
	// row of the flattened node table.
	ErrMissingSourceNode = errors.New("gridindex: source node not found")
	// ErrUnknownName indicates a lookup referenced a name absent from the
	// source tables. Names present with zero positions do not trigger this.
	ErrUnknownName = errors.New("gridindex: unknown element name")
	// ErrLoadUnplaced indicates a load with at least one connected phase
	// matched no (node, phase) row, i.e. it references phases its node does
	// not carry.
	ErrLoadUnplaced = errors.New("gridindex: load resolves to no node position")
)

// NodeType distinguishes the grid's single source node from all others.
type NodeType string

const (
	// Source marks the node referenced by the grid's source node name.
	Source NodeType = "source"
	// NoSource marks every other node.
	NoSource NodeType = "no_source"
)

// BranchKind labels the element category of a branch table row.
type BranchKind string

const (
	// BranchLine marks rows contributed by lines.
	BranchLine BranchKind = "line"
	// BranchTransformer marks rows contributed by winding-1 transformers.
	BranchTransformer BranchKind = "transformer"
)

// NodeEntry is one row of the flattened node table: one connected phase of
// one node. Its slice position is the node-phase matrix coordinate.
type NodeEntry struct {
	Node  string
	Phase griddata.Phase
	Type  NodeType
}

// BranchEntry is one row of the flattened branch table: one connected phase
// of one line or winding-1 transformer.
type BranchEntry struct {
	Branch string
	Phase  griddata.Phase
	Kind   BranchKind
}

// Index holds the dimension counts, flattened tables and name→position
// lookups of one grid. Immutable once built.
type Index struct {
	nodeDimension        int
	lineDimension        int
	transformerDimension int
	branchDimension      int
	loadDimension        int

	nodes    []NodeEntry
	branches []BranchEntry

	nodesByName               map[string][]int
	nodesByPhase              map[griddata.Phase][]int
	nodesByType               map[NodeType][]int
	nodesByLoadName           map[string][]int
	branchesByLineName        map[string][]int
	branchesByTransformerName map[string][]int
	branchesByPhase           map[griddata.Phase][]int
	loadsByName               map[string]int
}

// New builds the Index for the given grid data.
//
// Returns ErrNilData for nil input, ErrMissingSourceNode if the declared
// source node contributes no flattened row, and ErrLoadUnplaced (wrapped with
// the load name) if a load's connected phases match no node position. Loads
// with zero connected phases are legal and resolve to empty position lists.
// Time: O(E·P) over elements and phases.
func New(data *griddata.GridData) (*Index, error) {
	if data == nil {
		return nil, ErrNilData
	}

	ix := &Index{}
	for _, n := range data.Nodes {
		ix.nodeDimension += n.Count()
	}
	for _, l := range data.Lines {
		ix.lineDimension += l.Count()
	}
	transformersOne := data.TransformersWinding(1)
	for _, t := range transformersOne {
		ix.transformerDimension += t.Count()
	}
	ix.branchDimension = ix.lineDimension + ix.transformerDimension
	ix.loadDimension = len(data.Loads)

	// Flattened node table: per-phase concatenation in declaration order.
	ix.nodes = make([]NodeEntry, 0, ix.nodeDimension)
	sourceSeen := false
	for _, p := range griddata.Phases {
		for _, n := range data.Nodes {
			if !n.Connected(p) {
				continue
			}
			typ := NoSource
			if n.Name == data.Grid.SourceNodeName {
				typ = Source
				sourceSeen = true
			}
			ix.nodes = append(ix.nodes, NodeEntry{Node: n.Name, Phase: p, Type: typ})
		}
	}
	if !sourceSeen {
		return nil, fmt.Errorf("source node %q: %w", data.Grid.SourceNodeName, ErrMissingSourceNode)
	}

	// Flattened branch table: lines by phase, then winding-1 transformers by phase.
	ix.branches = make([]BranchEntry, 0, ix.branchDimension)
	for _, p := range griddata.Phases {
		for _, l := range data.Lines {
			if l.Connected(p) {
				ix.branches = append(ix.branches, BranchEntry{Branch: l.Name, Phase: p, Kind: BranchLine})
			}
		}
	}
	for _, p := range griddata.Phases {
		for _, t := range transformersOne {
			if t.Connected(p) {
				ix.branches = append(ix.branches, BranchEntry{Branch: t.Name, Phase: p, Kind: BranchTransformer})
			}
		}
	}

	// Position lookups, pre-generated so element insertion never scans by name.
	// Every declared name gets an entry, even when its position list is empty.
	ix.nodesByName = make(map[string][]int, len(data.Nodes))
	for _, n := range data.Nodes {
		ix.nodesByName[n.Name] = []int{}
	}
	ix.nodesByPhase = map[griddata.Phase][]int{griddata.Phase1: {}, griddata.Phase2: {}, griddata.Phase3: {}}
	ix.nodesByType = map[NodeType][]int{Source: {}, NoSource: {}}
	for i, e := range ix.nodes {
		ix.nodesByName[e.Node] = append(ix.nodesByName[e.Node], i)
		ix.nodesByPhase[e.Phase] = append(ix.nodesByPhase[e.Phase], i)
		ix.nodesByType[e.Type] = append(ix.nodesByType[e.Type], i)
	}

	// Line and transformer positions live in separate maps keyed per kind, so
	// a line and a transformer sharing a name never cross-contaminate.
	ix.branchesByLineName = make(map[string][]int, len(data.Lines))
	for _, l := range data.Lines {
		ix.branchesByLineName[l.Name] = []int{}
	}
	ix.branchesByTransformerName = make(map[string][]int, len(transformersOne))
	for _, t := range transformersOne {
		ix.branchesByTransformerName[t.Name] = []int{}
	}
	ix.branchesByPhase = map[griddata.Phase][]int{griddata.Phase1: {}, griddata.Phase2: {}, griddata.Phase3: {}}
	for i, e := range ix.branches {
		switch e.Kind {
		case BranchLine:
			ix.branchesByLineName[e.Branch] = append(ix.branchesByLineName[e.Branch], i)
		case BranchTransformer:
			ix.branchesByTransformerName[e.Branch] = append(ix.branchesByTransformerName[e.Branch], i)
		}
		ix.branchesByPhase[e.Phase] = append(ix.branchesByPhase[e.Phase], i)
	}

	// Load positions: the rows of the load's node restricted to the load's
	// connected phases. A connected load matching nothing is a configuration
	// error, not a silent empty list.
	ix.nodesByLoadName = make(map[string][]int, len(data.Loads))
	ix.loadsByName = make(map[string]int, len(data.Loads))
	for ordinal, load := range data.Loads {
		pos := []int{}
		for i, e := range ix.nodes {
			if e.Node == load.Node && load.Connected(e.Phase) {
				pos = append(pos, i)
			}
		}
		if len(pos) == 0 && load.Count() > 0 {
			return nil, fmt.Errorf("load %q on node %q: %w", load.Name, load.Node, ErrLoadUnplaced)
		}
		ix.nodesByLoadName[load.Name] = pos
		ix.loadsByName[load.Name] = ordinal
	}

	return ix, nil
}

// NodeDimension returns the count of (node, phase) pairs; it is the exact
// row and column count of the nodal admittance matrix.
func (ix *Index) NodeDimension() int { return ix.nodeDimension }

// LineDimension returns the count of (line, phase) pairs.
func (ix *Index) LineDimension() int { return ix.lineDimension }

// TransformerDimension returns the count of (winding-1 transformer, phase) pairs.
func (ix *Index) TransformerDimension() int { return ix.transformerDimension }

// BranchDimension returns the row count of the branch admittance and
// incidence matrices: line plus transformer dimensions.
func (ix *Index) BranchDimension() int { return ix.branchDimension }

// LoadDimension returns the number of loads; it is the column count of the
// load incidence matrices.
func (ix *Index) LoadDimension() int { return ix.loadDimension }

// NodeEntries returns a copy of the flattened node table.
func (ix *Index) NodeEntries() []NodeEntry {
	out := make([]NodeEntry, len(ix.nodes))
	copy(out, ix.nodes)

	return out
}

// BranchEntries returns a copy of the flattened branch table.
func (ix *Index) BranchEntries() []BranchEntry {
	out := make([]BranchEntry, len(ix.branches))
	copy(out, ix.branches)

	return out
}

// positions returns a defensive copy of list, or ErrUnknownName when the key
// was never declared.
func positions(list []int, ok bool, kind, name string) ([]int, error) {
	if !ok {
		return nil, fmt.Errorf("%s %q: %w", kind, name, ErrUnknownName)
	}
	out := make([]int, len(list))
	copy(out, list)

	return out, nil
}

// NodesByName returns the node-phase positions of the named node, in phase
// order. Zero-phase nodes yield an empty list.
func (ix *Index) NodesByName(name string) ([]int, error) {
	list, ok := ix.nodesByName[name]

	return positions(list, ok, "node", name)
}

// NodesByNameAndPhases returns the positions of the named node restricted to
// the given phases, preserving phase order. The same filter places loads and
// branch endpoints whose phase set is narrower than the node's.
func (ix *Index) NodesByNameAndPhases(name string, phases []griddata.Phase) ([]int, error) {
	list, ok := ix.nodesByName[name]
	if !ok {
		return nil, fmt.Errorf("node %q: %w", name, ErrUnknownName)
	}
	out := make([]int, 0, len(list))
	for _, i := range list {
		for _, p := range phases {
			if ix.nodes[i].Phase == p {
				out = append(out, i)

				break
			}
		}
	}

	return out, nil
}

// NodesByPhase returns the node-phase positions carrying phase p.
func (ix *Index) NodesByPhase(p griddata.Phase) []int {
	out, _ := positions(ix.nodesByPhase[p], true, "", "")

	return out
}

// NodesByType returns the node-phase positions of the given node type.
func (ix *Index) NodesByType(t NodeType) []int {
	out, _ := positions(ix.nodesByType[t], true, "", "")

	return out
}

// NodesByLoadName returns the node-phase positions the named load attaches
// to. Zero-phase loads yield an empty list.
func (ix *Index) NodesByLoadName(name string) ([]int, error) {
	list, ok := ix.nodesByLoadName[name]

	return positions(list, ok, "load", name)
}

// BranchesByLineName returns the branch positions of the named line.
func (ix *Index) BranchesByLineName(name string) ([]int, error) {
	list, ok := ix.branchesByLineName[name]

	return positions(list, ok, "line", name)
}

// BranchesByTransformerName returns the branch positions of the named
// transformer's winding-1 rows.
func (ix *Index) BranchesByTransformerName(name string) ([]int, error) {
	list, ok := ix.branchesByTransformerName[name]

	return positions(list, ok, "transformer", name)
}

// BranchesByPhase returns the branch positions carrying phase p.
func (ix *Index) BranchesByPhase(p griddata.Phase) []int {
	out, _ := positions(ix.branchesByPhase[p], true, "", "")

	return out
}

// LoadByName returns the load's ordinal column in the load incidence matrices.
func (ix *Index) LoadByName(name string) (int, error) {
	ordinal, ok := ix.loadsByName[name]
	if !ok {
		return 0, fmt.Errorf("load %q: %w", name, ErrUnknownName)
	}

	return ordinal, nil
}

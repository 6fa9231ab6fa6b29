package gridindex_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/voltmesh/voltmesh/griddata"
	"github.com/voltmesh/voltmesh/gridindex"
)

var (
	allPhases = griddata.PhaseFlags{IsPhase1Connected: true, IsPhase2Connected: true, IsPhase3Connected: true}
	phase13   = griddata.PhaseFlags{IsPhase1Connected: true, IsPhase3Connected: true}
	phase2    = griddata.PhaseFlags{IsPhase2Connected: true}
)

// mixedGrid builds a small grid with uneven phase coverage:
// three nodes (3, 2 and 1 phases), two lines and one transformer.
func mixedGrid() *griddata.GridData {
	return &griddata.GridData{
		Grid: griddata.Grid{Name: "mixed", SourceNodeName: "a"},
		Nodes: []griddata.Node{
			{Name: "a", VoltageNominal: 2400, PhaseFlags: allPhases},
			{Name: "b", VoltageNominal: 2400, PhaseFlags: allPhases},
			{Name: "c", VoltageNominal: 2400, PhaseFlags: phase13},
		},
		Lines: []griddata.Line{
			{Name: "ab", Type: "t3", Node1: "a", Node2: "b", Length: 1, PhaseFlags: allPhases},
			{Name: "bc", Type: "t2", Node1: "b", Node2: "c", Length: 1, PhaseFlags: phase13},
		},
		Transformers: []griddata.Transformer{
			{Name: "tr", Winding: 1, Node: "a", Type: "tt", PowerNominal: 1e6, PhaseFlags: allPhases},
			{Name: "tr", Winding: 2, Node: "b", Type: "tt", PowerNominal: 1e6, PhaseFlags: allPhases},
		},
		Loads: []griddata.Load{
			{Name: "l1", Node: "b", Connection: griddata.Wye, PhaseFlags: allPhases},
			{Name: "l2", Node: "c", Connection: griddata.Delta, PhaseFlags: phase13},
		},
	}
}

// TestNew_Dimensions verifies every dimension count against hand sums.
func TestNew_Dimensions(t *testing.T) {
	ix, err := gridindex.New(mixedGrid())
	require.NoError(t, err)

	require.Equal(t, 8, ix.NodeDimension(), "3+3+2 connected node phases")
	require.Equal(t, 5, ix.LineDimension(), "3+2 connected line phases")
	require.Equal(t, 3, ix.TransformerDimension(), "winding-1 phases only")
	require.Equal(t, 8, ix.BranchDimension())
	require.Equal(t, 2, ix.LoadDimension())

	require.Len(t, ix.NodeEntries(), ix.NodeDimension(),
		"flattened node table rows equal the node dimension")
}

// TestNew_FlattenedOrdering pins the phase-major ordering of both tables:
// all phase-1 rows first, then phase-2, then phase-3, elements in declaration
// order within each phase, lines before transformers.
func TestNew_FlattenedOrdering(t *testing.T) {
	ix, err := gridindex.New(mixedGrid())
	require.NoError(t, err)

	wantNodes := []gridindex.NodeEntry{
		{Node: "a", Phase: griddata.Phase1, Type: gridindex.Source},
		{Node: "b", Phase: griddata.Phase1, Type: gridindex.NoSource},
		{Node: "c", Phase: griddata.Phase1, Type: gridindex.NoSource},
		{Node: "a", Phase: griddata.Phase2, Type: gridindex.Source},
		{Node: "b", Phase: griddata.Phase2, Type: gridindex.NoSource},
		{Node: "a", Phase: griddata.Phase3, Type: gridindex.Source},
		{Node: "b", Phase: griddata.Phase3, Type: gridindex.NoSource},
		{Node: "c", Phase: griddata.Phase3, Type: gridindex.NoSource},
	}
	require.Equal(t, wantNodes, ix.NodeEntries())

	wantBranches := []gridindex.BranchEntry{
		{Branch: "ab", Phase: griddata.Phase1, Kind: gridindex.BranchLine},
		{Branch: "bc", Phase: griddata.Phase1, Kind: gridindex.BranchLine},
		{Branch: "ab", Phase: griddata.Phase2, Kind: gridindex.BranchLine},
		{Branch: "ab", Phase: griddata.Phase3, Kind: gridindex.BranchLine},
		{Branch: "bc", Phase: griddata.Phase3, Kind: gridindex.BranchLine},
		{Branch: "tr", Phase: griddata.Phase1, Kind: gridindex.BranchTransformer},
		{Branch: "tr", Phase: griddata.Phase2, Kind: gridindex.BranchTransformer},
		{Branch: "tr", Phase: griddata.Phase3, Kind: gridindex.BranchTransformer},
	}
	require.Equal(t, wantBranches, ix.BranchEntries())
}

// TestLookups_Consistency checks that name and phase lookups agree with the
// flattened table and with each other.
func TestLookups_Consistency(t *testing.T) {
	ix, err := gridindex.New(mixedGrid())
	require.NoError(t, err)

	posC, err := ix.NodesByName("c")
	require.NoError(t, err)
	require.Equal(t, []int{2, 7}, posC)

	// Intersection of node-by-name and node-by-phase must reproduce the
	// name+phase filter.
	phase3 := ix.NodesByPhase(griddata.Phase3)
	var both []int
	for _, p := range posC {
		for _, q := range phase3 {
			if p == q {
				both = append(both, p)
			}
		}
	}
	filtered, err := ix.NodesByNameAndPhases("c", []griddata.Phase{griddata.Phase3})
	require.NoError(t, err)
	require.Equal(t, both, filtered)

	require.Equal(t, []int{0, 3, 5}, ix.NodesByType(gridindex.Source))
	require.Len(t, ix.NodesByType(gridindex.NoSource), 5)

	branchAB, err := ix.BranchesByLineName("ab")
	require.NoError(t, err)
	require.Equal(t, []int{0, 2, 3}, branchAB)

	branchTR, err := ix.BranchesByTransformerName("tr")
	require.NoError(t, err)
	require.Equal(t, []int{5, 6, 7}, branchTR)

	require.Equal(t, []int{0, 1, 5}, ix.BranchesByPhase(griddata.Phase1))
}

// TestLoadLookups verifies load position and ordinal mappings.
func TestLoadLookups(t *testing.T) {
	ix, err := gridindex.New(mixedGrid())
	require.NoError(t, err)

	l1, err := ix.NodesByLoadName("l1")
	require.NoError(t, err)
	require.Equal(t, []int{1, 4, 6}, l1, "all phases of node b")

	l2, err := ix.NodesByLoadName("l2")
	require.NoError(t, err)
	require.Equal(t, []int{2, 7}, l2, "phases 1 and 3 of node c")

	ord, err := ix.LoadByName("l2")
	require.NoError(t, err)
	require.Equal(t, 1, ord)
}

// TestNameCollision_LineTransformerSeparated verifies a line and transformer
// sharing a name keep distinct position lists per kind.
func TestNameCollision_LineTransformerSeparated(t *testing.T) {
	data := mixedGrid()
	data.Transformers[0].Name = "ab"
	data.Transformers[1].Name = "ab"
	ix, err := gridindex.New(data)
	require.NoError(t, err)

	line, err := ix.BranchesByLineName("ab")
	require.NoError(t, err)
	require.Equal(t, []int{0, 2, 3}, line, "line positions only")

	tr, err := ix.BranchesByTransformerName("ab")
	require.NoError(t, err)
	require.Equal(t, []int{5, 6, 7}, tr, "transformer positions only")
}

// TestZeroPhaseElements verifies disconnected placeholders are legal and
// resolve to empty position lists.
func TestZeroPhaseElements(t *testing.T) {
	data := mixedGrid()
	data.Nodes = append(data.Nodes, griddata.Node{Name: "ghost"})
	data.Lines = append(data.Lines, griddata.Line{Name: "dead", Node1: "a", Node2: "b"})
	data.Loads = append(data.Loads, griddata.Load{Name: "idle", Node: "b", Connection: griddata.Wye})

	ix, err := gridindex.New(data)
	require.NoError(t, err)
	require.Equal(t, 8, ix.NodeDimension(), "ghost node adds no rows")

	pos, err := ix.NodesByName("ghost")
	require.NoError(t, err)
	require.Empty(t, pos)

	pos, err = ix.BranchesByLineName("dead")
	require.NoError(t, err)
	require.Empty(t, pos)

	pos, err = ix.NodesByLoadName("idle")
	require.NoError(t, err)
	require.Empty(t, pos)
}

// TestNew_Errors covers nil data, missing source and unplaced loads.
func TestNew_Errors(t *testing.T) {
	_, err := gridindex.New(nil)
	require.ErrorIs(t, err, gridindex.ErrNilData)

	data := mixedGrid()
	data.Grid.SourceNodeName = "nowhere"
	_, err = gridindex.New(data)
	require.ErrorIs(t, err, gridindex.ErrMissingSourceNode)

	data = mixedGrid()
	// Node c carries phases 1 and 3 only; a phase-2 load on it cannot place.
	data.Loads[1].PhaseFlags = phase2
	_, err = gridindex.New(data)
	require.ErrorIs(t, err, gridindex.ErrLoadUnplaced)
	require.ErrorContains(t, err, "l2")
}

// TestLookups_UnknownNames verifies undeclared names fail rather than
// returning empty lists.
func TestLookups_UnknownNames(t *testing.T) {
	ix, err := gridindex.New(mixedGrid())
	require.NoError(t, err)

	_, err = ix.NodesByName("nope")
	require.ErrorIs(t, err, gridindex.ErrUnknownName)
	_, err = ix.BranchesByLineName("nope")
	require.ErrorIs(t, err, gridindex.ErrUnknownName)
	_, err = ix.BranchesByTransformerName("nope")
	require.ErrorIs(t, err, gridindex.ErrUnknownName)
	_, err = ix.NodesByLoadName("nope")
	require.ErrorIs(t, err, gridindex.ErrUnknownName)
	_, err = ix.LoadByName("nope")
	require.ErrorIs(t, err, gridindex.ErrUnknownName)
}

// TestIdempotence verifies two builds from identical data agree exactly.
func TestIdempotence(t *testing.T) {
	first, err := gridindex.New(mixedGrid())
	require.NoError(t, err)
	second, err := gridindex.New(mixedGrid())
	require.NoError(t, err)

	require.Equal(t, first.NodeEntries(), second.NodeEntries())
	require.Equal(t, first.BranchEntries(), second.BranchEntries())
	for _, name := range []string{"a", "b", "c"} {
		p1, err := first.NodesByName(name)
		require.NoError(t, err)
		p2, err := second.NodesByName(name)
		require.NoError(t, err)
		require.Equal(t, p1, p2)
	}
}

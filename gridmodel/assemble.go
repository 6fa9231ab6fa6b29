package gridmodel

import (
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/mat"

	"github.com/voltmesh/voltmesh/griddata"
	"github.com/voltmesh/voltmesh/gridindex"
	"github.com/voltmesh/voltmesh/sparse"
)

// assembler carries the mutable builders during one model construction.
// It is single-use and single-threaded; the finished Model holds only the
// frozen matrices.
type assembler struct {
	data  *griddata.GridData
	index *gridindex.Index
	opts  Options

	nodeAdmittance     *sparse.ComplexBuilder
	nodeTransformation *sparse.RealBuilder
	branchAdmittance1  *sparse.ComplexBuilder
	branchAdmittance2  *sparse.ComplexBuilder
	branchIncidence1   *sparse.RealBuilder
	branchIncidence2   *sparse.RealBuilder
	loadIncidenceWye   *sparse.RealBuilder
	loadIncidenceDelta *sparse.RealBuilder
}

func newAssembler(data *griddata.GridData, index *gridindex.Index, opts Options) (*assembler, error) {
	a := &assembler{data: data, index: index, opts: opts}
	nd, bd, ld := index.NodeDimension(), index.BranchDimension(), index.LoadDimension()

	var err error
	if a.nodeAdmittance, err = sparse.NewComplexBuilder(nd, nd); err != nil {
		return nil, err
	}
	if a.nodeTransformation, err = sparse.NewRealBuilder(nd, nd); err != nil {
		return nil, err
	}
	if a.branchAdmittance1, err = sparse.NewComplexBuilder(bd, nd); err != nil {
		return nil, err
	}
	if a.branchAdmittance2, err = sparse.NewComplexBuilder(bd, nd); err != nil {
		return nil, err
	}
	if a.branchIncidence1, err = sparse.NewRealBuilder(bd, nd); err != nil {
		return nil, err
	}
	if a.branchIncidence2, err = sparse.NewRealBuilder(bd, nd); err != nil {
		return nil, err
	}
	if a.loadIncidenceWye, err = sparse.NewRealBuilder(nd, ld); err != nil {
		return nil, err
	}
	if a.loadIncidenceDelta, err = sparse.NewRealBuilder(nd, ld); err != nil {
		return nil, err
	}

	return a, nil
}

// addComplexSub accumulates sub element-by-element at the given row and
// column position lists. Positions need not be contiguous; additive
// accumulation lets overlapping elements (parallel lines) sum.
func addComplexSub(b *sparse.ComplexBuilder, sub *mat.CDense, rows, cols []int) error {
	r, c := sub.Dims()
	if r != len(rows) || c != len(cols) {
		return fmt.Errorf("sub-matrix %dx%d vs positions %dx%d: %w",
			r, c, len(rows), len(cols), ErrPhaseMismatch)
	}
	for i, row := range rows {
		for j, col := range cols {
			if err := b.Add(row, col, sub.At(i, j)); err != nil {
				return err
			}
		}
	}

	return nil
}

// addIdentitySub accumulates a unit diagonal at (rows[i], cols[i]).
func addIdentitySub(b *sparse.RealBuilder, rows, cols []int) error {
	if len(rows) != len(cols) {
		return fmt.Errorf("identity block %dx%d: %w", len(rows), len(cols), ErrPhaseMismatch)
	}
	for i := range rows {
		if err := b.Add(rows[i], cols[i], 1); err != nil {
			return err
		}
	}

	return nil
}

// addTwoPort places a π-equivalent element's blocks (y11 = y22, y12 = y21)
// into the nodal admittance matrix at the four node-block combinations, into
// the two branch admittance matrices at the element's branch rows, and unit
// diagonals into the two branch incidence matrices.
func (a *assembler) addTwoPort(y11, y12 *mat.CDense, node1, node2, branch []int) error {
	if err := addComplexSub(a.nodeAdmittance, y11, node1, node1); err != nil {
		return err
	}
	if err := addComplexSub(a.nodeAdmittance, y12, node1, node2); err != nil {
		return err
	}
	if err := addComplexSub(a.nodeAdmittance, y12, node2, node1); err != nil {
		return err
	}
	if err := addComplexSub(a.nodeAdmittance, y11, node2, node2); err != nil {
		return err
	}

	if err := addComplexSub(a.branchAdmittance1, y11, branch, node1); err != nil {
		return err
	}
	if err := addComplexSub(a.branchAdmittance1, y12, branch, node2); err != nil {
		return err
	}
	if err := addComplexSub(a.branchAdmittance2, y12, branch, node1); err != nil {
		return err
	}
	if err := addComplexSub(a.branchAdmittance2, y11, branch, node2); err != nil {
		return err
	}

	if err := addIdentitySub(a.branchIncidence1, branch, node1); err != nil {
		return err
	}

	return addIdentitySub(a.branchIncidence2, branch, node2)
}

// deltaTransformation is the phase-to-phase difference matrix; per node it
// is truncated to the node's connected phases.
var deltaTransformation = [3][3]float64{
	{1, -1, 0},
	{0, 1, -1},
	{-1, 0, 1},
}

// addNodeTransformation places each node's truncated delta transformation
// block on the node's diagonal block.
func (a *assembler) addNodeTransformation() error {
	for _, n := range a.data.Nodes {
		phases := n.List()
		pos, err := a.index.NodesByName(n.Name)
		if err != nil {
			return err
		}
		for i, p := range phases {
			for j, q := range phases {
				v := deltaTransformation[p-1][q-1]
				if v == 0 {
					continue
				}
				if err := a.nodeTransformation.Add(pos[i], pos[j], v); err != nil {
					return err
				}
			}
		}
	}

	return nil
}

// addLoads fills one column per load into the wye or delta incidence matrix.
// Wye loads split a unit entry evenly across their node-phase positions.
// Delta loads split it across the cyclic phase pairs, one fractional entry on
// the lower phase of each pair; a single-phase delta load degenerates to a
// unit entry. Zero-phase loads leave an all-zero column in both matrices.
func (a *assembler) addLoads() error {
	for ordinal, load := range a.data.Loads {
		pos, err := a.index.NodesByLoadName(load.Name)
		if err != nil {
			return err
		}
		if len(pos) == 0 {
			continue
		}
		switch load.Connection {
		case griddata.Delta:
			if len(pos) == 1 {
				if err := a.loadIncidenceDelta.Add(pos[0], ordinal, 1); err != nil {
					return err
				}

				continue
			}
			// Cyclic pairs over the connected phases: (p0,p1), (p1,p2), ..., (pn-1,p0).
			// Two phases yield a single pair. Each pair contributes one
			// fractional entry on its lower phase; mirroring −scale onto the
			// upper phase would cancel the column elementwise for three
			// phases, erasing the load.
			npairs := len(pos)
			if len(pos) == 2 {
				npairs = 1
			}
			scale := 1 / float64(npairs)
			for k := 0; k < npairs; k++ {
				if err := a.loadIncidenceDelta.Add(pos[k], ordinal, scale); err != nil {
					return err
				}
			}
		default: // wye
			scale := 1 / float64(len(pos))
			for _, p := range pos {
				if err := a.loadIncidenceWye.Add(p, ordinal, scale); err != nil {
					return err
				}
			}
		}
	}

	return nil
}

// phaseAngle returns the standard phase angle in radians: 0, −120°, +120°.
func phaseAngle(p griddata.Phase) float64 {
	switch p {
	case griddata.Phase2:
		return -2 * math.Pi / 3
	case griddata.Phase3:
		return 2 * math.Pi / 3
	}

	return 0
}

// voltageByDefinition builds the no-load voltage vector from each node's
// nominal voltage magnitude at the standard phase angles.
func voltageByDefinition(data *griddata.GridData, index *gridindex.Index) []complex128 {
	v := make([]complex128, index.NodeDimension())
	for i, e := range index.NodeEntries() {
		node, _ := data.NodeByName(e.Node)
		v[i] = complex(node.VoltageNominal, 0) * cmplx.Exp(complex(0, phaseAngle(e.Phase)))
	}

	return v
}

// voltageByCalculation solves the no-source block of the assembled nodal
// admittance matrix against the source node's definition voltage:
//
//	Y_nsns · v_ns = -Y_nss · v_s
func voltageByCalculation(data *griddata.GridData, index *gridindex.Index, admittance *sparse.Complex) ([]complex128, error) {
	def := voltageByDefinition(data, index)
	src := index.NodesByType(gridindex.Source)
	rest := index.NodesByType(gridindex.NoSource)
	if len(rest) == 0 {
		return def, nil
	}

	ynsns := mat.NewCDense(len(rest), len(rest), nil)
	for i, r := range rest {
		for j, c := range rest {
			v, err := admittance.At(r, c)
			if err != nil {
				return nil, err
			}
			ynsns.Set(i, j, v)
		}
	}
	rhs := make([]complex128, len(rest))
	for i, r := range rest {
		for _, c := range src {
			v, err := admittance.At(r, c)
			if err != nil {
				return nil, err
			}
			rhs[i] -= v * def[c]
		}
	}
	vns, err := solveComplex(ynsns, rhs)
	if err != nil {
		return nil, fmt.Errorf("no-load voltage solve: %w", ErrSingularImpedance)
	}

	out := make([]complex128, index.NodeDimension())
	for _, p := range src {
		out[p] = def[p]
	}
	for i, p := range rest {
		out[p] = vns[i]
	}

	return out, nil
}

// loadPowerNominal builds the nominal complex load power vector in load
// declaration order.
func loadPowerNominal(data *griddata.GridData) []complex128 {
	s := make([]complex128, len(data.Loads))
	for i, l := range data.Loads {
		s[i] = complex(l.ActivePowerNominal, l.ReactivePowerNominal)
	}

	return s
}

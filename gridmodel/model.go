// Package gridmodel builds the steady-state electric grid model: the sparse
// admittance and incidence matrices relating node-phase voltages, branch
// flows and load powers, indexed by the coordinate system of package
// gridindex.
//
// Construction is synchronous, single-threaded and deterministic: elements
// are visited in declaration order and their two-port blocks accumulate
// additively into the global matrices. A configuration error (unknown type,
// phase mismatch, floating node phase) aborts construction; there is no
// partial model. The finished Model is immutable and safe for concurrent
// readers.
package gridmodel

import (
	"fmt"

	"github.com/voltmesh/voltmesh/griddata"
	"github.com/voltmesh/voltmesh/gridindex"
	"github.com/voltmesh/voltmesh/sparse"
)

// Model is the assembled steady-state electric grid model. It owns its
// matrices and Index; consumers only read them.
type Model struct {
	index *gridindex.Index

	nodeAdmittance     *sparse.Complex
	nodeTransformation *sparse.Real
	branchAdmittance1  *sparse.Complex
	branchAdmittance2  *sparse.Complex
	branchIncidence1   *sparse.Real
	branchIncidence2   *sparse.Real
	loadIncidenceWye   *sparse.Real
	loadIncidenceDelta *sparse.Real

	voltageNoLoad    []complex128
	loadPowerNominal []complex128
}

// New validates data, derives its index and assembles the model matrices.
//
// Any configuration error is returned wrapped with the offending element's
// name: griddata sentinel errors from validation, gridindex sentinels from
// index construction, and this package's sentinels from matrix assembly.
// Time: O(E·P²) over elements and phases plus the final occupancy scan.
func New(data *griddata.GridData, opts Options) (*Model, error) {
	if data == nil {
		return nil, ErrNilData
	}
	if opts.BaseFrequency <= 0 {
		return nil, fmt.Errorf("base frequency %v: %w", opts.BaseFrequency, ErrBadOptions)
	}
	if opts.VoltageMethod != VoltageByDefinition && opts.VoltageMethod != VoltageByCalculation {
		return nil, fmt.Errorf("voltage method %d: %w", opts.VoltageMethod, ErrBadOptions)
	}
	if err := data.Validate(); err != nil {
		return nil, err
	}
	index, err := gridindex.New(data)
	if err != nil {
		return nil, err
	}

	a, err := newAssembler(data, index, opts)
	if err != nil {
		return nil, err
	}
	if err := a.addLines(); err != nil {
		return nil, err
	}
	if err := a.addTransformers(); err != nil {
		return nil, err
	}
	if err := a.addNodeTransformation(); err != nil {
		return nil, err
	}
	if err := a.addLoads(); err != nil {
		return nil, err
	}

	m := &Model{
		index:              index,
		nodeAdmittance:     a.nodeAdmittance.Build(),
		nodeTransformation: a.nodeTransformation.Build(),
		branchAdmittance1:  a.branchAdmittance1.Build(),
		branchAdmittance2:  a.branchAdmittance2.Build(),
		branchIncidence1:   a.branchIncidence1.Build(),
		branchIncidence2:   a.branchIncidence2.Build(),
		loadIncidenceWye:   a.loadIncidenceWye.Build(),
		loadIncidenceDelta: a.loadIncidenceDelta.Build(),
	}

	// Every node phase must be electrically connected; an all-zero admittance
	// row would make the matrix singular for any power-flow use.
	for i, e := range index.NodeEntries() {
		if !m.nodeAdmittance.RowHasNonZero(i) {
			return nil, fmt.Errorf("node %q phase %d: %w", e.Node, e.Phase, ErrFloatingNode)
		}
	}

	switch opts.VoltageMethod {
	case VoltageByCalculation:
		m.voltageNoLoad, err = voltageByCalculation(data, index, m.nodeAdmittance)
		if err != nil {
			return nil, err
		}
	default:
		m.voltageNoLoad = voltageByDefinition(data, index)
	}
	m.loadPowerNominal = loadPowerNominal(data)

	return m, nil
}

// Index returns the model's coordinate index.
func (m *Model) Index() *gridindex.Index { return m.index }

// NodeAdmittance returns the nodal admittance matrix
// (node dimension × node dimension).
func (m *Model) NodeAdmittance() *sparse.Complex { return m.nodeAdmittance }

// NodeTransformation returns the nodal delta transformation matrix
// (node dimension × node dimension).
func (m *Model) NodeTransformation() *sparse.Real { return m.nodeTransformation }

// BranchAdmittance1 returns the branch admittance matrix of the sending end
// (branch dimension × node dimension).
func (m *Model) BranchAdmittance1() *sparse.Complex { return m.branchAdmittance1 }

// BranchAdmittance2 returns the branch admittance matrix of the receiving
// end (branch dimension × node dimension).
func (m *Model) BranchAdmittance2() *sparse.Complex { return m.branchAdmittance2 }

// BranchIncidence1 returns the sending-end branch incidence matrix.
func (m *Model) BranchIncidence1() *sparse.Real { return m.branchIncidence1 }

// BranchIncidence2 returns the receiving-end branch incidence matrix.
func (m *Model) BranchIncidence2() *sparse.Real { return m.branchIncidence2 }

// LoadIncidenceWye returns the wye load incidence matrix
// (node dimension × load dimension).
func (m *Model) LoadIncidenceWye() *sparse.Real { return m.loadIncidenceWye }

// LoadIncidenceDelta returns the delta load incidence matrix
// (node dimension × load dimension).
func (m *Model) LoadIncidenceDelta() *sparse.Real { return m.loadIncidenceDelta }

// VoltageNoLoad returns a copy of the no-load node voltage vector.
func (m *Model) VoltageNoLoad() []complex128 {
	out := make([]complex128, len(m.voltageNoLoad))
	copy(out, m.voltageNoLoad)

	return out
}

// LoadPowerNominal returns a copy of the nominal complex load power vector,
// in load declaration order.
func (m *Model) LoadPowerNominal() []complex128 {
	out := make([]complex128, len(m.loadPowerNominal))
	copy(out, m.loadPowerNominal)

	return out
}

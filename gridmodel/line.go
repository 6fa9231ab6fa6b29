package gridmodel

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/voltmesh/voltmesh/griddata"
)

// couplingIndex maps matrix position (i, j) to the flattened upper-triangular
// entry of a line type's r/x/c data: entry order (11, 12, 22, 13, 23, 33).
// Truncating to the line's phase count reproduces the full symmetric matrix
// from the stored upper half.
var couplingIndex = [3][3]int{
	{0, 1, 3},
	{1, 2, 4},
	{3, 4, 5},
}

// nanofarad converts the stored shunt capacitance entries to farads.
const nanofarad = 1e-9

// lineSubMatrices builds the two distinct π-equivalent two-port blocks of a
// line: y11 (= y22) and y12 (= y21).
//
//	Yseries = inv((R + jX) · length)
//	Yshunt  = C · 2π·f · 1e-9 · 0.5j · length
//	y11     = Yseries + Yshunt
//	y12     = -Yseries
//
// Returns ErrPhaseMismatch when the line's connected phase count differs from
// the type's declared dimensionality, and ErrSingularImpedance when the
// series impedance cannot be inverted.
func lineSubMatrices(line griddata.Line, lt griddata.LineTypeMatrix, baseFrequency float64) (y11, y12 *mat.CDense, err error) {
	n := line.Count()
	if lt.NPhases != n {
		return nil, nil, fmt.Errorf("line %q: %d connected phases, type %q has %d: %w",
			line.Name, n, lt.LineType, lt.NPhases, ErrPhaseMismatch)
	}

	z := mat.NewCDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			k := couplingIndex[i][j]
			z.Set(i, j, complex(lt.R[k], lt.X[k])*complex(line.Length, 0))
		}
	}
	series, err := invertComplex(z)
	if err != nil {
		return nil, nil, fmt.Errorf("line %q: %w", line.Name, ErrSingularImpedance)
	}

	// Half shunt per π-equivalent end; capacitance stored in nF per unit length.
	shuntScale := complex(0, 2*math.Pi*baseFrequency*nanofarad*0.5*line.Length)
	y11 = mat.NewCDense(n, n, nil)
	y12 = mat.NewCDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			k := couplingIndex[i][j]
			y11.Set(i, j, series.At(i, j)+complex(lt.C[k], 0)*shuntScale)
			y12.Set(i, j, -series.At(i, j))
		}
	}

	return y11, y12, nil
}

// addLines accumulates every line's two-port blocks into the nodal
// admittance, branch admittance and branch incidence builders.
func (a *assembler) addLines() error {
	for _, line := range a.data.Lines {
		phases := line.List()
		if len(phases) == 0 {
			continue
		}
		lt, ok := a.data.LineType(line.Type)
		if !ok {
			return fmt.Errorf("line %q type %q: %w", line.Name, line.Type, ErrUnknownLineType)
		}
		y11, y12, err := lineSubMatrices(line, lt, a.opts.BaseFrequency)
		if err != nil {
			return err
		}

		node1, err := a.index.NodesByNameAndPhases(line.Node1, phases)
		if err != nil {
			return err
		}
		node2, err := a.index.NodesByNameAndPhases(line.Node2, phases)
		if err != nil {
			return err
		}
		branch, err := a.index.BranchesByLineName(line.Name)
		if err != nil {
			return err
		}
		if len(node1) != len(phases) || len(node2) != len(phases) {
			return fmt.Errorf("line %q: endpoint does not carry all line phases: %w",
				line.Name, ErrPhaseMismatch)
		}

		if err := a.addTwoPort(y11, y12, node1, node2, branch); err != nil {
			return fmt.Errorf("line %q: %w", line.Name, err)
		}
	}

	return nil
}

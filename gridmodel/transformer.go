package gridmodel

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/voltmesh/voltmesh/griddata"
)

// transformerSubMatrices builds the two-port blocks of a two-winding
// transformer. The per-unit series impedance of the transformer type is
// scaled to ohms with the winding-1 node's voltage base and the rated power:
//
//	Zbase = V² / S
//	y     = 1 / (z_pu · Zbase)   per connected phase (no inter-phase coupling)
//	y11   = diag(y), y12 = -diag(y)
func transformerSubMatrices(t griddata.Transformer, tt griddata.TransformerType, voltageBase float64) (y11, y12 *mat.CDense, err error) {
	n := t.Count()
	z := complex(tt.Resistance, tt.Reactance)
	if z == 0 || t.PowerNominal == 0 || voltageBase == 0 {
		return nil, nil, fmt.Errorf("transformer %q type %q: %w", t.Name, t.Type, ErrSingularImpedance)
	}
	zBase := voltageBase * voltageBase / t.PowerNominal
	y := 1 / (z * complex(zBase, 0))

	y11 = mat.NewCDense(n, n, nil)
	y12 = mat.NewCDense(n, n, nil)
	for i := 0; i < n; i++ {
		y11.Set(i, i, y)
		y12.Set(i, i, -y)
	}

	return y11, y12, nil
}

// addTransformers accumulates every two-winding transformer's blocks into
// the nodal admittance, branch admittance and branch incidence builders.
// Winding 1 is the index-defining side; both windings must carry the same
// connected phases.
func (a *assembler) addTransformers() error {
	for _, t := range a.data.TransformersWinding(1) {
		phases := t.List()
		if len(phases) == 0 {
			continue
		}
		// Winding pairing is guaranteed by griddata.Validate.
		w2, _ := a.data.TransformerWinding(t.Name, 2)
		if w2.PhaseFlags != t.PhaseFlags {
			return fmt.Errorf("transformer %q: windings carry different phases: %w",
				t.Name, ErrPhaseMismatch)
		}
		tt, ok := a.data.TransformerType(t.Type)
		if !ok {
			return fmt.Errorf("transformer %q type %q: %w", t.Name, t.Type, ErrUnknownTransformerType)
		}
		node, _ := a.data.NodeByName(t.Node)
		y11, y12, err := transformerSubMatrices(t, tt, node.VoltageNominal)
		if err != nil {
			return err
		}

		node1, err := a.index.NodesByNameAndPhases(t.Node, phases)
		if err != nil {
			return err
		}
		node2, err := a.index.NodesByNameAndPhases(w2.Node, phases)
		if err != nil {
			return err
		}
		branch, err := a.index.BranchesByTransformerName(t.Name)
		if err != nil {
			return err
		}
		if len(node1) != len(phases) || len(node2) != len(phases) {
			return fmt.Errorf("transformer %q: winding node does not carry all phases: %w",
				t.Name, ErrPhaseMismatch)
		}

		if err := a.addTwoPort(y11, y12, node1, node2, branch); err != nil {
			return fmt.Errorf("transformer %q: %w", t.Name, err)
		}
	}

	return nil
}

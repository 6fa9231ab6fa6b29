// Package griddata defines the typed asset tables a data-access layer hands
// to the grid index and grid model builders, together with sentinel errors
// and cross-reference validation.
//
// All tables are name-keyed and keep their declaration order; downstream
// index construction depends on that order being stable.
package griddata

import (
	"errors"
)

// Sentinel errors for grid data validation.
var (
	// ErrUnknownNode indicates a line, transformer or load references a node
	// name that is not present in the node table.
	ErrUnknownNode = errors.New("griddata: unknown node reference")
	// ErrDuplicateName indicates two rows of the same table share a name key.
	ErrDuplicateName = errors.New("griddata: duplicate element name")
	// ErrMissingSourceNode indicates the grid's source node name matches no node.
	ErrMissingSourceNode = errors.New("griddata: source node not found")
	// ErrBadWinding indicates a transformer is missing one of its two windings
	// or declares a winding number other than 1 or 2.
	ErrBadWinding = errors.New("griddata: invalid transformer winding")
	// ErrBadConnection indicates a load connection is neither wye nor delta.
	ErrBadConnection = errors.New("griddata: invalid load connection")
	// ErrBadTypeMatrix indicates a line type's upper-triangular entry count
	// does not match its declared phase count.
	ErrBadTypeMatrix = errors.New("griddata: malformed line type matrix")
)

// Phase labels one of the three conductor phases of a multi-phase grid.
type Phase int

const (
	// Phase1 is the first conductor phase.
	Phase1 Phase = 1
	// Phase2 is the second conductor phase.
	Phase2 Phase = 2
	// Phase3 is the third conductor phase.
	Phase3 Phase = 3
)

// Phases lists all phases in index order. Flattened element tables are built
// by concatenating per-phase slices in exactly this order.
var Phases = [3]Phase{Phase1, Phase2, Phase3}

// PhaseFlags records which of the three phases an element connects.
// The zero value means fully disconnected, which is legal (such an element
// contributes no matrix rows or columns).
type PhaseFlags struct {
	IsPhase1Connected bool `yaml:"is_phase_1_connected"`
	IsPhase2Connected bool `yaml:"is_phase_2_connected"`
	IsPhase3Connected bool `yaml:"is_phase_3_connected"`
}

// Connected reports whether phase p is connected. Unknown phases report false.
func (f PhaseFlags) Connected(p Phase) bool {
	switch p {
	case Phase1:
		return f.IsPhase1Connected
	case Phase2:
		return f.IsPhase2Connected
	case Phase3:
		return f.IsPhase3Connected
	}

	return false
}

// Count returns the number of connected phases (0..3).
func (f PhaseFlags) Count() int {
	n := 0
	for _, p := range Phases {
		if f.Connected(p) {
			n++
		}
	}

	return n
}

// List returns the connected phases in (1, 2, 3) order.
func (f PhaseFlags) List() []Phase {
	ps := make([]Phase, 0, 3)
	for _, p := range Phases {
		if f.Connected(p) {
			ps = append(ps, p)
		}
	}

	return ps
}

// Connection names a three-phase load connection topology.
type Connection string

const (
	// Wye is the star (line-to-neutral) load connection.
	Wye Connection = "wye"
	// Delta is the line-to-line load connection.
	Delta Connection = "delta"
)

// Grid holds grid-level scalars.
type Grid struct {
	Name           string  `yaml:"name"`
	SourceNodeName string  `yaml:"source_node_name"`
	VoltageNominal float64 `yaml:"voltage_nominal"`
}

// Node is a connection point of the grid. VoltageNominal is the per-phase
// nominal voltage magnitude in volts.
type Node struct {
	Name           string  `yaml:"name"`
	VoltageNominal float64 `yaml:"voltage_nominal"`
	PhaseFlags     `yaml:",inline"`
}

// Line is a power-delivery element between two nodes, parameterized by a
// line type and a length in the type's per-unit-length base.
type Line struct {
	Name       string  `yaml:"name"`
	Type       string  `yaml:"line_type"`
	Node1      string  `yaml:"node_1_name"`
	Node2      string  `yaml:"node_2_name"`
	Length     float64 `yaml:"length"`
	PhaseFlags `yaml:",inline"`
}

// LineTypeMatrix holds the upper-triangular resistance, reactance and shunt
// capacitance entries of a line type's phase-coupling matrices.
//
// For NPhases=3 each slice holds 6 entries ordered (11, 12, 22, 13, 23, 33),
// matching the fixed coupling-index expansion used by the model builder.
// Resistance and reactance are per unit length; capacitance is in nF per
// unit length.
type LineTypeMatrix struct {
	LineType string    `yaml:"line_type"`
	NPhases  int       `yaml:"n_phases"`
	R        []float64 `yaml:"r"`
	X        []float64 `yaml:"x"`
	C        []float64 `yaml:"c"`
}

// Transformer is one winding of a two-winding transformer. Each transformer
// appears as two rows sharing a name, winding 1 and winding 2; winding 1 is
// the index-defining winding. PowerNominal is the rated apparent power in VA.
type Transformer struct {
	Name         string  `yaml:"name"`
	Winding      int     `yaml:"winding"`
	Node         string  `yaml:"node_name"`
	Type         string  `yaml:"transformer_type"`
	PowerNominal float64 `yaml:"power_nominal"`
	PhaseFlags   `yaml:",inline"`
}

// TransformerType holds the per-unit series impedance of a transformer type.
type TransformerType struct {
	Type       string  `yaml:"transformer_type"`
	Resistance float64 `yaml:"resistance"`
	Reactance  float64 `yaml:"reactance"`
}

// Load is a consumption element attached to one node at a subset of that
// node's phases. Nominal powers are in W and var.
type Load struct {
	Name                 string     `yaml:"name"`
	Node                 string     `yaml:"node_name"`
	Connection           Connection `yaml:"connection"`
	ActivePowerNominal   float64    `yaml:"active_power_nominal"`
	ReactivePowerNominal float64    `yaml:"reactive_power_nominal"`
	PhaseFlags           `yaml:",inline"`
}

// GridData bundles all asset tables of one scenario. It is treated as
// immutable input by the index and model builders.
type GridData struct {
	Grid             Grid              `yaml:"grid"`
	Nodes            []Node            `yaml:"nodes"`
	Lines            []Line            `yaml:"lines"`
	LineTypes        []LineTypeMatrix  `yaml:"line_types"`
	Transformers     []Transformer     `yaml:"transformers"`
	TransformerTypes []TransformerType `yaml:"transformer_types"`
	Loads            []Load            `yaml:"loads"`
}

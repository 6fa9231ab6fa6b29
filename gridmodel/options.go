package gridmodel

// DefaultBaseFrequency is the grid base frequency in Hz used when Options
// does not override it. It scales the line shunt susceptance.
const DefaultBaseFrequency = 60.0

// VoltageMethod selects how the no-load voltage vector is constructed.
type VoltageMethod int

const (
	// VoltageByDefinition takes each node's nominal voltage magnitude at the
	// standard phase angles (0°, −120°, +120°).
	VoltageByDefinition VoltageMethod = iota
	// VoltageByCalculation solves the no-source block of the nodal admittance
	// matrix against the source node's definition voltage.
	VoltageByCalculation
)

// Options contains tunable parameters for model construction. There is no
// ambient configuration state; every knob is carried here explicitly.
type Options struct {
	// BaseFrequency is the grid base frequency in Hz.
	BaseFrequency float64
	// VoltageMethod selects the no-load voltage construction.
	VoltageMethod VoltageMethod
}

// DefaultOptions returns Options with BaseFrequency=60 Hz and
// VoltageByDefinition.
func DefaultOptions() Options {
	return Options{
		BaseFrequency: DefaultBaseFrequency,
		VoltageMethod: VoltageByDefinition,
	}
}

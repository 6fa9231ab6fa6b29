package gridmodel

import "errors"

// Sentinel errors for model construction. All are fatal configuration
// errors: construction aborts on the first one, there is no partial model.
// Call sites wrap them with the offending element name via fmt.Errorf and %w
// so callers can locate the bad record while matching with errors.Is.
var (
	// ErrNilData indicates a nil *griddata.GridData was passed to New.
	ErrNilData = errors.New("gridmodel: grid data is nil")
	// ErrUnknownLineType indicates a line declares a type absent from the
	// line type matrix table.
	ErrUnknownLineType = errors.New("gridmodel: unknown line type")
	// ErrUnknownTransformerType indicates a transformer declares a type
	// absent from the transformer type table.
	ErrUnknownTransformerType = errors.New("gridmodel: unknown transformer type")
	// ErrPhaseMismatch indicates an element's connected phase count does not
	// match its type's matrix dimensionality or its peer winding.
	ErrPhaseMismatch = errors.New("gridmodel: phase count mismatch")
	// ErrSingularImpedance indicates a line's series impedance matrix is not
	// invertible.
	ErrSingularImpedance = errors.New("gridmodel: singular series impedance")
	// ErrFloatingNode indicates a node phase with no nonzero admittance row,
	// i.e. an electrically unconnected phase.
	ErrFloatingNode = errors.New("gridmodel: electrically floating node phase")
	// ErrBadOptions indicates a non-positive base frequency or an unknown
	// voltage method.
	ErrBadOptions = errors.New("gridmodel: invalid options")
)

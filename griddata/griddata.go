package griddata

import (
	"fmt"
)

// NodeByName returns the node with the given name.
// The boolean reports whether the node exists.
// Time: O(N); tables are small and scanned once per element during builds.
func (d *GridData) NodeByName(name string) (Node, bool) {
	for _, n := range d.Nodes {
		if n.Name == name {
			return n, true
		}
	}

	return Node{}, false
}

// LineType returns the line type matrix entry for the given type name.
func (d *GridData) LineType(name string) (LineTypeMatrix, bool) {
	for _, t := range d.LineTypes {
		if t.LineType == name {
			return t, true
		}
	}

	return LineTypeMatrix{}, false
}

// TransformerType returns the transformer type entry for the given type name.
func (d *GridData) TransformerType(name string) (TransformerType, bool) {
	for _, t := range d.TransformerTypes {
		if t.Type == name {
			return t, true
		}
	}

	return TransformerType{}, false
}

// TransformersWinding returns the transformer rows with the given winding
// number, preserving declaration order. Winding 1 rows are index-defining.
func (d *GridData) TransformersWinding(winding int) []Transformer {
	out := make([]Transformer, 0, len(d.Transformers)/2+1)
	for _, t := range d.Transformers {
		if t.Winding == winding {
			out = append(out, t)
		}
	}

	return out
}

// TransformerWinding returns the row of the named transformer with the given
// winding number. The boolean reports whether such a row exists.
func (d *GridData) TransformerWinding(name string, winding int) (Transformer, bool) {
	for _, t := range d.Transformers {
		if t.Name == name && t.Winding == winding {
			return t, true
		}
	}

	return Transformer{}, false
}

// triangularEntries is the flattened upper-triangular size for n phases.
func triangularEntries(n int) int {
	return n * (n + 1) / 2
}

// Validate cross-checks the tables and returns the first configuration error
// found. Model construction assumes validated data; a nil error here means
// every name reference resolves and structural invariants hold.
//
// Checked invariants:
//   - node, line, transformer(name,winding) and load names are unique;
//   - the grid's source node name matches an existing node;
//   - line endpoints and load nodes reference existing nodes;
//   - each transformer has exactly windings 1 and 2, both on existing nodes;
//   - load connections are wye or delta;
//   - line type matrices carry n(n+1)/2 entries for n declared phases.
//
// Zero connected phases on any element is legal and not reported.
func (d *GridData) Validate() error {
	nodeNames := make(map[string]struct{}, len(d.Nodes))
	for _, n := range d.Nodes {
		if _, ok := nodeNames[n.Name]; ok {
			return fmt.Errorf("node %q: %w", n.Name, ErrDuplicateName)
		}
		nodeNames[n.Name] = struct{}{}
	}

	if _, ok := nodeNames[d.Grid.SourceNodeName]; !ok {
		return fmt.Errorf("source node %q: %w", d.Grid.SourceNodeName, ErrMissingSourceNode)
	}

	lineNames := make(map[string]struct{}, len(d.Lines))
	for _, l := range d.Lines {
		if _, ok := lineNames[l.Name]; ok {
			return fmt.Errorf("line %q: %w", l.Name, ErrDuplicateName)
		}
		lineNames[l.Name] = struct{}{}
		if _, ok := nodeNames[l.Node1]; !ok {
			return fmt.Errorf("line %q node 1 %q: %w", l.Name, l.Node1, ErrUnknownNode)
		}
		if _, ok := nodeNames[l.Node2]; !ok {
			return fmt.Errorf("line %q node 2 %q: %w", l.Name, l.Node2, ErrUnknownNode)
		}
	}

	for _, t := range d.LineTypes {
		want := triangularEntries(t.NPhases)
		if len(t.R) != want || len(t.X) != want || len(t.C) != want {
			return fmt.Errorf("line type %q: %w", t.LineType, ErrBadTypeMatrix)
		}
	}

	windings := make(map[string]map[int]struct{})
	for _, t := range d.Transformers {
		if t.Winding != 1 && t.Winding != 2 {
			return fmt.Errorf("transformer %q winding %d: %w", t.Name, t.Winding, ErrBadWinding)
		}
		if _, ok := nodeNames[t.Node]; !ok {
			return fmt.Errorf("transformer %q node %q: %w", t.Name, t.Node, ErrUnknownNode)
		}
		if windings[t.Name] == nil {
			windings[t.Name] = make(map[int]struct{}, 2)
		}
		if _, ok := windings[t.Name][t.Winding]; ok {
			return fmt.Errorf("transformer %q winding %d: %w", t.Name, t.Winding, ErrDuplicateName)
		}
		windings[t.Name][t.Winding] = struct{}{}
	}
	for name, ws := range windings {
		if len(ws) != 2 {
			return fmt.Errorf("transformer %q: %w", name, ErrBadWinding)
		}
	}

	loadNames := make(map[string]struct{}, len(d.Loads))
	for _, l := range d.Loads {
		if _, ok := loadNames[l.Name]; ok {
			return fmt.Errorf("load %q: %w", l.Name, ErrDuplicateName)
		}
		loadNames[l.Name] = struct{}{}
		if _, ok := nodeNames[l.Node]; !ok {
			return fmt.Errorf("load %q node %q: %w", l.Name, l.Node, ErrUnknownNode)
		}
		if l.Connection != Wye && l.Connection != Delta {
			return fmt.Errorf("load %q connection %q: %w", l.Name, l.Connection, ErrBadConnection)
		}
	}

	return nil
}

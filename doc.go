// Package voltmesh builds steady-state physical models of unbalanced,
// multi-phase electric distribution grids from tabular asset data.
//
// The pipeline runs in three strict stages:
//
//	griddata  — typed asset tables (nodes, lines, line types, transformers,
//	            loads) as delivered by a data-access layer, with
//	            cross-reference validation
//	gridindex — the coordinate system: dimension counts over existing
//	            (element, phase) pairs and name→position lookups
//	gridmodel — the sparse nodal admittance, branch admittance/incidence and
//	            load incidence matrices, plus no-load voltage and nominal
//	            load power vectors
//
// Supporting package sparse provides the coordinate-accumulating matrix
// builders the model assembles into.
//
// Matrix dimensions always equal the exact count of existing phases —
// a node connecting phases 1 and 3 contributes two rows, never three —
// because padded dimensions would make the admittance matrix singular.
// Element contributions accumulate additively, so parallel lines between
// the same nodes sum as physics requires.
//
// Models are built once per scenario, synchronously, and are immutable
// afterwards: any number of downstream consumers (optimal-operation
// problems, power-flow studies) may read the matrices concurrently.
package voltmesh

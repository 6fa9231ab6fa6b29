package gridmodel

import (
	"gonum.org/v1/gonum/mat"
)

// embedReal expands the n×n complex matrix a into its 2n×2n real block
// embedding [[Re, -Im], [Im, Re]], which shares its inverse structure with a.
func embedReal(a *mat.CDense) *mat.Dense {
	n, _ := a.Dims()
	e := mat.NewDense(2*n, 2*n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			v := a.At(i, j)
			e.Set(i, j, real(v))
			e.Set(i, n+j, -imag(v))
			e.Set(n+i, j, imag(v))
			e.Set(n+i, n+j, real(v))
		}
	}

	return e
}

// invertComplex returns the inverse of the n×n complex matrix a, computed
// through the real block embedding and gonum's LU inversion. A singular
// input returns a nil matrix and the underlying gonum error; ill-conditioned
// but solvable inputs succeed.
func invertComplex(a *mat.CDense) (*mat.CDense, error) {
	n, _ := a.Dims()
	var inv mat.Dense
	if err := inv.Inverse(embedReal(a)); err != nil {
		if _, ok := err.(mat.Condition); !ok {
			return nil, err
		}
	}
	out := mat.NewCDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			out.Set(i, j, complex(inv.At(i, j), inv.At(n+i, j)))
		}
	}

	return out, nil
}

// solveComplex solves a·x = b for the n×n complex matrix a and length-n
// right-hand side b, through the real block embedding.
func solveComplex(a *mat.CDense, b []complex128) ([]complex128, error) {
	n := len(b)
	rhs := mat.NewDense(2*n, 1, nil)
	for i, v := range b {
		rhs.Set(i, 0, real(v))
		rhs.Set(n+i, 0, imag(v))
	}
	var x mat.Dense
	if err := x.Solve(embedReal(a), rhs); err != nil {
		if _, ok := err.(mat.Condition); !ok {
			return nil, err
		}
	}
	out := make([]complex128, n)
	for i := range out {
		out[i] = complex(x.At(i, 0), x.At(n+i, 0))
	}

	return out, nil
}

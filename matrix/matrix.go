package matrix

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// RowNorms returns a slice containing the Euclidean norms of m rows.
// It panics if m is nil.
func RowNorms(m *mat.Dense) []float64 {
	rows, _ := m.Dims()
	norms := make([]float64, rows)

	for i := 0; i < rows; i++ {
		norms[i] = floats.Norm(m.RawRowView(i), 2)
	}

	return norms
}

// ColMeans returns a slice containing m column means.
// It panics if m is nil.
func ColMeans(m *mat.Dense) []float64 {
	rows, cols := m.Dims()
	means := make([]float64, cols)

	for i := 0; i < cols; i++ {
		means[i] = mat.Sum(m.ColView(i)) / float64(rows)
	}

	return means
}

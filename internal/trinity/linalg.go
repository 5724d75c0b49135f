package trinity

import (
	"math"

	"github.com/Alias1177/Oracle/models"
)

type matrix [models.NumStates][models.NumStates]float64

// norm1 is the maximum absolute column sum.
func norm1(m matrix) float64 {
	var max float64
	for j := 0; j < models.NumStates; j++ {
		var sum float64
		for i := 0; i < models.NumStates; i++ {
			sum += math.Abs(m[i][j])
		}
		if sum > max {
			max = sum
		}
	}
	return max
}

// invert runs Gauss-Jordan elimination with partial pivoting. The second
// return value is false when the matrix is singular.
func invert(m matrix) (matrix, bool) {
	const pivotEps = 1e-12

	var aug [models.NumStates][2 * models.NumStates]float64
	for i := 0; i < models.NumStates; i++ {
		for j := 0; j < models.NumStates; j++ {
			aug[i][j] = m[i][j]
		}
		aug[i][models.NumStates+i] = 1
	}

	for col := 0; col < models.NumStates; col++ {
		pivot := col
		for row := col + 1; row < models.NumStates; row++ {
			if math.Abs(aug[row][col]) > math.Abs(aug[pivot][col]) {
				pivot = row
			}
		}
		if math.Abs(aug[pivot][col]) < pivotEps {
			return matrix{}, false
		}
		aug[col], aug[pivot] = aug[pivot], aug[col]

		inv := 1.0 / aug[col][col]
		for j := 0; j < 2*models.NumStates; j++ {
			aug[col][j] *= inv
		}
		for row := 0; row < models.NumStates; row++ {
			if row == col {
				continue
			}
			factor := aug[row][col]
			if factor == 0 {
				continue
			}
			for j := 0; j < 2*models.NumStates; j++ {
				aug[row][j] -= factor * aug[col][j]
			}
		}
	}

	var out matrix
	for i := 0; i < models.NumStates; i++ {
		for j := 0; j < models.NumStates; j++ {
			out[i][j] = aug[i][models.NumStates+j]
		}
	}
	return out, true
}

// conditionNumber is the 1-norm condition number cond(A) = |A| * |inv(A)|.
// A singular matrix reports +Inf, which always fails the stability gate.
func conditionNumber(m matrix) float64 {
	inv, ok := invert(m)
	if !ok {
		return math.Inf(1)
	}
	return norm1(m) * norm1(inv)
}

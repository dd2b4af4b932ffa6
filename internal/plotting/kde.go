package plotting

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// kde evaluates a Gaussian kernel density estimate on an even grid over
// [lo, hi], with Silverman's bandwidth.
func kde(x []float64, lo, hi float64, npoints int) ([]float64, []float64) {

	gx := make([]float64, npoints)
	gy := make([]float64, npoints)
	if len(x) == 0 {
		return gx, gy
	}

	sd := stat.StdDev(x, nil)
	bw := 1.06 * sd * math.Pow(float64(len(x)), -0.2)
	if bw <= 0 {
		bw = 0.01
	}

	step := (hi - lo) / float64(npoints-1)
	nrm := 1 / (bw * math.Sqrt(2*math.Pi) * float64(len(x)))

	for i := range gx {
		g := lo + float64(i)*step
		gx[i] = g
		var s float64
		for _, v := range x {
			z := (g - v) / bw
			s += math.Exp(-0.5 * z * z)
		}
		gy[i] = s * nrm
	}

	return gx, gy
}

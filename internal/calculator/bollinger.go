package calculator

// BollingerBands returns the middle, upper and lower bands:
// the trailing mean plus and minus k sample standard deviations.
func BollingerBands(closes []float64, window int, k float64) (middle, upper, lower []float64) {
	middle = RollingSMA(closes, window)
	std := RollingStd(closes, window)
	upper = make([]float64, len(closes))
	lower = make([]float64, len(closes))
	for i := range closes {
		upper[i] = middle[i] + k*std[i]
		lower[i] = middle[i] - k*std[i]
	}
	return middle, upper, lower
}

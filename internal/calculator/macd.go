package calculator

// EWMA returns the exponentially weighted mean with alpha = 2/(span+1),
// seeded by the first value and updated recursively.
func EWMA(values []float64, span int) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}
	alpha := 2.0 / (float64(span) + 1.0)
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = alpha*values[i] + (1-alpha)*out[i-1]
	}
	return out
}

// MACD returns the MACD line (fast EMA minus slow EMA) and its signal EMA.
func MACD(closes []float64, fast, slow, signal int) (line, sig []float64) {
	emaFast := EWMA(closes, fast)
	emaSlow := EWMA(closes, slow)
	line = make([]float64, len(closes))
	for i := range closes {
		line[i] = emaFast[i] - emaSlow[i]
	}
	return line, EWMA(line, signal)
}

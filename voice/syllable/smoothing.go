package syllable

// boxSmooth applies a centered moving average of the given odd width,
// shrinking the window at the edges. Width below 3 (or an even width,
// which is a config misuse) returns the series unchanged.
func boxSmooth(series []float64, width int) []float64 {
	if width < 3 || width%2 == 0 || len(series) == 0 {
		return series
	}

	half := width / 2
	smoothed := make([]float64, len(series))

	for i := range series {
		lo := max(i-half, 0)
		hi := min(i+half, len(series)-1)

		sum := 0.0
		for j := lo; j <= hi; j++ {
			sum += series[j]
		}
		smoothed[i] = sum / float64(hi-lo+1)
	}

	return smoothed
}

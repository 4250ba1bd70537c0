package hopping

// Partition divides a channel plan among n adapters. With two adapters and
// channels in both bands each adapter gets one band, which avoids band
// switches; otherwise channels are dealt round-robin within each band.
// Every part is non-empty as long as len(channels) >= n.
func Partition(channels []int, n int) [][]int {
	if n <= 0 {
		return nil
	}

	var band24, band5 []int
	for _, ch := range channels {
		if ch <= 14 {
			band24 = append(band24, ch)
		} else {
			band5 = append(band5, ch)
		}
	}

	result := make([][]int, n)
	switch {
	case n == 1:
		result[0] = append(append([]int{}, band24...), band5...)
	case n == 2 && len(band24) > 0 && len(band5) > 0:
		result[0] = band24
		result[1] = band5
	default:
		i := 0
		for _, ch := range append(append([]int{}, band24...), band5...) {
			result[i%n] = append(result[i%n], ch)
			i++
		}
	}
	return result
}

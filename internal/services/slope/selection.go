package slope

// CountBand returns how many entries of bands equal band.
func CountBand(bands []string, band string) int {
	n := 0
	for _, b := range bands {
		if b == band {
			n++
		}
	}
	return n
}

// Select flags objects that have at least minCount measurements in band.
// The result has one entry per object, in input order. An object with no
// measurements is never eligible.
func Select(bands [][]string, band string, minCount int) []bool {
	mask := make([]bool, len(bands))
	for i, bs := range bands {
		mask[i] = CountBand(bs, band) >= minCount
	}
	return mask
}

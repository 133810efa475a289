package engine

// SelectSlice returns the [start, end) bounds of the catalogue slice processed by one invocation.
// The offset is clamped into [0, total-1] so a shrunk catalogue never indexes out of range.
// A size of 0 (or one covering the whole catalogue) selects everything.
func SelectSlice(offset int, total int, size int) (int, int) {
	if total <= 0 {
		return 0, 0
	}
	if size <= 0 || size >= total {
		return 0, total
	}

	start := offset
	if start < 0 {
		start = 0
	}
	if start > total-1 {
		start = total - 1
	}

	end := start + size
	if end > total {
		end = total
	}

	return start, end
}

// NextCursor returns the start of the next slice: it advances by size and wraps to 0 once the slice
// reaches or exceeds the end of the catalogue
func NextCursor(start int, total int, size int) int {
	if size <= 0 || start+size >= total {
		return 0
	}

	return start + size
}

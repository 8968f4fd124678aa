package session

// DefaultRows is the number of entries rendered at once.
const DefaultRows = 20

// Window returns the half-open range [start, end) of rows to render so that
// cursor sits near the middle of a window of at most rows entries.
func Window(cursor, length, rows int) (start, end int) {
	if rows <= 0 {
		rows = DefaultRows
	}
	if length <= rows {
		return 0, length
	}
	start = cursor - rows/2
	if start < 0 {
		start = 0
	}
	if start+rows > length {
		start = length - rows
	}
	return start, start + rows
}

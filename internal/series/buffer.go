package series

// Buffer is a Handle that keeps its points in memory.
type Buffer struct {
	Points []Point
	// Clears counts calls to Clear.
	Clears int
}

func (b *Buffer) Clear() {
	b.Points = b.Points[:0]
	b.Clears++
}

func (b *Buffer) Append(points ...Point) {
	b.Points = append(b.Points, points...)
}

// Snapshot returns a copy of the current points.
func (b *Buffer) Snapshot() []Point {
	return append([]Point(nil), b.Points...)
}

package geom

// Segments 由相邻点构造有序线段列表；少于两个点时为空
func Segments(points []Vector) []Segment {
	if len(points) < 2 {
		return nil
	}
	out := make([]Segment, 0, len(points)-1)
	for i := 1; i < len(points); i++ {
		out = append(out, Seg(points[i-1], points[i]))
	}
	return out
}

// PolylineLength 折线总长度（各段长度之和）
func PolylineLength(points []Vector) float64 {
	var total float64
	for _, s := range Segments(points) {
		total += s.Length()
	}
	return total
}

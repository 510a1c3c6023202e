package geom

// Segment 两点间的有向线段，仅在一次查询期间借用端点
type Segment struct {
	Start Vector
	End   Vector
}

// Seg 便捷构造
func Seg(start, end Vector) Segment {
	return Segment{Start: start, End: end}
}

// Vector 返回 end - start
func (s Segment) Vector() Vector {
	return s.End.Subtract(s.Start)
}

func (s Segment) Length() float64 {
	return s.Vector().Length()
}

// IsPointInside 共线且位于两端点之间：|AB| ≈ |AP| + |PB|
// 只对“本应恰好落在线段上”的点精确，网格对齐的食物与碰撞判断依赖这一点
func (s Segment) IsPointInside(p Vector) bool {
	first := Seg(s.Start, p).Length()
	second := Seg(p, s.End).Length()
	return AreEqual(s.Length(), first+second)
}

// ProjectedPoint 将 p 正交投影到经过 start/end 的无限直线上
// 退化线段（长度为零）返回 ErrInvalidGeometry
func (s Segment) ProjectedPoint(p Vector) (Vector, error) {
	v := s.Vector()
	vv := v.DotProduct(v)
	if vv < Epsilon*Epsilon {
		return Vector{}, ErrInvalidGeometry
	}
	t := p.Subtract(s.Start).DotProduct(v) / vv
	return s.Start.Add(v.ScaleBy(t)), nil
}

// Midpoint 线段中点
func (s Segment) Midpoint() Vector {
	return s.Start.Add(s.Vector().ScaleBy(0.5))
}

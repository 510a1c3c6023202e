package geom

import (
	"errors"
	"math"
)

// Epsilon 浮点比较容差，吸收多次缩放/归一化带来的误差
const Epsilon = 1e-7

// ErrInvalidGeometry 几何前置条件被破坏（零长度向量归一化、退化线段投影）
var ErrInvalidGeometry = errors.New("geom: invalid geometry")

// Vector 二维点/位移，值类型，所有运算返回新值
type Vector struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// V 便捷构造
func V(x, y float64) Vector {
	return Vector{X: x, Y: y}
}

func (v Vector) Add(o Vector) Vector {
	return Vector{X: v.X + o.X, Y: v.Y + o.Y}
}

func (v Vector) Subtract(o Vector) Vector {
	return Vector{X: v.X - o.X, Y: v.Y - o.Y}
}

func (v Vector) ScaleBy(n float64) Vector {
	return Vector{X: v.X * n, Y: v.Y * n}
}

// Length 欧氏长度（hypot，避免中间结果溢出）
func (v Vector) Length() float64 {
	return math.Hypot(v.X, v.Y)
}

// Normalize 返回单位向量；零长度返回 ErrInvalidGeometry
func (v Vector) Normalize() (Vector, error) {
	l := v.Length()
	if l < Epsilon {
		return Vector{}, ErrInvalidGeometry
	}
	return v.ScaleBy(1 / l), nil
}

// EqualTo 分量近似相等
func (v Vector) EqualTo(o Vector) bool {
	return AreEqual(v.X, o.X) && AreEqual(v.Y, o.Y)
}

// IsOpposite 两向量之和近似为零向量
func (v Vector) IsOpposite(o Vector) bool {
	return v.Add(o).EqualTo(Vector{})
}

func (v Vector) DotProduct(o Vector) float64 {
	return v.X*o.X + v.Y*o.Y
}

// AreEqual 标量近似相等
func AreEqual(a, b float64) bool {
	return math.Abs(a-b) < Epsilon
}

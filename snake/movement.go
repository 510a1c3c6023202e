package snake

import (
	"strings"

	"snakearena/geom"
)

// Movement 方向输入；MoveNone 表示本帧不改变方向
type Movement int

const (
	MoveNone Movement = iota
	MoveTop
	MoveRight
	MoveDown
	MoveLeft
)

var (
	Top   = geom.V(0, -1)
	Right = geom.V(1, 0)
	Down  = geom.V(0, 1)
	Left  = geom.V(-1, 0)
)

// Vector 返回方向对应的单位向量；MoveNone 返回零向量
func (m Movement) Vector() geom.Vector {
	switch m {
	case MoveTop:
		return Top
	case MoveRight:
		return Right
	case MoveDown:
		return Down
	case MoveLeft:
		return Left
	}
	return geom.Vector{}
}

func (m Movement) String() string {
	switch m {
	case MoveTop:
		return "top"
	case MoveRight:
		return "right"
	case MoveDown:
		return "down"
	case MoveLeft:
		return "left"
	}
	return "none"
}

// ParseMovement 解析客户端命令（"up"/"top"、"down"、"left"、"right"），未知命令为 MoveNone
func ParseMovement(s string) Movement {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up", "top":
		return MoveTop
	case "right":
		return MoveRight
	case "down":
		return MoveDown
	case "left":
		return MoveLeft
	}
	return MoveNone
}

// MovementOf 将轴对齐单位向量映射回方向；其他向量返回 false
func MovementOf(v geom.Vector) (Movement, bool) {
	for _, m := range []Movement{MoveTop, MoveRight, MoveDown, MoveLeft} {
		if v.EqualTo(m.Vector()) {
			return m, true
		}
	}
	return MoveNone, false
}

package snake

import (
	"errors"

	"snakearena/geom"
)

// ErrNoFreeCell 棋盘已被蛇身占满，无法放置食物
var ErrNoFreeCell = errors.New("snake: no free cell")

// FreeCells 返回所有未被蛇身覆盖的格子中心，按 x 再按 y 的顺序
func FreeCells(width, height int, snake []geom.Vector) []geom.Vector {
	segments := geom.Segments(snake)
	free := make([]geom.Vector, 0, width*height)
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			p := geom.V(float64(x)+0.5, float64(y)+0.5)
			if !occupied(segments, snake, p) {
				free = append(free, p)
			}
		}
	}
	return free
}

func occupied(segments []geom.Segment, snake []geom.Vector, p geom.Vector) bool {
	// 单点蛇没有线段，退化为点比较
	if len(segments) == 0 {
		return len(snake) == 1 && snake[0].EqualTo(p)
	}
	for _, s := range segments {
		if s.IsPointInside(p) {
			return true
		}
	}
	return false
}

// GetFood 从空闲格子中均匀随机选取一个作为食物位置
func GetFood(width, height int, snake []geom.Vector, rnd RandSource) (geom.Vector, error) {
	free := FreeCells(width, height, snake)
	if len(free) == 0 {
		return geom.Vector{}, ErrNoFreeCell
	}
	return free[rnd.Intn(len(free))], nil
}

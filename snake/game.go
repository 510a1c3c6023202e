package snake

import (
	"fmt"
	"math"
	"time"

	"snakearena/geom"
)

// collisionRadius 自咬判定半径（半个格子）
const collisionRadius = 0.5

// Cause 结束原因
type Cause int

const (
	CauseNone Cause = iota
	CauseWall
	CauseSelf
)

func (c Cause) String() string {
	switch c {
	case CauseWall:
		return "wall"
	case CauseSelf:
		return "self"
	}
	return "none"
}

// Game 单局模拟引擎：蛇身为折线，下标 0 为尾尖，最后一个点为蛇头
// 非并发安全，由唯一的驱动者（Tick 循环）串行调用
type Game struct {
	width     int
	height    int
	speed     float64
	score     int
	direction geom.Vector
	food      geom.Vector
	snake     []geom.Vector
	rnd       RandSource
}

// New 创建一局游戏：蛇头居中，蛇身沿初始方向反向延伸 SnakeLength 格，并放置第一个食物
// rnd 为空时使用以当前时间为种子的随机源
func New(cfg Config, rnd RandSource) (*Game, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if rnd == nil {
		rnd = NewRand(uint64(time.Now().UnixNano()))
	}
	m, _ := MovementOf(cfg.Direction)
	direction := m.Vector()

	head := geom.V(float64(cfg.Width)/2-0.5, float64(cfg.Height)/2-0.5)
	tail := head.Subtract(direction.ScaleBy(float64(cfg.SnakeLength)))
	g := &Game{
		width:     cfg.Width,
		height:    cfg.Height,
		speed:     cfg.Speed,
		direction: direction,
		snake:     []geom.Vector{tail, head},
		rnd:       rnd,
	}
	food, err := GetFood(g.width, g.height, g.snake, g.rnd)
	if err != nil {
		return nil, fmt.Errorf("place initial food: %w", err)
	}
	g.food = food
	return g, nil
}

// Process 推进一帧：先移动，再处理进食
// 唯一可能返回的错误是进食后棋盘已满（ErrNoFreeCell）
func (g *Game) Process(timespan float64, m Movement) error {
	g.ProcessMovement(timespan, m)
	_, err := g.ProcessFood()
	return err
}

// ProcessMovement 蛇头沿当前方向前进 speed*timespan，尾部等距收缩
// 方向输入被接受时在网格线处插入拐点并返回 true
func (g *Game) ProcessMovement(timespan float64, m Movement) bool {
	if timespan < 0 {
		timespan = 0
	}
	distance := g.speed * timespan
	g.retractTail(distance)

	last := len(g.snake) - 1
	oldHead := g.snake[last]
	g.snake = g.snake[:last]
	newHead := oldHead.Add(g.direction.ScaleBy(distance))

	if m != MoveNone {
		next := m.Vector()
		if !g.direction.EqualTo(next) && !g.direction.IsOpposite(next) {
			if breakpoint, head, ok := turn(oldHead, newHead, next, distance); ok {
				g.snake = append(g.snake, breakpoint, head)
				g.direction = next
				return true
			}
		}
	}
	g.snake = append(g.snake, newHead)
	return false
}

// retractTail 从尾部沿折线收缩 distance；按下标推进，不做逐元素搬移
func (g *Game) retractTail(distance float64) {
	owed := distance
	for i := 0; i < len(g.snake)-1; i++ {
		seg := geom.Seg(g.snake[i], g.snake[i+1])
		length := seg.Length()
		if length < owed {
			owed -= length
			continue
		}
		if owed > 0 {
			if dir, err := seg.Vector().Normalize(); err == nil {
				g.snake[i] = g.snake[i].Add(dir.ScaleBy(owed))
			}
		}
		// 新尾尖恰好落在下一个点上时去掉重复点
		if g.snake[i].EqualTo(g.snake[i+1]) && len(g.snake)-i > 2 {
			i++
		}
		g.snake = g.snake[i:]
		return
	}
	// 一帧的位移超过蛇身总长：尾部收缩到蛇头
	head := g.snake[len(g.snake)-1]
	g.snake = append(g.snake[:0], head, head)
}

// turn 计算转向拐点：取旧蛇头与新蛇头取整坐标发生变化的那条轴，
// 在第一条越过的网格线（旧取整值 ±0.5）处拐弯，剩余距离沿新方向前进
// 本帧没有越过网格线时不接受转向
func turn(oldHead, newHead, next geom.Vector, distance float64) (geom.Vector, geom.Vector, bool) {
	oldX, oldY := math.Round(oldHead.X), math.Round(oldHead.Y)
	newX, newY := math.Round(newHead.X), math.Round(newHead.Y)
	xChanged := !geom.AreEqual(oldX, newX)
	yChanged := !geom.AreEqual(oldY, newY)
	if !xChanged && !yChanged {
		return geom.Vector{}, geom.Vector{}, false
	}

	old, oldRounded, newRounded := oldHead.Y, oldY, newY
	if xChanged {
		old, oldRounded, newRounded = oldHead.X, oldX, newX
	}
	component := oldRounded + 0.5
	if newRounded < oldRounded {
		component = oldRounded - 0.5
	}
	breakpoint := geom.V(oldHead.X, component)
	if xChanged {
		breakpoint = geom.V(component, oldHead.Y)
	}
	head := breakpoint.Add(next.ScaleBy(distance - math.Abs(old-component)))
	return breakpoint, head, true
}

// ProcessFood 食物落在蛇头线段上时：尾部沿尾段方向外延一格、重新放置食物、得分加一
func (g *Game) ProcessFood() (bool, error) {
	n := len(g.snake)
	headSegment := geom.Seg(g.snake[n-2], g.snake[n-1])
	if !headSegment.IsPointInside(g.food) {
		return false, nil
	}
	g.snake[0] = g.snake[0].Add(g.tailDirection())
	g.score++
	food, err := GetFood(g.width, g.height, g.snake, g.rnd)
	if err != nil {
		return true, err
	}
	g.food = food
	return true, nil
}

// tailDirection 尾段指向尾尖的单位向量；尾段退化时向前查找，全部退化则取当前方向的反向
func (g *Game) tailDirection() geom.Vector {
	for i := 1; i < len(g.snake); i++ {
		if dir, err := g.snake[0].Subtract(g.snake[i]).Normalize(); err == nil {
			return dir
		}
	}
	return g.direction.ScaleBy(-1)
}

// IsOver 蛇头越界或咬到自己
func (g *Game) IsOver() bool {
	return g.Cause() != CauseNone
}

// Cause 返回当前的结束原因；未结束为 CauseNone
func (g *Game) Cause() Cause {
	n := len(g.snake)
	head := g.snake[n-1]
	if head.X < 0 || head.X > float64(g.width) || head.Y < 0 || head.Y > float64(g.height) {
		return CauseWall
	}
	if n < 5 {
		return CauseNone
	}
	// 排除蛇头附近的三个点，避免与自己的尾随线段误判
	for _, s := range geom.Segments(g.snake[:n-3]) {
		projected, err := s.ProjectedPoint(head)
		if err != nil {
			continue
		}
		if s.IsPointInside(projected) && geom.Seg(head, projected).Length() < collisionRadius {
			return CauseSelf
		}
	}
	return CauseNone
}

// Snake 返回蛇身各点的副本，蛇头在最后
func (g *Game) Snake() []geom.Vector {
	out := make([]geom.Vector, len(g.snake))
	copy(out, g.snake)
	return out
}

func (g *Game) Head() geom.Vector {
	return g.snake[len(g.snake)-1]
}

// Length 蛇身折线总长
func (g *Game) Length() float64 {
	return geom.PolylineLength(g.snake)
}

func (g *Game) Food() geom.Vector { return g.food }
func (g *Game) Score() int { return g.score }
func (g *Game) Direction() geom.Vector { return g.direction }
func (g *Game) Width() int { return g.width }
func (g *Game) Height() int { return g.height }
func (g *Game) Speed() float64 { return g.speed }

// SetSpeed 运行期调整速度（管理接口热更新）
func (g *Game) SetSpeed(speed float64) error {
	if !(speed > 0) {
		return fmt.Errorf("%w: speed must be positive, got %v", ErrInvalidConfig, speed)
	}
	g.speed = speed
	return nil
}

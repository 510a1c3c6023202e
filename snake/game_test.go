package snake

import (
	"errors"
	"math"
	"testing"

	"go.uber.org/multierr"

	"snakearena/geom"
)

// fixedRand 总是返回固定下标（超出范围时取最后一个）
type fixedRand struct{ i int }

func (r fixedRand) Intn(n int) int {
	if r.i >= n {
		return n - 1
	}
	return r.i
}

func newTestGame(t *testing.T, cfg Config) *Game {
	t.Helper()
	g, err := New(cfg, fixedRand{})
	if err != nil {
		t.Fatalf("New(%+v): %v", cfg, err)
	}
	return g
}

func assertVector(t *testing.T, name string, got, want geom.Vector) {
	t.Helper()
	if !got.EqualTo(want) {
		t.Fatalf("%s = %v, want %v", name, got, want)
	}
}

func TestNewCentersHead(t *testing.T) {
	g := newTestGame(t, Config{Width: 10, Height: 10, Speed: 1, SnakeLength: 3, Direction: Right})
	snake := g.Snake()
	if len(snake) != 2 {
		t.Fatalf("initial snake has %d points, want 2", len(snake))
	}
	assertVector(t, "tail", snake[0], geom.V(1.5, 4.5))
	assertVector(t, "head", snake[1], geom.V(4.5, 4.5))
	assertVector(t, "food", g.Food(), geom.V(0.5, 0.5))
	if g.Score() != 0 {
		t.Fatalf("initial score = %d, want 0", g.Score())
	}
	if g.IsOver() {
		t.Fatalf("fresh game must not be over")
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		cfg    Config
		issues int
	}{
		{"zero width", Config{Width: 0, Height: 10, Speed: 1, SnakeLength: 3, Direction: Right}, 1},
		{"negative height", Config{Width: 10, Height: -1, Speed: 1, SnakeLength: 3, Direction: Right}, 1},
		{"zero speed", Config{Width: 10, Height: 10, Speed: 0, SnakeLength: 3, Direction: Right}, 1},
		{"NaN speed", Config{Width: 10, Height: 10, Speed: math.NaN(), SnakeLength: 3, Direction: Right}, 1},
		{"zero length", Config{Width: 10, Height: 10, Speed: 1, SnakeLength: 0, Direction: Right}, 1},
		{"diagonal direction", Config{Width: 10, Height: 10, Speed: 1, SnakeLength: 3, Direction: geom.V(1, 1)}, 1},
		{"zero direction", Config{Width: 10, Height: 10, Speed: 1, SnakeLength: 3}, 1},
		{"everything wrong", Config{Direction: geom.V(2, 0)}, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg, fixedRand{})
			if !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("expected ErrInvalidConfig, got %v", err)
			}
			if n := len(multierr.Errors(err)); n != tt.issues {
				t.Fatalf("got %d issues (%v), want %d", n, err, tt.issues)
			}
		})
	}
}

func TestProcessAdvancesHeadAndKeepsLength(t *testing.T) {
	g := newTestGame(t, Config{Width: 10, Height: 10, Speed: 1, SnakeLength: 3, Direction: Right})
	before := g.Head()
	if err := g.Process(1.0, MoveNone); err != nil {
		t.Fatalf("process: %v", err)
	}
	after := g.Head()
	if !geom.AreEqual(after.X-before.X, 1.0) || !geom.AreEqual(after.Y, before.Y) {
		t.Fatalf("head moved from %v to %v, want +1 on x", before, after)
	}
	if !geom.AreEqual(g.Length(), 3) {
		t.Fatalf("length = %v, want 3", g.Length())
	}
}

func TestLengthPreservedWithoutTurns(t *testing.T) {
	g := newTestGame(t, Config{Width: 100, Height: 100, Speed: 0.006, SnakeLength: 5, Direction: Top})
	for i := 0; i < 200; i++ {
		g.ProcessMovement(33, MoveNone)
		if l := g.Length(); math.Abs(l-5) > 1e-6 {
			t.Fatalf("tick %d: length = %v, want 5", i, l)
		}
	}
}

func TestTurnInsertsBreakpointOnGridLine(t *testing.T) {
	g := newTestGame(t, Config{Width: 10, Height: 10, Speed: 1, SnakeLength: 3, Direction: Right})

	// 4.5 -> 4.8 没有越过网格线，不接受转向
	if g.ProcessMovement(0.3, MoveDown) {
		t.Fatalf("turn accepted without crossing a grid line")
	}
	assertVector(t, "direction", g.Direction(), Right)
	assertVector(t, "head", g.Head(), geom.V(4.8, 4.5))

	// 4.8 -> 5.7 越过 5.5，在 (5.5, 4.5) 处拐弯，剩余 0.2 向下
	if !g.ProcessMovement(0.9, MoveDown) {
		t.Fatalf("turn rejected after crossing a grid line")
	}
	assertVector(t, "direction", g.Direction(), Down)
	snake := g.Snake()
	if len(snake) != 3 {
		t.Fatalf("snake has %d points, want 3: %v", len(snake), snake)
	}
	assertVector(t, "tail", snake[0], geom.V(2.7, 4.5))
	assertVector(t, "breakpoint", snake[1], geom.V(5.5, 4.5))
	assertVector(t, "head", snake[2], geom.V(5.5, 4.7))
	if !geom.AreEqual(g.Length(), 3) {
		t.Fatalf("length after turn = %v, want 3", g.Length())
	}
}

func TestTurnBackwardsOnAxis(t *testing.T) {
	g := newTestGame(t, Config{Width: 10, Height: 10, Speed: 1, SnakeLength: 3, Direction: Left})
	// 4.5 向左越过 4.5 本身（取整 5 -> 4），在旧蛇头处直接拐弯
	if !g.ProcessMovement(0.25, MoveTop) {
		t.Fatalf("turn rejected")
	}
	snake := g.Snake()
	assertVector(t, "breakpoint", snake[len(snake)-2], geom.V(4.5, 4.5))
	assertVector(t, "head", snake[len(snake)-1], geom.V(4.5, 4.25))
}

func TestOppositeAndSameDirectionRejected(t *testing.T) {
	g := newTestGame(t, Config{Width: 10, Height: 10, Speed: 1, SnakeLength: 3, Direction: Top})
	if err := g.Process(1.0, MoveDown); err != nil {
		t.Fatalf("process: %v", err)
	}
	assertVector(t, "direction after opposite", g.Direction(), Top)
	if g.ProcessMovement(1.0, MoveTop) {
		t.Fatalf("same direction must not count as a turn")
	}
	assertVector(t, "direction after same", g.Direction(), Top)
	if len(g.Snake()) != 2 {
		t.Fatalf("rejected turns must not add points: %v", g.Snake())
	}
}

func TestRandomTurnsKeepInvariants(t *testing.T) {
	g := newTestGame(t, Config{Width: 200, Height: 200, Speed: 0.01, SnakeLength: 6, Direction: Right})
	rnd := NewRand(7)
	moves := []Movement{MoveNone, MoveTop, MoveRight, MoveDown, MoveLeft}
	for i := 0; i < 500; i++ {
		prev := g.Direction()
		m := moves[rnd.Intn(len(moves))]
		turned := g.ProcessMovement(float64(20+rnd.Intn(60)), m)
		dir := g.Direction()
		if _, ok := MovementOf(dir); !ok {
			t.Fatalf("tick %d: direction %v is not axis-aligned", i, dir)
		}
		if turned {
			if !dir.EqualTo(m.Vector()) {
				t.Fatalf("tick %d: turned to %v, requested %v", i, dir, m)
			}
			if dir.EqualTo(prev) || dir.IsOpposite(prev) {
				t.Fatalf("tick %d: accepted %v while heading %v", i, dir, prev)
			}
		} else if !dir.EqualTo(prev) {
			t.Fatalf("tick %d: direction changed without a turn", i)
		}
		if l := g.Length(); math.Abs(l-6) > 1e-6 {
			t.Fatalf("tick %d: length = %v, want 6", i, l)
		}
	}
}

func TestProcessFoodGrowsSnake(t *testing.T) {
	g := newTestGame(t, Config{Width: 10, Height: 10, Speed: 1, SnakeLength: 3, Direction: Right})
	g.food = geom.V(5.5, 4.5)
	if err := g.Process(1.0, MoveNone); err != nil {
		t.Fatalf("process: %v", err)
	}
	if g.Score() != 1 {
		t.Fatalf("score = %d, want 1", g.Score())
	}
	if !geom.AreEqual(g.Length(), 4) {
		t.Fatalf("length = %v, want 4", g.Length())
	}
	assertVector(t, "tail", g.Snake()[0], geom.V(1.5, 4.5))
	for _, s := range geom.Segments(g.Snake()) {
		if s.IsPointInside(g.Food()) {
			t.Fatalf("new food %v lies on the snake segment %v", g.Food(), s)
		}
	}
}

func TestProcessFoodMissesOffSegment(t *testing.T) {
	g := newTestGame(t, Config{Width: 10, Height: 10, Speed: 1, SnakeLength: 3, Direction: Right})
	g.food = geom.V(6.5, 4.5)
	ate, err := g.ProcessFood()
	if err != nil || ate {
		t.Fatalf("ProcessFood() = %v, %v; want false, nil", ate, err)
	}
}

func TestProcessFoodBoardFull(t *testing.T) {
	g := &Game{
		width:     2,
		height:    1,
		speed:     1,
		direction: Right,
		snake:     []geom.Vector{geom.V(0.5, 0.5), geom.V(1.5, 0.5)},
		food:      geom.V(1.5, 0.5),
		rnd:       fixedRand{},
	}
	ate, err := g.ProcessFood()
	if !ate {
		t.Fatalf("food on the head segment was not eaten")
	}
	if !errors.Is(err, ErrNoFreeCell) {
		t.Fatalf("expected ErrNoFreeCell, got %v", err)
	}
	if g.Score() != 1 {
		t.Fatalf("score = %d, want 1", g.Score())
	}
}

func TestIsOverOutOfBounds(t *testing.T) {
	g := newTestGame(t, Config{Width: 10, Height: 10, Speed: 1, SnakeLength: 3, Direction: Right})
	for i := 0; i < 5; i++ {
		if err := g.Process(1.0, MoveNone); err != nil {
			t.Fatalf("process: %v", err)
		}
		if g.IsOver() {
			t.Fatalf("over too early with head at %v", g.Head())
		}
	}
	if err := g.Process(1.0, MoveNone); err != nil {
		t.Fatalf("process: %v", err)
	}
	if !g.IsOver() || g.Cause() != CauseWall {
		t.Fatalf("head at %v should hit the wall, cause=%v", g.Head(), g.Cause())
	}
}

func TestShortSnakeNeverSelfCollides(t *testing.T) {
	g := &Game{
		width:     10,
		height:    10,
		speed:     1,
		direction: Top,
		snake: []geom.Vector{
			geom.V(1.5, 1.5), geom.V(2.5, 1.5), geom.V(2.5, 2.5), geom.V(1.6, 1.5),
		},
	}
	if g.IsOver() {
		t.Fatalf("snake with 4 points must not self-collide")
	}
}

func TestSelfCollision(t *testing.T) {
	coiled := func(head geom.Vector) *Game {
		return &Game{
			width:     10,
			height:    10,
			speed:     1,
			direction: Top,
			snake: []geom.Vector{
				geom.V(1.5, 1.5), geom.V(3.5, 1.5), geom.V(3.5, 2.5), geom.V(2.5, 2.5), head,
			},
		}
	}
	if g := coiled(geom.V(2.5, 1.8)); !g.IsOver() || g.Cause() != CauseSelf {
		t.Fatalf("head 0.3 from the body should bite, cause=%v", g.Cause())
	}
	if g := coiled(geom.V(2.5, 2.1)); g.IsOver() {
		t.Fatalf("head 0.6 from the body should not bite")
	}
}

func TestSetSpeed(t *testing.T) {
	g := newTestGame(t, DefaultConfig())
	if err := g.SetSpeed(-1); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
	if err := g.SetSpeed(0.01); err != nil || g.Speed() != 0.01 {
		t.Fatalf("SetSpeed(0.01): err=%v speed=%v", err, g.Speed())
	}
}

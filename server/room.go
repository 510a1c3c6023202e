package server

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/rand"

	"snakearena/snake"
)

// RoomOptions 房间参数
type RoomOptions struct {
	Game           snake.Config
	TicksPerSecond int
	Seed           uint64 // 食物随机种子，0 表示使用当前时间
}

func DefaultRoomOptions() RoomOptions {
	return RoomOptions{Game: snake.DefaultConfig(), TicksPerSecond: TicksPerSecond}
}

// Room 一个房间同一时间只跑一局游戏，由单个 Tick 协程推进
// players/game/配置 由 mu 保护；输入与离开请求经通道进入 Tick
type Room struct {
	ID string

	mu      sync.Mutex
	players map[PlayerID]*Player
	driver  PlayerID
	lastSeq int64
	// pending 驾驶者最近一次方向，保留到转向被接受为止
	pending snake.Movement

	cfg       snake.Config
	game      *snake.Game
	rnd       *rand.Rand
	round     string
	tickSeq   int64
	best      int
	paused    bool
	over      bool
	overTicks int
	cause     string
	restart   bool

	inputChan chan Input
	leaveChan chan *Player

	tickInterval  time.Duration
	overHold      int // 结束画面保持的 Tick 数
	metrics       *RoomMetrics
	stop          chan struct{}
	stopOnce      sync.Once
	tickerStarted bool
}

// NewRoom 创建房间并开始第一局
func NewRoom(id string, opts RoomOptions) (*Room, error) {
	if err := opts.Game.Validate(); err != nil {
		return nil, err
	}
	tps := opts.TicksPerSecond
	if tps <= 0 {
		tps = TicksPerSecond
	}
	seed := opts.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	r := &Room{
		ID:           id,
		players:      make(map[PlayerID]*Player),
		cfg:          opts.Game,
		rnd:          snake.NewRand(seed),
		inputChan:    make(chan Input, 256), // 足够缓冲，避免网络读阻塞影响 Tick
		leaveChan:    make(chan *Player, 64),
		tickInterval: time.Second / time.Duration(tps),
		overHold:     tps,
		metrics:      &RoomMetrics{},
		stop:         make(chan struct{}),
	}
	if err := r.newRound(); err != nil {
		return nil, err
	}
	return r, nil
}

// newRound 以当前配置开新局；调用方持有 mu（或处于构造阶段）
func (r *Room) newRound() error {
	g, err := snake.New(r.cfg, r.rnd)
	if err != nil {
		return err
	}
	r.game = g
	r.round = uuid.NewString()
	r.over = false
	r.overTicks = 0
	r.cause = ""
	r.pending = snake.MoveNone
	r.metrics.IncRounds()
	Log.Infof("room=%s round=%s started: board=%dx%d speed=%.4f length=%d",
		r.ID, r.round, r.cfg.Width, r.cfg.Height, r.cfg.Speed, r.cfg.SnakeLength)
	return nil
}

func (r *Room) endRound(cause string) {
	r.over = true
	r.cause = cause
	if s := r.game.Score(); s > r.best {
		r.best = s
	}
	Log.Infof("room=%s round=%s over: cause=%s score=%d best=%d", r.ID, r.round, cause, r.game.Score(), r.best)
}

// JoinPlayer 加入房间；第一个加入者成为驾驶者。同 ID 重连会替换旧连接
func (r *Room) JoinPlayer(id PlayerID, conn *ClientConn) *Player {
	r.mu.Lock()
	defer r.mu.Unlock()
	if old, ok := r.players[id]; ok && old.Conn != nil {
		old.Conn.Close()
	}
	p := &Player{ID: id, Conn: conn}
	r.players[id] = p
	if r.driver == "" {
		r.driver = id
		r.lastSeq = 0
		r.pending = snake.MoveNone
	}
	Log.Infof("room=%s player=%s joined (driver=%s, players=%d)", r.ID, id, r.driver, len(r.players))
	return p
}

// RequestLeave 请求在 Tick 协程中移除玩家，避免并发改动房间状态
func (r *Room) RequestLeave(p *Player) {
	select {
	case r.leaveChan <- p:
	case <-r.stop:
	}
}

// removePlayer 仅当连接仍是当前连接时移除；驾驶者离开后由任一剩余玩家接替
func (r *Room) removePlayer(p *Player) {
	cur, ok := r.players[p.ID]
	if !ok || cur != p {
		return
	}
	if p.Conn != nil {
		p.Conn.Close()
	}
	delete(r.players, p.ID)
	if r.driver == p.ID {
		r.driver = ""
		r.lastSeq = 0
		r.pending = snake.MoveNone
		for id := range r.players {
			r.driver = id
			break
		}
	}
	Log.Infof("room=%s player=%s left (driver=%s, players=%d)", r.ID, p.ID, r.driver, len(r.players))
}

// OnInput 入站输入（非阻塞），等下一次 Tick 处理；通道满时丢弃
func (r *Room) OnInput(in Input) {
	select {
	case r.inputChan <- in:
	default:
		r.metrics.IncDropped()
	}
}

// Tick 推进一帧：处理输入 → 推进游戏 → 广播快照
func (r *Room) Tick(dt time.Duration) {
	start := time.Now()
	r.mu.Lock()
	r.tickSeq++
	r.processInputs()
	r.updateWorld(dt)
	r.broadcast()
	r.mu.Unlock()
	r.metrics.AddTick(time.Since(start).Nanoseconds())
}

// processInputs 非阻塞取空输入；驾驶者最后一次方向覆盖 pending
func (r *Room) processInputs() {
	for {
		select {
		case p := <-r.leaveChan:
			r.removePlayer(p)
		case in := <-r.inputChan:
			if in.PlayerID != r.driver || (in.Seq != 0 && in.Seq <= r.lastSeq) {
				r.metrics.IncIgnored()
				continue
			}
			if in.Seq != 0 {
				r.lastSeq = in.Seq
			}
			r.metrics.IncAccepted()
			switch in.Kind {
			case InputMove:
				r.pending = in.Command
			case InputStop:
				r.paused = !r.paused
				Log.Debugf("room=%s paused=%v", r.ID, r.paused)
			case InputRestart:
				r.restart = true
			}
		default:
			return
		}
	}
}

// updateWorld 结束画面保持 overHold 个 Tick（或收到重开请求）后开新局；暂停或无驾驶者时世界不推进
func (r *Room) updateWorld(dt time.Duration) {
	if r.over && !r.restart && r.overTicks < r.overHold {
		r.overTicks++
		return
	}
	if r.over || r.restart {
		if !r.over {
			r.endRound("restart")
		}
		r.restart = false
		if err := r.newRound(); err != nil {
			Log.Errorf("room=%s new round failed: %v", r.ID, err)
		}
		return
	}
	if r.paused || r.driver == "" {
		return
	}

	// 引擎速度单位为 格/毫秒
	timespan := float64(dt) / float64(time.Millisecond)
	prevDir, prevScore := r.game.Direction(), r.game.Score()
	err := r.game.Process(timespan, r.pending)
	if !r.game.Direction().EqualTo(prevDir) {
		r.metrics.IncTurns()
		r.pending = snake.MoveNone
	} else if next := r.pending.Vector(); next.EqualTo(prevDir) || next.IsOpposite(prevDir) {
		// 同向或反向永远不会被接受，丢弃以免之后误转
		r.pending = snake.MoveNone
	}
	if r.game.Score() > prevScore {
		r.metrics.IncFood()
	}
	if r.game.Score() > r.best {
		r.best = r.game.Score()
	}
	switch {
	case errors.Is(err, snake.ErrNoFreeCell):
		r.endRound("board full")
	case err != nil:
		Log.Errorf("room=%s round=%s process: %v", r.ID, r.round, err)
		r.endRound("error")
	case r.game.IsOver():
		r.endRound(r.game.Cause().String())
	}
}

func (r *Room) snapshotLocked() StateMessage {
	return StateMessage{
		Type:   "state",
		Room:   r.ID,
		Round:  r.round,
		Tick:   r.tickSeq,
		Snake:  r.game.Snake(),
		Food:   r.game.Food(),
		Score:  r.game.Score(),
		Best:   r.best,
		Over:   r.over,
		Cause:  r.cause,
		Paused: r.paused,
		Width:  r.game.Width(),
		Height: r.game.Height(),
	}
}

// Snapshot 当前状态（供管理接口与测试读取）
func (r *Room) Snapshot() StateMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

// broadcast 将快照发给所有连接；驾驶者与观战者的 driver 标记不同
func (r *Room) broadcast() {
	if len(r.players) == 0 {
		return
	}
	msg := r.snapshotLocked()
	spectator, err := json.Marshal(msg)
	if err != nil {
		Log.Errorf("room=%s marshal state: %v", r.ID, err)
		return
	}
	msg.Driver = true
	driver, _ := json.Marshal(msg)
	for id, p := range r.players {
		if p.Conn == nil {
			continue
		}
		if id == r.driver {
			p.Conn.Enqueue(driver)
		} else {
			p.Conn.Enqueue(spectator)
		}
	}
}

// Driver 当前驾驶者
func (r *Room) Driver() PlayerID {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.driver
}

// Config 当前配置（下一局生效的版本）
func (r *Room) Config() snake.Config {
	r.mu.Lock()
	defer r.mu.Unlock()
	cfg := r.cfg
	cfg.Speed = r.game.Speed()
	return cfg
}

// ConfigPatch 管理接口的部分更新；nil 字段保持不变
type ConfigPatch struct {
	Width       *int     `json:"width,omitempty"`
	Height      *int     `json:"height,omitempty"`
	Speed       *float64 `json:"speed,omitempty"`
	SnakeLength *int     `json:"snakeLength,omitempty"`
	Direction   *string  `json:"direction,omitempty"`
}

// UpdateConfig 校验并应用补丁：速度立即生效，其余字段从下一局开始生效
func (r *Room) UpdateConfig(p ConfigPatch) (snake.Config, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cfg := r.cfg
	if p.Width != nil {
		cfg.Width = *p.Width
	}
	if p.Height != nil {
		cfg.Height = *p.Height
	}
	if p.Speed != nil {
		cfg.Speed = *p.Speed
	}
	if p.SnakeLength != nil {
		cfg.SnakeLength = *p.SnakeLength
	}
	if p.Direction != nil {
		cfg.Direction = snake.ParseMovement(*p.Direction).Vector()
	}
	if err := cfg.Validate(); err != nil {
		return r.cfg, err
	}
	if p.Speed != nil {
		if err := r.game.SetSpeed(cfg.Speed); err != nil {
			return r.cfg, err
		}
	}
	r.cfg = cfg
	Log.Infof("room=%s config updated: board=%dx%d speed=%.4f length=%d direction=%v",
		r.ID, cfg.Width, cfg.Height, cfg.Speed, cfg.SnakeLength, cfg.Direction)
	return cfg, nil
}

// Stop 停止 Tick 并关闭所有连接
func (r *Room) Stop() {
	r.stopOnce.Do(func() {
		close(r.stop)
		r.mu.Lock()
		defer r.mu.Unlock()
		for _, p := range r.players {
			if p.Conn != nil {
				p.Conn.Close()
			}
		}
		Log.Infof("room=%s stopped after %d ticks", r.ID, r.tickSeq)
	})
}

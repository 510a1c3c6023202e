package server

import (
	"sync/atomic"
)

// RoomMetrics 房间运行期指标
type RoomMetrics struct {
	TickCount      int64
	InputsAccepted int64 // 驾驶者的有效输入
	InputsIgnored  int64 // 观战者输入、旧序列号
	InputsDropped  int64 // 通道满被丢弃
	TurnsAccepted  int64
	FoodEaten      int64
	RoundsPlayed   int64
	TotalTickNs    int64
}

func (m *RoomMetrics) IncAccepted() { atomic.AddInt64(&m.InputsAccepted, 1) }
func (m *RoomMetrics) IncIgnored() { atomic.AddInt64(&m.InputsIgnored, 1) }
func (m *RoomMetrics) IncDropped() { atomic.AddInt64(&m.InputsDropped, 1) }
func (m *RoomMetrics) IncTurns() { atomic.AddInt64(&m.TurnsAccepted, 1) }
func (m *RoomMetrics) IncFood() { atomic.AddInt64(&m.FoodEaten, 1) }
func (m *RoomMetrics) IncRounds() { atomic.AddInt64(&m.RoundsPlayed, 1) }
func (m *RoomMetrics) AddTick(ns int64) {
	atomic.AddInt64(&m.TickCount, 1)
	atomic.AddInt64(&m.TotalTickNs, ns)
}

// Snapshot 只读副本，供 HTTP 输出
func (m *RoomMetrics) Snapshot() map[string]any {
	tick := atomic.LoadInt64(&m.TickCount)
	total := atomic.LoadInt64(&m.TotalTickNs)
	var avgMs float64
	if tick > 0 {
		avgMs = float64(total) / float64(tick) / 1e6
	}
	return map[string]any{
		"tick_count":      tick,
		"inputs_accepted": atomic.LoadInt64(&m.InputsAccepted),
		"inputs_ignored":  atomic.LoadInt64(&m.InputsIgnored),
		"inputs_dropped":  atomic.LoadInt64(&m.InputsDropped),
		"turns_accepted":  atomic.LoadInt64(&m.TurnsAccepted),
		"food_eaten":      atomic.LoadInt64(&m.FoodEaten),
		"rounds_played":   atomic.LoadInt64(&m.RoundsPlayed),
		"avg_tick_ms":     avgMs,
	}
}

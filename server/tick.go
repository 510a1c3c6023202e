package server

import "time"

const (
	// TicksPerSecond 默认推进频率（20 TPS）
	TicksPerSecond = 20
)

// StartTicker 启动房间的 Tick 循环（单协程推进世界），Stop 后退出
// 每帧的时间跨度取自墙钟，而不是固定的 tickInterval
func (r *Room) StartTicker() {
	r.mu.Lock()
	if r.tickerStarted {
		r.mu.Unlock()
		return
	}
	r.tickerStarted = true
	r.mu.Unlock()

	go func() {
		ticker := time.NewTicker(r.tickInterval)
		defer ticker.Stop()
		last := time.Now()
		for {
			select {
			case <-r.stop:
				return
			case now := <-ticker.C:
				r.Tick(now.Sub(last))
				last = now
			}
		}
	}()
}

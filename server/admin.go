package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"snakearena/snake"
)

// configView 配置的 JSON 形式，方向用名称表示
type configView struct {
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	Speed       float64 `json:"speed"`
	SnakeLength int     `json:"snakeLength"`
	Direction   string  `json:"direction"`
}

func viewOf(cfg snake.Config) configView {
	m, _ := snake.MovementOf(cfg.Direction)
	return configView{
		Width:       cfg.Width,
		Height:      cfg.Height,
		Speed:       cfg.Speed,
		SnakeLength: cfg.SnakeLength,
		Direction:   m.String(),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// HandleAdminConfig 读取/热更新房间配置
// GET /admin/config?room=room-1  返回当前配置
// POST /admin/config?room=room-1 以 JSON 载荷更新部分字段
func (m *RoomManager) HandleAdminConfig(w http.ResponseWriter, r *http.Request) {
	room, err := m.GetOrCreateRoom(r.URL.Query().Get("room"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, viewOf(room.Config()))
	case http.MethodPost:
		var patch ConfigPatch
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		cfg, err := room.UpdateConfig(patch)
		if errors.Is(err, snake.ErrInvalidConfig) {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"ok": false, "error": err.Error()})
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "config": viewOf(cfg)})
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleMetrics 输出指定房间的运行指标与当前局概况
// GET /metrics?room=room-1
func (m *RoomManager) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	room, err := m.GetOrCreateRoom(r.URL.Query().Get("room"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s := room.Snapshot()
	writeJSON(w, http.StatusOK, map[string]any{
		"room":    room.ID,
		"round":   s.Round,
		"tick":    s.Tick,
		"score":   s.Score,
		"best":    s.Best,
		"metrics": room.metrics.Snapshot(),
	})
}

// Register 挂载 WS、管理与监控接口
func (m *RoomManager) Register(mux *http.ServeMux) {
	mux.HandleFunc("/ws", m.HandleWS)
	mux.HandleFunc("/admin/config", m.HandleAdminConfig)
	mux.HandleFunc("/metrics", m.HandleMetrics)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
}

package server

import (
	"sync"
)

// DefaultRoomID 未指定房间时使用
const DefaultRoomID = "room-1"

// RoomManager 管理多个房间的生命周期
type RoomManager struct {
	mu    sync.RWMutex
	rooms map[string]*Room
	opts  RoomOptions
}

// NewRoomManager 新建的房间都使用 opts
func NewRoomManager(opts RoomOptions) *RoomManager {
	return &RoomManager{rooms: make(map[string]*Room), opts: opts}
}

// GetOrCreateRoom 获取或创建房间，并确保开始 Tick
func (m *RoomManager) GetOrCreateRoom(id string) (*Room, error) {
	if id == "" {
		id = DefaultRoomID
	}
	m.mu.RLock()
	r, ok := m.rooms[id]
	m.mu.RUnlock()
	if ok {
		return r, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.rooms[id]; ok {
		return r, nil
	}
	r, err := NewRoom(id, m.opts)
	if err != nil {
		return nil, err
	}
	m.rooms[id] = r
	r.StartTicker()
	return r, nil
}

// StopAll 停止所有房间（优雅退出）
func (m *RoomManager) StopAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rooms {
		r.Stop()
	}
}

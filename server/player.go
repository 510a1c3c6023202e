package server

import "snakearena/geom"

// PlayerID 连接的唯一标识
type PlayerID string

// Player 房间内的连接。房间只有一个驾驶者（driver），其余连接为观战者
type Player struct {
	ID   PlayerID
	Conn *ClientConn
}

// StateMessage 每帧广播给客户端的快照
type StateMessage struct {
	Type   string        `json:"type"`
	Room   string        `json:"room"`
	Round  string        `json:"round"`
	Tick   int64         `json:"tick"`
	Snake  []geom.Vector `json:"snake"` // 蛇头在最后
	Food   geom.Vector   `json:"food"`
	Score  int           `json:"score"`
	Best   int           `json:"best"`
	Over   bool          `json:"over"`
	Cause  string        `json:"cause,omitempty"`
	Paused bool          `json:"paused"`
	Width  int           `json:"width"`
	Height int           `json:"height"`
	Driver bool          `json:"driver"`
}

package server

import (
	"strings"

	"snakearena/snake"
)

// InputKind 客户端意图类型
type InputKind int

const (
	InputMove InputKind = iota
	// 切换暂停
	InputStop
	InputRestart
)

// Input 客户端输入（意图），在 Tick 中解释
type Input struct {
	PlayerID PlayerID
	Kind     InputKind
	Command  snake.Movement
	Seq      int64 // 客户端本地序列号
}

// 入站 JSON 文本消息
// 示例：{"type":"move","command":"up"}、{"type":"stop"}、{"type":"restart"}
type InputMessage struct {
	Type    string `json:"type"`
	Command string `json:"command"`
	Seq     int64  `json:"seq,omitempty"`
}

// ToInput 解析为 Input；未知类型或无效方向返回 false
func (im InputMessage) ToInput(pid PlayerID) (Input, bool) {
	in := Input{PlayerID: pid, Seq: im.Seq}
	switch strings.ToLower(im.Type) {
	case "move":
		in.Kind = InputMove
		in.Command = snake.ParseMovement(im.Command)
		if in.Command == snake.MoveNone {
			return in, false
		}
	case "stop":
		in.Kind = InputStop
	case "restart":
		in.Kind = InputRestart
	default:
		return in, false
	}
	return in, true
}

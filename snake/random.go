package snake

import (
	"golang.org/x/exp/rand"
)

// RandSource 均匀整数随机源，Intn 返回 [0, n) 内的值
type RandSource interface {
	Intn(n int) int
}

// NewRand 基于 PCG 的可重设种子随机源；同一种子产生相同的食物序列
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

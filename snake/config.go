package snake

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"

	"snakearena/geom"
)

// ErrInvalidConfig 构造参数非法
var ErrInvalidConfig = errors.New("snake: invalid config")

// Config 一局游戏的构造参数
type Config struct {
	Width       int         `json:"width"`
	Height      int         `json:"height"`
	Speed       float64     `json:"speed"` // 每时间单位移动的格数
	SnakeLength int         `json:"snakeLength"`
	Direction   geom.Vector `json:"direction"`
}

// DefaultConfig 浏览器客户端使用的默认参数（速度单位：格/毫秒）
func DefaultConfig() Config {
	return Config{
		Width:       20,
		Height:      20,
		Speed:       0.006,
		SnakeLength: 3,
		Direction:   Right,
	}
}

// Validate 汇总所有非法字段，返回的错误满足 errors.Is(err, ErrInvalidConfig)
func (c Config) Validate() error {
	var err error
	if c.Width <= 0 {
		err = multierr.Append(err, fmt.Errorf("%w: width must be positive, got %d", ErrInvalidConfig, c.Width))
	}
	if c.Height <= 0 {
		err = multierr.Append(err, fmt.Errorf("%w: height must be positive, got %d", ErrInvalidConfig, c.Height))
	}
	if !(c.Speed > 0) {
		err = multierr.Append(err, fmt.Errorf("%w: speed must be positive, got %v", ErrInvalidConfig, c.Speed))
	}
	if c.SnakeLength < 1 {
		err = multierr.Append(err, fmt.Errorf("%w: snake length must be at least 1, got %d", ErrInvalidConfig, c.SnakeLength))
	}
	if _, ok := MovementOf(c.Direction); !ok {
		err = multierr.Append(err, fmt.Errorf("%w: direction must be an axis-aligned unit vector, got %v", ErrInvalidConfig, c.Direction))
	}
	return err
}

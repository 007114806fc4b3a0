package isochrone

import "errors"

const (
	// 步行速度（米/分钟）
	DEFAULT_WALK_SPEED = 72.0
	// 圆形缓冲区的边数
	DEFAULT_CIRCLE_SEGMENTS = 32
	// 等时圈结果缓存的条目数
	DEFAULT_CACHE_SIZE = 256
	// 步行缓冲区半径上限（米），超过时经纬度平面近似失效
	MAX_BUFFER_RADIUS = 100_000.0
)

// 默认的时间阈值（分钟）
var DEFAULT_THRESHOLDS = []float64{10, 20, 30, 40}

var (
	// 错误：时间阈值为负数或非有限值
	ErrInvalidThreshold = errors.New("threshold should be finite and non-negative")
	// 错误：步行速度为非有限值
	ErrInvalidWalkSpeed = errors.New("walk speed should be finite")
)

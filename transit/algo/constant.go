package algo

import "errors"

const (
	// 节点数量的默认上限
	DEFAULT_MAX_NODES = 20000
	// 边数量的默认上限
	DEFAULT_MAX_EDGES = 500000
)

var (
	// 错误：节点不存在
	ErrNodeNotExists = errors.New("node not exists")
	// 错误：边权为负数或非有限值
	ErrInvalidWeight = errors.New("edge weight should be finite and non-negative")
)

package store

import (
	"context"

	"github.com/markleyboyer/subway-equidistance/transit"
)

// 数据集的持久化位置
type Store interface {
	Load(ctx context.Context) (*transit.Dataset, error)
	Save(ctx context.Context, d *transit.Dataset) error
	Close(ctx context.Context) error
}

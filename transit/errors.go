package transit

import (
	"errors"
	"fmt"
)

var (
	// 错误：查询的车站不存在
	ErrUnknownStation = errors.New("unknown station")
	// 错误：数据集未通过结构校验（缺失坐标、负边权、悬空引用等）
	ErrMalformedDataset = errors.New("malformed dataset")
	// 错误：图规模超过上限
	ErrGraphTooLarge = fmt.Errorf("%w: graph too large", ErrMalformedDataset)
)

func unknownStation(id string) error {
	return fmt.Errorf("%w: %q", ErrUnknownStation, id)
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedDataset, fmt.Sprintf(format, args...))
}

package main

import (
	"context"
	"errors"
	"time"

	"github.com/markleyboyer/subway-equidistance/store"
	"github.com/markleyboyer/subway-equidistance/transit"
	"github.com/samber/lo"
)

// 从配置的数据集位置读取数据并构建行程时间矩阵
func loadMatrix(ctx context.Context, cfg Config) (*transit.Matrix, error) {
	path, err := NewPath(cfg.Dataset)
	if err != nil {
		return nil, err
	}
	if path == nil {
		return nil, errors.New("dataset is required")
	}
	s, err := path.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer s.Close(ctx)
	d, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	return newMatrix(d, cfg)
}

func newMatrix(d *transit.Dataset, cfg Config) (*transit.Matrix, error) {
	source, err := d.Source(
		transit.WithLimits(cfg.MaxStations, cfg.MaxEdges),
		transit.WithHorizon(cfg.Horizon),
	)
	if err != nil {
		return nil, err
	}
	return transit.NewMatrix(source), nil
}

func warmAll(ctx context.Context, m *transit.Matrix, workers int) error {
	origins := lo.Map(m.Stations(), func(s transit.Station, _ int) string { return s.ID })
	start := time.Now()
	if err := m.Warm(ctx, origins, workers); err != nil {
		return err
	}
	log.Infof("computed %d rows with %d workers in %v", len(origins), workers, time.Since(start))
	return nil
}

// 离线预计算全部起点的行程时间，写入输出位置
func runPrecompute(ctx context.Context, m *transit.Matrix, cfg Config) error {
	if _, ok := m.Source().(*transit.Precomputed); ok {
		log.Warnf("dataset %s is already precomputed", cfg.Dataset)
	}
	if err := warmAll(ctx, m, cfg.Workers); err != nil {
		return err
	}
	path, err := NewPath(cfg.Output)
	if err != nil {
		return err
	}
	if path == nil {
		return errors.New("output is required in precompute mode")
	}
	var s store.Store
	if s, err = path.Open(ctx, cfg); err != nil {
		return err
	}
	defer s.Close(ctx)
	return s.Save(ctx, transit.FromMatrix(m))
}

package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/markleyboyer/subway-equidistance/equidistance"
	"github.com/markleyboyer/subway-equidistance/isochrone"
	"github.com/markleyboyer/subway-equidistance/transit/algo"
	"gopkg.in/yaml.v3"
)

type Neo4jConfig struct {
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

// 优先级：默认值 < YAML配置文件 < 环境变量(.env) < 命令行参数
type Config struct {
	Listen   string      `yaml:"listen"`
	Dataset  string      `yaml:"dataset"`
	Output   string      `yaml:"output"`
	MongoURI string      `yaml:"mongo_uri"`
	Neo4j    Neo4jConfig `yaml:"neo4j"`

	// 等距阈值（分钟）
	Threshold float64 `yaml:"threshold"`
	// 默认等时圈阈值（分钟）
	Thresholds []float64 `yaml:"thresholds"`
	// 步行速度（米/分钟）
	WalkSpeed float64 `yaml:"walk_speed"`
	// 最短路搜索上限（分钟），0为不限
	Horizon     float64 `yaml:"horizon"`
	MaxStations int     `yaml:"max_stations"`
	MaxEdges    int     `yaml:"max_edges"`

	CacheSize int `yaml:"cache_size"`
	Workers   int `yaml:"workers"`
	// 启动时计算全部行
	Warm bool `yaml:"warm"`
}

func DefaultConfig() Config {
	return Config{
		Listen:      "localhost:52101",
		Threshold:   equidistance.DEFAULT_THRESHOLD,
		Thresholds:  append([]float64(nil), isochrone.DEFAULT_THRESHOLDS...),
		WalkSpeed:   isochrone.DEFAULT_WALK_SPEED,
		MaxStations: algo.DEFAULT_MAX_NODES,
		MaxEdges:    algo.DEFAULT_MAX_EDGES,
		CacheSize:   isochrone.DEFAULT_CACHE_SIZE,
		Workers:     4,
	}
}

// path为空时只使用默认值
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return cfg, nil
}

// 读取.env，文件不存在时忽略
func loadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func (c *Config) ApplyEnv(getenv func(string) string) error {
	for key, dst := range map[string]*string{
		"DATASET":        &c.Dataset,
		"LISTEN":         &c.Listen,
		"MONGO_URI":      &c.MongoURI,
		"NEO4J_USER":     &c.Neo4j.User,
		"NEO4J_PASSWORD": &c.Neo4j.Password,
		"NEO4J_DATABASE": &c.Neo4j.Database,
	} {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	if v := getenv("WALK_SPEED"); v != "" {
		speed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid WALK_SPEED %q: %w", v, err)
		}
		c.WalkSpeed = speed
	}
	return nil
}

// 只覆盖命令行中显式给出的参数
func (c *Config) ApplyFlags(set *flag.FlagSet) error {
	var err error
	set.Visit(func(f *flag.Flag) {
		if err != nil {
			return
		}
		getter, ok := f.Value.(flag.Getter)
		if !ok {
			return
		}
		v := getter.Get()
		switch f.Name {
		case "listen":
			c.Listen = v.(string)
		case "dataset":
			c.Dataset = v.(string)
		case "output":
			c.Output = v.(string)
		case "mongo_uri":
			c.MongoURI = v.(string)
		case "threshold":
			c.Threshold = v.(float64)
		case "thresholds":
			c.Thresholds, err = parseThresholds(v.(string))
		case "walk-speed":
			c.WalkSpeed = v.(float64)
		case "horizon":
			c.Horizon = v.(float64)
		case "cache-size":
			c.CacheSize = v.(int)
		case "workers":
			c.Workers = v.(int)
		case "warm":
			c.Warm = v.(bool)
		}
	})
	return err
}

func (c *Config) Validate() error {
	if c.Dataset == "" {
		return errors.New("dataset is required")
	}
	if c.Threshold < 0 {
		return fmt.Errorf("threshold must be non-negative: %v", c.Threshold)
	}
	if !(c.WalkSpeed > 0) || math.IsInf(c.WalkSpeed, 0) {
		return fmt.Errorf("walk speed must be positive and finite: %v", c.WalkSpeed)
	}
	if c.Horizon < 0 {
		return fmt.Errorf("horizon must be non-negative: %v", c.Horizon)
	}
	if c.Workers <= 0 {
		c.Workers = 1
	}
	return nil
}

// "10,20,30" -> [10 20 30]，空串返回nil
func parseThresholds(s string) ([]float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	ret := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", isochrone.ErrInvalidThreshold, p)
		}
		ret = append(ret, v)
	}
	return ret, nil
}

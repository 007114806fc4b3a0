package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	easy "git.fiblab.net/utils/logrus-easy-formatter"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

var (
	// 配置信息，显式给出时覆盖配置文件与环境变量
	configPath = flag.String("config", "", "yaml config file path, can be empty")
	envPath    = flag.String("env", ".env", "dotenv file path, ignored if not exists")
	_          = flag.String("dataset", "", "dataset location [format: {fspath}, {db}.{col} or neo4j://host:port]")
	_          = flag.String("output", "", "precompute output location [format: {fspath}, {db}.{col} or neo4j://host:port]")
	_          = flag.String("mongo_uri", "", "mongo db uri")
	_          = flag.String("listen", "localhost:52101", "HTTP listening address")
	_          = flag.Float64("threshold", 5, "equidistance threshold in minutes")
	_          = flag.String("thresholds", "10,20,30,40", "default isochrone thresholds in minutes, comma separated")
	_          = flag.Float64("walk-speed", 72, "walking speed in meters per minute")
	_          = flag.Float64("horizon", 0, "shortest path search horizon in minutes (0 means unlimited)")
	_          = flag.Int("cache-size", 256, "isochrone LRU cache size")
	_          = flag.Int("workers", 4, "worker count for warming the travel time matrix")
	_          = flag.Bool("warm", false, "compute all rows before serving")
	logLevel   = flag.String("log-level", "info", "log level [debug, info, warn, error, fatal, panic]")

	// 运行模式
	precompute = flag.Bool("precompute", false, "precompute all travel times from a raw graph and save them to -output")
	benchmark  = flag.Bool("benchmark", false, "benchmark mode")
	pprofAddr  = flag.String("pprof", "", "pprof listening address (empty means disable pprof)")

	LOG_LEVELS = map[string]logrus.Level{
		"debug": logrus.DebugLevel,
		"info":  logrus.InfoLevel,
		"warn":  logrus.WarnLevel,
		"error": logrus.ErrorLevel,
		"fatal": logrus.FatalLevel,
		"panic": logrus.PanicLevel,
	}
)

func main() {
	logrus.SetFormatter(&easy.Formatter{
		TimestampFormat: "2006-01-02 15:04:05.0000",
		LogFormat:       "[%module%] [%time%] [%lvl%] %msg%\n",
	})
	flag.Parse()
	if level, ok := LOG_LEVELS[*logLevel]; ok {
		logrus.SetLevel(level)
	} else {
		logrus.Fatalf("invalid log level: %s", *logLevel)
	}

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := loadDotEnv(*envPath); err != nil {
		log.Fatalf("failed to load %s: %v", *envPath, err)
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		log.Fatalf("invalid environment: %v", err)
	}
	if err := cfg.ApplyFlags(flag.CommandLine); err != nil {
		log.Fatalf("invalid flags: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	ctx := context.Background()
	matrix, err := loadMatrix(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to load dataset from %s: %v", cfg.Dataset, err)
	}
	log.Infof("loaded %d stations from %s", len(matrix.Stations()), cfg.Dataset)

	if *pprofAddr != "" {
		// 启动pprof
		startHTTPDebugger(*pprofAddr)
	}

	if *precompute {
		if err := runPrecompute(ctx, matrix, cfg); err != nil {
			log.Fatalf("precompute failed: %v", err)
		}
		log.Infof("precomputed travel times saved to %s", cfg.Output)
		return
	}

	server := NewServer(matrix, cfg)
	if *benchmark {
		// 性能测试
		logrus.SetLevel(logrus.WarnLevel)
		reportBenchmark(matrix, runBenchmark(server, *benchmarkCount, *benchmarkSeed, *benchmarkCPU))
		return
	}
	if cfg.Warm {
		if err := warmAll(ctx, matrix, cfg.Workers); err != nil {
			log.Fatalf("failed to warm travel time matrix: %v", err)
		}
	}

	// 使用HTTP/2 w.o. TLS
	s := &http.Server{
		Addr:    cfg.Listen,
		Handler: h2c.NewHandler(server.Handler(), &http2.Server{}),
	}

	// 优雅退出
	// 创建监听退出chan
	signalCh := make(chan os.Signal, 1)
	//监听指定信号 ctrl+c kill
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})
	go func() {
		defer close(done)
		<-signalCh
		log.Info("stopping...")
		go func() {
			<-signalCh
			os.Exit(1) // 强制结束
		}()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		// 恢复被暂停的请求以便退出
		server.Resume()
		if err := s.Shutdown(shutdownCtx); err != nil {
			log.Warnf("shutdown: %v", err)
		}
	}()

	log.Infof("server listening at %v", s.Addr)
	if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("failed to serve: %v", err)
	}
	// 等待进行中的请求结束
	<-done
	server.Close()
	log.Info("equidistance closes")
}

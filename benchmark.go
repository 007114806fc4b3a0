package main

import (
	"flag"
	"math/rand"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/markleyboyer/subway-equidistance/transit"
	"github.com/sirupsen/logrus"
)

var (
	benchmarkCount = flag.Int("benchmark.count", 1000, "the random origin pair count for benchmark")
	benchmarkSeed  = flag.Int64("benchmark.seed", 0, "the seed for benchmark")
	benchmarkCPU   = flag.Int("benchmark.cpu", 1, "the cpu count for benchmark")
)

type benchmarkResult struct {
	Count   int
	Success int32
	Time    time.Duration
}

// 随机选取起点对，依次计算分类与等时圈
func runBenchmark(server *Server, count int, seed int64, cpu int) benchmarkResult {
	stations := server.matrix.Stations()
	if len(stations) == 0 || count <= 0 {
		return benchmarkResult{}
	}
	e := rand.New(rand.NewSource(seed))
	pairs := make([][2]string, count)
	for i := range pairs {
		pairs[i] = [2]string{
			stations[e.Intn(len(stations))].ID,
			stations[e.Intn(len(stations))].ID,
		}
	}

	var success atomic.Int32
	run := func(p [2]string) {
		if _, err := server.classifier.Classify(p[0], p[1]); err != nil {
			log.Error("benchmark failed, err:", err)
			return
		}
		if _, err := server.generator.Generate(p[0], server.thresholds, 0); err != nil {
			log.Error("benchmark failed, err:", err)
			return
		}
		success.Add(1)
	}

	// 开始benchmark
	start := time.Now()
	if cpu <= 1 {
		for _, p := range pairs {
			run(p)
		}
	} else {
		// 设置cpu数量
		prev := runtime.GOMAXPROCS(cpu)
		defer runtime.GOMAXPROCS(prev)
		var wg sync.WaitGroup
		wg.Add(count)
		for _, p := range pairs {
			go func(p [2]string) {
				defer wg.Done()
				run(p)
			}(p)
		}
		wg.Wait()
	}
	return benchmarkResult{Count: count, Success: success.Load(), Time: time.Since(start)}
}

func reportBenchmark(m *transit.Matrix, r benchmarkResult) {
	logrus.SetLevel(logrus.InfoLevel)
	avg := time.Duration(0)
	if r.Count > 0 {
		avg = r.Time / time.Duration(r.Count)
	}
	log.Info(
		"benchmark finished", "\n",
		"count:", r.Count, "\n",
		"time:", r.Time, "\n",
		"avg:", avg, "\n",
		"success:", r.Success, "\n",
		"computed rows:", m.Computations(), "\n",
	)
}

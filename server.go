package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/markleyboyer/subway-equidistance/equidistance"
	"github.com/markleyboyer/subway-equidistance/isochrone"
	"github.com/markleyboyer/subway-equidistance/transit"
	"github.com/rs/cors"
)

var errBadRequest = errors.New("bad request")

type Server struct {
	matrix     *transit.Matrix
	generator  *isochrone.Generator
	classifier *equidistance.Classifier
	// 请求未给出thresholds时使用
	thresholds []float64

	// 接口开启true或关闭false
	ok bool
	// 条件变量
	cond *sync.Cond
}

func NewServer(matrix *transit.Matrix, cfg Config) *Server {
	return &Server{
		matrix: matrix,
		generator: isochrone.NewGenerator(
			matrix,
			isochrone.WithWalkSpeed(cfg.WalkSpeed),
			isochrone.WithCacheSize(cfg.CacheSize),
		),
		classifier: equidistance.NewClassifier(matrix, cfg.Threshold),
		thresholds: cfg.Thresholds,
		ok:         true, cond: sync.NewCond(&sync.Mutex{}),
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.health)
	mux.HandleFunc("POST /suspend", func(w http.ResponseWriter, r *http.Request) {
		s.Suspend()
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("POST /resume", func(w http.ResponseWriter, r *http.Request) {
		s.Resume()
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("GET /stations", s.gate(s.stations))
	mux.HandleFunc("GET /travel-times", s.gate(s.travelTimes))
	mux.HandleFunc("GET /isochrones", s.gate(s.isochrones))
	mux.HandleFunc("GET /isochrones.geojson", s.gate(s.isochronesGeoJSON))
	mux.HandleFunc("GET /overlap", s.gate(s.overlap))
	mux.HandleFunc("GET /classify", s.gate(s.classify))
	return cors.Default().Handler(logging(mux))
}

// 暂停-恢复机制
func (s *Server) gate(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.cond.L.Lock()
		for !s.ok {
			// 暂停中
			s.cond.Wait()
		}
		s.cond.L.Unlock()
		h(w, r)
	}
}

// 暂停服务
func (s *Server) Suspend() {
	s.cond.L.Lock()
	defer s.cond.L.Unlock()
	s.ok = false
}

// 恢复服务
func (s *Server) Resume() {
	s.cond.L.Lock()
	defer s.cond.L.Unlock()
	s.ok = true
	s.cond.Broadcast()
}

func (s *Server) suspended() bool {
	s.cond.L.Lock()
	defer s.cond.L.Unlock()
	return !s.ok
}

// 关闭服务，释放行缓存
func (s *Server) Close() {
	s.Resume()
	log.Infof("release %d cached rows", s.matrix.Len())
	s.matrix.Clear()
}

type healthResponse struct {
	Status     string `json:"status"`
	Stations   int    `json:"stations"`
	CachedRows int    `json:"cached_rows"`
	Suspended  bool   `json:"suspended"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:     "ok",
		Stations:   len(s.matrix.Stations()),
		CachedRows: s.matrix.Len(),
		Suspended:  s.suspended(),
	})
}

func (s *Server) stations(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.matrix.Stations())
}

type travelTimesResponse struct {
	Origin string             `json:"origin"`
	Times  map[string]float64 `json:"times"`
}

func (s *Server) travelTimes(w http.ResponseWriter, r *http.Request) {
	origin, err := requireParam(r, "origin")
	if err != nil {
		writeError(w, err)
		return
	}
	row, err := s.matrix.Row(origin)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, travelTimesResponse{Origin: origin, Times: row.Times()})
}

type bandView struct {
	Minutes     float64          `json:"minutes"`
	Stations    []string         `json:"stations"`
	Area        float64          `json:"area"`
	Coordinates [][][][2]float64 `json:"coordinates"`
}

type isochronesResponse struct {
	Origin    string     `json:"origin"`
	Other     string     `json:"other,omitempty"`
	WalkSpeed float64    `json:"walk_speed"`
	Bands     []bandView `json:"bands"`
}

func newBandViews(bands []isochrone.Band) []bandView {
	ret := make([]bandView, len(bands))
	for i, b := range bands {
		ret[i] = bandView{
			Minutes:     b.Minutes,
			Stations:    b.Stations,
			Area:        b.Area(),
			Coordinates: b.Coordinates(),
		}
	}
	return ret
}

// 解析thresholds与walk_speed
func (s *Server) bandParams(r *http.Request) ([]float64, float64, error) {
	thresholds, err := parseThresholds(r.URL.Query().Get("thresholds"))
	if err != nil {
		return nil, 0, err
	}
	if thresholds == nil {
		thresholds = s.thresholds
	}
	walkSpeed, err := optionalFloat(r, "walk_speed", s.generator.WalkSpeed())
	if err != nil {
		return nil, 0, err
	}
	if !(walkSpeed > 0) || math.IsInf(walkSpeed, 0) {
		return nil, 0, fmt.Errorf("%w: walk_speed must be positive and finite", errBadRequest)
	}
	return thresholds, walkSpeed, nil
}

func (s *Server) generate(r *http.Request) (string, float64, []isochrone.Band, error) {
	origin, err := requireParam(r, "origin")
	if err != nil {
		return "", 0, nil, err
	}
	thresholds, walkSpeed, err := s.bandParams(r)
	if err != nil {
		return "", 0, nil, err
	}
	bands, err := s.generator.Generate(origin, thresholds, walkSpeed)
	return origin, walkSpeed, bands, err
}

func (s *Server) isochrones(w http.ResponseWriter, r *http.Request) {
	origin, walkSpeed, bands, err := s.generate(r)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, isochronesResponse{Origin: origin, WalkSpeed: walkSpeed, Bands: newBandViews(bands)})
}

func (s *Server) isochronesGeoJSON(w http.ResponseWriter, r *http.Request) {
	_, _, bands, err := s.generate(r)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(isochrone.FeatureCollection(bands)); err != nil {
		log.Warnf("failed to write geojson: %v", err)
	}
}

func (s *Server) overlap(w http.ResponseWriter, r *http.Request) {
	a, err := requireParam(r, "a")
	if err != nil {
		writeError(w, err)
		return
	}
	b, err := requireParam(r, "b")
	if err != nil {
		writeError(w, err)
		return
	}
	thresholds, walkSpeed, err := s.bandParams(r)
	if err != nil {
		writeError(w, err)
		return
	}
	bands, err := s.generator.Overlap(a, b, thresholds, walkSpeed)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, isochronesResponse{Origin: a, Other: b, WalkSpeed: walkSpeed, Bands: newBandViews(bands)})
}

type classifyResponse struct {
	A         string                         `json:"a"`
	B         string                         `json:"b"`
	Threshold float64                        `json:"threshold"`
	Summary   equidistance.Summary           `json:"summary"`
	Results   map[string]equidistance.Result `json:"results"`
}

func (s *Server) classify(w http.ResponseWriter, r *http.Request) {
	a, err := requireParam(r, "a")
	if err != nil {
		writeError(w, err)
		return
	}
	b, err := requireParam(r, "b")
	if err != nil {
		writeError(w, err)
		return
	}
	threshold, err := optionalFloat(r, "threshold", s.classifier.Threshold())
	if err != nil {
		writeError(w, err)
		return
	}
	if threshold < 0 {
		writeError(w, fmt.Errorf("%w: threshold must be non-negative", errBadRequest))
		return
	}
	c := s.classifier
	if threshold != c.Threshold() {
		c = equidistance.NewClassifier(s.matrix, threshold)
	}
	results, err := c.Classify(a, b)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, classifyResponse{
		A: a, B: b, Threshold: c.Threshold(),
		Summary: equidistance.Summarize(results),
		Results: results,
	})
}

func requireParam(r *http.Request, name string) (string, error) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return "", fmt.Errorf("%w: missing parameter %q", errBadRequest, name)
	}
	return v, nil
}

func optionalFloat(r *http.Request, name string, def float64) (float64, error) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid %s %q", errBadRequest, name, v)
	}
	return f, nil
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, transit.ErrUnknownStation):
		return http.StatusNotFound
	case errors.Is(err, errBadRequest),
		errors.Is(err, isochrone.ErrInvalidThreshold),
		errors.Is(err, isochrone.ErrInvalidWalkSpeed):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		log.Errorf("request failed: %v", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warnf("failed to write response: %v", err)
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		log.Debugf("%s %s %d %v", r.Method, r.URL.RequestURI(), sw.status, time.Since(start))
	})
}

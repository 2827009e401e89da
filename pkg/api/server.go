package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yasi-python/abstat/pkg/abtest"
	"github.com/yasi-python/abstat/pkg/logger"
	"github.com/yasi-python/abstat/pkg/metrics"
)

type Server struct {
	Exp            abtest.Config
	Simulations    int
	Seed           *uint64
	MaxSimulations int
	MetricsPath    string
	HealthzPath    string
	Log            *logger.Logger
	reqInFlight    atomic.Int64
}

func New(exp abtest.Config, log *logger.Logger, metricsPath, healthzPath string) *Server {
	return &Server{
		Exp:            exp,
		Simulations:    abtest.DefaultSimulations,
		MaxSimulations: abtest.DefaultSimulations * 10,
		MetricsPath:    metricsPath,
		HealthzPath:    healthzPath,
		Log:            log,
	}
}

type sampleSizeReq struct {
	BaselineRate float64  `json:"baseline_rate"`
	MDE          float64  `json:"mde"`
	Ratio        *float64 `json:"ratio"`
}

type groupsReq struct {
	ConversionsA int     `json:"conversions_a"`
	VisitorsA    int     `json:"visitors_a"`
	ConversionsB int     `json:"conversions_b"`
	VisitorsB    int     `json:"visitors_b"`
	Simulations  int     `json:"simulations"`
	Seed         *uint64 `json:"seed"`
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(s.HealthzPath, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(200)
		_, _ = w.Write([]byte("ok"))
	})
	mux.Handle(s.MetricsPath, promhttp.Handler())

	mux.HandleFunc("/api/v1/sample-size", s.wrap(func(w http.ResponseWriter, r *http.Request) {
		var req sampleSizeReq
		if !decode(w, r, &req) {
			return
		}
		ratio := abtest.DefaultRatio
		if req.Ratio != nil {
			ratio = *req.Ratio
		}
		start := time.Now()
		n, err := s.Exp.SampleSize(req.BaselineRate, req.MDE, ratio)
		metrics.Observe(metrics.OpSampleSize, start, err)
		if err != nil {
			s.fail(w, metrics.OpSampleSize, err)
			return
		}
		sendJSON(w, 200, map[string]any{"ok": true, "sample_size": n, "ratio": ratio})
	}))
	mux.HandleFunc("/api/v1/ztest", s.wrap(func(w http.ResponseWriter, r *http.Request) {
		var req groupsReq
		if !decode(w, r, &req) {
			return
		}
		start := time.Now()
		res, err := s.Exp.ZTest(req.ConversionsA, req.VisitorsA, req.ConversionsB, req.VisitorsB)
		metrics.Observe(metrics.OpZTest, start, err)
		if err != nil {
			s.fail(w, metrics.OpZTest, err)
			return
		}
		sendJSON(w, 200, map[string]any{"ok": true, "result": res})
	}))
	mux.HandleFunc("/api/v1/bayesian", s.wrap(func(w http.ResponseWriter, r *http.Request) {
		var req groupsReq
		if !decode(w, r, &req) {
			return
		}
		opts := abtest.BayesianOptions{Simulations: req.Simulations}
		if opts.Simulations == 0 {
			opts.Simulations = s.Simulations
		}
		if opts.Simulations > s.MaxSimulations {
			sendJSON(w, 400, errMsg("simulations above limit"))
			return
		}
		// a fresh source per request keeps concurrent requests independent
		switch {
		case req.Seed != nil:
			opts.Src = abtest.NewSource(*req.Seed)
		case s.Seed != nil:
			opts.Src = abtest.NewSource(*s.Seed)
		}
		start := time.Now()
		res, err := abtest.BayesianTest(req.ConversionsA, req.VisitorsA, req.ConversionsB, req.VisitorsB, opts)
		metrics.Observe(metrics.OpBayesian, start, err)
		if err != nil {
			s.fail(w, metrics.OpBayesian, err)
			return
		}
		metrics.PosteriorDraws.Add(float64(2 * res.Simulations))
		sendJSON(w, 200, map[string]any{"ok": true, "result": res})
	}))
	return mux
}

func (s *Server) wrap(h func(w http.ResponseWriter, r *http.Request)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			sendJSON(w, 405, errMsg("method_not_allowed"))
			return
		}
		s.reqInFlight.Add(1)
		defer s.reqInFlight.Add(-1)
		h(w, r)
	}
}

// InFlight is the number of API requests being served.
func (s *Server) InFlight() int64 { return s.reqInFlight.Load() }

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Handler(), ReadHeaderTimeout: 5 * time.Second}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutCtx)
	}
}

func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	code := 500
	switch {
	case errors.Is(err, abtest.ErrInfeasibleEffectSize), errors.Is(err, abtest.ErrSampleSizeOverflow):
		code = 422
	case errors.Is(err, abtest.ErrInvalidParameter):
		code = 400
	}
	s.Log.Warn("request_rejected", "operation", op, "status", code, "err", err.Error())
	sendJSON(w, code, errMsg(err.Error()))
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		sendJSON(w, 400, errMsg("bad_json"))
		return false
	}
	return true
}

func sendJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func errMsg(m string) map[string]any { return map[string]any{"ok": false, "error": m} }

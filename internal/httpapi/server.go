package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Options HTTP 服务选项
type Options struct {
	RequestTimeout time.Duration
	RateLimit      float64 // 每秒请求数，<= 0 表示不限流
	Burst          int
	Logger         zerolog.Logger
}

type Server struct{ mux *chi.Mux }

func New(opts Options) *Server {
	m := chi.NewRouter()

	// 中间件必须在路由之前注册
	m.Use(chimw.RealIP)
	m.Use(chimw.RequestID)
	m.Use(chimw.Recoverer)
	if opts.RateLimit > 0 {
		m.Use(RateLimit(rate.Limit(opts.RateLimit), opts.Burst))
	}
	if opts.RequestTimeout > 0 {
		m.Use(Timeout(opts.RequestTimeout))
	}
	m.Use(Metrics)
	m.Use(Logger(opts.Logger))

	return &Server{mux: m}
}

func (s *Server) Mux() http.Handler { return s.mux }

// Mount 挂载额外的 handler（例如 /metrics）
func (s *Server) Mount(path string, h http.Handler) {
	s.mux.Handle(path, h)
}

// Command rentaroom 多酒店预订系统
//
//	rentaroom [--config rentaroom.yaml] [menu]   交互式菜单（默认）
//	rentaroom [--config rentaroom.yaml] serve    HTTP/JSON 接口
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/lwmacct/251219-go-pkg-rentaroom/internal/config"
	"github.com/lwmacct/251219-go-pkg-rentaroom/internal/httpapi"
	"github.com/lwmacct/251219-go-pkg-rentaroom/internal/menu"
	"github.com/lwmacct/251219-go-pkg-rentaroom/internal/observability"
	"github.com/lwmacct/251219-go-pkg-rentaroom/pkg/actor"
	"github.com/lwmacct/251219-go-pkg-rentaroom/pkg/coordinator"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "rentaroom",
		Usage: "multi-hotel booking system",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "YAML config file", Sources: cli.EnvVars("RENTAROOM_CONFIG")},
			&cli.StringFlag{Name: "app-env", Usage: "dev|production", Sources: cli.EnvVars("APP_ENV")},
			&cli.StringFlag{Name: "log-level", Usage: "debug|info|warn|error", Sources: cli.EnvVars("LOG_LEVEL")},
			&cli.DurationFlag{Name: "ask-timeout", Usage: "timeout of one actor request", Sources: cli.EnvVars("RENTAROOM_ASK_TIMEOUT")},
			&cli.IntFlag{Name: "agents", Usage: "number of agents started with the system", Sources: cli.EnvVars("RENTAROOM_AGENTS")},
		},
		Commands: []*cli.Command{
			{
				Name:   "menu",
				Usage:  "interactive text menu",
				Action: runMenu,
			},
			{
				Name:  "serve",
				Usage: "serve the HTTP/JSON API",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "addr", Usage: "listen address", Sources: cli.EnvVars("HTTP_ADDR")},
					&cli.Float64Flag{Name: "rate-limit", Usage: "requests per second", Sources: cli.EnvVars("HTTP_RATE_LIMIT")},
					&cli.BoolFlag{Name: "metrics", Usage: "expose /metrics", Value: true, Sources: cli.EnvVars("METRICS_ENABLED")},
				},
				Action: runServe,
			},
		},
		DefaultCommand: "menu",
	}
}

// loadConfig 只有显式设置的 flag/env 才覆盖文件中的值
func loadConfig(cmd *cli.Command) (*config.Config, error) {
	overrides := map[string]any{}
	set := func(flag, key string, val func(string) any) {
		if cmd.IsSet(flag) {
			overrides[key] = val(flag)
		}
	}
	str := func(n string) any { return cmd.String(n) }

	set("app-env", "app_env", str)
	set("log-level", "log_level", str)
	set("ask-timeout", "ask_timeout", func(n string) any { return cmd.Duration(n) })
	set("agents", "initial_agents", func(n string) any { return cmd.Int(n) })
	set("addr", "http.addr", str)
	set("rate-limit", "http.rate_limit", func(n string) any { return cmd.Float64(n) })
	set("metrics", "metrics.enabled", func(n string) any { return cmd.Bool(n) })

	return config.Load(cmd.String("config"), overrides)
}

// start 创建 Actor 系统并启动预订服务
func start(cfg *config.Config, logOut io.Writer) (*actor.System, *coordinator.Service, error) {
	log.Logger = observability.NewLoggerTo(logOut, cfg.AppEnv)
	observability.SetGlobalLevel(cfg.LogLevel)

	sc := cfg.SystemConfig(slog.New(observability.NewSlogHandler(logOut, cfg.AppEnv, cfg.LogLevel)))
	sc.OnDeadLetter = func(_ *actor.PID, msg actor.Message) {
		observability.ObserveDeadLetter(msg.Kind())
	}
	sys := actor.NewSystemWithConfig("rentaroom", sc)

	svc, err := coordinator.Start(sys, cfg.Coordinator())
	if err != nil {
		sys.Shutdown()
		return nil, nil, err
	}
	return sys, svc, nil
}

func stopAll(sys *actor.System, svc *coordinator.Service) {
	if err := svc.Stop(shutdownTimeout); err != nil {
		log.Warn().Err(err).Msg("coordinator did not stop in time")
	}
	sys.ShutdownWithTimeout(shutdownTimeout)
}

func runMenu(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	// 日志写 stderr，菜单独占 stdout
	sys, svc, err := start(cfg, os.Stderr)
	if err != nil {
		return err
	}
	fmt.Println("System has been started.")

	m := menu.New(svc.Client(), os.Stdin, os.Stdout, menu.WithErrorOutput(os.Stderr))
	done := make(chan error, 1)
	// 读取 stdin 无法被取消，收到信号时不等待菜单返回
	go func() { done <- m.Run(ctx) }()

	var runErr error
	select {
	case runErr = <-done:
	case <-ctx.Done():
	}

	stopAll(sys, svc)
	fmt.Println("System has been terminated.")
	if errors.Is(runErr, context.Canceled) {
		return nil
	}
	return runErr
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	sys, svc, err := start(cfg, os.Stdout)
	if err != nil {
		return err
	}
	log.Info().Int("agents", cfg.InitialAgents).Dur("ask_timeout", cfg.AskTimeout).Msg("System has been started.")

	srv := httpapi.New(httpapi.Options{
		RequestTimeout: cfg.HTTP.RequestTimeout,
		RateLimit:      cfg.HTTP.RateLimit,
		Burst:          cfg.HTTP.Burst,
		Logger:         log.Logger,
	})
	if cfg.Metrics.Enabled {
		srv.Mount("/metrics", observability.MetricsHandler(observability.InitRegistry()))
	}
	srv.MountHandlers(&httpapi.Handlers{B: svc.Client()})

	httpSrv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           srv.Mux(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.HTTP.Addr).Msg("API listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	case err = <-errCh:
		log.Error().Err(err).Msg("http server failed")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if serr := httpSrv.Shutdown(shutdownCtx); serr != nil {
		log.Warn().Err(serr).Msg("http shutdown")
	}
	stopAll(sys, svc)
	log.Info().Msg("System has been terminated.")
	return err
}

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/lwmacct/251219-go-pkg-rentaroom/pkg/actor"
	"github.com/lwmacct/251219-go-pkg-rentaroom/pkg/coordinator"
)

// Config 进程配置
type Config struct {
	AppEnv   string `koanf:"app_env"`
	LogLevel string `koanf:"log_level"`

	AskTimeout    time.Duration `koanf:"ask_timeout"`
	InitialAgents int           `koanf:"initial_agents"`
	StashSize     int           `koanf:"stash_size"`

	MailboxSize      int `koanf:"mailbox_size"`
	ActorMailboxSize int `koanf:"actor_mailbox_size"`
	DeadLetterSize   int `koanf:"dead_letter_size"`

	HTTP    HTTPConfig    `koanf:"http"`
	Metrics MetricsConfig `koanf:"metrics"`
}

// HTTPConfig HTTP 服务配置
type HTTPConfig struct {
	Addr           string        `koanf:"addr"`
	RequestTimeout time.Duration `koanf:"request_timeout"`
	RateLimit      float64       `koanf:"rate_limit"` // 每秒请求数
	Burst          int           `koanf:"burst"`
}

// MetricsConfig 指标配置
type MetricsConfig struct {
	Enabled bool `koanf:"enabled"`
}

// Default 默认配置
func Default() Config {
	return Config{
		AppEnv:           "production",
		LogLevel:         "info",
		AskTimeout:       coordinator.DefaultAskTimeout,
		InitialAgents:    coordinator.DefaultInitialAgents,
		StashSize:        coordinator.DefaultStashSize,
		MailboxSize:      10000,
		ActorMailboxSize: 100,
		DeadLetterSize:   1000,
		HTTP: HTTPConfig{
			Addr:           ":8080",
			RequestTimeout: 30 * time.Second,
			RateLimit:      100,
			Burst:          200,
		},
		Metrics: MetricsConfig{Enabled: true},
	}
}

// Load 按顺序叠加：默认值 -> YAML 文件（path 为空时跳过）-> overrides
// overrides 的键使用 koanf 路径，例如 "http.addr"
func Load(path string, overrides map[string]any) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}
	for key, val := range overrides {
		if err := k.Set(key, val); err != nil {
			return nil, fmt.Errorf("override %s: %w", key, err)
		}
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate 校验配置
func (c *Config) Validate() error {
	var errs []error
	positive := func(name string, v int64) {
		if v <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %d", name, v))
		}
	}

	positive("ask_timeout", int64(c.AskTimeout))
	positive("initial_agents", int64(c.InitialAgents))
	positive("stash_size", int64(c.StashSize))
	positive("mailbox_size", int64(c.MailboxSize))
	positive("actor_mailbox_size", int64(c.ActorMailboxSize))
	positive("dead_letter_size", int64(c.DeadLetterSize))
	positive("http.request_timeout", int64(c.HTTP.RequestTimeout))
	positive("http.burst", int64(c.HTTP.Burst))
	if c.HTTP.RateLimit <= 0 {
		errs = append(errs, fmt.Errorf("http.rate_limit must be positive, got %v", c.HTTP.RateLimit))
	}
	if c.HTTP.Addr == "" {
		errs = append(errs, errors.New("http.addr must not be empty"))
	}

	return errors.Join(errs...)
}

// SystemConfig Actor 系统配置
func (c *Config) SystemConfig(logger *slog.Logger) *actor.SystemConfig {
	sc := actor.DefaultSystemConfig()
	sc.MailboxSize = c.MailboxSize
	sc.DeadLetterSize = c.DeadLetterSize
	sc.DefaultActorMailboxSize = c.ActorMailboxSize
	sc.Logger = logger
	return sc
}

// Coordinator 预订系统配置
func (c *Config) Coordinator() coordinator.Config {
	return coordinator.Config{
		InitialAgents: c.InitialAgents,
		AskTimeout:    c.AskTimeout,
		StashSize:     c.StashSize,
	}
}

package coordinator

import (
	"fmt"
	"time"

	"github.com/lwmacct/251219-go-pkg-rentaroom/internal/observability"
	"github.com/lwmacct/251219-go-pkg-rentaroom/pkg/actor"
	"github.com/lwmacct/251219-go-pkg-rentaroom/pkg/registry"
)

// Service 一套完整的预订系统：注册中心 + Coordinator（及其 Agent 与 Hotel Manager）
type Service struct {
	sys      *actor.System
	registry *registry.Registry
	pid      *actor.PID
	client   *Client
}

// Start 在 sys 中启动预订系统
func Start(sys *actor.System, cfg Config) (*Service, error) {
	cfg = cfg.withDefaults()

	reg := registry.Spawn(sys, registry.WithOnChange(func(l registry.Listing) {
		observability.ObserveMembers(string(l.Key), l.Len())
	}))

	props := actor.DefaultProps(DefaultName).WithSupervisor(actor.ResumingSupervisorStrategy())
	pid, err := sys.TrySpawn(New(reg, cfg), props)
	if err != nil {
		return nil, fmt.Errorf("start coordinator: %w", err)
	}

	return &Service{
		sys:      sys,
		registry: reg,
		pid:      pid,
		client:   NewClient(pid, cfg.ClientTimeout),
	}, nil
}

// Client 访问入口
func (s *Service) Client() *Client {
	return s.client
}

// Registry 服务发现
func (s *Service) Registry() *registry.Registry {
	return s.registry
}

// PID Coordinator 的 PID
func (s *Service) PID() *actor.PID {
	return s.pid
}

// Stop 停止 Coordinator 及其下全部 Agent 与 Hotel Manager
func (s *Service) Stop(timeout time.Duration) error {
	return s.sys.StopGracefully(s.pid, timeout)
}

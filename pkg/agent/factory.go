package agent

import (
	"time"

	"github.com/lwmacct/251219-go-pkg-rentaroom/pkg/actor"
	"github.com/lwmacct/251219-go-pkg-rentaroom/pkg/registry"
)

// Option Agent 配置选项
type Option func(*options)

type options struct {
	askTimeout  time.Duration
	mailboxSize int
}

// WithAskTimeout 设置向 Hotel Manager 发起 ask 的超时
func WithAskTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.askTimeout = d
		}
	}
}

// WithMailboxSize 设置 Agent 邮箱大小，0 表示使用系统默认值
func WithMailboxSize(n int) Option {
	return func(o *options) { o.mailboxSize = n }
}

// Spawner 可以创建 Actor 的对象（*actor.System 或 *actor.Context）
type Spawner interface {
	TrySpawn(a actor.Actor, props *actor.Props) (*actor.PID, error)
}

// Factory Agent 工厂
//
// 用于批量创建配置相同的 Agent。
type Factory struct {
	registry *registry.Registry
	opts     []Option
}

// NewFactory 创建工厂
func NewFactory(reg *registry.Registry, opts ...Option) *Factory {
	return &Factory{registry: reg, opts: opts}
}

// Create 创建 Agent
func (f *Factory) Create() *Agent {
	return New(f.registry, f.opts...)
}

// Props Agent 的属性
// 使用恢复策略：单个请求引发的 panic 不会清空酒店缓存
func (f *Factory) Props(name string) *actor.Props {
	o := &options{}
	for _, opt := range f.opts {
		opt(o)
	}
	return actor.DefaultProps(name).
		WithMailboxSize(o.mailboxSize).
		WithSupervisor(actor.ResumingSupervisorStrategy())
}

// CreateAndSpawn 创建并启动 Agent
func (f *Factory) CreateAndSpawn(spawner Spawner, name string) (*actor.PID, error) {
	return spawner.TrySpawn(f.Create(), f.Props(name))
}

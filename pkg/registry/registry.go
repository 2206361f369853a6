package registry

import (
	"context"
	"time"

	"github.com/lwmacct/251219-go-pkg-rentaroom/pkg/actor"
)

// DefaultName Receptionist 的默认 Actor 名称
const DefaultName = "registry"

// DefaultFindTimeout Find 的默认等待时间
const DefaultFindTimeout = 10 * time.Second

// Registry Receptionist 的句柄，封装消息发送
type Registry struct {
	pid         *actor.PID
	findTimeout time.Duration
}

// Option 配置选项
type Option func(*options)

type options struct {
	name        string
	onChange    func(Listing)
	findTimeout time.Duration
}

// WithName 设置 Actor 名称
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithOnChange 设置成员变化回调（例如用于指标）
func WithOnChange(fn func(Listing)) Option {
	return func(o *options) { o.onChange = fn }
}

// WithFindTimeout 设置 Find 的等待时间
func WithFindTimeout(d time.Duration) Option {
	return func(o *options) { o.findTimeout = d }
}

// Spawn 在系统中启动 Receptionist
func Spawn(sys *actor.System, opts ...Option) *Registry {
	o := &options{name: DefaultName, findTimeout: DefaultFindTimeout}
	for _, opt := range opts {
		opt(o)
	}

	props := actor.DefaultProps(o.name).WithSupervisor(actor.ResumingSupervisorStrategy())
	pid := sys.SpawnWithProps(NewReceptionist(o.onChange), props)
	return &Registry{pid: pid, findTimeout: o.findTimeout}
}

// PID Receptionist 的 PID
func (r *Registry) PID() *actor.PID {
	return r.pid
}

// Register 注册实例
func (r *Registry) Register(key ServiceKey, pid *actor.PID) {
	r.pid.Tell(&Register{Key: key, PID: pid})
}

// Deregister 注销实例
func (r *Registry) Deregister(key ServiceKey, pid *actor.PID) {
	r.pid.Tell(&Deregister{Key: key, PID: pid})
}

// Subscribe 订阅服务键，adapt 把快照转换成订阅者自己的消息类型
func (r *Registry) Subscribe(key ServiceKey, subscriber *actor.PID, adapt func(Listing) actor.Message) {
	r.pid.Tell(&Subscribe{Key: key, Subscriber: subscriber, Adapt: adapt})
}

// Unsubscribe 取消订阅
func (r *Registry) Unsubscribe(key ServiceKey, subscriber *actor.PID) {
	r.pid.Tell(&Unsubscribe{Key: key, Subscriber: subscriber})
}

// Find 查询当前快照
func (r *Registry) Find(ctx context.Context, key ServiceKey) (Listing, error) {
	return actor.AskWithContext(ctx, r.pid, func(reply chan<- Listing) actor.Message {
		return &Find{Key: key, ReplyChan: reply}
	}, r.findTimeout)
}

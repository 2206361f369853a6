package registry

import (
	"log/slog"

	"github.com/lwmacct/251219-go-pkg-rentaroom/pkg/actor"
)

// subscription 一个订阅者及其消息适配函数
type subscription struct {
	pid   *actor.PID
	adapt func(Listing) actor.Message
}

// Receptionist 服务发现 Actor
//
// 独占 ServiceKey → 实例集合 的映射，串行处理邮箱即为全部同步手段。
// 同一个键的变更通知按发生顺序送达；不同键之间没有顺序保证。
type Receptionist struct {
	members     map[ServiceKey]map[string]*actor.PID
	subscribers map[ServiceKey]map[string]subscription
	onChange    func(Listing)
	logger      *slog.Logger
}

// NewReceptionist 创建 Receptionist
// onChange 在每次成员变化后于 Receptionist 的 goroutine 中调用，可以为 nil
func NewReceptionist(onChange func(Listing)) *Receptionist {
	return &Receptionist{
		members:     make(map[ServiceKey]map[string]*actor.PID),
		subscribers: make(map[ServiceKey]map[string]subscription),
		onChange:    onChange,
	}
}

// Receive 实现 actor.Actor 接口
func (r *Receptionist) Receive(ctx *actor.Context, msg actor.Message) {
	switch m := msg.(type) {
	// ─────────────────────────────────────────────────────────────────────
	// 生命周期
	// ─────────────────────────────────────────────────────────────────────
	case *actor.Started:
		r.logger = ctx.System().Logger().With("actor", ctx.Self.ID)
		r.logger.Debug("receptionist started")

	case *actor.Stopping, *actor.Stopped:

	// ─────────────────────────────────────────────────────────────────────
	// 注册/注销
	// ─────────────────────────────────────────────────────────────────────
	case *Register:
		r.handleRegister(ctx, m)

	case *Deregister:
		if m.PID == nil {
			return
		}
		set := r.members[m.Key]
		if cur, ok := set[m.PID.ID]; ok && cur == m.PID {
			delete(set, m.PID.ID)
			r.logger.Info("service deregistered", "key", m.Key, "pid", m.PID.ID)
			r.broadcast(m.Key)
		}

	case *actor.Terminated:
		r.handleTerminated(m.Who)

	// ─────────────────────────────────────────────────────────────────────
	// 订阅
	// ─────────────────────────────────────────────────────────────────────
	case *Subscribe:
		if m.Subscriber == nil {
			return
		}
		subs := r.subscribers[m.Key]
		if subs == nil {
			subs = make(map[string]subscription)
			r.subscribers[m.Key] = subs
		}
		sub := subscription{pid: m.Subscriber, adapt: m.Adapt}
		subs[m.Subscriber.ID] = sub
		ctx.Watch(m.Subscriber)

		// 订阅与广播在同一个邮箱中串行，订阅者不会错过之后的任何变化
		r.notify(sub, r.listing(m.Key))

	case *Unsubscribe:
		if m.Subscriber != nil {
			delete(r.subscribers[m.Key], m.Subscriber.ID)
		}

	case *Find:
		actor.TrySend(m.ReplyChan, r.listing(m.Key))

	default:
		r.logger.Warn("receptionist received unknown message", "kind", msg.Kind())
	}
}

func (r *Receptionist) handleRegister(ctx *actor.Context, m *Register) {
	if m.PID == nil {
		return
	}
	set := r.members[m.Key]
	if set == nil {
		set = make(map[string]*actor.PID)
		r.members[m.Key] = set
	}
	if cur, ok := set[m.PID.ID]; ok && cur == m.PID {
		return
	}

	set[m.PID.ID] = m.PID
	// 已终止的实例会立即收到 Terminated，随后被移除
	ctx.Watch(m.PID)

	r.logger.Info("service registered", "key", m.Key, "pid", m.PID.ID)
	r.broadcast(m.Key)
}

// handleTerminated 实例终止即隐式注销，同时清理其订阅
func (r *Receptionist) handleTerminated(who *actor.PID) {
	if who == nil {
		return
	}
	for key, set := range r.members {
		if cur, ok := set[who.ID]; ok && cur == who {
			delete(set, who.ID)
			r.logger.Info("service instance terminated", "key", key, "pid", who.ID)
			r.broadcast(key)
		}
	}
	for _, subs := range r.subscribers {
		if sub, ok := subs[who.ID]; ok && sub.pid == who {
			delete(subs, who.ID)
		}
	}
}

func (r *Receptionist) listing(key ServiceKey) Listing {
	return newListing(key, r.members[key])
}

// broadcast 向该键的全部订阅者推送完整快照
func (r *Receptionist) broadcast(key ServiceKey) {
	l := r.listing(key)
	for _, sub := range r.subscribers[key] {
		r.notify(sub, l)
	}
	if r.onChange != nil {
		r.onChange(l)
	}
}

func (r *Receptionist) notify(sub subscription, l Listing) {
	var msg actor.Message
	if sub.adapt != nil {
		msg = sub.adapt(l)
	} else {
		msg = &Changed{Listing: l}
	}
	if msg != nil {
		sub.pid.Tell(msg)
	}
}

package actor

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// 运行时错误
var (
	// ErrActorNotFound 目标 Actor 不存在或已停止
	ErrActorNotFound = errors.New("actor not found")
	// ErrActorExists 同名 Actor 已存在
	ErrActorExists = errors.New("actor already exists")
	// ErrSystemStopped Actor 系统已关闭
	ErrSystemStopped = errors.New("actor system is not running")
)

// Message Actor 消息接口
// 所有 Actor 间传递的消息都必须实现此接口
type Message interface {
	// Kind 返回消息类型标识，用于日志和监控
	Kind() string
}

// PID (Process ID) Actor 进程标识符
// 是 Actor 的唯一寻址方式，ID 在同一个 System 内唯一
type PID struct {
	// ID Actor 唯一标识（本地）
	ID string
	// Address 网络地址，本地 Actor 为空
	Address string
	// system 所属的 Actor 系统（内部使用）
	system *System
}

// String 返回 PID 的字符串表示
func (p *PID) String() string {
	if p == nil {
		return "<nil>"
	}
	if p.Address != "" {
		return fmt.Sprintf("%s@%s", p.ID, p.Address)
	}
	return p.ID
}

// Tell 发送消息（fire-and-forget）
func (p *PID) Tell(msg Message) {
	if p != nil && p.system != nil {
		p.system.Send(p, msg)
	}
}

// TrySend 尝试发送消息（非阻塞）
// 如果邮箱已满，返回 false
func (p *PID) TrySend(msg Message) bool {
	if p == nil || p.system == nil {
		return false
	}
	return p.system.TrySend(p, msg)
}

// Alive 检查 Actor 是否仍在系统中
// 结果只是一个瞬时快照，返回 true 后 Actor 仍可能随时停止
func (p *PID) Alive() bool {
	if p == nil || p.system == nil {
		return false
	}
	return p.system.alive(p)
}

// Actor Actor 接口
type Actor interface {
	// Receive 处理接收到的消息
	// 同一个 Actor 的 Receive 永远不会并发执行
	Receive(ctx *Context, msg Message)
}

// ActorFunc 函数式 Actor，便于快速创建简单 Actor
type ActorFunc func(ctx *Context, msg Message)

// Receive 实现 Actor 接口
func (f ActorFunc) Receive(ctx *Context, msg Message) {
	f(ctx, msg)
}

// Context Actor 执行上下文
// 只在 Receive 调用期间有效，不要在其他 goroutine 中保存使用
type Context struct {
	// Self 当前 Actor 的 PID
	Self *PID
	// Sender 消息发送者的 PID（如果有）
	Sender *PID
	// Parent 父 Actor 的 PID（如果有）
	Parent *PID

	system  *System
	ctx     context.Context
	message Message
}

// Reply 回复消息给发送者
func (c *Context) Reply(msg Message) {
	if c.Sender != nil {
		c.system.SendWithSender(c.Sender, msg, c.Self)
	}
}

// Forward 转发当前消息到另一个 Actor，保留原始发送者
func (c *Context) Forward(target *PID) {
	if c.message != nil {
		c.system.SendWithSender(target, c.message, c.Sender)
	}
}

// Spawn 创建子 Actor
// 名称已存在时返回已有 Actor 的 PID
func (c *Context) Spawn(actor Actor, name string) *PID {
	return c.system.spawn(actor, name, c.Self)
}

// SpawnWithProps 使用属性创建子 Actor
func (c *Context) SpawnWithProps(actor Actor, props *Props) *PID {
	pid, _ := c.system.spawnWithProps(actor, props, c.Self)
	return pid
}

// TrySpawn 创建子 Actor，名称已被占用时返回 ErrActorExists
func (c *Context) TrySpawn(actor Actor, props *Props) (*PID, error) {
	return c.system.spawnWithProps(actor, props, c.Self)
}

// Stop 停止指定 Actor
func (c *Context) Stop(pid *PID) {
	c.system.Stop(pid)
}

// StopSelf 停止当前 Actor
func (c *Context) StopSelf() {
	c.system.Stop(c.Self)
}

// Context 获取 Go context，Actor 停止时取消
func (c *Context) Context() context.Context {
	return c.ctx
}

// Message 获取当前正在处理的消息
func (c *Context) Message() Message {
	return c.message
}

// System 获取 Actor 系统引用
func (c *Context) System() *System {
	return c.system
}

// Watch 监控另一个 Actor
// 被监控的 Actor 终止时（包括监控前就已终止）会收到 Terminated 消息
func (c *Context) Watch(pid *PID) {
	c.system.SendWithSender(pid, &Watch{Watcher: c.Self}, c.Self)
}

// Unwatch 取消监控
func (c *Context) Unwatch(pid *PID) {
	c.system.SendWithSender(pid, &Unwatch{Watcher: c.Self}, c.Self)
}

// PipeToSelf 在独立 goroutine 中执行 task，并把结果作为新消息投递回当前 Actor
//
// 用于不能阻塞邮箱的长耗时操作（例如向多个 Actor 发起 Ask 后汇总）。
// task 收到的 context 在当前 Actor 停止时取消；返回 nil 表示不投递。
func (c *Context) PipeToSelf(task func(ctx context.Context) Message) {
	self, sys, ctx := c.Self, c.system, c.ctx
	go func() {
		if msg := task(ctx); msg != nil {
			sys.Send(self, msg)
		}
	}()
}

// Props Actor 属性配置
type Props struct {
	// Name Actor 名称，同时作为 PID.ID
	Name string
	// MailboxSize 邮箱大小
	MailboxSize int
	// SupervisorStrategy 监督策略
	SupervisorStrategy SupervisorStrategy
}

// DefaultProps 默认属性
func DefaultProps(name string) *Props {
	return &Props{
		Name:        name,
		MailboxSize: 0, // 使用系统默认值
	}
}

// WithMailboxSize 设置邮箱大小
func (p *Props) WithMailboxSize(size int) *Props {
	p.MailboxSize = size
	return p
}

// WithSupervisor 设置监督策略
func (p *Props) WithSupervisor(strategy SupervisorStrategy) *Props {
	p.SupervisorStrategy = strategy
	return p
}

// ============== 系统消息 ==============

// Started Actor 启动完成消息
type Started struct{}

// Kind 实现 Message 接口
func (s *Started) Kind() string { return "system.started" }

// Stopping Actor 正在停止消息
type Stopping struct{}

// Kind 实现 Message 接口
func (s *Stopping) Kind() string { return "system.stopping" }

// Stopped Actor 已停止消息
type Stopped struct{}

// Kind 实现 Message 接口
func (s *Stopped) Kind() string { return "system.stopped" }

// Restarting Actor 正在重启消息
type Restarting struct{}

// Kind 实现 Message 接口
func (r *Restarting) Kind() string { return "system.restarting" }

// PoisonPill 毒丸消息，优雅停止 Actor
type PoisonPill struct{}

// Kind 实现 Message 接口
func (p *PoisonPill) Kind() string { return "system.poison_pill" }

// Watch 监控请求
type Watch struct {
	Watcher *PID
}

// Kind 实现 Message 接口
func (w *Watch) Kind() string { return "system.watch" }

// Unwatch 取消监控
type Unwatch struct {
	Watcher *PID
}

// Kind 实现 Message 接口
func (u *Unwatch) Kind() string { return "system.unwatch" }

// Terminated Actor 终止通知
type Terminated struct {
	Who *PID
}

// Kind 实现 Message 接口
func (t *Terminated) Kind() string { return "system.terminated" }

// ============== 请求/响应支持 ==============

// ResponseTimeout 响应超时错误
// 属于传输层失败，与业务层的失败回复区分开
type ResponseTimeout struct {
	Target  *PID
	Timeout time.Duration
}

// Kind 实现 Message 接口
func (r *ResponseTimeout) Kind() string { return "system.response_timeout" }

// Error 实现 error 接口
func (r *ResponseTimeout) Error() string {
	return fmt.Sprintf("request to %s timed out after %v", r.Target, r.Timeout)
}

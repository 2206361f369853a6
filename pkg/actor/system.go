package actor

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"
)

// System Actor 系统
// 管理所有 Actor 的生命周期、消息路由和监督
type System struct {
	// 基本信息
	name string

	// Actor 注册表，同时是系统内唯一名称的权威来源
	actors   map[string]*actorCell
	actorsMu sync.RWMutex

	// 全局邮箱（用于路由消息）
	mailbox chan envelope

	// 死信队列（无法投递的消息）
	deadLetters chan envelope

	// 生命周期控制
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	isRunning atomic.Bool

	// 配置
	config *SystemConfig

	// 统计信息
	stats *SystemStats

	// 日志
	logger *slog.Logger
}

// SystemConfig 系统配置
type SystemConfig struct {
	// MailboxSize 全局邮箱大小
	MailboxSize int
	// DeadLetterSize 死信队列大小
	DeadLetterSize int
	// DefaultActorMailboxSize 默认 Actor 邮箱大小
	DefaultActorMailboxSize int
	// EnableDeadLetterLogging 是否记录死信
	EnableDeadLetterLogging bool
	// PanicHandler panic 处理函数
	PanicHandler func(actor *PID, msg Message, err any)
	// OnDeadLetter 死信回调（例如用于指标统计），在死信处理 goroutine 中调用
	OnDeadLetter func(target *PID, msg Message)
	// Logger 自定义日志器
	Logger *slog.Logger
}

// DefaultSystemConfig 默认系统配置
func DefaultSystemConfig() *SystemConfig {
	return &SystemConfig{
		MailboxSize:             10000,
		DeadLetterSize:          1000,
		DefaultActorMailboxSize: 100,
		EnableDeadLetterLogging: true,
		PanicHandler:            nil, // 使用默认处理
		Logger:                  nil, // 使用默认 logger
	}
}

// SystemStats 系统统计
type SystemStats struct {
	TotalActors   int64
	TotalMessages int64
	DeadLetters   int64
	ProcessedMsgs int64
	StartTime     time.Time
}

// actorCell Actor 单元，包含 Actor 及其运行时状态
type actorCell struct {
	pid      *PID
	actor    Actor
	mailbox  chan envelope
	parent   *PID
	children map[string]*PID // 受 System.actorsMu 保护
	watchers map[string]*PID // 监控此 Actor 的其他 Actor，只在 Actor 自己的 goroutine 中访问

	// 状态
	state    actorState
	stateMu  sync.RWMutex
	restarts int

	// 监督策略
	supervisor SupervisorStrategy

	// 上下文
	ctx    context.Context
	cancel context.CancelFunc
}

type actorState int

const (
	actorStateIdle actorState = iota
	actorStateRunning
	actorStateStopping
	actorStateStopped
	actorStateRestarting
)

// envelope 消息信封
type envelope struct {
	target  *PID
	sender  *PID
	message Message
	sentAt  time.Time
}

// NewSystem 创建新的 Actor 系统
func NewSystem(name string) *System {
	return NewSystemWithConfig(name, DefaultSystemConfig())
}

// NewSystemWithConfig 使用配置创建 Actor 系统
func NewSystemWithConfig(name string, config *SystemConfig) *System {
	if config == nil {
		config = DefaultSystemConfig()
	}
	defaults := DefaultSystemConfig()
	if config.MailboxSize <= 0 {
		config.MailboxSize = defaults.MailboxSize
	}
	if config.DeadLetterSize <= 0 {
		config.DeadLetterSize = defaults.DeadLetterSize
	}
	if config.DefaultActorMailboxSize <= 0 {
		config.DefaultActorMailboxSize = defaults.DefaultActorMailboxSize
	}

	ctx, cancel := context.WithCancel(context.Background())

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &System{
		name:        name,
		actors:      make(map[string]*actorCell),
		mailbox:     make(chan envelope, config.MailboxSize),
		deadLetters: make(chan envelope, config.DeadLetterSize),
		ctx:         ctx,
		cancel:      cancel,
		config:      config,
		logger:      logger,
		stats: &SystemStats{
			StartTime: time.Now(),
		},
	}

	s.isRunning.Store(true)

	// 启动消息分发器
	s.wg.Add(1)
	go s.dispatcher()

	// 启动死信处理器
	s.wg.Add(1)
	go s.deadLetterHandler()

	s.logger.Info("actor system started", "name", name)
	return s
}

// Name 返回系统名称
func (s *System) Name() string {
	return s.name
}

// Logger 返回系统日志器，供 Actor 实现复用
func (s *System) Logger() *slog.Logger {
	return s.logger
}

// Spawn 创建 Actor
// 名称已存在时返回已有 Actor 的 PID
func (s *System) Spawn(actor Actor, name string) *PID {
	return s.spawn(actor, name, nil)
}

// SpawnWithProps 使用属性创建 Actor
func (s *System) SpawnWithProps(actor Actor, props *Props) *PID {
	pid, _ := s.spawnWithProps(actor, props, nil)
	return pid
}

// TrySpawn 创建 Actor，名称已被占用时返回 ErrActorExists
func (s *System) TrySpawn(actor Actor, props *Props) (*PID, error) {
	return s.spawnWithProps(actor, props, nil)
}

// spawn 内部创建方法
func (s *System) spawn(actor Actor, name string, parent *PID) *PID {
	pid, _ := s.spawnWithProps(actor, DefaultProps(name), parent)
	return pid
}

// spawnWithProps 使用属性创建
// 名称冲突时返回已有 PID 和 ErrActorExists
func (s *System) spawnWithProps(actor Actor, props *Props, parent *PID) (*PID, error) {
	if !s.isRunning.Load() {
		return nil, ErrSystemStopped
	}

	s.actorsMu.Lock()
	defer s.actorsMu.Unlock()

	// 检查名称是否已存在
	if existing, exists := s.actors[props.Name]; exists {
		s.logger.Debug("actor already exists", "name", props.Name)
		return existing.pid, fmt.Errorf("%w: %s", ErrActorExists, props.Name)
	}

	// 创建 PID
	pid := &PID{
		ID:     props.Name,
		system: s,
	}

	// 创建上下文
	ctx, cancel := context.WithCancel(s.ctx)

	// 确定邮箱大小
	mailboxSize := props.MailboxSize
	if mailboxSize <= 0 {
		mailboxSize = s.config.DefaultActorMailboxSize
	}

	// 创建 Actor 单元
	cell := &actorCell{
		pid:        pid,
		actor:      actor,
		mailbox:    make(chan envelope, mailboxSize),
		parent:     parent,
		children:   make(map[string]*PID),
		watchers:   make(map[string]*PID),
		state:      actorStateIdle,
		supervisor: props.SupervisorStrategy,
		ctx:        ctx,
		cancel:     cancel,
	}

	// 注册
	s.actors[props.Name] = cell
	atomic.AddInt64(&s.stats.TotalActors, 1)

	// 如果有父 Actor，注册为子 Actor
	if parent != nil {
		if parentCell, ok := s.actors[parent.ID]; ok {
			parentCell.children[props.Name] = pid
		}
	}

	// 启动 Actor 消息循环
	s.wg.Add(1)
	go s.actorLoop(cell)

	// 发送 Started 消息，经过全局邮箱，保证先于之后发送的任何消息
	s.SendWithSender(pid, &Started{}, nil)

	s.logger.Debug("spawned actor", "name", props.Name, "parent", parent)
	return pid, nil
}

// Send 发送消息（无发送者）
func (s *System) Send(target *PID, msg Message) {
	s.SendWithSender(target, msg, nil)
}

// SendWithSender 发送消息（带发送者）
func (s *System) SendWithSender(target *PID, msg Message, sender *PID) {
	if !s.isRunning.Load() || target == nil {
		return
	}

	env := envelope{
		target:  target,
		sender:  sender,
		message: msg,
		sentAt:  time.Now(),
	}

	select {
	case s.mailbox <- env:
		atomic.AddInt64(&s.stats.TotalMessages, 1)
	default:
		// 邮箱满，发送到死信队列
		s.toDeadLetters(env)
	}
}

// TrySend 尝试发送消息（非阻塞）
// 如果邮箱已满，返回 false
func (s *System) TrySend(target *PID, msg Message) bool {
	if !s.isRunning.Load() || target == nil {
		return false
	}

	env := envelope{
		target:  target,
		message: msg,
		sentAt:  time.Now(),
	}

	select {
	case s.mailbox <- env:
		atomic.AddInt64(&s.stats.TotalMessages, 1)
		return true
	default:
		return false
	}
}

// Stop 停止 Actor
// 已在邮箱中的消息会先于 PoisonPill 处理
func (s *System) Stop(pid *PID) {
	if pid == nil {
		return
	}

	s.actorsMu.RLock()
	cell, exists := s.actors[pid.ID]
	s.actorsMu.RUnlock()

	if !exists {
		return
	}

	// 发送 PoisonPill
	s.Send(pid, &PoisonPill{})

	cell.stateMu.Lock()
	if cell.state != actorStateStopped {
		cell.state = actorStateStopping
	}
	cell.stateMu.Unlock()
}

// StopGracefully 优雅停止 Actor（等待处理完当前消息）
func (s *System) StopGracefully(pid *PID, timeout time.Duration) error {
	s.Stop(pid)

	// 等待从注册表中移除
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		s.actorsMu.RLock()
		_, exists := s.actors[pid.ID]
		s.actorsMu.RUnlock()

		if !exists {
			return nil
		}

		time.Sleep(10 * time.Millisecond)
	}

	return fmt.Errorf("timeout waiting for actor %s to stop", pid.ID)
}

// Shutdown 关闭整个 Actor 系统
func (s *System) Shutdown() {
	s.ShutdownWithTimeout(30 * time.Second)
}

// ShutdownWithTimeout 带超时的关闭
func (s *System) ShutdownWithTimeout(timeout time.Duration) {
	if !s.isRunning.CompareAndSwap(true, false) {
		return
	}
	s.logger.Info("actor system shutting down", "name", s.name)

	// 取消上下文，所有 Actor 循环随之退出并执行清理
	s.cancel()

	// 等待所有 goroutine 完成
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("actor system shutdown complete", "name", s.name)
	case <-time.After(timeout):
		s.logger.Warn("actor system shutdown timeout, forcing exit", "name", s.name)
	}
}

// dispatcher 全局消息分发器
func (s *System) dispatcher() {
	defer s.wg.Done()

	for {
		select {
		case <-s.ctx.Done():
			return
		case env := <-s.mailbox:
			s.dispatchMessage(env)
		}
	}
}

// dispatchMessage 分发单条消息
func (s *System) dispatchMessage(env envelope) {
	// 持有读锁完成投递，与 cleanupActor 的注销互斥
	s.actorsMu.RLock()
	cell, exists := s.actors[env.target.ID]
	if !exists {
		s.actorsMu.RUnlock()

		// 监控已终止的 Actor，立即回复 Terminated
		if w, ok := env.message.(*Watch); ok && w.Watcher != nil {
			s.Send(w.Watcher, &Terminated{Who: env.target})
			return
		}
		s.toDeadLetters(env)
		return
	}

	// 投递到 Actor 邮箱
	select {
	case cell.mailbox <- env:
		s.actorsMu.RUnlock()
	default:
		s.actorsMu.RUnlock()
		// Actor 邮箱满，背压处理
		s.logger.Warn("actor mailbox full, message queued to dead letter", "actor", env.target.ID)
		s.toDeadLetters(env)
	}
}

// toDeadLetters 投递到死信队列
func (s *System) toDeadLetters(env envelope) {
	select {
	case s.deadLetters <- env:
		atomic.AddInt64(&s.stats.DeadLetters, 1)
	default:
		s.logger.Warn("dead letter queue full, message dropped",
			"kind", env.message.Kind(), "target", env.target)
	}
}

// actorLoop Actor 消息处理循环
func (s *System) actorLoop(cell *actorCell) {
	defer s.wg.Done()
	defer s.cleanupActor(cell)

	cell.stateMu.Lock()
	if cell.state == actorStateIdle {
		cell.state = actorStateRunning
	}
	cell.stateMu.Unlock()

	for {
		select {
		case <-cell.ctx.Done():
			return
		case env := <-cell.mailbox:
			s.processMessage(cell, env)

			// 检查是否收到 PoisonPill
			if _, ok := env.message.(*PoisonPill); ok {
				return
			}
		}
	}
}

// processMessage 处理单条消息
func (s *System) processMessage(cell *actorCell, env envelope) {
	// panic 恢复
	defer func() {
		if r := recover(); r != nil {
			if s.config.PanicHandler != nil {
				s.config.PanicHandler(cell.pid, env.message, r)
			} else {
				s.logger.Error("panic in actor",
					"actor", cell.pid.ID,
					"message", env.message.Kind(),
					"error", r,
					"stack", string(debug.Stack()))
			}
			// 触发监督策略
			s.handleFailure(cell, env.message, r)
		}
	}()

	ctx := &Context{
		Self:    cell.pid,
		Sender:  env.sender,
		Parent:  cell.parent,
		system:  s,
		ctx:     cell.ctx,
		message: env.message,
	}

	// 处理系统消息
	switch msg := env.message.(type) {
	case *PoisonPill:
		// 发送 Stopping 消息
		cell.actor.Receive(ctx, &Stopping{})
		return

	case *Watch:
		if msg.Watcher != nil {
			cell.watchers[msg.Watcher.ID] = msg.Watcher
		}
		return

	case *Unwatch:
		if msg.Watcher != nil {
			delete(cell.watchers, msg.Watcher.ID)
		}
		return
	}

	// 处理用户消息
	cell.actor.Receive(ctx, env.message)
	atomic.AddInt64(&s.stats.ProcessedMsgs, 1)
}

// handleFailure 处理 Actor 失败
func (s *System) handleFailure(cell *actorCell, msg Message, err any) {
	supervisor := cell.supervisor
	if supervisor == nil && cell.parent != nil {
		// 使用父 Actor 的监督策略
		s.actorsMu.RLock()
		if parentCell, ok := s.actors[cell.parent.ID]; ok {
			supervisor = parentCell.supervisor
		}
		s.actorsMu.RUnlock()
	}

	if supervisor == nil {
		supervisor = DefaultSupervisorStrategy()
	}

	result := supervisor.HandleFailure(s, cell.pid, msg, err)

	// 处理返回结果
	switch r := result.(type) {
	case DirectiveWithDelay:
		// 延迟执行
		time.AfterFunc(r.Delay, func() {
			s.applyDirective(cell, r.Directive)
		})
	case Directive:
		// 立即执行
		s.applyDirective(cell, r)
	}
}

// applyDirective 应用监督指令
func (s *System) applyDirective(cell *actorCell, directive Directive) {
	switch directive {
	case DirectiveResume:
		// 继续运行，不做处理
		s.logger.Debug("actor resumed after failure", "actor", cell.pid.ID)

	case DirectiveRestart:
		cell.restarts++
		cell.stateMu.Lock()
		cell.state = actorStateRestarting
		cell.stateMu.Unlock()

		// 发送 Restarting 消息
		ctx := &Context{Self: cell.pid, Parent: cell.parent, system: s, ctx: cell.ctx}
		cell.actor.Receive(ctx, &Restarting{})

		// 重新发送 Started 消息
		s.Send(cell.pid, &Started{})

		cell.stateMu.Lock()
		cell.state = actorStateRunning
		cell.stateMu.Unlock()

		s.logger.Info("actor restarted", "actor", cell.pid.ID, "restarts", cell.restarts)

	case DirectiveStop:
		s.Stop(cell.pid)

	case DirectiveEscalate:
		if cell.parent != nil {
			// 将失败上报给父 Actor
			s.Send(cell.parent, &Terminated{Who: cell.pid})
		}
		s.Stop(cell.pid)
	}
}

// cleanupActor 清理 Actor
func (s *System) cleanupActor(cell *actorCell) {
	cell.stateMu.Lock()
	cell.state = actorStateStopped
	cell.stateMu.Unlock()

	// 先从注册表中移除，此后分发器不会再向该邮箱投递
	s.actorsMu.Lock()
	delete(s.actors, cell.pid.ID)
	if cell.parent != nil {
		if parentCell, ok := s.actors[cell.parent.ID]; ok {
			delete(parentCell.children, cell.pid.ID)
		}
	}
	children := make([]*PID, 0, len(cell.children))
	for _, child := range cell.children {
		children = append(children, child)
	}
	s.actorsMu.Unlock()

	// 排空邮箱：迟到的 Watch 仍需收到 Terminated，其余转为死信
	for drained := false; !drained; {
		select {
		case env := <-cell.mailbox:
			switch msg := env.message.(type) {
			case *Watch:
				if msg.Watcher != nil {
					cell.watchers[msg.Watcher.ID] = msg.Watcher
				}
			case *Unwatch, *PoisonPill, *Started:
			default:
				s.toDeadLetters(env)
			}
		default:
			drained = true
		}
	}

	// 发送 Stopped 消息
	ctx := &Context{Self: cell.pid, Parent: cell.parent, system: s, ctx: context.Background()}
	s.safeReceive(cell, ctx, &Stopped{})

	// 通知所有监控者
	for _, watcher := range cell.watchers {
		s.Send(watcher, &Terminated{Who: cell.pid})
	}

	// 停止所有子 Actor
	for _, child := range children {
		s.Stop(child)
	}

	// 取消上下文
	cell.cancel()

	atomic.AddInt64(&s.stats.TotalActors, -1)
	s.logger.Debug("actor stopped", "actor", cell.pid.ID)
}

// safeReceive 调用 Receive 并吞掉 panic（清理阶段不再触发监督）
func (s *System) safeReceive(cell *actorCell, ctx *Context, msg Message) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("panic in actor during cleanup", "actor", cell.pid.ID, "error", r)
		}
	}()
	cell.actor.Receive(ctx, msg)
}

// deadLetterHandler 死信处理器
func (s *System) deadLetterHandler() {
	defer s.wg.Done()

	for {
		select {
		case <-s.ctx.Done():
			return
		case env := <-s.deadLetters:
			if s.config.EnableDeadLetterLogging {
				s.logger.Warn("dead letter",
					"message", env.message.Kind(),
					"target", env.target,
					"sender", env.sender)
			}
			if s.config.OnDeadLetter != nil {
				s.config.OnDeadLetter(env.target, env.message)
			}
		}
	}
}

// alive 检查 Actor 是否存在且未进入停止流程
func (s *System) alive(pid *PID) bool {
	s.actorsMu.RLock()
	cell, ok := s.actors[pid.ID]
	s.actorsMu.RUnlock()
	// 同名的新实例不代表旧 PID 存活
	if !ok || cell.pid != pid {
		return false
	}

	cell.stateMu.RLock()
	defer cell.stateMu.RUnlock()
	return cell.state != actorStateStopping && cell.state != actorStateStopped
}

// Stats 获取统计信息
func (s *System) Stats() *SystemStats {
	return &SystemStats{
		TotalActors:   atomic.LoadInt64(&s.stats.TotalActors),
		TotalMessages: atomic.LoadInt64(&s.stats.TotalMessages),
		DeadLetters:   atomic.LoadInt64(&s.stats.DeadLetters),
		ProcessedMsgs: atomic.LoadInt64(&s.stats.ProcessedMsgs),
		StartTime:     s.stats.StartTime,
	}
}

// GetActor 获取 Actor
func (s *System) GetActor(name string) (*PID, bool) {
	s.actorsMu.RLock()
	defer s.actorsMu.RUnlock()

	if cell, ok := s.actors[name]; ok {
		return cell.pid, true
	}
	return nil, false
}

// ListActors 列出所有 Actor
func (s *System) ListActors() []*PID {
	s.actorsMu.RLock()
	defer s.actorsMu.RUnlock()

	pids := make([]*PID, 0, len(s.actors))
	for _, cell := range s.actors {
		pids = append(pids, cell.pid)
	}
	return pids
}

// Count 返回 Actor 数量
func (s *System) Count() int {
	s.actorsMu.RLock()
	defer s.actorsMu.RUnlock()
	return len(s.actors)
}

// IsRunning 检查系统是否运行中
func (s *System) IsRunning() bool {
	return s.isRunning.Load()
}

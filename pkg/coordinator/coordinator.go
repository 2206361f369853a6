package coordinator

import (
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/lwmacct/251219-go-pkg-rentaroom/pkg/actor"
	"github.com/lwmacct/251219-go-pkg-rentaroom/pkg/agent"
	"github.com/lwmacct/251219-go-pkg-rentaroom/pkg/protocol"
	"github.com/lwmacct/251219-go-pkg-rentaroom/pkg/registry"
)

// ErrNoAgents 没有可用的 Agent 且暂存队列已满
var ErrNoAgents = errors.New("no agents available")

// Coordinator 请求入口
//
// 除 AddAgent 外的所有请求按轮询分发给当前注册的 Agent。
// 还没有 Agent 时请求被暂存，第一份非空列表到达后按原顺序转发。
type Coordinator struct {
	registry *registry.Registry
	factory  *agent.Factory
	cfg      Config

	routees []*actor.PID
	cursor  int
	stash   []protocol.Request

	stats  *actor.StatsCollector
	logger *slog.Logger
}

// New 创建 Coordinator
func New(reg *registry.Registry, cfg Config) *Coordinator {
	cfg = cfg.withDefaults()
	return &Coordinator{
		registry: reg,
		factory: agent.NewFactory(reg,
			agent.WithAskTimeout(cfg.AskTimeout),
			agent.WithMailboxSize(cfg.AgentMailboxSize),
		),
		cfg:    cfg,
		stats:  actor.NewStatsCollector(),
		logger: slog.Default(),
	}
}

// Receive 实现 actor.Actor 接口
func (c *Coordinator) Receive(ctx *actor.Context, msg actor.Message) {
	c.stats.RecordReceived()
	startTime := time.Now()

	defer func() {
		c.stats.RecordHandled(time.Since(startTime))
	}()

	switch m := msg.(type) {
	// ─────────────────────────────────────────────────────────────────────
	// 系统消息
	// ─────────────────────────────────────────────────────────────────────

	case *actor.Started:
		c.logger = ctx.System().Logger().With("actor", ctx.Self.ID)
		c.registry.Subscribe(protocol.AgentService, ctx.Self, func(l registry.Listing) actor.Message {
			return &agentsChanged{Listing: l}
		})
		for range c.cfg.InitialAgents {
			if _, err := c.spawnAgent(ctx); err != nil {
				c.logger.Error("spawn initial agent failed", "error", err)
			}
		}
		c.logger.Debug("coordinator started", "agents", c.cfg.InitialAgents)

	case *actor.Stopping:
		c.logger.Debug("coordinator stopping", "stashed", len(c.stash))
		for _, req := range c.stash {
			protocol.Reply(req.Replier(), &protocol.Response{Err: ErrNoAgents})
		}
		c.stash = nil

	case *actor.Stopped, *actor.Restarting:

	case *agentsChanged:
		c.handleAgentsChanged(m.Listing)

	// ─────────────────────────────────────────────────────────────────────
	// Coordinator 自身处理的请求
	// ─────────────────────────────────────────────────────────────────────

	case *protocol.AddAgent:
		status := protocol.AgentAdded
		var err error
		if _, err = c.spawnAgent(ctx); err != nil {
			c.stats.RecordError(err)
			c.logger.Error("spawn agent failed", "error", err)
			status = ""
		}
		protocol.Reply(m.ReplyChan, &protocol.Response{Status: status, Err: err})

	case *GetAgents:
		ids := make([]string, len(c.routees))
		for i, pid := range c.routees {
			ids[i] = pid.ID
		}
		actor.TrySend(m.ReplyChan, ids)

	// ─────────────────────────────────────────────────────────────────────
	// 路由
	// ─────────────────────────────────────────────────────────────────────

	case protocol.Request:
		c.route(m)

	default:
		c.logger.Warn("coordinator received unknown message", "kind", msg.Kind())
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// 内部处理方法
// ═══════════════════════════════════════════════════════════════════════════

func (c *Coordinator) spawnAgent(ctx *actor.Context) (*actor.PID, error) {
	return c.factory.CreateAndSpawn(ctx, "agent-"+uuid.NewString())
}

func (c *Coordinator) handleAgentsChanged(l registry.Listing) {
	routees := make([]*actor.PID, 0, l.Len())
	for _, pid := range l.Instances {
		if pid.Alive() {
			routees = append(routees, pid)
		}
	}
	if len(routees) != len(c.routees) {
		c.logger.Info("agents changed", "count", len(routees))
	}
	c.routees = routees

	if len(c.routees) == 0 || len(c.stash) == 0 {
		return
	}
	stashed := c.stash
	c.stash = nil
	c.logger.Debug("flushing stashed requests", "count", len(stashed))
	for _, req := range stashed {
		c.route(req)
	}
}

// route 轮询选择下一个存活的 Agent
func (c *Coordinator) route(req protocol.Request) {
	for range len(c.routees) {
		pid := c.routees[c.cursor%len(c.routees)]
		c.cursor++
		if pid.Alive() {
			pid.Tell(req)
			return
		}
	}

	if len(c.stash) >= c.cfg.StashSize {
		c.logger.Warn("stash full, rejecting request", "kind", req.Kind())
		protocol.Reply(req.Replier(), &protocol.Response{Err: ErrNoAgents})
		return
	}
	c.stash = append(c.stash, req)
}

// Stats 获取统计信息
func (c *Coordinator) Stats() *actor.ActorStats {
	return c.stats.Stats()
}

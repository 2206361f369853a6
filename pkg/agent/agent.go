package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lwmacct/251219-go-pkg-rentaroom/pkg/actor"
	"github.com/lwmacct/251219-go-pkg-rentaroom/pkg/booking"
	"github.com/lwmacct/251219-go-pkg-rentaroom/pkg/hotelmanager"
	"github.com/lwmacct/251219-go-pkg-rentaroom/pkg/protocol"
	"github.com/lwmacct/251219-go-pkg-rentaroom/pkg/registry"
)

// DefaultAskTimeout 向 Hotel Manager 发起 ask 的默认超时
const DefaultAskTimeout = 10 * time.Second

var (
	// ErrUnexpectedReply Hotel Manager 回复了意料之外的消息类型
	ErrUnexpectedReply = errors.New("unexpected reply")
	// ErrStopped Agent 在请求完成前停止
	ErrStopped = errors.New("agent stopped")
	// ErrUnsupportedRequest 只有 Hotel Manager 才处理的请求
	ErrUnsupportedRequest = errors.New("unsupported request")
)

// Agent 面向请求的工作者
//
// Agent 持有 Hotel Manager 的本地缓存（由服务发现推送维护），
// 把请求路由到对应酒店或向所有酒店扇出后汇总。
// 处理函数从不阻塞邮箱：扇出在 PipeToSelf 中完成，结果以消息形式回到邮箱。
type Agent struct {
	registry   *registry.Registry
	askTimeout time.Duration

	managers map[string]*actor.PID // 酒店名 -> Manager
	local    map[string]*actor.PID // 本 Agent 创建、尚未出现在推送中的 Manager
	pending  map[string]*pendingOp
	deleting map[string]string // Manager ID -> 等待其终止的 DeleteHotel 操作

	stats  *actor.StatsCollector
	logger *slog.Logger
}

// pendingOp 一个进行中的扇出操作
type pendingOp struct {
	request protocol.Request
	started time.Time
}

// New 创建 Agent
func New(reg *registry.Registry, opts ...Option) *Agent {
	o := &options{askTimeout: DefaultAskTimeout}
	for _, opt := range opts {
		opt(o)
	}

	return &Agent{
		registry:   reg,
		askTimeout: o.askTimeout,
		managers:   make(map[string]*actor.PID),
		local:      make(map[string]*actor.PID),
		pending:    make(map[string]*pendingOp),
		deleting:   make(map[string]string),
		stats:      actor.NewStatsCollector(),
		logger:     slog.Default(),
	}
}

// Receive 实现 actor.Actor 接口
func (a *Agent) Receive(ctx *actor.Context, msg actor.Message) {
	a.stats.RecordReceived()
	startTime := time.Now()

	defer func() {
		a.stats.RecordHandled(time.Since(startTime))
	}()

	switch m := msg.(type) {
	// ─────────────────────────────────────────────────────────────────────
	// 系统消息
	// ─────────────────────────────────────────────────────────────────────

	case *actor.Started:
		a.logger = ctx.System().Logger().With("agent", ctx.Self.ID)
		a.registry.Register(protocol.AgentService, ctx.Self)
		a.registry.Subscribe(protocol.HotelManagerService, ctx.Self, func(l registry.Listing) actor.Message {
			return &protocol.UpdateHotelManagers{Listing: l}
		})
		a.logger.Debug("agent started")

	case *actor.Stopping:
		a.logger.Debug("agent stopping", "pending", len(a.pending))
		for id, op := range a.pending {
			resp := &protocol.Response{Err: ErrStopped}
			// 子 Actor 会随 Agent 一起停止
			if del, ok := op.request.(*protocol.DeleteHotel); ok {
				resp = &protocol.Response{Status: protocol.HotelDeleted(del.Name)}
			}
			protocol.Reply(op.request.Replier(), resp)
			delete(a.pending, id)
		}
		clear(a.deleting)

	case *actor.Stopped, *actor.Restarting:

	case *actor.Terminated:
		a.handleTerminated(m.Who)

	case *protocol.UpdateHotelManagers:
		a.handleUpdate(m.Listing)

	// ─────────────────────────────────────────────────────────────────────
	// 酒店管理
	// ─────────────────────────────────────────────────────────────────────

	case *protocol.AddHotel:
		protocol.Reply(m.ReplyChan, &protocol.Response{Status: a.handleAddHotel(ctx, m)})

	case *protocol.DeleteHotel:
		a.handleDeleteHotel(ctx, m)

	case *protocol.ListReservations:
		pid, ok := a.managers[m.HotelName]
		if !ok || !pid.Alive() {
			protocol.Reply(m.ReplyChan, &protocol.Response{Status: protocol.HotelNotFound(m.HotelName)})
			return
		}
		// Manager 直接回复原始请求方
		pid.Tell(m)

	// ─────────────────────────────────────────────────────────────────────
	// 扇出请求
	// ─────────────────────────────────────────────────────────────────────

	case *protocol.ListHotels:
		a.gatherHotels(ctx, m)

	case *protocol.ListAvailableRooms:
		a.gatherHotels(ctx, m)

	case *protocol.ConfirmReservation:
		a.gatherHotels(ctx, m)

	case *protocol.CancelReservation:
		a.gatherHotels(ctx, m)

	case *protocol.RequestReservationsMultiHotels:
		a.handleMultiHotels(ctx, m)

	case *gathered:
		a.handleGathered(ctx, m)

	case *mutated:
		op, ok := a.complete(m.opID)
		if !ok {
			return
		}
		if m.err != nil {
			a.stats.RecordError(m.err)
		}
		protocol.Reply(op.request.Replier(), &protocol.Response{Status: m.status, Err: m.err})

	// ─────────────────────────────────────────────────────────────────────
	// 查询
	// ─────────────────────────────────────────────────────────────────────

	case *GetStatus:
		actor.TrySend(m.ReplyChan, &Status{
			ID:      ctx.Self.ID,
			Hotels:  a.hotelNames(),
			Pending: len(a.pending),
			Stats:   a.stats.Stats(),
		})

	default:
		if req, ok := msg.(protocol.Request); ok {
			protocol.Reply(req.Replier(), &protocol.Response{Err: fmt.Errorf("%w: %s", ErrUnsupportedRequest, msg.Kind())})
		}
		a.logger.Warn("agent received unknown message", "kind", msg.Kind())
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// 内部处理方法（由 Actor 串行调用）
// ═══════════════════════════════════════════════════════════════════════════

// handleUpdate 用最新推送重建缓存
func (a *Agent) handleUpdate(l registry.Listing) {
	next := make(map[string]*actor.PID, l.Len())
	for _, pid := range l.Instances {
		if pid.Alive() {
			next[hotelmanager.NameOf(pid)] = pid
		}
	}
	for name, pid := range a.local {
		if _, ok := next[name]; ok || !pid.Alive() {
			delete(a.local, name)
			continue
		}
		next[name] = pid
	}

	for name := range next {
		if _, ok := a.managers[name]; !ok {
			a.logger.Info("hotel manager added", "hotel", name)
		}
	}
	for name := range a.managers {
		if _, ok := next[name]; !ok {
			a.logger.Info("hotel manager removed", "hotel", name)
		}
	}
	a.managers = next
}

func (a *Agent) handleAddHotel(ctx *actor.Context, m *protocol.AddHotel) string {
	if pid, ok := a.managers[m.Name]; ok && pid.Alive() {
		return protocol.HotelExists(m.Name)
	}

	hotel, err := booking.NewHotel(m.Name, m.RoomCount)
	if err != nil {
		return err.Error()
	}

	pid, err := ctx.TrySpawn(hotelmanager.New(hotel, a.registry), hotelmanager.Props(m.Name))
	if errors.Is(err, actor.ErrActorExists) {
		return protocol.HotelExists(m.Name)
	}
	if err != nil {
		a.stats.RecordError(err)
		a.logger.Error("spawn hotel manager failed", "hotel", m.Name, "error", err)
		return err.Error()
	}

	a.managers[m.Name] = pid
	a.local[m.Name] = pid
	return protocol.HotelAdded(m.Name)
}

// handleDeleteHotel 停止 Manager，等它真正终止（名称释放）后才回复
func (a *Agent) handleDeleteHotel(ctx *actor.Context, m *protocol.DeleteHotel) {
	pid, ok := a.managers[m.Name]
	if !ok || !pid.Alive() {
		protocol.Reply(m.ReplyChan, &protocol.Response{Status: protocol.HotelNotFound(m.Name)})
		return
	}
	delete(a.managers, m.Name)
	delete(a.local, m.Name)

	a.deleting[pid.ID] = a.track(m)
	// Watch 先于 PoisonPill 到达；终止后注册中心会把新的列表推送给所有 Agent
	ctx.Watch(pid)
	ctx.Stop(pid)
}

func (a *Agent) handleTerminated(who *actor.PID) {
	opID, ok := a.deleting[who.ID]
	if !ok {
		return
	}
	delete(a.deleting, who.ID)

	op, ok := a.complete(opID)
	if !ok {
		return
	}
	del := op.request.(*protocol.DeleteHotel)
	protocol.Reply(del.ReplyChan, &protocol.Response{Status: protocol.HotelDeleted(del.Name)})
}

// gatherHotels 向所有已知 Manager 请求快照，结果以 gathered 消息返回
func (a *Agent) gatherHotels(ctx *actor.Context, req protocol.Request) {
	opID := a.track(req)
	targets := a.targets()
	timeout, logger := a.askTimeout, a.logger

	ctx.PipeToSelf(func(c context.Context) actor.Message {
		return &gathered{opID: opID, hotels: requestHotels(c, targets, timeout, logger)}
	})
}

// handleMultiHotels 按酒店分组提交；未知酒店直接生成提示行
func (a *Agent) handleMultiHotels(ctx *actor.Context, m *protocol.RequestReservationsMultiHotels) {
	opID := a.track(m)

	var unknown []hotelStatus
	batches := make(map[target][]booking.Reservation, len(m.Reservations))
	for name, rs := range m.Reservations {
		pid, ok := a.managers[name]
		if !ok || !pid.Alive() {
			unknown = append(unknown, hotelStatus{hotel: name, status: protocol.HotelNotFound(name)})
			continue
		}
		batches[target{name: name, pid: pid}] = rs
	}
	sort.Slice(unknown, func(i, j int) bool { return unknown[i].hotel < unknown[j].hotel })

	timeout, logger := a.askTimeout, a.logger
	ctx.PipeToSelf(func(c context.Context) actor.Message {
		return &gathered{opID: opID, statuses: append(unknown, requestReservations(c, batches, timeout, logger)...)}
	})
}

// handleGathered 完成扇出操作并回复
func (a *Agent) handleGathered(ctx *actor.Context, m *gathered) {
	op, ok := a.pending[m.opID]
	if !ok {
		return
	}

	var status string
	switch req := op.request.(type) {
	case *protocol.ListHotels:
		snaps := make([]booking.HotelSnapshot, len(m.hotels))
		for i, h := range m.hotels {
			snaps[i] = h.snapshot
		}
		status = protocol.HotelList(snaps)

	case *protocol.ListAvailableRooms:
		snaps := make([]booking.HotelSnapshot, len(m.hotels))
		for i, h := range m.hotels {
			snaps[i] = h.snapshot
		}
		status = protocol.AvailableRooms(snaps, req.Date, req.MinRoomCount)

	case *protocol.ConfirmReservation:
		if a.mutate(ctx, m, req.ID, protocol.ReservationConfirmed, func(ch chan<- actor.Message) actor.Message {
			return &protocol.ConfirmReservation{ID: req.ID, ReplyChan: ch}
		}) {
			return
		}
		status = protocol.ReservationNotFound(req.ID)

	case *protocol.CancelReservation:
		if a.mutate(ctx, m, req.ID, protocol.ReservationCancelled, func(ch chan<- actor.Message) actor.Message {
			return &protocol.CancelReservation{ID: req.ID, ReplyChan: ch}
		}) {
			return
		}
		status = protocol.ReservationNotFound(req.ID)

	case *protocol.RequestReservationsMultiHotels:
		lines := make([]string, len(m.statuses))
		for i, s := range m.statuses {
			lines[i] = s.status
		}
		status = strings.Join(lines, "\n")
	}

	a.complete(m.opID)
	protocol.Reply(op.request.Replier(), &protocol.Response{Status: status})
}

// mutate 第二阶段：只向持有该预订的 Manager 发出修改请求
// 没有 Manager 持有该预订时返回 false。
// 两个阶段之间预订可能已被其他请求取消，此时回复与全系统找不到时相同。
func (a *Agent) mutate(ctx *actor.Context, m *gathered, id, done string, build func(chan<- actor.Message) actor.Message) bool {
	for _, h := range m.hotels {
		if !h.snapshot.HasReservation(id) {
			continue
		}
		t, opID, timeout := h.target, m.opID, a.askTimeout
		ctx.PipeToSelf(func(c context.Context) actor.Message {
			status, err := mutate(c, t, timeout, build)
			if err == nil && status != done {
				status = protocol.ReservationNotFound(id)
			}
			return &mutated{opID: opID, status: status, err: err}
		})
		return true
	}
	return false
}

func (a *Agent) track(req protocol.Request) string {
	id := uuid.NewString()
	a.pending[id] = &pendingOp{request: req, started: time.Now()}
	return id
}

func (a *Agent) complete(id string) (*pendingOp, bool) {
	op, ok := a.pending[id]
	if ok {
		delete(a.pending, id)
		a.logger.Debug("request completed", "kind", op.request.Kind(), "elapsed", time.Since(op.started))
	}
	return op, ok
}

// targets 当前缓存的副本，可以安全地交给其他 goroutine
func (a *Agent) targets() []target {
	out := make([]target, 0, len(a.managers))
	for name, pid := range a.managers {
		out = append(out, target{name: name, pid: pid})
	}
	return out
}

func (a *Agent) hotelNames() []string {
	names := make([]string, 0, len(a.managers))
	for name := range a.managers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Stats 获取统计信息
func (a *Agent) Stats() *actor.ActorStats {
	return a.stats.Stats()
}

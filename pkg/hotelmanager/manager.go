package hotelmanager

import (
	"log/slog"
	"strings"
	"time"

	"github.com/lwmacct/251219-go-pkg-rentaroom/internal/observability"
	"github.com/lwmacct/251219-go-pkg-rentaroom/pkg/actor"
	"github.com/lwmacct/251219-go-pkg-rentaroom/pkg/booking"
	"github.com/lwmacct/251219-go-pkg-rentaroom/pkg/protocol"
	"github.com/lwmacct/251219-go-pkg-rentaroom/pkg/registry"
)

// IDPrefix Hotel Manager 的 Actor ID 前缀
const IDPrefix = "hotel/"

// ActorID 酒店名对应的 Actor ID
func ActorID(hotel string) string {
	return IDPrefix + hotel
}

// NameOf 从 PID 还原酒店名
func NameOf(pid *actor.PID) string {
	if pid == nil {
		return ""
	}
	return strings.TrimPrefix(pid.ID, IDPrefix)
}

// Props Hotel Manager 的默认属性
// 使用恢复策略：处理消息时 panic 不会丢失酒店状态
func Props(hotel string) *actor.Props {
	return actor.DefaultProps(ActorID(hotel)).
		WithSupervisor(actor.ResumingSupervisorStrategy())
}

// HotelManager 一家酒店的唯一写入者
//
// 酒店状态只在本 Actor 的消息循环中读写，其他组件只能拿到快照。
type HotelManager struct {
	hotel    *booking.Hotel
	registry *registry.Registry

	stats  *actor.StatsCollector
	logger *slog.Logger
}

// Stats 是 HotelManager 统计信息的类型别名
type Stats = actor.ActorStats

// New 创建 Hotel Manager
// reg 为 nil 时不注册服务（用于单元测试）
func New(hotel *booking.Hotel, reg *registry.Registry) *HotelManager {
	return &HotelManager{
		hotel:    hotel,
		registry: reg,
		stats:    actor.NewStatsCollector(),
		logger:   slog.Default(),
	}
}

// Receive 实现 actor.Actor 接口
func (h *HotelManager) Receive(ctx *actor.Context, msg actor.Message) {
	h.stats.RecordReceived()
	startTime := time.Now()

	defer func() {
		h.stats.RecordHandled(time.Since(startTime))
	}()

	switch m := msg.(type) {
	case *actor.Started:
		h.logger = ctx.System().Logger().With("hotel", h.hotel.Name)
		if h.registry != nil {
			h.registry.Register(protocol.HotelManagerService, ctx.Self)
		}
		h.logger.Debug("hotel manager started", "rooms", h.hotel.RoomCount)

	case *actor.Stopping:
		h.logger.Debug("hotel manager stopping", "reservations", h.hotel.ReservationCount())

	case *actor.Stopped, *actor.Restarting:

	// ─────────────────────────────────────────────────────────────────────
	// 只读请求
	// ─────────────────────────────────────────────────────────────────────

	case *protocol.ListReservations:
		protocol.Reply(m.ReplyChan, &protocol.Response{
			Status: protocol.ReservationList(h.hotel.Name, h.hotel.ReservationsFor(m.Customer)),
		})

	case *protocol.RequestHotel:
		protocol.Reply(m.ReplyChan, &protocol.SendHotel{Hotel: h.hotel.Snapshot()})

	// ─────────────────────────────────────────────────────────────────────
	// 修改请求
	// ─────────────────────────────────────────────────────────────────────

	case *protocol.RequestReservations:
		h.handleRequestReservations(m)

	case *protocol.ConfirmReservation:
		status := protocol.ReservationConfirmed
		if err := h.hotel.Confirm(m.ID); err != nil {
			status = err.Error()
			h.observe("not_found")
		} else {
			h.observe("confirmed")
		}
		protocol.Reply(m.ReplyChan, &protocol.Response{Status: status})

	case *protocol.CancelReservation:
		status := protocol.ReservationCancelled
		if err := h.hotel.Cancel(m.ID); err != nil {
			status = err.Error()
			h.observe("not_found")
		} else {
			h.observe("cancelled")
		}
		protocol.Reply(m.ReplyChan, &protocol.Response{Status: status})

	default:
		h.logger.Warn("hotel manager received unknown message", "kind", msg.Kind())
	}
}

// handleRequestReservations 逐条独立尝试，一条失败不影响其他条
func (h *HotelManager) handleRequestReservations(m *protocol.RequestReservations) {
	lines := make([]string, 0, len(m.Reservations)+1)
	lines = append(lines, protocol.ReservationsHeader(h.hotel.Name))

	for _, r := range m.Reservations {
		if err := h.hotel.AddReservation(r); err != nil {
			h.stats.RecordError(err)
			h.observe("rejected")
			lines = append(lines, err.Error())
			continue
		}
		h.observe("accepted")
		lines = append(lines, protocol.ReservationReceived(r))
	}

	protocol.Reply(m.ReplyChan, &protocol.Response{Status: strings.Join(lines, "\n")})
}

func (h *HotelManager) observe(outcome string) {
	observability.ObserveReservation(h.hotel.Name, outcome)
}

// Stats 获取统计信息
func (h *HotelManager) Stats() *Stats {
	return h.stats.Stats()
}

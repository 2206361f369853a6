package coordinator

import (
	"context"
	"fmt"
	"time"

	"github.com/lwmacct/251219-go-pkg-rentaroom/pkg/actor"
	"github.com/lwmacct/251219-go-pkg-rentaroom/pkg/agent"
	"github.com/lwmacct/251219-go-pkg-rentaroom/pkg/booking"
	"github.com/lwmacct/251219-go-pkg-rentaroom/pkg/protocol"
)

// Client Coordinator 的类型化访问入口
//
// 每个方法返回面向用户的文本；error 只表示基础设施失败：
// *actor.ResponseTimeout、ctx.Err()、ErrNoAgents 或 agent.ErrUnexpectedReply。
type Client struct {
	pid     *actor.PID
	timeout time.Duration
}

// NewClient 创建 Client
func NewClient(pid *actor.PID, timeout time.Duration) *Client {
	return &Client{pid: pid, timeout: timeout}
}

// AddAgent 增加一个 Agent
func (c *Client) AddAgent(ctx context.Context) (string, error) {
	return c.do(ctx, func(ch chan<- actor.Message) actor.Message {
		return &protocol.AddAgent{ReplyChan: ch}
	})
}

// ListHotels 列出全部酒店
func (c *Client) ListHotels(ctx context.Context) (string, error) {
	return c.do(ctx, func(ch chan<- actor.Message) actor.Message {
		return &protocol.ListHotels{ReplyChan: ch}
	})
}

// AddHotel 新增酒店
func (c *Client) AddHotel(ctx context.Context, name string, rooms int) (string, error) {
	return c.do(ctx, func(ch chan<- actor.Message) actor.Message {
		return &protocol.AddHotel{Name: name, RoomCount: rooms, ReplyChan: ch}
	})
}

// DeleteHotel 删除酒店
func (c *Client) DeleteHotel(ctx context.Context, name string) (string, error) {
	return c.do(ctx, func(ch chan<- actor.Message) actor.Message {
		return &protocol.DeleteHotel{Name: name, ReplyChan: ch}
	})
}

// ListAvailableRooms 列出指定日期至少有 minRooms 间空房的酒店
func (c *Client) ListAvailableRooms(ctx context.Context, minRooms int, date booking.Date) (string, error) {
	return c.do(ctx, func(ch chan<- actor.Message) actor.Message {
		return &protocol.ListAvailableRooms{MinRoomCount: minRooms, Date: date, ReplyChan: ch}
	})
}

// ListReservations 列出某位客户在某家酒店的预订
func (c *Client) ListReservations(ctx context.Context, hotel, customer string) (string, error) {
	return c.do(ctx, func(ch chan<- actor.Message) actor.Message {
		return &protocol.ListReservations{HotelName: hotel, Customer: customer, ReplyChan: ch}
	})
}

// RequestReservations 跨酒店预订，按酒店名分组
func (c *Client) RequestReservations(ctx context.Context, byHotel map[string][]booking.Reservation) (string, error) {
	return c.do(ctx, func(ch chan<- actor.Message) actor.Message {
		return &protocol.RequestReservationsMultiHotels{Reservations: byHotel, ReplyChan: ch}
	})
}

// ConfirmReservation 确认预订
func (c *Client) ConfirmReservation(ctx context.Context, id string) (string, error) {
	return c.do(ctx, func(ch chan<- actor.Message) actor.Message {
		return &protocol.ConfirmReservation{ID: id, ReplyChan: ch}
	})
}

// CancelReservation 取消预订
func (c *Client) CancelReservation(ctx context.Context, id string) (string, error) {
	return c.do(ctx, func(ch chan<- actor.Message) actor.Message {
		return &protocol.CancelReservation{ID: id, ReplyChan: ch}
	})
}

// Agents 当前可路由的 Agent ID
func (c *Client) Agents(ctx context.Context) ([]string, error) {
	return actor.AskWithContext(ctx, c.pid, func(reply chan<- []string) actor.Message {
		return &GetAgents{ReplyChan: reply}
	}, c.timeout)
}

func (c *Client) do(ctx context.Context, build func(chan<- actor.Message) actor.Message) (string, error) {
	reply, err := actor.AskWithContext(ctx, c.pid, build, c.timeout)
	if err != nil {
		return "", err
	}
	resp, ok := reply.(*protocol.Response)
	if !ok {
		return "", fmt.Errorf("%w: %s", agent.ErrUnexpectedReply, reply.Kind())
	}
	return resp.Status, resp.Err
}

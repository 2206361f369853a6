package protocol

import (
	"github.com/lwmacct/251219-go-pkg-rentaroom/pkg/actor"
	"github.com/lwmacct/251219-go-pkg-rentaroom/pkg/booking"
	"github.com/lwmacct/251219-go-pkg-rentaroom/pkg/registry"
)

// 服务键
const (
	// HotelManagerService Hotel Manager 注册的服务键
	HotelManagerService registry.ServiceKey = "hotel-manager"
	// AgentService Agent 注册的服务键
	AgentService registry.ServiceKey = "agent"
)

// Request 所有外部请求的公共接口
// 每个请求恰好得到一条回复
type Request interface {
	actor.Message
	// Replier 返回回复通道
	Replier() chan<- actor.Message
}

// Reply 非阻塞地回复
// 请求方已放弃（超时）时回复被丢弃
func Reply(ch chan<- actor.Message, msg actor.Message) bool {
	return actor.TrySend(ch, msg)
}

// ═══════════════════════════════════════════════════════════════════════════
// 回复
// ═══════════════════════════════════════════════════════════════════════════

// Response 文本回复
//
// Status 是面向用户的（可能多行）文本，包括领域层的失败提示。
// Err 只表示基础设施失败（超时、回复类型错误、没有可用 Agent），用于区分传输失败与业务结果。
type Response struct {
	Status string
	Err    error
}

// Kind 实现 actor.Message 接口
func (m *Response) Kind() string { return "response" }

// SendHotel RequestHotel 的回复
type SendHotel struct {
	Hotel booking.HotelSnapshot
}

// Kind 实现 actor.Message 接口
func (m *SendHotel) Kind() string { return "send_hotel" }

// ═══════════════════════════════════════════════════════════════════════════
// Coordinator 请求
// ═══════════════════════════════════════════════════════════════════════════

// AddAgent 增加一个 Agent
type AddAgent struct {
	ReplyChan chan<- actor.Message
}

// Kind 实现 actor.Message 接口
func (m *AddAgent) Kind() string { return "add_agent" }

// Replier 实现 Request 接口
func (m *AddAgent) Replier() chan<- actor.Message { return m.ReplyChan }

// ═══════════════════════════════════════════════════════════════════════════
// Agent 请求
// ═══════════════════════════════════════════════════════════════════════════

// ListHotels 列出全部酒店
type ListHotels struct {
	ReplyChan chan<- actor.Message
}

// Kind 实现 actor.Message 接口
func (m *ListHotels) Kind() string { return "list_hotels" }

// Replier 实现 Request 接口
func (m *ListHotels) Replier() chan<- actor.Message { return m.ReplyChan }

// AddHotel 新增酒店
type AddHotel struct {
	Name      string
	RoomCount int
	ReplyChan chan<- actor.Message
}

// Kind 实现 actor.Message 接口
func (m *AddHotel) Kind() string { return "add_hotel" }

// Replier 实现 Request 接口
func (m *AddHotel) Replier() chan<- actor.Message { return m.ReplyChan }

// DeleteHotel 删除酒店
type DeleteHotel struct {
	Name      string
	ReplyChan chan<- actor.Message
}

// Kind 实现 actor.Message 接口
func (m *DeleteHotel) Kind() string { return "delete_hotel" }

// Replier 实现 Request 接口
func (m *DeleteHotel) Replier() chan<- actor.Message { return m.ReplyChan }

// ListAvailableRooms 列出指定日期至少有 MinRoomCount 间空房的酒店
type ListAvailableRooms struct {
	MinRoomCount int
	Date         booking.Date
	ReplyChan    chan<- actor.Message
}

// Kind 实现 actor.Message 接口
func (m *ListAvailableRooms) Kind() string { return "list_available_rooms" }

// Replier 实现 Request 接口
func (m *ListAvailableRooms) Replier() chan<- actor.Message { return m.ReplyChan }

// ListReservations 列出某位客户在某家酒店的预订
// Agent 原样转发给对应的 Hotel Manager，由后者直接回复
type ListReservations struct {
	HotelName string
	Customer  string
	ReplyChan chan<- actor.Message
}

// Kind 实现 actor.Message 接口
func (m *ListReservations) Kind() string { return "list_reservations" }

// Replier 实现 Request 接口
func (m *ListReservations) Replier() chan<- actor.Message { return m.ReplyChan }

// RequestReservationsMultiHotels 跨多家酒店的预订请求，按酒店名分组
type RequestReservationsMultiHotels struct {
	Reservations map[string][]booking.Reservation
	ReplyChan    chan<- actor.Message
}

// Kind 实现 actor.Message 接口
func (m *RequestReservationsMultiHotels) Kind() string { return "request_reservations_multi_hotels" }

// Replier 实现 Request 接口
func (m *RequestReservationsMultiHotels) Replier() chan<- actor.Message { return m.ReplyChan }

// ConfirmReservation 确认预订
// 发给 Agent 时由其定位所属酒店；发给 Hotel Manager 时直接修改
type ConfirmReservation struct {
	ID        string
	ReplyChan chan<- actor.Message
}

// Kind 实现 actor.Message 接口
func (m *ConfirmReservation) Kind() string { return "confirm_reservation" }

// Replier 实现 Request 接口
func (m *ConfirmReservation) Replier() chan<- actor.Message { return m.ReplyChan }

// CancelReservation 取消预订
type CancelReservation struct {
	ID        string
	ReplyChan chan<- actor.Message
}

// Kind 实现 actor.Message 接口
func (m *CancelReservation) Kind() string { return "cancel_reservation" }

// Replier 实现 Request 接口
func (m *CancelReservation) Replier() chan<- actor.Message { return m.ReplyChan }

// ═══════════════════════════════════════════════════════════════════════════
// Hotel Manager 请求
// ═══════════════════════════════════════════════════════════════════════════

// RequestReservations 在单家酒店内逐条尝试预订
type RequestReservations struct {
	Reservations []booking.Reservation
	ReplyChan    chan<- actor.Message
}

// Kind 实现 actor.Message 接口
func (m *RequestReservations) Kind() string { return "request_reservations" }

// Replier 实现 Request 接口
func (m *RequestReservations) Replier() chan<- actor.Message { return m.ReplyChan }

// RequestHotel 请求酒店快照，回复 SendHotel
type RequestHotel struct {
	ReplyChan chan<- actor.Message
}

// Kind 实现 actor.Message 接口
func (m *RequestHotel) Kind() string { return "request_hotel" }

// Replier 实现 Request 接口
func (m *RequestHotel) Replier() chan<- actor.Message { return m.ReplyChan }

// ═══════════════════════════════════════════════════════════════════════════
// 内部消息
// ═══════════════════════════════════════════════════════════════════════════

// UpdateHotelManagers 服务发现推送的 Hotel Manager 快照，只在 Agent 内部使用
type UpdateHotelManagers struct {
	Listing registry.Listing
}

// Kind 实现 actor.Message 接口
func (m *UpdateHotelManagers) Kind() string { return "update_hotel_managers" }

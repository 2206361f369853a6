package booking

import (
	"fmt"
	"sort"
	"strings"
)

// Hotel 一家酒店及其全部预订
//
// Hotel 不是并发安全的，只能由拥有它的 Hotel Manager 在自己的消息循环中访问。
// 对外共享状态一律使用 [Hotel.Snapshot]。
type Hotel struct {
	Name      string
	RoomCount int

	reservations map[string]Reservation
}

// NewHotel 创建酒店
func NewHotel(name string, roomCount int) (*Hotel, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: hotel name must not be empty", ErrInvalid)
	}
	if roomCount < 1 {
		return nil, fmt.Errorf("%w: room count must be positive, got %d", ErrInvalid, roomCount)
	}
	return &Hotel{
		Name:         name,
		RoomCount:    roomCount,
		reservations: make(map[string]Reservation),
	}, nil
}

// AvailableRooms 指定日期剩余的房间数
// 已确认和未确认的预订都占用容量
func (h *Hotel) AvailableRooms(date Date) int {
	return availableRooms(h.RoomCount, h.reservations, date)
}

// AddReservation 添加预订
// 容量不足时返回 *CapacityError，酒店状态不变
func (h *Hotel) AddReservation(r Reservation) error {
	if r.RoomCount < 1 {
		return fmt.Errorf("%w: room count must be positive, got %d", ErrInvalid, r.RoomCount)
	}
	if h.AvailableRooms(r.Date) < r.RoomCount {
		return &CapacityError{Hotel: h.Name, RoomCount: r.RoomCount}
	}
	h.reservations[r.ID] = r
	return nil
}

// Confirm 确认预订
func (h *Hotel) Confirm(id string) error {
	r, ok := h.reservations[id]
	if !ok {
		return &NotFoundError{Hotel: h.Name, ID: id}
	}
	r.Confirmed = true
	h.reservations[id] = r
	return nil
}

// Cancel 取消（删除）预订
func (h *Hotel) Cancel(id string) error {
	if _, ok := h.reservations[id]; !ok {
		return &NotFoundError{Hotel: h.Name, ID: id}
	}
	delete(h.reservations, id)
	return nil
}

// HasReservation 是否持有该预订
func (h *Hotel) HasReservation(id string) bool {
	_, ok := h.reservations[id]
	return ok
}

// ReservationCount 预订总数
func (h *Hotel) ReservationCount() int {
	return len(h.reservations)
}

// ReservationsFor 某位客户在本酒店的预订，按日期、ID 排序
func (h *Hotel) ReservationsFor(customer string) []Reservation {
	return reservationsFor(h.reservations, customer)
}

// Snapshot 深拷贝当前状态
func (h *Hotel) Snapshot() HotelSnapshot {
	copied := make(map[string]Reservation, len(h.reservations))
	for id, r := range h.reservations {
		copied[id] = r
	}
	return HotelSnapshot{Name: h.Name, RoomCount: h.RoomCount, reservations: copied}
}

// String 例如 "h1: Rooms: 10, Reservations: 0"
func (h *Hotel) String() string {
	return hotelLine(h.Name, h.RoomCount, len(h.reservations))
}

// HotelSnapshot 酒店在某一时刻的只读副本，可以安全地跨 Actor 传递
type HotelSnapshot struct {
	Name      string
	RoomCount int

	reservations map[string]Reservation
}

// AvailableRooms 指定日期剩余的房间数
func (s HotelSnapshot) AvailableRooms(date Date) int {
	return availableRooms(s.RoomCount, s.reservations, date)
}

// HasReservation 是否持有该预订
func (s HotelSnapshot) HasReservation(id string) bool {
	_, ok := s.reservations[id]
	return ok
}

// ReservationCount 预订总数
func (s HotelSnapshot) ReservationCount() int {
	return len(s.reservations)
}

// ReservationsFor 某位客户的预订
func (s HotelSnapshot) ReservationsFor(customer string) []Reservation {
	return reservationsFor(s.reservations, customer)
}

// String 与 Hotel.String 相同
func (s HotelSnapshot) String() string {
	return hotelLine(s.Name, s.RoomCount, len(s.reservations))
}

func hotelLine(name string, rooms, reservations int) string {
	return fmt.Sprintf("%s: Rooms: %d, Reservations: %d", name, rooms, reservations)
}

func availableRooms(total int, reservations map[string]Reservation, date Date) int {
	available := total
	for _, r := range reservations {
		if r.Date == date {
			available -= r.RoomCount
		}
	}
	return available
}

func reservationsFor(reservations map[string]Reservation, customer string) []Reservation {
	out := make([]Reservation, 0)
	for _, r := range reservations {
		if r.Customer == customer {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

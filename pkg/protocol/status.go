package protocol

import (
	"fmt"
	"strings"

	"github.com/lwmacct/251219-go-pkg-rentaroom/pkg/booking"
)

// 面向用户的固定文本
const (
	AgentAdded            = "A new agent has been added."
	ReservationConfirmed  = "The reservation has been confirmed."
	ReservationCancelled  = "The reservation has been cancelled."
	hotelsHeader          = "The following hotels are in our system:\n"
	availableRoomsHeader  = "The following hotels have enough rooms:\n"
	reservationListHeader = "You have the following reservations in %s:\n"
)

// HotelAdded "<name> has been added."
func HotelAdded(name string) string { return name + " has been added." }

// HotelExists "<name> is in our system already."
func HotelExists(name string) string { return name + " is in our system already." }

// HotelDeleted "<name> has been deleted."
func HotelDeleted(name string) string { return name + " has been deleted." }

// HotelNotFound "<name> is not in our system."
func HotelNotFound(name string) string { return name + " is not in our system." }

// ReservationNotFound 全系统范围内找不到预订
func ReservationNotFound(id string) string {
	return fmt.Sprintf("There is no reservation with Id: %s in our system.", id)
}

// HotelList 渲染酒店列表，每家一行
func HotelList(hotels []booking.HotelSnapshot) string {
	lines := make([]string, len(hotels))
	for i, h := range hotels {
		lines[i] = h.String()
	}
	return hotelsHeader + strings.Join(lines, "\n")
}

// AvailableRooms 渲染空房列表，只包含满足最小房间数的酒店
func AvailableRooms(hotels []booking.HotelSnapshot, date booking.Date, minRooms int) string {
	lines := make([]string, 0, len(hotels))
	for _, h := range hotels {
		if n := h.AvailableRooms(date); n >= minRooms {
			lines = append(lines, fmt.Sprintf("%s: Available rooms: %d", h.Name, n))
		}
	}
	return availableRoomsHeader + strings.Join(lines, "\n")
}

// ReservationList 渲染某位客户在一家酒店的预订；没有预订时只有标题
func ReservationList(hotel string, reservations []booking.Reservation) string {
	lines := make([]string, len(reservations))
	for i, r := range reservations {
		lines[i] = r.Listing()
	}
	return fmt.Sprintf(reservationListHeader, hotel) + strings.Join(lines, "\n")
}

// ReservationReceived 单条预订成功的提示
func ReservationReceived(r booking.Reservation) string {
	return `The reservation: "` + r.String() + `" was received.`
}

// ReservationsHeader 单家酒店预订结果的第一行
func ReservationsHeader(hotel string) string {
	return "Reservations for " + hotel + ":"
}

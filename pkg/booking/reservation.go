package booking

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Reservation 一次客房预订
//
// ID 在创建时随机生成（UUID v4，36 字符），之后不再改变。
// Reservation 按值传递，酒店内部保存的是独立副本。
type Reservation struct {
	ID        string
	Customer  string
	RoomCount int
	Date      Date
	Confirmed bool
}

// NewReservation 创建未确认的预订
func NewReservation(customer string, roomCount int, date Date) (Reservation, error) {
	if strings.TrimSpace(customer) == "" {
		return Reservation{}, fmt.Errorf("%w: customer must not be empty", ErrInvalid)
	}
	if roomCount < 1 {
		return Reservation{}, fmt.Errorf("%w: room count must be positive, got %d", ErrInvalid, roomCount)
	}
	return Reservation{
		ID:        uuid.NewString(),
		Customer:  customer,
		RoomCount: roomCount,
		Date:      date,
	}, nil
}

// String 例如 "Id: <uuid>, Rooms: 5, Date: 01-01-2022"
func (r Reservation) String() string {
	return fmt.Sprintf("Id: %s, Rooms: %d, Date: %s", r.ID, r.RoomCount, r.Date)
}

// Listing 在 String 之后附加确认状态
func (r Reservation) Listing() string {
	confirmed := "No"
	if r.Confirmed {
		confirmed = "Yes"
	}
	return r.String() + ", Confirmed: " + confirmed
}

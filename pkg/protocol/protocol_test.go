package protocol

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lwmacct/251219-go-pkg-rentaroom/pkg/actor"
	"github.com/lwmacct/251219-go-pkg-rentaroom/pkg/booking"
)

var day = booking.NewDate(2022, time.January, 1)

func snapshot(t *testing.T, name string, rooms int, taken ...int) booking.HotelSnapshot {
	t.Helper()
	h, err := booking.NewHotel(name, rooms)
	require.NoError(t, err)
	for _, n := range taken {
		r, err := booking.NewReservation("c", n, day)
		require.NoError(t, err)
		require.NoError(t, h.AddReservation(r))
	}
	return h.Snapshot()
}

func TestHotelList(t *testing.T) {
	got := HotelList([]booking.HotelSnapshot{snapshot(t, "h1", 10), snapshot(t, "h2", 10)})
	assert.Equal(t, "The following hotels are in our system:\n"+
		"h1: Rooms: 10, Reservations: 0\n"+
		"h2: Rooms: 10, Reservations: 0", got)

	assert.Equal(t, "The following hotels are in our system:\n", HotelList(nil))
}

func TestAvailableRooms(t *testing.T) {
	hotels := []booking.HotelSnapshot{
		snapshot(t, "h1", 10),
		snapshot(t, "h2", 10, 8),
		snapshot(t, "h3", 10, 5),
	}
	assert.Equal(t, "The following hotels have enough rooms:\n"+
		"h1: Available rooms: 10\n"+
		"h3: Available rooms: 5", AvailableRooms(hotels, day, 5))
}

func TestReservationText(t *testing.T) {
	r, err := booking.NewReservation("c1", 5, day)
	require.NoError(t, err)

	// 预订 ID 位于多酒店回复的第 43..79 个字符
	msg := ReservationsHeader("h1") + "\n" + ReservationReceived(r)
	assert.Equal(t, r.ID, msg[43:79])
	assert.Contains(t, msg, "Rooms: 5")
	assert.Contains(t, msg, "Date: 01-01-2022")

	assert.Equal(t, "You have the following reservations in h1:\n", ReservationList("h1", nil))
	assert.Equal(t, "You have the following reservations in h1:\n"+r.Listing(),
		ReservationList("h1", []booking.Reservation{r}))
}

func TestFixedLines(t *testing.T) {
	assert.Equal(t, "h1 has been added.", HotelAdded("h1"))
	assert.Equal(t, "h1 is in our system already.", HotelExists("h1"))
	assert.Equal(t, "h1 has been deleted.", HotelDeleted("h1"))
	assert.Equal(t, "h1 is not in our system.", HotelNotFound("h1"))
	assert.Equal(t, "There is no reservation with Id: x in our system.", ReservationNotFound("x"))
}

func TestReplyDoesNotBlock(t *testing.T) {
	ch := make(chan actor.Message, 1)
	assert.True(t, Reply(ch, &Response{Status: "first"}))
	// 请求方已经放弃时回复被丢弃
	assert.False(t, Reply(ch, &Response{Status: "second"}))
	assert.False(t, Reply(nil, &Response{}))

	got := <-ch
	assert.Equal(t, "first", got.(*Response).Status)
}

func TestRequestsExposeReplier(t *testing.T) {
	ch := make(chan actor.Message, 1)
	requests := []Request{
		&AddAgent{ReplyChan: ch},
		&ListHotels{ReplyChan: ch},
		&AddHotel{ReplyChan: ch},
		&DeleteHotel{ReplyChan: ch},
		&ListAvailableRooms{ReplyChan: ch},
		&ListReservations{ReplyChan: ch},
		&RequestReservationsMultiHotels{ReplyChan: ch},
		&RequestReservations{ReplyChan: ch},
		&RequestHotel{ReplyChan: ch},
		&ConfirmReservation{ReplyChan: ch},
		&CancelReservation{ReplyChan: ch},
	}
	kinds := map[string]bool{}
	for _, r := range requests {
		assert.Equal(t, (chan<- actor.Message)(ch), r.Replier())
		kinds[r.Kind()] = true
	}
	assert.Len(t, kinds, len(requests))
}

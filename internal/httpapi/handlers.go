package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/lwmacct/251219-go-pkg-rentaroom/pkg/actor"
	"github.com/lwmacct/251219-go-pkg-rentaroom/pkg/booking"
	"github.com/lwmacct/251219-go-pkg-rentaroom/pkg/coordinator"
)

// Booking HTTP 层需要的预订操作，*coordinator.Client 满足该接口
type Booking interface {
	AddAgent(ctx context.Context) (string, error)
	Agents(ctx context.Context) ([]string, error)
	ListHotels(ctx context.Context) (string, error)
	AddHotel(ctx context.Context, name string, rooms int) (string, error)
	DeleteHotel(ctx context.Context, name string) (string, error)
	ListAvailableRooms(ctx context.Context, minRooms int, date booking.Date) (string, error)
	ListReservations(ctx context.Context, hotel, customer string) (string, error)
	RequestReservations(ctx context.Context, byHotel map[string][]booking.Reservation) (string, error)
	ConfirmReservation(ctx context.Context, id string) (string, error)
	CancelReservation(ctx context.Context, id string) (string, error)
}

type Handlers struct{ B Booking }

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// statusBody 所有业务回复的格式，Status 与菜单打印的文本一致
type statusBody struct {
	Status string `json:"status"`
}

type addHotelBody struct {
	Name  string `json:"name"`
	Rooms int    `json:"rooms"`
}

type reservationBody struct {
	Hotel string `json:"hotel"`
	Rooms int    `json:"rooms"`
	Date  string `json:"date"` // dd-mm-yyyy
}

type requestReservationsBody struct {
	Customer     string            `json:"customer"`
	Reservations []reservationBody `json:"reservations"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })

	s.mux.Route("/v1", func(r chi.Router) {
		r.Get("/agents", h.listAgents)
		r.Post("/agents", h.addAgent)

		r.Get("/hotels", h.listHotels)
		r.Post("/hotels", h.addHotel)
		r.Get("/hotels/available", h.listAvailableRooms)
		r.Delete("/hotels/{name}", h.deleteHotel)
		r.Get("/hotels/{name}/reservations", h.listReservations)

		r.Post("/reservations", h.requestReservations)
		r.Post("/reservations/{id}/confirm", h.confirmReservation)
		r.Delete("/reservations/{id}", h.cancelReservation)
	})
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

// respond 把 Client 的结果映射为 HTTP 响应
// 业务失败（容量不足、酒店不存在等）仍是 200，文本里已有说明
func respond(w http.ResponseWriter) func(string, error) {
	return func(status string, err error) { writeResult(w, status, err) }
}

func writeResult(w http.ResponseWriter, status string, err error) {
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, statusBody{Status: status})
	case actor.IsTimeout(err):
		writeProblem(w, http.StatusGatewayTimeout, "Gateway Timeout", err.Error())
	case errors.Is(err, coordinator.ErrNoAgents), errors.Is(err, actor.ErrActorNotFound):
		writeProblem(w, http.StatusServiceUnavailable, "Service Unavailable", err.Error())
	case errors.Is(err, context.Canceled):
		// 客户端已断开
		log.Debug().Err(err).Msg("request cancelled")
	default:
		log.Error().Err(err).Msg("booking request failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", err.Error())
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", err.Error())
		return false
	}
	return true
}

func (h *Handlers) listAgents(w http.ResponseWriter, r *http.Request) {
	ids, err := h.B.Agents(r.Context())
	if err != nil {
		writeResult(w, "", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"agents": ids})
}

func (h *Handlers) addAgent(w http.ResponseWriter, r *http.Request) {
	respond(w)(h.B.AddAgent(r.Context()))
}

func (h *Handlers) listHotels(w http.ResponseWriter, r *http.Request) {
	respond(w)(h.B.ListHotels(r.Context()))
}

func (h *Handlers) addHotel(w http.ResponseWriter, r *http.Request) {
	var body addHotelBody
	if !decode(w, r, &body) {
		return
	}
	if n := utf8.RuneCountInString(body.Name); n < 2 || n > 100 {
		writeProblem(w, http.StatusBadRequest, "Invalid name", "name must be between 2 and 100 characters")
		return
	}
	if body.Rooms < 1 || body.Rooms > 10_000 {
		writeProblem(w, http.StatusBadRequest, "Invalid rooms", "rooms must be an integer between 1 and 10000")
		return
	}
	respond(w)(h.B.AddHotel(r.Context(), body.Name, body.Rooms))
}

func (h *Handlers) deleteHotel(w http.ResponseWriter, r *http.Request) {
	respond(w)(h.B.DeleteHotel(r.Context(), chi.URLParam(r, "name")))
}

func (h *Handlers) listAvailableRooms(w http.ResponseWriter, r *http.Request) {
	minRooms := 1
	if ms := r.URL.Query().Get("min"); ms != "" {
		n, err := strconv.Atoi(ms)
		if err != nil || n < 1 || n > 1_000 {
			writeProblem(w, http.StatusBadRequest, "Invalid min", "min must be an integer between 1 and 1000")
			return
		}
		minRooms = n
	}

	date, err := booking.ParseDate(r.URL.Query().Get("date"))
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid date", "date must be dd-mm-yyyy")
		return
	}
	respond(w)(h.B.ListAvailableRooms(r.Context(), minRooms, date))
}

func (h *Handlers) listReservations(w http.ResponseWriter, r *http.Request) {
	customer := r.URL.Query().Get("customer")
	if customer == "" {
		writeProblem(w, http.StatusBadRequest, "Invalid customer", "customer is required")
		return
	}
	respond(w)(h.B.ListReservations(r.Context(), chi.URLParam(r, "name"), customer))
}

func (h *Handlers) requestReservations(w http.ResponseWriter, r *http.Request) {
	var body requestReservationsBody
	if !decode(w, r, &body) {
		return
	}
	if len(body.Reservations) == 0 {
		writeProblem(w, http.StatusBadRequest, "Invalid reservations", "at least one reservation is required")
		return
	}

	byHotel := make(map[string][]booking.Reservation)
	for _, rb := range body.Reservations {
		date, err := booking.ParseDate(rb.Date)
		if err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid date", "date must be dd-mm-yyyy")
			return
		}
		res, err := booking.NewReservation(body.Customer, rb.Rooms, date)
		if err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid reservation", err.Error())
			return
		}
		byHotel[rb.Hotel] = append(byHotel[rb.Hotel], res)
	}
	respond(w)(h.B.RequestReservations(r.Context(), byHotel))
}

func (h *Handlers) confirmReservation(w http.ResponseWriter, r *http.Request) {
	respond(w)(h.B.ConfirmReservation(r.Context(), chi.URLParam(r, "id")))
}

func (h *Handlers) cancelReservation(w http.ResponseWriter, r *http.Request) {
	respond(w)(h.B.CancelReservation(r.Context(), chi.URLParam(r, "id")))
}

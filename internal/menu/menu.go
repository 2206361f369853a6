package menu

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/lwmacct/251219-go-pkg-rentaroom/pkg/booking"
)

// Help 命令列表
const Help = "Commands:\n" +
	"B: Add agent\n" +
	"L: List hotels\n" +
	"H: Add hotel\n" +
	"D: Delete hotel\n" +
	"F: List available rooms\n" +
	"E: List reservations\n" +
	"R: Request reservations\n" +
	"C: Confirm reservation\n" +
	"X: Cancel reservation\n" +
	"?: This menu\n" +
	"Q: Quit\n"

// 输入范围
const (
	hotelNameMin, hotelNameMax   = 2, 100
	customerMin, customerMax     = 2, 50
	hotelRoomsMin, hotelRoomsMax = 1, 10_000
	reserveMin, reserveMax       = 1, 1_000
	reservationIDLen             = 36
)

// errInputClosed 输入流在提问中途结束
var errInputClosed = errors.New("input closed")

// Booking 菜单需要的预订操作，*coordinator.Client 满足该接口
type Booking interface {
	AddAgent(ctx context.Context) (string, error)
	ListHotels(ctx context.Context) (string, error)
	AddHotel(ctx context.Context, name string, rooms int) (string, error)
	DeleteHotel(ctx context.Context, name string) (string, error)
	ListAvailableRooms(ctx context.Context, minRooms int, date booking.Date) (string, error)
	ListReservations(ctx context.Context, hotel, customer string) (string, error)
	RequestReservations(ctx context.Context, byHotel map[string][]booking.Reservation) (string, error)
	ConfirmReservation(ctx context.Context, id string) (string, error)
	CancelReservation(ctx context.Context, id string) (string, error)
}

// Menu 交互式命令循环
type Menu struct {
	booking Booking
	in      *bufio.Scanner
	out     io.Writer
	errOut  io.Writer
	today   func() booking.Date
}

// Option 配置选项
type Option func(*Menu)

// WithErrorOutput 设置错误提示的输出，默认与 out 相同
func WithErrorOutput(w io.Writer) Option {
	return func(m *Menu) { m.errOut = w }
}

// WithToday 设置 "今天" 的来源，用于日期校验
func WithToday(fn func() booking.Date) Option {
	return func(m *Menu) { m.today = fn }
}

// New 创建菜单
func New(b Booking, in io.Reader, out io.Writer, opts ...Option) *Menu {
	m := &Menu{
		booking: b,
		in:      bufio.NewScanner(in),
		out:     out,
		errOut:  out,
		today:   booking.Today,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Run 运行命令循环，直到输入 q 或输入流结束
func (m *Menu) Run(ctx context.Context) error {
	m.println(Help)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		command, err := m.askString("Choose a command:", 1, 1)
		if errors.Is(err, errInputClosed) {
			return nil
		}
		if err != nil {
			return err
		}

		err = m.dispatch(ctx, strings.ToLower(command))
		if errors.Is(err, errQuit) || errors.Is(err, errInputClosed) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

var errQuit = errors.New("quit")

func (m *Menu) dispatch(ctx context.Context, command string) error {
	switch command {
	case "b":
		m.show(m.booking.AddAgent(ctx))

	case "l":
		m.show(m.booking.ListHotels(ctx))

	case "h":
		name, err := m.askString("Give the name of the hotel:", hotelNameMin, hotelNameMax)
		if err != nil {
			return err
		}
		rooms, err := m.askInt("Give the number of rooms:", hotelRoomsMin, hotelRoomsMax)
		if err != nil {
			return err
		}
		m.show(m.booking.AddHotel(ctx, name, rooms))

	case "d":
		name, err := m.askString("Give the name of the hotel:", hotelNameMin, hotelNameMax)
		if err != nil {
			return err
		}
		m.show(m.booking.DeleteHotel(ctx, name))

	case "f":
		minRooms, err := m.askInt("Give the minimal amount of rooms that need to be available:", reserveMin, reserveMax)
		if err != nil {
			return err
		}
		date, err := m.askDate("Give the date on which to find available rooms:")
		if err != nil {
			return err
		}
		m.show(m.booking.ListAvailableRooms(ctx, minRooms, date))

	case "e":
		customer, err := m.askString("Give your name:", customerMin, customerMax)
		if err != nil {
			return err
		}
		hotel, err := m.askString("Give the name of the hotel:", hotelNameMin, hotelNameMax)
		if err != nil {
			return err
		}
		m.show(m.booking.ListReservations(ctx, hotel, customer))

	case "r":
		byHotel, err := m.askReservations()
		if err != nil {
			return err
		}
		m.show(m.booking.RequestReservations(ctx, byHotel))

	case "c":
		id, err := m.askString("Give the id of the reservation:", reservationIDLen, reservationIDLen)
		if err != nil {
			return err
		}
		m.show(m.booking.ConfirmReservation(ctx, id))

	case "x":
		id, err := m.askString("Give the id of the reservation:", reservationIDLen, reservationIDLen)
		if err != nil {
			return err
		}
		m.show(m.booking.CancelReservation(ctx, id))

	case "?":
		m.println(Help)

	case "q":
		return errQuit
	}
	return nil
}

// askReservations 反复询问，直到用户不再添加
func (m *Menu) askReservations() (map[string][]booking.Reservation, error) {
	customer, err := m.askString("Give your name:", customerMin, customerMax)
	if err != nil {
		return nil, err
	}

	byHotel := make(map[string][]booking.Reservation)
	for {
		hotel, err := m.askString("Give the name of the hotel:", hotelNameMin, hotelNameMax)
		if err != nil {
			return nil, err
		}
		rooms, err := m.askInt("Give the number of rooms you want to reserve:", reserveMin, reserveMax)
		if err != nil {
			return nil, err
		}
		date, err := m.askDate("Give the date you want to reserve:")
		if err != nil {
			return nil, err
		}

		r, err := booking.NewReservation(customer, rooms, date)
		if err != nil {
			return nil, err
		}
		byHotel[hotel] = append(byHotel[hotel], r)

		more, err := m.askBool("Do you want to add another reservation?")
		if err != nil {
			return nil, err
		}
		if !more {
			return byHotel, nil
		}
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// 输入
// ═══════════════════════════════════════════════════════════════════════════

func (m *Menu) readLine() (string, error) {
	if !m.in.Scan() {
		if err := m.in.Err(); err != nil {
			return "", err
		}
		return "", errInputClosed
	}
	return strings.TrimRight(m.in.Text(), "\r"), nil
}

// askString 长度以字符计
func (m *Menu) askString(question string, lo, hi int) (string, error) {
	m.println(question)
	for {
		input, err := m.readLine()
		if err != nil {
			return "", err
		}
		if n := utf8.RuneCountInString(input); n < lo || n > hi {
			m.errorf("Your answer needs to be between %d and %d characters.\n", lo, hi)
			continue
		}
		return input, nil
	}
}

func (m *Menu) askInt(question string, lo, hi int) (int, error) {
	m.println(question)
	for {
		input, err := m.readLine()
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(strings.TrimSpace(input))
		if err != nil {
			m.errorf("Your answer needs to be a number.\n")
			continue
		}
		if n < lo || n > hi {
			m.errorf("The number needs to be in the range %d - %d.\n", lo, hi)
			continue
		}
		return n, nil
	}
}

func (m *Menu) askBool(question string) (bool, error) {
	m.println(question + " (y/n)")
	for {
		input, err := m.readLine()
		if err != nil {
			return false, err
		}
		switch input = strings.ToLower(input); {
		case strings.Contains(input, "y"):
			return true, nil
		case strings.Contains(input, "n"):
			return false, nil
		}
		m.errorf("Your answer needs to be 'y' or 'n'.\n")
	}
}

// askDate 只接受今天及以后的日期
func (m *Menu) askDate(question string) (booking.Date, error) {
	m.println(question + " (dd-mm-yyyy)")
	for {
		input, err := m.readLine()
		if err != nil {
			return booking.Date{}, err
		}
		date, err := booking.ParseDate(strings.TrimSpace(input))
		if err != nil {
			m.errorf("Your answer needs to be in the right date format.\n")
			continue
		}
		if date.Before(m.today()) {
			m.errorf("The date needs to be in the future.\n")
			continue
		}
		return date, nil
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// 输出
// ═══════════════════════════════════════════════════════════════════════════

// show 打印回复；基础设施失败写入错误输出
func (m *Menu) show(status string, err error) {
	if err != nil {
		m.errorf("Request failed: %v\n", err)
	} else {
		m.println(status)
	}
	m.println("")
}

func (m *Menu) println(s string) {
	_, _ = fmt.Fprintln(m.out, s)
}

func (m *Menu) errorf(format string, args ...any) {
	_, _ = fmt.Fprintf(m.errOut, format, args...)
}

package agent

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lwmacct/251219-go-pkg-rentaroom/internal/observability"
	"github.com/lwmacct/251219-go-pkg-rentaroom/pkg/actor"
	"github.com/lwmacct/251219-go-pkg-rentaroom/pkg/booking"
	"github.com/lwmacct/251219-go-pkg-rentaroom/pkg/protocol"
)

// DoGetStatus 获取 Agent 状态
func DoGetStatus(pid *actor.PID, timeout time.Duration) (*Status, error) {
	return actor.Ask(pid, func(reply chan<- *Status) actor.Message {
		return &GetStatus{ReplyChan: reply}
	}, timeout)
}

// ═══════════════════════════════════════════════════════════════════════════
// 扇出 / 汇总（在 PipeToSelf 的 goroutine 中运行，不能访问 Agent 状态）
// ═══════════════════════════════════════════════════════════════════════════

// askAs 发起一次 ask 并检查回复类型
func askAs[R actor.Message](ctx context.Context, pid *actor.PID, timeout time.Duration, build func(chan<- actor.Message) actor.Message) (R, error) {
	var zero R
	start := time.Now()
	msg := build(nil)

	reply, err := actor.AskWithContext(ctx, pid, build, timeout)
	if err == nil {
		r, ok := reply.(R)
		if !ok {
			err = fmt.Errorf("%w: %s from %s", ErrUnexpectedReply, reply.Kind(), pid)
		} else {
			zero = r
		}
	}

	observability.ObserveAsk(msg.Kind(), observability.AskOutcome(err), time.Since(start))
	return zero, err
}

// requestHotels 向全部目标并发请求快照
// 所有请求先发出再统一等待；失败的目标记录日志后排除
func requestHotels(ctx context.Context, targets []target, timeout time.Duration, logger *slog.Logger) []hotelState {
	results := make([]*hotelState, len(targets))

	var g errgroup.Group
	for i, t := range targets {
		g.Go(func() error {
			reply, err := askAs[*protocol.SendHotel](ctx, t.pid, timeout, func(ch chan<- actor.Message) actor.Message {
				return &protocol.RequestHotel{ReplyChan: ch}
			})
			if err != nil {
				logger.Error("request hotel failed", "hotel", t.name, "error", err)
				return err
			}
			results[i] = &hotelState{target: t, snapshot: reply.Hotel}
			return nil
		})
	}
	_ = g.Wait()

	hotels := make([]hotelState, 0, len(results))
	for _, r := range results {
		if r != nil {
			hotels = append(hotels, *r)
		}
	}
	sort.Slice(hotels, func(i, j int) bool { return hotels[i].name < hotels[j].name })
	return hotels
}

// requestReservations 向每家酒店并发提交各自的预订列表
func requestReservations(ctx context.Context, batches map[target][]booking.Reservation, timeout time.Duration, logger *slog.Logger) []hotelStatus {
	results := make(chan hotelStatus, len(batches))

	var g errgroup.Group
	for t, rs := range batches {
		g.Go(func() error {
			resp, err := askAs[*protocol.Response](ctx, t.pid, timeout, func(ch chan<- actor.Message) actor.Message {
				return &protocol.RequestReservations{Reservations: rs, ReplyChan: ch}
			})
			if err != nil {
				logger.Error("request reservations failed", "hotel", t.name, "error", err)
				return err
			}
			results <- hotelStatus{hotel: t.name, status: resp.Status}
			return nil
		})
	}
	_ = g.Wait()
	close(results)

	statuses := make([]hotelStatus, 0, len(batches))
	for s := range results {
		statuses = append(statuses, s)
	}
	sort.Slice(statuses, func(i, j int) bool { return statuses[i].hotel < statuses[j].hotel })
	return statuses
}

// mutate 向持有预订的 Manager 发出修改请求
func mutate(ctx context.Context, t target, timeout time.Duration, build func(chan<- actor.Message) actor.Message) (string, error) {
	resp, err := askAs[*protocol.Response](ctx, t.pid, timeout, build)
	if err != nil {
		return "", err
	}
	return resp.Status, resp.Err
}

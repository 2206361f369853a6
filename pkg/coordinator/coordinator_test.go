package coordinator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lwmacct/251219-go-pkg-rentaroom/pkg/actor"
	"github.com/lwmacct/251219-go-pkg-rentaroom/pkg/agent"
	"github.com/lwmacct/251219-go-pkg-rentaroom/pkg/booking"
	"github.com/lwmacct/251219-go-pkg-rentaroom/pkg/protocol"
	"github.com/lwmacct/251219-go-pkg-rentaroom/pkg/registry"
)

var (
	jan1 = booking.NewDate(2022, time.January, 1)
	jan2 = booking.NewDate(2022, time.January, 2)
)

func start(t *testing.T, cfg Config) *Client {
	t.Helper()
	sys := actor.NewSystem("test")
	t.Cleanup(sys.Shutdown)

	svc, err := Start(sys, cfg)
	require.NoError(t, err)
	return svc.Client()
}

func must(t *testing.T) func(string, error) string {
	return func(status string, err error) string {
		t.Helper()
		require.NoError(t, err)
		return status
	}
}

func reservation(t *testing.T, rooms int, date booking.Date) booking.Reservation {
	t.Helper()
	r, err := booking.NewReservation("c1", rooms, date)
	require.NoError(t, err)
	return r
}

// reserveOne 在 h1 预订一间 5 房，返回回复文本中的预订 ID
func reserveOne(t *testing.T, c *Client) string {
	t.Helper()
	status := must(t)(c.RequestReservations(context.Background(), map[string][]booking.Reservation{
		"h1": {reservation(t, 5, jan1)},
	}))
	require.Greater(t, len(status), 79)
	return status[43:79]
}

// ═══════════════════════════════════════════════════════════════════════════
// 酒店
// ═══════════════════════════════════════════════════════════════════════════

func TestAddHotel(t *testing.T) {
	c := start(t, DefaultConfig())
	ctx := context.Background()

	assert.Equal(t, "h1 has been added.", must(t)(c.AddHotel(ctx, "h1", 10)))
	assert.Equal(t, "h1 is in our system already.", must(t)(c.AddHotel(ctx, "h1", 10)))
}

func TestDeleteHotel(t *testing.T) {
	c := start(t, DefaultConfig())
	ctx := context.Background()

	must(t)(c.AddHotel(ctx, "h1", 10))
	assert.Equal(t, "h1 has been deleted.", must(t)(c.DeleteHotel(ctx, "h1")))
	assert.Equal(t, "h1 is not in our system.", must(t)(c.DeleteHotel(ctx, "h1")))
	assert.Equal(t, "h2 is not in our system.", must(t)(c.DeleteHotel(ctx, "h2")))
}

func TestDeleteThenReAddSameName(t *testing.T) {
	c := start(t, DefaultConfig())
	ctx := context.Background()

	// 删除的回复到达时名称已经释放
	for i := range 300 {
		require.Equal(t, "h1 has been added.", must(t)(c.AddHotel(ctx, "h1", 10)), "round %d", i)
		require.Equal(t, "h1 has been deleted.", must(t)(c.DeleteHotel(ctx, "h1")), "round %d", i)
	}
}

func TestOperationsOnDeletedHotel(t *testing.T) {
	c := start(t, DefaultConfig())
	ctx := context.Background()

	must(t)(c.AddHotel(ctx, "h1", 10))
	must(t)(c.RequestReservations(ctx, map[string][]booking.Reservation{"h1": {reservation(t, 2, jan1)}}))
	must(t)(c.DeleteHotel(ctx, "h1"))

	assert.Equal(t, "h1 is not in our system.", must(t)(c.ListReservations(ctx, "h1", "c1")))
	assert.Equal(t, "h1 is not in our system.", must(t)(c.RequestReservations(ctx, map[string][]booking.Reservation{
		"h1": {reservation(t, 1, jan1)},
	})))
	assert.Equal(t, "The following hotels are in our system:\n", must(t)(c.ListHotels(ctx)))

	// 重新添加的是一家全新的酒店
	assert.Equal(t, "h1 has been added.", must(t)(c.AddHotel(ctx, "h1", 3)))
	assert.Equal(t, "The following hotels are in our system:\nh1: Rooms: 3, Reservations: 0", must(t)(c.ListHotels(ctx)))
}

func TestManagerOnlyRequestRejected(t *testing.T) {
	c := start(t, DefaultConfig())

	_, err := c.do(context.Background(), func(ch chan<- actor.Message) actor.Message {
		return &protocol.RequestHotel{ReplyChan: ch}
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, agent.ErrUnsupportedRequest)
	assert.False(t, actor.IsTimeout(err))
}

func TestListHotels(t *testing.T) {
	c := start(t, DefaultConfig())
	ctx := context.Background()

	must(t)(c.AddHotel(ctx, "h1", 10))
	must(t)(c.AddHotel(ctx, "h2", 10))

	assert.Equal(t, "The following hotels are in our system:\n"+
		"h1: Rooms: 10, Reservations: 0\n"+
		"h2: Rooms: 10, Reservations: 0", must(t)(c.ListHotels(ctx)))
}

// ═══════════════════════════════════════════════════════════════════════════
// 预订
// ═══════════════════════════════════════════════════════════════════════════

func TestListReservations(t *testing.T) {
	c := start(t, DefaultConfig())
	ctx := context.Background()
	must(t)(c.AddHotel(ctx, "h1", 10))

	must(t)(c.RequestReservations(ctx, map[string][]booking.Reservation{
		"h1": {reservation(t, 5, jan1), reservation(t, 10, jan2)},
	}))

	msg := must(t)(c.ListReservations(ctx, "h1", "c1"))
	assert.Contains(t, msg, "Rooms: 5, Date: 01-01-2022")
	assert.Contains(t, msg, "Rooms: 10, Date: 02-01-2022")
}

func TestListReservationsHotelDoesntExist(t *testing.T) {
	c := start(t, DefaultConfig())
	assert.Equal(t, "h1 is not in our system.", must(t)(c.ListReservations(context.Background(), "h1", "c1")))
}

func TestRequestReservationsInsufficientRooms(t *testing.T) {
	c := start(t, DefaultConfig())
	ctx := context.Background()
	must(t)(c.AddHotel(ctx, "h1", 10))

	msg := must(t)(c.RequestReservations(ctx, map[string][]booking.Reservation{
		"h1": {reservation(t, 15, jan1)},
	}))
	assert.Contains(t, msg, "h1 doesn't have 15 rooms available.")
}

func TestConfirmReservation(t *testing.T) {
	c := start(t, DefaultConfig())
	ctx := context.Background()
	must(t)(c.AddHotel(ctx, "h1", 10))

	id := reserveOne(t, c)
	assert.Equal(t, "The reservation has been confirmed.", must(t)(c.ConfirmReservation(ctx, id)))
	assert.Contains(t, must(t)(c.ListReservations(ctx, "h1", "c1")), "Confirmed: Yes")
}

func TestConfirmReservationDoesntExist(t *testing.T) {
	c := start(t, DefaultConfig())
	ctx := context.Background()
	must(t)(c.AddHotel(ctx, "h1", 10))

	assert.Equal(t, "There is no reservation with Id: (Id that doesn't exist) in our system.",
		must(t)(c.ConfirmReservation(ctx, "(Id that doesn't exist)")))
}

func TestCancelReservation(t *testing.T) {
	c := start(t, DefaultConfig())
	ctx := context.Background()
	must(t)(c.AddHotel(ctx, "h1", 10))

	id := reserveOne(t, c)
	assert.Equal(t, "The reservation has been cancelled.", must(t)(c.CancelReservation(ctx, id)))
	assert.Equal(t, "You have the following reservations in h1:\n", must(t)(c.ListReservations(ctx, "h1", "c1")))
	assert.Equal(t, "There is no reservation with Id: "+id+" in our system.", must(t)(c.CancelReservation(ctx, id)))
}

// ═══════════════════════════════════════════════════════════════════════════
// Agent 与路由
// ═══════════════════════════════════════════════════════════════════════════

func TestAddAgent(t *testing.T) {
	c := start(t, DefaultConfig())
	ctx := context.Background()

	assert.Equal(t, "A new agent has been added.", must(t)(c.AddAgent(ctx)))

	require.Eventually(t, func() bool {
		ids, err := c.Agents(ctx)
		return err == nil && len(ids) == 2
	}, 2*time.Second, 10*time.Millisecond)
}

func TestListAvailableRooms(t *testing.T) {
	c := start(t, DefaultConfig())
	ctx := context.Background()
	must(t)(c.AddHotel(ctx, "h1", 10))
	must(t)(c.AddHotel(ctx, "h2", 10))

	assert.Equal(t, "The following hotels have enough rooms:\n"+
		"h1: Available rooms: 10\n"+
		"h2: Available rooms: 10", must(t)(c.ListAvailableRooms(ctx, 5, jan1)))
}

func TestRoundRobinAcrossAgents(t *testing.T) {
	c := start(t, Config{InitialAgents: 3})
	ctx := context.Background()

	require.Eventually(t, func() bool {
		ids, err := c.Agents(ctx)
		return err == nil && len(ids) == 3
	}, 2*time.Second, 10*time.Millisecond)

	must(t)(c.AddHotel(ctx, "h1", 10))

	// 每个 Agent 都最终通过服务发现得知 h1
	want := "The following hotels are in our system:\nh1: Rooms: 10, Reservations: 0"
	require.Eventually(t, func() bool {
		for range 3 {
			if status, err := c.ListHotels(ctx); err != nil || status != want {
				return false
			}
		}
		return true
	}, 2*time.Second, 20*time.Millisecond)

	// 无论路由到哪个 Agent，名称都不能重复
	for range 3 {
		assert.Equal(t, "h1 is in our system already.", must(t)(c.AddHotel(ctx, "h1", 5)))
	}
}

func TestStashUntilAgentsRegister(t *testing.T) {
	sys := actor.NewSystem("test")
	defer sys.Shutdown()
	reg := registry.Spawn(sys)

	// 先拿到 Coordinator 的 PID，再让请求在 Agent 注册前到达
	pid, err := sys.TrySpawn(New(reg, Config{}), actor.DefaultProps(DefaultName))
	require.NoError(t, err)
	c := NewClient(pid, 5*time.Second)

	assert.Equal(t, "h1 has been added.", must(t)(c.AddHotel(context.Background(), "h1", 10)))
}

func TestStashOverflow(t *testing.T) {
	sys := actor.NewSystem("test")
	defer sys.Shutdown()
	reg := registry.Spawn(sys)

	coord := New(reg, Config{StashSize: 1})
	// 不启动 Started 流程：直接喂消息，模拟没有任何 Agent
	replies := make(chan actor.Message, 2)
	ctx := &actor.Context{}
	coord.Receive(ctx, &protocol.ListHotels{ReplyChan: replies})
	coord.Receive(ctx, &protocol.ListHotels{ReplyChan: replies})

	select {
	case msg := <-replies:
		resp, ok := msg.(*protocol.Response)
		require.True(t, ok)
		assert.ErrorIs(t, resp.Err, ErrNoAgents)
	case <-time.After(time.Second):
		t.Fatal("overflow not rejected")
	}
	assert.Len(t, coord.stash, 1)
}

func TestClientTimeout(t *testing.T) {
	sys := actor.NewSystem("test")
	defer sys.Shutdown()

	mute := sys.Spawn(actor.ActorFunc(func(*actor.Context, actor.Message) {}), "mute")
	c := NewClient(mute, 50*time.Millisecond)

	_, err := c.ListHotels(context.Background())
	assert.True(t, actor.IsTimeout(err))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.ListHotels(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 1, cfg.InitialAgents)
	assert.Equal(t, 10*time.Second, cfg.AskTimeout)
	assert.Equal(t, 20*time.Second, cfg.ClientTimeout)
	assert.Equal(t, DefaultStashSize, cfg.StashSize)
}

func TestServiceStop(t *testing.T) {
	sys := actor.NewSystem("test")
	defer sys.Shutdown()

	svc, err := Start(sys, DefaultConfig())
	require.NoError(t, err)
	must(t)(svc.Client().AddHotel(context.Background(), "h1", 10))

	require.NoError(t, svc.Stop(2*time.Second))
	assert.False(t, svc.PID().Alive())

	_, err = svc.Client().ListHotels(context.Background())
	assert.ErrorIs(t, err, actor.ErrActorNotFound)

	// Hotel Manager 随 Agent 一起停止，注册中心随之清空
	require.Eventually(t, func() bool {
		l, err := svc.Registry().Find(context.Background(), protocol.HotelManagerService)
		return err == nil && l.Len() == 0
	}, 2*time.Second, 10*time.Millisecond)
}

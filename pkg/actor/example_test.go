package actor_test

import (
	"context"
	"fmt"
	"time"

	"github.com/lwmacct/251219-go-pkg-rentaroom/pkg/actor"
)

// PingMessage 示例消息类型
type PingMessage struct{}

func (m *PingMessage) Kind() string { return "ping" }

// QuoteRequest 带回复通道的请求消息
type QuoteRequest struct {
	Rooms     int
	ReplyChan chan<- string
}

func (m *QuoteRequest) Kind() string { return "quote" }

// CountMessage 计数器消息
type CountMessage struct {
	Value int
}

func (m *CountMessage) Kind() string { return "count" }

// Example_basic 演示 Actor 系统的基本使用
func Example_basic() {
	// 创建 Actor 系统
	sys := actor.NewSystem("example")
	defer sys.Shutdown()

	// 使用 ActorFunc 快速创建 Actor
	pid := sys.Spawn(actor.ActorFunc(func(ctx *actor.Context, msg actor.Message) {
		switch msg.(type) {
		case *actor.Started:
			fmt.Println("Actor started")
		case *PingMessage:
			fmt.Println("Received Ping")
		}
	}), "greeter")

	// 等待 Actor 启动
	time.Sleep(10 * time.Millisecond)

	// 发送消息
	pid.Tell(&PingMessage{})
	time.Sleep(10 * time.Millisecond)

	// Output:
	// Actor started
	// Received Ping
}

// Example_actorFunc 演示函数式 Actor
func Example_actorFunc() {
	sys := actor.NewSystem("func-example")
	defer sys.Shutdown()

	counter := 0
	pid := sys.Spawn(actor.ActorFunc(func(ctx *actor.Context, msg actor.Message) {
		if m, ok := msg.(*CountMessage); ok {
			counter += m.Value
			fmt.Printf("Counter: %d\n", counter)
		}
	}), "counter")

	time.Sleep(10 * time.Millisecond)

	pid.Tell(&CountMessage{Value: 1})
	pid.Tell(&CountMessage{Value: 2})
	pid.Tell(&CountMessage{Value: 3})
	time.Sleep(50 * time.Millisecond)

	// Output:
	// Counter: 1
	// Counter: 3
	// Counter: 6
}

// Example_ask 演示类型化请求响应模式
func Example_ask() {
	sys := actor.NewSystem("ask-example")
	defer sys.Shutdown()

	// 回复通道随请求一起发送
	pid := sys.Spawn(actor.ActorFunc(func(ctx *actor.Context, msg actor.Message) {
		if m, ok := msg.(*QuoteRequest); ok {
			actor.TrySend(m.ReplyChan, fmt.Sprintf("%d rooms quoted", m.Rooms))
		}
	}), "responder")

	resp, err := actor.Ask(pid, func(reply chan<- string) actor.Message {
		return &QuoteRequest{Rooms: 3, ReplyChan: reply}
	}, time.Second)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	fmt.Printf("Response: %s\n", resp)

	// Output:
	// Response: 3 rooms quoted
}

// Example_pipeToSelf 演示不阻塞邮箱的异步任务
func Example_pipeToSelf() {
	sys := actor.NewSystem("pipe-example")
	defer sys.Shutdown()

	done := make(chan struct{})
	sys.Spawn(actor.ActorFunc(func(ctx *actor.Context, msg actor.Message) {
		switch m := msg.(type) {
		case *actor.Started:
			ctx.PipeToSelf(func(context.Context) actor.Message {
				return &CountMessage{Value: 42}
			})
		case *CountMessage:
			fmt.Printf("Piped result: %d\n", m.Value)
			close(done)
		}
	}), "piper")

	<-done

	// Output:
	// Piped result: 42
}

// Example_newOneForOneStrategy 演示一对一监督策略
func Example_newOneForOneStrategy() {
	// 创建监督策略：在 1 分钟内最多允许 3 次重启
	strategy := actor.NewOneForOneStrategy(
		3,                    // 最大重启次数
		time.Minute,          // 时间窗口
		actor.DefaultDecider, // 使用默认决策器
	)

	// 使用策略创建 Actor
	sys := actor.NewSystem("supervisor-example")
	defer sys.Shutdown()

	props := actor.DefaultProps("worker").WithSupervisor(strategy)

	sys.SpawnWithProps(actor.ActorFunc(func(ctx *actor.Context, msg actor.Message) {
		switch msg.(type) {
		case *actor.Started:
			fmt.Println("Worker started")
		case *actor.Restarting:
			fmt.Println("Worker restarting")
		}
	}), props)

	time.Sleep(10 * time.Millisecond)

	// Output:
	// Worker started
}

// Example_defaultProps 演示 Props 配置
func Example_defaultProps() {
	props := actor.DefaultProps("my-actor").
		WithMailboxSize(1000).
		WithSupervisor(actor.DefaultSupervisorStrategy())

	fmt.Printf("Name: %s, MailboxSize: %d\n", props.Name, props.MailboxSize)

	// Output:
	// Name: my-actor, MailboxSize: 1000
}

// Example_context 演示 Actor 上下文的使用
func Example_context() {
	sys := actor.NewSystem("context-example")
	defer sys.Shutdown()

	pid := sys.Spawn(actor.ActorFunc(func(ctx *actor.Context, msg actor.Message) {
		switch msg.(type) {
		case *actor.Started:
			fmt.Printf("Self: %s\n", ctx.Self.ID)
			fmt.Printf("System: %s\n", ctx.System().Name())
		}
	}), "demo")

	_ = pid
	time.Sleep(10 * time.Millisecond)

	// Output:
	// Self: demo
	// System: context-example
}

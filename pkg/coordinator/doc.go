// Package coordinator 预订系统的入口
//
// [Start] 在 Actor 系统中启动注册中心和 [Coordinator]，Coordinator 再创建初始 Agent。
// 外部通过 [Client] 发送请求：
//
//	sys := actor.NewSystem("rentaroom")
//	svc, err := coordinator.Start(sys, coordinator.DefaultConfig())
//	if err != nil {
//	    return err
//	}
//	status, err := svc.Client().AddHotel(ctx, "h1", 10)
//
// # 路由
//
// AddAgent 由 Coordinator 自己处理，其余请求按轮询分发给已注册的 Agent。
// 没有 Agent 时请求被暂存（有上限），超出上限的请求得到 [ErrNoAgents]。
package coordinator

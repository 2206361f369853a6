// Package agent 面向请求的预订 Agent
//
// Agent 是无状态路由者：它只缓存 "酒店名 -> Hotel Manager" 的映射，
// 映射由注册中心在 Hotel Manager 加入或退出时推送（[protocol.UpdateHotelManagers]）。
//
// # 请求处理
//
// 单酒店请求直接路由：
//   - [protocol.AddHotel]: 创建 Hotel Manager，名称重复时提示已存在
//   - [protocol.DeleteHotel]: 停止 Hotel Manager
//   - [protocol.ListReservations]: 原样转发，由 Hotel Manager 直接回复
//
// 跨酒店请求扇出后汇总：
//   - [protocol.ListHotels]、[protocol.ListAvailableRooms]
//   - [protocol.RequestReservationsMultiHotels]
//   - [protocol.ConfirmReservation]、[protocol.CancelReservation]（先定位，再只修改持有者）
//
// 扇出在 [actor.Context.PipeToSelf] 中用 errgroup 并发完成，Agent 的邮箱始终不阻塞。
// 超时或回复类型错误的酒店被排除在汇总之外，并记录日志。
//
// # 创建
//
//	factory := agent.NewFactory(reg, agent.WithAskTimeout(5*time.Second))
//	pid, err := factory.CreateAndSpawn(sys, "agent-1")
package agent

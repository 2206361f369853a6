// Package registry 基于 Actor 的服务发现
//
// [Receptionist] 维护 服务键 → 存活实例 的目录：
//
//   - Register 幂等注册，实例终止（Terminated）即自动注销
//   - Subscribe 立即收到当前完整快照，之后每次变化再收到新的完整快照
//   - Find 一次性查询
//
// 通常通过 [Spawn] 返回的 [Registry] 句柄使用：
//
//	reg := registry.Spawn(sys)
//	reg.Register("hotel-manager", ctx.Self)
//	reg.Subscribe("hotel-manager", ctx.Self, func(l registry.Listing) actor.Message {
//		return &UpdateManagers{Listing: l}
//	})
package registry

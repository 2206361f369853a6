package agent

import (
	"github.com/lwmacct/251219-go-pkg-rentaroom/pkg/actor"
	"github.com/lwmacct/251219-go-pkg-rentaroom/pkg/booking"
)

// ═══════════════════════════════════════════════════════════════════════════
// 查询消息
// ═══════════════════════════════════════════════════════════════════════════

// GetStatus 获取 Agent 状态
type GetStatus struct {
	ReplyChan chan<- *Status
}

// Kind 实现 actor.Message 接口
func (m *GetStatus) Kind() string { return "agent.get_status" }

// Status Agent 当前状态
type Status struct {
	ID      string
	Hotels  []string // 已知酒店名，按名称排序
	Pending int      // 进行中的聚合操作数
	Stats   *actor.ActorStats
}

// ═══════════════════════════════════════════════════════════════════════════
// 内部消息（PipeToSelf 投递回来的结果）
// ═══════════════════════════════════════════════════════════════════════════

// target 一家酒店及其 Manager
type target struct {
	name string
	pid  *actor.PID
}

// hotelState 某家酒店的快照
type hotelState struct {
	target
	snapshot booking.HotelSnapshot
}

// hotelStatus 某家酒店对一次请求的文本回复
type hotelStatus struct {
	hotel  string
	status string
}

// gathered 一次扇出的汇总结果，失败的目标已被排除
type gathered struct {
	opID     string
	hotels   []hotelState
	statuses []hotelStatus
}

func (m *gathered) Kind() string { return "agent.gathered" }

// mutated Confirm / Cancel 第二阶段的结果
type mutated struct {
	opID   string
	status string
	err    error
}

func (m *mutated) Kind() string { return "agent.mutated" }

package registry

import (
	"sort"

	"github.com/lwmacct/251219-go-pkg-rentaroom/pkg/actor"
)

// ServiceKey 服务键，表示一类角色（例如 "hotel-manager"）
type ServiceKey string

// Listing 某个服务键下当前全部存活实例的完整快照
// Instances 按 PID.ID 排序
type Listing struct {
	Key       ServiceKey
	Instances []*actor.PID
}

// Contains 是否包含指定 PID（按实例身份比较）
func (l Listing) Contains(pid *actor.PID) bool {
	for _, p := range l.Instances {
		if p == pid {
			return true
		}
	}
	return false
}

// Len 实例数
func (l Listing) Len() int {
	return len(l.Instances)
}

// IDs 全部实例 ID
func (l Listing) IDs() []string {
	ids := make([]string, len(l.Instances))
	for i, p := range l.Instances {
		ids[i] = p.ID
	}
	return ids
}

func newListing(key ServiceKey, members map[string]*actor.PID) Listing {
	instances := make([]*actor.PID, 0, len(members))
	for _, pid := range members {
		instances = append(instances, pid)
	}
	sort.Slice(instances, func(i, j int) bool { return instances[i].ID < instances[j].ID })
	return Listing{Key: key, Instances: instances}
}

// ═══════════════════════════════════════════════════════════════════════════
// 消息定义
// ═══════════════════════════════════════════════════════════════════════════

// Register 注册实例（幂等）
// 实例终止时自动注销
type Register struct {
	Key ServiceKey
	PID *actor.PID
}

// Kind 实现 actor.Message 接口
func (m *Register) Kind() string { return "registry.register" }

// Deregister 显式注销实例
type Deregister struct {
	Key ServiceKey
	PID *actor.PID
}

// Kind 实现 actor.Message 接口
func (m *Deregister) Kind() string { return "registry.deregister" }

// Subscribe 订阅服务键
//
// 订阅者立即收到 Adapt(当前快照)，之后每次成员变化都会收到新的完整快照。
// Adapt 为 nil 时发送 [*Changed]。重复订阅会替换 Adapt。
type Subscribe struct {
	Key        ServiceKey
	Subscriber *actor.PID
	Adapt      func(Listing) actor.Message
}

// Kind 实现 actor.Message 接口
func (m *Subscribe) Kind() string { return "registry.subscribe" }

// Unsubscribe 取消订阅
type Unsubscribe struct {
	Key        ServiceKey
	Subscriber *actor.PID
}

// Kind 实现 actor.Message 接口
func (m *Unsubscribe) Kind() string { return "registry.unsubscribe" }

// Find 一次性查询当前快照
type Find struct {
	Key       ServiceKey
	ReplyChan chan<- Listing
}

// Kind 实现 actor.Message 接口
func (m *Find) Kind() string { return "registry.find" }

// Changed 默认的变更通知
type Changed struct {
	Listing Listing
}

// Kind 实现 actor.Message 接口
func (m *Changed) Kind() string { return "registry.changed" }

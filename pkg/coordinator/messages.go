package coordinator

import (
	"time"

	"github.com/lwmacct/251219-go-pkg-rentaroom/pkg/registry"
)

// GetAgents 列出当前可路由的 Agent ID
type GetAgents struct {
	ReplyChan chan<- []string
}

// Kind 实现 actor.Message 接口
func (m *GetAgents) Kind() string { return "coordinator.get_agents" }

// agentsChanged Agent 列表推送
type agentsChanged struct {
	Listing registry.Listing
}

func (m *agentsChanged) Kind() string { return "coordinator.agents_changed" }

// ═══════════════════════════════════════════════════════════════════════════
// 配置
// ═══════════════════════════════════════════════════════════════════════════

// 默认值
const (
	DefaultName          = "coordinator"
	DefaultInitialAgents = 1
	DefaultAskTimeout    = 10 * time.Second
	DefaultStashSize     = 1000
)

// Config Coordinator 配置
type Config struct {
	// InitialAgents 启动时创建的 Agent 数
	InitialAgents int
	// AskTimeout Agent 向 Hotel Manager 发起 ask 的超时
	AskTimeout time.Duration
	// ClientTimeout Client 等待回复的超时，默认是 AskTimeout 的两倍（Confirm / Cancel 有两轮 ask）
	ClientTimeout time.Duration
	// StashSize 没有 Agent 时最多暂存的请求数
	StashSize int
	// AgentMailboxSize Agent 邮箱大小，0 表示使用系统默认值
	AgentMailboxSize int
}

// DefaultConfig 默认配置
func DefaultConfig() Config {
	return Config{}.withDefaults()
}

func (c Config) withDefaults() Config {
	if c.InitialAgents <= 0 {
		c.InitialAgents = DefaultInitialAgents
	}
	if c.AskTimeout <= 0 {
		c.AskTimeout = DefaultAskTimeout
	}
	if c.ClientTimeout <= 0 {
		c.ClientTimeout = 2 * c.AskTimeout
	}
	if c.StashSize <= 0 {
		c.StashSize = DefaultStashSize
	}
	return c
}

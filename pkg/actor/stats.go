package actor

import (
	"sync"
	"time"
)

// ═══════════════════════════════════════════════════════════════════════════
// Actor 统计信息
// ═══════════════════════════════════════════════════════════════════════════

// ActorStats Actor 运行时统计信息
type ActorStats struct {
	// 消息计数
	MessagesReceived int64 // 接收的消息总数
	MessagesHandled  int64 // 成功处理的消息数
	Errors           int64 // 错误数

	// 延迟统计
	TotalLatency   time.Duration // 总延迟（用于计算平均值）
	AverageLatency time.Duration // 平均延迟
	MaxLatency     time.Duration // 最大延迟
	MinLatency     time.Duration // 最小延迟

	// 时间戳
	StartedAt     time.Time // 启动时间
	LastMessageAt time.Time // 最后消息时间
	LastErrorAt   time.Time // 最后错误时间

	// 错误信息
	LastError error // 最后一个错误
}

// Clone 克隆统计信息（线程安全的快照）
func (s *ActorStats) Clone() *ActorStats {
	return &ActorStats{
		MessagesReceived: s.MessagesReceived,
		MessagesHandled:  s.MessagesHandled,
		Errors:           s.Errors,
		TotalLatency:     s.TotalLatency,
		AverageLatency:   s.AverageLatency,
		MaxLatency:       s.MaxLatency,
		MinLatency:       s.MinLatency,
		StartedAt:        s.StartedAt,
		LastMessageAt:    s.LastMessageAt,
		LastErrorAt:      s.LastErrorAt,
		LastError:        s.LastError,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// StatsCollector 统计收集器
// ═══════════════════════════════════════════════════════════════════════════

// StatsCollector 线程安全的统计收集器
type StatsCollector struct {
	mu    sync.RWMutex
	stats ActorStats
}

// NewStatsCollector 创建统计收集器
func NewStatsCollector() *StatsCollector {
	return &StatsCollector{
		stats: ActorStats{
			StartedAt:  time.Now(),
			MinLatency: time.Duration(1<<63 - 1), // 最大值，确保第一次会被更新
		},
	}
}

// RecordReceived 记录接收消息
func (c *StatsCollector) RecordReceived() {
	c.mu.Lock()
	c.stats.MessagesReceived++
	c.stats.LastMessageAt = time.Now()
	c.mu.Unlock()
}

// RecordHandled 记录成功处理消息
func (c *StatsCollector) RecordHandled(latency time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stats.MessagesHandled++
	c.stats.TotalLatency += latency

	// 更新平均延迟
	if c.stats.MessagesHandled > 0 {
		c.stats.AverageLatency = c.stats.TotalLatency / time.Duration(c.stats.MessagesHandled)
	}

	// 更新最大/最小延迟
	if latency > c.stats.MaxLatency {
		c.stats.MaxLatency = latency
	}
	if latency < c.stats.MinLatency {
		c.stats.MinLatency = latency
	}
}

// RecordError 记录错误
func (c *StatsCollector) RecordError(err error) {
	c.mu.Lock()
	c.stats.Errors++
	c.stats.LastError = err
	c.stats.LastErrorAt = time.Now()
	c.mu.Unlock()
}

// Stats 获取统计快照
func (c *StatsCollector) Stats() *ActorStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stats.Clone()
}

// Reset 重置统计
func (c *StatsCollector) Reset() {
	c.mu.Lock()
	c.stats = ActorStats{
		StartedAt:  time.Now(),
		MinLatency: time.Duration(1<<63 - 1),
	}
	c.mu.Unlock()
}

package actor

import (
	"sync"
	"time"
)

// Directive 监督指令
type Directive int

const (
	// DirectiveResume 恢复 Actor，继续处理消息
	DirectiveResume Directive = iota
	// DirectiveRestart 重启 Actor
	DirectiveRestart
	// DirectiveStop 停止 Actor
	DirectiveStop
	// DirectiveEscalate 上报给父 Actor 处理
	DirectiveEscalate
	// DirectiveRestartAfter 延迟重启 Actor
	DirectiveRestartAfter
)

// DirectiveWithDelay 带延迟的指令
type DirectiveWithDelay struct {
	Directive Directive
	Delay     time.Duration
}

// String 返回指令名称
func (d Directive) String() string {
	switch d {
	case DirectiveResume:
		return "Resume"
	case DirectiveRestart:
		return "Restart"
	case DirectiveStop:
		return "Stop"
	case DirectiveEscalate:
		return "Escalate"
	case DirectiveRestartAfter:
		return "RestartAfter"
	default:
		return "Unknown"
	}
}

// SupervisorStrategy 监督策略接口
type SupervisorStrategy interface {
	// HandleFailure 处理 Actor 失败
	// 返回应该采取的指令，可以是 Directive 或 DirectiveWithDelay
	HandleFailure(system *System, child *PID, msg Message, err any) any
}

// ============== 内置监督策略 ==============

// OneForOneStrategy 一对一策略
// 只重启失败的 Actor，不影响其他子 Actor
type OneForOneStrategy struct {
	MaxRestarts    int           // 最大重启次数
	WithinDuration time.Duration // 时间窗口
	Decider        Decider       // 决策函数

	// 内部状态
	mu            sync.Mutex
	restartWindow []time.Time
}

// Decider 决策函数类型
type Decider func(err any) Directive

// NewOneForOneStrategy 创建一对一策略
func NewOneForOneStrategy(maxRestarts int, within time.Duration, decider Decider) *OneForOneStrategy {
	if decider == nil {
		decider = DefaultDecider
	}
	return &OneForOneStrategy{
		MaxRestarts:    maxRestarts,
		WithinDuration: within,
		Decider:        decider,
		restartWindow:  make([]time.Time, 0),
	}
}

// HandleFailure 实现 SupervisorStrategy
func (s *OneForOneStrategy) HandleFailure(_ *System, _ *PID, _ Message, err any) any {
	directive := s.Decider(err)

	if directive == DirectiveRestart {
		s.mu.Lock()
		defer s.mu.Unlock()

		// 检查重启次数限制
		now := time.Now()
		cutoff := now.Add(-s.WithinDuration)

		// 清理过期的重启记录
		validRestarts := make([]time.Time, 0)
		for _, t := range s.restartWindow {
			if t.After(cutoff) {
				validRestarts = append(validRestarts, t)
			}
		}
		s.restartWindow = validRestarts

		// 检查是否超过限制
		if len(s.restartWindow) >= s.MaxRestarts {
			return DirectiveStop
		}

		// 记录本次重启
		s.restartWindow = append(s.restartWindow, now)
	}

	return directive
}

// ============== 默认策略和决策器 ==============

// DefaultDecider 默认决策器
// 对所有错误采取重启策略
func DefaultDecider(_ any) Directive {
	return DirectiveRestart
}

// StoppingDecider 停止决策器
// 对所有错误采取停止策略
func StoppingDecider(_ any) Directive {
	return DirectiveStop
}

// EscalatingDecider 上报决策器
// 对所有错误采取上报策略
func EscalatingDecider(_ any) Directive {
	return DirectiveEscalate
}

// ResumingDecider 恢复决策器
// 对所有错误采取恢复策略（忽略错误继续运行）
func ResumingDecider(_ any) Directive {
	return DirectiveResume
}

// DefaultSupervisorStrategy 默认监督策略
// 允许 3 次重启在 1 分钟内
func DefaultSupervisorStrategy() SupervisorStrategy {
	return NewOneForOneStrategy(3, time.Minute, DefaultDecider)
}

// ResumingSupervisorStrategy 恢复监督策略
// 失败时保留 Actor 状态继续处理后续消息，适用于持有业务数据的 Actor
func ResumingSupervisorStrategy() SupervisorStrategy {
	return NewOneForOneStrategy(0, time.Second, ResumingDecider)
}

package actor

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ═══════════════════════════════════════════════════════════════════════════
// 通用请求-回复辅助函数
// ═══════════════════════════════════════════════════════════════════════════

// Ask 向 Actor 发送请求并等待类型化的回复
//
// build 负责把回复通道装进请求消息，被请求方通过 [TrySend] 回复。
// 超时返回 *ResponseTimeout，目标已停止时立即返回 ErrActorNotFound。
//
// 用法示例:
//
//	type GetStatus struct{ ReplyChan chan<- string }
//	func (m *GetStatus) Kind() string { return "get_status" }
//
//	status, err := actor.Ask(pid, func(reply chan<- string) actor.Message {
//		return &GetStatus{ReplyChan: reply}
//	}, 5*time.Second)
func Ask[T any](pid *PID, build func(reply chan<- T) Message, timeout time.Duration) (T, error) {
	return AskWithContext(context.Background(), pid, build, timeout)
}

// AskWithContext 带 context 的请求-回复
// context 取消时返回 ctx.Err()，超时仍返回 *ResponseTimeout
func AskWithContext[T any](ctx context.Context, pid *PID, build func(reply chan<- T) Message, timeout time.Duration) (T, error) {
	var zero T

	if !pid.Alive() {
		return zero, fmt.Errorf("%w: %s", ErrActorNotFound, pid)
	}

	replyCh := make(chan T, 1)
	pid.Tell(build(replyCh))

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case result := <-replyCh:
		return result, nil
	case <-timer.C:
		return zero, &ResponseTimeout{Target: pid, Timeout: timeout}
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// 通道工具函数
// ═══════════════════════════════════════════════════════════════════════════

// TrySend 尝试非阻塞发送到通道
// 如果通道为 nil 或已满，返回 false
func TrySend[T any](ch chan<- T, value T) bool {
	if ch == nil {
		return false
	}
	select {
	case ch <- value:
		return true
	default:
		return false
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// 错误处理工具
// ═══════════════════════════════════════════════════════════════════════════

// IsTimeout 检查错误是否为请求超时（包括 context 截止）
func IsTimeout(err error) bool {
	var rt *ResponseTimeout
	return errors.As(err, &rt) || errors.Is(err, context.DeadlineExceeded)
}

// IsContextError 检查错误是否为 context 相关错误
func IsContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

package booking

import (
	"errors"
	"fmt"
)

// 领域错误哨兵，使用 errors.Is 判断
var (
	// ErrCapacityExceeded 预订会超出当日房间容量
	ErrCapacityExceeded = errors.New("capacity exceeded")
	// ErrNotFound 预订不存在
	ErrNotFound = errors.New("reservation not found")
	// ErrInvalid 输入不合法
	ErrInvalid = errors.New("invalid input")
)

// CapacityError 容量不足错误
// Error() 即面向用户的提示行
type CapacityError struct {
	Hotel     string
	RoomCount int
}

// Error 实现 error 接口
func (e *CapacityError) Error() string {
	return fmt.Sprintf("%s doesn't have %d rooms available.", e.Hotel, e.RoomCount)
}

// Unwrap 支持 errors.Is(err, ErrCapacityExceeded)
func (e *CapacityError) Unwrap() error { return ErrCapacityExceeded }

// NotFoundError 预订不存在错误
type NotFoundError struct {
	Hotel string
	ID    string
}

// Error 实现 error 接口
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("There is no reservation with Id: %s in %s.", e.ID, e.Hotel)
}

// Unwrap 支持 errors.Is(err, ErrNotFound)
func (e *NotFoundError) Unwrap() error { return ErrNotFound }

package booking

import (
	"fmt"
	"time"
)

// DateLayout 日期的文本格式（dd-MM-yyyy）
const DateLayout = "02-01-2006"

// Date 日历日期，不带时区和时刻，可以直接用 == 比较
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate 创建日期，越界的月/日会按 time.Date 的规则归一化
func NewDate(year int, month time.Month, day int) Date {
	return DateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// DateOf 取 time.Time 在其所在时区的日期部分
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// Today 本地时区的今天
func Today() Date {
	return DateOf(time.Now())
}

// ParseDate 解析 dd-MM-yyyy 格式的日期
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: date %q must look like dd-mm-yyyy", ErrInvalid, s)
	}
	return DateOf(t), nil
}

// Time 返回当天 UTC 零点
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// Before 是否早于另一个日期
func (d Date) Before(other Date) bool {
	return d.Time().Before(other.Time())
}

// IsZero 是否为零值
func (d Date) IsZero() bool {
	return d == Date{}
}

// String 渲染为 dd-MM-yyyy
func (d Date) String() string {
	return d.Time().Format(DateLayout)
}

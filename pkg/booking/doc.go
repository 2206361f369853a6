// Package booking 酒店与预订的领域模型
//
// [Hotel] 维护容量不变量：任一日期上所有预订的房间数之和不超过酒店房间总数。
// 违反不变量的 [Hotel.AddReservation] 返回 [*CapacityError] 且不改变状态。
//
// 领域错误的 Error() 文本就是面向用户的提示行，上层直接拼进回复即可：
//
//	if err := hotel.AddReservation(r); err != nil {
//		lines = append(lines, err.Error()) // "h1 doesn't have 15 rooms available."
//	}
package booking

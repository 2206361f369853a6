// Package hotelmanager 单家酒店的管理 Actor
//
// 每家酒店对应一个 [HotelManager]，Actor ID 为 "hotel/<name>"。
// 启动时把自己注册到 "hotel-manager" 服务键下，停止即自动注销。
//
// 接受的请求：ListReservations、RequestReservations、RequestHotel，
// 以及 Agent 定位到所属酒店后发出的 ConfirmReservation / CancelReservation。
package hotelmanager

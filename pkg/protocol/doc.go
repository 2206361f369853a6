// Package protocol 定义系统中全部请求/回复消息与面向用户的文本
//
// 每个请求都携带一次性的 ReplyChan，接收方用 [Reply] 非阻塞地回复一条消息，
// 通常是 [*Response]。请求方通过 actor.Ask 等待回复：
//
//	msg, err := actor.Ask(pid, func(reply chan<- actor.Message) actor.Message {
//		return &protocol.ListHotels{ReplyChan: reply}
//	}, 10*time.Second)
package protocol

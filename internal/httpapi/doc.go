// Package httpapi 预订系统的 HTTP/JSON 接口
//
// 路由与菜单命令一一对应，业务回复放在 {"status": ...} 中原样返回；
// 超时返回 504，没有可用 Agent 返回 503，请求体不合法返回 400。
//
// 中间件顺序：RealIP -> RequestID -> Recoverer -> RateLimit -> Timeout -> Metrics -> Logger。
package httpapi

// Package menu 交互式文本菜单
//
// 每个命令对应一个预订请求，输入不合法时重新提问，回复原样打印。
package menu

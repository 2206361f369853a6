// Package config 进程配置
//
// 配置按 默认值 -> YAML 文件 -> 命令行/环境变量 的顺序叠加（koanf）。
package config

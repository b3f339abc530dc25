package logger

import (
	"log"

	"go.uber.org/zap"
)

// Log 全局日志实例
var Log *zap.Logger

// Init 初始化全局日志
// release 模式输出 JSON，其余模式输出易读格式
func Init(mode string) {
	var err error
	if mode == "release" {
		Log, err = zap.NewProduction()
	} else {
		Log, err = zap.NewDevelopment()
	}
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
}

// L 返回全局日志实例，未初始化时退化为 Nop，避免空指针
func L() *zap.Logger {
	if Log == nil {
		return zap.NewNop()
	}
	return Log
}

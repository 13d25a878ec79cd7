package logger

import (
	"fmt"

	"go.uber.org/zap/zapcore"
)

// LogWriter 将 gorm 等第三方库的 Printf 输出写入 zap 的同一输出端
type LogWriter struct {
	zapcore.WriteSyncer
}

func (l *LogWriter) Printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(l.WriteSyncer, format+"\n", args...)
	_ = l.WriteSyncer.Sync()
}

func GetWriter() *LogWriter {
	return logWriter
}

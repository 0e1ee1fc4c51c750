package logger

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"giftvideo-service/pkg/config"
)

// Logger 封装logrus，统一结构化日志出口
type Logger struct {
	entry *logrus.Logger
	file  *os.File
}

var (
	globalMu     sync.RWMutex
	globalLogger *Logger
)

// NewLogger 根据配置构建日志器
func NewLogger(cfg *config.Config) *Logger {
	l := logrus.New()

	level := logrus.InfoLevel
	if cfg != nil {
		if parsed, err := logrus.ParseLevel(strings.ToLower(cfg.Log.Level)); err == nil {
			level = parsed
		}
	}
	l.SetLevel(level)

	if cfg != nil && strings.EqualFold(cfg.Log.Format, "json") {
		l.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02 15:04:05.000"})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: "2006-01-02 15:04:05.000"})
	}

	logger := &Logger{entry: l}

	var out io.Writer = os.Stdout
	if cfg != nil && strings.EqualFold(cfg.Log.Output, "file") && cfg.Log.Filename != "" {
		if f, err := os.OpenFile(cfg.Log.Filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644); err == nil {
			out = f
			logger.file = f
		}
	}
	l.SetOutput(out)

	return logger
}

// SetGlobalLogger 设置全局日志器
func SetGlobalLogger(l *Logger) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalLogger = l
}

// Close 关闭日志输出文件
func (l *Logger) Close() {
	if l.file != nil {
		_ = l.file.Close()
	}
}

func std() *logrus.Logger {
	globalMu.RLock()
	defer globalMu.RUnlock()
	if globalLogger != nil {
		return globalLogger.entry
	}
	return logrus.StandardLogger()
}

// Info 输出信息日志，附带结构化字段
func Info(msg string, fields map[string]interface{}) {
	std().WithFields(fields).Info(msg)
}

// Debug 输出调试日志
func Debug(msg string, fields ...map[string]interface{}) {
	if len(fields) > 0 {
		std().WithFields(fields[0]).Debug(msg)
		return
	}
	std().Debug(msg)
}

// Error 输出错误日志，附带结构化字段
func Error(msg string, fields map[string]interface{}) {
	std().WithFields(fields).Error(msg)
}

// Warn 输出警告日志，附带结构化字段
func Warn(msg string, fields map[string]interface{}) {
	std().WithFields(fields).Warn(msg)
}

// Infof 格式化信息日志
func Infof(format string, args ...interface{}) {
	std().Infof(format, args...)
}

// Debugf 格式化调试日志
func Debugf(format string, args ...interface{}) {
	std().Debugf(format, args...)
}

// Warnf 格式化警告日志
func Warnf(format string, args ...interface{}) {
	std().Warnf(format, args...)
}

// Errorf 格式化错误日志
func Errorf(format string, args ...interface{}) {
	std().Errorf(format, args...)
}

// Fatal 输出致命错误并退出
func Fatal(msg string) {
	std().Fatal(msg)
}

package logging

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// WriterProvider 基于 io.Writer + Formatter 的日志提供者
// 控制台与文件日志共用这一实现，只是 Writer 与格式化器不同。
type WriterProvider struct {
	out          io.Writer
	formatter    Formatter
	minimumLevel LogLevel
	mu           sync.Mutex
}

// NewWriterProvider 创建写入器提供者
func NewWriterProvider(out io.Writer, formatter Formatter) *WriterProvider {
	if out == nil {
		out = os.Stdout
	}
	if formatter == nil {
		formatter = NewTextFormatter()
	}
	return &WriterProvider{
		out:          out,
		formatter:    formatter,
		minimumLevel: LogLevelInfo,
	}
}

// CreateLogger 创建指定类别的日志记录器
func (p *WriterProvider) CreateLogger(category string) Logger {
	return &writerLogger{
		provider: p,
		category: category,
	}
}

// SetMinimumLevel 设置最小日志级别
func (p *WriterProvider) SetMinimumLevel(level LogLevel) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.minimumLevel = level
}

// write 格式化并串行写入，防止多个 Logger 交错输出
func (p *WriterProvider) write(entry *LogEntry) {
	data, err := p.formatter.Format(entry)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging: failed to format entry: %v\n", err)
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	_, _ = p.out.Write(data)
}

func (p *WriterProvider) level() LogLevel {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.minimumLevel
}

// writerLogger WriterProvider 的日志记录器实现
type writerLogger struct {
	provider *WriterProvider
	category string
	fields   []Field
}

func (l *writerLogger) Trace(msg string, fields ...Field) {
	l.Log(LogLevelTrace, msg, fields...)
}

func (l *writerLogger) Debug(msg string, fields ...Field) {
	l.Log(LogLevelDebug, msg, fields...)
}

func (l *writerLogger) Info(msg string, fields ...Field) {
	l.Log(LogLevelInfo, msg, fields...)
}

func (l *writerLogger) Warn(msg string, fields ...Field) {
	l.Log(LogLevelWarn, msg, fields...)
}

func (l *writerLogger) Error(msg string, fields ...Field) {
	l.Log(LogLevelError, msg, fields...)
}

func (l *writerLogger) Fatal(msg string, fields ...Field) {
	l.Log(LogLevelFatal, msg, fields...)
	os.Exit(1)
}

func (l *writerLogger) Log(level LogLevel, msg string, fields ...Field) {
	if level < l.provider.level() {
		return
	}

	allFields := make([]Field, 0, len(l.fields)+len(fields))
	allFields = append(allFields, l.fields...)
	allFields = append(allFields, fields...)

	l.provider.write(&LogEntry{
		Time:     time.Now(),
		Level:    level,
		Category: l.category,
		Message:  msg,
		Fields:   allFields,
	})
}

func (l *writerLogger) WithFields(fields ...Field) Logger {
	merged := make([]Field, 0, len(l.fields)+len(fields))
	merged = append(merged, l.fields...)
	merged = append(merged, fields...)

	return &writerLogger{
		provider: l.provider,
		category: l.category,
		fields:   merged,
	}
}

func (l *writerLogger) WithCategory(category string) Logger {
	return &writerLogger{
		provider: l.provider,
		category: category,
		fields:   l.fields,
	}
}

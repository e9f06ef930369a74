package logging

import (
	"fmt"
	"os"
	"sync"
)

// LoggingBuilder 日志构建器
type LoggingBuilder struct {
	providers    []LoggerProvider
	minimumLevel LogLevel
	mu           sync.RWMutex
}

// NewLoggingBuilder 创建日志构建器
func NewLoggingBuilder() *LoggingBuilder {
	return &LoggingBuilder{
		providers:    make([]LoggerProvider, 0),
		minimumLevel: LogLevelInfo,
	}
}

// SetMinimumLevel 设置最小日志级别
func (b *LoggingBuilder) SetMinimumLevel(level LogLevel) *LoggingBuilder {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.minimumLevel = level
	return b
}

// AddProvider 添加日志提供者
func (b *LoggingBuilder) AddProvider(provider LoggerProvider) *LoggingBuilder {
	b.mu.Lock()
	defer b.mu.Unlock()
	provider.SetMinimumLevel(b.minimumLevel)
	b.providers = append(b.providers, provider)
	return b
}

// AddConsole 添加控制台日志（带颜色的文本格式）
func (b *LoggingBuilder) AddConsole() *LoggingBuilder {
	formatter := NewTextFormatter()
	formatter.ColorOutput = true
	return b.AddProvider(NewWriterProvider(os.Stdout, formatter))
}

// AddJsonConsole 添加 JSON 格式的控制台日志
func (b *LoggingBuilder) AddJsonConsole() *LoggingBuilder {
	return b.AddProvider(NewWriterProvider(os.Stdout, NewJsonFormatter()))
}

// AddFile 添加文件日志（无颜色文本格式）
func (b *LoggingBuilder) AddFile(path string) *LoggingBuilder {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging: failed to open log file: %v\n", err)
		return b
	}
	return b.AddProvider(NewWriterProvider(file, NewTextFormatter()))
}

// Build 构建日志工厂
func (b *LoggingBuilder) Build() LoggerFactory {
	b.mu.RLock()
	defer b.mu.RUnlock()

	factory := &loggerFactory{
		providers:    make([]LoggerProvider, 0),
		minimumLevel: b.minimumLevel,
	}

	for _, provider := range b.providers {
		factory.AddProvider(provider)
	}

	return factory
}

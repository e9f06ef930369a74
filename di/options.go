package di

// registerSettings 注册时的可配置项。
type registerSettings struct {
	mode Mode
}

// Option 配置一次注册。
type Option func(*registerSettings)

// WithMode 设置提供者的解析模式。
func WithMode(mode Mode) Option {
	return func(s *registerSettings) {
		s.mode = mode
	}
}

// WithSingleton 将模式设置为单例（默认）。
func WithSingleton() Option {
	return WithMode(ModeSingleton)
}

// WithFactory 将模式设置为工厂：每次解析重新调用工厂函数。
// 要求注册目标是函数。
func WithFactory() Option {
	return WithMode(ModeFactory)
}

func applyOptions(opts []Option) registerSettings {
	settings := registerSettings{mode: ModeSingleton}
	for _, opt := range opts {
		opt(&settings)
	}
	return settings
}

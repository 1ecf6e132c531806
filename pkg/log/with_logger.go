package log

import "go.uber.org/atomic"

var (
	_ WithLogger   = &Binder{}
	_ LoggerBinder = &Binder{}
)

// WithLogger 用于访问组件自身的 Logger。
type WithLogger interface {
	Logger() *MLogger
}

// LoggerBinder 用于为组件设置 Logger。
type LoggerBinder interface {
	SetLogger(logger *MLogger)
}

// Binder 嵌入到 Mapper 等组件中，统一管理组件 Logger。
type Binder struct {
	logger atomic.Pointer[MLogger]
}

// SetLogger 绑定 Logger，传入 nil 表示恢复使用全局 Logger。
func (w *Binder) SetLogger(logger *MLogger) {
	w.logger.Store(logger)
}

// Logger 返回绑定的 Logger；尚未绑定时使用全局 Logger，
// 因此全局 Logger 被 ReplaceGlobals 替换后立即生效。
func (w *Binder) Logger() *MLogger {
	if l := w.logger.Load(); l != nil {
		return l
	}
	return NewMLogger(L())
}

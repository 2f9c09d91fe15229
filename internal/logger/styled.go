package logger

import (
	"fmt"
	"log/slog"

	"github.com/pterm/pterm"

	"github.com/clauderelay/proxypool/theme"
)

// StyledLogger wraps slog.Logger with theme-aware formatting for the handful
// of messages worth colouring on a TTY: which upstream is in play and what
// came of an attempt against it (§4.5, §9).
type StyledLogger struct {
	logger *slog.Logger
	theme  *theme.Theme
}

// NewStyledLogger creates a new styled logger with the given theme.
func NewStyledLogger(logger *slog.Logger, theme *theme.Theme) *StyledLogger {
	return &StyledLogger{
		logger: logger,
		theme:  theme,
	}
}

func (sl *StyledLogger) Debug(msg string, args ...any) {
	sl.logger.Debug(msg, args...)
}

func (sl *StyledLogger) Info(msg string, args ...any) {
	sl.logger.Info(msg, args...)
}

func (sl *StyledLogger) Warn(msg string, args ...any) {
	sl.logger.Warn(msg, args...)
}

func (sl *StyledLogger) Error(msg string, args ...any) {
	sl.logger.Error(msg, args...)
}

// InfoWithUpstream styles the upstream name with the theme's highlight
// colour, e.g. for "selected upstream" log lines.
func (sl *StyledLogger) InfoWithUpstream(msg string, upstreamName string, args ...any) {
	styledMsg := fmt.Sprintf("%s %s", msg, sl.theme.Highlight.Sprint(upstreamName))
	sl.logger.Info(styledMsg, args...)
}

// WarnWithUpstream is InfoWithUpstream's warn-level counterpart, used when an
// attempt against upstreamName soft-fails (§4.5 step 4).
func (sl *StyledLogger) WarnWithUpstream(msg string, upstreamName string, args ...any) {
	styledMsg := fmt.Sprintf("%s %s", msg, sl.theme.Warning.Sprint(upstreamName))
	sl.logger.Warn(styledMsg, args...)
}

// InfoDispatchSuccess reports a successful dispatch, colouring the upstream
// name and status code for quick scanning on a TTY.
func (sl *StyledLogger) InfoDispatchSuccess(upstreamName string, statusCode int, args ...any) {
	styledMsg := fmt.Sprintf("dispatch succeeded via %s %s",
		sl.theme.Highlight.Sprint(upstreamName),
		pterm.NewStyle(sl.theme.Good).Sprint(fmt.Sprintf("(%d)", statusCode)))
	sl.logger.Info(styledMsg, args...)
}

// InfoWithPenalty styles a health-map penalty value, used when logging
// penalty changes after RecordSuccess/RecordSoftFailure (§4.4).
func (sl *StyledLogger) InfoWithPenalty(msg string, upstreamName string, penalty int, args ...any) {
	styledMsg := fmt.Sprintf("%s %s penalty=%s", msg, sl.theme.Highlight.Sprint(upstreamName),
		pterm.NewStyle(sl.theme.Warning).Sprint(penalty))
	sl.logger.Info(styledMsg, args...)
}

// GetUnderlying returns the underlying slog.Logger for cases where direct
// access is needed.
func (sl *StyledLogger) GetUnderlying() *slog.Logger {
	return sl.logger
}

// WithAttrs creates a new StyledLogger with additional structured attributes.
func (sl *StyledLogger) WithAttrs(attrs ...slog.Attr) *StyledLogger {
	args := make([]any, 0, len(attrs)*2)
	for _, attr := range attrs {
		args = append(args, attr.Key, attr.Value)
	}

	return &StyledLogger{
		logger: sl.logger.With(args...),
		theme:  sl.theme,
	}
}

// With creates a new StyledLogger with additional key-value pairs.
func (sl *StyledLogger) With(args ...any) *StyledLogger {
	return &StyledLogger{
		logger: sl.logger.With(args...),
		theme:  sl.theme,
	}
}

// NewWithTheme creates both a regular logger and a styled logger.
func NewWithTheme(cfg *Config) (*slog.Logger, *StyledLogger, func(), error) {
	logger, cleanup, err := New(cfg)
	if err != nil {
		return nil, nil, nil, err
	}

	appTheme := theme.GetTheme(cfg.Theme)
	styledLogger := NewStyledLogger(logger, appTheme)

	return logger, styledLogger, cleanup, nil
}

package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
)

// TerminalChannel prints notifications to a terminal with colour per type.
type TerminalChannel struct {
	out     io.Writer
	enabled bool
	bell    bool
	mu      sync.Mutex

	achievement *color.Color
	levelUp     *color.Color
	errColor    *color.Color
	success     *color.Color
	info        *color.Color
}

// NewTerminalChannel creates a terminal channel writing to out
// (os.Stdout when nil).
func NewTerminalChannel(out io.Writer, colorEnabled bool) *TerminalChannel {
	if out == nil {
		out = os.Stdout
	}
	tc := &TerminalChannel{
		out:         out,
		enabled:     true,
		achievement: color.New(color.FgYellow, color.Bold),
		levelUp:     color.New(color.FgMagenta, color.Bold),
		errColor:    color.New(color.FgRed),
		success:     color.New(color.FgGreen),
		info:        color.New(color.FgCyan),
	}
	for _, c := range []*color.Color{tc.achievement, tc.levelUp, tc.errColor, tc.success, tc.info} {
		if colorEnabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return tc
}

// SetBellEnabled enables or disables the terminal bell on celebrations.
func (tc *TerminalChannel) SetBellEnabled(enabled bool) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.bell = enabled
}

// SetEnabled toggles the channel.
func (tc *TerminalChannel) SetEnabled(enabled bool) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.enabled = enabled
}

func (tc *TerminalChannel) Name() string { return "terminal" }

func (tc *TerminalChannel) IsEnabled() bool {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	return tc.enabled
}

// Send writes the notification as a title line, prefixed by its icon when
// it carries one, and an indented message.
func (tc *TerminalChannel) Send(_ context.Context, n Notification) error {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	c := tc.colorFor(n.Type)
	if tc.bell && (n.Type == NotificationAchievement || n.Type == NotificationLevelUp) {
		fmt.Fprint(tc.out, "\a")
	}
	title := n.Title
	if icon, _ := n.Data["icon"].(string); icon != "" {
		title = icon + " " + title
	}
	if _, err := c.Fprintln(tc.out, title); err != nil {
		return err
	}
	if n.Message != "" {
		if _, err := fmt.Fprintf(tc.out, "  %s\n", n.Message); err != nil {
			return err
		}
	}
	return nil
}

func (tc *TerminalChannel) colorFor(t NotificationType) *color.Color {
	switch t {
	case NotificationAchievement:
		return tc.achievement
	case NotificationLevelUp:
		return tc.levelUp
	case NotificationError:
		return tc.errColor
	case NotificationSuccess:
		return tc.success
	default:
		return tc.info
	}
}

// LogChannel writes notifications to a structured logger.
type LogChannel struct {
	logger zerolog.Logger
}

// NewLogChannel creates a channel that logs every notification.
func NewLogChannel(logger zerolog.Logger) *LogChannel {
	return &LogChannel{logger: logger.With().Str("component", "notify").Logger()}
}

func (lc *LogChannel) Name() string    { return "log" }
func (lc *LogChannel) IsEnabled() bool { return true }

func (lc *LogChannel) Send(_ context.Context, n Notification) error {
	event := lc.logger.Info()
	if n.Type == NotificationError {
		event = lc.logger.Warn()
	}
	event.
		Str("type", string(n.Type)).
		Str("variant", string(n.Variant)).
		Int64("duration_ms", n.DurationMillis()).
		Fields(n.Data).
		Msg(n.Title + ": " + n.Message)
	return nil
}

// Package notify provides notification functionality for the journal.
package notify

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"trade-journal/internal/config"
)

// Notifier defines the interface for sending notifications.
type Notifier interface {
	Send(ctx context.Context, n Notification) error
}

// NotificationChannel defines the interface for a notification channel.
type NotificationChannel interface {
	Name() string
	Send(ctx context.Context, n Notification) error
	IsEnabled() bool
}

// NotificationType represents the type of notification.
type NotificationType string

const (
	NotificationAchievement NotificationType = "achievement"
	NotificationLevelUp     NotificationType = "level_up"
	NotificationError       NotificationType = "error"
	NotificationSuccess     NotificationType = "success"
	NotificationInfo        NotificationType = "info"
)

// Variant is the presentation style of a notification.
type Variant string

const (
	VariantDefault     Variant = "default"
	VariantDestructive Variant = "destructive"
)

const (
	celebrationDuration = 5 * time.Second
	defaultDuration     = 3 * time.Second
)

// Notification represents a notification message.
type Notification struct {
	Type      NotificationType       `json:"type"`
	Title     string                 `json:"title"`
	Message   string                 `json:"message"`
	Variant   Variant                `json:"variant"`
	Duration  time.Duration          `json:"-"`
	Data      map[string]interface{} `json:"data,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// DurationMillis returns how long the message should stay visible.
func (n Notification) DurationMillis() int64 {
	return n.Duration.Milliseconds()
}

// AchievementUnlocked builds the notification shown when an achievement unlocks.
func AchievementUnlocked(id, title, description, icon string, xp int) Notification {
	return Notification{
		Type:     NotificationAchievement,
		Title:    "Achievement Unlocked: " + title,
		Message:  description,
		Variant:  VariantDefault,
		Duration: celebrationDuration,
		Data: map[string]interface{}{
			"achievement": id,
			"icon":        icon,
			"xp":          xp,
		},
	}
}

// LevelUp builds the notification shown when the user reaches a new level.
func LevelUp(level, xpToNext int) Notification {
	return Notification{
		Type:     NotificationLevelUp,
		Title:    "Level Up!",
		Message:  fmt.Sprintf("You've reached level %d! %d XP needed for next level.", level, xpToNext),
		Variant:  VariantDefault,
		Duration: celebrationDuration,
		Data: map[string]interface{}{
			"level":      level,
			"xp_to_next": xpToNext,
		},
	}
}

// Error builds a generic error notification.
func Error(message string) Notification {
	return Notification{
		Type:     NotificationError,
		Title:    "Error",
		Message:  message,
		Variant:  VariantDestructive,
		Duration: defaultDuration,
	}
}

// Success builds a generic success notification.
func Success(message string) Notification {
	return Notification{
		Type:     NotificationSuccess,
		Title:    "Success",
		Message:  message,
		Variant:  VariantDefault,
		Duration: defaultDuration,
	}
}

// Info builds a generic informational notification.
func Info(message string) Notification {
	return Notification{
		Type:     NotificationInfo,
		Title:    "Info",
		Message:  message,
		Variant:  VariantDefault,
		Duration: defaultDuration,
	}
}

// NotificationLevel represents the notification level filter.
type NotificationLevel string

const (
	LevelAll              NotificationLevel = "all"
	LevelAchievementsOnly NotificationLevel = "achievements_only"
	LevelErrorsOnly       NotificationLevel = "errors_only"
)

// MultiNotifier sends notifications to multiple channels.
type MultiNotifier struct {
	channels []NotificationChannel
	level    NotificationLevel
	enabled  bool
	mu       sync.RWMutex
}

// NewMultiNotifier creates a new MultiNotifier with the given configuration.
// The webhook channel is added when configured; other channels are attached
// by the caller with AddChannel.
func NewMultiNotifier(cfg *config.NotificationConfig) *MultiNotifier {
	mn := &MultiNotifier{
		channels: make([]NotificationChannel, 0),
		level:    NotificationLevel(cfg.Level),
		enabled:  cfg.Enabled,
	}

	if mn.level == "" {
		mn.level = LevelAll
	}

	if cfg.Webhook.Enabled {
		mn.channels = append(mn.channels, NewWebhookNotifier(cfg.Webhook))
	}

	return mn
}

// Webhook returns the webhook channel, if one is configured.
func (mn *MultiNotifier) Webhook() (*WebhookNotifier, bool) {
	mn.mu.RLock()
	defer mn.mu.RUnlock()
	for _, ch := range mn.channels {
		if w, ok := ch.(*WebhookNotifier); ok {
			return w, true
		}
	}
	return nil, false
}

// AddChannel adds a notification channel.
func (mn *MultiNotifier) AddChannel(ch NotificationChannel) {
	mn.mu.Lock()
	defer mn.mu.Unlock()
	mn.channels = append(mn.channels, ch)
}

// Channels returns the names of the attached channels.
func (mn *MultiNotifier) Channels() []string {
	mn.mu.RLock()
	defer mn.mu.RUnlock()
	names := make([]string, 0, len(mn.channels))
	for _, ch := range mn.channels {
		names = append(names, ch.Name())
	}
	return names
}

// shouldSend checks if a notification should be sent based on the level filter.
func (mn *MultiNotifier) shouldSend(notifType NotificationType) bool {
	switch mn.level {
	case LevelAchievementsOnly:
		return notifType == NotificationAchievement || notifType == NotificationLevelUp
	case LevelErrorsOnly:
		return notifType == NotificationError
	default:
		return true
	}
}

// Send sends a notification to all enabled channels.
func (mn *MultiNotifier) Send(ctx context.Context, n Notification) error {
	if !mn.enabled || !mn.shouldSend(n.Type) {
		return nil
	}

	if n.Timestamp.IsZero() {
		n.Timestamp = time.Now()
	}

	mn.mu.RLock()
	channels := mn.channels
	mn.mu.RUnlock()

	var errs []string
	for _, ch := range channels {
		if ch.IsEnabled() {
			if err := ch.Send(ctx, n); err != nil {
				errs = append(errs, fmt.Sprintf("%s: %v", ch.Name(), err))
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("notification errors: %s", strings.Join(errs, "; "))
	}
	return nil
}

// Recorder keeps every notification it receives. It is useful as a channel
// in tests and as an in-memory feed for the API.
type Recorder struct {
	mu    sync.Mutex
	items []Notification
	limit int
}

// NewRecorder creates a recorder keeping at most limit notifications
// (0 = unbounded).
func NewRecorder(limit int) *Recorder {
	return &Recorder{limit: limit}
}

func (r *Recorder) Name() string    { return "recorder" }
func (r *Recorder) IsEnabled() bool { return true }

// Send records n.
func (r *Recorder) Send(_ context.Context, n Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, n)
	if r.limit > 0 && len(r.items) > r.limit {
		r.items = r.items[len(r.items)-r.limit:]
	}
	return nil
}

// All returns a copy of the recorded notifications, oldest first.
func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.items...)
}

// OfType returns recorded notifications of the given type.
func (r *Recorder) OfType(t NotificationType) []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Notification
	for _, n := range r.items {
		if n.Type == t {
			out = append(out, n)
		}
	}
	return out
}

// Reset drops all recorded notifications.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = nil
}

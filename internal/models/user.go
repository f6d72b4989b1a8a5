package models

// Theme is the UI colour scheme preference.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// FeedbackFrequency controls how often trade feedback is delivered.
type FeedbackFrequency string

const (
	FeedbackImmediate FeedbackFrequency = "immediate"
	FeedbackDaily     FeedbackFrequency = "daily"
	FeedbackWeekly    FeedbackFrequency = "weekly"
)

// User is the journal owner's identity and progression state.
type User struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	Email      string       `json:"email"`
	Level      int          `json:"level"`
	Experience int          `json:"experience"`
	Badges     []string     `json:"badges"`
	Settings   UserSettings `json:"settings"`
}

// UserSettings holds user preferences.
type UserSettings struct {
	Theme             Theme             `json:"theme"`
	Notifications     bool              `json:"notifications"`
	FeedbackFrequency FeedbackFrequency `json:"feedback_frequency"`
	DefaultPlaybook   string            `json:"default_playbook,omitempty"`
}

// DefaultSettings returns the settings a new user starts with.
func DefaultSettings() UserSettings {
	return UserSettings{
		Theme:             ThemeDark,
		Notifications:     true,
		FeedbackFrequency: FeedbackImmediate,
	}
}

// SettingsUpdate is a partial settings edit.
type SettingsUpdate struct {
	Theme             *Theme             `json:"theme,omitempty"`
	Notifications     *bool              `json:"notifications,omitempty"`
	FeedbackFrequency *FeedbackFrequency `json:"feedback_frequency,omitempty"`
	DefaultPlaybook   *string            `json:"default_playbook,omitempty"`
}

// Apply merges u into s.
func (u SettingsUpdate) Apply(s *UserSettings) {
	if u.Theme != nil {
		s.Theme = *u.Theme
	}
	if u.Notifications != nil {
		s.Notifications = *u.Notifications
	}
	if u.FeedbackFrequency != nil {
		s.FeedbackFrequency = *u.FeedbackFrequency
	}
	if u.DefaultPlaybook != nil {
		s.DefaultPlaybook = *u.DefaultPlaybook
	}
}

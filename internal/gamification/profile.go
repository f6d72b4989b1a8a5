package gamification

import (
	"sort"

	"trade-journal/internal/models"
)

// LevelChange describes the effect of an experience grant.
type LevelChange struct {
	From       int `json:"from"`
	To         int `json:"to"`
	Experience int `json:"experience"`
}

// LeveledUp reports whether the grant crossed at least one level boundary.
func (c LevelChange) LeveledUp() bool {
	return c.To > c.From
}

// Profile owns the user's progression state.
type Profile struct {
	user models.User
}

// NewProfile wraps u, deriving its level and deduplicating badges.
func NewProfile(u models.User) *Profile {
	p := &Profile{user: u}
	if p.user.Experience < 0 {
		p.user.Experience = 0
	}
	p.user.Level = CalculateLevel(p.user.Experience)
	p.user.Badges = dedupe(u.Badges)
	if p.user.Settings.Theme == "" {
		p.user.Settings.Theme = models.DefaultSettings().Theme
	}
	if p.user.Settings.FeedbackFrequency == "" {
		p.user.Settings.FeedbackFrequency = models.DefaultSettings().FeedbackFrequency
	}
	return p
}

// User returns a copy of the profile.
func (p *Profile) User() models.User {
	u := p.user
	u.Badges = append([]string(nil), p.user.Badges...)
	return u
}

// Level returns the current level.
func (p *Profile) Level() int {
	return p.user.Level
}

// Experience returns the accumulated experience.
func (p *Profile) Experience() int {
	return p.user.Experience
}

// AddExperience adds amount and recomputes the level. Non-positive amounts
// leave the profile unchanged.
func (p *Profile) AddExperience(amount int) LevelChange {
	from := p.user.Level
	if amount > 0 {
		p.user.Experience += amount
		p.user.Level = CalculateLevel(p.user.Experience)
	}
	return LevelChange{From: from, To: p.user.Level, Experience: p.user.Experience}
}

// AddBadge adds name if absent and reports whether it was added.
func (p *Profile) AddBadge(name string) bool {
	if name == "" || p.HasBadge(name) {
		return false
	}
	p.user.Badges = append(p.user.Badges, name)
	return true
}

// RemoveBadge removes name and reports whether it was present.
func (p *Profile) RemoveBadge(name string) bool {
	for i, b := range p.user.Badges {
		if b == name {
			p.user.Badges = append(p.user.Badges[:i], p.user.Badges[i+1:]...)
			return true
		}
	}
	return false
}

// HasBadge reports whether the profile holds name.
func (p *Profile) HasBadge(name string) bool {
	for _, b := range p.user.Badges {
		if b == name {
			return true
		}
	}
	return false
}

// UpdateSettings merges u into the settings and returns the result.
func (p *Profile) UpdateSettings(u models.SettingsUpdate) models.UserSettings {
	u.Apply(&p.user.Settings)
	return p.user.Settings
}

// UpdateIdentity sets the name and email when non-empty.
func (p *Profile) UpdateIdentity(name, email string) {
	if name != "" {
		p.user.Name = name
	}
	if email != "" {
		p.user.Email = email
	}
}

func dedupe(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	var out []string
	for _, it := range items {
		if it == "" {
			continue
		}
		if _, ok := seen[it]; ok {
			continue
		}
		seen[it] = struct{}{}
		out = append(out, it)
	}
	return out
}

// SortedBadges returns the badges in lexical order.
func (p *Profile) SortedBadges() []string {
	out := append([]string(nil), p.user.Badges...)
	sort.Strings(out)
	return out
}

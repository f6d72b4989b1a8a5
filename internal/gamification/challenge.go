package gamification

import (
	apperrors "trade-journal/internal/errors"
)

// RewardType is what completing a challenge pays out.
type RewardType string

const (
	RewardPoints  RewardType = "points"
	RewardBadge   RewardType = "badge"
	RewardFeature RewardType = "feature"
)

// Reward is a challenge payout. Points is used for RewardPoints, Value for
// badges and feature tags.
type Reward struct {
	Type   RewardType `json:"type"`
	Points int        `json:"points,omitempty"`
	Value  string     `json:"value,omitempty"`
}

// Challenge is a numeric goal for a cadence.
type Challenge struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Cadence     Cadence `json:"cadence"`
	Target      int     `json:"target"`
	Progress    int     `json:"progress"`
	Reward      Reward  `json:"reward"`
	Completed   bool    `json:"completed"`
	Rewarded    bool    `json:"rewarded"`
}

// Percent returns progress toward the target, capped at 100.
func (c Challenge) Percent() float64 {
	if c.Target <= 0 {
		return 100
	}
	p := float64(c.Progress) / float64(c.Target) * 100
	if p > 100 {
		return 100
	}
	return p
}

// DefaultChallenges returns the seeded catalog.
func DefaultChallenges() []Challenge {
	return []Challenge{
		{
			ID:          "challenge-1",
			Title:       "Consistent Trader",
			Description: "Complete 5 trades following your playbook",
			Cadence:     CadenceWeekly,
			Target:      5,
			Reward:      Reward{Type: RewardPoints, Points: 100},
		},
		{
			ID:          "challenge-2",
			Title:       "Risk Manager",
			Description: "Maintain proper risk management for 10 trades",
			Cadence:     CadenceMonthly,
			Target:      10,
			Reward:      Reward{Type: RewardBadge, Value: "risk-manager"},
		},
		{
			ID:          "challenge-3",
			Title:       "Daily Logger",
			Description: "Log at least one trade for 7 consecutive days",
			Cadence:     CadenceWeekly,
			Target:      7,
			Reward:      Reward{Type: RewardPoints, Points: 50},
		},
	}
}

// Challenges holds the challenge catalog and its progress.
type Challenges struct {
	items []Challenge
}

// NewChallenges creates the seeded catalog with zero progress.
func NewChallenges() *Challenges {
	return &Challenges{items: DefaultChallenges()}
}

// Load restores saved progress onto the catalog. Unknown ids are ignored.
func (c *Challenges) Load(saved []Challenge) {
	for _, s := range saved {
		for i := range c.items {
			if c.items[i].ID != s.ID {
				continue
			}
			c.items[i].Progress = s.Progress
			c.items[i].Completed = s.Progress >= c.items[i].Target
			c.items[i].Rewarded = s.Rewarded
		}
	}
}

// All returns a copy of the challenges.
func (c *Challenges) All() []Challenge {
	return append([]Challenge(nil), c.items...)
}

// Get returns the challenge with the given id.
func (c *Challenges) Get(id string) (Challenge, bool) {
	for _, ch := range c.items {
		if ch.ID == id {
			return ch, true
		}
	}
	return Challenge{}, false
}

// SetProgress sets the progress of a challenge and recomputes Completed.
// The reward is returned only the first time the challenge completes.
func (c *Challenges) SetProgress(id string, value int) (Challenge, *Reward, error) {
	if value < 0 {
		return Challenge{}, nil, apperrors.NewValidationError("progress", value, "must not be negative")
	}
	for i := range c.items {
		ch := &c.items[i]
		if ch.ID != id {
			continue
		}
		ch.Progress = value
		ch.Completed = ch.Progress >= ch.Target

		var reward *Reward
		if ch.Completed && !ch.Rewarded {
			ch.Rewarded = true
			r := ch.Reward
			reward = &r
		}
		return *ch, reward, nil
	}
	return Challenge{}, nil, apperrors.ChallengeNotFound(id)
}

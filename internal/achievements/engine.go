package achievements

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"trade-journal/internal/gamification"
	"trade-journal/internal/kv"
	"trade-journal/internal/logging"
	"trade-journal/internal/models"
	"trade-journal/internal/notify"
)

// UnlockedKey is the key-value entry holding the unlocked ids as a JSON list.
const UnlockedKey = "unlocked_achievements"

// Rewarder receives the experience and badge of an unlocked achievement.
type Rewarder interface {
	AddExperience(amount int) gamification.LevelChange
	AddBadge(name string) bool
}

// Status pairs a catalog entry with its unlock state and progress.
type Status struct {
	Achievement
	Unlocked bool    `json:"unlocked"`
	Progress float64 `json:"progress"`
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the clock used for month boundaries.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithCatalog replaces the built-in catalog.
func WithCatalog(c []Achievement) Option {
	return func(e *Engine) { e.catalog = append([]Achievement(nil), c...) }
}

// Engine tracks unlocked achievements and grants their rewards.
type Engine struct {
	store    kv.Store
	rewarder Rewarder
	notifier notify.Notifier
	logger   zerolog.Logger
	now      func() time.Time
	catalog  []Achievement

	unlocked map[string]struct{}
	order    []string
}

// NewEngine creates an engine and loads the unlocked set from store. Load
// failures are logged and the set starts empty. rewarder and notifier may
// be nil.
func NewEngine(ctx context.Context, store kv.Store, rewarder Rewarder, notifier notify.Notifier, logger zerolog.Logger, opts ...Option) *Engine {
	e := &Engine{
		store:    store,
		rewarder: rewarder,
		notifier: notifier,
		logger:   logging.WithComponent(logger, "achievements"),
		now:      time.Now,
		catalog:  Catalog(),
		unlocked: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.load(ctx)
	return e
}

func (e *Engine) load(ctx context.Context) {
	if e.store == nil {
		return
	}
	raw, ok, err := e.store.Get(ctx, UnlockedKey)
	if err != nil {
		e.logger.Warn().Err(err).Msg("Failed to load unlocked achievements")
		return
	}
	if !ok || raw == "" {
		return
	}
	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		e.logger.Warn().Err(err).Msg("Ignoring corrupt unlocked achievements")
		return
	}
	for _, id := range ids {
		e.mark(id)
	}
}

func (e *Engine) mark(id string) bool {
	if _, ok := e.unlocked[id]; ok {
		return false
	}
	e.unlocked[id] = struct{}{}
	e.order = append(e.order, id)
	return true
}

func (e *Engine) persist(ctx context.Context) {
	if e.store == nil {
		return
	}
	raw, err := json.Marshal(e.order)
	if err != nil {
		e.logger.Error().Err(err).Msg("Failed to encode unlocked achievements")
		return
	}
	if err := e.store.Set(ctx, UnlockedKey, string(raw)); err != nil {
		e.logger.Error().Err(err).Msg("Failed to save unlocked achievements")
	}
}

// Check evaluates every locked achievement in catalog order and unlocks
// those whose rule now holds. It returns the newly unlocked achievements.
func (e *Engine) Check(ctx context.Context, trades []models.Trade) []Achievement {
	now := e.now()
	var unlocked []Achievement
	for _, a := range e.catalog {
		if e.IsUnlocked(a.ID) {
			continue
		}
		ok, err := evaluate(a.Rule, trades, now)
		if err != nil {
			l := logging.WithAchievement(e.logger, a.ID)
			l.Error().Err(err).Msg("Achievement rule failed")
			continue
		}
		if ok {
			e.unlock(ctx, a)
			unlocked = append(unlocked, a)
		}
	}
	return unlocked
}

// evaluate runs one rule, turning a panic into an error.
func evaluate(r Rule, trades []models.Trade, now time.Time) (ok bool, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("rule %s panicked: %v", r.Kind, rec)
		}
	}()
	return r.Satisfied(trades, now), nil
}

func (e *Engine) unlock(ctx context.Context, a Achievement) {
	e.mark(a.ID)
	e.persist(ctx)
	logging.LogUnlock(e.logger, a.ID, a.Title, a.XPReward)

	var change gamification.LevelChange
	if e.rewarder != nil {
		change = e.rewarder.AddExperience(a.XPReward)
		if a.Badge != "" {
			e.rewarder.AddBadge(a.Badge)
		}
	}

	e.send(ctx, notify.AchievementUnlocked(a.ID, a.Title, a.Description, a.Icon, a.XPReward))

	if change.LeveledUp() {
		logging.LogLevelUp(e.logger, change.From, change.To, change.Experience)
		e.send(ctx, notify.LevelUp(change.To, gamification.ExperienceToNextLevel(change.Experience)))
	}
}

func (e *Engine) send(ctx context.Context, n notify.Notification) {
	if e.notifier == nil {
		return
	}
	if err := e.notifier.Send(ctx, n); err != nil {
		e.logger.Warn().Err(err).Str("title", n.Title).Msg("Notification failed")
	}
}

// IsUnlocked reports whether id has been unlocked.
func (e *Engine) IsUnlocked(id string) bool {
	_, ok := e.unlocked[id]
	return ok
}

// UnlockedIDs returns the unlocked ids in unlock order.
func (e *Engine) UnlockedIDs() []string {
	return append([]string(nil), e.order...)
}

// Catalog returns the engine's achievement definitions.
func (e *Engine) Catalog() []Achievement {
	return append([]Achievement(nil), e.catalog...)
}

// ByID returns the achievement with the given id.
func (e *Engine) ByID(id string) (Achievement, bool) {
	for _, a := range e.catalog {
		if a.ID == id {
			return a, true
		}
	}
	return Achievement{}, false
}

// ByCategory returns the achievements in category c.
func (e *Engine) ByCategory(c Category) []Achievement {
	var out []Achievement
	for _, a := range e.catalog {
		if a.Category == c {
			out = append(out, a)
		}
	}
	return out
}

// ByDifficulty returns the achievements of difficulty d.
func (e *Engine) ByDifficulty(d Difficulty) []Achievement {
	var out []Achievement
	for _, a := range e.catalog {
		if a.Difficulty == d {
			out = append(out, a)
		}
	}
	return out
}

// Progress returns the completion percentage of id for trades. Unknown ids
// and failing rules report 0.
func (e *Engine) Progress(id string, trades []models.Trade) (p float64) {
	a, ok := e.ByID(id)
	if !ok {
		return 0
	}
	defer func() {
		if rec := recover(); rec != nil {
			p = 0
		}
	}()
	return a.Rule.Progress(trades, e.now())
}

// Statuses returns every achievement with its unlock state and progress.
// Unlocked achievements report 100.
func (e *Engine) Statuses(trades []models.Trade) []Status {
	out := make([]Status, 0, len(e.catalog))
	for _, a := range e.catalog {
		s := Status{Achievement: a, Unlocked: e.IsUnlocked(a.ID)}
		if s.Unlocked {
			s.Progress = 100
		} else {
			s.Progress = e.Progress(a.ID, trades)
		}
		out = append(out, s)
	}
	return out
}

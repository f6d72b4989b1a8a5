// Package service wires the trade journal, the achievement engine and the
// gamification state into one application object.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"trade-journal/internal/achievements"
	apperrors "trade-journal/internal/errors"
	"trade-journal/internal/gamification"
	"trade-journal/internal/journal"
	"trade-journal/internal/logging"
	"trade-journal/internal/models"
	"trade-journal/internal/notify"
	"trade-journal/internal/store"
)

// Key-value entries holding gamification state.
const (
	StreaksKey        = "streaks"
	ChallengesKey     = "challenges"
	ActivePlaybookKey = "active_playbook"
)

// Options configures Open.
type Options struct {
	// Data is the durable store. Required.
	Data store.DataStore
	// Notifier receives unlock, level-up and status notifications. May be nil.
	Notifier notify.Notifier
	Logger   zerolog.Logger
	// ProfileID selects the profile row; defaults to "1".
	ProfileID string
	// Name and Email seed a profile created on first run.
	Name  string
	Email string
	// Clock overrides time.Now.
	Clock func() time.Time
}

// TradeResult is the outcome of a trade mutation.
type TradeResult struct {
	Trade    models.Trade               `json:"trade"`
	Unlocked []achievements.Achievement `json:"unlocked,omitempty"`
	Streaks  []gamification.Streak      `json:"streaks"`
}

// Journal is the application object. All methods are safe for concurrent
// use; the packages it wires are not.
type Journal struct {
	mu sync.Mutex

	data       store.DataStore
	trades     *journal.TradeBook
	playbooks  *journal.PlaybookBook
	engine     *achievements.Engine
	profile    *gamification.Profile
	streaks    *gamification.Streaks
	challenges *gamification.Challenges
	notifier   notify.Notifier
	logger     zerolog.Logger
	now        func() time.Time

	// unlocked collects what the change hook unlocked during one mutation.
	unlocked []achievements.Achievement
}

// Open loads the journal from opts.Data.
func Open(ctx context.Context, opts Options) (*Journal, error) {
	if opts.Data == nil {
		return nil, fmt.Errorf("service: data store is required")
	}
	if opts.ProfileID == "" {
		opts.ProfileID = "1"
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}

	j := &Journal{
		data:       opts.Data,
		notifier:   opts.Notifier,
		logger:     logging.WithComponent(opts.Logger, "journal"),
		now:        opts.Clock,
		trades:     journal.NewTradeBook(opts.Data),
		playbooks:  journal.NewPlaybookBook(opts.Data),
		streaks:    gamification.NewStreaks(),
		challenges: gamification.NewChallenges(),
	}
	j.trades.SetClock(opts.Clock)
	j.playbooks.SetClock(opts.Clock)
	j.streaks.SetClock(opts.Clock)

	trades, err := opts.Data.GetTrades(ctx, store.TradeFilter{})
	if err != nil {
		return nil, apperrors.Wrap(err, "loading trades")
	}
	j.trades.Load(trades)

	playbooks, err := opts.Data.GetPlaybooks(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, "loading playbooks")
	}
	activeID, _, err := opts.Data.Get(ctx, ActivePlaybookKey)
	if err != nil {
		j.logger.Warn().Err(err).Msg("Failed to load active playbook")
	}
	j.playbooks.Load(playbooks, activeID)

	user, err := opts.Data.GetUser(ctx, opts.ProfileID)
	switch {
	case err == nil:
		j.profile = gamification.NewProfile(*user)
	case apperrors.Is(err, apperrors.ErrDataNotFound):
		j.profile = gamification.NewProfile(models.User{
			ID:       opts.ProfileID,
			Name:     opts.Name,
			Email:    opts.Email,
			Settings: models.DefaultSettings(),
		})
	default:
		return nil, apperrors.Wrap(err, "loading profile")
	}

	var streaks []gamification.Streak
	if j.loadJSON(ctx, StreaksKey, &streaks) {
		j.streaks.Load(streaks)
	}
	var challenges []gamification.Challenge
	if j.loadJSON(ctx, ChallengesKey, &challenges) {
		j.challenges.Load(challenges)
	}

	j.engine = achievements.NewEngine(ctx, opts.Data, j.profile, notifierFunc(j.notify), opts.Logger,
		achievements.WithClock(opts.Clock))
	j.trades.OnChange(func(ctx context.Context, trades []models.Trade) {
		j.unlocked = append(j.unlocked, j.engine.Check(ctx, trades)...)
	})

	j.logger.Debug().
		Int("trades", len(trades)).
		Int("playbooks", len(playbooks)).
		Int("level", j.profile.Level()).
		Msg("Journal loaded")
	return j, nil
}

// Close closes the data store.
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.data.Close()
}

// Ping checks that the data store answers a read.
func (j *Journal) Ping(ctx context.Context) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if _, _, err := j.data.Get(ctx, ActivePlaybookKey); err != nil {
		return apperrors.Wrap(err, "pinging store")
	}
	return nil
}

// notifierFunc adapts a function to notify.Notifier.
type notifierFunc func(ctx context.Context, n notify.Notification) error

func (f notifierFunc) Send(ctx context.Context, n notify.Notification) error { return f(ctx, n) }

// notify forwards n unless the profile has notifications turned off.
func (j *Journal) notify(ctx context.Context, n notify.Notification) error {
	if j.notifier == nil || !j.profile.User().Settings.Notifications {
		return nil
	}
	return j.notifier.Send(ctx, n)
}

func (j *Journal) send(ctx context.Context, n notify.Notification) {
	if err := j.notify(ctx, n); err != nil {
		j.logger.Warn().Err(err).Str("title", n.Title).Msg("Notification failed")
	}
}

func (j *Journal) loadJSON(ctx context.Context, key string, v interface{}) bool {
	raw, ok, err := j.data.Get(ctx, key)
	if err != nil {
		j.logger.Warn().Err(err).Str("key", key).Msg("Failed to load state")
		return false
	}
	if !ok || raw == "" {
		return false
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		j.logger.Warn().Err(err).Str("key", key).Msg("Ignoring corrupt state")
		return false
	}
	return true
}

func (j *Journal) saveJSON(ctx context.Context, key string, v interface{}) {
	raw, err := json.Marshal(v)
	if err == nil {
		err = j.data.Set(ctx, key, string(raw))
	}
	if err != nil {
		j.logger.Error().Err(err).Str("key", key).Msg("Failed to save state")
	}
}

// persist saves profile, streaks and challenges. Failures are logged.
func (j *Journal) persist(ctx context.Context) {
	u := j.profile.User()
	if err := j.data.SaveUser(ctx, &u); err != nil {
		j.logger.Error().Err(err).Msg("Failed to save profile")
	}
	j.saveJSON(ctx, StreaksKey, j.streaks.All())
	j.saveJSON(ctx, ChallengesKey, j.challenges.All())
}

// refreshStreaks updates the daily and weekly streaks from the trade history.
func (j *Journal) refreshStreaks() []gamification.Streak {
	trades := j.trades.All()
	for _, c := range []gamification.Cadence{gamification.CadenceDaily, gamification.CadenceWeekly} {
		// Update only rejects unknown cadences.
		_, _ = j.streaks.Update(c, trades)
	}
	return j.streaks.All()
}

// afterMutation runs the shared tail of every trade mutation.
func (j *Journal) afterMutation(ctx context.Context, t models.Trade) TradeResult {
	res := TradeResult{Trade: t, Unlocked: j.unlocked}
	j.unlocked = nil
	res.Streaks = j.refreshStreaks()
	j.persist(ctx)
	return res
}

func (j *Journal) mutationFailed(ctx context.Context, err error) error {
	if apperrors.Is(err, apperrors.ErrStorage) {
		j.logger.Error().Err(err).Msg("Trade storage failed")
		j.send(ctx, notify.Error(err.Error()))
	}
	j.unlocked = nil
	return err
}

// AddTrade logs a trade, runs the achievement engine and updates streaks.
func (j *Journal) AddTrade(ctx context.Context, in models.TradeInput) (TradeResult, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	t, err := j.trades.Add(ctx, in)
	if err != nil {
		return TradeResult{}, j.mutationFailed(ctx, err)
	}
	logging.LogTrade(j.logger, "added", t.ID, t.Symbol, string(t.Direction), t.Profit)
	return j.afterMutation(ctx, t), nil
}

// UpdateTrade edits a trade, runs the achievement engine and updates streaks.
func (j *Journal) UpdateTrade(ctx context.Context, id string, u models.TradeUpdate) (TradeResult, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	t, err := j.trades.Update(ctx, id, u)
	if err != nil {
		return TradeResult{}, j.mutationFailed(ctx, err)
	}
	logging.LogTrade(j.logger, "updated", t.ID, t.Symbol, string(t.Direction), t.Profit)
	return j.afterMutation(ctx, t), nil
}

// DeleteTrade removes a trade. Achievements stay unlocked.
func (j *Journal) DeleteTrade(ctx context.Context, id string) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	t, ok := j.trades.Get(id)
	if err := j.trades.Delete(ctx, id); err != nil {
		return j.mutationFailed(ctx, err)
	}
	if ok {
		logging.LogTrade(j.logger, "deleted", t.ID, t.Symbol, string(t.Direction), t.Profit)
	}
	j.afterMutation(ctx, t)
	return nil
}

// GetTrade returns one trade.
func (j *Journal) GetTrade(id string) (models.Trade, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	t, ok := j.trades.Get(id)
	if !ok {
		return models.Trade{}, apperrors.TradeNotFound(id)
	}
	return t, nil
}

// Trades returns the trades matching filter in journal order. A positive
// Limit keeps the most recent trades.
func (j *Journal) Trades(filter store.TradeFilter) []models.Trade {
	j.mu.Lock()
	defer j.mu.Unlock()

	var out []models.Trade
	for _, t := range j.trades.All() {
		if filter.Matches(t) {
			out = append(out, t)
		}
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[len(out)-filter.Limit:]
	}
	return out
}

// allTrades returns the full history. Callers hold j.mu.
func (j *Journal) allTrades() []models.Trade {
	return j.trades.All()
}

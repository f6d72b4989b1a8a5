package store

import (
	"context"
	"encoding/json"

	apperrors "trade-journal/internal/errors"
	"trade-journal/internal/kv"
	"trade-journal/internal/models"
)

// Keys used by KVStore for its collections.
const (
	TradesKey    = "trades"
	PlaybooksKey = "playbooks"
	UserKey      = "user_profile"
)

// KVStore implements DataStore on top of a flat kv.Store by keeping each
// collection as one JSON document. It backs the memory, file and redis
// storage backends.
type KVStore struct {
	kv.Store
	backend string
}

// NewKVStore wraps s. backend names the store in errors.
func NewKVStore(s kv.Store, backend string) *KVStore {
	return &KVStore{Store: s, backend: backend}
}

func (s *KVStore) readTrades(ctx context.Context) ([]models.Trade, error) {
	var trades []models.Trade
	if err := s.readJSON(ctx, TradesKey, &trades); err != nil {
		return nil, err
	}
	return trades, nil
}

func (s *KVStore) readJSON(ctx context.Context, key string, v interface{}) error {
	raw, ok, err := s.Store.Get(ctx, key)
	if err != nil {
		return apperrors.NewStorageError(s.backend, "get", key, err)
	}
	if !ok || raw == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return apperrors.NewStorageError(s.backend, "decode", key, err)
	}
	return nil
}

func (s *KVStore) writeJSON(ctx context.Context, key string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return apperrors.NewStorageError(s.backend, "encode", key, err)
	}
	if err := s.Store.Set(ctx, key, string(raw)); err != nil {
		return apperrors.NewStorageError(s.backend, "set", key, err)
	}
	return nil
}

// SaveTrade inserts or replaces a trade.
func (s *KVStore) SaveTrade(ctx context.Context, t *models.Trade) error {
	trades, err := s.readTrades(ctx)
	if err != nil {
		return err
	}
	replaced := false
	for i := range trades {
		if trades[i].ID == t.ID {
			trades[i] = t.Clone()
			replaced = true
			break
		}
	}
	if !replaced {
		trades = append(trades, t.Clone())
	}
	return s.writeJSON(ctx, TradesKey, trades)
}

// DeleteTrade removes a trade. Missing ids are ignored.
func (s *KVStore) DeleteTrade(ctx context.Context, id string) error {
	trades, err := s.readTrades(ctx)
	if err != nil {
		return err
	}
	kept := trades[:0]
	for _, t := range trades {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	return s.writeJSON(ctx, TradesKey, kept)
}

// GetTrade returns a trade by id.
func (s *KVStore) GetTrade(ctx context.Context, id string) (*models.Trade, error) {
	trades, err := s.readTrades(ctx)
	if err != nil {
		return nil, err
	}
	for _, t := range trades {
		if t.ID == id {
			return &t, nil
		}
	}
	return nil, apperrors.TradeNotFound(id)
}

// GetTrades returns the trades matching filter in the order they were
// first saved.
func (s *KVStore) GetTrades(ctx context.Context, filter TradeFilter) ([]models.Trade, error) {
	trades, err := s.readTrades(ctx)
	if err != nil {
		return nil, err
	}
	var out []models.Trade
	for _, t := range trades {
		if filter.Matches(t) {
			out = append(out, t)
		}
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

// SavePlaybook inserts or replaces a playbook.
func (s *KVStore) SavePlaybook(ctx context.Context, p *models.Playbook) error {
	playbooks, err := s.GetPlaybooks(ctx)
	if err != nil {
		return err
	}
	replaced := false
	for i := range playbooks {
		if playbooks[i].ID == p.ID {
			playbooks[i] = *p
			replaced = true
			break
		}
	}
	if !replaced {
		playbooks = append(playbooks, *p)
	}
	return s.writeJSON(ctx, PlaybooksKey, playbooks)
}

// DeletePlaybook removes a playbook. Missing ids are ignored.
func (s *KVStore) DeletePlaybook(ctx context.Context, id string) error {
	playbooks, err := s.GetPlaybooks(ctx)
	if err != nil {
		return err
	}
	kept := playbooks[:0]
	for _, p := range playbooks {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	return s.writeJSON(ctx, PlaybooksKey, kept)
}

// GetPlaybooks returns all playbooks in insertion order.
func (s *KVStore) GetPlaybooks(ctx context.Context) ([]models.Playbook, error) {
	var playbooks []models.Playbook
	if err := s.readJSON(ctx, PlaybooksKey, &playbooks); err != nil {
		return nil, err
	}
	return playbooks, nil
}

// SaveUser stores the single journal profile.
func (s *KVStore) SaveUser(ctx context.Context, u *models.User) error {
	return s.writeJSON(ctx, UserKey, u)
}

// GetUser returns the stored profile if its id matches.
func (s *KVStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	var u *models.User
	if err := s.readJSON(ctx, UserKey, &u); err != nil {
		return nil, err
	}
	if u == nil || u.ID != id {
		return nil, apperrors.Wrapf(apperrors.ErrDataNotFound, "profile %q", id)
	}
	return u, nil
}

// Close closes the underlying store if it holds resources.
func (s *KVStore) Close() error {
	if c, ok := s.Store.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}

// Matches reports whether t passes the filter. Limit is ignored.
func (f TradeFilter) Matches(t models.Trade) bool {
	if f.Symbol != "" && f.Symbol != t.Symbol {
		return false
	}
	if f.Strategy != "" && f.Strategy != t.Strategy {
		return false
	}
	if f.Direction != "" && f.Direction != t.Direction {
		return false
	}
	if !f.StartDate.IsZero() && t.Timestamp.Before(f.StartDate) {
		return false
	}
	if !f.EndDate.IsZero() && t.Timestamp.After(f.EndDate) {
		return false
	}
	return true
}

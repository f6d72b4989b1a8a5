// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"time"

	"trade-journal/internal/kv"
	"trade-journal/internal/models"
)

// DataStore defines the interface for durable journal persistence.
type DataStore interface {
	// Trades
	SaveTrade(ctx context.Context, trade *models.Trade) error
	DeleteTrade(ctx context.Context, id string) error
	GetTrade(ctx context.Context, id string) (*models.Trade, error)
	GetTrades(ctx context.Context, filter TradeFilter) ([]models.Trade, error)

	// Playbooks
	SavePlaybook(ctx context.Context, playbook *models.Playbook) error
	DeletePlaybook(ctx context.Context, id string) error
	GetPlaybooks(ctx context.Context) ([]models.Playbook, error)

	// Profile
	SaveUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id string) (*models.User, error)

	// Key-value state
	kv.Store

	// Lifecycle
	Close() error
}

// TradeFilter represents filters for querying trades.
type TradeFilter struct {
	Symbol    string
	Strategy  string
	Direction models.Direction
	StartDate time.Time
	EndDate   time.Time
	Limit     int
}

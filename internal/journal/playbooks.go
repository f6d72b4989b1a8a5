package journal

import (
	"context"
	"strings"
	"time"

	apperrors "trade-journal/internal/errors"
	"trade-journal/internal/models"
)

// PlaybookRecorder persists playbooks as they change.
type PlaybookRecorder interface {
	SavePlaybook(ctx context.Context, playbook *models.Playbook) error
	DeletePlaybook(ctx context.Context, id string) error
}

// PlaybookBook holds the saved playbooks and the active selection.
type PlaybookBook struct {
	playbooks []models.Playbook
	active    string
	recorder  PlaybookRecorder
	now       func() time.Time
}

// NewPlaybookBook creates an empty book. recorder may be nil.
func NewPlaybookBook(recorder PlaybookRecorder) *PlaybookBook {
	return &PlaybookBook{recorder: recorder, now: time.Now}
}

// SetClock replaces the clock used for LastUpdated.
func (b *PlaybookBook) SetClock(now func() time.Time) {
	b.now = now
}

// Load replaces the collection. An active id that is not present is dropped.
func (b *PlaybookBook) Load(playbooks []models.Playbook, activeID string) {
	b.playbooks = append([]models.Playbook(nil), playbooks...)
	b.active = ""
	if b.index(activeID) >= 0 {
		b.active = activeID
	}
}

// Add creates a playbook at version 1.
func (b *PlaybookBook) Add(ctx context.Context, in models.PlaybookInput) (models.Playbook, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return models.Playbook{}, apperrors.NewValidationError("name", in.Name, "name is required")
	}

	p := models.Playbook{
		ID:               NewPlaybookID(),
		Name:             name,
		Description:      in.Description,
		Category:         in.Category,
		MarketConditions: append([]string(nil), in.MarketConditions...),
		SetupChecklist:   append([]string(nil), in.SetupChecklist...),
		ExitRules:        append([]string(nil), in.ExitRules...),
		RiskRules:        append([]string(nil), in.RiskRules...),
		Screenshots:      append([]string(nil), in.Screenshots...),
		Version:          1,
		LastUpdated:      b.now(),
	}

	if b.recorder != nil {
		if err := b.recorder.SavePlaybook(ctx, &p); err != nil {
			return models.Playbook{}, apperrors.Wrap(err, "recording playbook")
		}
	}

	b.playbooks = append(b.playbooks, p)
	return p, nil
}

// Update merges u, bumps the version and stamps LastUpdated.
func (b *PlaybookBook) Update(ctx context.Context, id string, u models.PlaybookUpdate) (models.Playbook, error) {
	idx := b.index(id)
	if idx < 0 {
		return models.Playbook{}, apperrors.PlaybookNotFound(id)
	}

	p := b.playbooks[idx]
	u.Apply(&p)
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return models.Playbook{}, apperrors.NewValidationError("name", p.Name, "name is required")
	}
	p.Version++
	p.LastUpdated = b.now()

	if b.recorder != nil {
		if err := b.recorder.SavePlaybook(ctx, &p); err != nil {
			return models.Playbook{}, apperrors.Wrap(err, "recording playbook")
		}
	}

	b.playbooks[idx] = p
	return p, nil
}

// Delete removes a playbook and clears the active selection if it pointed
// at it.
func (b *PlaybookBook) Delete(ctx context.Context, id string) error {
	idx := b.index(id)
	if idx < 0 {
		return apperrors.PlaybookNotFound(id)
	}

	if b.recorder != nil {
		if err := b.recorder.DeletePlaybook(ctx, id); err != nil {
			return apperrors.Wrap(err, "deleting playbook")
		}
	}

	b.playbooks = append(b.playbooks[:idx], b.playbooks[idx+1:]...)
	if b.active == id {
		b.active = ""
	}
	return nil
}

// SetActive selects the active playbook. An empty id clears the selection.
func (b *PlaybookBook) SetActive(id string) error {
	if id == "" {
		b.active = ""
		return nil
	}
	if b.index(id) < 0 {
		return apperrors.PlaybookNotFound(id)
	}
	b.active = id
	return nil
}

// Active returns the active playbook, if any.
func (b *PlaybookBook) Active() (models.Playbook, bool) {
	if b.active == "" {
		return models.Playbook{}, false
	}
	return b.Get(b.active)
}

// ActiveID returns the active playbook id or "".
func (b *PlaybookBook) ActiveID() string {
	return b.active
}

// Get returns the playbook with the given id.
func (b *PlaybookBook) Get(id string) (models.Playbook, bool) {
	idx := b.index(id)
	if idx < 0 {
		return models.Playbook{}, false
	}
	return b.playbooks[idx], true
}

// All returns a copy of the playbooks in creation order.
func (b *PlaybookBook) All() []models.Playbook {
	return append([]models.Playbook(nil), b.playbooks...)
}

func (b *PlaybookBook) index(id string) int {
	for i := range b.playbooks {
		if b.playbooks[i].ID == id {
			return i
		}
	}
	return -1
}

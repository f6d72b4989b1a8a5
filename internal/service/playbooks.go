package service

import (
	"context"
	"time"

	apperrors "trade-journal/internal/errors"
	"trade-journal/internal/models"
	"trade-journal/internal/stats"
)

// AddPlaybook creates a playbook.
func (j *Journal) AddPlaybook(ctx context.Context, in models.PlaybookInput) (models.Playbook, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	p, err := j.playbooks.Add(ctx, in)
	if err != nil {
		return models.Playbook{}, err
	}
	j.logger.Info().Str("playbook_id", p.ID).Str("name", p.Name).Msg("Playbook added")
	return p, nil
}

// UpdatePlaybook edits a playbook and bumps its version.
func (j *Journal) UpdatePlaybook(ctx context.Context, id string, u models.PlaybookUpdate) (models.Playbook, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	p, err := j.playbooks.Update(ctx, id, u)
	if err != nil {
		return models.Playbook{}, err
	}
	j.logger.Info().Str("playbook_id", p.ID).Int("version", p.Version).Msg("Playbook updated")
	return p, nil
}

// DeletePlaybook removes a playbook. Deleting the active playbook clears the
// selection.
func (j *Journal) DeletePlaybook(ctx context.Context, id string) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	wasActive := j.playbooks.ActiveID() == id
	if err := j.playbooks.Delete(ctx, id); err != nil {
		return err
	}
	if wasActive {
		j.saveActive(ctx)
	}
	j.logger.Info().Str("playbook_id", id).Msg("Playbook deleted")
	return nil
}

// GetPlaybook returns one playbook.
func (j *Journal) GetPlaybook(id string) (models.Playbook, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	p, ok := j.playbooks.Get(id)
	if !ok {
		return models.Playbook{}, apperrors.PlaybookNotFound(id)
	}
	return p, nil
}

// Playbooks returns the playbooks and the active id.
func (j *Journal) Playbooks() ([]models.Playbook, string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.playbooks.All(), j.playbooks.ActiveID()
}

// ActivatePlaybook selects the active playbook. An empty id clears it.
func (j *Journal) ActivatePlaybook(ctx context.Context, id string) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if err := j.playbooks.SetActive(id); err != nil {
		return err
	}
	j.saveActive(ctx)
	return nil
}

// ActivePlaybook returns the active playbook, if any.
func (j *Journal) ActivePlaybook() (models.Playbook, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.playbooks.Active()
}

func (j *Journal) saveActive(ctx context.Context) {
	id := j.playbooks.ActiveID()
	var err error
	if id == "" {
		err = j.data.Remove(ctx, ActivePlaybookKey)
	} else {
		err = j.data.Set(ctx, ActivePlaybookKey, id)
	}
	if err != nil {
		j.logger.Error().Err(err).Msg("Failed to save active playbook")
	}
}

// Summary returns aggregate statistics over the whole history.
func (j *Journal) Summary() stats.Summary {
	j.mu.Lock()
	defer j.mu.Unlock()
	return stats.Summarize(j.allTrades())
}

// Breakdown groups the history by key.
func (j *Journal) Breakdown(key stats.GroupKey) []stats.Group {
	j.mu.Lock()
	defer j.mu.Unlock()
	return stats.GroupBy(j.allTrades(), key)
}

// Calendar returns per-day figures for one month.
func (j *Journal) Calendar(year int, month time.Month, loc *time.Location) []stats.Day {
	j.mu.Lock()
	defer j.mu.Unlock()
	return stats.Calendar(j.allTrades(), year, month, loc)
}

// CurrentRun returns the win or loss run at the end of the history.
func (j *Journal) CurrentRun() stats.Run {
	j.mu.Lock()
	defer j.mu.Unlock()
	return stats.CurrentRun(j.allTrades())
}

// Now returns the journal clock's current time.
func (j *Journal) Now() time.Time {
	return j.now()
}

package repotest

import (
	"context"
	"sort"
	"time"

	"github.com/dmitrijs2005/smarthealth/internal/common"
	"github.com/dmitrijs2005/smarthealth/internal/server/models"
	"github.com/google/uuid"
)

type Biometrics struct {
	store
	items []*models.BiometricReading
}

func (r *Biometrics) Create(ctx context.Context, b *models.BiometricReading) (*models.BiometricReading, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b.ID = uuid.NewString()
	b.CreatedAt = time.Now().UTC()
	c := *b
	r.items = append(r.items, &c)
	return b, nil
}

func (r *Biometrics) matching(f models.ReadingFilter) []*models.BiometricReading {
	out := []*models.BiometricReading{}
	for _, b := range r.items {
		if b.UserID != f.UserID {
			continue
		}
		if !f.From.IsZero() && b.Timestamp.Before(f.From) {
			continue
		}
		if !f.To.IsZero() && b.Timestamp.After(f.To) {
			continue
		}
		c := *b
		out = append(out, &c)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out
}

func (r *Biometrics) Latest(ctx context.Context, userID string) (*models.BiometricReading, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := r.matching(models.ReadingFilter{UserID: userID})
	if len(all) == 0 {
		return nil, common.ErrorNotFound
	}
	return all[0], nil
}

func (r *Biometrics) History(ctx context.Context, f models.ReadingFilter) ([]*models.BiometricReading, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := r.matching(f)
	total := len(all)
	if f.Offset < 0 || f.Offset >= total {
		return []*models.BiometricReading{}, total, nil
	}
	end := total
	if f.Limit > 0 && f.Offset+f.Limit < end {
		end = f.Offset + f.Limit
	}
	return all[f.Offset:end], total, nil
}

package repotest

import (
	"context"
	"sort"
	"time"

	"github.com/dmitrijs2005/smarthealth/internal/common"
	"github.com/dmitrijs2005/smarthealth/internal/server/models"
	"github.com/google/uuid"
)

type Subscriptions struct {
	store
	items    []*models.Subscription
	plans    *Plans
	accounts *Accounts
}

func (r *Subscriptions) Create(ctx context.Context, s *models.Subscription) (*models.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s.ID = uuid.NewString()
	now := time.Now().UTC()
	s.CreatedAt, s.UpdatedAt = now, now
	c := *s
	r.items = append(r.items, &c)
	return s, nil
}

// newestFirst returns the items in creation order reversed; equal
// timestamps keep insertion order reversed.
func (r *Subscriptions) newestFirst() []*models.Subscription {
	out := make([]*models.Subscription, 0, len(r.items))
	for i := len(r.items) - 1; i >= 0; i-- {
		out = append(out, r.items[i])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *Subscriptions) FindActiveByUser(ctx context.Context, userID string) (*models.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.newestFirst() {
		if s.UserID == userID && s.Status == models.SubscriptionActive {
			c := *s
			p, err := r.plans.FindByID(ctx, s.PlanID)
			if err != nil {
				return nil, common.ErrorNotFound
			}
			c.Plan = p
			return &c, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *Subscriptions) CancelActiveByUser(ctx context.Context, userID string) (*models.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var newest *models.Subscription
	for _, s := range r.newestFirst() {
		if s.UserID != userID || s.Status != models.SubscriptionActive {
			continue
		}
		s.Status = models.SubscriptionCancelled
		s.AutoRenewal = false
		s.UpdatedAt = time.Now().UTC()
		if newest == nil {
			c := *s
			newest = &c
		}
	}
	if newest == nil {
		return nil, common.ErrorNotFound
	}
	return newest, nil
}

func (r *Subscriptions) List(ctx context.Context) ([]*models.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*models.Subscription{}
	for _, s := range r.newestFirst() {
		c := *s
		if a := r.accounts.Get(s.UserID); a != nil {
			sum := a.Summary()
			c.User = &sum
		}
		if p, err := r.plans.FindByID(ctx, s.PlanID); err == nil {
			c.Plan = p
		}
		out = append(out, &c)
	}
	return out, nil
}

// All returns every stored subscription in insertion order.
func (r *Subscriptions) All() []models.Subscription {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Subscription, 0, len(r.items))
	for _, s := range r.items {
		out = append(out, *s)
	}
	return out
}

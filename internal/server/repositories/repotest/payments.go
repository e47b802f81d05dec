package repotest

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/dmitrijs2005/smarthealth/internal/common"
	"github.com/dmitrijs2005/smarthealth/internal/server/models"
	"github.com/google/uuid"
)

type Payments struct {
	store
	items    []*models.Payment
	accounts *Accounts
	plans    *Plans
}

func (r *Payments) Create(ctx context.Context, p *models.Payment) (*models.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, other := range r.items {
		if other.TransactionID == p.TransactionID {
			return nil, fmt.Errorf("%w: %s", common.ErrorAlreadyExists, "payments_transaction_id_key")
		}
	}
	if p.PlanID != nil && r.plans != nil {
		if _, err := r.plans.FindByID(ctx, *p.PlanID); err != nil {
			return nil, fmt.Errorf("%w: %s", common.ErrorNotFound, "payments_plan_id_fkey")
		}
	}
	p.ID = uuid.NewString()
	p.CreatedAt = time.Now().UTC()
	c := *p
	r.items = append(r.items, &c)
	return p, nil
}

func (r *Payments) list(ctx context.Context, match func(*models.Payment) bool) []*models.Payment {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*models.Payment{}
	for _, p := range r.items {
		if !match(p) {
			continue
		}
		c := *p
		if a := r.accounts.Get(p.UserID); a != nil {
			sum := a.Summary()
			sum.MembershipType = ""
			c.User = &sum
		}
		if p.PlanID != nil {
			if plan, err := r.plans.FindByID(ctx, *p.PlanID); err == nil {
				c.Plan = &models.PlanSummary{ID: plan.ID, Name: plan.Name, Price: plan.Price}
			}
		}
		out = append(out, &c)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].PaidAt.After(out[j].PaidAt) })
	return out
}

func (r *Payments) List(ctx context.Context) ([]*models.Payment, error) {
	return r.list(ctx, func(*models.Payment) bool { return true }), nil
}

func (r *Payments) ListByUser(ctx context.Context, userID string) ([]*models.Payment, error) {
	return r.list(ctx, func(p *models.Payment) bool { return p.UserID == userID }), nil
}

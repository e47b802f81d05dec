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

type Plans struct {
	store
	byID map[string]*models.Plan
}

func NewPlans() *Plans {
	return &Plans{byID: map[string]*models.Plan{}}
}

func (r *Plans) nameTaken(p *models.Plan) error {
	for _, other := range r.byID {
		if other.ID != p.ID && other.Name == p.Name {
			return fmt.Errorf("%w: %s", common.ErrorAlreadyExists, "plans_name_key")
		}
	}
	return nil
}

func clonePlan(p *models.Plan) *models.Plan {
	c := *p
	c.Features = append([]string{}, p.Features...)
	return &c
}

func (r *Plans) Create(ctx context.Context, p *models.Plan) (*models.Plan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.ID = uuid.NewString()
	if err := r.nameTaken(p); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	r.byID[p.ID] = clonePlan(p)
	return p, nil
}

func (r *Plans) FindByID(ctx context.Context, id string) (*models.Plan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return clonePlan(p), nil
}

func (r *Plans) List(ctx context.Context, includeInactive bool) ([]*models.Plan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*models.Plan{}
	for _, p := range r.byID {
		if p.IsActive || includeInactive {
			out = append(out, clonePlan(p))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Price != out[j].Price {
			return out[i].Price < out[j].Price
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (r *Plans) Update(ctx context.Context, p *models.Plan) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.byID[p.ID]
	if !ok {
		return common.ErrorNotFound
	}
	if err := r.nameTaken(p); err != nil {
		return err
	}
	p.CreatedAt = cur.CreatedAt
	p.UpdatedAt = time.Now().UTC()
	r.byID[p.ID] = clonePlan(p)
	return nil
}

func (r *Plans) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *Plans) SetActive(ctx context.Context, id string, active bool) (*models.Plan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	p.IsActive = active
	p.UpdatedAt = time.Now().UTC()
	return clonePlan(p), nil
}

package repotest

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dmitrijs2005/smarthealth/internal/common"
	"github.com/dmitrijs2005/smarthealth/internal/server/models"
	"github.com/dmitrijs2005/smarthealth/internal/server/repositories/accounts"
	"github.com/google/uuid"
)

// Accounts is an in-memory accounts.Repository. Fail, when set, makes every
// call return that error.
type Accounts struct {
	store
	byID map[string]*models.Account

	Fail           error
	TouchLoginFail error
}

func NewAccounts() *Accounts {
	return &Accounts{byID: map[string]*models.Account{}}
}

func project(a *models.Account, sel accounts.Select) *models.Account {
	c := *a
	if sel != accounts.SelectWithPassword {
		c.PasswordHash = ""
		c.TwoFactorSecret = ""
	}
	return &c
}

func (r *Accounts) conflict(a *models.Account) error {
	for _, other := range r.byID {
		if other.ID == a.ID {
			continue
		}
		if strings.EqualFold(other.Email, a.Email) {
			return fmt.Errorf("%w: %s", common.ErrorAlreadyExists, "accounts_email_key")
		}
		if a.Phone != "" && other.Phone == a.Phone {
			return fmt.Errorf("%w: %s", common.ErrorAlreadyExists, "accounts_phone_key")
		}
	}
	return nil
}

func (r *Accounts) Create(ctx context.Context, a *models.Account) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Fail != nil {
		return nil, r.Fail
	}
	a.ID = uuid.NewString()
	if err := r.conflict(a); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	a.CreatedAt, a.UpdatedAt = now, now
	c := *a
	r.byID[a.ID] = &c
	return a, nil
}

func (r *Accounts) find(sel accounts.Select, match func(*models.Account) bool) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Fail != nil {
		return nil, r.Fail
	}
	for _, a := range r.byID {
		if match(a) {
			return project(a, sel), nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *Accounts) FindByEmailOrPhone(ctx context.Context, identifier string, sel accounts.Select) (*models.Account, error) {
	return r.find(sel, func(a *models.Account) bool {
		return strings.EqualFold(a.Email, identifier) || a.Phone == identifier
	})
}

func (r *Accounts) FindByID(ctx context.Context, id string, sel accounts.Select) (*models.Account, error) {
	return r.find(sel, func(a *models.Account) bool { return a.ID == id })
}

func (r *Accounts) FindByEmail(ctx context.Context, email string, sel accounts.Select) (*models.Account, error) {
	return r.find(sel, func(a *models.Account) bool { return strings.EqualFold(a.Email, email) })
}

func (r *Accounts) ExistsByEmailOrPhone(ctx context.Context, email, phone string) (bool, error) {
	_, err := r.find(accounts.SelectPublic, func(a *models.Account) bool {
		return strings.EqualFold(a.Email, email) || (phone != "" && a.Phone == phone)
	})
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, common.ErrorNotFound):
		return false, nil
	default:
		return false, err
	}
}

func (r *Accounts) Save(ctx context.Context, a *models.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Fail != nil {
		return r.Fail
	}
	cur, ok := r.byID[a.ID]
	if !ok {
		return common.ErrorNotFound
	}
	if err := r.conflict(a); err != nil {
		return err
	}
	c := *a
	c.PasswordHash = cur.PasswordHash
	c.TwoFactorSecret = cur.TwoFactorSecret
	c.LastLoginAt = cur.LastLoginAt
	c.UpdatedAt = time.Now().UTC()
	a.UpdatedAt = c.UpdatedAt
	r.byID[a.ID] = &c
	return nil
}

func (r *Accounts) UpdatePassword(ctx context.Context, id, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Fail != nil {
		return r.Fail
	}
	a, ok := r.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	a.PasswordHash = hash
	a.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *Accounts) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.TouchLoginFail != nil {
		return r.TouchLoginFail
	}
	a, ok := r.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	a.LastLoginAt = &at
	return nil
}

func (r *Accounts) List(ctx context.Context) ([]*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Fail != nil {
		return nil, r.Fail
	}
	out := make([]*models.Account, 0, len(r.byID))
	for _, a := range r.byID {
		out = append(out, project(a, accounts.SelectPublic))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// Get returns the stored record including credentials, or nil.
func (r *Accounts) Get(id string) *models.Account {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.byID[id]
	if !ok {
		return nil
	}
	c := *a
	return &c
}

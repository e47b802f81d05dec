package services

import "github.com/dmitrijs2005/smarthealth/internal/server/models"

// Principal is the authenticated caller of a request, as resolved by the
// Verifier. Account never carries credential material.
type Principal struct {
	Account *models.Account
}

func (p *Principal) UserID() string {
	return p.Account.ID
}

func (p *Principal) IsAdmin() bool {
	return p.Account.IsAdmin()
}

package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/smarthealth/internal/common"
	"github.com/dmitrijs2005/smarthealth/internal/server/auth"
	"github.com/dmitrijs2005/smarthealth/internal/server/config"
	"github.com/dmitrijs2005/smarthealth/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/smarthealth/internal/server/repositories/repomanager"
)

const (
	msgMissingToken = "Missing token"
	msgInvalidToken = "Invalid or expired token"
	msgUserNotFound = "User not found"
)

// Verifier is the request gate: it turns an Authorization header into a
// Principal or rejects it. It performs no writes and keeps no cache, so an
// account deactivated between two requests is rejected on the second.
type Verifier struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	tokens      *auth.TokenIssuer
}

func NewVerifier(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *Verifier {
	return &Verifier{db: db, repomanager: m, tokens: newTokenIssuer(cfg)}
}

func bearerToken(header string) string {
	if !strings.HasPrefix(header, common.BearerPrefix) {
		return ""
	}
	return strings.TrimSpace(header[len(common.BearerPrefix):])
}

// Verify checks the raw Authorization header value.
func (v *Verifier) Verify(ctx context.Context, header string) (*Principal, error) {
	token := bearerToken(header)
	if token == "" {
		return nil, common.NewUnauthorizedError(msgMissingToken)
	}

	userID, err := v.tokens.ParseAccessToken(token)
	if err != nil {
		return nil, common.WithCause(common.NewUnauthorizedError(msgInvalidToken), err)
	}

	account, err := v.repomanager.Accounts(v.db).FindByID(ctx, userID, accounts.SelectPublic)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NewUnauthorizedError(msgUserNotFound)
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	if !account.IsActive {
		return nil, common.NewUnauthorizedError(msgAccountDeactivated)
	}

	return &Principal{Account: account.Public()}, nil
}

// internal/session/orgstore.go
package session

import (
	"context"
	"fmt"
	"time"

	stderrors "errors"

	apperrors "taskpilot/internal/common/errors"
	"taskpilot/internal/common/database"

	"github.com/redis/go-redis/v9"
)

const orgKeyTTL = 24 * time.Hour

// OrgStore persists the current-organization identifier per session.
// The Context Resolver consults it when resolving the "current"
// placeholder for organization-scoped actions and the execution context
// has no value.
type OrgStore struct {
	rdb       *database.RedisClient
	sessionID string
}

func NewOrgStore(rdb *database.RedisClient, sessionID string) *OrgStore {
	return &OrgStore{rdb: rdb, sessionID: sessionID}
}

func (s *OrgStore) key() string {
	return fmt.Sprintf("taskpilot:session:%s:organization", s.sessionID)
}

// CurrentOrganization returns the stored identifier, or empty when none
// is stored.
func (s *OrgStore) CurrentOrganization(ctx context.Context) (string, error) {
	val, err := s.rdb.Get(ctx, s.key())
	if err != nil {
		if stderrors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", apperrors.NewSessionStoreError(err)
	}
	return val, nil
}

// SetCurrentOrganization stores the identifier with a session TTL.
func (s *OrgStore) SetCurrentOrganization(ctx context.Context, org string) error {
	if err := s.rdb.Set(ctx, s.key(), org, orgKeyTTL); err != nil {
		return apperrors.NewSessionStoreError(err)
	}
	return nil
}

// Clear removes the stored identifier.
func (s *OrgStore) Clear(ctx context.Context) error {
	if err := s.rdb.Del(ctx, s.key()); err != nil {
		return apperrors.NewSessionStoreError(err)
	}
	return nil
}

package metadata

import (
	"context"
	"database/sql"
	"time"

	"github.com/dmitrijs2005/geoposts/internal/dbx"
)

const (
	keyToken    = "session.token"
	keyProvider = "session.provider"
	keySavedAt  = "session.saved_at"
)

// SessionStore keeps the backend token between runs.
type SessionStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewSessionStore(db *sql.DB) *SessionStore {
	return &SessionStore{db: db, now: time.Now}
}

// Save writes the token together with the provider it came from.
func (s *SessionStore) Save(ctx context.Context, provider, token string) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := NewSQLiteRepository(tx)
		if err := repo.Set(ctx, keyToken, []byte(token)); err != nil {
			return err
		}
		if err := repo.Set(ctx, keyProvider, []byte(provider)); err != nil {
			return err
		}
		return repo.Set(ctx, keySavedAt, []byte(s.now().UTC().Format(time.RFC3339)))
	})
}

// Load returns the stored token, or "" if none was saved.
func (s *SessionStore) Load(ctx context.Context) (string, error) {
	v, err := NewSQLiteRepository(s.db).Get(ctx, keyToken)
	if err != nil {
		return "", err
	}
	return string(v), nil
}

func (s *SessionStore) Clear(ctx context.Context) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return NewSQLiteRepository(tx).Delete(ctx, keyToken, keyProvider, keySavedAt)
	})
}

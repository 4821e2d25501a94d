package session

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hpcatalog/catalogadmin/pkg/kvstore"
)

// persist writes the session to durable storage, omitting the busy flag.
// Storage failures are logged and swallowed; persistence is best effort.
func (m *Manager) persist(ctx context.Context, sess Session) {
	raw, err := json.Marshal(sess)
	if err != nil {
		m.logger.Warn("encode session", slog.String("error", err.Error()))
		return
	}
	if err := m.store.Set(ctx, StorageKey, string(raw)); err != nil {
		m.logger.Warn("persist session", slog.String("error", err.Error()))
	}
}

// loadSession reads the persisted session back. Fields of the wrong runtime
// type are treated as absent; a corrupt entry yields the empty session.
func loadSession(ctx context.Context, store kvstore.Store) Session {
	var out Session

	raw, ok, err := store.Get(ctx, StorageKey)
	if err != nil || !ok {
		return out
	}

	var rec map[string]any
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return out
	}

	if s, ok := rec["token"].(string); ok {
		out.Token = s
	}
	if s, ok := rec["expiresAt"].(string); ok {
		out.ExpiresAt = s
	}
	if s, ok := rec["refreshToken"].(string); ok {
		out.RefreshToken = s
	}
	if s, ok := rec["refreshExpiresAt"].(string); ok {
		out.RefreshExpiresAt = s
	}

	if u, ok := rec["user"].(map[string]any); ok {
		userID, okID := u["userId"].(string)
		email, okEmail := u["email"].(string)
		fullName, okName := u["fullName"].(string)
		role, okRole := u["role"].(string)
		if okID && okEmail && okName && okRole {
			out.User = &User{
				UserID:   userID,
				Email:    email,
				FullName: fullName,
				Role:     role,
			}
		}
	}

	out.normalize()
	return out
}

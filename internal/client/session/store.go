package session

import (
	"context"
	"encoding/json"
)

// Store is the durable key/value storage a Manager writes to.
// metadata.SQLiteRepository satisfies it.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetMany(ctx context.Context, values map[string][]byte) error
	DeleteMany(ctx context.Context, keys ...string) error
}

// keys are the storage keys of one actor, e.g. "writer.access_token".
type keys struct {
	access  string
	refresh string
	user    string
}

func keysFor(a Actor) keys {
	prefix := string(a) + "."
	return keys{
		access:  prefix + "access_token",
		refresh: prefix + "refresh_token",
		user:    prefix + "user",
	}
}

func (k keys) all() []string {
	return []string{k.access, k.refresh, k.user}
}

// userRecord is the cached identity stored under the "user" key.
type userRecord struct {
	Email               string `json:"email"`
	ClientID            string `json:"client_id,omitempty"`
	WriterID            string `json:"writer_id,omitempty"`
	UserID              string `json:"user_id"`
	PasswordIsTemporary bool   `json:"password_is_temporary,omitempty"`
}

func newUserRecord(a Actor, s *Session) userRecord {
	u := userRecord{Email: s.Email, UserID: s.UserID, PasswordIsTemporary: s.PasswordIsTemporary}
	if a == ActorWriter {
		u.WriterID = s.SubjectID
	} else {
		u.ClientID = s.SubjectID
	}
	return u
}

func (u userRecord) subjectID() string {
	if u.ClientID != "" {
		return u.ClientID
	}
	return u.WriterID
}

func (u userRecord) marshal() []byte {
	b, _ := json.Marshal(u)
	return b
}

//go:generate go run go.uber.org/mock/mockgen -source=repository.go -destination=../mocks/mock_session_repository.go -package=mocks
// Package sessions persists analysis sessions in BadgerDB.
// A session is two kinds of records: one metadata entry and one entry per
// conversation turn, both JSON-encoded. Keys are built so a prefix scan
// returns a session's history already sorted by time.
package sessions

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"legal-lab/domain"
	liberrors "legal-lab/errors"
)

type ISessionRepository interface {
	Init(session domain.Session) error
	Get(id string) (domain.Session, error)
	AppendHistory(id string, message domain.ChatMessage) error
	Delete(id string) (bool, error)
}

type SessionRepository struct {
	db  *badger.DB
	log *slog.Logger
	ttl time.Duration
}

// NewSessionRepository wraps an open Badger handle. A zero ttl keeps
// sessions forever; anything else lets Badger expire the records on its own.
func NewSessionRepository(db *badger.DB, log *slog.Logger, ttl time.Duration) *SessionRepository {
	return &SessionRepository{db: db, log: log, ttl: ttl}
}

// metaRecord is the stored shape of a session's metadata.
type metaRecord struct {
	ID        string    `json:"id"`
	Document  string    `json:"document"`
	Language  string    `json:"language"`
	CreatedAt time.Time `json:"created_at"`
}

type historyRecord struct {
	Role    domain.Role `json:"role"`
	Content string      `json:"content"`
	At      time.Time   `json:"at"`
}

func metaKey(id string) []byte {
	return []byte(fmt.Sprintf("session:%s", id))
}

// historyKey formats "history:{session}:{timestamp_padded}:{uuid}".
// The 19-digit zero padding keeps turns chronologically sorted under
// lexicographical iteration; the UUID disambiguates two turns stored in the
// same nanosecond.
func historyKey(id string, at time.Time) []byte {
	return []byte(fmt.Sprintf("history:%s:%019d:%s", id, at.UnixNano(), uuid.NewString()))
}

func historyPrefix(id string) []byte {
	return []byte(fmt.Sprintf("history:%s:", id))
}

// Init stores the session metadata and its seed history. Re-initializing an
// existing session replaces it wholesale, like an assignment into the
// in-memory map it stands in for: the previous document's history is dropped
// before the new seed is written.
func (r *SessionRepository) Init(session domain.Session) error {
	meta := metaRecord{
		ID:        session.ID,
		Document:  session.Document,
		Language:  session.Language,
		CreatedAt: session.CreatedAt,
	}
	bytes, err := json.Marshal(meta)
	if err != nil {
		return err
	}

	err = r.db.Update(func(txn *badger.Txn) error {
		if err := dropHistory(txn, session.ID); err != nil {
			return err
		}
		return txn.SetEntry(r.entry(metaKey(session.ID), bytes))
	})
	if err != nil {
		return err
	}

	for _, message := range session.History {
		if err := r.AppendHistory(session.ID, message); err != nil {
			return err
		}
	}
	return nil
}

// Get loads the metadata and replays the history prefix scan.
func (r *SessionRepository) Get(id string) (domain.Session, error) {
	var meta metaRecord
	var history []domain.ChatMessage

	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(metaKey(id))
		if err != nil {
			return err
		}
		if err := item.Value(func(value []byte) error {
			return json.Unmarshal(value, &meta)
		}); err != nil {
			return err
		}

		prefix := historyPrefix(id)
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var record historyRecord
			if err := it.Item().Value(func(value []byte) error {
				return json.Unmarshal(value, &record)
			}); err != nil {
				return err
			}
			history = append(history, domain.ChatMessage{Role: record.Role, Content: record.Content})
		}
		return nil
	})
	if err == badger.ErrKeyNotFound {
		return domain.Session{}, fmt.Errorf("%w: %s", liberrors.ErrSessionNotFound, id)
	}
	if err != nil {
		return domain.Session{}, err
	}

	return domain.Session{
		ID:        meta.ID,
		Document:  meta.Document,
		Language:  meta.Language,
		CreatedAt: meta.CreatedAt,
		History:   history,
	}, nil
}

// AppendHistory adds one conversation turn to the session.
func (r *SessionRepository) AppendHistory(id string, message domain.ChatMessage) error {
	record := historyRecord{Role: message.Role, Content: message.Content, At: time.Now().UTC()}
	bytes, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(r.entry(historyKey(id, record.At), bytes))
	})
}

// Delete removes the session and its whole history.
// The returned bool reports whether the session existed, so the caller can
// phrase "cleared" versus "not found" without a second lookup.
func (r *SessionRepository) Delete(id string) (bool, error) {
	found := false
	err := r.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(metaKey(id)); err == nil {
			found = true
		} else if err != badger.ErrKeyNotFound {
			return err
		}

		if err := txn.Delete(metaKey(id)); err != nil {
			return err
		}
		return dropHistory(txn, id)
	})
	if err != nil {
		return false, err
	}

	if found {
		r.log.Debug("Session deleted", "session_id", id)
	}
	return found, nil
}

// dropHistory removes every history record of the session within the
// transaction.
func dropHistory(txn *badger.Txn, id string) error {
	prefix := historyPrefix(id)
	options := badger.DefaultIteratorOptions
	options.PrefetchValues = false
	it := txn.NewIterator(options)
	defer it.Close()

	var keys [][]byte
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		keys = append(keys, it.Item().KeyCopy(nil))
	}
	for _, key := range keys {
		if err := txn.Delete(key); err != nil {
			return err
		}
	}
	return nil
}

func (r *SessionRepository) entry(key, value []byte) *badger.Entry {
	e := badger.NewEntry(key, value)
	if r.ttl > 0 {
		e = e.WithTTL(r.ttl)
	}
	return e
}

package sessions

import (
	"log/slog"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"legal-lab/domain"
	liberrors "legal-lab/errors"
)

func setupRepository(t *testing.T) *SessionRepository {
	t.Helper()
	options := badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR)
	db, err := badger.Open(options)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewSessionRepository(db, slog.Default(), 0)
}

func TestSessionRepository_Init_And_Get(t *testing.T) {
	req := require.New(t)
	repo := setupRepository(t)

	// Given a session seeded with its document
	id := uuid.NewString()
	document := "RENTAL AGREEMENT\nThe tenant shall pay rent on the 1st of each month."
	session := domain.Session{
		ID:        id,
		Document:  document,
		Language:  "en",
		CreatedAt: time.Now().UTC(),
		History:   domain.Seed(document),
	}

	// When it is stored
	req.NoError(repo.Init(session))

	// Then metadata and seed history come back
	fetched, err := repo.Get(id)
	req.NoError(err)
	req.Equal(document, fetched.Document)
	req.Equal("en", fetched.Language)
	req.Len(fetched.History, 1)
	req.Equal(domain.RoleUser, fetched.History[0].Role)
	req.Contains(fetched.History[0].Content, document)
}

func TestSessionRepository_History_Keeps_Order(t *testing.T) {
	req := require.New(t)
	repo := setupRepository(t)

	id := uuid.NewString()
	req.NoError(repo.Init(domain.Session{ID: id, Document: "doc", History: domain.Seed("doc")}))

	req.NoError(repo.AppendHistory(id, domain.ChatMessage{Role: domain.RoleUser, Content: "first question"}))
	req.NoError(repo.AppendHistory(id, domain.ChatMessage{Role: domain.RoleAssistant, Content: "first answer"}))
	req.NoError(repo.AppendHistory(id, domain.ChatMessage{Role: domain.RoleUser, Content: "second question"}))

	fetched, err := repo.Get(id)
	req.NoError(err)
	req.Len(fetched.History, 4)
	req.Equal("first question", fetched.History[1].Content)
	req.Equal("first answer", fetched.History[2].Content)
	req.Equal("second question", fetched.History[3].Content)
}

func TestSessionRepository_ReInit_Replaces_Session(t *testing.T) {
	req := require.New(t)
	repo := setupRepository(t)

	// Given a session that already holds a document and some conversation
	id := uuid.NewString()
	req.NoError(repo.Init(domain.Session{ID: id, Document: "old lease", History: domain.Seed("old lease")}))
	req.NoError(repo.AppendHistory(id, domain.ChatMessage{Role: domain.RoleUser, Content: "question about the old lease"}))

	// When the session is initialized again with a new document
	req.NoError(repo.Init(domain.Session{ID: id, Document: "new lease", History: domain.Seed("new lease")}))

	// Then only the new document and its seed remain
	fetched, err := repo.Get(id)
	req.NoError(err)
	req.Equal("new lease", fetched.Document)
	req.Len(fetched.History, 1)
	req.Contains(fetched.History[0].Content, "new lease")
}

func TestSessionRepository_Get_Unknown_Session(t *testing.T) {
	req := require.New(t)
	repo := setupRepository(t)

	_, err := repo.Get(uuid.NewString())
	req.ErrorIs(err, liberrors.ErrSessionNotFound)
}

func TestSessionRepository_Delete(t *testing.T) {
	req := require.New(t)
	repo := setupRepository(t)

	id := uuid.NewString()
	req.NoError(repo.Init(domain.Session{ID: id, Document: "doc", History: domain.Seed("doc")}))
	req.NoError(repo.AppendHistory(id, domain.ChatMessage{Role: domain.RoleUser, Content: "hello"}))

	// First delete reports the session existed
	found, err := repo.Delete(id)
	req.NoError(err)
	req.True(found)

	// The session and its history are gone
	_, err = repo.Get(id)
	req.ErrorIs(err, liberrors.ErrSessionNotFound)

	// Second delete reports it missing, without an error
	found, err = repo.Delete(id)
	req.NoError(err)
	req.False(found)
}

func TestSessionRepository_Sessions_Are_Isolated(t *testing.T) {
	req := require.New(t)
	repo := setupRepository(t)

	first := uuid.NewString()
	second := uuid.NewString()
	req.NoError(repo.Init(domain.Session{ID: first, Document: "doc a", History: domain.Seed("doc a")}))
	req.NoError(repo.Init(domain.Session{ID: second, Document: "doc b", History: domain.Seed("doc b")}))
	req.NoError(repo.AppendHistory(first, domain.ChatMessage{Role: domain.RoleUser, Content: "only in a"}))

	fetched, err := repo.Get(second)
	req.NoError(err)
	req.Len(fetched.History, 1)
}

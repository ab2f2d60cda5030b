package impl

import (
	"context"
	"sync"
	"time"

	"pentrack/internal/domain/entity"
	"pentrack/internal/domain/repository"
	"pentrack/internal/domain/service"

	"github.com/google/uuid"
)

// In-memory repository fakes. The pack of generated mocks was dropped in
// favor of behavioral fakes: tests assert on outcomes, not call sequences.

type memStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]*entity.User

	sessions map[uuid.UUID]*entity.Session

	codes map[uuid.UUID]*entity.OneTimeCode

	links map[uuid.UUID]*entity.ProviderLink
}

func newMemStore() *memStore {
	return &memStore{
		users:    make(map[uuid.UUID]*entity.User),
		sessions: make(map[uuid.UUID]*entity.Session),
		codes:    make(map[uuid.UUID]*entity.OneTimeCode),
		links:    make(map[uuid.UUID]*entity.ProviderLink),
	}
}

func (s *memStore) addUser(user *entity.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *user
	s.users[user.ID] = &copied
}

// fakeTxManager satisfies repository.TransactionManager by running the
// callback against the same shared store, without transactional semantics.
// Rollback is approximated by snapshotting and restoring on error, which is
// enough to observe the "mail failure removes the code record" behavior.
type fakeTxManager struct {
	store *memStore
}

func (m *fakeTxManager) Execute(_ context.Context, fn func(repository.RepositoryFactory) error) error {
	snapshot := m.snapshot()
	if err := fn(&fakeFactory{store: m.store}); err != nil {
		m.restore(snapshot)

		return err
	}

	return nil
}

func (m *fakeTxManager) snapshot() *memStore {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	copied := newMemStore()
	for id, u := range m.store.users {
		v := *u
		copied.users[id] = &v
	}
	for id, s := range m.store.sessions {
		v := *s
		copied.sessions[id] = &v
	}
	for id, c := range m.store.codes {
		v := *c
		copied.codes[id] = &v
	}
	for id, l := range m.store.links {
		v := *l
		copied.links[id] = &v
	}

	return copied
}

func (m *fakeTxManager) restore(snapshot *memStore) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	m.store.users = snapshot.users
	m.store.sessions = snapshot.sessions
	m.store.codes = snapshot.codes
	m.store.links = snapshot.links
}

type fakeFactory struct {
	store *memStore
}

func (f *fakeFactory) NewUserRepository() repository.UserRepository {
	return &memUserRepo{store: f.store}
}

func (f *fakeFactory) NewSessionRepository() repository.SessionRepository {
	return &memSessionRepo{store: f.store}
}

func (f *fakeFactory) NewCodeRepository() repository.CodeRepository {
	return &memCodeRepo{store: f.store}
}

func (f *fakeFactory) NewProviderLinkRepository() repository.ProviderLinkRepository {
	return &memLinkRepo{store: f.store}
}

// --- user repository fake ---

type memUserRepo struct {
	store *memStore
}

func (r *memUserRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	user, ok := r.store.users[id]
	if !ok || user.DeletedAt != nil {
		return nil, repository.ErrUserNotFound
	}
	copied := *user

	return &copied, nil
}

func (r *memUserRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, user := range r.store.users {
		if user.Email == email && user.DeletedAt == nil {
			copied := *user

			return &copied, nil
		}
	}

	return nil, repository.ErrUserNotFound
}

func (r *memUserRepo) Create(_ context.Context, user *entity.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	copied := *user
	r.store.users[user.ID] = &copied

	return nil
}

func (r *memUserRepo) Update(_ context.Context, user *entity.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	copied := *user
	r.store.users[user.ID] = &copied

	return nil
}

func (r *memUserRepo) UpdateLastLogin(_ context.Context, id uuid.UUID, at time.Time, ipAddress string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if user, ok := r.store.users[id]; ok {
		loginAt := at
		user.LastLoginAt = &loginAt
		user.LastLoginIP = ipAddress
	}

	return nil
}

// --- session repository fake ---

type memSessionRepo struct {
	store *memStore
}

func (r *memSessionRepo) Create(_ context.Context, session *entity.Session) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}
	copied := *session
	r.store.sessions[session.ID] = &copied

	return nil
}

func (r *memSessionRepo) FindByToken(_ context.Context, token string) (*entity.Session, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, session := range r.store.sessions {
		if session.Token == token {
			copied := *session

			return &copied, nil
		}
	}

	return nil, repository.ErrSessionNotFound
}

func (r *memSessionRepo) FindActiveByUserID(_ context.Context, userID uuid.UUID) ([]*entity.Session, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	now := time.Now()
	var sessions []*entity.Session
	for _, session := range r.store.sessions {
		if session.UserID == userID && session.ExpiresAt.After(now) {
			copied := *session
			sessions = append(sessions, &copied)
		}
	}

	return sessions, nil
}

func (r *memSessionRepo) UpdateLastActivity(_ context.Context, id uuid.UUID, at time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if session, ok := r.store.sessions[id]; ok {
		session.LastActivityAt = at
	}

	return nil
}

func (r *memSessionRepo) DeleteByToken(_ context.Context, token string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for id, session := range r.store.sessions {
		if session.Token == token {
			delete(r.store.sessions, id)
		}
	}

	return nil
}

func (r *memSessionRepo) DeleteByUserID(_ context.Context, userID uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for id, session := range r.store.sessions {
		if session.UserID == userID {
			delete(r.store.sessions, id)
		}
	}

	return nil
}

func (r *memSessionRepo) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var removed int64
	for id, session := range r.store.sessions {
		if !session.ExpiresAt.After(now) {
			delete(r.store.sessions, id)
			removed++
		}
	}

	return removed, nil
}

// --- code repository fake ---

type memCodeRepo struct {
	store *memStore
}

func (r *memCodeRepo) Create(_ context.Context, code *entity.OneTimeCode) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if code.ID == uuid.Nil {
		code.ID = uuid.New()
	}
	copied := *code
	r.store.codes[code.ID] = &copied

	return nil
}

func (r *memCodeRepo) FindLatestUnconsumed(_ context.Context, email string, purpose entity.CodePurpose) (*entity.OneTimeCode, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var latest *entity.OneTimeCode
	for _, code := range r.store.codes {
		if code.Email != email || code.Purpose != purpose || code.ConsumedAt != nil {
			continue
		}
		if latest == nil || code.CreatedAt.After(latest.CreatedAt) {
			latest = code
		}
	}
	if latest == nil {
		return nil, repository.ErrCodeNotFound
	}
	copied := *latest

	return &copied, nil
}

func (r *memCodeRepo) CountSince(_ context.Context, email string, since time.Time) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var count int64
	for _, code := range r.store.codes {
		if code.Email == email && code.CreatedAt.After(since) {
			count++
		}
	}

	return count, nil
}

func (r *memCodeRepo) DeleteByEmailAndPurpose(_ context.Context, email string, purpose entity.CodePurpose) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for id, code := range r.store.codes {
		if code.Email == email && code.Purpose == purpose {
			delete(r.store.codes, id)
		}
	}

	return nil
}

func (r *memCodeRepo) DeleteByID(_ context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	delete(r.store.codes, id)

	return nil
}

func (r *memCodeRepo) IncrementAttempts(_ context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if code, ok := r.store.codes[id]; ok {
		code.Attempts++
	}

	return nil
}

func (r *memCodeRepo) Consume(_ context.Context, id uuid.UUID, at time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	code, ok := r.store.codes[id]
	if !ok || code.ConsumedAt != nil {
		return repository.ErrCodeAlreadyConsumed
	}
	consumedAt := at
	code.ConsumedAt = &consumedAt

	return nil
}

func (r *memCodeRepo) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var removed int64
	for id, code := range r.store.codes {
		if !code.ExpiresAt.After(now) {
			delete(r.store.codes, id)
			removed++
		}
	}

	return removed, nil
}

// --- provider link repository fake ---

type memLinkRepo struct {
	store *memStore
}

func (r *memLinkRepo) FindByProviderSubject(_ context.Context, provider entity.ProviderType, subject string) (*entity.ProviderLink, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, link := range r.store.links {
		if link.Provider == provider && link.ProviderUserID == subject {
			copied := *link

			return &copied, nil
		}
	}

	return nil, repository.ErrProviderLinkNotFound
}

func (r *memLinkRepo) FindByUserAndProvider(_ context.Context, userID uuid.UUID, provider entity.ProviderType) (*entity.ProviderLink, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, link := range r.store.links {
		if link.UserID == userID && link.Provider == provider {
			copied := *link

			return &copied, nil
		}
	}

	return nil, repository.ErrProviderLinkNotFound
}

func (r *memLinkRepo) Create(_ context.Context, link *entity.ProviderLink) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if link.ID == uuid.Nil {
		link.ID = uuid.New()
	}
	copied := *link
	r.store.links[link.ID] = &copied

	return nil
}

// --- collaborator fakes ---

type fakeMailer struct {
	mu        sync.Mutex
	codes     []sentCode
	notices   []sentNotice
	codeErr   error
	noticeErr error
}

type sentCode struct {
	to   string
	code string
}

type sentNotice struct {
	to      string
	subject string
}

func (m *fakeMailer) SendOneTimeCode(_ context.Context, to, code string, _ int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.codeErr != nil {
		return m.codeErr
	}
	m.codes = append(m.codes, sentCode{to: to, code: code})

	return nil
}

func (m *fakeMailer) SendAccountNotice(_ context.Context, to, subject, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.noticeErr != nil {
		return m.noticeErr
	}
	m.notices = append(m.notices, sentNotice{to: to, subject: subject})

	return nil
}

func (m *fakeMailer) lastCode() (sentCode, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.codes) == 0 {
		return sentCode{}, false
	}

	return m.codes[len(m.codes)-1], true
}

type fakeProvider struct {
	identity *service.OAuthUser
	err      error
	gotNonce string
}

func (p *fakeProvider) AuthorizationURL(state, nonce string) string {
	return "https://provider.example/auth?state=" + state + "&nonce=" + nonce
}

func (p *fakeProvider) ExchangeCode(_ context.Context, _ string, nonce string) (*service.OAuthUser, error) {
	p.gotNonce = nonce
	if p.err != nil {
		return nil, p.err
	}

	return p.identity, nil
}

func (p *fakeProvider) Provider() entity.ProviderType {
	return entity.ProviderGoogle
}

type fakeTokenService struct{}

func (s *fakeTokenService) GenerateWebSocketToken(userID uuid.UUID, role string) (string, error) {
	return "ws-" + role + "-" + userID.String(), nil
}

func (s *fakeTokenService) ValidateToken(string) (*service.Claims, error) {
	return nil, nil
}

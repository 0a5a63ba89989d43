package repository

import (
	"context"
	"sync"
	"time"

	"github.com/yuruojie777/auth-service/internal/model"
)

// MemoryStore holds all four record sets in memory behind one mutex,
// with the same sentinel errors and the same single-winner consume
// semantics as the MySQL repositories. The Users/Projects/Memberships/
// Tokens views satisfy the corresponding store interfaces. It backs the
// service and handler tests and is handy for local runs without a
// database.
type MemoryStore struct {
	mu          sync.Mutex
	users       map[string]model.User    // by id
	usersByMail map[string]string        // email -> id
	projects    map[string]model.Project // by id
	memberships map[string]model.Membership
	tokens      map[string]model.RefreshToken // by token hash
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:       make(map[string]model.User),
		usersByMail: make(map[string]string),
		projects:    make(map[string]model.Project),
		memberships: make(map[string]model.Membership),
		tokens:      make(map[string]model.RefreshToken),
	}
}

// AddProject seeds a tenant; the session flows never create projects.
func (s *MemoryStore) AddProject(p model.Project) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projects[p.ID] = p
}

// DisableUser flips the active flag off, e.g. to simulate a ban.
func (s *MemoryStore) DisableUser(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return
	}
	u.Active = false
	s.users[id] = u
}

// TokenByHash exposes a stored record for assertions in tests.
func (s *MemoryStore) TokenByHash(hash string) (model.RefreshToken, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.tokens[hash]
	return rec, ok
}

func (s *MemoryStore) Users() UserStore             { return memUsers{s} }
func (s *MemoryStore) Projects() ProjectStore       { return memProjects{s} }
func (s *MemoryStore) Memberships() MembershipStore { return memMemberships{s} }
func (s *MemoryStore) Tokens() RefreshTokenStore    { return memTokens{s} }

type memUsers struct{ s *MemoryStore }

func (v memUsers) Create(ctx context.Context, u *model.User) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if _, taken := v.s.usersByMail[u.Email]; taken {
		return ErrEmailExists
	}
	u.CreatedAt = time.Now().UTC()
	u.UpdatedAt = u.CreatedAt
	v.s.users[u.ID] = *u
	v.s.usersByMail[u.Email] = u.ID
	return nil
}

func (v memUsers) GetByEmail(ctx context.Context, email string) (model.User, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	id, ok := v.s.usersByMail[email]
	if !ok {
		return model.User{}, ErrUserNotFound
	}
	return v.s.users[id], nil
}

func (v memUsers) GetByID(ctx context.Context, id string) (model.User, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	u, ok := v.s.users[id]
	if !ok {
		return model.User{}, ErrUserNotFound
	}
	return u, nil
}

func (v memUsers) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	u, ok := v.s.users[id]
	if !ok {
		return ErrUserNotFound
	}
	u.LastLoginAt = &at
	u.UpdatedAt = at
	v.s.users[id] = u
	return nil
}

type memProjects struct{ s *MemoryStore }

func (v memProjects) GetActive(ctx context.Context, id string) (model.Project, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	p, ok := v.s.projects[id]
	if !ok || !p.Active {
		return model.Project{}, ErrProjectNotFound
	}
	return p, nil
}

type memMemberships struct{ s *MemoryStore }

func (v memMemberships) Create(ctx context.Context, m *model.Membership) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	v.s.memberships[m.UserID+"/"+m.ProjectID] = *m
	return nil
}

func (v memMemberships) Resolve(ctx context.Context, userID, projectID string) (model.Role, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	m, ok := v.s.memberships[userID+"/"+projectID]
	if !ok {
		return "", ErrNotAMember
	}
	return m.Role, nil
}

type memTokens struct{ s *MemoryStore }

func (v memTokens) Create(ctx context.Context, rec *model.RefreshToken) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	v.s.tokens[rec.TokenHash] = *rec
	return nil
}

// Consume mirrors the guarded UPDATE of the MySQL TokenRepo: the check
// and the revocation happen under one lock, so exactly one concurrent
// caller can win.
func (v memTokens) Consume(ctx context.Context, tokenHash, projectID string, now time.Time) (model.RefreshToken, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	rec, ok := v.s.tokens[tokenHash]
	if !ok {
		return model.RefreshToken{}, ErrTokenNotFound
	}
	if rec.ProjectID != projectID {
		return model.RefreshToken{}, ErrTokenProjectMismatch
	}
	if rec.Revoked || !rec.ExpiresAt.After(now) {
		return model.RefreshToken{}, ErrTokenSpent
	}
	rec.Revoked = true
	at := now
	rec.RevokedAt = &at
	v.s.tokens[tokenHash] = rec
	return rec, nil
}

func (v memTokens) RevokeAllForUser(ctx context.Context, userID string, now time.Time) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	for hash, rec := range v.s.tokens {
		if rec.UserID == userID && !rec.Revoked {
			rec.Revoked = true
			at := now
			rec.RevokedAt = &at
			v.s.tokens[hash] = rec
		}
	}
	return nil
}

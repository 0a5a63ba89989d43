package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yuruojie777/auth-service/internal/model"
	"github.com/yuruojie777/auth-service/internal/queue"
	"github.com/yuruojie777/auth-service/internal/repository"
	"github.com/yuruojie777/auth-service/internal/token"
	"github.com/yuruojie777/auth-service/internal/utils"
)

const (
	// publishTimeout bounds the fire-and-forget event publishes.
	publishTimeout = 5 * time.Second
	// issueTimeout bounds the storage work that finishes a rotation
	// after the presented token has been consumed.
	issueTimeout = 5 * time.Second
)

// TokenPair is the result of every successful register/login/refresh.
// RefreshToken is the opaque plaintext; it is shown to the client
// exactly once and only its keyed digest is stored.
type TokenPair struct {
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
}

// EventPublisher receives auth domain events. Publishing is best-effort
// and must never fail a request.
type EventPublisher interface {
	PublishUserRegistered(ctx context.Context, ev queue.UserRegisteredEvent) error
	PublishSessionsRevoked(ctx context.Context, ev queue.SessionsRevokedEvent) error
}

// SessionService orchestrates registration, login and refresh-token
// rotation over the injected stores and token primitives.
type SessionService struct {
	users    repository.UserStore
	projects repository.ProjectStore
	members  repository.MembershipStore
	tokens   repository.RefreshTokenStore
	codec    *token.AccessCodec
	hasher   *token.RefreshHasher

	bcryptCost int
	refreshTTL time.Duration

	events EventPublisher // optional
	log    *zap.Logger
	now    func() time.Time
}

// NewSessionService wires the session flows. events may be nil to
// disable event publishing.
func NewSessionService(
	users repository.UserStore,
	projects repository.ProjectStore,
	members repository.MembershipStore,
	tokens repository.RefreshTokenStore,
	codec *token.AccessCodec,
	hasher *token.RefreshHasher,
	bcryptCost int,
	refreshTTL time.Duration,
	events EventPublisher,
	log *zap.Logger,
) *SessionService {
	if log == nil {
		log = zap.NewNop()
	}
	return &SessionService{
		users:      users,
		projects:   projects,
		members:    members,
		tokens:     tokens,
		codec:      codec,
		hasher:     hasher,
		bcryptCost: bcryptCost,
		refreshTTL: refreshTTL,
		events:     events,
		log:        log,
		now:        time.Now,
	}
}

// Register creates a user, grants the default USER role in the project
// and issues a token pair. The email existence check is advisory; the
// unique key on users.email is the authoritative arbiter under races.
func (s *SessionService) Register(ctx context.Context, email, rawPassword, projectID, userAgent, ip string) (TokenPair, error) {
	if _, err := s.projects.GetActive(ctx, projectID); err != nil {
		if errors.Is(err, repository.ErrProjectNotFound) {
			return TokenPair{}, ErrProjectNotFound
		}
		return TokenPair{}, fmt.Errorf("load project: %w", err)
	}

	hash, err := utils.HashPassword(rawPassword, s.bcryptCost)
	if err != nil {
		return TokenPair{}, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		Active:       true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return TokenPair{}, ErrEmailAlreadyUsed
		}
		return TokenPair{}, fmt.Errorf("create user: %w", err)
	}

	membership := &model.Membership{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		ProjectID: projectID,
		Role:      model.RoleUser,
	}
	if err := s.members.Create(ctx, membership); err != nil {
		return TokenPair{}, fmt.Errorf("create membership: %w", err)
	}

	now := s.now().UTC()
	pair, err := s.issuePair(ctx, user, projectID, []string{string(membership.Role)}, userAgent, ip, now)
	if err != nil {
		return TokenPair{}, err
	}

	s.log.Info("user registered",
		zap.String("user_id", user.ID),
		zap.String("project_id", projectID))
	s.publishAsync(func(ctx context.Context) error {
		return s.events.PublishUserRegistered(ctx, queue.UserRegisteredEvent{
			UserID:       user.ID,
			Email:        user.Email,
			ProjectID:    projectID,
			Role:         string(membership.Role),
			RegisteredAt: now.Format(time.RFC3339),
		})
	})
	return pair, nil
}

// Login verifies credentials and project membership, then issues a
// fresh token pair. Unknown email, wrong password and disabled accounts
// all collapse to ErrInvalidCredentials.
func (s *SessionService) Login(ctx context.Context, email, rawPassword, projectID, userAgent, ip string) (TokenPair, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return TokenPair{}, ErrInvalidCredentials
		}
		return TokenPair{}, fmt.Errorf("load user: %w", err)
	}
	if !utils.VerifyPassword(user.PasswordHash, rawPassword) {
		return TokenPair{}, ErrInvalidCredentials
	}
	if !user.Enabled() {
		return TokenPair{}, ErrInvalidCredentials
	}

	if _, err := s.projects.GetActive(ctx, projectID); err != nil {
		if errors.Is(err, repository.ErrProjectNotFound) {
			return TokenPair{}, ErrProjectNotFound
		}
		return TokenPair{}, fmt.Errorf("load project: %w", err)
	}
	role, err := s.members.Resolve(ctx, user.ID, projectID)
	if err != nil {
		if errors.Is(err, repository.ErrNotAMember) {
			return TokenPair{}, ErrProjectAccessDenied
		}
		return TokenPair{}, fmt.Errorf("resolve membership: %w", err)
	}

	now := s.now().UTC()
	if err := s.users.TouchLastLogin(ctx, user.ID, now); err != nil {
		// Audit timestamp only; do not fail the login over it.
		s.log.Warn("touch last login failed", zap.String("user_id", user.ID), zap.Error(err))
	}

	return s.issuePair(ctx, &user, projectID, []string{string(role)}, userAgent, ip, now)
}

// Refresh rotates a refresh token: the presented token is consumed
// atomically, membership is re-resolved so role changes take effect,
// and a new pair is issued. The caller-supplied project id must equal
// the one the token was issued for; a token for project A can never
// mint a session for project B.
//
// Once consumption succeeds the remaining work runs on its own bounded
// context detached from caller cancellation: a client disconnect must
// not leave the token consumed without the replacement having been
// attempted, and the storage calls still carry a deadline.
// Should issuance still fail, the caller is left without a valid
// refresh token (fail-closed) rather than un-revoking, which would
// reopen the replay window.
func (s *SessionService) Refresh(ctx context.Context, presented, projectID, userAgent, ip string) (TokenPair, error) {
	now := s.now().UTC()
	rec, err := s.tokens.Consume(ctx, s.hasher.Hash(presented), projectID, now)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrTokenNotFound),
			errors.Is(err, repository.ErrTokenProjectMismatch),
			errors.Is(err, repository.ErrTokenSpent):
			// Internal reason stays in the logs; clients see one kind.
			s.log.Info("refresh rejected", zap.String("project_id", projectID), zap.String("reason", err.Error()))
			return TokenPair{}, ErrInvalidRefreshToken
		default:
			return TokenPair{}, fmt.Errorf("consume refresh token: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), issueTimeout)
	defer cancel()

	user, err := s.users.GetByID(ctx, rec.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return TokenPair{}, ErrInvalidRefreshToken
		}
		return TokenPair{}, fmt.Errorf("load user: %w", err)
	}
	if !user.Enabled() {
		return TokenPair{}, ErrInvalidRefreshToken
	}

	role, err := s.members.Resolve(ctx, user.ID, rec.ProjectID)
	if err != nil {
		if errors.Is(err, repository.ErrNotAMember) {
			return TokenPair{}, ErrProjectAccessDenied
		}
		return TokenPair{}, fmt.Errorf("resolve membership: %w", err)
	}

	return s.issuePair(ctx, &user, rec.ProjectID, []string{string(role)}, userAgent, ip, now)
}

// RevokeAll revokes every active refresh token of the user
// (logout-everywhere). Access tokens already in the wild stay valid
// until their own expiry.
func (s *SessionService) RevokeAll(ctx context.Context, userID string) error {
	now := s.now().UTC()
	if err := s.tokens.RevokeAllForUser(ctx, userID, now); err != nil {
		return fmt.Errorf("revoke tokens: %w", err)
	}
	s.log.Info("sessions revoked", zap.String("user_id", userID))
	s.publishAsync(func(ctx context.Context) error {
		return s.events.PublishSessionsRevoked(ctx, queue.SessionsRevokedEvent{
			UserID:    userID,
			RevokedAt: now.Format(time.RFC3339),
		})
	})
	return nil
}

// GetUserByID loads a user for presentation purposes.
func (s *SessionService) GetUserByID(ctx context.Context, id string) (model.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.User{}, ErrUserNotFound
		}
		return model.User{}, fmt.Errorf("load user: %w", err)
	}
	return user, nil
}

// issuePair mints one access token and one refresh token. The refresh
// plaintext never touches storage; only its keyed digest does.
func (s *SessionService) issuePair(ctx context.Context, user *model.User, projectID string, roles []string, userAgent, ip string, now time.Time) (TokenPair, error) {
	access, accessExp, err := s.codec.Issue(user.ID, user.Email, projectID, roles, now)
	if err != nil {
		return TokenPair{}, fmt.Errorf("issue access token: %w", err)
	}

	secret, err := token.NewRefreshSecret()
	if err != nil {
		return TokenPair{}, fmt.Errorf("generate refresh token: %w", err)
	}
	rec := &model.RefreshToken{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		ProjectID: projectID,
		TokenHash: s.hasher.Hash(secret),
		ExpiresAt: now.Add(s.refreshTTL),
		IssuedAt:  now,
		UserAgent: userAgent,
		IPAddress: ip,
	}
	if err := s.tokens.Create(ctx, rec); err != nil {
		return TokenPair{}, fmt.Errorf("store refresh token: %w", err)
	}

	return TokenPair{
		AccessToken:      access,
		AccessExpiresAt:  accessExp,
		RefreshToken:     secret,
		RefreshExpiresAt: rec.ExpiresAt,
	}, nil
}

// publishAsync runs fn on a bounded background context when an event
// publisher is configured.
func (s *SessionService) publishAsync(fn func(ctx context.Context) error) {
	if s.events == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		_ = fn(ctx)
	}()
}

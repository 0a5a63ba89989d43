package repository

import (
	"context"
	"time"

	"github.com/yuruojie777/auth-service/internal/model"
)

// UserStore persists user accounts.
type UserStore interface {
	// Create inserts a new user and returns ErrEmailExists when the
	// email unique key rejects the row.
	Create(ctx context.Context, u *model.User) error
	// GetByEmail returns ErrUserNotFound when no row matches.
	GetByEmail(ctx context.Context, email string) (model.User, error)
	// GetByID returns ErrUserNotFound when no row matches.
	GetByID(ctx context.Context, id string) (model.User, error)
	// TouchLastLogin records a successful login timestamp.
	TouchLastLogin(ctx context.Context, id string, at time.Time) error
}

// ProjectStore reads tenant rows. Projects are referenced by the
// session flows, never created by them.
type ProjectStore interface {
	// GetActive returns ErrProjectNotFound for unknown or inactive ids.
	GetActive(ctx context.Context, id string) (model.Project, error)
}

// MembershipStore resolves and creates (user, project, role) bindings.
type MembershipStore interface {
	// Create inserts a membership row; the unique (user_id, project_id)
	// key guarantees at most one row per pair.
	Create(ctx context.Context, m *model.Membership) error
	// Resolve returns the user's role in the project, or ErrNotAMember.
	Resolve(ctx context.Context, userID, projectID string) (model.Role, error)
}

// RefreshTokenStore persists refresh-token records keyed by the digest
// of the opaque secret. Consume is the single point of mutation for a
// presented token and must be atomic with respect to concurrent callers.
type RefreshTokenStore interface {
	Create(ctx context.Context, rec *model.RefreshToken) error
	// Consume marks the row matching tokenHash revoked and returns it,
	// but only if it is bound to projectID, not yet revoked and not
	// expired at now. Exactly one of any set of concurrent callers
	// presenting the same hash can succeed; the rest get ErrTokenSpent.
	// Other failures: ErrTokenNotFound, ErrTokenProjectMismatch.
	Consume(ctx context.Context, tokenHash, projectID string, now time.Time) (model.RefreshToken, error)
	// RevokeAllForUser revokes every active token of the user. The
	// transition is monotonic, so racing an in-flight Consume is safe.
	RevokeAllForUser(ctx context.Context, userID string, now time.Time) error
}

package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/yuruojie777/auth-service/internal/model"
)

// MembershipRepo is the MySQL-backed MembershipStore.
type MembershipRepo struct{ DB *sql.DB }

func NewMembershipRepo(db *sql.DB) *MembershipRepo { return &MembershipRepo{DB: db} }

// Create inserts a membership row. The unique (user_id, project_id) key
// keeps the relation single-valued.
func (r *MembershipRepo) Create(ctx context.Context, m *model.Membership) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO memberships (id, user_id, project_id, role) VALUES (?,?,?,?)",
		m.ID, m.UserID, m.ProjectID, m.Role)
	return err
}

// Resolve looks up the user's role within the project. Pure read, no
// locking: staleness of role data is bounded by the access-token TTL.
func (r *MembershipRepo) Resolve(ctx context.Context, userID, projectID string) (model.Role, error) {
	var role model.Role
	err := r.DB.QueryRowContext(ctx,
		"SELECT role FROM memberships WHERE user_id=? AND project_id=? LIMIT 1",
		userID, projectID).Scan(&role)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotAMember
		}
		return "", err
	}
	return role, nil
}

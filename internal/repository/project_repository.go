package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/yuruojie777/auth-service/internal/model"
)

// ProjectRepo is the MySQL-backed ProjectStore.
type ProjectRepo struct{ DB *sql.DB }

func NewProjectRepo(db *sql.DB) *ProjectRepo { return &ProjectRepo{DB: db} }

// GetActive fetches an active project by slug. Unknown ids and inactive
// projects are indistinguishable to callers.
func (r *ProjectRepo) GetActive(ctx context.Context, id string) (model.Project, error) {
	var p model.Project
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,name,active,created_at,updated_at FROM projects WHERE id=? AND active=1 LIMIT 1",
		id).Scan(&p.ID, &p.Name, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Project{}, ErrProjectNotFound
		}
		return model.Project{}, err
	}
	return p, nil
}

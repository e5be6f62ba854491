package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"batilink/internal/model"
)

type ProjectRepository struct {
	db DBTX
}

func NewProjectRepository(pool *pgxpool.Pool) *ProjectRepository {
	return &ProjectRepository{db: pool}
}

const projectColumns = `id, title, description, start_date, is_finished, address_id, customer_id, entreprise_id, created_at, updated_at`

func (r *ProjectRepository) Create(ctx context.Context, p model.Project) (model.Project, error) {
	err := r.db.QueryRow(ctx,
		`INSERT INTO projects (title, description, start_date, is_finished, address_id, customer_id, entreprise_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at, updated_at`,
		p.Title, p.Description, p.StartDate, p.IsFinished, p.AddressID, p.CustomerID, p.EntrepriseID).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return model.Project{}, fmt.Errorf("create project: %w", err)
	}
	return p, nil
}

func (r *ProjectRepository) FindByID(ctx context.Context, id int64) (model.Project, error) {
	return scanProject(r.db.QueryRow(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE id = $1`, id))
}

func (r *ProjectRepository) List(ctx context.Context) ([]model.Project, error) {
	return r.queryProjects(ctx, `SELECT `+projectColumns+` FROM projects ORDER BY id`)
}

// ListByUser returns projects where the user is either side of the deal.
func (r *ProjectRepository) ListByUser(ctx context.Context, userID int64) ([]model.Project, error) {
	return r.queryProjects(ctx,
		`SELECT `+projectColumns+` FROM projects
		 WHERE customer_id = $1 OR entreprise_id = $1
		 ORDER BY id`, userID)
}

// Search filters open projects by profession name and/or city of the
// project address.
func (r *ProjectRepository) Search(ctx context.Context, professionName string, city string) ([]model.Project, error) {
	return r.queryProjects(ctx,
		`SELECT DISTINCT p.id, p.title, p.description, p.start_date, p.is_finished,
		        p.address_id, p.customer_id, p.entreprise_id, p.created_at, p.updated_at
		 FROM projects p
		 LEFT JOIN addresses a ON a.id = p.address_id
		 LEFT JOIN tasks t ON t.project_id = p.id
		 LEFT JOIN task_has_profession thp ON thp.task_id = t.id
		 LEFT JOIN professions pr ON pr.id = thp.profession_id
		 WHERE p.is_finished = FALSE
		   AND ($1 = '' OR pr.profession_name ILIKE '%' || $1 || '%')
		   AND ($2 = '' OR a.city ILIKE '%' || $2 || '%')
		 ORDER BY p.id`, professionName, city)
}

func (r *ProjectRepository) Update(ctx context.Context, p model.Project) (model.Project, error) {
	err := r.db.QueryRow(ctx,
		`UPDATE projects
		 SET title = $2, description = $3, start_date = $4, is_finished = $5,
		     address_id = $6, entreprise_id = $7, updated_at = now()
		 WHERE id = $1
		 RETURNING updated_at`,
		p.ID, p.Title, p.Description, p.StartDate, p.IsFinished, p.AddressID, p.EntrepriseID).
		Scan(&p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Project{}, model.ErrNotFound
	}
	if err != nil {
		return model.Project{}, fmt.Errorf("update project: %w", err)
	}
	return p, nil
}

// Accept assigns an entreprise to the project.
func (r *ProjectRepository) Accept(ctx context.Context, id int64, entrepriseID int64) (model.Project, error) {
	return scanProject(r.db.QueryRow(ctx,
		`UPDATE projects SET entreprise_id = $2, updated_at = now()
		 WHERE id = $1
		 RETURNING `+projectColumns, id, entrepriseID))
}

func (r *ProjectRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *ProjectRepository) queryProjects(ctx context.Context, sql string, args ...any) ([]model.Project, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query projects: %w", err)
	}
	defer rows.Close()

	projects := make([]model.Project, 0)
	for rows.Next() {
		var p model.Project
		if err := rows.Scan(&p.ID, &p.Title, &p.Description, &p.StartDate, &p.IsFinished,
			&p.AddressID, &p.CustomerID, &p.EntrepriseID, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func scanProject(row pgx.Row) (model.Project, error) {
	var p model.Project
	err := row.Scan(&p.ID, &p.Title, &p.Description, &p.StartDate, &p.IsFinished,
		&p.AddressID, &p.CustomerID, &p.EntrepriseID, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Project{}, model.ErrNotFound
	}
	if err != nil {
		return model.Project{}, fmt.Errorf("scan project: %w", err)
	}
	return p, nil
}

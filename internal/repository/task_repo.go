package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"batilink/internal/model"
)

type TaskRepository struct {
	db DBTX
}

func NewTaskRepository(pool *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{db: pool}
}

const taskColumns = `id, title, description, start_date, end_date, status, user_id, project_id, created_at, updated_at`

func (r *TaskRepository) Create(ctx context.Context, t model.Task) (model.Task, error) {
	err := r.db.QueryRow(ctx,
		`INSERT INTO tasks (title, description, start_date, end_date, status, user_id, project_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at, updated_at`,
		t.Title, t.Description, t.StartDate, t.EndDate, t.Status, t.UserID, t.ProjectID).
		Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return model.Task{}, fmt.Errorf("create task: %w", err)
	}
	return t, nil
}

func (r *TaskRepository) FindByID(ctx context.Context, id int64) (model.Task, error) {
	return scanTask(r.db.QueryRow(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id))
}

func (r *TaskRepository) ListByProject(ctx context.Context, projectID int64) ([]model.Task, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE project_id = $1 ORDER BY start_date, id`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]model.Task, 0)
	for rows.Next() {
		var t model.Task
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.StartDate, &t.EndDate,
			&t.Status, &t.UserID, &t.ProjectID, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (r *TaskRepository) Update(ctx context.Context, t model.Task) (model.Task, error) {
	err := r.db.QueryRow(ctx,
		`UPDATE tasks
		 SET title = $2, description = $3, start_date = $4, end_date = $5,
		     status = $6, user_id = $7, updated_at = now()
		 WHERE id = $1
		 RETURNING updated_at`,
		t.ID, t.Title, t.Description, t.StartDate, t.EndDate, t.Status, t.UserID).
		Scan(&t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Task{}, model.ErrNotFound
	}
	if err != nil {
		return model.Task{}, fmt.Errorf("update task: %w", err)
	}
	return t, nil
}

func (r *TaskRepository) Delete(ctx context.Context, id int64) error {
	// Profession links go first to satisfy the foreign key.
	if _, err := r.db.Exec(ctx, `DELETE FROM task_has_profession WHERE task_id = $1`, id); err != nil {
		return fmt.Errorf("detach task professions: %w", err)
	}

	tag, err := r.db.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *TaskRepository) Professions(ctx context.Context, taskID int64) ([]model.Profession, error) {
	rows, err := r.db.Query(ctx,
		`SELECT pr.id, pr.profession_name, pr.created_at, pr.updated_at
		 FROM task_has_profession thp
		 JOIN professions pr ON pr.id = thp.profession_id
		 WHERE thp.task_id = $1
		 ORDER BY pr.profession_name`, taskID)
	if err != nil {
		return nil, fmt.Errorf("list task professions: %w", err)
	}
	defer rows.Close()

	out := make([]model.Profession, 0)
	for rows.Next() {
		var p model.Profession
		if err := rows.Scan(&p.ID, &p.ProfessionName, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan profession: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *TaskRepository) AttachProfession(ctx context.Context, taskID int64, professionID int64) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO task_has_profession (task_id, profession_id)
		 VALUES ($1, $2)
		 ON CONFLICT DO NOTHING`, taskID, professionID)
	if err != nil {
		return fmt.Errorf("attach profession to task: %w", err)
	}
	return nil
}

func (r *TaskRepository) DetachProfession(ctx context.Context, taskID int64, professionID int64) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM task_has_profession WHERE task_id = $1 AND profession_id = $2`, taskID, professionID)
	if err != nil {
		return fmt.Errorf("detach profession from task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}

func scanTask(row pgx.Row) (model.Task, error) {
	var t model.Task
	err := row.Scan(&t.ID, &t.Title, &t.Description, &t.StartDate, &t.EndDate,
		&t.Status, &t.UserID, &t.ProjectID, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Task{}, model.ErrNotFound
	}
	if err != nil {
		return model.Task{}, fmt.Errorf("scan task: %w", err)
	}
	return t, nil
}

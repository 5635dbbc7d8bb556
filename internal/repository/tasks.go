package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/sysu-ecnc-dev/project-planner/backend/internal/domain"
)

const taskColumns = `t.id, t.project_id, t.title, t.description, t.estimated_hours, t.required_skills, t.category, t.progress, t.status, t.assigned_to, t.due_date, t.created_at, t.version`

func scanTask(s scanner) (*domain.Task, error) {
	task := &domain.Task{}
	var (
		skills     []byte
		assignedTo sql.NullInt64
		dueDate    sql.NullTime
	)

	dst := []any{
		&task.ID,
		&task.ProjectID,
		&task.Title,
		&task.Description,
		&task.EstimatedHours,
		&skills,
		&task.Category,
		&task.Progress,
		&task.Status,
		&assignedTo,
		&dueDate,
		&task.CreatedAt,
		&task.Version,
	}
	if err := s.Scan(dst...); err != nil {
		return nil, err
	}

	task.RequiredSkills = make([]string, 0)
	if err := decodeJSONB(skills, &task.RequiredSkills); err != nil {
		return nil, err
	}
	if assignedTo.Valid {
		task.AssignedTo = &assignedTo.Int64
	}
	if dueDate.Valid {
		task.DueDate = &dueDate.Time
	}

	return task, nil
}

func (r *Repository) queryTasks(ctx context.Context, query string, args ...any) ([]*domain.Task, error) {
	rows, err := r.dbpool.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]*domain.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return tasks, nil
}

func (r *Repository) CreateTask(task *domain.Task) error {
	ctx, cancel := r.queryContext()
	defer cancel()

	skills, err := jsonb(task.RequiredSkills)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO tasks (project_id, title, description, estimated_hours, required_skills, category)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, progress, status, created_at, version
	`

	args := []any{task.ProjectID, task.Title, task.Description, task.EstimatedHours, skills, task.Category}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&task.ID, &task.Progress, &task.Status, &task.CreatedAt, &task.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetTaskByID(id int64) (*domain.Task, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `SELECT ` + taskColumns + ` FROM tasks t WHERE t.id = $1`

	return scanTask(r.dbpool.QueryRowContext(ctx, query, id))
}

// GetTasksByProjectID 按创建顺序返回项目的所有任务，分配时依赖这个顺序
func (r *Repository) GetTasksByProjectID(projectID int64) ([]*domain.Task, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `SELECT ` + taskColumns + ` FROM tasks t WHERE t.project_id = $1 ORDER BY t.id`

	return r.queryTasks(ctx, query, projectID)
}

// GetMemberOpenTasks 返回项目成员名下所有未完成的任务，包括其他项目的任务
func (r *Repository) GetMemberOpenTasks(projectID int64) ([]*domain.Task, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		SELECT ` + taskColumns + `
		FROM tasks t
		JOIN project_members pm ON pm.employee_id = t.assigned_to
		WHERE pm.project_id = $1 AND t.progress < 100
		ORDER BY t.id
	`

	return r.queryTasks(ctx, query, projectID)
}

// GetOverdueTasks 返回截止时间早于 now 且仍处于 TODO 或 IN_PROGRESS 的任务
func (r *Repository) GetOverdueTasks(now time.Time) ([]*domain.Task, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		SELECT ` + taskColumns + `
		FROM tasks t
		WHERE t.due_date < $1 AND t.status IN ('TODO', 'IN_PROGRESS')
		ORDER BY t.id
	`

	return r.queryTasks(ctx, query, now)
}

// UpdateTaskProgress 保存进度、状态和截止时间，版本号不一致时返回 ErrEditConflict
func (r *Repository) UpdateTaskProgress(task *domain.Task) error {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		UPDATE tasks
		SET
			progress = $1,
			status = $2,
			due_date = $3,
			version = version + 1
		WHERE id = $4 AND version = $5
		RETURNING version
	`

	args := []any{task.Progress, task.Status, task.DueDate, task.ID, task.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&task.Version); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrEditConflict
		}
		return err
	}

	return nil
}

func (r *Repository) DeleteTask(id int64) error {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `DELETE FROM tasks WHERE id = $1`

	if _, err := r.dbpool.ExecContext(ctx, query, id); err != nil {
		return err
	}

	return nil
}

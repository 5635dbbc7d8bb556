package repository

import (
	"database/sql"
	"errors"

	"github.com/sysu-ecnc-dev/project-planner/backend/internal/domain"
)

// ErrLastMember 项目至少需要保留一名成员
var ErrLastMember = errors.New("不能移除项目的最后一名成员")

// CreateProject 创建项目，负责人会自动成为项目成员
func (r *Repository) CreateProject(project *domain.Project) error {
	ctx, cancel := r.txContext()
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		INSERT INTO projects (name, description, leader_id)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, version
	`
	if err := tx.QueryRowContext(ctx, query, project.Name, project.Description, project.LeaderID).Scan(&project.ID, &project.CreatedAt, &project.Version); err != nil {
		return err
	}

	query = `INSERT INTO project_members (project_id, employee_id) VALUES ($1, $2)`
	if _, err := tx.ExecContext(ctx, query, project.ID, project.LeaderID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

// GetAllProjects 只返回项目本身的信息，不包括成员和任务
func (r *Repository) GetAllProjects() ([]*domain.Project, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		SELECT id, name, description, leader_id, created_at, version
		FROM projects
		ORDER BY id
	`

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	projects := make([]*domain.Project, 0)
	for rows.Next() {
		project := &domain.Project{
			Members: make([]*domain.Employee, 0),
			Tasks:   make([]*domain.Task, 0),
		}
		dst := []any{&project.ID, &project.Name, &project.Description, &project.LeaderID, &project.CreatedAt, &project.Version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		projects = append(projects, project)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return projects, nil
}

// GetProjectByID 返回项目及其成员和任务
func (r *Repository) GetProjectByID(id int64) (*domain.Project, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	project := &domain.Project{
		ID: id,
	}

	query := `SELECT name, description, leader_id, created_at, version FROM projects WHERE id = $1`
	dst := []any{&project.Name, &project.Description, &project.LeaderID, &project.CreatedAt, &project.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	members, err := r.GetProjectMembers(id)
	if err != nil {
		return nil, err
	}
	project.Members = members

	tasks, err := r.GetTasksByProjectID(id)
	if err != nil {
		return nil, err
	}
	project.Tasks = tasks

	return project, nil
}

// GetProjectMembers 按加入顺序返回项目成员
func (r *Repository) GetProjectMembers(projectID int64) ([]*domain.Employee, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		SELECT e.id, e.username, e.full_name, e.email, e.skills, e.preferences, e.strike_count, e.created_at, e.version
		FROM employees e
		JOIN project_members pm ON pm.employee_id = e.id
		WHERE pm.project_id = $1
		ORDER BY pm.joined_at, e.id
	`

	rows, err := r.dbpool.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := make([]*domain.Employee, 0)
	for rows.Next() {
		member, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, member)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return members, nil
}

func (r *Repository) DeleteProject(id int64) error {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `DELETE FROM projects WHERE id = $1`

	if _, err := r.dbpool.ExecContext(ctx, query, id); err != nil {
		return err
	}

	return nil
}

func (r *Repository) AddProjectMember(projectID, employeeID int64) error {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		INSERT INTO project_members (project_id, employee_id)
		VALUES ($1, $2)
		ON CONFLICT (project_id, employee_id) DO NOTHING
	`

	if _, err := r.dbpool.ExecContext(ctx, query, projectID, employeeID); err != nil {
		return err
	}

	return nil
}

// RemoveProjectMember 移除项目成员，员工不在项目中时返回 sql.ErrNoRows
func (r *Repository) RemoveProjectMember(projectID, employeeID int64) error {
	ctx, cancel := r.txContext()
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// 锁住项目，防止并发移除导致项目没有成员
	query := `SELECT id FROM projects WHERE id = $1 FOR UPDATE`
	if _, err := tx.ExecContext(ctx, query, projectID); err != nil {
		return err
	}

	var count int
	query = `SELECT COUNT(*) FROM project_members WHERE project_id = $1`
	if err := tx.QueryRowContext(ctx, query, projectID).Scan(&count); err != nil {
		return err
	}
	if count <= 1 {
		return ErrLastMember
	}

	query = `DELETE FROM project_members WHERE project_id = $1 AND employee_id = $2`
	res, err := tx.ExecContext(ctx, query, projectID, employeeID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

package repository

import (
	"database/sql"
	"errors"

	"github.com/sysu-ecnc-dev/project-planner/backend/internal/domain"
)

const employeeColumns = `id, username, full_name, email, skills, preferences, strike_count, created_at, version`

func scanEmployee(s scanner) (*domain.Employee, error) {
	employee := &domain.Employee{}
	var skills, preferences []byte

	dst := []any{&employee.ID, &employee.Username, &employee.FullName, &employee.Email, &skills, &preferences, &employee.StrikeCount, &employee.CreatedAt, &employee.Version}
	if err := s.Scan(dst...); err != nil {
		return nil, err
	}

	employee.Profile.Skills = domain.SkillLevels{}
	employee.Profile.Preferences = domain.PreferenceLevels{}
	if err := decodeJSONB(skills, &employee.Profile.Skills); err != nil {
		return nil, err
	}
	if err := decodeJSONB(preferences, &employee.Profile.Preferences); err != nil {
		return nil, err
	}

	return employee, nil
}

func (r *Repository) CreateEmployee(employee *domain.Employee) error {
	ctx, cancel := r.queryContext()
	defer cancel()

	skills, err := jsonb(employee.Profile.Skills)
	if err != nil {
		return err
	}
	preferences, err := jsonb(employee.Profile.Preferences)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO employees (username, full_name, email, skills, preferences)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, strike_count, created_at, version
	`

	args := []any{employee.Username, employee.FullName, employee.Email, skills, preferences}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&employee.ID, &employee.StrikeCount, &employee.CreatedAt, &employee.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetEmployeeByID(id int64) (*domain.Employee, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `SELECT ` + employeeColumns + ` FROM employees WHERE id = $1`

	return scanEmployee(r.dbpool.QueryRowContext(ctx, query, id))
}

func (r *Repository) GetEmployeeByUsername(username string) (*domain.Employee, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `SELECT ` + employeeColumns + ` FROM employees WHERE username = $1`

	return scanEmployee(r.dbpool.QueryRowContext(ctx, query, username))
}

func (r *Repository) GetAllEmployees() ([]*domain.Employee, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `SELECT ` + employeeColumns + ` FROM employees ORDER BY id`

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	employees := make([]*domain.Employee, 0)
	for rows.Next() {
		employee, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, employee)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return employees, nil
}

// UpdateEmployeeProfile 只更新技能、偏好和全名，版本号不一致时返回 ErrEditConflict
func (r *Repository) UpdateEmployeeProfile(employee *domain.Employee) error {
	ctx, cancel := r.queryContext()
	defer cancel()

	skills, err := jsonb(employee.Profile.Skills)
	if err != nil {
		return err
	}
	preferences, err := jsonb(employee.Profile.Preferences)
	if err != nil {
		return err
	}

	query := `
		UPDATE employees
		SET
			full_name = $1,
			skills = $2,
			preferences = $3,
			version = version + 1
		WHERE id = $4 AND version = $5
		RETURNING version
	`

	args := []any{employee.FullName, skills, preferences, employee.ID, employee.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&employee.Version); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrEditConflict
		}
		return err
	}

	return nil
}

func (r *Repository) CheckEmailIfExists(email string) (bool, error) {
	isExists := false

	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		SELECT EXISTS (SELECT 1 FROM employees WHERE email = $1)
	`
	if err := r.dbpool.QueryRowContext(ctx, query, email).Scan(&isExists); err != nil {
		return false, err
	}

	return isExists, nil
}

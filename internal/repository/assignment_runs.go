package repository

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sysu-ecnc-dev/project-planner/backend/internal/domain"
	"github.com/sysu-ecnc-dev/project-planner/backend/internal/tracking"
)

// SaveAssignmentResult 在同一个事务中保存分配结果和被分配的任务
// 任何一个任务在读取之后被修改过都会导致整个事务回滚并返回 ErrEditConflict
func (r *Repository) SaveAssignmentResult(result *domain.AssignmentResult, tasks []*domain.Task) error {
	ctx, cancel := r.txContext()
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	assigned := make(map[int64]bool, result.AssignedCount)
	for _, id := range result.AssignedTaskIDs() {
		assigned[id] = true
	}

	query := `
		UPDATE tasks
		SET
			assigned_to = $1,
			due_date = $2,
			status = $3,
			progress = $4,
			version = version + 1
		WHERE id = $5 AND version = $6 AND assigned_to IS NULL
		RETURNING version
	`
	for _, task := range tasks {
		if !assigned[task.ID] {
			continue
		}

		args := []any{task.AssignedTo, task.DueDate, task.Status, task.Progress, task.ID, task.Version}
		if err := tx.QueryRowContext(ctx, query, args...).Scan(&task.Version); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrEditConflict
			}
			return err
		}
	}

	entries, err := jsonb(result.Entries)
	if err != nil {
		return err
	}

	query = `
		INSERT INTO assignment_runs (id, project_id, status, message, assigned_count, unassigned_count, entries, started_at, duration_ms)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	args := []any{
		result.RunID,
		result.ProjectID,
		result.Status,
		result.Message,
		result.AssignedCount,
		result.UnassignedCount,
		entries,
		result.StartedAt,
		result.Duration.Milliseconds(),
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

// GetAssignmentRun 读取一次分配记录
func (r *Repository) GetAssignmentRun(runID uuid.UUID) (*domain.AssignmentResult, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		SELECT project_id, status, message, assigned_count, unassigned_count, entries, started_at, duration_ms
		FROM assignment_runs
		WHERE id = $1
	`

	result := &domain.AssignmentResult{
		RunID: runID,
	}
	var (
		entries    []byte
		durationMS int64
	)
	dst := []any{&result.ProjectID, &result.Status, &result.Message, &result.AssignedCount, &result.UnassignedCount, &entries, &result.StartedAt, &durationMS}
	if err := r.dbpool.QueryRowContext(ctx, query, runID).Scan(dst...); err != nil {
		return nil, err
	}

	result.Entries = make([]domain.AssignmentEntry, 0)
	if err := decodeJSONB(entries, &result.Entries); err != nil {
		return nil, err
	}
	result.Duration = time.Duration(durationMS) * time.Millisecond

	return result, nil
}

// ApplySweep 保存逾期检查的结果，返回实际生效的记录
// 任务在检查之后已经被其他请求修改过状态时跳过，不会重复记录
func (r *Repository) ApplySweep(report tracking.SweepReport) ([]tracking.Strike, error) {
	ctx, cancel := r.txContext()
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	applied := make([]tracking.Strike, 0, len(report.Strikes))
	for _, strike := range report.Strikes {
		query := `
			UPDATE tasks
			SET status = 'OVERDUE', version = version + 1
			WHERE id = $1 AND assigned_to = $2 AND status IN ('TODO', 'IN_PROGRESS')
		`
		res, err := tx.ExecContext(ctx, query, strike.TaskID, strike.EmployeeID)
		if err != nil {
			return nil, err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return nil, err
		}
		if affected == 0 {
			continue
		}

		query = `
			UPDATE employees
			SET strike_count = strike_count + 1, version = version + 1
			WHERE id = $1
			RETURNING strike_count
		`
		if err := tx.QueryRowContext(ctx, query, strike.EmployeeID).Scan(&strike.StrikeCount); err != nil {
			return nil, err
		}
		applied = append(applied, strike)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return applied, nil
}

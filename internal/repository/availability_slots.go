package repository

import (
	"github.com/sysu-ecnc-dev/project-planner/backend/internal/domain"
)

func (r *Repository) CreateAvailabilitySlots(slots []*domain.AvailabilitySlot) error {
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
		INSERT INTO availability_slots (employee_id, start_time, end_time)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	for _, slot := range slots {
		if err := tx.QueryRowContext(ctx, query, slot.EmployeeID, slot.StartTime, slot.EndTime).Scan(&slot.ID); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetAvailabilitySlotsByEmployeeID(employeeID int64) ([]*domain.AvailabilitySlot, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		SELECT id, employee_id, start_time, end_time
		FROM availability_slots
		WHERE employee_id = $1
		ORDER BY start_time
	`

	rows, err := r.dbpool.QueryContext(ctx, query, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanAvailabilitySlots(rows)
}

// GetAvailabilitySlotsByProjectID 返回项目所有成员的空闲时间
func (r *Repository) GetAvailabilitySlotsByProjectID(projectID int64) ([]*domain.AvailabilitySlot, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		SELECT s.id, s.employee_id, s.start_time, s.end_time
		FROM availability_slots s
		JOIN project_members pm ON pm.employee_id = s.employee_id
		WHERE pm.project_id = $1
		ORDER BY s.employee_id, s.start_time
	`

	rows, err := r.dbpool.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanAvailabilitySlots(rows)
}

// DeleteAvailabilitySlotsByEmployeeID 清空员工的所有空闲时间，返回删除的条数
func (r *Repository) DeleteAvailabilitySlotsByEmployeeID(employeeID int64) (int64, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `DELETE FROM availability_slots WHERE employee_id = $1`

	res, err := r.dbpool.ExecContext(ctx, query, employeeID)
	if err != nil {
		return 0, err
	}

	return res.RowsAffected()
}

func scanAvailabilitySlots(rows interface {
	scanner
	Next() bool
	Err() error
}) ([]*domain.AvailabilitySlot, error) {
	slots := make([]*domain.AvailabilitySlot, 0)
	for rows.Next() {
		slot := &domain.AvailabilitySlot{}
		if err := rows.Scan(&slot.ID, &slot.EmployeeID, &slot.StartTime, &slot.EndTime); err != nil {
			return nil, err
		}
		slots = append(slots, slot)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return slots, nil
}

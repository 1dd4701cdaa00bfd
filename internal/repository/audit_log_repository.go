package repository

import (
	"context"
	"fmt"
	"time"

	"store-service/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type auditLogRepo struct {
	db *pgxpool.Pool
}

func NewAuditLogRepository(db *pgxpool.Pool) AuditLogRepository {
	return &auditLogRepo{db: db}
}

func (r *auditLogRepo) Create(ctx context.Context, entry *models.AuditLog) error {
	if entry == nil {
		return fmt.Errorf("%w: audit entry cannot be nil", ErrInvalidInput)
	}
	if entry.Action == "" {
		return fmt.Errorf("%w: audit action is required", ErrInvalidInput)
	}
	if entry.TargetType == "" {
		return fmt.Errorf("%w: audit target type is required", ErrInvalidInput)
	}

	sql := `INSERT INTO audit_logs (
		action,
		target_type,
		target_id,
		user_id,
		details,
		created_at
		) VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING audit_id, created_at`

	err := r.db.QueryRow(ctx, sql,
		entry.Action,
		entry.TargetType,
		entry.TargetID,
		entry.UserID,
		entry.Details,
		time.Now(),
	).Scan(&entry.AuditID, &entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create audit log: %w", err)
	}

	return nil
}

func (r *auditLogRepo) GetAll(ctx context.Context, limit int) ([]models.AuditLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	sql := `SELECT
		audit_id,
		action,
		target_type,
		target_id,
		user_id,
		details,
		created_at
		FROM audit_logs
		ORDER BY audit_id DESC
		LIMIT $1`

	rows, err := r.db.Query(ctx, sql, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get audit logs: %w", err)
	}
	defer rows.Close()

	var entries []models.AuditLog

	for rows.Next() {
		var e models.AuditLog

		err := rows.Scan(
			&e.AuditID,
			&e.Action,
			&e.TargetType,
			&e.TargetID,
			&e.UserID,
			&e.Details,
			&e.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit log: %w", err)
		}

		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to complete row iteration: %w", err)
	}

	return entries, nil
}

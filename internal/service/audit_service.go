package service

import (
	"context"
	"encoding/json"

	"store-service/internal/models"
	"store-service/internal/repository"

	"go.uber.org/zap"
)

// Audit actions and target types recorded by the service.
const (
	AuditActionCreate      = "CREATE"
	AuditActionUpdate      = "UPDATE"
	AuditActionStockAdjust = "STOCK_ADJUST"

	AuditTargetOrder   = "ORDER"
	AuditTargetProduct = "PRODUCT"
)

// AuditService records administrative actions on a best-effort basis.
// Failures are logged and swallowed so they never affect the operation
// being audited.
type AuditService struct {
	repo   repository.AuditLogRepository
	logger *zap.Logger
}

func NewAuditService(repo repository.AuditLogRepository, logger *zap.Logger) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditService{repo: repo, logger: logger}
}

// Record writes an audit entry. details may be any JSON-serializable payload.
func (s *AuditService) Record(ctx context.Context, action, targetType string, targetID, userID *string, details interface{}) {
	if s.repo == nil {
		return
	}

	entry := &models.AuditLog{
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
		UserID:     userID,
	}

	if details != nil {
		data, err := json.Marshal(details)
		if err != nil {
			s.logger.Warn("failed to marshal audit details", zap.Error(err))
		} else {
			str := string(data)
			entry.Details = &str
		}
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		s.logger.Warn("failed to create audit log",
			zap.String("action", action),
			zap.String("target_type", targetType),
			zap.Error(err),
		)
	}
}

func (s *AuditService) List(ctx context.Context, limit int) ([]models.AuditLog, error) {
	return s.repo.GetAll(ctx, limit)
}

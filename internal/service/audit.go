package service

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/Darlington720/library-module/internal/models"
)

type auditLogger interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// emitAudit persists an audit entry. Failures are logged, never surfaced.
func emitAudit(ctx context.Context, audit auditLogger, logger *zap.Logger, session *models.Session, log *models.AuditLog) {
	if audit == nil || log == nil {
		return
	}
	if session != nil {
		actor := session.Actor()
		if actor != "" {
			log.UserID = &actor
		}
		log.IPAddress = session.ClientIP
		log.UserAgent = session.UserAgent
	}
	if log.IPAddress == "" {
		log.IPAddress = "system"
	}
	if err := audit.CreateAuditLog(ctx, log); err != nil {
		logger.Warn("failed to persist audit log", zap.String("action", log.Action), zap.Error(err))
	}
}

func auditValues(v interface{}) []byte {
	raw, err := json.Marshal(v)
	if err != nil {
		return []byte("{}")
	}
	return raw
}

func stringPtr(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

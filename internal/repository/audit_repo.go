package repository

import (
	"citamed/internal/models"

	"gorm.io/gorm"
)

type AuditLogRepository struct {
	db *gorm.DB
}

func NewAuditLogRepository(db *gorm.DB) *AuditLogRepository {
	return &AuditLogRepository{db: db}
}

func (r *AuditLogRepository) Create(l *models.AuditLog) error {
	return r.db.Create(l).Error
}

func (r *AuditLogRepository) ListByUser(userID uint, limit int) ([]models.AuditLog, error) {
	var list []models.AuditLog
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Limit(limit).Find(&list).Error
	return list, err
}

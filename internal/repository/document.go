package repository

import (
	"context"

	"github.com/arclyte/accounts/internal/model"
	ctxutil "github.com/arclyte/accounts/pkg/context"
	"github.com/arclyte/accounts/pkg/logger"
	"gorm.io/gorm"
)

type DocumentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// CreateBatch appends document metadata rows.
func (r *DocumentRepository) CreateBatch(ctx context.Context, docs []model.Document) error {
	ctx = ctxutil.WithScope(ctx, "repository", "CreateBatch")

	if len(docs) == 0 {
		return nil
	}

	if err := r.db.WithContext(ctx).Create(&docs).Error; err != nil {
		logger.ErrorWithContext(ctx, "Failed to create documents").
			Int("document_count", len(docs)).
			Err(err).
			Log()
		return err
	}

	logger.InfoWithContext(ctx, "Documents created").
		Int("document_count", len(docs)).
		Log()

	return nil
}

// ListByUser returns a user's document rows, newest first.
func (r *DocumentRepository) ListByUser(ctx context.Context, userID string) ([]model.Document, error) {
	ctx = ctxutil.WithScope(ctx, "repository", "ListByUser")

	var docs []model.Document
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&docs).Error
	if err != nil {
		logger.ErrorWithContext(ctx, "Failed to list documents").
			String("target_user_id", userID).
			Err(err).
			Log()
		return nil, err
	}

	return docs, nil
}

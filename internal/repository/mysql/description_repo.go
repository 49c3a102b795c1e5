package mysql

import (
	"context"

	"gorm.io/gorm"

	"dormdigest/internal/model"
	"dormdigest/internal/pkg"
)

// DescriptionRepository stores description text as ordered chunks of at
// most ChunkSize bytes.
type DescriptionRepository struct {
	DB        *gorm.DB
	ChunkSize int
}

func (r *DescriptionRepository) chunkSize() int {
	if r.ChunkSize > 0 {
		return r.ChunkSize
	}
	return model.DescriptionChunkSize
}

// Store splits text and writes every chunk in one transaction. Empty text
// writes nothing. A variant that already has rows is a conflict; use
// Replace to overwrite it.
func (r *DescriptionRepository) Store(ctx context.Context, eventID uint64, contentType model.ContentType, text string) (int, error) {
	if !contentType.Valid() {
		return 0, pkg.Validationf("unknown content type %d", contentType)
	}
	limit := r.chunkSize()
	chunks, err := pkg.SplitChunks(text, limit)
	if err != nil || len(chunks) == 0 {
		return 0, err
	}

	rows := make([]model.EventDescription, len(chunks))
	for i, data := range chunks {
		rows[i] = model.EventDescription{
			EventID:      eventID,
			ContentType:  contentType,
			ContentIndex: i,
			Data:         data,
		}
		if err := rows[i].Validate(limit); err != nil {
			return 0, err
		}
	}

	err = r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&model.EventDescription{}).
			Where("event_id = ? AND content_type = ?", eventID, contentType).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return pkg.Conflictf("event %d already has a %s description", eventID, contentType)
		}
		// one row per statement keeps each packet under the chunk bound
		for i := range rows {
			if err := tx.Create(&rows[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}

// Replace swaps the stored variant for text atomically.
func (r *DescriptionRepository) Replace(ctx context.Context, eventID uint64, contentType model.ContentType, text string) (int, error) {
	var n int
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inner := &DescriptionRepository{DB: tx, ChunkSize: r.ChunkSize}
		if err := inner.Delete(ctx, eventID, contentType); err != nil {
			return err
		}
		var err error
		n, err = inner.Store(ctx, eventID, contentType, text)
		return err
	})
	return n, err
}

// Load reassembles the variant. maxLength < 0 returns the whole text;
// otherwise at most maxLength characters plus pkg.Ellipsis. A missing
// variant loads as "".
func (r *DescriptionRepository) Load(ctx context.Context, eventID uint64, contentType model.ContentType, maxLength int) (string, error) {
	chunks, err := r.Chunks(ctx, eventID, contentType)
	if err != nil {
		return "", err
	}
	text, err := pkg.JoinChunks(chunks)
	if err != nil {
		return "", err
	}
	text, _ = pkg.Truncate(text, maxLength)
	return text, nil
}

func (r *DescriptionRepository) Chunks(ctx context.Context, eventID uint64, contentType model.ContentType) ([]pkg.Chunk, error) {
	var rows []model.EventDescription
	if err := r.DB.WithContext(ctx).
		Where("event_id = ? AND content_type = ?", eventID, contentType).
		Order("content_index ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	chunks := make([]pkg.Chunk, len(rows))
	for i, row := range rows {
		chunks[i] = pkg.Chunk{Index: row.ContentIndex, Data: row.Data}
	}
	return chunks, nil
}

func (r *DescriptionRepository) Delete(ctx context.Context, eventID uint64, contentType model.ContentType) error {
	return r.DB.WithContext(ctx).
		Where("event_id = ? AND content_type = ?", eventID, contentType).
		Delete(&model.EventDescription{}).Error
}

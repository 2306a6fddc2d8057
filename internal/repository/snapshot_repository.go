package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"task-board-core/internal/domain"
)

// BoardDocument is the persisted board layout: the full list/card tree plus
// the shortId counter, stored as a single versionless JSON document.
type BoardDocument struct {
	Lists       []*domain.List `json:"lists"`
	NextShortID int64          `json:"nextShortId"`
}

// boardSnapshotRecord is the single-row table holding the board document.
type boardSnapshotRecord struct {
	ID        uint           `gorm:"primaryKey"`
	Document  datatypes.JSON `gorm:"not null"`
	UpdatedAt time.Time
}

// TableName specifies the table name for boardSnapshotRecord
func (boardSnapshotRecord) TableName() string {
	return "board_snapshots"
}

// automationDocumentRecord is the single-row table holding the automation
// configuration document.
type automationDocumentRecord struct {
	ID        uint           `gorm:"primaryKey"`
	Document  datatypes.JSON `gorm:"not null"`
	UpdatedAt time.Time
}

// TableName specifies the table name for automationDocumentRecord
func (automationDocumentRecord) TableName() string {
	return "automation_documents"
}

// Both documents live in fixed single rows.
const documentRowID = 1

// SnapshotRepository persists the board and automation documents.
type SnapshotRepository interface {
	SaveBoard(doc *BoardDocument) error
	LoadBoard() (*BoardDocument, error)
	ClearBoard() error
	SaveAutomation(cfg *domain.AutomationConfig) error
	LoadAutomation() (*domain.AutomationConfig, error)
}

type snapshotRepositoryImpl struct {
	db *gorm.DB
}

// NewSnapshotRepository migrates the snapshot tables and returns the
// repository.
func NewSnapshotRepository(db *gorm.DB) (SnapshotRepository, error) {
	if err := db.AutoMigrate(&boardSnapshotRecord{}, &automationDocumentRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate snapshot tables: %w", err)
	}
	return &snapshotRepositoryImpl{db: db}, nil
}

// SaveBoard overwrites the persisted board document.
func (r *snapshotRepositoryImpl) SaveBoard(doc *BoardDocument) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal board document: %w", err)
	}
	record := boardSnapshotRecord{ID: documentRowID, Document: payload}
	if err := r.db.Save(&record).Error; err != nil {
		return fmt.Errorf("failed to save board document: %w", err)
	}
	return nil
}

// LoadBoard returns the persisted board document, or nil when none exists.
func (r *snapshotRepositoryImpl) LoadBoard() (*BoardDocument, error) {
	var record boardSnapshotRecord
	if err := r.db.First(&record, documentRowID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load board document: %w", err)
	}
	var doc BoardDocument
	if err := json.Unmarshal(record.Document, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal board document: %w", err)
	}
	return &doc, nil
}

// ClearBoard deletes the persisted board document. Used once when a write
// fails to free the core's own storage before the retry.
func (r *snapshotRepositoryImpl) ClearBoard() error {
	if err := r.db.Delete(&boardSnapshotRecord{}, documentRowID).Error; err != nil {
		return fmt.Errorf("failed to clear board document: %w", err)
	}
	return nil
}

// SaveAutomation overwrites the persisted automation document.
func (r *snapshotRepositoryImpl) SaveAutomation(cfg *domain.AutomationConfig) error {
	payload, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal automation document: %w", err)
	}
	record := automationDocumentRecord{ID: documentRowID, Document: payload}
	if err := r.db.Save(&record).Error; err != nil {
		return fmt.Errorf("failed to save automation document: %w", err)
	}
	return nil
}

// LoadAutomation returns the persisted automation document, or an empty,
// normalized one when none exists.
func (r *snapshotRepositoryImpl) LoadAutomation() (*domain.AutomationConfig, error) {
	var record automationDocumentRecord
	if err := r.db.First(&record, documentRowID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			cfg := &domain.AutomationConfig{}
			cfg.Normalize()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to load automation document: %w", err)
	}
	var cfg domain.AutomationConfig
	if err := json.Unmarshal(record.Document, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal automation document: %w", err)
	}
	cfg.Normalize()
	return &cfg, nil
}

// Package project stores the projects whose cost and effect reports are valued.
package project

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/carllingstrom/AI-Delning-sub001/pkg/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNotFound is returned when no project has the requested ID.
var ErrNotFound = errors.New("project not found")

// Project is a stored project. CostData and EffectsData hold the untyped JSON
// reports as submitted; Budget is the free-text budget figure.
type Project struct {
	ID          string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Title       string    `gorm:"not null" json:"title"`
	Budget      string    `json:"budget"`
	CostData    string    `gorm:"type:text" json:"-"`
	EffectsData string    `gorm:"type:text" json:"-"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// CostEntries decodes the stored cost report.
func (p *Project) CostEntries() ([]model.CostEntry, error) {
	entries, err := model.DecodeCostEntries([]byte(p.CostData))
	if err != nil {
		return nil, fmt.Errorf("project %s: cost data: %w", p.ID, err)
	}
	return entries, nil
}

// EffectEntries decodes the stored effect report.
func (p *Project) EffectEntries() ([]model.EffectEntry, error) {
	entries, err := model.DecodeEffectEntries([]byte(p.EffectsData))
	if err != nil {
		return nil, fmt.Errorf("project %s: effects data: %w", p.ID, err)
	}
	return entries, nil
}

// RawCostData returns the stored cost report as JSON, null when empty.
func (p *Project) RawCostData() json.RawMessage {
	return rawOrNull(p.CostData)
}

// RawEffectsData returns the stored effect report as JSON, null when empty.
func (p *Project) RawEffectsData() json.RawMessage {
	return rawOrNull(p.EffectsData)
}

func rawOrNull(s string) json.RawMessage {
	if s == "" {
		return json.RawMessage("null")
	}
	return json.RawMessage(s)
}

// Store persists projects through gorm.
type Store struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewStore creates a project store.
// If logger is nil, it will use a no-op logger to prevent panics.
func NewStore(db *gorm.DB, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{db: db, logger: logger}
}

// Migrate creates or updates the projects table.
func (s *Store) Migrate() error {
	if err := s.db.AutoMigrate(&Project{}); err != nil {
		return fmt.Errorf("failed to migrate projects: %w", err)
	}
	return nil
}

// Create inserts p, assigning a new ID when it has none.
func (s *Store) Create(ctx context.Context, p *Project) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if err := s.db.WithContext(ctx).Create(p).Error; err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}
	s.logger.Debug("project created",
		zap.String("op", "project.Create"),
		zap.String("projectId", p.ID),
	)
	return nil
}

// Get returns the project with the given ID.
func (s *Store) Get(ctx context.Context, id string) (*Project, error) {
	var p Project
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load project %s: %w", id, err)
	}
	return &p, nil
}

// List returns projects newest first.
func (s *Store) List(ctx context.Context, limit, offset int) ([]Project, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var projects []Project
	err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&projects).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, nil
}

// UpdateEffectsData rewrites the stored effects report of project id with
// the result of fn. The row is locked for the read so concurrent updates
// serialize. Only the effects_data column is written.
func (s *Store) UpdateEffectsData(ctx context.Context, id string, fn func(current []byte) ([]byte, error)) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p Project
		err := selectEffectsForUpdate(tx, id).First(&p).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		if err != nil {
			return fmt.Errorf("failed to load project %s: %w", id, err)
		}

		updated, err := fn([]byte(p.EffectsData))
		if err != nil {
			return err
		}

		if err := tx.Model(&Project{}).Where("id = ?", id).UpdateColumn("effects_data", string(updated)).Error; err != nil {
			return fmt.Errorf("failed to update project %s: %w", id, err)
		}

		s.logger.Debug("project effects data updated",
			zap.String("op", "project.UpdateEffectsData"),
			zap.String("projectId", id),
			zap.Int("bytes", len(updated)),
		)
		return nil
	})
}

// selectEffectsForUpdate reads only the effects column and takes a row lock.
// SQLite has no row locks and drops the clause.
func selectEffectsForUpdate(tx *gorm.DB, id string) *gorm.DB {
	return tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id", "effects_data").
		Where("id = ?", id)
}

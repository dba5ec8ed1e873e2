package database

import (
	"context"
	"errors"
	"sort"

	coreport "github.com/amirhossein-jamali/marketplace/internal/domain/port/core"
	"github.com/amirhossein-jamali/marketplace/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/marketplace/internal/infrastructure/adapter/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SnapshotBackend keeps one row per record family in family_snapshots.
// A commit is a single SQL transaction.
type SnapshotBackend struct {
	manager      *Manager
	metrics      *MetricsCollector
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
}

var _ persistence.SnapshotBackend = (*SnapshotBackend)(nil)

// NewSnapshotBackend creates a backend on a connected manager
func NewSnapshotBackend(manager *Manager, logger coreport.Logger, timeProvider coreport.TimeProvider) *SnapshotBackend {
	return &SnapshotBackend{
		manager:      manager,
		metrics:      NewMetricsCollector(logger, timeProvider),
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// Load returns the committed payload of family
func (b *SnapshotBackend) Load(ctx context.Context, family persistence.Family) ([]byte, error) {
	ctx, cancel := b.manager.WithTimeout(ctx)
	defer cancel()

	var row model.FamilySnapshot
	_, err := b.metrics.MeasureQuery(ctx, "load "+string(family), func() (int64, error) {
		result := b.manager.DB().WithContext(ctx).Where("family = ?", string(family)).Take(&row)
		return result.RowsAffected, result.Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, persistence.ErrSnapshotNotFound
		}
		return nil, b.manager.GetErrorMapper().MapError(err, "load "+string(family))
	}
	return row.Payload, nil
}

// Commit upserts every snapshot in one transaction, bumping each row's version
func (b *SnapshotBackend) Commit(ctx context.Context, snapshots map[persistence.Family][]byte) error {
	if len(snapshots) == 0 {
		return nil
	}

	families := make([]persistence.Family, 0, len(snapshots))
	for family := range snapshots {
		families = append(families, family)
	}
	sort.Slice(families, func(i, j int) bool { return families[i].Rank() < families[j].Rank() })

	ctx, cancel := b.manager.WithTimeout(ctx)
	defer cancel()

	now := b.timeProvider.Now().UTC()
	_, err := b.metrics.MeasureQuery(ctx, "commit", func() (int64, error) {
		var rows int64
		err := b.manager.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			for _, family := range families {
				row := model.FamilySnapshot{
					Family:    string(family),
					Payload:   snapshots[family],
					Version:   1,
					UpdatedAt: now,
				}
				result := tx.Clauses(clause.OnConflict{
					Columns: []clause.Column{{Name: "family"}},
					DoUpdates: clause.Assignments(map[string]any{
						"payload":    row.Payload,
						"updated_at": now,
						"version":    gorm.Expr("family_snapshots.version + 1"),
					}),
				}).Create(&row)
				if result.Error != nil {
					return result.Error
				}
				rows += result.RowsAffected
			}
			return nil
		})
		return rows, err
	})
	if err != nil {
		b.logger.Error("Snapshot commit failed", map[string]any{
			"families": families,
			"error":    err.Error(),
		})
		return b.manager.GetErrorMapper().MapError(err, "commit")
	}
	return nil
}

// Close closes the underlying connection
func (b *SnapshotBackend) Close() error {
	return b.manager.Close()
}

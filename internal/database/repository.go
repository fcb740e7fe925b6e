package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Ucovy-Connects-Inc/playwright-e2e-automation-framework/internal/healing"
	"github.com/Ucovy-Connects-Inc/playwright-e2e-automation-framework/internal/visual"
)

// ResultRepository пишет события одного запуска. RunID общий для всех записей.
type ResultRepository struct {
	db    *gorm.DB
	runID uuid.UUID
}

var (
	_ healing.Recorder = (*ResultRepository)(nil)
	_ visual.Recorder  = (*ResultRepository)(nil)
)

func NewResultRepository(db *gorm.DB) *ResultRepository {
	return &ResultRepository{db: db, runID: uuid.New()}
}

func (r *ResultRepository) RunID() uuid.UUID {
	return r.runID
}

func (r *ResultRepository) RecordHealing(ctx context.Context, ev healing.Event) error {
	row := newHealingEvent(r.runID, ev)
	return r.db.WithContext(ctx).Create(&row).Error
}

func (r *ResultRepository) RecordVisual(ctx context.Context, out visual.Outcome) error {
	row := newVisualResult(r.runID, out)
	return r.db.WithContext(ctx).Create(&row).Error
}

// ListHealingEvents возвращает последние события, новые первыми.
func (r *ResultRepository) ListHealingEvents(ctx context.Context, limit int, healedOnly bool) ([]HealingEvent, error) {
	var events []HealingEvent
	q := r.db.WithContext(ctx).Order("id DESC").Limit(limit)
	if healedOnly {
		q = q.Where("healed = ?", true)
	}
	if err := q.Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

func (r *ResultRepository) ListVisualResults(ctx context.Context, limit int, failedOnly bool) ([]VisualResult, error) {
	var results []VisualResult
	q := r.db.WithContext(ctx).Order("id DESC").Limit(limit)
	if failedOnly {
		q = q.Where("passed = ? OR tolerated = ?", false, true)
	}
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func newHealingEvent(runID uuid.UUID, ev healing.Event) HealingEvent {
	return HealingEvent{
		RunID:            runID,
		Action:           ev.Action,
		OriginalSelector: ev.OriginalSelector,
		HealedSelector:   ev.HealedSelector,
		Hint:             ev.Hint,
		Strategy:         ev.Strategy,
		SnapshotPath:     ev.SnapshotPath,
		Healed:           ev.Healed,
		Error:            ev.Error,
		DurationMs:       ev.Duration.Milliseconds(),
	}
}

func newVisualResult(runID uuid.UUID, out visual.Outcome) VisualResult {
	return VisualResult{
		RunID:           runID,
		TestID:          out.TestID,
		Selector:        out.Selector,
		Strategy:        out.Strategy,
		Passed:          out.Passed,
		Tolerated:       out.Tolerated,
		BaselineCreated: out.BaselineCreated,
		DiffPixels:      out.DiffPixels,
		DiffRatio:       out.Ratio,
		ArtifactDir:     out.ArtifactDir,
		DurationMs:      out.Duration.Milliseconds(),
	}
}

// Duration возвращает длительность события.
func (e HealingEvent) Duration() time.Duration {
	return time.Duration(e.DurationMs) * time.Millisecond
}

func (v VisualResult) Duration() time.Duration {
	return time.Duration(v.DurationMs) * time.Millisecond
}

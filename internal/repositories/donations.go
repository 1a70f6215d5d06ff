package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rohits-web03/foodlink/internal/donation"
	"github.com/rohits-web03/foodlink/internal/models"
	"gorm.io/gorm"
)

// DonationStore is the gorm-backed implementation of donation.Store. Its
// conditional updates compile to a single UPDATE with a status precondition
// in the WHERE clause, so two racing transitions can never both commit.
type DonationStore struct {
	db *gorm.DB
}

func NewDonationStore(db *gorm.DB) *DonationStore {
	return &DonationStore{db: db}
}

func (s *DonationStore) Insert(ctx context.Context, d *models.Donation) error {
	return s.db.WithContext(ctx).Create(d).Error
}

func (s *DonationStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Donation, error) {
	var d models.Donation
	err := s.db.WithContext(ctx).Preload("Photos").First(&d, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, donation.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *DonationStore) FindMany(ctx context.Context, f donation.Filter) ([]models.Donation, error) {
	var ds []models.Donation
	err := s.scope(ctx, f).Order("created_at DESC").Find(&ds).Error
	if err != nil {
		return nil, err
	}
	return ds, nil
}

func (s *DonationStore) ConditionalUpdate(ctx context.Context, id uuid.UUID, expected models.Status, p donation.Patch) (bool, error) {
	res := s.db.WithContext(ctx).
		Model(&models.Donation{}).
		Where("id = ? AND status = ?", id, expected).
		Updates(patchColumns(p))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (s *DonationStore) BulkConditionalUpdate(ctx context.Context, f donation.Filter, p donation.Patch) (int64, error) {
	res := s.scope(ctx, f).
		Model(&models.Donation{}).
		Updates(patchColumns(p))
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (s *DonationStore) scope(ctx context.Context, f donation.Filter) *gorm.DB {
	q := s.db.WithContext(ctx)
	if f.DonorID != nil {
		q = q.Where("donor_id = ?", *f.DonorID)
	}
	if len(f.Statuses) > 0 {
		q = q.Where("status IN ?", f.Statuses)
	}
	if f.ExpiresBefore != nil {
		q = q.Where("expiry_date_time < ?", *f.ExpiresBefore)
	}
	return q
}

// patchColumns maps a donation.Patch onto the columns to set. updated_at is
// always included explicitly so gorm keeps the injected clock's value
// instead of stamping its own.
func patchColumns(p donation.Patch) map[string]any {
	cols := map[string]any{
		"status":     p.Status,
		"updated_at": p.UpdatedAt,
	}
	if p.AssignedRider != nil {
		cols["assigned_rider"] = *p.AssignedRider
	}
	if p.CompletedAt != nil {
		cols["completed_at"] = *p.CompletedAt
	}
	return cols
}

// RecordActivity appends a lifecycle event to the dashboards' feed. Best
// effort only: callers log failures and move on.
func RecordActivity(ctx context.Context, entry *models.ActivityEntry) error {
	return DB.WithContext(ctx).Create(entry).Error
}

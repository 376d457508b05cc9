package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"classifiedsBack/internal/models"
)

type AdvertisementRepository struct {
	DB *sql.DB
}

func NewAdvertisementRepository(db *sql.DB) *AdvertisementRepository {
	return &AdvertisementRepository{DB: db}
}

const advertisementColumns = `id, user_id, title, is_boosted, visibility, boosted_until, package_id, updated_at`

func (r *AdvertisementRepository) GetByID(ctx context.Context, id int) (models.Advertisement, error) {
	q := `SELECT ` + advertisementColumns + ` FROM advertisements WHERE id = ?`
	ad, err := scanAdvertisement(r.DB.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Advertisement{}, models.ErrAdvertisementNotFound
	}
	if err != nil {
		return models.Advertisement{}, fmt.Errorf("%w: get advertisement %d: %v", models.ErrPersistence, id, err)
	}
	return ad, nil
}

// ApplyBoost activates (or extends) the boost window and links the purchased package.
func (r *AdvertisementRepository) ApplyBoost(ctx context.Context, id int, boostedUntil time.Time, packageID int) error {
	const q = `UPDATE advertisements SET is_boosted = TRUE, visibility = TRUE, boosted_until = ?, package_id = ?, updated_at = ? WHERE id = ?`
	res, err := r.DB.ExecContext(ctx, q, boostedUntil.UTC(), packageID, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("%w: boost advertisement %d: %v", models.ErrPersistence, id, err)
	}
	return expectAffected(res, models.ErrAdvertisementNotFound)
}

func (r *AdvertisementRepository) ClearBoost(ctx context.Context, id int) error {
	const q = `UPDATE advertisements SET is_boosted = FALSE, visibility = FALSE, boosted_until = NULL, updated_at = ? WHERE id = ?`
	res, err := r.DB.ExecContext(ctx, q, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("%w: clear boost of advertisement %d: %v", models.ErrPersistence, id, err)
	}
	return expectAffected(res, models.ErrAdvertisementNotFound)
}

// ListBoostedBetween returns boosted advertisements expiring within [from, to].
func (r *AdvertisementRepository) ListBoostedBetween(ctx context.Context, from, to time.Time) ([]models.Advertisement, error) {
	q := `SELECT ` + advertisementColumns + ` FROM advertisements
		WHERE is_boosted = TRUE AND boosted_until IS NOT NULL AND boosted_until >= ? AND boosted_until <= ?
		ORDER BY boosted_until ASC`
	return r.list(ctx, q, from.UTC(), to.UTC())
}

// ListBoostedBefore returns boosted advertisements whose boost ended strictly before t.
func (r *AdvertisementRepository) ListBoostedBefore(ctx context.Context, t time.Time) ([]models.Advertisement, error) {
	q := `SELECT ` + advertisementColumns + ` FROM advertisements
		WHERE is_boosted = TRUE AND boosted_until IS NOT NULL AND boosted_until < ?
		ORDER BY boosted_until ASC`
	return r.list(ctx, q, t.UTC())
}

func (r *AdvertisementRepository) list(ctx context.Context, q string, args ...any) ([]models.Advertisement, error) {
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: list advertisements: %v", models.ErrPersistence, err)
	}
	defer rows.Close()

	var ads []models.Advertisement
	for rows.Next() {
		ad, err := scanAdvertisement(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan advertisement: %v", models.ErrPersistence, err)
		}
		ads = append(ads, ad)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list advertisements: %v", models.ErrPersistence, err)
	}
	return ads, nil
}

func scanAdvertisement(row rowScanner) (models.Advertisement, error) {
	var (
		ad        models.Advertisement
		until     sql.NullTime
		packageID sql.NullInt64
	)
	if err := row.Scan(&ad.ID, &ad.UserID, &ad.Title, &ad.IsBoosted, &ad.Visibility, &until, &packageID, &ad.UpdatedAt); err != nil {
		return models.Advertisement{}, err
	}
	if until.Valid {
		t := until.Time.UTC()
		ad.BoostedUntil = &t
	}
	if packageID.Valid {
		id := int(packageID.Int64)
		ad.PackageID = &id
	}
	return ad, nil
}

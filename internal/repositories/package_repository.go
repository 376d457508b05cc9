package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"

	"classifiedsBack/internal/models"
)

const mysqlDuplicateEntry = 1062

type PackageRepository struct {
	DB *sql.DB
}

func NewPackageRepository(db *sql.DB) *PackageRepository { return &PackageRepository{DB: db} }

func (r *PackageRepository) Create(ctx context.Context, pkg models.Package) (models.Package, error) {
	features, err := encodeFeatures(pkg.Features)
	if err != nil {
		return models.Package{}, err
	}
	now := time.Now().UTC()
	pkg.CreatedAt = now
	pkg.UpdatedAt = now

	const q = `INSERT INTO packages (name, price, duration, features, is_active, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := r.DB.ExecContext(ctx, q, pkg.Name, pkg.Price, pkg.Duration, features, pkg.IsActive, pkg.CreatedAt, pkg.UpdatedAt)
	if err != nil {
		if isDuplicateEntry(err) {
			return models.Package{}, fmt.Errorf("%w: %s", models.ErrDuplicatePackageName, pkg.Name)
		}
		return models.Package{}, fmt.Errorf("%w: insert package: %v", models.ErrPersistence, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Package{}, fmt.Errorf("%w: package id: %v", models.ErrPersistence, err)
	}
	pkg.ID = int(id)
	return pkg, nil
}

func (r *PackageRepository) GetByID(ctx context.Context, id int) (models.Package, error) {
	const q = `SELECT id, name, price, duration, features, is_active, created_at, updated_at FROM packages WHERE id = ?`
	pkg, err := scanPackage(r.DB.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Package{}, models.ErrPackageNotFound
	}
	if err != nil {
		return models.Package{}, fmt.Errorf("%w: get package %d: %v", models.ErrPersistence, id, err)
	}
	return pkg, nil
}

func (r *PackageRepository) List(ctx context.Context, activeOnly bool) ([]models.Package, error) {
	q := `SELECT id, name, price, duration, features, is_active, created_at, updated_at FROM packages`
	if activeOnly {
		q += ` WHERE is_active = TRUE`
	}
	q += ` ORDER BY price ASC, id ASC`

	rows, err := r.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("%w: list packages: %v", models.ErrPersistence, err)
	}
	defer rows.Close()

	packages := []models.Package{}
	for rows.Next() {
		pkg, err := scanPackage(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan package: %v", models.ErrPersistence, err)
		}
		packages = append(packages, pkg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list packages: %v", models.ErrPersistence, err)
	}
	return packages, nil
}

func (r *PackageRepository) Update(ctx context.Context, pkg models.Package) (models.Package, error) {
	features, err := encodeFeatures(pkg.Features)
	if err != nil {
		return models.Package{}, err
	}
	pkg.UpdatedAt = time.Now().UTC()

	const q = `UPDATE packages SET name = ?, price = ?, duration = ?, features = ?, is_active = ?, updated_at = ? WHERE id = ?`
	res, err := r.DB.ExecContext(ctx, q, pkg.Name, pkg.Price, pkg.Duration, features, pkg.IsActive, pkg.UpdatedAt, pkg.ID)
	if err != nil {
		if isDuplicateEntry(err) {
			return models.Package{}, fmt.Errorf("%w: %s", models.ErrDuplicatePackageName, pkg.Name)
		}
		return models.Package{}, fmt.Errorf("%w: update package %d: %v", models.ErrPersistence, pkg.ID, err)
	}
	if err := expectAffected(res, models.ErrPackageNotFound); err != nil {
		return models.Package{}, err
	}
	return pkg, nil
}

func (r *PackageRepository) Delete(ctx context.Context, id int) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM packages WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("%w: delete package %d: %v", models.ErrPersistence, id, err)
	}
	return expectAffected(res, models.ErrPackageNotFound)
}

func scanPackage(row rowScanner) (models.Package, error) {
	var (
		pkg      models.Package
		features sql.NullString
	)
	if err := row.Scan(&pkg.ID, &pkg.Name, &pkg.Price, &pkg.Duration, &features, &pkg.IsActive, &pkg.CreatedAt, &pkg.UpdatedAt); err != nil {
		return models.Package{}, err
	}
	pkg.Features = []string{}
	if features.Valid && features.String != "" {
		if err := json.Unmarshal([]byte(features.String), &pkg.Features); err != nil {
			return models.Package{}, fmt.Errorf("decode features of package %d: %w", pkg.ID, err)
		}
	}
	return pkg, nil
}

func encodeFeatures(features []string) (string, error) {
	if features == nil {
		features = []string{}
	}
	b, err := json.Marshal(features)
	if err != nil {
		return "", fmt.Errorf("encode features: %w", err)
	}
	return string(b), nil
}

func isDuplicateEntry(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry
}

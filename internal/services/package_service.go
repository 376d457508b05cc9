package services

import (
	"context"
	"fmt"
	"strings"

	"classifiedsBack/internal/models"
)

type PackageService struct {
	Packages PackageStore
}

func NewPackageService(packages PackageStore) *PackageService {
	return &PackageService{Packages: packages}
}

func (s *PackageService) List(ctx context.Context, activeOnly bool) ([]models.Package, error) {
	return s.Packages.List(ctx, activeOnly)
}

func (s *PackageService) Get(ctx context.Context, id int) (models.Package, error) {
	if id <= 0 {
		return models.Package{}, fmt.Errorf("%w: invalid package id", models.ErrValidation)
	}
	return s.Packages.GetByID(ctx, id)
}

func (s *PackageService) Create(ctx context.Context, pkg models.Package) (models.Package, error) {
	pkg.Name = strings.TrimSpace(pkg.Name)
	if err := pkg.Validate(); err != nil {
		return models.Package{}, err
	}
	if pkg.Features == nil {
		pkg.Features = []string{}
	}
	return s.Packages.Create(ctx, pkg)
}

func (s *PackageService) Update(ctx context.Context, pkg models.Package) (models.Package, error) {
	if pkg.ID <= 0 {
		return models.Package{}, fmt.Errorf("%w: invalid package id", models.ErrValidation)
	}
	pkg.Name = strings.TrimSpace(pkg.Name)
	if err := pkg.Validate(); err != nil {
		return models.Package{}, err
	}
	if pkg.Features == nil {
		pkg.Features = []string{}
	}
	return s.Packages.Update(ctx, pkg)
}

func (s *PackageService) Delete(ctx context.Context, id int) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid package id", models.ErrValidation)
	}
	return s.Packages.Delete(ctx, id)
}

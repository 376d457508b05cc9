package models

import (
	"errors"
)

var (
	ErrOrderNotFound         = errors.New("order not found")
	ErrPackageNotFound       = errors.New("package not found")
	ErrAdvertisementNotFound = errors.New("advertisement not found")
	ErrCategoryNotFound      = errors.New("category not found")
)

var (
	ErrValidation                = errors.New("validation error")
	ErrDuplicatePackageName      = errors.New("models: duplicate package name")
	ErrPaymentInitiation         = errors.New("payment initiation failed")
	ErrPaymentVerificationFailed = errors.New("payment verification failed")
	ErrPersistence               = errors.New("persistence error")
	ErrDispatch                  = errors.New("notification dispatch failed")
	ErrForbidden                 = errors.New("user is not allowed to access this resource")
)

// IsNotFound reports whether err belongs to the not-found family.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrOrderNotFound) ||
		errors.Is(err, ErrPackageNotFound) ||
		errors.Is(err, ErrAdvertisementNotFound) ||
		errors.Is(err, ErrCategoryNotFound)
}

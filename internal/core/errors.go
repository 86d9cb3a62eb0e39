package core

import "errors"

var (
	// ErrMalformedAmount is returned when a monetary string cannot be
	// parsed as a positive decimal.
	ErrMalformedAmount = errors.New("malformed amount")

	// ErrAmountOutOfRange is returned for amounts outside the allowed
	// peso bounds.
	ErrAmountOutOfRange = errors.New("amount out of range")

	// ErrCategoryTypeMismatch is returned when an activity's category
	// does not belong to its type.
	ErrCategoryTypeMismatch = errors.New("category does not match activity type")

	// ErrUnknownCategory is returned for a category outside the known set.
	ErrUnknownCategory = errors.New("unknown category")

	// ErrUnknownType is returned for an activity type outside INCOME/EXPENSE.
	ErrUnknownType = errors.New("unknown activity type")

	// ErrUnknownState is returned for a state outside PENDING/COMPLETED.
	ErrUnknownState = errors.New("unknown activity state")

	// ErrMissingOwner is returned when an activity has no owning account.
	ErrMissingOwner = errors.New("activity requires an owner")

	// ErrNotFound is returned when an activity or account does not exist.
	ErrNotFound = errors.New("not found")

	// ErrForbidden is returned when a requester is not the owner of the
	// record it tries to mutate.
	ErrForbidden = errors.New("forbidden")
)

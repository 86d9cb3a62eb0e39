package services

import "errors"

var (
	ErrEmailTaken        = errors.New("email already registered")
	ErrPasswordTooShort  = errors.New("password must be at least 6 characters")
	ErrPasswordMismatch  = errors.New("password confirmation does not match")
	ErrPasswordUnchanged = errors.New("new password must differ from the current one")
	ErrWrongPassword     = errors.New("current password is incorrect")
	ErrInvalidLogin      = errors.New("invalid email or password")
	ErrAdminImmutable    = errors.New("admin accounts cannot be deleted")
)

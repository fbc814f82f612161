// Package repository contains the MySQL data access layer.  Repositories
// return the sentinel errors below so services can tell failure classes
// apart without inspecting driver errors.
package repository

import (
	"errors"
	"strings"
)

// ErrNotFound is returned when the requested row does not exist.
var ErrNotFound = errors.New("not found")

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when an insert or update collides with existing
// state, such as a unique key.
var ErrConflict = errors.New("conflict")

// ErrEmailExists is returned by UserRepo.Create for a duplicate email.
var ErrEmailExists = errors.New("email already exists")

// isDuplicateKey matches MySQL error 1062.
func isDuplicateKey(err error) bool {
	return err != nil && strings.Contains(err.Error(), "1062")
}

// Package repository implements the credential store on top of MySQL.
// Sentinel errors defined here let the service layer distinguish failure
// scenarios without inspecting driver-specific error strings.
package repository

import "errors"

// ErrEmailExists is returned when an insert hits the unique index on
// users.email. Because the index enforces uniqueness at commit time, two
// concurrent registrations for the same address cannot both succeed; the
// loser receives this error.
var ErrEmailExists = errors.New("email already exists")

// ErrNotFound is returned when no user row matches the lookup.
var ErrNotFound = errors.New("user not found")

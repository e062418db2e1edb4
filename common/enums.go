// Package common holds enums shared by configuration and the download
// engine, so webfont does not have to depend on config.
package common

// What to do with the rest of a profile when one of its units fails.
// ENUM(abort, skip)
type FailurePolicy int

// Verification of downloaded font binaries.
// ENUM(off, warn, strict)
type TypeCheck int

// Enabled is true when downloaded data should be inspected at all.
func (t TypeCheck) Enabled() bool {
	return t != TypeCheckOff
}

// Package testutil provides small fluent builders shared by tests across
// packages. Test-only code; never imported from production paths.
package testutil

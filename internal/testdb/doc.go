// Package testdb provides helpers for integration tests that need a real
// Postgres database. Tests are skipped unless SKINCARE_TEST_DATABASE_URL is
// set, and each test's writes are rolled back.
package testdb

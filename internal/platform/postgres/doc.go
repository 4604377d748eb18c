// Package postgres provides a PostgreSQL implementation of task.Store for
// deployments that run more than one replica or need task records to survive
// restarts. The schema lives in embedded goose migrations.
package postgres

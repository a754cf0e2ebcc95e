// Package storage provides the concrete record store backends: SQLite for
// durable history and an in-memory store for tests and ephemeral
// deployments. Both implement records.Storage.
package storage

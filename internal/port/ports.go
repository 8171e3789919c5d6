// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the domain/service
// layer from concrete implementations.
package port

import (
	"context"

	"github.com/jmpinto/eventos-escuteiros/internal/domain"
)

// TableGateway is the remote tabular data service: named tables holding
// schemaless field maps keyed by record id. Every mutation takes effect
// immediately on the remote side; multi-table sequences are independent
// calls with no rollback.
//
// Implemented by the Airtable adapter (or any other record API).
type TableGateway interface {
	// ReadAll returns every record of a table, id merged into the fields.
	ReadAll(ctx context.Context, table string) ([]domain.Record, error)
	// ReadAllFiltered returns the records whose fields equal every entry
	// of where, evaluated remotely as an equality/AND formula.
	ReadAllFiltered(ctx context.Context, table string, where map[string]any) ([]domain.Record, error)
	// FindFirst returns the first record matching where, or nil.
	FindFirst(ctx context.Context, table string, where map[string]any) (domain.Record, error)
	Create(ctx context.Context, table string, fields map[string]any) (domain.Record, error)
	Update(ctx context.Context, table, id string, fields map[string]any) (domain.Record, error)
	Delete(ctx context.Context, table, id string) (domain.Record, error)
}

// TableCache memoizes full-table reads for a fixed window. It is advisory:
// freshness-critical paths bypass it with a raw ReadAll. A single instance
// is shared process-wide, so one session's Flush affects every session.
type TableCache interface {
	Get(table string) ([]domain.Record, bool)
	Set(table string, records []domain.Record)
	// Flush drops every entry. Called after any successful mutation so the
	// next read cannot serve pre-mutation data.
	Flush()
}

// SessionStore keeps the live session-context objects between requests.
type SessionStore interface {
	Put(s *domain.Session)
	Get(id string) (*domain.Session, bool)
	// Delete removes the session in one step; there is no partial logout.
	Delete(id string)
}

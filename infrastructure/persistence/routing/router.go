// Package routing selects the physical database connection for a call based
// on the datasource role carried in its context.
package routing

import (
	"context"

	"tms/infrastructure/persistence"

	"gorm.io/gorm"
)

// Router Chooses between the writer and reader connections.
// Resolution is a pure function of the context role; nothing is cached
// across calls.
type Router struct {
	writer *gorm.DB
	reader *gorm.DB
}

// NewRouter Create a router. reader may be nil when no replica is
// configured; read traffic then degrades to the writer.
func NewRouter(writer, reader *gorm.DB) *Router {
	return &Router{writer: writer, reader: reader}
}

// Resolve Return the connection for the role in ctx
func (r *Router) Resolve(ctx context.Context) *gorm.DB {
	if persistence.RoleFromContext(ctx) == persistence.RoleRead && r.reader != nil {
		return r.reader.WithContext(ctx)
	}
	return r.writer.WithContext(ctx)
}

// Writer Primary connection, regardless of role
func (r *Router) Writer() *gorm.DB { return r.writer }

// Reader Replica connection, or nil when not configured
func (r *Router) Reader() *gorm.DB { return r.reader }

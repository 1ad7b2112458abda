package routing

import (
	"context"
	"path/filepath"
	"testing"

	"tms/infrastructure/persistence"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func openDB(t *testing.T, name string) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), name)), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	return db
}

func TestResolveRoutesReadsToReader(t *testing.T) {
	writer := openDB(t, "writer.db")
	reader := openDB(t, "reader.db")
	router := NewRouter(writer, reader)

	readCtx := persistence.WithRole(context.Background(), persistence.RoleRead)
	resolved := router.Resolve(readCtx)
	assert.Same(t, reader.Statement.ConnPool, resolved.Statement.ConnPool)
}

func TestResolveRoutesWritesToWriter(t *testing.T) {
	writer := openDB(t, "writer.db")
	reader := openDB(t, "reader.db")
	router := NewRouter(writer, reader)

	writeCtx := persistence.WithRole(context.Background(), persistence.RoleWrite)
	resolved := router.Resolve(writeCtx)
	assert.Same(t, writer.Statement.ConnPool, resolved.Statement.ConnPool)
}

func TestResolveDefaultsToWriter(t *testing.T) {
	writer := openDB(t, "writer.db")
	reader := openDB(t, "reader.db")
	router := NewRouter(writer, reader)

	// No role in the context means the safe default: the primary
	resolved := router.Resolve(context.Background())
	assert.Same(t, writer.Statement.ConnPool, resolved.Statement.ConnPool)
}

func TestResolveWithoutReaderFallsBackToWriter(t *testing.T) {
	writer := openDB(t, "writer.db")
	router := NewRouter(writer, nil)

	readCtx := persistence.WithRole(context.Background(), persistence.RoleRead)
	resolved := router.Resolve(readCtx)
	assert.Same(t, writer.Statement.ConnPool, resolved.Statement.ConnPool)
}

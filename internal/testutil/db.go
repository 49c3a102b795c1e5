// Package testutil opens throwaway stores for tests.
package testutil

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"dormdigest/internal/config"
	"dormdigest/internal/repository/mysql"
)

var seq atomic.Int64

// NewDB returns a migrated in-memory SQLite store private to t. A single
// connection keeps the shared-cache database alive for the test's lifetime.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	cfg := config.DatabaseConfig{
		Driver:       "sqlite",
		DSN:          fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, seq.Add(1)),
		MaxOpenConns: 1,
		MaxIdleConns: 1,
		LogLevel:     "silent",
	}
	log := zap.NewNop()

	db, err := mysql.Open(cfg, log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = mysql.Close(db) })

	require.NoError(t, mysql.Migrate(db, log))
	return db
}

package database

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllTablesAreIdempotent(t *testing.T) {
	tables := AllTables()
	assert.Len(t, tables, 4)

	for _, sql := range tables {
		assert.Contains(t, sql, "CREATE TABLE IF NOT EXISTS")
	}
	assert.True(t, strings.Contains(MaintenanceReportsTableSQL, "recommendations Array(String)"))
}

package persistence

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func TestDatabase_Stats(t *testing.T) {
	mockDB, _, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)

	db := &Database{DB: gormDB}
	stats, err := db.Stats()
	require.NoError(t, err)

	// sqlmock's pool holds the single mocked connection
	assert.GreaterOrEqual(t, stats.OpenConnections, 0)
	assert.Equal(t, stats.InUse+stats.Idle, stats.OpenConnections)
	assert.GreaterOrEqual(t, stats.MaxOpenConns, 0)
}

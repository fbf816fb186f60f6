package database

import (
	"sync"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

func TestConfig_Dialector(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		dialect string
		wantErr string
	}{
		{
			name:    "postgres",
			cfg:     Config{Driver: DriverPostgres, DSN: "host=localhost dbname=mirror"},
			dialect: "postgres",
		},
		{
			name:    "sqlite",
			cfg:     Config{Driver: DriverSQLite, DSN: ":memory:"},
			dialect: "sqlite",
		},
		{
			name:    "missing dsn",
			cfg:     Config{Driver: DriverSQLite},
			wantErr: "dsn is required",
		},
		{
			name:    "unknown driver",
			cfg:     Config{Driver: "mysql", DSN: "root@/mirror"},
			wantErr: "unsupported database driver",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dialector, err := tt.cfg.Dialector()
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.dialect, dialector.Name())
		})
	}
}

// TestConnectionPoolDefaults tests that connection pool defaults are applied correctly.
func TestConnectionPoolDefaults(t *testing.T) {
	db, err := Connect(Config{Driver: DriverSQLite, DSN: ":memory:"}, nil)
	require.NoError(t, err)

	poolStats, err := GetPoolStats(db)
	require.NoError(t, err)

	assert.Equal(t, 25, poolStats.MaxOpenConnections, "max open connections should be 25")
}

// TestConnectionPoolCustomSettings tests that custom connection pool settings are respected.
func TestConnectionPoolCustomSettings(t *testing.T) {
	db, err := Connect(Config{
		Driver:          DriverSQLite,
		DSN:             ":memory:",
		MaxIdleConns:    5,
		MaxOpenConns:    50,
		ConnMaxLifetime: 3 * time.Minute,
		ConnMaxIdleTime: 7 * time.Minute,
	}, hclog.NewNullLogger())
	require.NoError(t, err)

	poolStats, err := GetPoolStats(db)
	require.NoError(t, err)

	assert.Equal(t, 50, poolStats.MaxOpenConnections, "max open connections should match custom value")
}

func TestConnect_InvalidConfig(t *testing.T) {
	_, err := Connect(Config{Driver: "oracle", DSN: "x"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database driver")
}

// TestConnectionPoolUnderLoad tests connection pool behavior under concurrent load.
func TestConnectionPoolUnderLoad(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping load test in short mode")
	}

	db, err := Connect(Config{
		Driver:       DriverSQLite,
		DSN:          ":memory:",
		MaxIdleConns: 2,
		MaxOpenConns: 5,
	}, nil)
	require.NoError(t, err)

	const numQueries = 20
	var wg sync.WaitGroup
	for i := 0; i < numQueries; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			var count int64
			if err := db.Raw("SELECT COUNT(*) FROM sqlite_master").Scan(&count).Error; err != nil {
				t.Errorf("query %d failed: %v", id, err)
			}
		}(i)
	}
	wg.Wait()

	poolStats, err := GetPoolStats(db)
	require.NoError(t, err)

	assert.LessOrEqual(t, poolStats.OpenConnections, 5, "should not exceed max open connections")
	assert.Equal(t, poolStats.OpenConnections, poolStats.InUse+poolStats.Idle, "open = in-use + idle")
}

func TestGormLogger_LogMode(t *testing.T) {
	l := NewGormLogger(hclog.NewNullLogger())

	adapter, ok := l.(*gormHclogAdapter)
	require.True(t, ok)
	assert.Equal(t, logger.Warn, adapter.level)

	quiet, ok := l.LogMode(logger.Silent).(*gormHclogAdapter)
	require.True(t, ok)
	assert.Equal(t, logger.Silent, quiet.level)
	assert.Equal(t, logger.Warn, adapter.level, "LogMode returns a copy")
}

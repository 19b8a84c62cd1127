package postgresql_test

import (
	"context"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/pkg/database"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	warehouseID = "b7e6d5c4-b3a2-4190-8f7e-6d5c4b3a2910"
	employeeID  = "0c8a7e1d-2b3c-4d5e-8f90-a1b2c3d4e5f6"
	otherID     = "1a2b3c4d-5e6f-4a7b-8c9d-0e1f2a3b4c5d"
	robotID     = "5d4c3b2a-1f0e-4d9c-8b7a-6f5e4d3c2b1a"
	partID      = "8a4c3b2a-1f0e-4d9c-8b7a-6f5e4d3c2b1a"
)

func migrationsDir() string {
	_, filename, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(filename), "..", "..", "..", "..", "migrations")
}

// setupTestDB starts Postgres, applies migrations and seeds one warehouse.
func setupTestDB(t *testing.T) *database.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("fleet_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, pgContainer.Terminate(ctx))
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations(connStr, migrationsDir()))

	db, err := database.NewPostgreSQLDB(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	seed(t, db)
	return db
}

func seed(t *testing.T, db *database.DB) {
	t.Helper()
	ctx := context.Background()

	statements := []struct {
		query string
		args  []interface{}
	}{
		{`INSERT INTO warehouses (id, code, name, timezone) VALUES ($1, 'WAW1', 'Warsaw 1', 'Europe/Warsaw')`, []interface{}{warehouseID}},
		{`INSERT INTO employees (id, warehouse_id, employee_code, full_name) VALUES ($1, $2, 'T-001', 'Ola Nowak')`, []interface{}{employeeID, warehouseID}},
		{`INSERT INTO employees (id, warehouse_id, employee_code, full_name) VALUES ($1, $2, 'T-002', 'Jan Kowal')`, []interface{}{otherID, warehouseID}},
		{`INSERT INTO robots (id, warehouse_id, serial_number, type) VALUES ($1, $2, 'KB-001', 'RT_KUBOT')`, []interface{}{robotID, warehouseID}},
		{`INSERT INTO parts (id, warehouse_id, part_number, name, stock, min_stock) VALUES ($1, $2, 'WHL-01', 'Drive wheel', 3, 2)`, []interface{}{partID, warehouseID}},
	}
	for _, s := range statements {
		_, err := db.Exec(ctx, s.query, s.args...)
		require.NoError(t, err)
	}
}

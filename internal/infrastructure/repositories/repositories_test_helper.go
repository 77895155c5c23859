package repositories

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", t.Name(), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err, "open sqlite")
	return db
}

func mustExec(t *testing.T, db *gorm.DB, q string, args ...interface{}) {
	t.Helper()
	require.NoError(t, db.Exec(q, args...).Error, "exec failed: query=%s", q)
}

func createUserTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE base_batch_user (
		id TEXT PRIMARY KEY,
		wallet_address TEXT NOT NULL UNIQUE,
		created_at DATETIME
	);`)
}

func createRoundupTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE base_batch_roundup (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES base_batch_user(id),
		tx_hash TEXT NOT NULL,
		usdc_amount TEXT NOT NULL,
		roundup_amount TEXT NOT NULL,
		status BOOLEAN NOT NULL DEFAULT 0,
		deposit_tx_hash TEXT,
		deposited_at DATETIME,
		created_at DATETIME,
		UNIQUE (user_id, tx_hash)
	);`)
}

func createLedgerTables(t *testing.T, db *gorm.DB) {
	createUserTable(t, db)
	createRoundupTable(t, db)
}

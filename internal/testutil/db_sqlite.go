package testutil

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"testing"

	_ "modernc.org/sqlite"
)

// SetupSQLite creates an in-memory SQLite database for testing.
// Each call gets its own named database so parallel tests never share
// tables. The connection is automatically closed when the test completes.
func SetupSQLite(t testing.TB) *sql.DB {
	t.Helper()

	// A shared-cache name keeps the database alive across pooled connections;
	// the pool is still limited to one so a transaction sees every write.
	dsn := "file:" + randomName(t, "mem") + "?mode=memory&cache=shared"
	db := openSQLite(t, dsn)
	db.SetMaxOpenConns(1)
	return db
}

// SetupSQLiteFile creates a file-based SQLite database for testing.
// The file is removed with the test's temp directory.
func SetupSQLiteFile(t testing.TB) (*sql.DB, string) {
	t.Helper()

	path := t.TempDir() + "/test.db"
	db := openSQLite(t, path)
	db.SetMaxOpenConns(1)
	return db, path
}

func openSQLite(t testing.TB, dsn string) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("failed to open sqlite connection: %v", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		t.Fatalf("failed to ping sqlite: %v", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		t.Fatalf("failed to enable foreign keys: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// randomName returns prefix_<16 hex chars>.
func randomName(t testing.TB, prefix string) string {
	t.Helper()

	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		t.Fatalf("failed to generate random name: %v", err)
	}
	return prefix + "_" + hex.EncodeToString(b)
}

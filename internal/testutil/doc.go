// Package testutil provides test helpers for ddlkit.
//
// This package includes:
//   - Database setup functions for SQLite, PostgreSQL, MySQL and SQL Server
//   - SQL assertion helpers for comparing statements
//   - Error assertion helpers for checking alerr codes
//
// # Build Tags
//
// SQLite runs in-process on modernc.org/sqlite and needs no tag. The other
// engines need running servers and are behind the integration tag:
//
//	go test ./... -tags=integration
//
// # Environment Variables
//
// Connection strings can be overridden:
//
//	POSTGRES_URL   - PostgreSQL connection string
//	MYSQL_URL      - MySQL DSN (go-sql-driver format)
//	SQLSERVER_URL  - SQL Server connection string
//
// # Example Usage
//
//	func TestCreateTable(t *testing.T) {
//	    db := testutil.SetupSQLite(t)
//	    testutil.ExecSQL(t, db, `CREATE TABLE users (id INTEGER PRIMARY KEY)`)
//	    testutil.AssertTableExists(t, db, "users")
//	}
package testutil

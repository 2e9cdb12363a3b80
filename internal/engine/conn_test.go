package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/hlop3z/ddlkit/internal/alerr"
	"github.com/hlop3z/ddlkit/internal/testutil"
)

func TestConn(t *testing.T) {
	db := testutil.SetupSQLite(t)
	c := NewConn(db, nil)
	ctx := context.Background()

	testutil.Must(t, c.ExecAll(ctx, []string{
		`CREATE TABLE n (v INTEGER NOT NULL)`,
		`INSERT INTO n (v) VALUES (1), (2), (3)`,
	}))

	t.Run("exec reports affected rows", func(t *testing.T) {
		n := testutil.MustValue(c.Exec(ctx, `UPDATE n SET v = v + ? WHERE v > ?`, 10, 1))(t)
		if n != 2 {
			t.Errorf("Exec() = %d, want 2", n)
		}
	})

	t.Run("scalar", func(t *testing.T) {
		v := testutil.MustValue(c.Scalar(ctx, `SELECT COUNT(*) FROM n`))(t)
		if v != int64(3) {
			t.Errorf("Scalar() = %#v, want 3", v)
		}
		v = testutil.MustValue(c.Scalar(ctx, `SELECT v FROM n WHERE v < 0`))(t)
		if v != nil {
			t.Errorf("Scalar() with no rows = %#v, want nil", v)
		}
	})

	t.Run("query", func(t *testing.T) {
		rows := testutil.MustValue(c.Query(ctx, `SELECT v FROM n ORDER BY v`))(t)
		defer rows.Close()

		var sum int
		for rows.Next() {
			var v int
			testutil.Must(t, rows.Scan(&v))
			sum += v
		}
		testutil.Must(t, rows.Err())
		if sum != 1+12+13 {
			t.Errorf("sum = %d", sum)
		}
	})

	t.Run("failures carry the statement", func(t *testing.T) {
		stmt := `INSERT INTO missing (v) VALUES (1)`
		_, err := c.Exec(ctx, stmt)
		testutil.AssertErrorCode(t, err, alerr.ErrSQLExecution)

		var e *alerr.Error
		if !errors.As(err, &e) || e.GetContext()["sql"] != stmt {
			t.Errorf("error does not carry the statement: %v", err)
		}
	})

	t.Run("exec all stops at the first failure", func(t *testing.T) {
		err := c.ExecAll(ctx, []string{
			`INSERT INTO n (v) VALUES (100)`,
			`INSERT INTO missing (v) VALUES (1)`,
			`INSERT INTO n (v) VALUES (200)`,
		})
		testutil.AssertErrorCode(t, err, alerr.ErrSQLExecution)
		if got := testutil.QueryInt(t, db, `SELECT COUNT(*) FROM n WHERE v = 200`); got != 0 {
			t.Error("ExecAll() continued after a failure")
		}
	})
}

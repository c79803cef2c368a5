package sqltable

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"

	"github.com/leengari/memquery/internal/domain/errors"
	"github.com/leengari/memquery/internal/storage"
)

func newSQLMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func assertSQLMock(t *testing.T, mock sqlmock.Sqlmock) {
	t.Helper()
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet sql expectations: %v", err)
	}
}

func TestReadDataRendersRowsAsText(t *testing.T) {
	db, mock := newSQLMock(t)
	mock.ExpectQuery(`SELECT first_name, age FROM people`).
		WillReturnRows(sqlmock.NewRows([]string{"first_name", "age"}).
			AddRow("Pam", int64(25)).
			AddRow("Gina", nil).
			AddRow([]byte("Sam"), 32.5))

	src, err := NewWithDB(db, "SELECT first_name, age FROM people", nil)
	if err != nil {
		t.Fatalf("NewWithDB() error = %v", err)
	}

	ds, err := src.ReadData(context.Background())
	if err != nil {
		t.Fatalf("ReadData() error = %v", err)
	}
	assertSQLMock(t, mock)

	if got := fmt.Sprint(ds.Headers); got != "[first_name age]" {
		t.Fatalf("headers = %s", got)
	}
	want := [][]string{{"Pam", "25"}, {"Gina", ""}, {"Sam", "32.5"}}
	if fmt.Sprint(ds.Rows) != fmt.Sprint(want) {
		t.Fatalf("rows = %v, want %v", ds.Rows, want)
	}
}

func TestReadDataQueryError(t *testing.T) {
	db, mock := newSQLMock(t)
	mock.ExpectQuery(`SELECT`).WillReturnError(fmt.Errorf("relation does not exist"))

	src, err := NewWithDB(db, "SELECT * FROM missing", nil)
	if err != nil {
		t.Fatalf("NewWithDB() error = %v", err)
	}

	if _, err := src.ReadData(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	assertSQLMock(t, mock)
}

func TestReadDataNoColumns(t *testing.T) {
	db, mock := newSQLMock(t)
	mock.ExpectQuery(`SELECT`).WillReturnRows(sqlmock.NewRows([]string{}))

	src, err := NewWithDB(db, "SELECT", nil)
	if err != nil {
		t.Fatalf("NewWithDB() error = %v", err)
	}

	_, err = src.ReadData(context.Background())
	if errors.CodeOf(err) != errors.InvalidFileFormat {
		t.Fatalf("expected INVALID_FILE_FORMAT, got %v", err)
	}
}

func TestNewWithDBValidation(t *testing.T) {
	db, _ := newSQLMock(t)

	if _, err := NewWithDB(nil, "SELECT 1", nil); err == nil {
		t.Fatal("expected error for nil db")
	}
	if _, err := NewWithDB(db, "  ", nil); err == nil {
		t.Fatal("expected error for empty query")
	}
}

func TestOpenRequiresDSN(t *testing.T) {
	if _, err := Open(context.Background(), storage.SQLConfig{Query: "SELECT 1"}, nil); err == nil {
		t.Fatal("expected dsn validation error")
	}
}

func TestCloseLeavesBorrowedDBOpen(t *testing.T) {
	db, _ := newSQLMock(t)

	src, err := NewWithDB(db, "SELECT 1", nil)
	if err != nil {
		t.Fatalf("NewWithDB() error = %v", err)
	}
	if err := src.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := db.Ping(); err != nil {
		t.Fatalf("db closed by Close(): %v", err)
	}
}

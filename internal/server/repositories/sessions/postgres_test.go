package sessions

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/figmints/meetsync/internal/common"
	"github.com/figmints/meetsync/internal/server/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func sessionRows(id, tenantID, date string, status string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{"id", "tenant_id", "session_date", "status",
		"score_average", "created_at", "updated_at"}).
		AddRow(id, tenantID, date, status, nil, now, now)
}

func TestFindOrCreate_InsertWins(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)INSERT\s+INTO\s+meetings.*ON\s+CONFLICT\s+\(tenant_id,\s*session_date\)\s+DO\s+NOTHING.*RETURNING`).
		WillReturnRows(sessionRows("s-1", "t-7", "2024-02-05", "in_progress"))

	got, err := repo.FindOrCreate(context.Background(), "t-7", "2024-02-05")
	if err != nil {
		t.Fatalf("FindOrCreate error: %v", err)
	}
	if got.ID != "s-1" || got.Status != models.SessionInProgress {
		t.Fatalf("unexpected session: %+v", got)
	}
}

func TestFindOrCreate_ConflictRereadsWinner(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	// Another resolution already holds the (tenant, date) slot: the insert
	// returns no row and the existing session is read back unchanged.
	mock.ExpectQuery(`(?s)INSERT\s+INTO\s+meetings`).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(`(?s)SELECT\s+.*FROM\s+meetings\s+WHERE\s+tenant_id`).
		WithArgs("t-7", "2024-02-05").
		WillReturnRows(sessionRows("s-existing", "t-7", "2024-02-05", "draft"))

	got, err := repo.FindOrCreate(context.Background(), "t-7", "2024-02-05")
	if err != nil {
		t.Fatalf("FindOrCreate error: %v", err)
	}
	if got.ID != "s-existing" {
		t.Fatalf("want existing session, got %+v", got)
	}
	if got.Status != models.SessionDraft {
		t.Fatalf("existing status must be returned unchanged, got %q", got.Status)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestFindOrCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)INSERT\s+INTO\s+meetings`).
		WillReturnError(errors.New("db down"))

	_, err := repo.FindOrCreate(context.Background(), "t-7", "2024-02-05")
	if err == nil {
		t.Fatalf("expected error, got nil")
	}
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)SELECT\s+.*FROM\s+meetings\s+WHERE\s+id`).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "missing")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestSetStatus(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	avg := 87.5
	mock.ExpectExec(`(?s)UPDATE\s+meetings\s+SET\s+status`).
		WithArgs("s-1", string(models.SessionCompleted), &avg).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.SetStatus(context.Background(), "s-1", models.SessionCompleted, &avg); err != nil {
		t.Fatalf("SetStatus error: %v", err)
	}
}

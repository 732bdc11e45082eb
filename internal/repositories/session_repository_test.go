package repositories

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"bookingflow/internal/domain/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
)

func newMockRepo(t *testing.T) (SessionRepository, sqlmock.Sqlmock) {
	t.Helper()
	raw, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	t.Cleanup(func() { _ = raw.Close() })
	return SessionRepository{DB: sqlx.NewDb(raw, "mysql")}, mock
}

func TestSessionRepositoryLoad(t *testing.T) {
	repo, mock := newMockRepo(t)

	draft := models.BookingDraft{
		Category:      models.CategoryReguler,
		Route:         models.Route{From: "Pasir Pengaraian", To: "Pekanbaru"},
		SelectedSeats: []string{"1A"},
		PaymentStatus: "Menunggu Validasi",
	}
	snap, _ := json.Marshal(draft)
	saved := time.Date(2025, 1, 10, 8, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT owner_key, booking_id, snapshot, saved_at").
		WithArgs("device-1").
		WillReturnRows(sqlmock.NewRows([]string{"owner_key", "booking_id", "snapshot", "saved_at"}).
			AddRow("device-1", 123, string(snap), saved))

	sess, ok, err := repo.Load(context.Background(), "device-1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !ok {
		t.Fatalf("expected a session")
	}
	if sess.BookingID != 123 {
		t.Fatalf("booking id = %d", sess.BookingID)
	}
	if sess.Draft.PaymentStatus != "Menunggu Validasi" || len(sess.Draft.SelectedSeats) != 1 {
		t.Fatalf("draft not restored: %+v", sess.Draft)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSessionRepositoryLoadMissing(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery("SELECT owner_key").
		WithArgs("nobody").
		WillReturnRows(sqlmock.NewRows([]string{"owner_key", "booking_id", "snapshot", "saved_at"}))

	_, ok, err := repo.Load(context.Background(), "nobody")
	if err != nil || ok {
		t.Fatalf("expected no session and no error, got ok=%v err=%v", ok, err)
	}
}

func TestSessionRepositoryLoadCorruptSnapshot(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery("SELECT owner_key").
		WithArgs("device-1").
		WillReturnRows(sqlmock.NewRows([]string{"owner_key", "booking_id", "snapshot", "saved_at"}).
			AddRow("device-1", 5, "{not json", time.Now()))

	_, ok, err := repo.Load(context.Background(), "device-1")
	if err != nil || ok {
		t.Fatalf("corrupt snapshot should read as no session, got ok=%v err=%v", ok, err)
	}
}

func TestSessionRepositorySaveUpserts(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectExec("INSERT INTO booking_flow_sessions").
		WithArgs("device-1", int64(123), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	store := repo.ForOwner("device-1")
	err := store.Save(context.Background(), models.ResumableSession{BookingID: 123, Draft: models.BookingDraft{}})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSessionRepositorySaveWithoutBooking(t *testing.T) {
	repo, _ := newMockRepo(t)
	if err := repo.Save(context.Background(), "device-1", models.ResumableSession{}); err == nil {
		t.Fatalf("expected error for session without booking id")
	}
}

func TestSessionRepositoryClear(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectExec("DELETE FROM booking_flow_sessions WHERE owner_key").
		WithArgs("device-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.ForOwner("device-1").Clear(context.Background()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSessionRepositoryEnsureTableSkipsExisting(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery("information_schema\\.tables").
		WithArgs("booking_flow_sessions").
		WillReturnRows(sqlmock.NewRows([]string{"table_name"}).AddRow("booking_flow_sessions"))

	if err := repo.EnsureTable(context.Background()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSessionRepositoryEnsureTableCreates(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery("information_schema\\.tables").
		WithArgs("booking_flow_sessions").
		WillReturnRows(sqlmock.NewRows([]string{"table_name"}))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS booking_flow_sessions").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.EnsureTable(context.Background()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

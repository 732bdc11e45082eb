package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"bookingflow/internal/db"
	"bookingflow/internal/domain"
	"bookingflow/internal/domain/models"

	"github.com/jmoiron/sqlx"
)

const sessionTable = "booking_flow_sessions"

type sessionRow struct {
	OwnerKey  string    `db:"owner_key"`
	BookingID int64     `db:"booking_id"`
	Snapshot  string    `db:"snapshot"`
	SavedAt   time.Time `db:"saved_at"`
}

// SessionRepository stores one resumable booking session per owner key
// (browser/device) so a reload can pick up an in-flight payment.
type SessionRepository struct {
	DB *sqlx.DB
}

func (r SessionRepository) EnsureTable(ctx context.Context) error {
	if db.HasTable(ctx, r.DB, sessionTable) {
		return nil
	}
	_, err := r.DB.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS `+sessionTable+` (
			owner_key  VARCHAR(128) NOT NULL PRIMARY KEY,
			booking_id BIGINT NOT NULL,
			snapshot   LONGTEXT NOT NULL,
			saved_at   DATETIME NOT NULL,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return domain.InternalError{Msg: "gagal membuat tabel sesi", Err: err}
	}
	return nil
}

func (r SessionRepository) Load(ctx context.Context, owner string) (models.ResumableSession, bool, error) {
	owner = strings.TrimSpace(owner)
	if owner == "" {
		return models.ResumableSession{}, false, nil
	}

	var row sessionRow
	err := r.DB.GetContext(ctx, &row, `
		SELECT owner_key, booking_id, snapshot, saved_at
		FROM `+sessionTable+`
		WHERE owner_key = ?
		LIMIT 1
	`, owner)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ResumableSession{}, false, nil
	}
	if err != nil {
		return models.ResumableSession{}, false, domain.InternalError{Msg: "gagal membaca sesi", Err: err}
	}

	var draft models.BookingDraft
	if err := json.Unmarshal([]byte(row.Snapshot), &draft); err != nil {
		// an unreadable snapshot is dropped, not fatal
		return models.ResumableSession{}, false, nil
	}
	return models.ResumableSession{
		BookingID: row.BookingID,
		Draft:     draft.Clone(),
		SavedAt:   row.SavedAt,
	}, row.BookingID > 0, nil
}

func (r SessionRepository) Save(ctx context.Context, owner string, s models.ResumableSession) error {
	owner = strings.TrimSpace(owner)
	if owner == "" || s.BookingID <= 0 {
		return domain.ValidationError{Field: "owner", Msg: "sesi tanpa pemilik atau booking id tidak disimpan"}
	}
	raw, err := json.Marshal(s.Draft)
	if err != nil {
		return domain.InternalError{Msg: "gagal menyusun snapshot sesi", Err: err}
	}
	savedAt := s.SavedAt
	if savedAt.IsZero() {
		savedAt = time.Now().UTC()
	}

	_, err = r.DB.ExecContext(ctx, `
		INSERT INTO `+sessionTable+` (owner_key, booking_id, snapshot, saved_at)
		VALUES (?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE booking_id = VALUES(booking_id), snapshot = VALUES(snapshot), saved_at = VALUES(saved_at)
	`, owner, s.BookingID, string(raw), savedAt)
	if err != nil {
		return domain.InternalError{Msg: "gagal menyimpan sesi", Err: err}
	}
	return nil
}

func (r SessionRepository) Clear(ctx context.Context, owner string) error {
	owner = strings.TrimSpace(owner)
	if owner == "" {
		return nil
	}
	if _, err := r.DB.ExecContext(ctx, `DELETE FROM `+sessionTable+` WHERE owner_key = ?`, owner); err != nil {
		return domain.InternalError{Msg: "gagal menghapus sesi", Err: err}
	}
	return nil
}

// PurgeBefore deletes sessions saved before cutoff and returns how many went.
func (r SessionRepository) PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM `+sessionTable+` WHERE saved_at < ?`, cutoff)
	if err != nil {
		return 0, domain.InternalError{Msg: "gagal membersihkan sesi lama", Err: err}
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// ForOwner binds the repository to one owner key; the result satisfies
// booking.SessionStore.
func (r SessionRepository) ForOwner(owner string) OwnerSessionStore {
	return OwnerSessionStore{repo: r, owner: owner}
}

type OwnerSessionStore struct {
	repo  SessionRepository
	owner string
}

func (s OwnerSessionStore) Load(ctx context.Context) (models.ResumableSession, bool, error) {
	return s.repo.Load(ctx, s.owner)
}

func (s OwnerSessionStore) Save(ctx context.Context, sess models.ResumableSession) error {
	return s.repo.Save(ctx, s.owner, sess)
}

func (s OwnerSessionStore) Clear(ctx context.Context) error {
	return s.repo.Clear(ctx, s.owner)
}

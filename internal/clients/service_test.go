package clients

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestOnboard_AssignsTokenAndNumber(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("INSERT INTO clients").
		WillReturnResult(sqlmock.NewResult(0, 1))

	s := NewService(NewRepository(db))
	c, err := s.Onboard(context.Background(), "u-1", "  Bright Smiles  ")
	if err != nil {
		t.Fatalf("onboard: %v", err)
	}
	if c.UserID != "u-1" {
		t.Fatalf("user = %q", c.UserID)
	}
	if c.BusinessName != "Bright Smiles" {
		t.Fatalf("business name not trimmed: %q", c.BusinessName)
	}
	if c.WebhookToken == "" || c.ID == "" {
		t.Fatalf("missing server-assigned fields: %+v", c)
	}
	if len(c.VirtualNumber) != 12 || c.VirtualNumber[:5] != "+1555" {
		t.Fatalf("virtual number = %q", c.VirtualNumber)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestOnboard_SecondAttemptReturnsAlreadyOnboarded(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("INSERT INTO clients").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "clients_user_id_key"})
	mock.ExpectQuery("SELECT .* FROM clients\\s+WHERE user_id = \\$1").
		WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows(clientCols).
			AddRow("c1", "u-1", "Acme", "tok-1", "+15550000001", time.Unix(1700000000, 0).UTC()))

	s := NewService(NewRepository(db))
	if _, err := s.Onboard(context.Background(), "u-1", "Acme"); !errors.Is(err, ErrAlreadyOnboarded) {
		t.Fatalf("expected ErrAlreadyOnboarded, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestOnboard_RetriesNumberCollisions(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	// First insert collides on virtual_number; the user still has no
	// client, so the service retries with a fresh number.
	mock.ExpectExec("INSERT INTO clients").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "clients_virtual_number_key"})
	mock.ExpectQuery("SELECT .* FROM clients\\s+WHERE user_id = \\$1").
		WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows(clientCols))
	mock.ExpectExec("INSERT INTO clients").
		WillReturnResult(sqlmock.NewResult(0, 1))

	s := NewService(NewRepository(db))
	c, err := s.Onboard(context.Background(), "u-1", "Acme")
	if err != nil {
		t.Fatalf("onboard: %v", err)
	}
	if c.VirtualNumber == "" {
		t.Fatalf("no number assigned: %+v", c)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestOnboard_RejectsBlankInput(t *testing.T) {
	s := NewService(nil)
	if _, err := s.Onboard(context.Background(), "", "Acme"); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
	if _, err := s.Onboard(context.Background(), "u-1", "   "); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

package clients

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

var clientCols = []string{"id", "user_id", "business_name", "webhook_token", "virtual_number", "created_at"}

func TestRepository_FindByToken(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	now := time.Unix(1700000000, 0).UTC()
	mock.ExpectQuery("SELECT id, COALESCE\\(user_id, ''\\), business_name, webhook_token, virtual_number, created_at\\s+FROM clients\\s+WHERE webhook_token = \\$1").
		WithArgs("tok-1").
		WillReturnRows(sqlmock.NewRows(clientCols).AddRow("c1", "u1", "Acme", "tok-1", "+15550000001", now))

	r := NewRepository(db)
	c, err := r.FindByToken(context.Background(), "tok-1")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if c.ID != "c1" || c.UserID != "u1" || c.BusinessName != "Acme" {
		t.Fatalf("unexpected client: %+v", c)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestRepository_FindByToken_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT .* FROM clients\\s+WHERE webhook_token = \\$1").
		WithArgs("nope").
		WillReturnRows(sqlmock.NewRows(clientCols))

	r := NewRepository(db)
	if _, err := r.FindByToken(context.Background(), "nope"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRepository_UpdateProfile_KeepsEmptyFields(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	now := time.Unix(1700000000, 0).UTC()
	mock.ExpectQuery("UPDATE clients\\s+SET business_name = COALESCE\\(NULLIF\\(\\$2,''\\), business_name\\)").
		WithArgs("c1", "New Name", "").
		WillReturnRows(sqlmock.NewRows(clientCols).AddRow("c1", "u1", "New Name", "tok-1", "+15550000001", now))

	r := NewRepository(db)
	c, err := r.UpdateProfile(context.Background(), "c1", "New Name", "")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if c.BusinessName != "New Name" {
		t.Fatalf("unexpected client: %+v", c)
	}
	if c.VirtualNumber != "+15550000001" {
		t.Fatalf("virtual number should be unchanged, got %q", c.VirtualNumber)
	}
}

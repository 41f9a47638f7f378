package users

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/anacreonhq/anacreon-backend/pkg/config"
	"github.com/anacreonhq/anacreon-backend/pkg/db/models"
	pkgerrors "github.com/anacreonhq/anacreon-backend/pkg/errors"
	"github.com/anacreonhq/anacreon-backend/pkg/security"
)

// Low-cost argon parameters keep hashing fast in tests.
func testPasswordConfig() config.PasswordConfig {
	return config.PasswordConfig{
		ArgonMemoryKB:    8192,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
}

func newUserService(t *testing.T) Service {
	t.Helper()

	dsn := "file:users_" + uuid.NewString() + "?mode=memory&cache=shared"
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := gdb.AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	svc, err := NewService(NewRepository(gdb), testPasswordConfig())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestRegisterHashesPassword(t *testing.T) {
	t.Parallel()
	svc := newUserService(t)

	user, err := svc.Register(context.Background(), RegisterInput{
		Email:    "Owner@Example.COM",
		Username: "owner",
		Password: "correct horse battery",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Email != "owner@example.com" {
		t.Fatalf("expected lowercased email, got %q", user.Email)
	}
	if user.PasswordHash == "correct horse battery" {
		t.Fatal("password must not be stored in plain text")
	}

	ok, err := security.VerifyPassword("correct horse battery", user.PasswordHash)
	if err != nil {
		t.Fatalf("verify password: %v", err)
	}
	if !ok {
		t.Fatal("expected stored hash to verify")
	}
	ok, err = security.VerifyPassword("wrong password", user.PasswordHash)
	if err != nil {
		t.Fatalf("verify wrong password: %v", err)
	}
	if ok {
		t.Fatal("wrong password must not verify")
	}
}

func TestRegisterValidation(t *testing.T) {
	t.Parallel()
	svc := newUserService(t)

	cases := []struct {
		name  string
		input RegisterInput
	}{
		{"missing email", RegisterInput{Username: "u", Password: "longenough"}},
		{"invalid email", RegisterInput{Email: "not-an-email", Username: "u", Password: "longenough"}},
		{"missing username", RegisterInput{Email: "a@b.com", Password: "longenough"}},
		{"short password", RegisterInput{Email: "a@b.com", Username: "u", Password: "short"}},
	}
	for _, tc := range cases {
		_, err := svc.Register(context.Background(), tc.input)
		if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
			t.Fatalf("%s: expected validation error, got %v", tc.name, err)
		}
	}
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	t.Parallel()
	svc := newUserService(t)

	input := RegisterInput{Email: "owner@example.com", Username: "owner", Password: "longenough"}
	if _, err := svc.Register(context.Background(), input); err != nil {
		t.Fatalf("register: %v", err)
	}
	_, err := svc.Register(context.Background(), input)
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict for duplicate email, got %v", err)
	}
}

func TestGetByEmailNormalizes(t *testing.T) {
	t.Parallel()
	svc := newUserService(t)

	created, err := svc.Register(context.Background(), RegisterInput{
		Email:    "owner@example.com",
		Username: "owner",
		Password: "longenough",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	found, err := svc.GetByEmail(context.Background(), "OWNER@example.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if found.ID != created.ID {
		t.Fatalf("expected user %s, got %s", created.ID, found.ID)
	}
}

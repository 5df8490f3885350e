package services

import (
	"context"
	"testing"
	"time"

	"gastos/internal/auth"
	"gastos/internal/core"
)

func TestAuthService(t *testing.T) {
	tokens, err := auth.NewTokenIssuer("test-secret-0123456789", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	users := &fakeUsers{byName: map[string]core.User{}}
	svc := NewAuthService(users, tokens)
	ctx := context.Background()

	u, err := svc.Register(ctx, " ana ", "s3nha")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if u.Username != "ana" || u.PasswordHash == "s3nha" {
		t.Errorf("unexpected user: %+v", u)
	}

	if _, err := svc.Register(ctx, "ana", "x"); !core.IsKind(err, core.KindConflict) || err.Error() != MsgUserExists {
		t.Errorf("expected conflict, got %v", err)
	}

	token, err := svc.Login(ctx, "ana", "s3nha")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	id, err := tokens.Verify(token)
	if err != nil || id != u.ID {
		t.Errorf("token should carry user %d, got %d (%v)", u.ID, id, err)
	}

	tests := []struct {
		name     string
		username string
		password string
		wantKind core.Kind
		wantMsg  string
	}{
		{"wrong password", "ana", "errada", core.KindUnauthorized, MsgBadCredentials},
		{"unknown user", "bia", "s3nha", core.KindUnauthorized, MsgBadCredentials},
		{"missing password", "ana", "", core.KindRowValidation, MsgMissingPassword},
		{"missing both", "", "", core.KindRowValidation, MsgMissingBothField},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Login(ctx, tt.username, tt.password)
			if core.KindOf(err) != tt.wantKind || err.Error() != tt.wantMsg {
				t.Errorf("Login() error = %v (%v), want %q", err, core.KindOf(err), tt.wantMsg)
			}
		})
	}
}

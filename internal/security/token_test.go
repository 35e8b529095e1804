package security

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestTokenIssueAndValidate(t *testing.T) {
	manager := NewTokenManager("test-secret", "pigmemento", 15*time.Minute)
	userID := uuid.New()

	token, err := manager.Issue(userID, "user", time.Now())
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	gotID, gotRole, err := manager.Validate(token)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if gotID != userID {
		t.Errorf("user ID = %s, want %s", gotID, userID)
	}
	if gotRole != "user" {
		t.Errorf("role = %q, want %q", gotRole, "user")
	}
}

func TestValidateRejectsBadTokens(t *testing.T) {
	manager := NewTokenManager("test-secret", "pigmemento", 15*time.Minute)
	userID := uuid.New()

	tests := []struct {
		name  string
		token func(t *testing.T) string
	}{
		{
			name: "garbage string",
			token: func(t *testing.T) string {
				return "not.a.token"
			},
		},
		{
			name: "wrong secret",
			token: func(t *testing.T) string {
				other := NewTokenManager("other-secret", "pigmemento", 15*time.Minute)
				token, err := other.Issue(userID, "user", time.Now())
				if err != nil {
					t.Fatalf("Issue() error = %v", err)
				}
				return token
			},
		},
		{
			name: "wrong issuer",
			token: func(t *testing.T) string {
				other := NewTokenManager("test-secret", "someone-else", 15*time.Minute)
				token, err := other.Issue(userID, "user", time.Now())
				if err != nil {
					t.Fatalf("Issue() error = %v", err)
				}
				return token
			},
		},
		{
			name: "expired",
			token: func(t *testing.T) string {
				token, err := manager.Issue(userID, "user", time.Now().Add(-time.Hour))
				if err != nil {
					t.Fatalf("Issue() error = %v", err)
				}
				return token
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := manager.Validate(tt.token(t)); err == nil {
				t.Error("Validate() expected error, got nil")
			}
		})
	}
}

func TestGenerateRefreshToken(t *testing.T) {
	first, err := GenerateRefreshToken()
	if err != nil {
		t.Fatalf("GenerateRefreshToken() error = %v", err)
	}
	second, err := GenerateRefreshToken()
	if err != nil {
		t.Fatalf("GenerateRefreshToken() error = %v", err)
	}

	if len(first) != 64 {
		t.Errorf("token length = %d, want 64 hex chars", len(first))
	}
	if first == second {
		t.Error("two generated tokens are identical")
	}
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("correcthorse")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}

	if !CheckPassword(hash, "correcthorse") {
		t.Error("CheckPassword() rejected the correct password")
	}
	if CheckPassword(hash, "wrongpassword") {
		t.Error("CheckPassword() accepted a wrong password")
	}
}

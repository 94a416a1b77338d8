package app

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/form3tech-oss/jwt-go"

	"mineseeker/internal/domain"
)

func lostSession(t *testing.T) *domain.GameSession {
	t.Helper()
	svc := NewService(rand.New(rand.NewPCG(11, 5)))
	session, _, err := svc.NewGame(10, 30)
	if err != nil {
		t.Fatalf("new game error: %v", err)
	}
	svc.PrimaryActivate(session, 0, 0)
	row, col := findHidden(t, session, true)
	svc.PrimaryActivate(session, row, col)
	if session.Status() != domain.StatusLost {
		t.Fatalf("status = %s, want lost", session.Status())
	}
	return session
}

func parseResultClaims(t *testing.T, tokenString, secret string) jwt.MapClaims {
	t.Helper()

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		t.Fatalf("parse token error: %v", err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		t.Fatal("claims are not map claims")
	}
	return claims
}

func TestResultTokenIssue(t *testing.T) {
	session := lostSession(t)
	svc := NewResultTokenService("test-secret", "mineseeker", time.Hour)

	tokenString, err := svc.Issue("user123", session)
	if err != nil {
		t.Fatalf("issue error: %v", err)
	}
	claims := parseResultClaims(t, tokenString, "test-secret")

	if got := claims["sub"]; got != "user123" {
		t.Fatalf("sub = %v, want user123", got)
	}
	if got := claims["status"]; got != string(domain.StatusLost) {
		t.Fatalf("status = %v, want lost", got)
	}
	if got := claims["mines"]; got != float64(30) {
		t.Fatalf("mines = %v, want 30", got)
	}
	if got := claims["revealed"]; got != float64(session.RevealedCount()) {
		t.Fatalf("revealed = %v, want %d", got, session.RevealedCount())
	}

	other, err := svc.Issue("user123", session)
	if err != nil {
		t.Fatalf("issue error: %v", err)
	}
	if parseResultClaims(t, other, "test-secret")["jti"] == claims["jti"] {
		t.Fatalf("jti must be unique per token")
	}
}

func TestResultTokenIssueRequiresFinishedGame(t *testing.T) {
	session, err := domain.NewSession(10, 10, nil)
	if err != nil {
		t.Fatalf("new session error: %v", err)
	}
	svc := NewResultTokenService("test-secret", "mineseeker", time.Hour)
	if _, err := svc.Issue("user123", session); !errors.Is(err, ErrGameNotOver) {
		t.Fatalf("err = %v, want ErrGameNotOver", err)
	}
	if _, err := svc.Issue("", lostSession(t)); err == nil {
		t.Fatalf("expected error for empty user")
	}
	if _, err := NewResultTokenService("", "mineseeker", time.Hour).Issue("user123", lostSession(t)); err == nil {
		t.Fatalf("expected error for missing secret")
	}
}

func TestResultTokenVerify(t *testing.T) {
	session := lostSession(t)
	svc := NewResultTokenService("test-secret", "mineseeker", time.Hour)
	tokenString, err := svc.Issue("user123", session)
	if err != nil {
		t.Fatalf("issue error: %v", err)
	}

	claims, err := svc.Verify(tokenString)
	if err != nil {
		t.Fatalf("verify error: %v", err)
	}
	if claims.UserID != "user123" || claims.Status != domain.StatusLost || claims.Dimension != 10 || claims.Mines != 30 {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if claims.ID == "" || claims.ExpiresAt-claims.IssuedAt != 3600 {
		t.Fatalf("unexpected id/expiry: %+v", claims)
	}

	tests := []struct {
		name string
		svc  *ResultTokenService
	}{
		{name: "wrong secret", svc: NewResultTokenService("other-secret", "mineseeker", time.Hour)},
		{name: "wrong issuer", svc: NewResultTokenService("test-secret", "someone-else", time.Hour)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.svc.Verify(tokenString); !errors.Is(err, ErrInvalidResultToken) {
				t.Fatalf("err = %v, want ErrInvalidResultToken", err)
			}
		})
	}
}

func TestResultTokenVerifyExpired(t *testing.T) {
	svc := NewResultTokenService("test-secret", "mineseeker", time.Minute)
	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	tokenString, err := svc.Issue("user123", lostSession(t))
	if err != nil {
		t.Fatalf("issue error: %v", err)
	}
	if _, err := svc.Verify(tokenString); !errors.Is(err, ErrInvalidResultToken) {
		t.Fatalf("err = %v, want ErrInvalidResultToken", err)
	}
}

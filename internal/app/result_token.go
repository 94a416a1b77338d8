package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/form3tech-oss/jwt-go"
	"github.com/google/uuid"

	"mineseeker/internal/domain"
)

var (
	ErrGameNotOver        = errors.New("game is not over")
	ErrInvalidResultToken = errors.New("invalid result token")
)

// ResultTokenService signs receipts for finished games so clients can prove an
// outcome to other services without the server keeping game history.
type ResultTokenService struct {
	secret string
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// ResultClaims is the decoded content of a result token.
type ResultClaims struct {
	ID        string
	UserID    string
	Status    domain.Status
	Dimension int
	Mines     int
	Revealed  int
	Flags     int
	IssuedAt  int64
	ExpiresAt int64
}

func NewResultTokenService(secret, issuer string, ttl time.Duration) *ResultTokenService {
	return &ResultTokenService{
		secret: secret,
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue signs an HS256 token describing the terminal state of session for userID.
func (s *ResultTokenService) Issue(userID string, session *domain.GameSession) (string, error) {
	if s == nil {
		return "", fmt.Errorf("result token service is nil")
	}
	if userID == "" {
		return "", fmt.Errorf("user is required")
	}
	if s.secret == "" || s.issuer == "" {
		return "", fmt.Errorf("result token config is incomplete")
	}
	if session == nil || !session.Status().Terminal() {
		return "", ErrGameNotOver
	}

	now := s.now()
	claims := jwt.MapClaims{
		"iss":       s.issuer,
		"sub":       userID,
		"jti":       uuid.NewString(),
		"iat":       now.Unix(),
		"exp":       now.Add(s.ttl).Unix(),
		"status":    string(session.Status()),
		"dimension": session.Dimension(),
		"mines":     session.MineCount(),
		"revealed":  session.RevealedCount(),
		"flags":     session.FlagCount(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.secret))
}

// Verify checks signature, issuer and expiry and returns the decoded claims.
func (s *ResultTokenService) Verify(tokenString string) (ResultClaims, error) {
	if s == nil {
		return ResultClaims{}, fmt.Errorf("result token service is nil")
	}
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.secret), nil
	})
	if err != nil {
		return ResultClaims{}, fmt.Errorf("%w: %v", ErrInvalidResultToken, err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return ResultClaims{}, ErrInvalidResultToken
	}
	if !claims.VerifyIssuer(s.issuer, true) {
		return ResultClaims{}, fmt.Errorf("%w: unexpected issuer", ErrInvalidResultToken)
	}

	return ResultClaims{
		ID:        stringClaim(claims, "jti"),
		UserID:    stringClaim(claims, "sub"),
		Status:    domain.Status(stringClaim(claims, "status")),
		Dimension: int(numberClaim(claims, "dimension")),
		Mines:     int(numberClaim(claims, "mines")),
		Revealed:  int(numberClaim(claims, "revealed")),
		Flags:     int(numberClaim(claims, "flags")),
		IssuedAt:  int64(numberClaim(claims, "iat")),
		ExpiresAt: int64(numberClaim(claims, "exp")),
	}, nil
}

func stringClaim(claims jwt.MapClaims, key string) string {
	v, _ := claims[key].(string)
	return v
}

// numberClaim reads a JSON number claim; the parser decodes them as float64.
func numberClaim(claims jwt.MapClaims, key string) float64 {
	v, _ := claims[key].(float64)
	return v
}

package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type contextKey string

const SessionIDKey contextKey = "session_id"

// RenewedTokenHeader carries a fresh token once the presented one has used
// up half its lifetime. Sessions stay alive while they are active, so the
// token follows them.
const RenewedTokenHeader = "X-Session-Token"

var ErrInvalidToken = errors.New("invalid session token")

// SessionTokens signs and verifies the bearer tokens that scope chat
// requests to one session. They carry no user identity.
type SessionTokens struct {
	Secret []byte
	TTL    time.Duration
}

func NewSessionTokens(secret string, ttl time.Duration) *SessionTokens {
	return &SessionTokens{Secret: []byte(secret), TTL: ttl}
}

// Issue creates a token for sessionID that expires with the session
func (s *SessionTokens) Issue(sessionID uuid.UUID) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"session_id": sessionID.String(),
		"iat":        now.Unix(),
	}
	if s.TTL > 0 {
		claims["exp"] = now.Add(s.TTL).Unix()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.Secret)
}

// Parse verifies tokenStr and returns the session it was issued for.
func (s *SessionTokens) Parse(tokenStr string) (uuid.UUID, error) {
	id, _, err := s.parse(tokenStr)
	return id, err
}

// parse also returns the token's expiry, zero when it has none.
func (s *SessionTokens) parse(tokenStr string) (uuid.UUID, time.Time, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.Secret, nil
	})
	if err != nil {
		return uuid.Nil, time.Time{}, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return uuid.Nil, time.Time{}, ErrInvalidToken
	}

	idStr, ok := claims["session_id"].(string)
	if !ok {
		return uuid.Nil, time.Time{}, ErrInvalidToken
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return uuid.Nil, time.Time{}, ErrInvalidToken
	}

	var expiresAt time.Time
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		expiresAt = exp.Time
	}
	return id, expiresAt, nil
}

// needsRenewal reports whether less than half of the TTL is left.
func (s *SessionTokens) needsRenewal(expiresAt time.Time) bool {
	if s.TTL <= 0 || expiresAt.IsZero() {
		return false
	}
	return time.Until(expiresAt) < s.TTL/2
}

// Middleware validates the bearer token and attaches session_id to context
func (s *SessionTokens) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing authorization header", r)
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid authorization format", r)
			return
		}

		sessionID, expiresAt, err := s.parse(parts[1])
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				writeError(w, http.StatusUnauthorized, "TOKEN_EXPIRED", "Session token has expired", r)
			} else {
				writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid session token", r)
			}
			return
		}

		if s.needsRenewal(expiresAt) {
			if fresh, err := s.Issue(sessionID); err == nil {
				w.Header().Set(RenewedTokenHeader, fresh)
			}
		}

		ctx := context.WithValue(r.Context(), SessionIDKey, sessionID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetSessionID extracts session_id from request context
func GetSessionID(ctx context.Context) uuid.UUID {
	id, _ := ctx.Value(SessionIDKey).(uuid.UUID)
	return id
}

func writeError(w http.ResponseWriter, status int, code, message string, r *http.Request) {
	requestID := r.Header.Get(RequestIDHeader)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]interface{}{
			"code":       code,
			"message":    message,
			"request_id": requestID,
		},
	})
}

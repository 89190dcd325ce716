package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"vending-agent/internal/core"

	"github.com/golang-jwt/jwt/v5"
)

const (
	tokenAccess  = "access"
	tokenRefresh = "refresh"
	authCookie   = "auth_token"
)

type authClaimsKey struct{}

// AuthClaims holds the authenticated customer's identity extracted from the JWT.
type AuthClaims struct {
	CustomerID int
	Email      string
}

// authFromContext returns the auth claims stored in ctx, or nil.
func authFromContext(ctx context.Context) *AuthClaims {
	v, _ := ctx.Value(authClaimsKey{}).(*AuthClaims)
	return v
}

// jwtClaims is the JWT payload struct used for signing and parsing.
type jwtClaims struct {
	CustomerID int    `json:"customer_id"`
	Email      string `json:"email"`
	TokenType  string `json:"typ"`
	jwt.RegisteredClaims
}

type tokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}

func (h *Handler) signToken(customerID int, email, kind string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &jwtClaims{
		CustomerID: customerID,
		Email:      email,
		TokenType:  kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprint(customerID),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(h.cfg.JWTSecret))
}

func (h *Handler) issueTokens(customerID int, email string) (*tokenPair, error) {
	access, err := h.signToken(customerID, email, tokenAccess, h.cfg.AccessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := h.signToken(customerID, email, tokenRefresh, h.cfg.RefreshTTL)
	if err != nil {
		return nil, err
	}
	return &tokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int(h.cfg.AccessTTL.Seconds()),
	}, nil
}

// parseToken verifies signature, expiry and token type.
func (h *Handler) parseToken(raw, kind string) (*jwtClaims, error) {
	claims := &jwtClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(h.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.TokenType != kind {
		return nil, fmt.Errorf("expected %s token, got %q", kind, claims.TokenType)
	}
	return claims, nil
}

// bearerToken reads the access token from the Authorization header, falling
// back to the auth cookie.
func bearerToken(r *http.Request) string {
	if v := r.Header.Get("Authorization"); v != "" {
		if token, ok := strings.CutPrefix(v, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if c, err := r.Cookie(authCookie); err == nil {
		return c.Value
	}
	return ""
}

// RequireAuth validates the access token and injects AuthClaims into the
// request context. Returns 401 if the token is absent or invalid.
func (h *Handler) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := bearerToken(r)
		if raw == "" {
			writeError(w, "authentication required", core.CauseValidation, http.StatusUnauthorized)
			return
		}
		claims, err := h.parseToken(raw, tokenAccess)
		if err != nil {
			writeError(w, "invalid or expired token", core.CauseValidation, http.StatusUnauthorized)
			return
		}
		ctx := context.WithValue(r.Context(), authClaimsKey{}, &AuthClaims{
			CustomerID: claims.CustomerID,
			Email:      claims.Email,
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// login handles POST /auth/login.
func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	session, err := h.svc.AuthenticateCustomer(r.Context(), req.Email, req.Password)
	if err != nil {
		if core.CauseOf(err) == core.CauseUnknown {
			writeResult(w, r, core.Failed(err))
			return
		}
		writeError(w, "invalid email or password", core.CauseValidation, http.StatusUnauthorized)
		return
	}

	tokens, err := h.issueTokens(session.CustomerID, session.Email)
	if err != nil {
		writeResult(w, r, core.Failed(core.Unknown(err, "token generation failed")))
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     authCookie,
		Value:    tokens.AccessToken,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(h.cfg.AccessTTL.Seconds()),
	})
	writeResult(w, r, core.OK(tokens))
}

// refresh handles POST /auth/refresh: a valid refresh token buys a new pair.
func (h *Handler) refresh(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	claims, err := h.parseToken(req.RefreshToken, tokenRefresh)
	if err != nil {
		writeError(w, "invalid or expired refresh token", core.CauseValidation, http.StatusUnauthorized)
		return
	}
	// The account may have been removed since the token was issued.
	customer, err := h.svc.GetCustomer(r.Context(), claims.CustomerID)
	if err != nil {
		writeError(w, "invalid or expired refresh token", core.CauseValidation, http.StatusUnauthorized)
		return
	}
	tokens, err := h.issueTokens(customer.ID, customer.Email)
	if err != nil {
		writeResult(w, r, core.Failed(core.Unknown(err, "token generation failed")))
		return
	}
	writeResult(w, r, core.OK(tokens))
}

// me handles GET /auth/me.
func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	if claims == nil {
		writeError(w, "not authenticated", core.CauseValidation, http.StatusUnauthorized)
		return
	}
	writeResult(w, r, core.ResultOf(h.svc.GetCustomer(r.Context(), claims.CustomerID)))
}

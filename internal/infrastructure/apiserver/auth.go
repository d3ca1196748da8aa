package apiserver

import (
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/academyhq/academy-client/internal/core/domain"
)

const sessionCookie = "academy_session"

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type userEnvelope struct {
	User domain.Identity `json:"user"`
}

// handleLogin authenticates and sets the HTTP-only session cookie. Unapproved
// accounts are rejected with 403 and their status, so the client can show
// distinct messaging for pending and rejected.
func (s *Server) handleLogin(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	s.mu.Lock()
	acc := s.accounts[req.Email]
	s.mu.Unlock()

	if acc == nil || bcrypt.CompareHashAndPassword(acc.passwordHash, []byte(req.Password)) != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}
	if acc.identity.Status != domain.StatusApproved {
		return c.JSON(http.StatusForbidden, map[string]string{
			"error":  "account not approved",
			"status": string(acc.identity.Status),
		})
	}

	token, err := s.mintToken(acc.identity.ID)
	if err != nil {
		return err
	}
	c.SetCookie(&http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(s.ttl),
	})

	return c.JSON(http.StatusOK, userEnvelope{User: acc.identity})
}

// handleLogout clears the session cookie. Idempotent: logging out without a
// session is still a success.
func (s *Server) handleLogout(c echo.Context) error {
	c.SetCookie(&http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
	return c.JSON(http.StatusOK, map[string]string{"status": "logged out"})
}

// handleMe returns the authoritative identity for the session cookie.
func (s *Server) handleMe(c echo.Context) error {
	acc, err := s.sessionAccount(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, userEnvelope{User: acc.identity})
}

// requireSession gates the resource routes on a valid session cookie.
func (s *Server) requireSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, err := s.sessionAccount(c); err != nil {
			return err
		}
		return next(c)
	}
}

func (s *Server) sessionAccount(c echo.Context) (*account, error) {
	cookie, err := c.Cookie(sessionCookie)
	if err != nil || cookie.Value == "" {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "no session")
	}

	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(cookie.Value, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(s.secret), nil
	})
	if err != nil || !tkn.Valid {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "invalid session")
	}

	sub, _ := claims["sub"].(string)
	s.mu.Lock()
	acc := s.byID[sub]
	s.mu.Unlock()
	if acc == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "unknown session subject")
	}
	return acc, nil
}

func (s *Server) mintToken(userID string) (string, error) {
	claims := jwt.MapClaims{
		"sub": userID,
		"exp": time.Now().Add(s.ttl).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.secret))
}

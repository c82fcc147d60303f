// Package auth issues and verifies the signed tokens used by the API:
// session bearer tokens and the time-boxed capability tokens that let an
// admin approve an unmaintained-implementation report from an email link.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	sessionTokenDuration  = 30 * 24 * time.Hour
	approvalTokenDuration = 30 * 24 * time.Hour

	// OperationApproveUnmaintainedReport tags approval tokens so they cannot
	// be replayed against any other operation.
	OperationApproveUnmaintainedReport = "approve-unmaintained-implementation-report"
)

type TokenService struct {
	secret []byte
}

func NewTokenService(secret string) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret)}, nil
}

// ApprovalClaims is the payload of an unmaintained-report approval token.
// It is a bounded capability: it names the operation, the implementation and
// the issue it applies to, and nothing else.
type ApprovalClaims struct {
	Operation        string `json:"operation"`
	ImplementationID string `json:"implementationId"`
	IssueNumber      int    `json:"issueNumber"`
	jwt.RegisteredClaims
}

// GenerateSessionToken signs a bearer token identifying a user session
func (s *TokenService) GenerateSessionToken(userID string) (string, error) {
	now := time.Now()

	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(sessionTokenDuration)),
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// VerifySessionToken resolves a bearer token to a user ID. Invalid, expired
// or malformed tokens resolve to ("", false) rather than an error; an
// unauthenticated request is not a failure.
func (s *TokenService) VerifySessionToken(tokenString string) (string, bool) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&jwt.RegisteredClaims{},
		s.keyFunc,
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return "", false
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", false
	}

	return claims.Subject, true
}

// GenerateApprovalToken signs a capability token for approving an
// unmaintained report on the given implementation.
func (s *TokenService) GenerateApprovalToken(implementationID string, issueNumber int) (string, error) {
	now := time.Now()

	claims := ApprovalClaims{
		Operation:        OperationApproveUnmaintainedReport,
		ImplementationID: implementationID,
		IssueNumber:      issueNumber,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(approvalTokenDuration)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// VerifyApprovalToken verifies the signature and expiry of an approval token
// and returns its claims. Unlike session tokens, a bad approval token is an
// error: it explicitly fails the approval operation. Callers still have to
// check the Operation tag.
func (s *TokenService) VerifyApprovalToken(tokenString string) (*ApprovalClaims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&ApprovalClaims{},
		s.keyFunc,
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*ApprovalClaims)
	if !ok || !token.Valid {
		return nil, errors.New("auth: invalid token claims")
	}

	return claims, nil
}

func (s *TokenService) keyFunc(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, errors.New("auth: unexpected signing method")
	}
	return s.secret, nil
}

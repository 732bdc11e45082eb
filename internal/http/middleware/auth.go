package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const flowClaimsKey = "flow_claims"

// FlowClaims bind a bearer token to one flow session and its owner key.
type FlowClaims struct {
	SessionID string `json:"sid"`
	Owner     string `json:"owner"`
	jwt.RegisteredClaims
}

// IssueFlowToken signs a token for session sid owned by owner.
func IssueFlowToken(secret []byte, sid, owner string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := FlowClaims{
		SessionID: sid,
		Owner:     owner,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// OwnerClaims carry the server-issued owner key. Only this token may
// reopen an owner's stored session.
type OwnerClaims struct {
	Owner string `json:"owner"`
	jwt.RegisteredClaims
}

const ownerTokenSubject = "flow-owner"

// IssueOwnerToken signs the owner key handed to a browser on its first session.
func IssueOwnerToken(secret []byte, owner string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := OwnerClaims{
		Owner: owner,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   ownerTokenSubject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// ParseOwnerToken returns the owner key inside a token from IssueOwnerToken.
func ParseOwnerToken(secret []byte, raw string) (string, error) {
	claims := &OwnerClaims{}
	tok, err := jwt.ParseWithClaims(strings.TrimSpace(raw), claims, func(t *jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithSubject(ownerTokenSubject))
	if err != nil {
		return "", err
	}
	if !tok.Valid || claims.Owner == "" {
		return "", errors.New("token pemilik tidak valid")
	}
	return claims.Owner, nil
}

func parseFlowToken(secret []byte, raw string) (*FlowClaims, error) {
	claims := &FlowClaims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if !tok.Valid || claims.SessionID == "" {
		return nil, errors.New("token tidak valid")
	}
	return claims, nil
}

// FlowAuth requires a bearer flow token whose sid matches the :id param.
func FlowAuth(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			abortAuth(c, "token sesi wajib dikirim")
			return
		}
		claims, err := parseFlowToken(secret, strings.TrimSpace(raw))
		if err != nil {
			abortAuth(c, "token sesi tidak valid")
			return
		}
		if id := c.Param("id"); id != "" && id != claims.SessionID {
			abortAuth(c, "token bukan untuk sesi ini")
			return
		}
		c.Set(flowClaimsKey, claims)
		c.Next()
	}
}

func abortAuth(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error":      msg,
		"code":       "unauthorized",
		"message":    msg,
		"request_id": GetRequestID(c),
	})
}

// GetFlowClaims returns the claims stored by FlowAuth.
func GetFlowClaims(c *gin.Context) *FlowClaims {
	if v, ok := c.Get(flowClaimsKey); ok {
		if cl, ok := v.(*FlowClaims); ok {
			return cl
		}
	}
	return nil
}

package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// TokenRequest is the body for requesting a host token.
type TokenRequest struct {
	DisplayName string `json:"displayName" binding:"required"`
}

// TokenResponse carries the issued host token.
type TokenResponse struct {
	Token  string `json:"token"`
	HostID string `json:"hostId"`
}

// HostClaims are the claims embedded in a host token.
type HostClaims struct {
	HostID string `json:"host_id"`
	jwt.RegisteredClaims
}

// IssueToken hands out a host token for the room management API.
// Participants in the signaling exchange are never authenticated; the
// token only gates creating and deleting rendezvous metadata.
//
// There is no user database: any display name gets a token. Deployments
// that need real accounts put an identity provider in front and mint
// compatible tokens there.
func IssueToken(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req TokenRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		claims := HostClaims{
			HostID: req.DisplayName,
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
				IssuedAt:  jwt.NewNumericDate(time.Now()),
				NotBefore: jwt.NewNumericDate(time.Now()),
			},
		}

		token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
		signed, err := token.SignedString([]byte(jwtSecret))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to sign token"})
			return
		}

		c.JSON(http.StatusOK, TokenResponse{
			Token:  signed,
			HostID: req.DisplayName,
		})
	}
}

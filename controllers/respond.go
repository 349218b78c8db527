// Package controllers holds what the handler packages share: turning API
// client errors into responses and picking the admin's backend client.
package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront/api"
)

// APIError answers a failed backend call. notFound is the message for a
// 404; an empty notFound passes the backend message through.
func APIError(c *gin.Context, err error, notFound string) {
	_ = c.Error(err)

	var vErr *api.ValidationError
	switch {
	case errors.Is(err, api.ErrAuthExpired):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "session expired", "redirect": api.LoginRedirect})
	case errors.As(err, &vErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": vErr.Fields})
	case api.IsNotFound(err) && notFound != "":
		c.JSON(http.StatusNotFound, gin.H{"error": notFound})
	default:
		status := api.StatusCode(err)
		if status < 400 || status >= 500 {
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		c.JSON(status, gin.H{"error": err.Error()})
	}
}

// BackendClient calls the backend with the admin's own bearer token, passed
// in X-Backend-Token. It answers 401 itself when the header is missing.
func BackendClient(c *gin.Context, base *api.Client) (*api.Client, bool) {
	token := strings.TrimSpace(strings.TrimPrefix(c.GetHeader("X-Backend-Token"), "Bearer "))
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "X-Backend-Token header is required"})
		return nil, false
	}
	return base.WithToken(token), true
}

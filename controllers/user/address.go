package userControllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront/api"
	"github.com/junaidrashid-git/storefront/auth"
	"github.com/junaidrashid-git/storefront/controllers"
)

// GET /user/addresses
func GetAddresses(sessions *auth.Sessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		addresses, err := sessions.Client(c.GetString("user_id")).ListAddresses(c.Request.Context())
		if err != nil {
			controllers.APIError(c, err, "")
			return
		}
		c.JSON(http.StatusOK, addresses)
	}
}

// POST /user/addresses
func CreateAddress(sessions *auth.Sessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input api.AddressInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		address, err := sessions.Client(c.GetString("user_id")).CreateAddress(c.Request.Context(), input)
		if err != nil {
			controllers.APIError(c, err, "")
			return
		}
		c.JSON(http.StatusCreated, address)
	}
}

// PUT /user/addresses/:id
func UpdateAddress(sessions *auth.Sessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input api.AddressInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		address, err := sessions.Client(c.GetString("user_id")).UpdateAddress(c.Request.Context(), c.Param("id"), input)
		if err != nil {
			controllers.APIError(c, err, "Address not found")
			return
		}
		c.JSON(http.StatusOK, address)
	}
}

// DELETE /user/addresses/:id
func DeleteAddress(sessions *auth.Sessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := sessions.Client(c.GetString("user_id")).DeleteAddress(c.Request.Context(), c.Param("id")); err != nil {
			controllers.APIError(c, err, "Address not found")
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Address deleted"})
	}
}

// PUT /user/addresses/:id/default
func SetDefaultAddress(sessions *auth.Sessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		address, err := sessions.Client(c.GetString("user_id")).SetDefaultAddress(c.Request.Context(), c.Param("id"))
		if err != nil {
			controllers.APIError(c, err, "Address not found")
			return
		}
		c.JSON(http.StatusOK, address)
	}
}

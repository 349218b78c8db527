package cartControllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront/auth"
	"github.com/junaidrashid-git/storefront/cart"
)

// guestCart loads the cart of the guest behind the token. Signed-in users
// name the guest cart with ?guest_id.
func guestCart(c *gin.Context, carts *cart.Manager) (*cart.Store, bool) {
	guestID := c.Query("guest_id")
	if c.GetString("role") == auth.RoleGuest {
		if guestID != "" && guestID != c.GetString("user_id") {
			c.JSON(http.StatusForbidden, gin.H{"error": "guest_id does not match token"})
			return nil, false
		}
		guestID = c.GetString("user_id")
	}
	if guestID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "guest_id is required"})
		return nil, false
	}
	s, err := carts.Guest(c.Request.Context(), guestID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch guest cart"})
		return nil, false
	}
	return s, true
}

// GET /guest/cart?guest_id=
func GetGuestCart(carts *cart.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if s, ok := guestCart(c, carts); ok {
			c.JSON(http.StatusOK, cartResponse(s))
		}
	}
}

// POST /guest/cart?guest_id=
func AddGuestCartItem(carts *cart.Manager, catalog Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		if s, ok := guestCart(c, carts); ok {
			addItem(c, s, catalog)
		}
	}
}

// PUT /guest/cart/:variant_id?guest_id=
func UpdateGuestCartItem(carts *cart.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if s, ok := guestCart(c, carts); ok {
			updateItem(c, s)
		}
	}
}

// DELETE /guest/cart/:variant_id?guest_id=
func DeleteGuestCartItem(carts *cart.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if s, ok := guestCart(c, carts); ok {
			deleteItem(c, s)
		}
	}
}

// DELETE /guest/cart?guest_id=
func ClearGuestCart(carts *cart.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if s, ok := guestCart(c, carts); ok {
			clearCart(c, s)
		}
	}
}

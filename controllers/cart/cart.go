package cartControllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront/api"
	"github.com/junaidrashid-git/storefront/auth"
	"github.com/junaidrashid-git/storefront/cart"
	"github.com/junaidrashid-git/storefront/controllers"
	"github.com/junaidrashid-git/storefront/models"
)

// Catalog resolves a product so cart lines carry catalog price and stock.
type Catalog interface {
	GetProduct(ctx context.Context, id string) (models.Product, error)
}

var errUnknownVariant = errors.New("variant does not exist")

func resolveItem(ctx context.Context, catalog Catalog, input models.CartItemInput) (models.CartItem, error) {
	product, err := catalog.GetProduct(ctx, input.ProductID)
	if err != nil {
		return models.CartItem{}, err
	}
	for _, v := range product.Variants {
		if v.ID == input.VariantID {
			return product.CartItem(v, input.Quantity), nil
		}
	}
	return models.CartItem{}, errUnknownVariant
}

func cartResponse(s *cart.Store) gin.H {
	return gin.H{
		"id":          s.ID(),
		"mode":        s.Mode().String(),
		"items":       s.Items(),
		"subtotal":    s.TotalPrice().StringFixed(2),
		"total_items": s.TotalItems(),
	}
}

// mutationFailed answers a cart mutation error. Local state is kept, so the
// current cart is returned with the error.
func mutationFailed(c *gin.Context, s *cart.Store, err error) {
	_ = c.Error(err)
	switch {
	case errors.Is(err, cart.ErrUnknownVariant):
		c.JSON(http.StatusNotFound, gin.H{"error": "Item not in cart"})
	case errors.Is(err, api.ErrAuthExpired):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "session expired", "redirect": api.LoginRedirect})
	default:
		c.JSON(http.StatusBadGateway, gin.H{"error": "Cart sync failed: " + err.Error(), "cart": cartResponse(s)})
	}
}

func addItem(c *gin.Context, s *cart.Store, catalog Catalog) {
	var input models.CartItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	item, err := resolveItem(c.Request.Context(), catalog, input)
	if err != nil {
		if errors.Is(err, errUnknownVariant) || api.IsNotFound(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Product does not exist"})
			return
		}
		controllers.APIError(c, err, "")
		return
	}

	if err := s.AddItem(c.Request.Context(), item); err != nil {
		mutationFailed(c, s, err)
		return
	}
	c.JSON(http.StatusCreated, cartResponse(s))
}

func updateItem(c *gin.Context, s *cart.Store) {
	var input models.QuantityInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}
	if err := s.UpdateQuantity(c.Request.Context(), c.Param("variant_id"), *input.Quantity); err != nil {
		mutationFailed(c, s, err)
		return
	}
	c.JSON(http.StatusOK, cartResponse(s))
}

func deleteItem(c *gin.Context, s *cart.Store) {
	if err := s.RemoveItem(c.Request.Context(), c.Param("variant_id")); err != nil {
		mutationFailed(c, s, err)
		return
	}
	c.JSON(http.StatusOK, cartResponse(s))
}

func clearCart(c *gin.Context, s *cart.Store) {
	if err := s.Clear(c.Request.Context()); err != nil {
		mutationFailed(c, s, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Cart cleared"})
}

// userCart loads the signed-in user's cart or answers the request.
func userCart(c *gin.Context, sessions *auth.Sessions) (*cart.Store, bool) {
	s, err := sessions.Cart(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		controllers.APIError(c, err, "Cart not found")
		return nil, false
	}
	return s, true
}

// GET /user/cart
func GetUserCart(sessions *auth.Sessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		if s, ok := userCart(c, sessions); ok {
			c.JSON(http.StatusOK, cartResponse(s))
		}
	}
}

// POST /user/cart
func AddUserCartItem(sessions *auth.Sessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		if s, ok := userCart(c, sessions); ok {
			addItem(c, s, sessions.Client(c.GetString("user_id")))
		}
	}
}

// PUT /user/cart/:variant_id
func UpdateUserCartItem(sessions *auth.Sessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		if s, ok := userCart(c, sessions); ok {
			updateItem(c, s)
		}
	}
}

// DELETE /user/cart/:variant_id
func DeleteUserCartItem(sessions *auth.Sessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		if s, ok := userCart(c, sessions); ok {
			deleteItem(c, s)
		}
	}
}

// DELETE /user/cart
func ClearUserCart(sessions *auth.Sessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		if s, ok := userCart(c, sessions); ok {
			clearCart(c, s)
		}
	}
}

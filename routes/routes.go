package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront/api"
	"github.com/junaidrashid-git/storefront/auth"
	"github.com/junaidrashid-git/storefront/cart"
	"github.com/junaidrashid-git/storefront/feed"
)

// Deps is everything the route groups hand to their controllers.
type Deps struct {
	API       *api.Client
	Sessions  *auth.Sessions
	Carts     *cart.Manager
	Simulator *feed.Simulator
	Hub       *feed.Hub

	JWTSecret   string
	GuestTTL    time.Duration
	SessionTTL  time.Duration
	AdminAPIKey string
}

// SetupRoutes is the single entry-point that wires up every route group.
func SetupRoutes(r *gin.Engine, d Deps) {
	// Public auth routes (no middleware)
	SetupAuthRoutes(r, d)

	// Guest carts, keyed by guest_id
	SetupGuestRoutes(r, d)

	// User routes (JWT-protected)
	SetupUserRoutes(r, d)

	// Order routes (JWT-protected, signed-in users only)
	SetupOrderRoutes(r, d)

	// Admin routes (API-Key-protected)
	SetupAdminRoutes(r, d)
}

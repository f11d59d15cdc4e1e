package routes

import (
	"food-court-api/handlers"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, h *handlers.Handler, storageRoot, storageURL string) {
	// Uploaded images
	r.Static(storageURL, storageRoot)

	r.GET("/health", h.Health)

	auth := h.Tokens.AuthRequired()
	preOrdersGate := h.Tokens.AuthWhen(func() bool {
		return h.Runtime.Policy().PreOrdersRequireAuth
	})

	// ── Public routes ──────────────────────────────────────────────
	public := r.Group("/api")
	{
		public.GET("/check", h.Check)
		public.GET("/cache-clear", h.CacheClear)
		public.GET("/state-machine", h.StateMachine)

		// Auth
		public.POST("/signup", h.Signup)
		public.POST("/sign-up", h.Signup)
		public.POST("/login", h.Login)

		// Menu & pre-orders (no auth needed)
		public.GET("/list-items", h.ListItems)
		public.POST("/pre-order", h.PreOrder)
		public.GET("/pre-orders", preOrdersGate, h.ListPreOrders)
	}

	// ── Authenticated routes ───────────────────────────────────────
	admin := r.Group("/api")
	admin.Use(auth)
	{
		admin.POST("/logout", h.Logout)
		admin.GET("/profile", h.GetProfile)

		// Menu management
		admin.POST("/create-item", h.CreateItem)
		admin.PUT("/update-item/:id", h.UpdateItem)
		admin.POST("/update-item/:id", h.UpdateItem)
		admin.DELETE("/delete-item/:id", h.DeleteItem)

		// Pre-order administration
		admin.GET("/pre-orders/by-customer", h.PreOrdersByCustomer)
		admin.PUT("/pre-orders/:id/status", h.UpdatePreOrderStatus)
	}
}

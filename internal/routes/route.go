package routes

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/wanderbay/wanderbay-api/internal/config"
	"github.com/wanderbay/wanderbay-api/internal/container"
	"github.com/wanderbay/wanderbay-api/internal/handlers"
	"github.com/wanderbay/wanderbay-api/internal/middleware"
)

// SetupRoutes configures all routes with the dependency container.
func SetupRoutes(cfg *config.Config, cn *container.Container, rdb *redis.Client) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.AllowedOrigin},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Cache"},
		AllowCredentials: true,
	}))

	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(cn.Logger))
	r.Use(middleware.ErrorHandler(cn.Logger))
	r.Use(gin.Recovery())

	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"status":  "OK",
				"service": "wanderbay-api",
			})
		})

		// public routes
		v1.POST("/register", handlers.Register(cn.UserService))
		v1.POST("/login", handlers.Login(cn.UserService))
	}

	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware(cfg.JWTSecret, cn.Logger))

	userRoutes := protected.Group("/users")
	{
		userRoutes.GET("/profile", handlers.GetProfile(cn.UserService))
		userRoutes.PATCH("/profile", handlers.UpdateProfile(cn.UserService))
		userRoutes.GET("/", middleware.RequireAdmin(), handlers.ListUsers(cn.UserService))
		userRoutes.DELETE("/:id", middleware.RequireAdmin(), handlers.DeleteUser(cn.UserService))
	}

	bookingRoutes := protected.Group("/bookings")
	{
		bookingRoutes.POST("/", handlers.CreateBooking(cn.BookingService))
		bookingRoutes.GET("/", handlers.ListBookings(cn.BookingService))
		bookingRoutes.GET("/:id", handlers.GetBooking(cn.BookingService))
		bookingRoutes.POST("/:id/cancel", handlers.CancelBooking(cn.BookingService))
		bookingRoutes.POST("/:id/confirm", middleware.RequireAdmin(), handlers.ConfirmBooking(cn.BookingService))
		bookingRoutes.PATCH("/:id/status", middleware.RequireAdmin(), handlers.UpdateBookingStatus(cn.BookingService))
		bookingRoutes.PATCH("/:id/payment", middleware.RequireAdmin(), handlers.UpdateBookingPayment(cn.BookingService))
		bookingRoutes.DELETE("/:id", middleware.RequireAdmin(), handlers.DeleteBooking(cn.BookingService))
	}

	hotelRoutes := protected.Group("/hotels")
	{
		hotelRoutes.POST("/", middleware.RequireAdmin(), middleware.InvalidateCache(rdb, "hotels", cn.Logger), handlers.CreateHotel(cn.HotelService))
		hotelRoutes.GET("/", middleware.CacheList(rdb, "hotels", 2*time.Minute, cn.Logger), handlers.ListHotels(cn.HotelService))
		hotelRoutes.GET("/:id", handlers.GetHotel(cn.HotelService))
		hotelRoutes.PATCH("/:id", middleware.RequireAdmin(), middleware.InvalidateCache(rdb, "hotels", cn.Logger), handlers.UpdateHotel(cn.HotelService))
		hotelRoutes.DELETE("/:id", middleware.RequireAdmin(), middleware.InvalidateCache(rdb, "hotels", cn.Logger), handlers.DeleteHotel(cn.HotelService))
		hotelRoutes.POST("/:id/reviews", handlers.AddHotelReview(cn.HotelService))
		hotelRoutes.PATCH("/:id/reviews", handlers.UpdateHotelReview(cn.HotelService))
		hotelRoutes.DELETE("/:id/reviews", handlers.RemoveHotelReview(cn.HotelService))
	}

	packageRoutes := protected.Group("/packages")
	{
		packageRoutes.POST("/", middleware.RequireAdmin(), middleware.InvalidateCache(rdb, "packages", cn.Logger), handlers.CreatePackage(cn.PackageService))
		packageRoutes.GET("/", middleware.CacheList(rdb, "packages", 2*time.Minute, cn.Logger), handlers.ListPackages(cn.PackageService))
		packageRoutes.GET("/:id", handlers.GetPackage(cn.PackageService))
		packageRoutes.PATCH("/:id", middleware.RequireAdmin(), middleware.InvalidateCache(rdb, "packages", cn.Logger), handlers.UpdatePackage(cn.PackageService))
		packageRoutes.DELETE("/:id", middleware.RequireAdmin(), middleware.InvalidateCache(rdb, "packages", cn.Logger), handlers.DeletePackage(cn.PackageService))
	}

	propertyRoutes := protected.Group("/properties")
	{
		propertyRoutes.POST("/", middleware.RequireAdmin(), handlers.CreateProperty(cn.PropertyService))
		propertyRoutes.GET("/", handlers.ListProperties(cn.PropertyService))
		propertyRoutes.GET("/:id", handlers.GetProperty(cn.PropertyService))
		propertyRoutes.PATCH("/:id", middleware.RequireAdmin(), handlers.UpdateProperty(cn.PropertyService))
		propertyRoutes.DELETE("/:id", middleware.RequireAdmin(), handlers.DeleteProperty(cn.PropertyService))
	}

	categoryRoutes := protected.Group("/categories")
	{
		categoryRoutes.POST("/", middleware.RequireAdmin(), handlers.CreateCategory(cn.CategoryService))
		categoryRoutes.GET("/", handlers.ListCategories(cn.CategoryService))
		categoryRoutes.GET("/:id", handlers.GetCategory(cn.CategoryService))
		categoryRoutes.PATCH("/:id", middleware.RequireAdmin(), handlers.UpdateCategory(cn.CategoryService))
		categoryRoutes.DELETE("/:id", middleware.RequireAdmin(), handlers.DeleteCategory(cn.CategoryService))
	}

	couponRoutes := protected.Group("/coupons")
	{
		couponRoutes.POST("/", middleware.RequireAdmin(), handlers.CreateCoupon(cn.CouponService))
		couponRoutes.GET("/", middleware.RequireAdmin(), handlers.ListCoupons(cn.CouponService))
		couponRoutes.GET("/:id", handlers.GetCoupon(cn.CouponService))
		couponRoutes.PATCH("/:id", middleware.RequireAdmin(), handlers.UpdateCoupon(cn.CouponService))
		couponRoutes.DELETE("/:id", middleware.RequireAdmin(), handlers.DeleteCoupon(cn.CouponService))
		couponRoutes.POST("/:id/validate", handlers.ValidateCoupon(cn.CouponService))
		couponRoutes.POST("/:id/use", handlers.UseCoupon(cn.CouponService))
	}

	eventRoutes := protected.Group("/events")
	{
		eventRoutes.POST("/", handlers.CreateEvent(cn.EventService))
		eventRoutes.GET("/", handlers.ListEvents(cn.EventService))
		eventRoutes.GET("/:id", handlers.GetEvent(cn.EventService))
		eventRoutes.PATCH("/:id", handlers.UpdateEvent(cn.EventService))
		eventRoutes.DELETE("/:id", handlers.DeleteEvent(cn.EventService))
	}

	return r
}

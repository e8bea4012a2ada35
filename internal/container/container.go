package container

import (
	"log/slog"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/wanderbay/wanderbay-api/internal/config"
	"github.com/wanderbay/wanderbay-api/internal/mailer"
	"github.com/wanderbay/wanderbay-api/internal/models"
	"github.com/wanderbay/wanderbay-api/internal/queue"
	"github.com/wanderbay/wanderbay-api/internal/services"
	"go.mongodb.org/mongo-driver/mongo"
)

// Container holds all application dependencies.
type Container struct {
	Logger        *slog.Logger
	Cloudinary    *cloudinary.Cloudinary
	MongoDBClient *mongo.Client
	Repo          *models.MongodbRepo
	Mailer        mailer.Mailer

	UserService     *services.UserService
	BookingService  *services.BookingService
	HotelService    *services.HotelService
	PackageService  *services.PackageService
	PropertyService *services.PropertyService
	CategoryService *services.CategoryService
	CouponService   *services.CouponService
	EventService    *services.EventService

	Executor *queue.Executor
}

// NewContainer wires the repositories and services together.
func NewContainer(
	cfg *config.Config,
	logger *slog.Logger,
	cld *cloudinary.Cloudinary,
	mongoDBClient *mongo.Client,
) *Container {
	repo := models.MongodbNewRepo(mongoDBClient)
	mail := mailer.FromConfig(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPFrom, logger)

	userService := services.NewUserService(repo, cfg.JWTSecret, cfg.JWTTTL, logger)
	bookingService := services.NewBookingService(repo, repo, repo, repo, repo, repo, repo, logger)
	hotelService := services.NewHotelService(repo, logger)
	packageService := services.NewPackageService(repo, repo, logger)
	propertyService := services.NewPropertyService(repo, logger)
	categoryService := services.NewCategoryService(repo, logger)
	couponService := services.NewCouponService(repo, repo, logger)
	eventService := services.NewEventService(repo, bookingService, logger)

	executor := &queue.Executor{
		Bookings: repo,
		Events:   repo,
		Users:    repo,
		Mailer:   mail,
		Logger:   logger,
	}

	return &Container{
		Logger:          logger,
		Cloudinary:      cld,
		MongoDBClient:   mongoDBClient,
		Repo:            repo,
		Mailer:          mail,
		UserService:     userService,
		BookingService:  bookingService,
		HotelService:    hotelService,
		PackageService:  packageService,
		PropertyService: propertyService,
		CategoryService: categoryService,
		CouponService:   couponService,
		EventService:    eventService,
		Executor:        executor,
	}
}

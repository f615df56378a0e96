package api

import (
	"fmt"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/mehrdadmmz/StagePass/docs"
	v1 "github.com/mehrdadmmz/StagePass/internal/api/handler/v1"
	"github.com/mehrdadmmz/StagePass/internal/api/middleware"
	"github.com/mehrdadmmz/StagePass/internal/clock"
	"github.com/mehrdadmmz/StagePass/internal/config"
	"github.com/mehrdadmmz/StagePass/internal/metrics"
	"github.com/mehrdadmmz/StagePass/internal/qrcode"
	"github.com/mehrdadmmz/StagePass/internal/ratelimit"
	"github.com/mehrdadmmz/StagePass/internal/repository"
	"github.com/mehrdadmmz/StagePass/internal/repository/dao"
	"github.com/mehrdadmmz/StagePass/internal/service"
)

type Server struct {
	Config  *config.AppConfig
	Router  *gin.Engine
	limiter *ratelimit.Limiter
}

type handlers struct {
	auth       *v1.AuthHandler
	user       *v1.UserHandler
	event      *v1.EventHandler
	ticket     *v1.TicketHandler
	validation *v1.TicketValidationHandler
}

// NewServer wires every handler on top of db. limiter may be nil, in which
// case validation requests are not rate limited.
func NewServer(conf *config.AppConfig, db *gorm.DB, limiter *ratelimit.Limiter) (*Server, error) {
	gin.SetMode(conf.Gin.Mode)
	engine := gin.New()

	s := &Server{
		Config:  conf,
		Router:  engine,
		limiter: limiter,
	}

	h, err := s.initHandlers(db)
	if err != nil {
		return nil, err
	}

	s.MountMiddlewares()
	s.MountHandlers(h)

	return s, nil
}

func (s *Server) initHandlers(db *gorm.DB) (handlers, error) {
	encoder, err := qrcode.NewEncoder(s.Config.QR.Size, s.Config.QR.RecoveryLevel)
	if err != nil {
		return handlers{}, fmt.Errorf("qrcode.NewEncoder -> %w", err)
	}

	txManager := dao.NewTxManager(db, s.Config.Postgres.LockTimeout)
	userRepo := repository.NewUserRepository(dao.NewUserDAO(db))
	eventRepo := repository.NewEventRepository(dao.NewEventDAO(db))
	ticketRepo := repository.NewTicketRepository(dao.NewTicketDAO(db))
	qrCodeRepo := repository.NewQrCodeRepository(dao.NewQrCodeDAO(db))
	validationRepo := repository.NewTicketValidationRepository(dao.NewTicketValidationDAO(db))

	userSvc := service.NewUserService(userRepo)
	qrCodeSvc := service.NewQrCodeService(qrCodeRepo, encoder)
	purchaseSvc := service.NewPurchaseService(txManager, userRepo, eventRepo, ticketRepo, qrCodeSvc)
	validationSvc := service.NewTicketValidationService(txManager, ticketRepo, qrCodeRepo, validationRepo, clock.NewSystem())

	return handlers{
		auth:       v1.NewAuthHandler(s.Config.API, service.NewAuthService(userRepo)),
		user:       v1.NewUserHandler(userSvc),
		event:      v1.NewEventHandler(service.NewEventService(eventRepo), userSvc),
		ticket:     v1.NewTicketHandler(purchaseSvc, service.NewTicketService(ticketRepo), qrCodeSvc, userSvc),
		validation: v1.NewTicketValidationHandler(validationSvc, userSvc),
	}, nil
}

func (s *Server) MountMiddlewares() {
	// Logger and Recovery are needed unless we use gin.Default().
	s.Router.Use(gin.Logger())
	s.Router.Use(gin.Recovery())
	s.Router.Use(requestid.New())
	s.Router.Use(metrics.Middleware())
	s.Router.Use(middleware.ConfigCORS(s.Config.API.AllowedCORSDomains))
}

func (s *Server) MountHandlers(h handlers) {
	const basePath = "/api/v1"

	auth := s.Router.Group(basePath)
	{
		auth.POST("/auth/signup", h.auth.HandleSignup)
		auth.POST("/auth/login", h.auth.HandleLogin)
	}

	api := s.Router.Group(basePath, middleware.NewAuthenticator(s.Config.API.JWTSigningKey).VerifyJWT())
	{
		api.GET("/users/me", h.user.HandleGetMe)

		api.POST("/events", h.event.HandleCreateEvent)
		api.GET("/events/:eventID/ticket-types", h.event.HandleGetTicketTypes)

		api.POST("/ticket-types/:ticketTypeID/tickets", h.ticket.HandlePurchaseTicket)
		api.GET("/tickets", h.ticket.HandleListTickets)
		api.GET("/tickets/:ticketID", h.ticket.HandleGetTicket)
		api.GET("/tickets/:ticketID/qr-codes", h.ticket.HandleGetTicketQrCode)

		api.POST("/ticket-validations", s.validationLimit(), h.validation.HandleValidateTicket)
	}

	s.Router.GET("/", v1.HandleHealthcheck)
	s.Router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Setup Swagger UI.
	docs.SwaggerInfo.Host = s.Config.API.BaseURL
	docs.SwaggerInfo.BasePath = basePath
	docs.SwaggerInfo.Title = "StagePass API"
	docs.SwaggerInfo.Description = "Ticket sales with capacity control, QR credentials and door validation."
	docs.SwaggerInfo.Version = "1.0"
	s.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
}

func (s *Server) validationLimit() gin.HandlerFunc {
	if s.limiter == nil {
		return func(ctx *gin.Context) { ctx.Next() }
	}

	return s.limiter.Middleware("ticket-validations", func(ctx *gin.Context) string {
		if userID, ok := middleware.UserIDFromContext(ctx); ok {
			return userID.String()
		}
		return ctx.ClientIP()
	})
}

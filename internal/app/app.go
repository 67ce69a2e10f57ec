package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hirepoint_backend/internal/auth"
	"hirepoint_backend/internal/config"
	"hirepoint_backend/internal/email"
	"hirepoint_backend/internal/handlers"
	"hirepoint_backend/internal/logger"
	"hirepoint_backend/internal/middleware"
	"hirepoint_backend/internal/models"
	"hirepoint_backend/internal/repositories"
	"hirepoint_backend/internal/routes"
	"hirepoint_backend/internal/services"
	"hirepoint_backend/internal/validator"
	"hirepoint_backend/internal/workers"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func Run() {
	config.LoadConfig()
	cfg := config.AppConfig

	logger.Init(cfg.Server.Env)
	logger.Info("Logger initialized", "env", cfg.Server.Env)

	logger.Info("Connecting to database...")
	// TranslateError нужен репозиториям: нарушение уникального индекса
	// должно приходить как gorm.ErrDuplicatedKey, а не сырая ошибка драйвера
	gormDB, err := gorm.Open(postgres.Open(cfg.Database.DSN), &gorm.Config{TranslateError: true})
	if err != nil {
		logger.Fatal("Failed to connect to GORM", "error", err)
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		logger.Fatal("Failed to get *sql.DB from GORM", "error", err)
	}
	if err = sqlDB.Ping(); err != nil {
		logger.Fatal("Database unavailable", "error", err)
	}
	logger.Info("Database connected")

	if err := migrate(gormDB); err != nil {
		logger.Fatal("Failed to run migrations", "error", err)
	}

	if err := seedFirstAdmin(gormDB, cfg); err != nil {
		// Без админа сервер не запускаем: проблема почти наверняка в БД
		logger.Fatal("Failed to seed first admin user", "error", err)
	}

	ginRouter := SetupRouter(cfg, gormDB)

	// Фоновая уборка истекших токенов
	tokenWorker := workers.NewTokenWorker(gormDB, repositories.NewUserRepository(cfg.QueryTimeout()))
	tokenWorker.Start(context.Background())

	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("Server starting", "address", address)
	if err := ginRouter.Run(address); err != nil {
		logger.Fatal("Server startup error", "error", err)
	}
}

// SetupRouter собирает полностью сконфигурированный gin.Engine.
// Вынесен отдельно, чтобы интеграционные тесты могли поднять роутер
// без старта сервера.
func SetupRouter(cfg *config.Config, gormDB *gorm.DB) *gin.Engine {
	issuer := auth.NewTokenIssuer([]byte(cfg.JWT.Secret))

	serviceContainer := initializeServices(cfg, issuer)
	appHandlers := initializeHandlers(serviceContainer)

	ginRouter := initializeGinRouter(gormDB, issuer, cfg.Server.Env)
	routes.RegisterRoutes(ginRouter, appHandlers)

	return ginRouter
}

func initializeServices(cfg *config.Config, issuer *auth.TokenIssuer) *services.ServiceContainer {
	var emailProvider email.Provider
	if cfg.Email.Enabled {
		emailProvider = email.NewSMTPProvider(cfg)
		logger.Info("Email provider initialized", "smtp_host", cfg.Email.SMTPHost)
	} else {
		emailProvider = email.NoopProvider{}
		logger.Warn("Email sending is disabled; reset links are returned in responses only")
	}

	userRepo := repositories.NewUserRepository(cfg.QueryTimeout())
	vacancyRepo := repositories.NewVacancyRepository(cfg.QueryTimeout())

	sessionService := services.NewSessionService(userRepo, issuer, emailProvider, cfg.Server.BaseURL)
	vacancyService := services.NewVacancyService(vacancyRepo, sessionService)

	return &services.ServiceContainer{
		SessionService: sessionService,
		VacancyService: vacancyService,
	}
}

func initializeHandlers(sc *services.ServiceContainer) *handlers.AppHandlers {
	customValidator := validator.New()
	baseHandler := handlers.NewBaseHandler(customValidator)

	return &handlers.AppHandlers{
		UserHandler:    handlers.NewUserHandler(baseHandler, sc.SessionService),
		VacancyHandler: handlers.NewVacancyHandler(baseHandler, sc.VacancyService),
	}
}

func initializeGinRouter(db *gorm.DB, issuer *auth.TokenIssuer, env string) *gin.Engine {
	if env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.AuthContextMiddleware(issuer))
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.DBMiddleware(db))
	return router
}

func migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.RefreshToken{},
		&models.ForgotPasswordToken{},
		&models.Vacancy{},
		&models.Applicant{},
	)
}

// seedFirstAdmin создает первого администратора, если его еще нет
func seedFirstAdmin(db *gorm.DB, cfg *config.Config) error {
	adminUserName := cfg.Admin.UserName
	adminEmail := cfg.Admin.Email
	adminPassword := cfg.Admin.Password

	if adminEmail == "" || adminPassword == "" {
		logger.Warn("Admin email or password is not configured. Skipping admin seeding.")
		return nil
	}

	tx := db.Begin()
	if tx.Error != nil {
		return fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}
	defer tx.Rollback()

	var adminUser models.User
	result := tx.Where("email = ?", adminEmail).First(&adminUser)

	if result.Error == nil {
		logger.Info("Admin user already exists. Skipping creation.", "email", adminEmail)
		tx.Rollback()
		return nil
	}
	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check for admin user: %w", result.Error)
	}

	logger.Warn("No admin user found. Creating first admin...", "email", adminEmail)

	hash, err := auth.HashPassword(adminPassword)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	now := time.Now()
	newAdmin := &models.User{
		BaseModel: models.BaseModel{
			ID:        uuid.New().String(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		UserName:     adminUserName,
		Email:        adminEmail,
		PasswordHash: hash,
		Role:         models.UserRoleAdmin,
	}
	if err := tx.Create(newAdmin).Error; err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	logger.Info("First admin user created", "email", adminEmail)
	return tx.Commit().Error
}

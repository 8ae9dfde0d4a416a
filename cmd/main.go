package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/franciscosanchezn/foodgram-api/docs" // Registers the swagger document
	"github.com/franciscosanchezn/foodgram-api/internal/auth"
	"github.com/franciscosanchezn/foodgram-api/internal/config"
	"github.com/franciscosanchezn/foodgram-api/internal/controllers"
	"github.com/franciscosanchezn/foodgram-api/internal/database"
	"github.com/franciscosanchezn/foodgram-api/internal/middleware"
	"github.com/franciscosanchezn/foodgram-api/internal/services"
	"github.com/franciscosanchezn/foodgram-api/internal/storage"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

var (
	db            *gorm.DB
	configuration *config.Config

	rootCmd = &cobra.Command{
		Use:   "foodgram",
		Short: "Foodgram recipe sharing API",
		Long: `Foodgram lets users publish recipes, follow authors, keep favorites
and build a shopping list from the recipes in their cart.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loadDotenvFile()
			setUpLogger()

			var err error
			if configuration, err = config.LoadConfig(); err != nil {
				return err
			}
			db, err = setupDatabase(configuration)
			return err
		},
		RunE: serve,
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API (default)",
		RunE:  serve,
	}
)

// @title Foodgram API
// @version 1.0
// @description Recipes, favorites, shopping lists and subscriptions
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the token.
func main() {
	rootCmd.AddCommand(serveCmd, importIngredientsCmd, createClientCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadDotenvFile loads environment variables from a .env file
// If the file is not found, it will log a warning and use system environment variables
func loadDotenvFile() {
	if err := godotenv.Load(); err != nil {
		log.Warn("No .env file found, using system environment variables")
	}
}

// setUpLogger initializes the logger with a JSON formatter. LOG_LEVEL wins over
// the level implied by APP_ENV.
func setUpLogger() {
	log.SetFormatter(&log.JSONFormatter{})
	log.SetLevel(config.LevelForEnvironment(config.GetEnvWithDefault("APP_ENV", "development")))

	if raw := os.Getenv("LOG_LEVEL"); raw != "" {
		level, err := log.ParseLevel(raw)
		if err != nil {
			log.Warnf("Invalid LOG_LEVEL %q, keeping %s", raw, log.GetLevel())
			return
		}
		log.SetLevel(level)
	}
}

// setupDatabase connects and migrates the schema
func setupDatabase(conf *config.Config) (*gorm.DB, error) {
	conn, err := database.InitDatabase(conf.Database())
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(conn); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}
	return conn, nil
}

func serve(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	users := services.NewUserService(db)
	issuer := auth.NewTokenIssuer(configuration.JWTSecret, configuration.TokenTTL)
	sessions := auth.NewSessionService(db, users, issuer)
	oauthService := auth.NewOAuthService(db, configuration.JWTSecret, configuration.TokenTTL)

	purgeExpiredTokens(ctx, sessions, oauthService.TokenStore())

	if configuration.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := setupRouter(buildAPI(users, sessions, oauthService))

	srv := &http.Server{
		Addr:              fmt.Sprintf("%v:%d", configuration.Host, configuration.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("Starting server on %s", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// purgeExpiredTokens drops revocations and OAuth tokens nobody can use anymore
func purgeExpiredTokens(ctx context.Context, sessions *auth.SessionService, tokens *auth.GormTokenStore) {
	if purged, err := sessions.PurgeExpired(ctx); err != nil {
		log.WithError(err).Warn("Failed to purge expired revocations")
	} else if purged > 0 {
		log.WithField("count", purged).Info("Purged expired revocations")
	}

	if purged, err := tokens.PurgeExpired(ctx); err != nil {
		log.WithError(err).Warn("Failed to purge expired OAuth tokens")
	} else if purged > 0 {
		log.WithField("count", purged).Info("Purged expired OAuth tokens")
	}
}

// buildAPI wires services into controllers
func buildAPI(users services.UserService, sessions *auth.SessionService, oauthService *auth.OAuthService) controllers.Router {
	images := storage.NewLocalImageStore(configuration.MediaRoot, configuration.MediaURL)
	memberships := services.NewMembershipService(db)
	presenter := controllers.NewPresenter(images)
	secret := []byte(configuration.JWTSecret)

	return controllers.Router{
		Recipes: controllers.NewRecipeController(
			services.NewRecipeService(db, images, memberships),
			memberships,
			services.NewShoppingListService(db),
			presenter,
			configuration.PageSize,
		),
		Users:                controllers.NewUserController(users, services.NewSubscriptionService(db), presenter, configuration.PageSize),
		Catalog:              controllers.NewCatalogController(services.NewTagService(db), services.NewIngredientService(db)),
		Auth:                 controllers.NewAuthController(sessions),
		Clients:              controllers.NewClientController(services.NewClientService(db)),
		OAuthToken:           oauthService.HandleToken,
		Authenticate:         middleware.Authenticate(secret, sessions),
		OptionalAuthenticate: middleware.OptionalAuthenticate(secret, sessions),
	}
}

// setupRouter initializes the Gin router and sets up the routes
func setupRouter(api controllers.Router) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(), middleware.Metrics())
	router.Use(cors.New(corsConfig(configuration.CORSAllowedOrigins)))

	router.GET("/health", healthCheckHandler)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	if strings.HasPrefix(configuration.MediaURL, "/") {
		router.Static(configuration.MediaURL, configuration.MediaRoot)
	}

	api.Register(router.Group("/api"))
	return router
}

func corsConfig(origins []string) cors.Config {
	conf := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", "Accept"},
		ExposeHeaders: []string{"Content-Length", "Content-Disposition"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		conf.AllowAllOrigins = true
	} else {
		conf.AllowOrigins = origins
		conf.AllowCredentials = true
	}
	return conf
}

// healthCheckHandler handles the health check endpoint
// @Summary Health check
// @Description Check if the service is running
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheckHandler(c *gin.Context) {
	status := "healthy"
	code := http.StatusOK
	if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
		status = "unhealthy"
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "foodgram-api",
	})
}

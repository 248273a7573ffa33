package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"petcare/internal/config"
	"petcare/internal/database"
	"petcare/internal/events"
	"petcare/internal/handlers"
	"petcare/internal/httpclient"
	"petcare/internal/mailer"
	"petcare/internal/middleware"
)

func main() {
	cfg := config.Load()

	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	client, err := database.Connect(cfg.MongoURI)
	if err != nil {
		log.Fatal(err)
	}
	db := client.Database(cfg.DBName)
	log.Println("MongoDB connected to:", db.Name())

	if err := database.EnsureUserIndexes(db); err != nil {
		log.Printf("user index warning: %v", err)
	}
	if err := database.EnsurePetIndexes(db); err != nil {
		log.Printf("pet index warning: %v", err)
	}
	if err := database.EnsureOrderIndexes(db); err != nil {
		log.Printf("order index warning: %v", err)
	}
	if err := database.EnsureServiceIndexes(db); err != nil {
		log.Printf("service index warning: %v", err)
	}
	if err := database.EnsureAdoptionIndexes(db); err != nil {
		log.Printf("adoption index warning: %v", err)
	}

	publisher, err := events.Connect(cfg.AMQPURL)
	if err != nil {
		log.Printf("event publisher disabled: %v", err)
	}
	mail := mailer.New(cfg.PostmarkToken, cfg.EmailSender)
	outbound := httpclient.New(httpclient.DefaultTimeout)

	oauthCfg := handlers.GoogleOAuthConfig{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.GoogleRedirectURL,
		FrontendURL:  cfg.FrontendURL,
	}

	r := gin.Default()
	r.Static("/uploads", cfg.UploadDir)

	r.POST("/api/users/register", handlers.Register(db, cfg.JWTSecret, cfg.TokenTTL))
	r.POST("/api/users/login", handlers.Login(db, cfg.JWTSecret, cfg.TokenTTL))
	r.POST("/api/users/admin/login", handlers.AdminLogin(db, cfg.JWTSecret, cfg.TokenTTL))

	r.GET("/auth/google", handlers.GoogleRedirect(oauthCfg))
	r.GET("/auth/google/callback", handlers.GoogleCallback(db, outbound, oauthCfg, cfg.JWTSecret, cfg.TokenTTL))

	r.GET("/api/pets/adoption", handlers.GetAdoptionPets(db))
	r.GET("/api/pets/adoption/:id", handlers.GetAdoptionPet(db))

	r.GET("/api/products", handlers.GetProducts(db))
	r.GET("/api/products/:id", handlers.GetProduct(db))

	r.GET("/api/services", handlers.GetServices(db))
	r.GET("/api/services/:id", handlers.GetService(db))

	r.POST("/chat", handlers.Chat(outbound, cfg.ChatbotURL))

	auth := r.Group("/")
	auth.Use(middleware.Auth(cfg.JWTSecret))
	{
		auth.GET("/api/pets/mypets", handlers.GetMyPets(db))
		auth.POST("/api/pets", handlers.CreatePet(db))

		auth.POST("/api/adoption", handlers.CreateAdoptionRequest(db))
		auth.GET("/api/adoption/my-requests", handlers.GetMyAdoptionRequests(db))

		auth.POST("/api/orders", handlers.CreateOrder(db, publisher, mail))
		auth.GET("/api/orders/:id", handlers.GetOrder(db))

		auth.POST("/api/services/:id/reviews", handlers.AddServiceReview(db))

		auth.POST("/api/upload", handlers.UploadImage(cfg.UploadDir, cfg.PublicBaseURL))
	}

	admin := auth.Group("/")
	admin.Use(middleware.AdminOnly())
	{
		admin.GET("/api/adoption", handlers.GetAllAdoptionRequests(db))
		admin.PUT("/api/adoption/:id", handlers.UpdateAdoptionStatus(db, publisher, mail))

		admin.POST("/api/products", handlers.CreateProduct(db))
		admin.PUT("/api/products/:id", handlers.UpdateProduct(db))
		admin.DELETE("/api/products/:id", handlers.DeleteProduct(db))

		admin.GET("/api/orders", handlers.GetOrders(db))
		admin.PUT("/api/orders/:id/deliver", handlers.MarkOrderDelivered(db))

		admin.POST("/api/services", handlers.CreateService(db))
		admin.PUT("/api/services/:id", handlers.UpdateService(db))
		admin.DELETE("/api/services/:id", handlers.DeleteService(db))

		admin.GET("/api/admin/stats", handlers.GetAdminStats(db))
		admin.GET("/api/admin/users", handlers.GetAllUsers(db))
		admin.DELETE("/api/admin/users/:id", handlers.DeleteUser(db))
		admin.GET("/api/admin/pets", handlers.GetAllPets(db))
		admin.POST("/api/admin/pets", handlers.AdminCreatePet(db))
		admin.DELETE("/api/admin/pets/:id", handlers.AdminDeletePet(db))
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		log.Println("server running on port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Println("server shutdown error:", err)
	}

	publisher.Close()
	if err := database.Disconnect(client); err != nil {
		log.Println("mongo disconnect error:", err)
	}
}

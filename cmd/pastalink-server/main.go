package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/gorilla/sessions"
	"github.com/joho/godotenv"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/nrednav/cuid2"

	"github.com/pastalink/pastalink/internal/boot"
	"github.com/pastalink/pastalink/internal/handlers"
	"github.com/pastalink/pastalink/internal/mail"
	"github.com/pastalink/pastalink/internal/roles"
	"github.com/pastalink/pastalink/internal/scheduler"
	pasteservice "github.com/pastalink/pastalink/internal/service/paste"
	userservice "github.com/pastalink/pastalink/internal/service/user"
	"github.com/pastalink/pastalink/internal/store"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Info("no .env file found")
	}

	config, err := boot.Load()
	if err != nil {
		log.Fatalf("boot: %+v", err)
	}

	records, err := store.New(&config)
	if err != nil {
		log.Fatalf("store: %+v", err)
	}
	defer records.Close()

	content, err := store.NewContentStore(&config)
	if err != nil {
		log.Fatalf("content store: %+v", err)
	}

	users := userservice.New(&config, records, mail.NewLogSender())
	pastes := pasteservice.New(records, content)

	if err := users.EnsureAdmin(); err != nil {
		log.Fatalf("admin bootstrap: %+v", err)
	}

	if config.TrustedMembersFile != "" {
		watcher, err := roles.Watch(config.TrustedMembersFile, users)
		if err != nil {
			log.Fatalf("trusted roster: %+v", err)
		}
		defer watcher.Close()
	}

	weekly := scheduler.NewWeekly(func() error {
		_, err := users.ResetWeeklyScores()
		return err
	})
	weekly.Start()
	defer weekly.Stop()

	server := echo.New()
	server.HideBanner = true
	server.HTTPErrorHandler = handlers.HTTPErrorHandler
	server.Use(middleware.BodyLimit("2M"))
	server.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string {
			return cuid2.Generate()
		},
	}))
	server.Use(echoprometheus.NewMiddleware("pastalink"))
	server.Use(middleware.Recover())

	cookies := sessions.NewCookieStore([]byte(config.SessionSecret))
	cookies.Options.Secure = config.IsProduction()
	server.Use(session.Middleware(cookies))
	server.Use(handlers.BearerIdentity([]byte(config.TokenSecret)))

	server.Logger.SetLevel(log.INFO)
	if config.IsDevelopment() {
		server.Logger.SetLevel(log.DEBUG)
	}

	server.POST("/register", handlers.Register(users))
	server.GET("/verify-email", handlers.VerifyEmail(users))
	server.POST("/login", handlers.Login(users))
	server.GET("/logout", handlers.Logout())
	server.POST("/forgot-password", handlers.ForgotPassword(users))
	server.POST("/reset-password", handlers.ResetPassword(users))

	server.POST("/create", handlers.CreatePaste(users, pastes), handlers.RequireLogin)
	server.POST("/paste/:id/update", handlers.UpdatePaste(pastes), handlers.RequireLogin)
	server.POST("/paste/:id/delete", handlers.DeletePaste(pastes), handlers.RequireLogin)
	server.POST("/profile/update", handlers.UpdateProfile(users), handlers.RequireLogin)
	server.POST("/profile/change-password", handlers.ChangePassword(users), handlers.RequireLogin)

	api := server.Group("/api")
	api.POST("/token", handlers.IssueToken([]byte(config.TokenSecret)), handlers.RequireLogin)
	api.GET("/paste/:id", handlers.GetPaste(pastes))
	api.POST("/paste/:id/verify", handlers.VerifyPastePassword(pastes))
	api.GET("/paste/:id/edit-data", handlers.PasteEditData(pastes), handlers.RequireLogin)
	api.POST("/paste/:id/like", handlers.LikePaste(pastes), handlers.RequireLogin)
	api.POST("/paste/:id/report", handlers.ReportPaste(pastes), handlers.RequireLogin)
	api.GET("/pastes/latest", handlers.LatestPastes(pastes))
	api.POST("/user/:username/follow", handlers.FollowUser(users), handlers.RequireLogin)
	api.GET("/user/me", handlers.Me(users))
	api.GET("/user/:username", handlers.UserProfile(users, pastes))
	api.GET("/leaderboard", handlers.Leaderboard(users))
	api.GET("/notifications", handlers.Notifications(users), handlers.RequireLogin)
	api.POST("/notifications/mark-read", handlers.MarkNotificationsRead(users), handlers.RequireLogin)

	go func() {
		metrics := echo.New()
		metrics.HideBanner = true
		metrics.GET("/metrics", echoprometheus.NewHandler())
		if err := metrics.Start(config.MetricsAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	go func() {
		if err := server.Start(config.Addr); err != nil && err != http.ErrServerClosed {
			server.Logger.Fatal("shutting down the server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		server.Logger.Fatal(err)
	}
}

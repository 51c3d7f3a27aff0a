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
	"github.com/joho/godotenv"

	"menukiosk/internal/admin"
	"menukiosk/internal/auth"
	"menukiosk/internal/board"
	"menukiosk/internal/channel"
	"menukiosk/internal/comments"
	"menukiosk/internal/gateway"
	"menukiosk/internal/store"
	"menukiosk/internal/voting"
	"menukiosk/pkg/dates"
	"menukiosk/pkg/database"
	"menukiosk/pkg/utils"
)

func main() {
	_ = godotenv.Load()
	cfg := utils.LoadKioskConfig()

	dbCfg := database.DefaultConfig()
	db := database.MustOpen(dbCfg)
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	cache := store.New(db)
	gw := gateway.New(cfg.APIBaseURL, cache)
	machine := voting.NewMachine(cfg.OpenHour, cfg.CloseHour, gw, log.Default())
	commentSvc := comments.NewService(gw, log.Default())

	reloadToday := func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		menu, err := gw.MenuByDate(ctx, dates.TodayAPI(time.Now()))
		if err != nil {
			log.Printf("[kiosk] load today's menu: %v", err)
			machine.SetToday(nil)
			return
		}
		machine.SetToday(menu)
	}
	machine.Tick(time.Now()) // pin the day token before the first load
	reloadToday()

	// Single shared real-time connection for the whole process.
	ch := channel.New(cfg.WSURL, log.Default())
	dispose := ch.Subscribe(func(ev channel.Event) {
		if ev.Menu != nil {
			machine.ApplyAuthoritative(*ev.Menu)
		}
	})
	defer dispose()
	ch.Start()

	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case now := <-ticker.C:
				if machine.Tick(now) {
					log.Printf("[kiosk] day rollover, reloading today's menu")
					go reloadToday()
				}
			case <-done:
				return
			}
		}
	}()

	router := gin.Default()
	_ = router.SetTrustedProxies([]string{"127.0.0.1"})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": dbCfg.Path})
	})

	router.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":     "not_ready",
				"db_error":   err.Error(),
				"connection": ch.Status(),
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":     "ready",
			"db":         "ok",
			"connection": ch.Status(),
		})
	})

	// Public kiosk screens
	boardHandler := board.NewHandler(machine, ch, gw, commentSvc)
	boardHandler.RegisterRoutes(router.Group("/board"))

	// Staff access
	tokenSvc := auth.TokenService{
		Secret:   []byte(cfg.JWTSecret),
		Issuer:   cfg.JWTIssuer,
		Duration: cfg.JWTDuration,
	}
	authHandler := auth.NewHandler(tokenSvc, cfg.StaffPassword)
	authHandler.RegisterRoutes(router.Group("/auth"))

	protected := router.Group("/admin")
	protected.Use(auth.AuthMiddleware(tokenSvc))
	adminHandler := admin.NewHandler(gw)
	adminHandler.RegisterRoutes(protected)

	httpSrv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("kiosk HTTP API listening on %s", cfg.ListenAddr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Printf("shutdown signal received: %s", sig)
	case err := <-errCh:
		log.Printf("server error: %v", err)
	}

	log.Println("shutting down")
	close(done)
	ch.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown error: %v", err)
	}
	log.Println("kiosk stopped")
}

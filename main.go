package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go_sports_pipeline/config"
	"go_sports_pipeline/routes"
	"go_sports_pipeline/scheduler"
	"go_sports_pipeline/services/pipeline"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	logger.Info("==============================================")
	logger.Info("  Sports Data Pipeline - Starting...")
	logger.Info("==============================================")

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.WithError(err).Warn("Config load issue")
	}

	providersCfg, err := config.LoadProviders(cfg.ProvidersFile)
	if err != nil {
		logger.WithError(err).Warn("Provider budgets unavailable, endpoints run unlimited")
		providersCfg = &config.ProvidersConfig{}
	}

	// Set Gin mode based on environment
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
		logger.SetLevel(logrus.InfoLevel)
	} else {
		logger.SetLevel(logrus.DebugLevel)
	}

	// Create Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())
	router.Use(requestLogger(logger))

	// Health endpoints are available before the pipeline finishes its
	// startup probe.
	setupHealthEndpoints(router)

	server := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Port,
		Handler:           router,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1 MB
	}

	go func() {
		logger.Infof("Server listening on 0.0.0.0:%s", cfg.Port)
		logger.Info("==============================================")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Server error")
		}
	}()

	// Construct the pipeline (runs the startup reachability probe) and
	// wire routes and the background scheduler in the background so a
	// slow upstream cannot delay the listener.
	var p *pipeline.Pipeline
	ready := make(chan struct{})
	go func() {
		defer close(ready)

		p = pipeline.New(cfg, providersCfg, logger)
		routes.SetupRoutes(router, p)

		jobScheduler := scheduler.NewScheduler(p, cfg, logger)
		p.SetScheduler(jobScheduler)
		jobScheduler.Start()

		logger.Info("Pipeline fully initialized")
	}()

	gracefulShutdown(server, ready, func() {
		if p != nil {
			p.Shutdown()
		}
	}, logger)
}

// setupHealthEndpoints sets up liveness endpoints
func setupHealthEndpoints(router *gin.Engine) {
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Sports Data Pipeline API",
			"version": "1.0.0",
		})
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

// corsMiddleware returns a CORS middleware handler
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin == "" {
			origin = "*"
		}

		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization, X-Requested-With")
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// requestLogger returns a request logging middleware
func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Skip logging for health checks to reduce noise
		path := c.Request.URL.Path
		if path == "/health" || path == "/" {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		logger.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start),
		}).Info("Request handled")
	}
}

// gracefulShutdown blocks until SIGINT/SIGTERM, then stops the
// pipeline and drains the server.
func gracefulShutdown(server *http.Server, ready <-chan struct{}, stopPipeline func(), logger *logrus.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Let a still-running pipeline init finish before tearing down.
	select {
	case <-ready:
	case <-time.After(10 * time.Second):
	}

	stopPipeline()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}

	logger.Info("Server exited")
}

// Package main, pazar backend uygulamasının giriş noktasıdır.
//
// Komutlar (cobra):
//
//	pazar serve                    HTTP API + storefront + cron job'ları
//	pazar migrate                  sadece bekleyen migration'ları uygular
//	pazar admin create --username  ilk admin hesabını oluşturur
//
// serve komutunun "wire-up" sırası:
//  1. Config'i yükle
//  2. Database'i başlat (gömülü migration'lar)
//  3. Upload dizinini oluştur
//  4. WebSocket Hub'ı başlat
//  5. Repository → Service → Handler
//  6. Cron job'larını başlat
//  7. Route'ları bağla, metrics + CORS ile sar
//  8. HTTP Server'ı başlat
//  9. Graceful shutdown
//
// Global değişken YOK — her şey runServe içinde oluşturulup birbirine bağlanıyor.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/akinalp/pazar/config"
	"github.com/akinalp/pazar/database"
	"github.com/akinalp/pazar/jobs"
	"github.com/akinalp/pazar/middleware"
	"github.com/akinalp/pazar/pkg/metrics"
	"github.com/akinalp/pazar/ws"
	"github.com/rs/cors"
	"github.com/spf13/cobra"
)

// shutdownTimeout, kapanışta açık request'lerin ve job'ların beklenme süresi.
const shutdownTimeout = 10 * time.Second

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	serve := func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	}

	// Alt komut verilmezse "serve" çalışır.
	root := &cobra.Command{
		Use:           "pazar",
		Short:         "Pazar — çok mağazalı e-ticaret backend'i",
		Args:          cobra.NoArgs,
		RunE:          serve,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "HTTP API, storefront ve arka plan job'larını başlatır",
			Args:  cobra.NoArgs,
			RunE:  serve,
		},
		newMigrateCmd(),
		newAdminCmd(),
	)
	return root
}

func runServe(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Println("[main] pazar server starting...")

	// ─── 1. Config ───
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	log.Printf("[main] config loaded (port=%d)", cfg.Server.Port)

	// ─── 2. Database ───
	db, err := database.New(cfg.Database.Path, database.Migrations())
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	// ─── 3. Upload Dizini ───
	if err := os.MkdirAll(cfg.Upload.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create upload directory: %w", err)
	}

	// ─── 4. WebSocket Hub ───
	//
	// Hub aynı zamanda EventPublisher interface'ini implement eder —
	// service'ler hub'a doğrudan bağımlı olmak yerine interface üzerinden erişir.
	hub := ws.NewHub()
	go hub.Run()

	// ─── 5. Katmanlar ───
	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
		m.TrackOnlineUsers(hub.OnlineUserCount)
	}

	sender, err := initMailer(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize mailer: %w", err)
	}

	repos := initRepositories(db.Conn)
	svcs, limiters, caches := initServices(db.Conn, repos, hub, sender, m, cfg)
	defer limiters.Stop()
	defer caches.Close()
	h := initHandlers(svcs, limiters, hub, cfg)

	// ─── 6. Cron Job'ları ───
	scheduler, err := jobs.NewScheduler(jobs.CleanupTasks(cfg.Jobs, svcs.Auth, svcs.Order, svcs.Cart)...)
	if err != nil {
		return fmt.Errorf("failed to configure jobs: %w", err)
	}
	scheduler.Start()

	// ─── 7. Router ───
	mux := http.NewServeMux()
	initRoutes(mux, h, svcs.Auth, svcs.Settings, repos.User, m, cfg)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Retry-After"},
		AllowCredentials: true,
	})

	// Metrics en dışta değil, CORS'un içinde: preflight OPTIONS istekleri
	// mux'a hiç ulaşmaz, route label'ı anlamsız olurdu.
	handler := corsHandler.Handler(middleware.Metrics(m, mux))

	// ─── 8. HTTP Server ───
	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Printf("[main] server listening on %s", cfg.Server.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// ─── 9. Graceful Shutdown ───
	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			log.Printf("[main] server error: %v", err)
		}
	}
	log.Println("[main] shutting down...")

	// Önce WebSocket bağlantıları — client'lar yeniden bağlanmayı dener.
	// Sonra HTTP server yeni request kabul etmeyi bırakır, açık olanları bekler.
	hub.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[main] forced shutdown: %v", err)
	}
	if err := scheduler.Stop(shutdownCtx); err != nil {
		log.Printf("[main] jobs did not finish: %v", err)
	}

	// Kuyruktaki email'ler gönderilmeden process bitmesin.
	svcs.Mail.Wait()

	log.Println("[main] server stopped gracefully")
	return nil
}

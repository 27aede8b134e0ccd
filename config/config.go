// Package config, uygulamanın tüm konfigürasyonunu merkezi olarak yönetir.
// Environment variable'lardan okur, .env dosyasını da destekler.
//
// Tüm ayarlar tek bir Config nesnesinde toplanır; servisler os.Getenv()
// çağırmak yerine constructor'larında ihtiyaç duydukları alt bölümü alır.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config, uygulamanın tüm konfigürasyon değerlerini taşır.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Upload   UploadConfig
	Email    EmailConfig
	Jobs     JobsConfig
	Metrics  MetricsConfig
}

// ServerConfig, HTTP server ayarları.
type ServerConfig struct {
	Host string
	Port int
	// AllowedOrigins, CORS için izin verilen origin listesi.
	// Storefront ayrı bir domain'den servis ediliyorsa buraya eklenir.
	AllowedOrigins []string
}

// DatabaseConfig, SQLite database ayarları.
type DatabaseConfig struct {
	Path string // SQLite dosya yolu (ör: ./data/pazar.db)
}

// JWTConfig, JWT token ayarları.
type JWTConfig struct {
	Secret             string // Token imzalama anahtarı — GİZLİ TUTULMALI
	AccessTokenExpiry  int    // Dakika cinsinden (varsayılan: 15)
	RefreshTokenExpiry int    // Gün cinsinden (varsayılan: 7)
}

// UploadConfig, görsel yükleme ayarları.
type UploadConfig struct {
	Dir     string // Dosyaların kaydedileceği dizin
	MaxSize int64  // Dosya başına byte cinsinden üst sınır (varsayılan: 8MB)
}

// EmailConfig, Resend ile transactional email ayarları.
// ResendAPIKey boşsa email gönderimi devre dışıdır (NoopSender).
type EmailConfig struct {
	ResendAPIKey string
	FromEmail    string
	AppURL       string // Email'lerdeki linklerin base URL'i (şifre sıfırlama, sipariş detayı)
}

// JobsConfig, arka plan temizlik job'larının ayarları.
// *Spec alanları robfig/cron formatındadır ("@hourly", "*/15 * * * *").
type JobsConfig struct {
	PendingOrderTTL    time.Duration
	CartTTL            time.Duration
	SessionCleanupSpec string
	OrderCleanupSpec   string
	CartCleanupSpec    string
}

// MetricsConfig, Prometheus /metrics endpoint'i.
type MetricsConfig struct {
	Enabled bool
}

// Load, environment variable'lardan Config oluşturur.
// .env dosyası varsa önce onu yükler (development kolaylığı için).
func Load() (*Config, error) {
	// .env yoksa hata vermez — production'da gerçek env variable'lar kullanılır.
	_ = godotenv.Load()

	port, err := strconv.Atoi(getEnv("SERVER_PORT", "9090"))
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	accessExpiry, err := strconv.Atoi(getEnv("JWT_ACCESS_EXPIRY_MINUTES", "15"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_ACCESS_EXPIRY_MINUTES: %w", err)
	}

	refreshExpiry, err := strconv.Atoi(getEnv("JWT_REFRESH_EXPIRY_DAYS", "7"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_REFRESH_EXPIRY_DAYS: %w", err)
	}

	maxSize, err := strconv.ParseInt(getEnv("UPLOAD_MAX_SIZE", "8388608"), 10, 64) // 8MB
	if err != nil {
		return nil, fmt.Errorf("invalid UPLOAD_MAX_SIZE: %w", err)
	}

	pendingTTL, err := time.ParseDuration(getEnv("PENDING_ORDER_TTL", "48h"))
	if err != nil {
		return nil, fmt.Errorf("invalid PENDING_ORDER_TTL: %w", err)
	}

	cartTTL, err := time.ParseDuration(getEnv("CART_TTL", "720h"))
	if err != nil {
		return nil, fmt.Errorf("invalid CART_TTL: %w", err)
	}

	metricsEnabled, err := strconv.ParseBool(getEnv("METRICS_ENABLED", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid METRICS_ENABLED: %w", err)
	}

	jwtSecret := getEnv("JWT_SECRET", "")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is required")
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			Port:           port,
			AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "")),
		},
		Database: DatabaseConfig{
			Path: getEnv("DATABASE_PATH", "./data/pazar.db"),
		},
		JWT: JWTConfig{
			Secret:             jwtSecret,
			AccessTokenExpiry:  accessExpiry,
			RefreshTokenExpiry: refreshExpiry,
		},
		Upload: UploadConfig{
			Dir:     getEnv("UPLOAD_DIR", "./data/uploads"),
			MaxSize: maxSize,
		},
		Email: EmailConfig{
			ResendAPIKey: getEnv("RESEND_API_KEY", ""),
			FromEmail:    getEnv("EMAIL_FROM", "Pazar <no-reply@pazar.local>"),
			AppURL:       strings.TrimRight(getEnv("APP_URL", "http://localhost:9090"), "/"),
		},
		Jobs: JobsConfig{
			PendingOrderTTL:    pendingTTL,
			CartTTL:            cartTTL,
			SessionCleanupSpec: getEnv("JOB_SESSION_CLEANUP", "@hourly"),
			OrderCleanupSpec:   getEnv("JOB_ORDER_CLEANUP", "*/15 * * * *"),
			CartCleanupSpec:    getEnv("JOB_CART_CLEANUP", "@daily"),
		},
		Metrics: MetricsConfig{
			Enabled: metricsEnabled,
		},
	}

	return cfg, nil
}

// Addr, HTTP server'ın dinleyeceği adresi döner (ör: "0.0.0.0:9090").
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// getEnv, environment variable'ı okur, yoksa fallback değeri döner.
func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

// splitList, virgülle ayrılmış listeyi boş elemanları atarak böler.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

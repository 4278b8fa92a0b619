package config

import (
	"encoding/json"
	"log"
	"os"
	"strconv"
	"strings"
)

// AppConfig holds environment driven configuration values. Sensitive data
// must be provided via config/config.json or the environment; it never has
// code defaults.
type AppConfig struct {
	AppPort   string
	JWTSecret string
	BaseURL   string
	GinMode   string
	GinPath   string

	AllowedOrigins []string

	DatabaseURI string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string

	RedisHost     string
	RedisPort     int
	RedisDB       int
	RedisPassword string

	// SMTP for submission notifications
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
	SMTPFromName string
	SMTPTLS      bool
	AdminEmail   string

	// Logging
	LogLevel      string
	LogPath       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
	LogCompress   bool

	// General API abuse protection (token bucket per client IP)
	RateLimitPerMinute int

	// Submission pipeline
	SubmitIntervalSeconds int
	SubmitLimitEnabled    bool
	SubmitLimitExemptAuth bool
	SpamFilterEnabled     bool
	RecaptchaSecretKey    string
	RecaptchaMinScore     float64
	FormTokenTTLHours     int

	// Image uploads
	UploadsEnabled     bool
	UploadDir          string
	MaxImagesPerUpload int
	MaxImageSizeMB     int
	AllowedImageTypes  []string

	// Seed reviewer account, created at boot when the users table is empty
	AdminUsername string
	AdminPassword string
}

var cfg AppConfig
var loaded bool

// Load reads the application configuration. Precedence:
// config/config.json -> defaults -> environment variable overrides.
// It should be called once during boot.
func Load() AppConfig {
	if loaded {
		return cfg
	}

	// Toggles that default to on must be seeded before the JSON pass so
	// absent keys keep the default instead of reading as false.
	cfg.SubmitLimitEnabled = true
	cfg.SpamFilterEnabled = true
	cfg.UploadsEnabled = true

	_ = loadJSONConfig("config/config.json", &cfg)
	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)

	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set in environment variables")
	}

	loaded = true
	return cfg
}

// Get returns the cached configuration, loading it if necessary.
func Get() AppConfig {
	if !loaded {
		return Load()
	}
	return cfg
}

// loadJSONConfig reads the JSON file into out if present. Returns an error
// only for invalid JSON; a missing file is silently ignored.
func loadJSONConfig(path string, out *AppConfig) error {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	var raw map[string]map[string]any
	if err := json.NewDecoder(f).Decode(&raw); err != nil {
		return err
	}

	getString := func(m map[string]any, key string) string {
		if s, ok := m[key].(string); ok {
			return s
		}
		return ""
	}
	getInt := func(m map[string]any, key string) int {
		switch t := m[key].(type) {
		case float64:
			return int(t)
		case int:
			return t
		}
		return 0
	}
	getFloat := func(m map[string]any, key string) float64 {
		if f, ok := m[key].(float64); ok {
			return f
		}
		return 0
	}
	setBool := func(m map[string]any, key string, dst *bool) {
		if b, ok := m[key].(bool); ok {
			*dst = b
		}
	}
	getStringSlice := func(m map[string]any, key string) []string {
		arr, ok := m[key].([]any)
		if !ok {
			return nil
		}
		res := make([]string, 0, len(arr))
		for _, it := range arr {
			if s, ok := it.(string); ok {
				res = append(res, s)
			}
		}
		return res
	}

	if app, ok := raw["app"]; ok {
		if v := getString(app, "AppPort"); v != "" {
			out.AppPort = v
		}
		if v := getString(app, "JWTSecret"); v != "" {
			out.JWTSecret = v
		}
		if v := getString(app, "BaseURL"); v != "" {
			out.BaseURL = v
		}
		if v := getString(app, "GinMode"); v != "" {
			out.GinMode = v
		}
		if v := getString(app, "GinPath"); v != "" {
			out.GinPath = v
		}
		if v := getInt(app, "RateLimitPerMinute"); v != 0 {
			out.RateLimitPerMinute = v
		}
		if v := getString(app, "AdminEmail"); v != "" {
			out.AdminEmail = v
		}
		if list := getStringSlice(app, "AllowedOrigins"); len(list) > 0 {
			out.AllowedOrigins = list
		}
	}

	if dbs, ok := raw["database"]; ok {
		out.DatabaseURI = getString(dbs, "DatabaseURI")
		out.DBHost = getString(dbs, "DBHost")
		out.DBPort = getString(dbs, "DBPort")
		out.DBUser = getString(dbs, "DBUser")
		out.DBPassword = getString(dbs, "DBPassword")
		out.DBName = getString(dbs, "DBName")
	}

	if rds, ok := raw["redis"]; ok {
		out.RedisHost = getString(rds, "RedisHost")
		if v := getInt(rds, "RedisPort"); v != 0 {
			out.RedisPort = v
		}
		if v := getInt(rds, "RedisDB"); v != 0 {
			out.RedisDB = v
		}
		out.RedisPassword = getString(rds, "RedisPassword")
	}

	if sm, ok := raw["smtp"]; ok {
		out.SMTPHost = getString(sm, "SMTPHost")
		if v := getInt(sm, "SMTPPort"); v != 0 {
			out.SMTPPort = v
		}
		out.SMTPUsername = getString(sm, "SMTPUsername")
		out.SMTPPassword = getString(sm, "SMTPPassword")
		out.SMTPFrom = getString(sm, "SMTPFrom")
		out.SMTPFromName = getString(sm, "SMTPFromName")
		setBool(sm, "SMTPTLS", &out.SMTPTLS)
	}

	if lg, ok := raw["log"]; ok {
		if v := getString(lg, "Level"); v != "" {
			out.LogLevel = v
		}
		if v := getString(lg, "Path"); v != "" {
			out.LogPath = v
		}
		if v := getInt(lg, "MaxSizeMB"); v != 0 {
			out.LogMaxSizeMB = v
		}
		if v := getInt(lg, "MaxBackups"); v != 0 {
			out.LogMaxBackups = v
		}
		if v := getInt(lg, "MaxAgeDays"); v != 0 {
			out.LogMaxAgeDays = v
		}
		setBool(lg, "Compress", &out.LogCompress)
	}

	if sb, ok := raw["submissions"]; ok {
		if v := getInt(sb, "IntervalSeconds"); v != 0 {
			out.SubmitIntervalSeconds = v
		}
		setBool(sb, "RateLimitEnabled", &out.SubmitLimitEnabled)
		setBool(sb, "RateLimitExemptAuthenticated", &out.SubmitLimitExemptAuth)
		setBool(sb, "SpamFilterEnabled", &out.SpamFilterEnabled)
		out.RecaptchaSecretKey = getString(sb, "RecaptchaSecretKey")
		if v := getFloat(sb, "RecaptchaMinScore"); v != 0 {
			out.RecaptchaMinScore = v
		}
		if v := getInt(sb, "FormTokenTTLHours"); v != 0 {
			out.FormTokenTTLHours = v
		}
	}

	if up, ok := raw["uploads"]; ok {
		setBool(up, "Enabled", &out.UploadsEnabled)
		if v := getString(up, "Dir"); v != "" {
			out.UploadDir = v
		}
		if v := getInt(up, "MaxImagesPerMessage"); v != 0 {
			out.MaxImagesPerUpload = v
		}
		if v := getInt(up, "MaxImageSizeMB"); v != 0 {
			out.MaxImageSizeMB = v
		}
		if list := getStringSlice(up, "AllowedImageTypes"); len(list) > 0 {
			out.AllowedImageTypes = list
		}
	}

	if adm, ok := raw["admin"]; ok {
		out.AdminUsername = getString(adm, "Username")
		out.AdminPassword = getString(adm, "Password")
	}

	return nil
}

// applyDefaults sets sane defaults for zero-value fields.
func applyDefaults(c *AppConfig) {
	if c.AppPort == "" {
		c.AppPort = "8080"
	}
	if c.BaseURL == "" {
		c.BaseURL = "http://localhost:" + c.AppPort
	}
	if c.GinMode == "" {
		c.GinMode = "release"
	}
	if c.GinPath == "" {
		c.GinPath = "logs/go_gin.log"
	}
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = []string{"*"}
	}
	if c.DBHost == "" {
		c.DBHost = "127.0.0.1"
	}
	if c.DBPort == "" {
		c.DBPort = "3306"
	}
	if c.DBUser == "" {
		c.DBUser = "root"
	}
	if c.DBName == "" {
		c.DBName = "anonymous_messages"
	}
	if c.RedisHost == "" {
		c.RedisHost = "127.0.0.1"
	}
	if c.RedisPort == 0 {
		c.RedisPort = 6379
	}
	if c.SMTPPort == 0 {
		c.SMTPPort = 587
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogMaxSizeMB == 0 {
		c.LogMaxSizeMB = 100
	}
	if c.LogMaxBackups == 0 {
		c.LogMaxBackups = 3
	}
	if c.LogMaxAgeDays == 0 {
		c.LogMaxAgeDays = 7
	}
	if c.RateLimitPerMinute == 0 {
		c.RateLimitPerMinute = 60
	}
	if c.SubmitIntervalSeconds == 0 {
		c.SubmitIntervalSeconds = 60
	}
	if c.RecaptchaMinScore == 0 {
		c.RecaptchaMinScore = 0.5
	}
	if c.FormTokenTTLHours == 0 {
		c.FormTokenTTLHours = 12
	}
	if c.UploadDir == "" {
		c.UploadDir = "static/uploads/messages"
	}
	if c.MaxImagesPerUpload == 0 {
		c.MaxImagesPerUpload = 3
	}
	if c.MaxImageSizeMB == 0 {
		c.MaxImageSizeMB = 2
	}
	if len(c.AllowedImageTypes) == 0 {
		c.AllowedImageTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}
	}
}

// applyEnvOverrides maps known environment variables onto config values when present.
func applyEnvOverrides(c *AppConfig) {
	setStr := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setInt := func(key string, dst *int) {
		if v := os.Getenv(key); v != "" {
			*dst = mustParseInt(key, v)
		}
	}
	setBool := func(key string, dst *bool) {
		if v := os.Getenv(key); v != "" {
			*dst = v == "true"
		}
	}

	setStr("APP_PORT", &c.AppPort)
	setStr("JWT_SECRET", &c.JWTSecret)
	setStr("BASE_URL", &c.BaseURL)
	setStr("GIN_MODE", &c.GinMode)
	setStr("GIN_PATH", &c.GinPath)
	setStr("ADMIN_EMAIL", &c.AdminEmail)
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		c.AllowedOrigins = splitAndTrim(v)
	}

	setStr("DATABASE_URI", &c.DatabaseURI)
	setStr("DB_HOST", &c.DBHost)
	setStr("DB_PORT", &c.DBPort)
	setStr("DB_USER", &c.DBUser)
	setStr("DB_PASSWORD", &c.DBPassword)
	setStr("DB_NAME", &c.DBName)

	setStr("REDIS_HOST", &c.RedisHost)
	setInt("REDIS_PORT", &c.RedisPort)
	setInt("REDIS_DB", &c.RedisDB)
	setStr("REDIS_PASSWORD", &c.RedisPassword)

	setStr("SMTP_HOST", &c.SMTPHost)
	setInt("SMTP_PORT", &c.SMTPPort)
	setStr("SMTP_USERNAME", &c.SMTPUsername)
	setStr("SMTP_PASSWORD", &c.SMTPPassword)
	setStr("SMTP_FROM", &c.SMTPFrom)
	setStr("SMTP_FROM_NAME", &c.SMTPFromName)
	setBool("SMTP_TLS", &c.SMTPTLS)

	setStr("LOG_LEVEL", &c.LogLevel)
	setStr("LOG_PATH", &c.LogPath)
	setInt("LOG_MAX_SIZE_MB", &c.LogMaxSizeMB)
	setInt("LOG_MAX_BACKUPS", &c.LogMaxBackups)
	setInt("LOG_MAX_AGE_DAYS", &c.LogMaxAgeDays)
	setBool("LOG_COMPRESS", &c.LogCompress)

	setInt("RATE_LIMIT_PER_MINUTE", &c.RateLimitPerMinute)
	setInt("SUBMIT_INTERVAL_SECONDS", &c.SubmitIntervalSeconds)
	setBool("SUBMIT_RATE_LIMIT_ENABLED", &c.SubmitLimitEnabled)
	setBool("SUBMIT_RATE_LIMIT_EXEMPT_AUTH", &c.SubmitLimitExemptAuth)
	setBool("SPAM_FILTER_ENABLED", &c.SpamFilterEnabled)
	setStr("RECAPTCHA_SECRET_KEY", &c.RecaptchaSecretKey)
	if v := os.Getenv("RECAPTCHA_MIN_SCORE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			log.Fatalf("invalid float value RECAPTCHA_MIN_SCORE=%s: %v", v, err)
		}
		c.RecaptchaMinScore = f
	}
	setInt("FORM_TOKEN_TTL_HOURS", &c.FormTokenTTLHours)

	setBool("UPLOADS_ENABLED", &c.UploadsEnabled)
	setStr("UPLOAD_DIR", &c.UploadDir)
	setInt("MAX_IMAGES_PER_MESSAGE", &c.MaxImagesPerUpload)
	setInt("MAX_IMAGE_SIZE_MB", &c.MaxImageSizeMB)
	if v := os.Getenv("ALLOWED_IMAGE_TYPES"); v != "" {
		c.AllowedImageTypes = splitAndTrim(v)
	}

	setStr("ADMIN_USERNAME", &c.AdminUsername)
	setStr("ADMIN_PASSWORD", &c.AdminPassword)
}

func mustParseInt(key, val string) int {
	i, err := strconv.Atoi(val)
	if err != nil {
		log.Fatalf("invalid integer value %s=%s: %v", key, val, err)
	}
	return i
}

func splitAndTrim(raw string) []string {
	items := []string{}
	for _, item := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}

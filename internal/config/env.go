package config

import (
	"log"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Env struct {
	AppAddr  string `env:"APP_ADDR" envDefault:":8080"`
	GinMode  string `env:"GIN_MODE"`
	Timezone string `env:"TIMEZONE" envDefault:"Asia/Tokyo"`

	DBDriver    string `env:"DB_DRIVER" envDefault:"mysql"`
	DatabaseURL string `env:"DATABASE_URL"`

	JWTSecret string        `env:"JWT_SECRET"`
	JWTTTL    time.Duration `env:"JWT_TTL" envDefault:"24h"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`

	PendingTTL  time.Duration `env:"PENDING_TTL" envDefault:"24h"`
	NoShowGrace time.Duration `env:"NO_SHOW_GRACE" envDefault:"2h"`
	JobSchedule string        `env:"JOB_SCHEDULE" envDefault:"@every 5m"`

	SendGridAPIKey    string `env:"SENDGRID_API_KEY"`
	SendGridFromEmail string `env:"SENDGRID_FROM_EMAIL"`
	SendGridFromName  string `env:"SENDGRID_FROM_NAME" envDefault:"MotoRent"`

	TwilioAccountSID string `env:"TWILIO_ACCOUNT_SID"`
	TwilioAuthToken  string `env:"TWILIO_AUTH_TOKEN"`
	TwilioFromNumber string `env:"TWILIO_FROM_NUMBER"`

	PDFFontPath string `env:"PDF_FONT_PATH"`
}

// LoadEnv reads .env (when present) and the process environment.
func LoadEnv() Env {
	if err := godotenv.Load(); err != nil {
		log.Printf("[CONFIG] .env not loaded: %v", err)
	}

	var e Env
	if err := env.Parse(&e); err != nil {
		log.Fatalf("[CONFIG] invalid environment: %v", err)
	}
	return e.normalize()
}

func (e Env) normalize() Env {
	e.AppAddr = strings.TrimSpace(e.AppAddr)
	if e.AppAddr == "" {
		e.AppAddr = ":8080"
	}
	e.GinMode = strings.TrimSpace(e.GinMode)
	e.PDFFontPath = strings.TrimSpace(e.PDFFontPath)
	e.DBDriver = strings.ToLower(strings.TrimSpace(e.DBDriver))
	if e.DBDriver == "" {
		e.DBDriver = DriverMySQL
	}
	origins := e.CORSAllowedOrigins[:0]
	for _, o := range e.CORSAllowedOrigins {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	e.CORSAllowedOrigins = origins
	if e.JWTSecret == "" {
		log.Println("[CONFIG] JWT_SECRET not set, using development secret")
		e.JWTSecret = "dev-secret-change-me"
	}
	return e
}

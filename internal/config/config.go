package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
)

const (
	defaultCORSOrigins  = "http://localhost:5173"
	defaultPublicOrigin = "http://localhost:5173"
	defaultAdminPass    = "admin123"
)

type Config struct {
	HTTPPort     string `envconfig:"HTTP_PORT" default:"8080"`
	JWTSecret    string `envconfig:"JWT_SECRET"`
	CORSOrigins  string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:5173"`
	PublicOrigin string `envconfig:"PUBLIC_ORIGIN" default:"http://localhost:5173"` // menu and payment links are built on this origin

	QRServiceURL string `envconfig:"QR_SERVICE_URL" default:"https://api.qrserver.com/v1/create-qr-code/"`
	QRSize       int    `envconfig:"QR_SIZE" default:"300"`

	AdminEmail    string `envconfig:"ADMIN_EMAIL" default:"admin@qrmenu.local"`
	AdminPassword string `envconfig:"ADMIN_PASSWORD" default:"admin123"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`
	LogFile   string `envconfig:"LOG_FILE"`

	PaymentDelay       time.Duration `envconfig:"PAYMENT_DELAY" default:"2s"`
	PaymentSuccessRate float64       `envconfig:"PAYMENT_SUCCESS_RATE" default:"0.8"`

	MenuMonthlyEditLimit int `envconfig:"MENU_MONTHLY_EDIT_LIMIT" default:"10"`

	MailMode        string `envconfig:"MAIL_MODE" default:"simulated"`
	SMTPHost        string `envconfig:"SMTP_HOST"`
	SMTPPort        int    `envconfig:"SMTP_PORT" default:"587"`
	SMTPUser        string `envconfig:"SMTP_USER"`
	SMTPPassword    string `envconfig:"SMTP_PASSWORD"`
	MailFrom        string `envconfig:"MAIL_FROM" default:"no-reply@qrmenu.local"`
	CampaignWorkers int    `envconfig:"CAMPAIGN_WORKERS" default:"4"`

	SnowflakeNode int64  `envconfig:"SNOWFLAKE_NODE" default:"1"`
	Location      string `envconfig:"LOCATION" default:"Europe/Paris"`
}

// Load reads the environment and refuses to start with an unusable JWT secret.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, errors.Wrap(err, "read environment")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is not set; it is mandatory")
	}
	if len(c.JWTSecret) < 32 {
		return errors.New("JWT_SECRET must be at least 32 characters")
	}
	if c.PaymentSuccessRate < 0 || c.PaymentSuccessRate > 1 {
		return errors.Errorf("PAYMENT_SUCCESS_RATE must be within [0,1], got %v", c.PaymentSuccessRate)
	}
	if c.MailMode != "simulated" && c.MailMode != "smtp" {
		return errors.Errorf("MAIL_MODE must be simulated or smtp, got %q", c.MailMode)
	}
	if c.MailMode == "smtp" && c.SMTPHost == "" {
		return errors.New("SMTP_HOST is required when MAIL_MODE=smtp")
	}
	if c.SnowflakeNode < 0 || c.SnowflakeNode > 1023 {
		return errors.Errorf("SNOWFLAKE_NODE must be within [0,1023], got %d", c.SnowflakeNode)
	}
	if _, err := time.LoadLocation(c.Location); err != nil {
		return errors.Wrapf(err, "LOCATION %q", c.Location)
	}
	return nil
}

// Warnings lists settings still on their development defaults.
func (c *Config) Warnings() []string {
	var out []string
	if c.CORSOrigins == defaultCORSOrigins {
		out = append(out, "CORS_ALLOWED_ORIGINS uses its default value, set your own domain for production")
	}
	if c.PublicOrigin == defaultPublicOrigin {
		out = append(out, "PUBLIC_ORIGIN uses its default value, QR codes will point to localhost")
	}
	if c.AdminPassword == defaultAdminPass {
		out = append(out, "ADMIN_PASSWORD uses its default value, change it before going live")
	}
	return out
}

func (c *Config) TimeLocation() *time.Location {
	loc, err := time.LoadLocation(c.Location)
	if err != nil {
		return time.UTC
	}
	return loc
}

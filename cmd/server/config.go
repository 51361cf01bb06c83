package main

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"os"
	"time"

	"github.com/svanholten/letterbox/internal/email"
	"github.com/svanholten/letterbox/internal/email/mailgun"
	"github.com/svanholten/letterbox/internal/email/postmark"
	"github.com/svanholten/letterbox/internal/krypto"
)

// httpConfig is the configuration for the HTTP server.
type httpConfig struct {
	addr            string
	readTimeout     time.Duration
	writeTimeout    time.Duration
	idleTimeout     time.Duration
	shutdownTimeout time.Duration
}

// dbConfig is the configuration for the Postgres database.
type dbConfig struct {
	url     string
	migrate bool
}

// emailConfig is the configuration for outgoing email.
type emailConfig struct {
	driver   string
	from     email.Address
	postmark postmark.Settings
	mailgun  mailgun.Settings
}

// config is the configuration for the server command.
type config struct {
	baseURL *url.URL
	http    httpConfig
	db      dbConfig
	email   emailConfig
}

// defaultConfig returns a config with sane default values.
func defaultConfig() config {
	return config{
		http: httpConfig{
			addr:            ":8888",
			readTimeout:     time.Second * 5,
			writeTimeout:    time.Second * 10,
			idleTimeout:     time.Second * 120,
			shutdownTimeout: time.Second * 15,
		},
		db: dbConfig{
			migrate: true,
		},
		email: emailConfig{
			driver: "log",
			postmark: postmark.Settings{
				APIURL:        must(url.Parse("https://api.postmarkapp.com/email")),
				MessageStream: "outbound",
			},
			mailgun: mailgun.Settings{
				APIHost:  "api.mailgun.net",
				Username: "api",
			},
		},
	}
}

// emailDrivers lists all supported EMAIL_DRIVER values.
var emailDrivers = []string{"log", "postmark", "mailgun"}

// envMap maps environment variable names to fields in the config struct.
var envMap = map[string]func(v string, c *config) error{
	"BASE_URL": func(v string, c *config) error {
		return confURL(v, &c.baseURL)
	},
	"HTTP_ADDR": func(v string, c *config) error {
		c.http.addr = v
		return nil
	},
	"HTTP_READ_TIMEOUT": func(v string, c *config) error {
		return confDuration(v, &c.http.readTimeout, 0, math.MaxInt64)
	},
	"HTTP_WRITE_TIMEOUT": func(v string, c *config) error {
		return confDuration(v, &c.http.writeTimeout, 0, math.MaxInt64)
	},
	"HTTP_IDLE_TIMEOUT": func(v string, c *config) error {
		return confDuration(v, &c.http.idleTimeout, 0, math.MaxInt64)
	},
	"HTTP_SHUTDOWN_TIMEOUT": func(v string, c *config) error {
		return confDuration(v, &c.http.shutdownTimeout, 0, math.MaxInt64)
	},
	"DATABASE_URL": func(v string, c *config) error {
		if v == "" {
			return errors.New("may not be empty")
		}

		c.db.url = v
		return nil
	},
	"DB_MIGRATE": func(v string, c *config) error {
		switch v {
		case "true":
			c.db.migrate = true
		case "false":
			c.db.migrate = false
		default:
			return fmt.Errorf("invalid boolean value %q", v)
		}

		return nil
	},
	"EMAIL_DRIVER": func(v string, c *config) error {
		for _, driver := range emailDrivers {
			if v == driver {
				c.email.driver = v
				return nil
			}
		}

		return fmt.Errorf("unknown email driver %q", v)
	},
	"EMAIL_FROM": func(v string, c *config) error {
		from, err := email.ParseAddress(v)
		if err != nil {
			return err
		}

		c.email.from = from
		return nil
	},
	"POSTMARK_API_URL": func(v string, c *config) error {
		return confURL(v, &c.email.postmark.APIURL)
	},
	"POSTMARK_MESSAGE_STREAM": func(v string, c *config) error {
		c.email.postmark.MessageStream = v
		return nil
	},
	"POSTMARK_SERVER_TOKEN": func(v string, c *config) error {
		c.email.postmark.ServerToken = krypto.NewSecret(v)
		return nil
	},
	"MAILGUN_API_HOST": func(v string, c *config) error {
		c.email.mailgun.APIHost = v
		return nil
	},
	"MAILGUN_DOMAIN": func(v string, c *config) error {
		c.email.mailgun.Domain = v
		return nil
	},
	"MAILGUN_USERNAME": func(v string, c *config) error {
		c.email.mailgun.Username = v
		return nil
	},
	"MAILGUN_PASSWORD": func(v string, c *config) error {
		c.email.mailgun.Password = krypto.NewSecret(v)
		return nil
	},
}

// requiredKeys are environment variables without a usable default.
var requiredKeys = []string{"BASE_URL", "DATABASE_URL", "EMAIL_FROM"}

// configFromEnv returns a config with values from the environment. It falls
// back to default values for any missing environment variables.
//
// It does a best effort to validate provided values, so that mistakes are
// caught ASAP. However, there is no guarantee that the returned config
// is valid and will work.
func configFromEnv() (config, error) {
	c := defaultConfig()

	var errs []error
	for key, mf := range envMap {
		if val, ok := os.LookupEnv(key); ok {
			if err := mf(val, &c); err != nil {
				errs = append(errs, fmt.Errorf("invalid env variable %s: %w", key, err))
			}
		}
	}

	for _, key := range requiredKeys {
		if _, ok := os.LookupEnv(key); !ok {
			errs = append(errs, fmt.Errorf("missing required env variable %s", key))
		}
	}

	if len(errs) > 0 {
		return c, errors.Join(errs...)
	}

	return c, nil
}

// confDuration attempts to parse v into tgt and checks if the result is in
// the provided range (inclusive).
func confDuration(v string, tgt *time.Duration, min, max time.Duration) error {
	dur, err := time.ParseDuration(v)
	if err != nil {
		return err
	}

	if dur < min || dur > max {
		return fmt.Errorf("duration %s not in range [%s, %s] (inclusive)", dur, min, max)
	}

	*tgt = dur

	return nil
}

// confURL attempts to parse v into tgt, it requires an absolute URL with
// a host.
func confURL(v string, tgt **url.URL) error {
	u, err := url.Parse(v)
	if err != nil {
		return err
	}

	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("URL %q is missing a scheme or host", v)
	}

	*tgt = u

	return nil
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}

	return v
}

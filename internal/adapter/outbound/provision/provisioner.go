// Package provision resolves a working database URL from the environment.
// It tries an ordered list of strategies, verifying each candidate with a
// ping; the first success short-circuits the rest.
package provision

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"

	"autofix/internal/application/common/slogger"
	"autofix/internal/config"
	domainerrors "autofix/internal/domain/errors/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Strategy is one way of obtaining a candidate database URL. Strategies
// return an empty URL when their inputs are absent, which skips to the next
// strategy without counting as a failure.
type Strategy struct {
	Name    string
	Resolve func() (string, error)
}

// Verifier checks that a candidate URL actually accepts connections.
type Verifier func(ctx context.Context, databaseURL string) error

// Provisioner resolves and verifies a database URL.
type Provisioner struct {
	strategies []Strategy
	verify     Verifier
}

// NewProvisioner creates a Provisioner with the standard strategy order:
// DATABASE_URL env var, PG* env vars, then the config-file DSN.
func NewProvisioner(cfg config.DatabaseConfig) *Provisioner {
	return &Provisioner{
		strategies: []Strategy{
			{Name: "env_database_url", Resolve: fromDatabaseURLEnv},
			{Name: "env_pg_vars", Resolve: fromPostgresEnvVars},
			{Name: "config_dsn", Resolve: fromConfig(cfg)},
		},
		verify: pingURL,
	}
}

// NewProvisionerWithStrategies creates a Provisioner with a custom strategy
// list and verifier, for tests.
func NewProvisionerWithStrategies(strategies []Strategy, verify Verifier) *Provisioner {
	return &Provisioner{strategies: strategies, verify: verify}
}

// Resolve tries each strategy in order and returns the first candidate URL
// that verifies. Strategies with absent inputs are skipped; verification
// failures are logged and the next strategy is tried.
func (p *Provisioner) Resolve(ctx context.Context) (string, error) {
	for _, strategy := range p.strategies {
		candidate, err := strategy.Resolve()
		if err != nil {
			slogger.Warn(ctx, "Database provisioning strategy failed", slogger.Fields{
				"strategy": strategy.Name,
				"error":    err.Error(),
			})
			continue
		}
		if candidate == "" {
			slogger.Debug(ctx, "Database provisioning strategy has no inputs", slogger.Fields{
				"strategy": strategy.Name,
			})
			continue
		}

		if err := p.verify(ctx, candidate); err != nil {
			slogger.Warn(ctx, "Database URL candidate failed verification", slogger.Fields{
				"strategy": strategy.Name,
				"url":      MaskURL(candidate),
				"error":    err.Error(),
			})
			continue
		}

		slogger.Info(ctx, "Database URL resolved", slogger.Fields{
			"strategy": strategy.Name,
			"url":      MaskURL(candidate),
		})
		return candidate, nil
	}

	return "", domainerrors.ErrNoDatabaseURL
}

func fromDatabaseURLEnv() (string, error) {
	return os.Getenv("DATABASE_URL"), nil
}

func fromPostgresEnvVars() (string, error) {
	host := os.Getenv("PGHOST")
	user := os.Getenv("PGUSER")
	database := os.Getenv("PGDATABASE")
	if host == "" || user == "" || database == "" {
		return "", nil
	}

	port := os.Getenv("PGPORT")
	if port == "" {
		port = "5432"
	}
	password := os.Getenv("PGPASSWORD")

	u := &url.URL{
		Scheme: "postgresql",
		Host:   fmt.Sprintf("%s:%s", host, port),
		Path:   "/" + database,
	}
	if password != "" {
		u.User = url.UserPassword(user, password)
	} else {
		u.User = url.User(user)
	}
	return u.String(), nil
}

func fromConfig(cfg config.DatabaseConfig) func() (string, error) {
	return func() (string, error) {
		if cfg.Host == "" || cfg.Name == "" {
			return "", nil
		}
		return cfg.URL(), nil
	}
}

// pingURL verifies a candidate by opening a pool and pinging it.
func pingURL(ctx context.Context, databaseURL string) error {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("parsing database URL: %w", err)
	}
	defer pool.Close()
	return pool.Ping(ctx)
}

// MaskURL hides credentials in a database URL for logging. The masked URL
// is spliced textually rather than rebuilt through url.URL.String, which
// would percent-encode the placeholder.
func MaskURL(databaseURL string) string {
	if !strings.Contains(databaseURL, "@") {
		return databaseURL
	}
	u, err := url.Parse(databaseURL)
	if err != nil || u.User == nil {
		return "UNKNOWN FORMAT"
	}
	at := strings.LastIndex(databaseURL, "@")
	userinfo := databaseURL[:at]
	if sep := strings.Index(userinfo, "://"); sep >= 0 {
		if colon := strings.Index(userinfo[sep+3:], ":"); colon >= 0 {
			userinfo = userinfo[:sep+3+colon]
		}
	}
	return userinfo + ":*****" + databaseURL[at:]
}

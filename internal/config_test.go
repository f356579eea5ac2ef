package internal_test

import (
	"os"
	"strings"
	"time"

	"github.com/frahmantamala/wanderhub/internal"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func validConfig() internal.Config {
	return internal.Config{
		Server: internal.ServerConfig{
			Port:              8080,
			AllowedOrigins:    "http://localhost:3000, https://wanderhub.example",
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			LoginRateLimit:    10,
		},
		Database: internal.DatabaseConfig{
			MaxOpenConns:    20,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
			ConnMaxIdleTime: 5 * time.Minute,
			Source:          "postgres://localhost/wanderhub",
		},
		Security: internal.SecurityConfig{
			JWTSecret:           strings.Repeat("s", 32),
			AccessTokenDuration: 30 * time.Minute,
			BCryptCost:          12,
		},
		Logging: internal.LoggingConfig{Level: "info", Format: "json"},
	}
}

var _ = Describe("Config", func() {
	It("accepts a complete configuration", func() {
		cfg := validConfig()
		Expect(cfg.Validate()).To(Succeed())
		Expect(cfg.Server.Origins()).To(Equal([]string{"http://localhost:3000", "https://wanderhub.example"}))
	})

	It("rejects a short signing secret", func() {
		cfg := validConfig()
		cfg.Security.JWTSecret = "short"
		Expect(cfg.Validate()).To(MatchError(ContainSubstring("JWTSecret")))
	})

	It("rejects more idle than open connections", func() {
		cfg := validConfig()
		cfg.Database.MaxIdleConns = 50
		Expect(cfg.Validate()).To(MatchError(ContainSubstring("max_idle_conns")))
	})

	It("rejects an unknown log level", func() {
		cfg := validConfig()
		cfg.Logging.Level = "verbose"
		Expect(cfg.Validate()).To(HaveOccurred())
	})

	Describe("LoadConfigFromEnv", func() {
		setenv := func(key, value string) {
			Expect(os.Setenv(key, value)).To(Succeed())
			DeferCleanup(os.Unsetenv, key)
		}

		It("reads prefixed variables and applies defaults", func() {
			setenv("WANDERHUB_DATABASE_SOURCE", "postgres://db/wanderhub")
			setenv("WANDERHUB_SECURITY_JWT_SECRET", strings.Repeat("k", 40))
			setenv("WANDERHUB_HTTP_SERVER_PORT", "9090")

			cfg, err := internal.LoadConfigFromEnv()
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Server.Port).To(Equal(9090))
			Expect(cfg.Database.GetDSN()).To(Equal("postgres://db/wanderhub"))
			Expect(cfg.Security.AccessTokenDuration).To(Equal(30 * time.Minute))
			Expect(cfg.Security.BCryptCost).To(Equal(12))
			Expect(cfg.Validate()).To(Succeed())
		})
	})
})

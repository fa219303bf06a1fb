package internal_test

import (
	"time"

	"github.com/frahmantamala/chat-users/internal"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func validConfig() internal.Config {
	return internal.Config{
		Server: internal.ServerConfig{
			Port:              8080,
			AllowedOrigins:    "http://localhost:3000, *",
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       10 * time.Second,
		},
		Database: internal.DatabaseConfig{
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
			ConnMaxIdleTime: 5 * time.Minute,
			Source:          "postgres://localhost/chat",
		},
		Security: internal.SecurityConfig{
			JWTSecret:           "a-test-secret-that-is-at-least-32-chars",
			AccessTokenDuration: time.Hour,
			BCryptCost:          10,
		},
		Presence: internal.PresenceConfig{
			Backend: "memory",
			TTL:     3 * time.Minute,
		},
		RateLimit: internal.RateLimitConfig{RPS: 5, Burst: 10},
		Observability: internal.ObservabilityConfig{
			Metrics: internal.MetricsConfig{Enabled: true, Path: "/metrics"},
			Logging: internal.LoggingConfig{Level: "info", Format: "json"},
		},
	}
}

var _ = Describe("Config", func() {
	It("should accept a complete configuration", func() {
		cfg := validConfig()
		Expect(cfg.Validate()).To(Succeed())
	})

	DescribeTable("should reject",
		func(mutate func(cfg *internal.Config), fragment string) {
			cfg := validConfig()
			mutate(&cfg)

			err := cfg.Validate()

			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring(fragment))
		},
		Entry("a short jwt secret", func(cfg *internal.Config) { cfg.Security.JWTSecret = "short" }, "JWTSecret"),
		Entry("an unknown presence backend", func(cfg *internal.Config) { cfg.Presence.Backend = "memcached" }, "Backend"),
		Entry("redis presence without an address", func(cfg *internal.Config) { cfg.Presence.Backend = "redis" }, "redis.addr is required"),
		Entry("more idle than open connections", func(cfg *internal.Config) { cfg.Database.MaxIdleConns = 20 }, "max_idle_conns"),
		Entry("a read timeout below the header timeout", func(cfg *internal.Config) { cfg.Server.ReadTimeout = time.Second }, "read_timeout"),
		Entry("metrics enabled without a path", func(cfg *internal.Config) { cfg.Observability.Metrics.Path = "" }, "Path"),
		Entry("an unknown log level", func(cfg *internal.Config) { cfg.Observability.Logging.Level = "trace" }, "Level"),
	)

	It("should split and trim allowed origins", func() {
		cfg := validConfig()
		Expect(cfg.Server.Origins()).To(Equal([]string{"http://localhost:3000", "*"}))

		cfg.Server.AllowedOrigins = ""
		Expect(cfg.Server.Origins()).To(BeNil())
	})

	It("should default the presence key", func() {
		cfg := validConfig()
		Expect(cfg.Presence.KeyOrDefault()).To(Equal("chat:presence"))

		cfg.Presence.Key = "custom"
		Expect(cfg.Presence.KeyOrDefault()).To(Equal("custom"))
	})
})

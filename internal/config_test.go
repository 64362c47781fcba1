package internal

import (
	"context"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestInternal(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Internal Suite")
}

func setEnv(key, value string) {
	previous, had := os.LookupEnv(key)
	Expect(os.Setenv(key, value)).To(Succeed())
	DeferCleanup(func() {
		if had {
			os.Setenv(key, previous)
		} else {
			os.Unsetenv(key)
		}
	})
}

func validConfig() *Config {
	cfg := &Config{
		Database:      DatabaseConfig{MaxOpenConns: 10, MaxIdleConns: 5},
		Observability: ObservabilityConfig{Logging: LoggingConfig{Level: "info", Format: "text"}},
	}
	cfg.ApplyDefaults()
	return cfg
}

var _ = Describe("Config", func() {
	Describe("ApplyDefaults", func() {
		It("should fill blanks and trim the base URL", func() {
			cfg := &Config{API: APIConfig{BaseURL: "https://api.campus.edu/"}}
			cfg.ApplyDefaults()

			Expect(cfg.API.BaseURL).To(Equal("https://api.campus.edu"))
			Expect(cfg.API.Integration).To(Equal(IntegrationREST))
			Expect(cfg.API.PageSize).To(Equal(10))
			Expect(cfg.Notifications.PollInterval).To(Equal(30 * time.Second))
			Expect(cfg.Session.Path).To(HaveSuffix("session.json"))
			Expect(cfg.StubServer.TokenTTL).To(Equal(8 * time.Hour))
		})
	})

	Describe("Validate", func() {
		It("should accept the defaults", func() {
			Expect(validConfig().Validate()).To(Succeed())
		})

		It("should refuse non-http base URLs", func() {
			cfg := validConfig()
			cfg.API.BaseURL = "ftp://files.campus.edu"
			Expect(cfg.Validate()).To(MatchError(ContainSubstring("base_url must be http or https")))
		})

		It("should require project credentials for the baas integration", func() {
			cfg := validConfig()
			cfg.API.Integration = IntegrationBaaS
			Expect(cfg.Validate()).To(MatchError(ContainSubstring("url is required when integration is baas")))

			cfg.BaaS = BaaSConfig{URL: "https://xyz.supabase.co", AnonKey: "anon"}
			Expect(cfg.Validate()).To(Succeed())
		})

		It("should refuse unknown integrations and sub-second polling", func() {
			cfg := validConfig()
			cfg.API.Integration = "graphql"
			cfg.Notifications.PollInterval = 100 * time.Millisecond
			err := cfg.Validate()
			Expect(err).To(MatchError(ContainSubstring("Integration")))
			Expect(err).To(MatchError(ContainSubstring("PollInterval")))
		})

		It("should refuse more idle than open connections", func() {
			cfg := validConfig()
			cfg.Database.MaxIdleConns = 20
			Expect(cfg.Validate()).To(MatchError(ContainSubstring("max_idle_conns cannot be greater")))
		})
	})

	Describe("LoadConfigFromEnv", func() {
		It("should read the frontend-style variables", func() {
			setEnv("NEXT_PUBLIC_API_URL", "http://backend:9000/")
			setEnv("API_PAGE_SIZE", "25")
			setEnv("NOTIFICATIONS_POLL_INTERVAL", "45s")
			setEnv("SESSION_PATH", "/tmp/campus-session.json")

			cfg, err := LoadConfigFromEnv()
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.API.BaseURL).To(Equal("http://backend:9000"))
			Expect(cfg.API.PageSize).To(Equal(25))
			Expect(cfg.Notifications.PollInterval).To(Equal(45 * time.Second))
			Expect(cfg.Session.Path).To(Equal("/tmp/campus-session.json"))
			Expect(cfg.StubServer.Port).To(Equal(8000))
			Expect(cfg.Validate()).To(Succeed())
		})

		It("should fail on unparsable values", func() {
			setEnv("API_PAGE_SIZE", "lots")
			_, err := LoadConfigFromEnv()
			Expect(err).To(MatchError(ContainSubstring("error reading environment")))
		})
	})
})

var _ = Describe("WithTimeout", func() {
	It("should only bound the context when a duration is given", func() {
		ctx, cancel := WithTimeout(context.Background(), 0)
		defer cancel()
		_, ok := ctx.Deadline()
		Expect(ok).To(BeFalse())

		ctx, cancel2 := WithTimeout(context.Background(), time.Minute)
		defer cancel2()
		_, ok = ctx.Deadline()
		Expect(ok).To(BeTrue())
	})
})

package config

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestConfig(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Config Suite")
}

var _ = Describe("Config", func() {
	var (
		tempDir    string
		configFile string
	)

	BeforeEach(func() {
		var err error
		tempDir, err = os.MkdirTemp("", "config-test")
		Expect(err).NotTo(HaveOccurred())
		configFile = filepath.Join(tempDir, "config.yaml")
	})

	AfterEach(func() {
		os.RemoveAll(tempDir)
	})

	Describe("Load", func() {
		Context("when config file exists with valid content", func() {
			BeforeEach(func() {
				valid := `
server:
  port: "8081"
  metrics_port: "9091"

embedding:
  provider: "local"
  dimension: 768

search:
  candidate_limit: 300
  rrf_k: 60
  default_page_size: 20
  max_page_size: 50
`
				Expect(os.WriteFile(configFile, []byte(valid), 0644)).To(Succeed())
			})

			It("should load configuration successfully", func() {
				cfg, err := Load(configFile)
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.Server.Port).To(Equal("8081"))
				Expect(cfg.Server.MetricsPort).To(Equal("9091"))
				Expect(cfg.Search.CandidateLimit).To(Equal(300))
				Expect(cfg.Search.RRFK).To(Equal(60))
			})
		})

		Context("when config file does not exist", func() {
			It("should return an error", func() {
				_, err := Load(filepath.Join(tempDir, "missing.yaml"))
				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("failed to read config file"))
			})
		})

		Context("when config file has invalid YAML", func() {
			BeforeEach(func() {
				Expect(os.WriteFile(configFile, []byte("server: [bad"), 0644)).To(Succeed())
			})

			It("should return an error", func() {
				_, err := Load(configFile)
				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("failed to parse config file"))
			})
		})

		Context("environment overrides", func() {
			BeforeEach(func() {
				Expect(os.WriteFile(configFile, []byte("server:\n  port: \"8081\"\n"), 0644)).To(Succeed())
				os.Setenv("PORT", "9999")
				DeferCleanup(func() { os.Unsetenv("PORT") })
			})

			It("should prefer the environment variable over the file", func() {
				cfg, err := Load(configFile)
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.Server.Port).To(Equal("9999"))
			})
		})
	})

	Describe("validate", func() {
		It("rejects an unsupported embedding provider", func() {
			cfg := Defaults()
			cfg.Embedding.Provider = "bogus"
			Expect(validate(cfg)).To(MatchError(ContainSubstring("unsupported embedding provider")))
		})

		It("rejects a zero gatherer concurrency", func() {
			cfg := Defaults()
			cfg.Ingestion.GathererConcurrency = 0
			Expect(validate(cfg)).To(HaveOccurred())
		})

		It("rejects a wildcard CORS origin", func() {
			cfg := Defaults()
			cfg.CORS.AllowedOrigins = []string{"*"}
			Expect(validate(cfg)).To(MatchError(ContainSubstring("wildcard")))
		})

		It("accepts the defaults", func() {
			Expect(validate(Defaults())).To(Succeed())
		})
	})
})

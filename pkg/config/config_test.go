package config_test

import (
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/triage/pkg/config"
)

// setEnv sets or clears an environment variable for the current test.
func setEnv(key, value string) {
	old, had := os.LookupEnv(key)
	if value == "" {
		Expect(os.Unsetenv(key)).To(Succeed())
	} else {
		Expect(os.Setenv(key, value)).To(Succeed())
	}
	DeferCleanup(func() {
		if had {
			os.Setenv(key, old)
		} else {
			os.Unsetenv(key)
		}
	})
}

var _ = Describe("Config", func() {
	var tmpDir string

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "triage-config-test-*")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(os.RemoveAll, tmpDir)

		for _, key := range []string{
			config.EnvEndpoint, config.EnvKey, config.EnvDeployment, config.EnvVersion, config.EnvListen,
		} {
			setEnv(key, "")
		}
	})

	writeFile := func(body string) string {
		path := filepath.Join(tmpDir, "triage.toml")
		Expect(os.WriteFile(path, []byte(body), 0o600)).To(Succeed())
		return path
	}

	Describe("Load", func() {
		It("returns defaults without a file", func() {
			cfg, err := config.Load("")
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg).To(Equal(config.Default()))
			Expect(cfg.AzureOpenAI.Version).To(Equal("2024-10-21"))
			Expect(cfg.Sample.TargetCount).To(Equal(10))
			Expect(cfg.Sample.ThresholdCount).To(Equal(5))
		})

		It("reads credentials from the environment", func() {
			setEnv(config.EnvEndpoint, "https://x.openai.azure.com")
			setEnv(config.EnvKey, "k")
			setEnv(config.EnvDeployment, "gpt-4o")
			setEnv(config.EnvVersion, "2025-01-01-preview")
			setEnv(config.EnvListen, "127.0.0.1:9000")

			cfg, err := config.Load("")
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.AzureOpenAI.Endpoint).To(Equal("https://x.openai.azure.com"))
			Expect(cfg.AzureOpenAI.Key).To(Equal("k"))
			Expect(cfg.AzureOpenAI.Deployment).To(Equal("gpt-4o"))
			Expect(cfg.AzureOpenAI.Version).To(Equal("2025-01-01-preview"))
			Expect(cfg.Server.Listen).To(Equal("127.0.0.1:9000"))
			Expect(cfg.Validate()).To(Succeed())
		})

		It("layers the file under the environment", func() {
			path := writeFile(`
[server]
listen = ":7000"
shutdown_timeout = "3s"
enable_mcp = true

[azure_openai]
endpoint = "https://file.openai.azure.com"
key = "file-key"
deployment = "file-deployment"
timeout = "15s"

[sample]
reducer = "summarization"
`)
			setEnv(config.EnvKey, "env-key")

			cfg, err := config.Load(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Server.Listen).To(Equal(":7000"))
			Expect(cfg.Server.ShutdownTimeout).To(Equal(3 * time.Second))
			Expect(cfg.Server.EnableMCP).To(BeTrue())
			Expect(cfg.AzureOpenAI.Endpoint).To(Equal("https://file.openai.azure.com"))
			Expect(cfg.AzureOpenAI.Key).To(Equal("env-key"))
			Expect(cfg.AzureOpenAI.Timeout).To(Equal(15 * time.Second))
			Expect(cfg.Sample.Reducer).To(Equal(config.ReducerSummarization))
			Expect(cfg.Sample.TargetCount).To(Equal(10))
		})

		It("rejects unknown keys", func() {
			path := writeFile("[server]\nport = 8080\n")
			_, err := config.Load(path)
			Expect(err).To(MatchError(ContainSubstring("server.port")))
		})

		It("fails on a missing file", func() {
			_, err := config.Load(filepath.Join(tmpDir, "nope.toml"))
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Validate", func() {
		var cfg *config.Config

		BeforeEach(func() {
			cfg = config.Default()
			cfg.AzureOpenAI.Endpoint = "https://x.openai.azure.com"
			cfg.AzureOpenAI.Key = "k"
			cfg.AzureOpenAI.Deployment = "d"
		})

		It("accepts a complete configuration", func() {
			Expect(cfg.Validate()).To(Succeed())
		})

		It("names every missing credential", func() {
			cfg.AzureOpenAI = config.AzureOpenAIConfig{Timeout: time.Second}
			err := cfg.Validate()
			Expect(err).To(MatchError(ContainSubstring(config.EnvEndpoint)))
			Expect(err).To(MatchError(ContainSubstring(config.EnvKey)))
			Expect(err).To(MatchError(ContainSubstring(config.EnvDeployment)))
		})

		It("treats the API version as optional", func() {
			cfg.AzureOpenAI.Version = ""
			Expect(cfg.Validate()).To(Succeed())
		})

		It("rejects a bad listen address", func() {
			cfg.Server.Listen = "8000"
			Expect(cfg.Validate()).To(MatchError(ContainSubstring("server.listen")))
		})

		It("rejects an unknown reducer", func() {
			cfg.Sample.Reducer = "lossy"
			Expect(cfg.Validate()).To(MatchError(ContainSubstring("sample.reducer")))
		})

		It("rejects non-positive counts", func() {
			cfg.Sample.TargetCount = 0
			Expect(cfg.Validate()).To(HaveOccurred())

			cfg.Sample.TargetCount = 10
			cfg.Agents.MaxAutoInvoke = 0
			Expect(cfg.Validate()).To(HaveOccurred())
		})
	})
})

package configcmder_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	configcmder "github.com/papercomputeco/ragchat/cmd/ragchat/config"
)

var _ = Describe("NewConfigCmd", func() {
	It("creates a command with the correct use string", func() {
		cmd := configcmder.NewConfigCmd()
		Expect(cmd.Use).To(Equal("config"))
	})

	It("has set, get, unset, and list subcommands", func() {
		cmd := configcmder.NewConfigCmd()
		subcommands := make([]string, 0, len(cmd.Commands()))
		for _, sub := range cmd.Commands() {
			subcommands = append(subcommands, sub.Name())
		}
		Expect(subcommands).To(ContainElements("set", "get", "unset", "list"))
	})
})

var _ = Describe("Config command execution", func() {
	var (
		tmpDir string
		out    *bytes.Buffer
	)

	run := func(args ...string) error {
		cmd := configcmder.NewConfigCmd()
		cmd.SetArgs(args)
		cmd.SetOut(out)
		cmd.SetErr(out)
		return cmd.Execute()
	}

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
		out = &bytes.Buffer{}

		// Create a local .ragchat dir so the manager picks it up
		Expect(os.MkdirAll(filepath.Join(tmpDir, ".ragchat"), 0o755)).To(Succeed())

		origDir, err := os.Getwd()
		Expect(err).NotTo(HaveOccurred())
		Expect(os.Chdir(tmpDir)).To(Succeed())
		DeferCleanup(os.Chdir, origDir)
	})

	Describe("set subcommand", func() {
		It("writes config.toml", func() {
			Expect(run("set", "client.api_target", "http://rag.internal/api")).To(Succeed())

			data, err := os.ReadFile(filepath.Join(tmpDir, ".ragchat", "config.toml"))
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(ContainSubstring("http://rag.internal/api"))
		})

		It("rejects unknown keys", func() {
			Expect(run("set", "invalid_key", "value")).To(HaveOccurred())
		})

		It("requires exactly two arguments", func() {
			Expect(run("set", "client.api_target")).To(HaveOccurred())
			Expect(run("set")).To(HaveOccurred())
		})

		It("rejects invalid values", func() {
			Expect(run("set", "upload.workers", "many")).To(HaveOccurred())
			Expect(run("set", "chat.idle_timeout", "soon")).To(HaveOccurred())
			Expect(run("set", "events.provider", "carrier-pigeon")).To(HaveOccurred())
		})
	})

	Describe("get subcommand", func() {
		It("prints a previously set value", func() {
			Expect(run("set", "upload.workers", "4")).To(Succeed())

			out.Reset()
			Expect(run("get", "upload.workers")).To(Succeed())
			Expect(out.String()).To(Equal("4\n"))
		})

		It("prints the default for an unset key", func() {
			Expect(run("get", "client.api_target")).To(Succeed())
			Expect(out.String()).To(Equal("http://localhost:8080/api\n"))
		})

		It("rejects unknown keys", func() {
			Expect(run("get", "invalid_key")).To(HaveOccurred())
		})

		It("requires exactly one argument", func() {
			Expect(run("get")).To(HaveOccurred())
		})
	})

	Describe("unset subcommand", func() {
		It("restores the default", func() {
			Expect(run("set", "client.api_target", "http://rag.internal/api")).To(Succeed())
			Expect(run("unset", "client.api_target")).To(Succeed())

			out.Reset()
			Expect(run("get", "client.api_target")).To(Succeed())
			Expect(out.String()).To(Equal("http://localhost:8080/api\n"))
		})

		It("rejects unknown keys", func() {
			Expect(run("unset", "invalid_key")).To(HaveOccurred())
		})
	})

	Describe("list subcommand", func() {
		It("lists every key", func() {
			Expect(run("list")).To(Succeed())
			Expect(out.String()).To(ContainSubstring("client.api_target"))
			Expect(out.String()).To(ContainSubstring("events.topic"))
		})

		It("prints JSON entries", func() {
			Expect(run("set", "upload.workers", "4")).To(Succeed())

			out.Reset()
			Expect(run("list", "--json")).To(Succeed())

			var entries []map[string]string
			Expect(json.Unmarshal(out.Bytes(), &entries)).To(Succeed())
			Expect(entries).To(ContainElement(map[string]string{"key": "upload.workers", "value": "4"}))
		})

		It("rejects any arguments", func() {
			Expect(run("list", "extra")).To(HaveOccurred())
		})
	})
})

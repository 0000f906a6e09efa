package cli_test

import (
	"bytes"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frherrer/vtc2tavern/internal/cli"
)

var _ = Describe("Commands", func() {
	var stdout, stderr *bytes.Buffer

	run := func(args ...string) error {
		stdout, stderr = &bytes.Buffer{}, &bytes.Buffer{}
		cmd := cli.NewRootCmd()
		cmd.SetOut(stdout)
		cmd.SetErr(stderr)
		cmd.SetArgs(args)
		return cmd.Execute()
	}

	testdata := func(parts ...string) string {
		return filepath.Join(append([]string{"..", "..", "testdata"}, parts...)...)
	}

	Describe("convert", func() {
		It("should convert a file into the destination directory", func() {
			out := GinkgoT().TempDir()
			Expect(run("convert", testdata("vtc", "two_cases.vtc"), out)).To(Succeed())
			Expect(stdout.String()).To(ContainSubstring("Converted 1 file(s) into 2 stage(s), wrote 1 file(s)"))
			Expect(filepath.Join(out, "two_cases.tavern.yaml")).To(BeAnExistingFile())
		})

		It("should write nothing with --dry-run", func() {
			out := GinkgoT().TempDir()
			Expect(run("convert", "--dry-run", testdata("vtc", "get_asset.vtc"), out)).To(Succeed())
			Expect(stdout.String()).To(ContainSubstring("wrote 0 file(s)"))
			entries, err := os.ReadDir(out)
			Expect(err).ToNot(HaveOccurred())
			Expect(entries).To(BeEmpty())
		})

		It("should exit 1 when a file fails to convert", func() {
			out := GinkgoT().TempDir()
			err := run("convert", testdata("vtc", "bad_operator.vtc"), out)
			Expect(err).To(HaveOccurred())
			Expect(cli.ExitCode(err)).To(Equal(1))
		})

		It("should exit 2 on a missing source", func() {
			err := run("convert", filepath.Join(GinkgoT().TempDir(), "missing.vtc"))
			Expect(cli.ExitCode(err)).To(Equal(2))
		})

		It("should exit 2 without arguments", func() {
			Expect(cli.ExitCode(run("convert"))).To(Equal(2))
		})

		It("should exit 2 on an unknown flag", func() {
			Expect(cli.ExitCode(run("convert", "--bogus", "a.vtc"))).To(Equal(2))
		})
	})

	Describe("stub", func() {
		It("should stub scripts and report ambiguous ones", func() {
			out := GinkgoT().TempDir()
			err := run("stub", testdata("stub"), filepath.Join(out, "stubs"), filepath.Join(out, "server"))
			Expect(cli.ExitCode(err)).To(Equal(1))
			Expect(stdout.String()).To(ContainSubstring("Wrote 2 stub(s), kept 0 existing, skipped 1 ambiguous"))
			Expect(filepath.Join(out, "server", "origin.tavern.yaml.pre")).To(BeAnExistingFile())
		})
	})

	Describe("diff", func() {
		It("should report equal documents", func() {
			Expect(run("diff", testdata("tavern", "get_asset.tavern.yaml"), testdata("tavern", "reordered.tavern.yaml"))).To(Succeed())
			Expect(stdout.String()).To(Equal("equal\n"))
		})

		It("should exit 1 on different documents", func() {
			err := run("diff", "--unified", testdata("tavern", "get_asset.tavern.yaml"), testdata("tavern", "changed.tavern.yaml"))
			Expect(err).To(MatchError(cli.ErrDifferent))
			Expect(cli.ExitCode(err)).To(Equal(1))
			Expect(stdout.String()).To(HavePrefix("different\n"))
			Expect(stdout.String()).To(ContainSubstring("+      status_code: 404"))
		})
	})

	Describe("validate", func() {
		It("should accept a valid config file", func() {
			path := testdata("configs", "full.yaml")
			Expect(run("validate", "--config", path)).To(Succeed())
			Expect(stdout.String()).To(ContainSubstring("is valid"))
		})

		It("should fall back to defaults when the default file is absent", func() {
			Expect(run("validate")).To(Succeed())
		})

		It("should fail on an explicit missing config file", func() {
			err := run("validate", "--config", filepath.Join(GinkgoT().TempDir(), "nope.yaml"))
			Expect(err).To(HaveOccurred())
			Expect(cli.ExitCode(err)).To(Equal(1))
		})

		It("should apply the env file before validating", func() {
			envFile := filepath.Join(GinkgoT().TempDir(), "test.env")
			Expect(os.WriteFile(envFile, []byte("VTC2TAVERN_LOG_LEVEL=chatty\n"), 0o644)).To(Succeed())
			DeferCleanup(os.Unsetenv, "VTC2TAVERN_LOG_LEVEL")

			err := run("validate", "--env-file", envFile)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("logging.level"))
		})
	})

	Describe("version", func() {
		It("should print the program name", func() {
			Expect(run("version")).To(Succeed())
			Expect(stdout.String()).To(HavePrefix("vtc2tavern "))
		})
	})
})

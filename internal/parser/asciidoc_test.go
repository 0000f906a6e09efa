package parser_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frherrer/vtc2tavern/internal/domain"
	"github.com/frherrer/vtc2tavern/internal/parser"
)

var _ = Describe("AsciiDocParser", func() {
	var p *parser.AsciiDocParser

	BeforeEach(func() {
		p = parser.NewAsciiDocParser(nil)
	})

	It("should support .adoc and .asciidoc", func() {
		Expect(p.SupportedExtensions()).To(ConsistOf(".adoc", ".asciidoc"))
	})

	It("should extract tagged listings only", func() {
		content, err := os.ReadFile(filepath.Join("..", "..", "testdata", "asciidoc", "guide.adoc"))
		Expect(err).ToNot(HaveOccurred())

		scripts, err := p.Parse("guide.adoc", content)
		Expect(err).ToNot(HaveOccurred())
		Expect(scripts).To(HaveLen(1))
		Expect(scripts[0].TestName).To(Equal("Purge"))
		Expect(scripts[0].BodyLine).To(Equal(8))
		Expect(scripts[0].Body).To(ContainSubstring(`txreq -req "PURGE"`))
	})

	It("should report errors at document lines", func() {
		content := []byte("= Doc\n\n[source,vtc]\n----\nclient c1 {\n}\n----\n")
		_, err := p.Parse("broken.adoc", content)
		Expect(err).To(MatchError(domain.ErrMissingDeclaration))
		Expect(err.Error()).To(ContainSubstring("broken.adoc:5"))
	})

	It("should ignore a directive without a listing", func() {
		scripts, err := p.Parse("loose.adoc", []byte("[source,vtc]\nvarnishtest \"x\"\n"))
		Expect(err).ToNot(HaveOccurred())
		Expect(scripts).To(BeEmpty())
	})

	It("should honour custom tags", func() {
		p = parser.NewAsciiDocParser([]string{".adoc"}, "varnish")
		content := []byte("[source,varnish]\n----\nvarnishtest \"Tagged\"\n----\n")
		scripts, err := p.Parse("tagged.adoc", content)
		Expect(err).ToNot(HaveOccurred())
		Expect(scripts).To(HaveLen(1))
		Expect(scripts[0].TestName).To(Equal("Tagged"))
	})
})

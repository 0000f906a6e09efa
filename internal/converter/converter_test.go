package converter_test

import (
	"bytes"
	"io"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sirupsen/logrus"

	"github.com/frherrer/vtc2tavern/internal/config"
	"github.com/frherrer/vtc2tavern/internal/converter"
	"github.com/frherrer/vtc2tavern/internal/domain"
	"github.com/frherrer/vtc2tavern/internal/parser"
)

var _ = Describe("Converter", func() {
	var (
		conv *converter.DefaultConverter
		cfg  *config.Config
		log  *logrus.Logger
	)

	load := func(name string) *domain.ScriptDocument {
		path := filepath.Join("..", "..", "testdata", "vtc", name)
		content, err := os.ReadFile(path)
		Expect(err).ToNot(HaveOccurred())
		script, err := parser.ParseScript(path, string(content))
		Expect(err).ToNot(HaveOccurred())
		return script
	}

	BeforeEach(func() {
		log = logrus.New()
		log.SetOutput(io.Discard)
		cfg = config.DefaultConfig()

		var err error
		conv, err = converter.NewConverter(&cfg.Convert, log)
		Expect(err).ToNot(HaveOccurred())
	})

	It("should convert a single case", func() {
		doc, err := conv.Convert(load("get_asset.vtc"))
		Expect(err).ToNot(HaveOccurred())
		Expect(doc.TestName).To(Equal("Get asset"))
		Expect(doc.Stages).To(HaveLen(1))

		stage := doc.Stages[0]
		Expect(stage.Name).To(Equal("Get asset-c1"))
		Expect(stage.Request.URL).To(Equal("{protocol:s}://{deployed_domain:s}:{port:s}/asset/1"))
		Expect(stage.Request.Method).To(Equal("GET"))
		Expect(stage.Request.Headers.Plain()).To(Equal(map[string]any{
			"X-IXSource-SourceID": "{source_id:s}",
		}))
		Expect(stage.Response.Plain()).To(Equal(map[string]any{"status_code": 200}))
	})

	It("should suffix repeated cases within a block", func() {
		doc, err := conv.Convert(load("two_cases.vtc"))
		Expect(err).ToNot(HaveOccurred())
		Expect(doc.Stages).To(HaveLen(2))
		Expect(doc.Stages[0].Name).To(Equal("Get asset-c1"))
		Expect(doc.Stages[1].Name).To(Equal("Get asset-c1-1"))
		Expect(doc.Stages[1].Request.Method).To(Equal("HEAD"))
		Expect(doc.Stages[1].Request.Headers.Len()).To(Equal(0))
		Expect(doc.Stages[1].Response.Plain()).To(Equal(map[string]any{"status_code": 404}))
	})

	It("should use labels and keep block order", func() {
		doc, err := conv.Convert(load("multi_block.vtc"))
		Expect(err).ToNot(HaveOccurred())
		Expect(doc.Stages).To(HaveLen(2))
		Expect(doc.Stages[0].Name).To(Equal("test auth"))
		Expect(doc.Stages[1].Name).To(Equal("purge request"))

		headers := doc.Stages[0].Request.Headers
		Expect(headers.Keys()).To(Equal([]string{
			"Host",
			"X-IXSource-SourceID",
			"X-IXSource-AccountID",
			"X-IXSource-WF-Prefix-JSON",
		}))
		Expect(headers.Plain()).To(HaveKeyWithValue("X-IXSource-AccountID", "{account_id:s}"))
		Expect(headers.Plain()).To(HaveKeyWithValue("X-IXSource-WF-Prefix-JSON",
			`{{"path": "","host": "httpbin.imgix.com"}}`))

		Expect(doc.Stages[0].Response.Plain()).To(Equal(map[string]any{
			"status_code": 200,
			"json":        map[string]any{"body": "ok"},
		}))
		Expect(doc.Stages[1].Response.Plain()).To(Equal(map[string]any{
			"status_code": 204,
			"reason":      "Accepted",
		}))
	})

	It("should honour a custom url prefix", func() {
		cfg.Convert.URLPrefix = "http://localhost:8080"
		c, err := converter.NewConverter(&cfg.Convert, log)
		Expect(err).ToNot(HaveOccurred())
		doc, err := c.Convert(load("get_asset.vtc"))
		Expect(err).ToNot(HaveOccurred())
		Expect(doc.Stages[0].Request.URL).To(Equal("http://localhost:8080/asset/1"))
	})

	It("should fail on an ambiguous label", func() {
		_, err := conv.Convert(load("ambiguous.vtc"))
		Expect(err).To(MatchError(domain.ErrAmbiguousLabel))
	})

	It("should fail on a block without cases", func() {
		_, err := conv.Convert(load("empty_block.vtc"))
		Expect(err).To(MatchError(domain.ErrNoCases))
		Expect(err.Error()).To(ContainSubstring("empty_block.vtc:3"))
	})

	It("should skip empty blocks when allowed", func() {
		cfg.Convert.AllowEmptyBlocks = true
		c, err := converter.NewConverter(&cfg.Convert, log)
		Expect(err).ToNot(HaveOccurred())
		doc, err := c.Convert(load("empty_block.vtc"))
		Expect(err).ToNot(HaveOccurred())
		Expect(doc.Stages).To(HaveLen(1))
		Expect(doc.Stages[0].Name).To(Equal("Empty block-c2"))
	})

	It("should fail when no stages are produced", func() {
		_, err := conv.Convert(load("no_clients.vtc"))
		Expect(err).To(MatchError(domain.ErrNoStages))
	})

	It("should fail on unsupported operators with the case line", func() {
		_, err := conv.Convert(load("bad_operator.vtc"))
		Expect(err).To(MatchError(domain.ErrUnsupportedOperator))
		Expect(err.Error()).To(ContainSubstring("bad_operator.vtc:4"))
	})

	It("should warn about headers without a key and keep the rest", func() {
		var buf bytes.Buffer
		log.SetOutput(&buf)
		script := &domain.ScriptDocument{
			SourcePath: "inline.vtc",
			TestName:   "Inline",
			BodyLine:   2,
			Body: "client c1 {\n" +
				"\ttxreq -req GET -url /1 -hdr \"NoColon\" -hdr \"Host: example.com\"\n" +
				"\trxresp\n" +
				"}\n",
		}
		doc, err := conv.Convert(script)
		Expect(err).ToNot(HaveOccurred())
		Expect(doc.Stages).To(HaveLen(1))
		Expect(doc.Stages[0].Request.Headers.Keys()).To(Equal([]string{"Host"}))
		Expect(buf.String()).To(ContainSubstring("ignoring malformed header"))
		Expect(buf.String()).To(ContainSubstring("NoColon"))
	})

	It("should produce one stage per case across blocks", func() {
		script := &domain.ScriptDocument{
			SourcePath: "inline.vtc",
			TestName:   "Inline",
			BodyLine:   2,
			Body: "client a {\n" +
				"\ttxreq -req GET -url /1\n\trxresp\n" +
				"\ttxreq -req GET -url /2\n\trxresp\n" +
				"}\n" +
				"client b {\n" +
				"\ttxreq -req GET -url /3\n\trxresp\n" +
				"\ttxreq -req GET -url /4\n\trxresp\n" +
				"\ttxreq -req GET -url /5\n\trxresp\n" +
				"}\n",
		}
		doc, err := conv.Convert(script)
		Expect(err).ToNot(HaveOccurred())

		var names, urls []string
		for _, s := range doc.Stages {
			names = append(names, s.Name)
			urls = append(urls, s.Request.URL[len(cfg.Convert.URLPrefix):])
		}
		Expect(names).To(Equal([]string{"Inline-a", "Inline-a-1", "Inline-b", "Inline-b-1", "Inline-b-2"}))
		Expect(urls).To(Equal([]string{"/1", "/2", "/3", "/4", "/5"}))
		Expect(doc.Stages[0].Response.Len()).To(Equal(0))
	})
})

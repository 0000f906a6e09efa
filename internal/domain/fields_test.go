package domain_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frherrer/vtc2tavern/internal/domain"
)

var _ = Describe("Fields", func() {
	It("should keep insertion order", func() {
		f := domain.NewFields()
		f.Set("zeta", "1")
		f.Set("alpha", "2")
		f.Set("mid", "3")
		Expect(f.Keys()).To(Equal([]string{"zeta", "alpha", "mid"}))
	})

	It("should keep the original position when a key is overwritten", func() {
		f := domain.NewFields()
		f.Set("a", "1")
		f.Set("b", "2")
		f.Set("a", "3")
		Expect(f.Keys()).To(Equal([]string{"a", "b"}))
		v, ok := f.Get("a")
		Expect(ok).To(BeTrue())
		Expect(v).To(Equal("3"))
	})

	It("should create intermediate mappings for nested paths", func() {
		f := domain.NewFields()
		Expect(f.SetPath([]string{"json", "body"}, "abc")).To(Succeed())
		Expect(f.Plain()).To(Equal(map[string]any{
			"json": map[string]any{"body": "abc"},
		}))
	})

	It("should refuse to overwrite a leaf", func() {
		f := domain.NewFields()
		Expect(f.SetPath([]string{"status_code"}, 200)).To(Succeed())
		Expect(f.SetPath([]string{"status_code"}, 404)).ToNot(Succeed())
	})

	It("should refuse to nest under a scalar", func() {
		f := domain.NewFields()
		f.Set("json", "flat")
		Expect(f.SetPath([]string{"json", "body"}, "x")).ToNot(Succeed())
	})
})

var _ = Describe("Error", func() {
	It("should render phase, file, line and cause", func() {
		err := domain.NewError("parse", "a.vtc", 7, "bad block", domain.ErrAmbiguousLabel)
		Expect(err.Error()).To(Equal("[parse] a.vtc:7: bad block: ambiguous block label"))
		Expect(err).To(MatchError(domain.ErrAmbiguousLabel))
	})

	It("should attach a file to errors missing one", func() {
		err := domain.WithFile(domain.NewError("convert", "", 3, "x", domain.ErrNoStages), "convert", "b.vtc")
		Expect(err.Error()).To(ContainSubstring("b.vtc:3"))
		Expect(err).To(MatchError(domain.ErrNoStages))
	})
})

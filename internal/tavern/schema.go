package tavern

import (
	_ "embed"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"github.com/frherrer/vtc2tavern/internal/domain"
)

//go:embed schema.json
var schemaJSON []byte

var loadSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schemaJSON))
})

// Validate checks doc against the Tavern subset this tool emits.
func Validate(doc *domain.OutputDocument) error {
	schema, err := loadSchema()
	if err != nil {
		return domain.NewError("convert", doc.SourcePath, 0, "failed to load tavern schema", err)
	}

	result, err := schema.Validate(gojsonschema.NewGoLoader(Plain(doc)))
	if err != nil {
		return domain.NewError("convert", doc.SourcePath, 0, "schema validation failed", err)
	}
	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return domain.NewError("convert", doc.SourcePath, 0, strings.Join(msgs, "; "), domain.ErrSchema)
}

// Package tavern serializes converted documents in the Tavern YAML dialect.
package tavern

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/frherrer/vtc2tavern/internal/domain"
)

// Marshal renders doc as YAML. Keys keep their construction order and
// placeholder tokens are written verbatim.
func Marshal(doc *domain.OutputDocument) ([]byte, error) {
	root := mappingNode()
	addPair(root, "test_name", stringNode(doc.TestName))

	stages := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	for _, s := range doc.Stages {
		req := mappingNode()
		addPair(req, "url", stringNode(s.Request.URL))
		addPair(req, "method", stringNode(s.Request.Method))
		addPair(req, "headers", fieldsNode(s.Request.Headers))

		stage := mappingNode()
		addPair(stage, "name", stringNode(s.Name))
		addPair(stage, "request", req)
		addPair(stage, "response", fieldsNode(s.Response))
		stages.Content = append(stages.Content, stage)
	}
	addPair(root, "stages", stages)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{root}}); err != nil {
		return nil, domain.NewError("write", doc.SourcePath, 0, "failed to encode YAML", err)
	}
	if err := enc.Close(); err != nil {
		return nil, domain.NewError("write", doc.SourcePath, 0, "failed to encode YAML", err)
	}
	return buf.Bytes(), nil
}

func mappingNode() *yaml.Node {
	return &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
}

// yaml11Words are plain scalars that YAML 1.1 loaders such as PyYAML read
// as booleans or null. yaml.v3 emits them unquoted.
var yaml11Words = map[string]bool{
	"y": true, "yes": true, "n": true, "no": true,
	"true": true, "false": true, "on": true, "off": true,
	"null": true, "~": true,
}

func stringNode(s string) *yaml.Node {
	n := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
	if yaml11Words[strings.ToLower(s)] {
		n.Style = yaml.DoubleQuotedStyle
	}
	return n
}

func addPair(m *yaml.Node, key string, value *yaml.Node) {
	m.Content = append(m.Content, stringNode(key), value)
}

func fieldsNode(f *domain.Fields) *yaml.Node {
	n := mappingNode()
	if f.Len() == 0 {
		n.Style = yaml.FlowStyle
		return n
	}
	for _, k := range f.Keys() {
		v, _ := f.Get(k)
		addPair(n, k, valueNode(v))
	}
	return n
}

func valueNode(v any) *yaml.Node {
	switch t := v.(type) {
	case *domain.Fields:
		return fieldsNode(t)
	case int:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.Itoa(t)}
	case string:
		return stringNode(t)
	default:
		return stringNode(fmt.Sprint(t))
	}
}

// Plain converts doc into generic maps and slices, the shape a YAML or JSON
// decoder would produce for the marshalled output.
func Plain(doc *domain.OutputDocument) map[string]any {
	stages := make([]any, 0, len(doc.Stages))
	for _, s := range doc.Stages {
		stages = append(stages, map[string]any{
			"name": s.Name,
			"request": map[string]any{
				"url":     s.Request.URL,
				"method":  s.Request.Method,
				"headers": s.Request.Headers.Plain(),
			},
			"response": s.Response.Plain(),
		})
	}
	return map[string]any{
		"test_name": doc.TestName,
		"stages":    stages,
	}
}

// Package yamldiff compares YAML documents by value rather than by text.
package yamldiff

import (
	"bytes"
	"os"

	"github.com/aymanbagabas/go-udiff"
	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"

	"github.com/frherrer/vtc2tavern/internal/domain"
)

// Result holds the outcome of a comparison. Diff and Unified are empty when
// the documents are equal.
type Result struct {
	Equal   bool
	Diff    string
	Unified string
}

// Options controls what Compare renders besides the verdict.
type Options struct {
	Unified bool
}

// CompareFiles loads both files and compares them.
func CompareFiles(a, b string, opts Options) (*Result, error) {
	rawA, err := os.ReadFile(a)
	if err != nil {
		return nil, domain.NewError("usage", a, 0, "failed to read file", err)
	}
	rawB, err := os.ReadFile(b)
	if err != nil {
		return nil, domain.NewError("usage", b, 0, "failed to read file", err)
	}
	return Compare(a, rawA, b, rawB, opts)
}

// Compare decodes both documents and compares the values. Key order,
// quoting and flow/block style do not matter; integers equal their float
// counterparts.
func Compare(nameA string, a []byte, nameB string, b []byte, opts Options) (*Result, error) {
	va, err := decode(nameA, a)
	if err != nil {
		return nil, err
	}
	vb, err := decode(nameB, b)
	if err != nil {
		return nil, err
	}

	res := &Result{Equal: cmp.Equal(va, vb)}
	if res.Equal {
		return res, nil
	}
	res.Diff = cmp.Diff(va, vb)
	if opts.Unified {
		res.Unified = udiff.Unified(nameA, nameB, string(a), string(b))
	}
	return res, nil
}

func decode(name string, data []byte) (any, error) {
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, domain.NewError("parse", name, 0, "invalid YAML", err)
	}
	return normalize(v), nil
}

// normalize folds numeric types together and gives every mapping string keys
// so structurally equal documents compare equal.
func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = normalize(val)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[yamlKey(k)] = normalize(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = normalize(val)
		}
		return out
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case uint64:
		return float64(t)
	default:
		return v
	}
}

func yamlKey(k any) string {
	out, err := yaml.Marshal(k)
	if err != nil {
		return ""
	}
	return string(bytes.TrimSpace(out))
}

package converter

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/frherrer/vtc2tavern/internal/domain"
)

var expectRe = regexp.MustCompile(`^\s*expect[ \t]+resp\.([a-z]+)[ \t]*([=!<>~]+)[ \t]*(.*?)\s*$`)

// ExpectationMapper turns VTC expect lines into a Tavern response mapping.
type ExpectationMapper struct {
	table map[string]domain.FieldMapping
}

// NewExpectationMapper creates a mapper over the given parameter table.
func NewExpectationMapper(mappings []domain.FieldMapping) *ExpectationMapper {
	table := make(map[string]domain.FieldMapping, len(mappings))
	for _, m := range mappings {
		table[m.Param] = m
	}
	return &ExpectationMapper{table: table}
}

// ParseExpectation parses a single "expect resp.<param> <op> <value>" line.
func ParseExpectation(line string) (domain.Expectation, bool) {
	m := expectRe.FindStringSubmatch(line)
	if m == nil {
		return domain.Expectation{}, false
	}
	return domain.Expectation{Param: m[1], Operator: m[2], Value: m[3]}, true
}

// Map converts the raw expect lines of one case. It returns the response
// mapping and the non-blank lines that did not match the expect grammar.
func (m *ExpectationMapper) Map(raw string) (*domain.Fields, []string, error) {
	response := domain.NewFields()
	seen := make(map[string]bool)
	var skipped []string

	for _, line := range strings.Split(raw, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		exp, ok := ParseExpectation(line)
		if !ok {
			skipped = append(skipped, strings.TrimSpace(line))
			continue
		}

		if exp.Operator != "==" {
			return nil, nil, domain.NewError("convert", "", 0,
				fmt.Sprintf("operator %s in %q is not handled", exp.Operator, strings.TrimSpace(line)),
				domain.ErrUnsupportedOperator)
		}
		if seen[exp.Param] {
			return nil, nil, domain.NewError("convert", "", 0,
				fmt.Sprintf("resp.%s is asserted more than once", exp.Param),
				domain.ErrDuplicateExpectation)
		}
		seen[exp.Param] = true

		mapping, ok := m.table[exp.Param]
		if !ok {
			mapping = domain.FieldMapping{Param: exp.Param, Kind: domain.FieldFlat, Path: []string{exp.Param}}
		}

		value, err := coerce(exp, mapping.Type)
		if err != nil {
			return nil, nil, err
		}
		if err := place(response, exp.Param, mapping, value); err != nil {
			return nil, nil, err
		}
	}

	return response, skipped, nil
}

// place stores value in response according to the mapping kind. A flat
// mapping names one top-level key; a nested mapping names a parent chain
// ending in the leaf key.
func place(response *domain.Fields, param string, mapping domain.FieldMapping, value any) error {
	target := strings.Join(mapping.Path, ".")
	switch {
	case mapping.Kind == domain.FieldFlat && len(mapping.Path) == 1:
		if _, exists := response.Get(mapping.Path[0]); exists {
			return domain.NewError("convert", "", 0,
				fmt.Sprintf("resp.%s maps onto %s", param, target),
				fmt.Errorf("%w: %s is already set", domain.ErrDuplicateExpectation, target))
		}
		response.Set(mapping.Path[0], value)
		return nil
	case mapping.Kind == domain.FieldNested && len(mapping.Path) >= 2:
		if err := response.SetPath(mapping.Path, value); err != nil {
			return domain.NewError("convert", "", 0,
				fmt.Sprintf("resp.%s maps onto %s", param, target),
				fmt.Errorf("%w: %v", domain.ErrDuplicateExpectation, err))
		}
		return nil
	default:
		return domain.NewError("convert", "", 0,
			fmt.Sprintf("resp.%s has a %s mapping with path %q", param, mapping.Kind, target),
			domain.ErrFieldMapping)
	}
}

func coerce(exp domain.Expectation, t domain.ValueType) (any, error) {
	switch t {
	case domain.ValueInt:
		n, err := strconv.Atoi(exp.Value)
		if err != nil {
			return nil, domain.NewError("convert", "", 0,
				fmt.Sprintf("resp.%s expects an integer, got %q", exp.Param, exp.Value),
				fmt.Errorf("%w: %v", domain.ErrCoercion, err))
		}
		return n, nil
	case domain.ValueUnquoted:
		return unquote(exp.Value), nil
	default:
		return exp.Value, nil
	}
}

// unquote strips one pair of surrounding double quotes.
func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}

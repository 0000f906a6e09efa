package domain

import "fmt"

// ScriptDocument holds one VTC script after its declaration line was parsed.
type ScriptDocument struct {
	SourcePath string
	TestName   string // Quoted name from the varnishtest declaration
	Body       string // Everything after the declaration line
	BodyLine   int    // 1-based line in the source file where Body starts
}

// Block is one client section of a script.
type Block struct {
	ID       string // Client identifier, e.g. "c1"
	Label    string // Comment label above or inside the block (may be empty)
	Body     string // Raw text between the braces
	Line     int    // 1-based line of the "client" keyword
	BodyLine int    // 1-based line where Body starts
}

// Case is one txreq/rxresp interaction inside a Block.
type Case struct {
	Method   string
	URL      string
	Headers  string // Raw -hdr attachments
	Response string // Raw expect lines
	Line     int
}

// HeaderEntry is a request header after normalization.
type HeaderEntry struct {
	Key   string
	Value string
}

// Expectation is a single parsed "expect resp.<param> <op> <value>" line.
type Expectation struct {
	Param    string
	Operator string
	Value    string
}

// Request is the request half of a Stage.
type Request struct {
	URL     string
	Method  string
	Headers *Fields
}

// Stage is one Tavern test step.
type Stage struct {
	Name     string
	Request  Request
	Response *Fields
}

// OutputDocument is the fully assembled Tavern test case.
type OutputDocument struct {
	SourcePath string
	TestName   string
	Stages     []Stage
}

// FieldKind tells whether an expectation lands on a top-level field or
// inside nested mappings.
type FieldKind int

const (
	FieldFlat FieldKind = iota
	FieldNested
)

func (k FieldKind) String() string {
	switch k {
	case FieldFlat:
		return "flat"
	case FieldNested:
		return "nested"
	default:
		return fmt.Sprintf("FieldKind(%d)", int(k))
	}
}

// ValueType selects the coercion applied to an expectation value.
type ValueType int

const (
	ValueString   ValueType = iota // Raw text
	ValueInt                       // Base-10 integer
	ValueUnquoted                  // Text with one pair of surrounding quotes removed
)

// FieldMapping routes an expectation parameter to a response field.
// Flat mappings have a single-element Path; nested ones have two or more.
type FieldMapping struct {
	Param string
	Kind  FieldKind
	Path  []string
	Type  ValueType
}

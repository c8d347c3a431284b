// Package schema validates catalog snapshot documents against an embedded
// CUE schema before they are imported.
//
// CUE checks the document's shape: closed structs, key and day syntax,
// non-blank names. Checks that need the whole document, duplicate keys and
// lessons naming unknown subjects, run in Go afterwards.
package schema

import (
	_ "embed"
	"fmt"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"

	"github.com/roach88/schoolbot/internal/catalog"
)

//go:embed catalog.cue
var catalogCUE string

// Source returns the embedded CUE schema.
func Source() string {
	return catalogCUE
}

// Problem codes
const (
	CodeSyntax         = "E100" // document is not valid JSON/CUE
	CodeShape          = "E101" // violates #Catalog
	CodeDuplicateKey   = "E102" // two subjects share a key
	CodeUnknownSubject = "E103" // lesson names a key with no subject
)

// Problem is one validation failure.
type Problem struct {
	Code    string `json:"code"`
	Field   string `json:"field"`
	Message string `json:"message"`
	Line    int    `json:"line,omitempty"`
}

func (p Problem) Error() string {
	if p.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", p.Code, p.Line, p.Field, p.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", p.Code, p.Field, p.Message)
}

// Validator checks documents against #Catalog.
// Not safe for concurrent use.
type Validator struct {
	ctx *cue.Context
	def cue.Value
}

// New compiles the embedded schema.
func New() (*Validator, error) {
	ctx := cuecontext.New()
	v := ctx.CompileString(catalogCUE, cue.Filename("catalog.cue"))
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("compile catalog schema: %w", err)
	}
	def := v.LookupPath(cue.ParsePath("#Catalog"))
	if !def.Exists() {
		return nil, fmt.Errorf("catalog schema: #Catalog not defined")
	}
	return &Validator{ctx: ctx, def: def}, nil
}

// Validate returns every problem found in the document named name.
// An empty result means the document is valid.
func (v *Validator) Validate(name string, data []byte) []Problem {
	doc := v.ctx.CompileBytes(data, cue.Filename(name))
	if err := doc.Err(); err != nil {
		return fromCUE(CodeSyntax, err)
	}

	unified := v.def.Unify(doc)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return fromCUE(CodeShape, err)
	}

	snap, err := catalog.DecodeSnapshot(data)
	if err != nil {
		return []Problem{{Code: CodeSyntax, Field: name, Message: err.Error()}}
	}
	return Check(snap)
}

// Decode validates the document and returns its snapshot.
func (v *Validator) Decode(name string, data []byte) (catalog.Snapshot, []Problem) {
	if problems := v.Validate(name, data); len(problems) > 0 {
		return catalog.Snapshot{}, problems
	}
	snap, err := catalog.DecodeSnapshot(data)
	if err != nil {
		return catalog.Snapshot{}, []Problem{{Code: CodeSyntax, Field: name, Message: err.Error()}}
	}
	return snap, nil
}

// Check runs the cross-reference checks on an already decoded snapshot.
func Check(snap catalog.Snapshot) []Problem {
	var problems []Problem

	seen := make(map[string]int, len(snap.Subjects))
	for i, s := range snap.Subjects {
		if first, dup := seen[s.Key]; dup {
			problems = append(problems, Problem{
				Code:    CodeDuplicateKey,
				Field:   fmt.Sprintf("subjects[%d].key", i),
				Message: fmt.Sprintf("key %q already used by subjects[%d]", s.Key, first),
			})
			continue
		}
		seen[s.Key] = i
	}

	for _, day := range snap.Days() {
		for pos, key := range snap.Schedule[day] {
			if _, ok := seen[key]; ok {
				continue
			}
			problems = append(problems, Problem{
				Code:    CodeUnknownSubject,
				Field:   fmt.Sprintf("schedule.%s[%d]", day, pos),
				Message: fmt.Sprintf("unknown subject %q", key),
			})
		}
	}

	return problems
}

func fromCUE(code string, err error) []Problem {
	var problems []Problem
	for _, e := range cueerrors.Errors(err) {
		p := Problem{
			Code:    code,
			Field:   strings.Join(e.Path(), "."),
			Message: e.Error(),
		}
		if pos := e.Position(); pos.IsValid() {
			p.Line = pos.Line()
		}
		problems = append(problems, p)
	}
	if len(problems) == 0 {
		problems = append(problems, Problem{Code: code, Message: err.Error()})
	}
	return problems
}

package schema

import (
	"fmt"
	"strings"

	"github.com/cocofhu/mcp-adapter-console/validation"
)

// ViolationKind names the rule a draft broke.
type ViolationKind string

const (
	FixedParamMissingDefault  ViolationKind = "FixedParamMissingDefault"
	FixedParamIsArray         ViolationKind = "FixedParamIsArray"
	MissingRequiredField      ViolationKind = "MissingRequiredField"
	InvalidURL                ViolationKind = "InvalidUrl"
	DuplicateParameterName    ViolationKind = "DuplicateParameterName"
	DuplicateDefaultParamName ViolationKind = "DuplicateDefaultParamName"
	DuplicateHeaderName       ViolationKind = "DuplicateHeaderName"
	InvalidHeaderName         ViolationKind = "InvalidHeaderName"

	// Custom type rules.
	DuplicateFieldName  ViolationKind = "DuplicateFieldName"
	InvalidFieldType    ViolationKind = "InvalidFieldType"
	MissingReference    ViolationKind = "MissingReference"
	ReferenceOutOfScope ViolationKind = "ReferenceOutOfScope"
	CircularReference   ViolationKind = "CircularReference"
)

// Violation is the first rule a draft failed.
type Violation struct {
	Kind ViolationKind
	// Field is the offending parameter, field or attribute name, if any.
	Field string
	// Names lists the duplicated names or the types forming a cycle.
	Names []string
}

func (v *Violation) Error() string {
	switch v.Kind {
	case FixedParamMissingDefault:
		return fmt.Sprintf("fixed parameter %q must have a default value", v.Field)
	case FixedParamIsArray:
		return fmt.Sprintf("fixed parameter %q cannot be an array", v.Field)
	case MissingRequiredField:
		return fmt.Sprintf("%s is required", v.Field)
	case InvalidURL:
		return "url must be a valid absolute URL"
	case DuplicateParameterName:
		return "duplicate parameter names: " + strings.Join(v.Names, ", ")
	case DuplicateDefaultParamName:
		return "duplicate default parameter names: " + strings.Join(v.Names, ", ")
	case DuplicateHeaderName:
		return "duplicate header names: " + strings.Join(v.Names, ", ")
	case InvalidHeaderName:
		return fmt.Sprintf("invalid header name %q: only letters, digits, '-' and '_' are allowed", v.Field)
	case DuplicateFieldName:
		return "duplicate field names: " + strings.Join(v.Names, ", ")
	case InvalidFieldType:
		return fmt.Sprintf("field %q has an unknown type", v.Field)
	case MissingReference:
		return fmt.Sprintf("field %q must reference a custom type", v.Field)
	case ReferenceOutOfScope:
		return fmt.Sprintf("field %q references a type that is not available in this application", v.Field)
	case CircularReference:
		return "circular reference between custom types: " + strings.Join(v.Names, ", ")
	default:
		return string(v.Kind)
	}
}

// Result is the outcome of a validation pass.
type Result struct {
	violation *Violation
}

func pass() Result { return Result{} }

func fail(v *Violation) Result { return Result{violation: v} }

func (r Result) OK() bool { return r.violation == nil }

// Violation returns the failed rule, or nil when the draft passed.
func (r Result) Violation() *Violation { return r.violation }

// Message is the user-facing text of the failure, empty when the draft passed.
func (r Result) Message() string {
	if r.violation == nil {
		return ""
	}
	return r.violation.Error()
}

// Err returns the violation as an error, or nil when the draft passed.
func (r Result) Err() error {
	if r.violation == nil {
		return nil
	}
	return r.violation
}

var checker = validation.New()

// Validate applies the submission rules to an interface draft. Rules run in a
// fixed order and the first failure is reported.
func Validate(d InterfaceDraft) Result {
	for _, p := range d.Parameters {
		if name, ok := rowName(p.Name); ok && p.IsFixed() && strings.TrimSpace(p.DefaultValue) == "" {
			return fail(&Violation{Kind: FixedParamMissingDefault, Field: name})
		}
	}
	for _, p := range d.Parameters {
		if name, ok := rowName(p.Name); ok && p.IsFixed() && p.IsArray {
			return fail(&Violation{Kind: FixedParamIsArray, Field: name})
		}
	}

	switch {
	case strings.TrimSpace(d.Name) == "":
		return fail(&Violation{Kind: MissingRequiredField, Field: "name"})
	case strings.TrimSpace(d.URL) == "":
		return fail(&Violation{Kind: MissingRequiredField, Field: "url"})
	case d.AppID == 0:
		return fail(&Violation{Kind: MissingRequiredField, Field: "app_id"})
	}

	if !checker.IsURL(strings.TrimSpace(d.URL)) {
		return fail(&Violation{Kind: InvalidURL, Field: "url"})
	}

	names := make([]string, 0, len(d.Parameters))
	for _, p := range d.Parameters {
		if name, ok := rowName(p.Name); ok {
			names = append(names, name)
		}
	}
	if dups := duplicates(names); len(dups) > 0 {
		return fail(&Violation{Kind: DuplicateParameterName, Names: dups})
	}

	names = names[:0]
	for _, p := range d.DefaultParams {
		if name, ok := rowName(p.Name); ok {
			names = append(names, name)
		}
	}
	if dups := duplicates(names); len(dups) > 0 {
		return fail(&Violation{Kind: DuplicateDefaultParamName, Names: dups})
	}

	names = names[:0]
	for _, h := range d.DefaultHeaders {
		names = append(names, h.Name)
	}
	if dups := duplicates(names); len(dups) > 0 {
		return fail(&Violation{Kind: DuplicateHeaderName, Names: dups})
	}
	for _, name := range names {
		if !checker.IsHeaderName(name) {
			return fail(&Violation{Kind: InvalidHeaderName, Field: name})
		}
	}

	return pass()
}

// rowName returns the trimmed name a row is submitted under. Rows with a blank
// name are dropped by the editors and are skipped here too.
func rowName(name string) (string, bool) {
	name = strings.TrimSpace(name)
	return name, name != ""
}

// duplicates returns each name that occurs more than once, in order of its
// second occurrence.
func duplicates(names []string) []string {
	seen := make(map[string]int, len(names))
	var dups []string
	for _, n := range names {
		seen[n]++
		if seen[n] == 2 {
			dups = append(dups, n)
		}
	}
	return dups
}

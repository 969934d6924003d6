package policy

import (
	"encoding/json"
	"fmt"
)

// Version is the policy language version stamped on documents this tool creates.
const Version = "2012-10-17"

// Document represents a bucket policy document.
type Document struct {
	// Version is the policy language version.
	Version string `json:"Version"`

	// ID is the optional policy identifier.
	ID string `json:"Id,omitempty"`

	// Statement is the ordered list of policy statements.
	Statement Statements `json:"Statement"`
}

// Statements is a list of policy statements. The wire format allows a single
// statement object in place of an array; unmarshalling accepts both.
type Statements []Statement

// Statement represents a single policy statement. Fields this tool never
// inspects (Principal, Condition values) are kept as raw JSON so they survive
// a rewrite byte-for-byte.
type Statement struct {
	// Sid is the statement identifier, unique within a document.
	Sid string `json:"Sid,omitempty"`

	// Effect is either "Allow" or "Deny".
	Effect string `json:"Effect"`

	// Principal is the principal specification: "*" or a structured map.
	Principal json.RawMessage `json:"Principal,omitempty"`

	// NotPrincipal is the negated principal specification.
	NotPrincipal json.RawMessage `json:"NotPrincipal,omitempty"`

	// Action is the action or set of actions the statement covers.
	Action StringSet `json:"Action,omitzero"`

	// NotAction is the negated action set.
	NotAction StringSet `json:"NotAction,omitzero"`

	// Resource is the resource ARN or set of ARNs.
	Resource StringSet `json:"Resource,omitzero"`

	// NotResource is the negated resource set.
	NotResource StringSet `json:"NotResource,omitzero"`

	// Condition maps condition operators to key/value blocks.
	Condition Condition `json:"Condition,omitempty"`
}

// Condition maps a condition operator (e.g. "Bool", "StringEquals") to its
// key/value block. Values are raw JSON: strings, booleans, and lists all occur
// in the wild and are preserved as-is.
type Condition map[string]map[string]json.RawMessage

// StringSet is a string-or-list JSON value. It remembers whether it was
// unmarshalled from a bare string so foreign statements marshal back in their
// original shape.
type StringSet struct {
	values []string
	scalar bool
}

// NewStringSet returns a StringSet that marshals as a JSON array.
func NewStringSet(values ...string) StringSet {
	return StringSet{values: values}
}

// NewScalar returns a single-valued StringSet that marshals as a bare string.
func NewScalar(value string) StringSet {
	return StringSet{values: []string{value}, scalar: true}
}

// Values returns the contained strings in order.
func (s StringSet) Values() []string {
	return s.values
}

// Len returns the number of contained strings.
func (s StringSet) Len() int {
	return len(s.values)
}

// Contains reports whether the set contains v.
func (s StringSet) Contains(v string) bool {
	for _, have := range s.values {
		if have == v {
			return true
		}
	}
	return false
}

// ContainsAll reports whether the set contains every given value.
func (s StringSet) ContainsAll(vs ...string) bool {
	for _, v := range vs {
		if !s.Contains(v) {
			return false
		}
	}
	return true
}

// IsZero reports whether the set is empty. Used by omitzero.
func (s StringSet) IsZero() bool {
	return len(s.values) == 0
}

// MarshalJSON implements json.Marshaler.
func (s StringSet) MarshalJSON() ([]byte, error) {
	if s.scalar && len(s.values) == 1 {
		return json.Marshal(s.values[0])
	}
	return json.Marshal(s.values)
}

// UnmarshalJSON implements json.Unmarshaler, accepting a bare string or an
// array of strings.
func (s *StringSet) UnmarshalJSON(data []byte) error {
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		s.values = []string{one}
		s.scalar = true
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("expected string or list of strings: %w", err)
	}
	s.values = many
	s.scalar = false
	return nil
}

// UnmarshalJSON implements json.Unmarshaler, accepting a single statement
// object or an array of statements.
func (s *Statements) UnmarshalJSON(data []byte) error {
	var many []Statement
	if err := json.Unmarshal(data, &many); err == nil {
		*s = Statements(many)
		return nil
	}
	var one Statement
	if err := json.Unmarshal(data, &one); err != nil {
		return fmt.Errorf("expected statement or list of statements: %w", err)
	}
	*s = Statements{one}
	return nil
}

// ParseDocument parses a policy document from its JSON representation.
func ParseDocument(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse policy document: %w", err)
	}
	return &doc, nil
}

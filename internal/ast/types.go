// Package ast defines the dialect-neutral schema model: the canonical type
// catalog, column/index/table descriptors and the schema operations built
// from them.
package ast

import (
	"strings"

	"github.com/hlop3z/ddlkit/internal/alerr"
)

// Type is a canonical column type. Dialects map every Type to a physical
// column type and back.
type Type string

// Canonical types.
const (
	TypeIdentity    Type = "identity"     // auto-incrementing integer primary key
	TypeBigIdentity Type = "big-identity" // auto-incrementing 64-bit primary key
	TypeSmallInt    Type = "small-int"
	TypeInteger     Type = "integer"
	TypeUnsignedInt Type = "unsigned-int"
	TypeBigInt      Type = "big-int"
	TypeNumeric     Type = "numeric" // fixed precision, Size is precision and Scale is scale
	TypeFloat       Type = "float"
	TypeString      Type = "string" // bounded text, Size is the max length
	TypeText        Type = "text"
	TypeGUID        Type = "guid"
	TypeBinary      Type = "binary" // bounded bytes, Size is the max length
	TypeBlob        Type = "blob"
	TypeBoolean     Type = "boolean"
	TypeDate        Type = "date"
	TypeTime        Type = "time"
	TypeDatetime    Type = "datetime"
	TypeTimestamp   Type = "timestamp"
	TypeArray       Type = "array"  // JSON-encoded list
	TypeJSON        Type = "json"   // any JSON-encoded value
	TypeObject      Type = "object" // JSON-encoded map
)

// Default sizes applied by Normalize when a sized type carries no size.
const (
	DefaultStringSize = 255
	DefaultBinarySize = 255
	DefaultPrecision  = 10
	DefaultScale      = 2
)

var allTypes = []Type{
	TypeIdentity, TypeBigIdentity, TypeSmallInt, TypeInteger, TypeUnsignedInt, TypeBigInt,
	TypeNumeric, TypeFloat, TypeString, TypeText, TypeGUID, TypeBinary, TypeBlob,
	TypeBoolean, TypeDate, TypeTime, TypeDatetime, TypeTimestamp,
	TypeArray, TypeJSON, TypeObject,
}

// Types returns every canonical type in catalog order.
func Types() []Type {
	out := make([]Type, len(allTypes))
	copy(out, allTypes)
	return out
}

// TypeNames returns the catalog as plain strings.
func TypeNames() []string {
	out := make([]string, len(allTypes))
	for i, t := range allTypes {
		out[i] = string(t)
	}
	return out
}

// ParseType resolves a canonical type name. Names are matched
// case-insensitively and underscores are accepted in place of dashes.
func ParseType(name string) (Type, error) {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "_", "-")
	t := Type(key)
	if t.Valid() {
		return t, nil
	}
	return "", alerr.Newf(alerr.ErrInvalidType, "unknown column type %q", name).
		WithHelp(alerr.SuggestSimilar(key, TypeNames()))
}

// Valid reports whether t is part of the catalog.
func (t Type) Valid() bool {
	switch t {
	case TypeIdentity, TypeBigIdentity, TypeSmallInt, TypeInteger, TypeUnsignedInt, TypeBigInt,
		TypeNumeric, TypeFloat, TypeString, TypeText, TypeGUID, TypeBinary, TypeBlob,
		TypeBoolean, TypeDate, TypeTime, TypeDatetime, TypeTimestamp,
		TypeArray, TypeJSON, TypeObject:
		return true
	}
	return false
}

func (t Type) String() string { return string(t) }

// IsIdentity reports whether t is one of the auto-incrementing key types.
func (t Type) IsIdentity() bool {
	return t == TypeIdentity || t == TypeBigIdentity
}

// IsInteger reports whether values of t are whole numbers.
func (t Type) IsInteger() bool {
	switch t {
	case TypeIdentity, TypeBigIdentity, TypeSmallInt, TypeInteger, TypeUnsignedInt, TypeBigInt:
		return true
	}
	return false
}

// IsNumeric reports whether t holds numbers of any kind.
func (t Type) IsNumeric() bool {
	return t.IsInteger() || t == TypeNumeric || t == TypeFloat
}

// IsTemporal reports whether t holds a date, a time or both.
func (t Type) IsTemporal() bool {
	switch t {
	case TypeDate, TypeTime, TypeDatetime, TypeTimestamp:
		return true
	}
	return false
}

// IsLogical reports whether t is stored as JSON text on every backend.
func (t Type) IsLogical() bool {
	return t == TypeArray || t == TypeJSON || t == TypeObject
}

// UsesSize reports whether Size is meaningful for t.
func (t Type) UsesSize() bool {
	return t == TypeString || t == TypeBinary || t == TypeNumeric
}

// UsesScale reports whether Scale is meaningful for t.
func (t Type) UsesScale() bool {
	return t == TypeNumeric
}

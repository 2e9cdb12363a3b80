package ast

import (
	"github.com/google/uuid"

	"github.com/hlop3z/ddlkit/internal/alerr"
)

// Zero returns the safe non-null value of t, used to backfill existing rows
// when a column is made non-null without an explicit default.
func Zero(t Type) (any, error) {
	switch t {
	case TypeIdentity, TypeBigIdentity, TypeSmallInt, TypeInteger, TypeUnsignedInt, TypeBigInt, TypeNumeric:
		return 0, nil
	case TypeFloat:
		return float64(0), nil
	case TypeString, TypeText, TypeBinary, TypeBlob:
		return "", nil
	case TypeBoolean:
		return false, nil
	case TypeGUID:
		return uuid.Nil.String(), nil
	case TypeDate:
		return "0001-01-01", nil
	case TypeTime:
		return "00:00:00", nil
	case TypeDatetime, TypeTimestamp:
		return "0001-01-01 00:00:00", nil
	case TypeArray:
		return "[]", nil
	case TypeJSON:
		return `""`, nil
	case TypeObject:
		return "null", nil
	}
	return nil, alerr.Newf(alerr.ErrInvalidType, "unknown column type %q", string(t)).
		WithHelp(alerr.SuggestSimilar(string(t), TypeNames()))
}

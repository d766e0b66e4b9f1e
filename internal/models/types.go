package models

import "strings"

// TypeFamily groups raw Postgres type names by how values are handled.
type TypeFamily int

const (
	FamilyText TypeFamily = iota
	FamilyTimestamp
	FamilyBool
	FamilyNumber
	FamilyUUID
	FamilyJSON
	FamilyUnknown
)

const UnknownDataType = "unknown"

var numericTypeMarkers = []string{
	"integer", "smallint", "bigint", "int2", "int4", "int8", "serial",
	"numeric", "decimal", "real", "double", "float",
}

// FamilyOf classifies a data_type by substring, in widget priority order.
func FamilyOf(dataType string) TypeFamily {
	dt := strings.ToLower(strings.TrimSpace(dataType))

	switch {
	case dt == "" || dt == UnknownDataType:
		return FamilyUnknown
	case strings.Contains(dt, "timestamp") || strings.Contains(dt, "date"):
		return FamilyTimestamp
	case strings.Contains(dt, "bool"):
		return FamilyBool
	case containsAny(dt, numericTypeMarkers):
		return FamilyNumber
	case dt == "uuid":
		return FamilyUUID
	case strings.Contains(dt, "json"):
		return FamilyJSON
	default:
		return FamilyText
	}
}

func (f TypeFamily) String() string {
	switch f {
	case FamilyTimestamp:
		return "timestamp"
	case FamilyBool:
		return "bool"
	case FamilyNumber:
		return "number"
	case FamilyUUID:
		return "uuid"
	case FamilyJSON:
		return "json"
	case FamilyUnknown:
		return "unknown"
	default:
		return "text"
	}
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

package eap

// SearchType is the public type of a column as it appears in search
// queries.
type SearchType string

const (
	SearchTypeString   SearchType = "string"
	SearchTypeNumber   SearchType = "number"
	SearchTypeDuration SearchType = "duration"
)

// AttributeType is the storage-side type of an attribute in the trace-item
// RPC schema.
type AttributeType int

const (
	TypeUnspecified AttributeType = iota
	TypeString
	TypeBoolean
	TypeInt
	TypeFloat
)

func (t AttributeType) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeBoolean:
		return "boolean"
	case TypeInt:
		return "int"
	case TypeFloat:
		return "float"
	default:
		return "unspecified"
	}
}

// typeMap infers the storage type from the public search type when a column
// does not pin one explicitly.
var typeMap = map[SearchType]AttributeType{
	SearchTypeString:   TypeString,
	SearchTypeNumber:   TypeFloat,
	SearchTypeDuration: TypeFloat,
}

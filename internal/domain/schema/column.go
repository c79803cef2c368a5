package schema

// ColumnType is the inferred classification of a column
type ColumnType string

const (
	ColumnTypeNumber ColumnType = "number"
	ColumnTypeText   ColumnType = "text"
)

func (t ColumnType) IsNumeric() bool {
	return t == ColumnTypeNumber
}

// Column is a header name with its inferred type
type Column struct {
	Name string     `json:"name"`
	Type ColumnType `json:"type"`
}

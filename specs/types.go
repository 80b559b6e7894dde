package specs

import (
	"bytes"
	"encoding/json"

	"github.com/invopop/jsonschema"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// ColumnType is the data type of a column.
type ColumnType string

const (
	ColumnString   ColumnType = "str"
	ColumnInteger  ColumnType = "int"
	ColumnFloat    ColumnType = "float"
	ColumnBoolean  ColumnType = "bool"
	ColumnDate     ColumnType = "date"
	ColumnDatetime ColumnType = "datetime"
)

var columnTypes = []ColumnType{ColumnString, ColumnInteger, ColumnFloat, ColumnBoolean, ColumnDate, ColumnDatetime}

func (c ColumnType) Valid() bool {
	for _, v := range columnTypes {
		if c == v {
			return true
		}
	}
	return false
}

func (ColumnType) JSONSchema() *jsonschema.Schema {
	enum := make([]any, len(columnTypes))
	for i, v := range columnTypes {
		enum[i] = string(v)
	}
	return &jsonschema.Schema{Type: "string", Enum: enum}
}

// TableType is the role of a table in the warehouse.
type TableType string

const (
	TableFact      TableType = "fact"
	TableDimension TableType = "dimension"
	TableRaw       TableType = "raw"
	TableMart      TableType = "mart"
)

var tableTypes = []TableType{TableFact, TableDimension, TableRaw, TableMart}

func (t TableType) Valid() bool {
	for _, v := range tableTypes {
		if t == v {
			return true
		}
	}
	return false
}

func (TableType) JSONSchema() *jsonschema.Schema {
	enum := make([]any, len(tableTypes))
	for i, v := range tableTypes {
		enum[i] = string(v)
	}
	return &jsonschema.Schema{Type: "string", Enum: enum}
}

// Column is the detailed description of a single column. Input tables carry
// only name and type; ColumnList derives Columns from them.
type Column struct {
	Name         string     `json:"name" jsonschema_description:"Name of the column"`
	Type         ColumnType `json:"type" jsonschema_description:"Data type of the column"`
	Description  string     `json:"description,omitempty" jsonschema_description:"Description of the column"`
	IsPrimaryKey bool       `json:"is_primary_key,omitempty" jsonschema_description:"Indicates if the column is a primary key"`
	IsForeignKey bool       `json:"is_foreign_key,omitempty" jsonschema_description:"Indicates if the column is a foreign key"`
	References   string     `json:"references,omitempty" jsonschema_description:"Referenced table if the column is a foreign key"`
}

// Columns maps column name to type in declaration order.
type Columns = orderedmap.OrderedMap[string, ColumnType]

// NewColumns builds an ordered column mapping from name/type pairs.
func NewColumns(cols ...Column) *Columns {
	om := orderedmap.New[string, ColumnType](len(cols))
	for _, c := range cols {
		om.Set(c.Name, c.Type)
	}
	return om
}

type Table struct {
	Name        string    `json:"name" jsonschema_description:"Name of the table"`
	Type        TableType `json:"type" jsonschema_description:"Type of the table"`
	Description string    `json:"description,omitempty" jsonschema_description:"Description of the table"`
	Columns     *Columns  `json:"columns"`
}

// ColumnList returns the columns in declaration order.
func (t Table) ColumnList() []Column {
	if t.Columns == nil {
		return nil
	}
	out := make([]Column, 0, t.Columns.Len())
	for pair := t.Columns.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, Column{Name: pair.Key, Type: pair.Value})
	}
	return out
}

func (t Table) Validate() error {
	if t.Name == "" {
		return invalid("name", "must not be empty")
	}
	if !t.Type.Valid() {
		return invalid("type", "unknown table type %q", t.Type)
	}
	if t.Columns == nil {
		return missing("columns")
	}
	for pair := t.Columns.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Key == "" {
			return invalid("columns", "column name must not be empty")
		}
		if !pair.Value.Valid() {
			return invalid("columns."+pair.Key, "unknown column type %q", pair.Value)
		}
	}
	return nil
}

func (t *Table) UnmarshalJSON(data []byte) error {
	var aux struct {
		Name        *string         `json:"name"`
		Type        *TableType      `json:"type"`
		Description string          `json:"description"`
		Columns     json.RawMessage `json:"columns"`
	}
	if err := decodeObject(data, &aux); err != nil {
		return err
	}
	if aux.Name == nil {
		return missing("name")
	}
	if aux.Type == nil {
		return missing("type")
	}
	cols, err := decodeColumns(aux.Columns)
	if err != nil {
		return err
	}
	tbl := Table{Name: *aux.Name, Type: *aux.Type, Description: aux.Description, Columns: cols}
	if err := tbl.Validate(); err != nil {
		return err
	}
	*t = tbl
	return nil
}

// decodeColumns accepts only the mapping form. The list-of-names form belongs
// to a superseded draft and is rejected.
func decodeColumns(raw json.RawMessage) (*Columns, error) {
	trimmed := bytes.TrimSpace(raw)
	switch {
	case len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")):
		return nil, missing("columns")
	case trimmed[0] == '[':
		return nil, invalid("columns", "must be a mapping of column name to type, not a list")
	case trimmed[0] != '{':
		return nil, invalid("columns", "must be a mapping of column name to type")
	}
	om := orderedmap.New[string, ColumnType]()
	if err := om.UnmarshalJSON(trimmed); err != nil {
		return nil, invalid("columns", "%v", err)
	}
	return om, nil
}

// JSONSchemaExtend describes columns as a name → type object, which the
// reflector cannot derive from the ordered map.
func (Table) JSONSchemaExtend(s *jsonschema.Schema) {
	if s.Properties == nil {
		return
	}
	s.Properties.Set("columns", &jsonschema.Schema{
		Type:                 "object",
		Description:          "Mapping of column names to their data types",
		AdditionalProperties: ColumnType("").JSONSchema(),
	})
}

type DimensionalModel struct {
	FactTables      []Table             `json:"fact_tables" jsonschema_description:"List of fact tables"`
	DimensionTables []Table             `json:"dimension_tables" jsonschema_description:"List of dimension tables"`
	Relationships   map[string][]string `json:"relationships,omitempty" jsonschema_description:"Relationships between tables"`
}

func (m DimensionalModel) Validate() error {
	for i, t := range m.FactTables {
		if err := t.Validate(); err != nil {
			return within(indexed("fact_tables", i), err)
		}
	}
	for i, t := range m.DimensionTables {
		if err := t.Validate(); err != nil {
			return within(indexed("dimension_tables", i), err)
		}
	}
	return nil
}

func (m *DimensionalModel) UnmarshalJSON(data []byte) error {
	var aux struct {
		FactTables      json.RawMessage     `json:"fact_tables"`
		DimensionTables json.RawMessage     `json:"dimension_tables"`
		Relationships   map[string][]string `json:"relationships"`
	}
	if err := decodeObject(data, &aux); err != nil {
		return err
	}
	facts, err := decodeList("fact_tables", aux.FactTables, decodeTable)
	if err != nil {
		return err
	}
	dims, err := decodeList("dimension_tables", aux.DimensionTables, decodeTable)
	if err != nil {
		return err
	}
	*m = DimensionalModel{FactTables: facts, DimensionTables: dims, Relationships: aux.Relationships}
	return nil
}

// RawSchemaSpecs lists the raw input tables of a model.
type RawSchemaSpecs struct {
	Tables []Table `json:"tables" jsonschema_description:"List of raw input tables"`
}

// RawDataSpecs is the name used by earlier drafts for the same record.
type RawDataSpecs = RawSchemaSpecs

func (s RawSchemaSpecs) Validate() error {
	if s.Tables == nil {
		return missing("tables")
	}
	for i, t := range s.Tables {
		if err := t.Validate(); err != nil {
			return within(indexed("tables", i), err)
		}
	}
	return nil
}

func (s *RawSchemaSpecs) UnmarshalJSON(data []byte) error {
	var aux struct {
		Tables json.RawMessage `json:"tables"`
	}
	if err := decodeObject(data, &aux); err != nil {
		return err
	}
	tables, err := decodeList("tables", aux.Tables, decodeTable)
	if err != nil {
		return err
	}
	*s = RawSchemaSpecs{Tables: tables}
	return nil
}

// Metric is a business metric the dimensional model must support.
type Metric struct {
	Name        string   `json:"name" jsonschema_description:"Name of the metric"`
	Description string   `json:"description,omitempty" jsonschema_description:"Description of the metric"`
	Formula     string   `json:"formula,omitempty" jsonschema_description:"SQL formula to calculate the metric"`
	Dimensions  []string `json:"dimensions,omitempty" jsonschema_description:"Dimensions applicable to the metric"`
}

func (m Metric) Validate() error {
	if m.Name == "" {
		return invalid("name", "must not be empty")
	}
	return nil
}

func (m *Metric) UnmarshalJSON(data []byte) error {
	var aux struct {
		Name        *string  `json:"name"`
		Description string   `json:"description"`
		Formula     string   `json:"formula"`
		Dimensions  []string `json:"dimensions"`
	}
	if err := decodeObject(data, &aux); err != nil {
		return err
	}
	if aux.Name == nil {
		return missing("name")
	}
	metric := Metric{Name: *aux.Name, Description: aux.Description, Formula: aux.Formula, Dimensions: aux.Dimensions}
	if err := metric.Validate(); err != nil {
		return err
	}
	*m = metric
	return nil
}

type MetricsSpecs struct {
	Metrics []Metric `json:"metrics" jsonschema_description:"List of business metrics to be calculated"`
}

func (s MetricsSpecs) Validate() error {
	if s.Metrics == nil {
		return missing("metrics")
	}
	for i, m := range s.Metrics {
		if err := m.Validate(); err != nil {
			return within(indexed("metrics", i), err)
		}
	}
	return nil
}

func (s *MetricsSpecs) UnmarshalJSON(data []byte) error {
	var aux struct {
		Metrics json.RawMessage `json:"metrics"`
	}
	if err := decodeObject(data, &aux); err != nil {
		return err
	}
	metrics, err := decodeList("metrics", aux.Metrics, decodeMetric)
	if err != nil {
		return err
	}
	*s = MetricsSpecs{Metrics: metrics}
	return nil
}

func decodeTable(data []byte, t *Table) error   { return t.UnmarshalJSON(data) }
func decodeMetric(data []byte, m *Metric) error { return m.UnmarshalJSON(data) }

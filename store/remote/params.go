package remote

// Field names one column to return.
type Field struct {
	Field FieldName `json:"field"`
}

type FieldName struct {
	Name string `json:"Name"`
}

// Where is a single AND-ed condition.
type Where struct {
	FieldName string `json:"FieldName"`
	Operator  string `json:"Operator"`
	Values    []any  `json:"Values"`
	Include   bool   `json:"Include"`
}

// Condition is a condition inside a where group.
type Condition struct {
	FieldName string `json:"fieldName"`
	Operator  string `json:"operator"`
	Values    []any  `json:"values"`
}

type SubGroup struct {
	Conditions []Condition `json:"conditions"`
	Operator   string      `json:"operator"`
}

// WhereGroup combines its sub groups with Operator (AND/OR). Groups are
// AND-ed with the plain Where list.
type WhereGroup struct {
	Operator  string     `json:"operator"`
	SubGroups []SubGroup `json:"subGroups"`
}

type OrderBy struct {
	FieldName string `json:"fieldName"`
	SortType  string `json:"sorttype"`
}

// FetchParams is the body of a fetch call.
type FetchParams struct {
	Fields      []Field      `json:"fields"`
	Where       []Where      `json:"where,omitempty"`
	WhereGroups []WhereGroup `json:"whereGroups,omitempty"`
	OrderBy     []OrderBy    `json:"orderBy,omitempty"`
}

func fields(names ...string) []Field {
	out := make([]Field, len(names))
	for n, name := range names {
		out[n] = Field{Field: FieldName{Name: name}}
	}
	return out
}

func equalTo(field string, value any) Where {
	return Where{FieldName: field, Operator: "EqualTo", Values: []any{value}, Include: true}
}

// containsAny matches when any of the fields contains value.
func containsAny(value string, fieldNames ...string) WhereGroup {
	g := WhereGroup{Operator: "OR"}
	for _, f := range fieldNames {
		g.SubGroups = append(g.SubGroups, SubGroup{
			Conditions: []Condition{{FieldName: f, Operator: "Contains", Values: []any{value}}},
		})
	}
	return g
}

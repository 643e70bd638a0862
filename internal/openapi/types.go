package openapi

import "strings"

// TypeMapping maps a database column type to an OpenAPI type/format pair.
type TypeMapping struct {
	Type   string // string, integer, number, boolean
	Format string // int32, int64, float, double, date
}

// dbTypeToOpenAPI covers the column types used by the catalogue DDL of every
// supported dialect.
var dbTypeToOpenAPI = map[string]TypeMapping{
	"int":       {"integer", "int32"},
	"integer":   {"integer", "int64"},
	"bigint":    {"integer", "int64"},
	"smallint":  {"integer", "int32"},
	"serial":    {"integer", "int32"},
	"bigserial": {"integer", "int64"},

	"real":             {"number", "float"},
	"float":            {"number", "double"},
	"double":           {"number", "double"},
	"double precision": {"number", "double"},
	"decimal":          {"number", "double"},
	"numeric":          {"number", "double"},

	"varchar":           {"string", ""},
	"nvarchar":          {"string", ""},
	"character varying": {"string", ""},
	"char":              {"string", ""},
	"text":              {"string", ""},

	"date": {"string", "date"},

	"boolean": {"boolean", ""},
	"bit":     {"boolean", ""},
}

// MapDBType converts a column type such as "VARCHAR(60)" to an OpenAPI type
// mapping. Unknown types fall back to a plain string.
func MapDBType(dbType string) TypeMapping {
	normalized := strings.ToLower(strings.TrimSpace(dbType))
	if idx := strings.IndexByte(normalized, '('); idx >= 0 {
		normalized = normalized[:idx]
	}
	normalized = strings.TrimSpace(strings.TrimSuffix(normalized, " unsigned"))

	if m, ok := dbTypeToOpenAPI[normalized]; ok {
		return m
	}
	return TypeMapping{"string", ""}
}

// Field describes one column of a catalogue resource.
type Field struct {
	Name      string
	DBType    string
	MaxLength uint64
	Required  bool // required on create and never nullable
	ReadOnly  bool // generated by the database
	Minimum   *float64
	Maximum   *float64
}

// Resource describes one catalogue entity and the schemas derived from it.
type Resource struct {
	Name   string // component schema name, e.g. "Movie"
	Tag    string
	Fields []Field
}

func bound(v float64) *float64 { return &v }

// Catalog returns the resources served under /api/v1.
func Catalog() []Resource {
	return []Resource{
		{
			Name: "Movie",
			Tag:  "movies",
			Fields: []Field{
				{Name: "movie_id", DBType: "INTEGER", ReadOnly: true},
				{Name: "title", DBType: "VARCHAR(60)", MaxLength: 60, Required: true},
				{Name: "release_year", DBType: "INT", Required: true, Minimum: bound(1888), Maximum: bound(2100)},
				{Name: "duration", DBType: "INT", Required: true, Minimum: bound(1)},
				{Name: "description", DBType: "TEXT"},
				{Name: "imdb_code", DBType: "VARCHAR(20)", MaxLength: 20, Required: true},
				{Name: "rating", DBType: "REAL", Minimum: bound(0), Maximum: bound(10)},
			},
		},
		{
			Name: "Director",
			Tag:  "directors",
			Fields: []Field{
				{Name: "director_id", DBType: "INTEGER", ReadOnly: true},
				{Name: "first_name", DBType: "VARCHAR(45)", MaxLength: 45, Required: true},
				{Name: "last_name", DBType: "VARCHAR(45)", MaxLength: 45, Required: true},
				{Name: "nationality", DBType: "VARCHAR(45)", MaxLength: 45},
				{Name: "imdb_code", DBType: "VARCHAR(20)", MaxLength: 20, Required: true},
			},
		},
		{
			Name: "Actor",
			Tag:  "actors",
			Fields: []Field{
				{Name: "actor_id", DBType: "INTEGER", ReadOnly: true},
				{Name: "name", DBType: "VARCHAR(45)", MaxLength: 45, Required: true},
				{Name: "last_name", DBType: "VARCHAR(45)", MaxLength: 45, Required: true},
				{Name: "birth_date", DBType: "DATE"},
				{Name: "nationality", DBType: "VARCHAR(45)", MaxLength: 45},
				{Name: "bio", DBType: "TEXT"},
				{Name: "imdb_code", DBType: "VARCHAR(20)", MaxLength: 20, Required: true},
			},
		},
		{
			Name: "MovieFact",
			Tag:  "movies",
			Fields: []Field{
				{Name: "fact_id", DBType: "INTEGER", ReadOnly: true},
				{Name: "movie_id", DBType: "INTEGER", ReadOnly: true},
				{Name: "fact_text", DBType: "VARCHAR(1000)", MaxLength: 1000, Required: true},
				{Name: "source", DBType: "VARCHAR(255)", MaxLength: 255},
			},
		},
		{
			Name: "MovieActor",
			Tag:  "movies",
			Fields: []Field{
				{Name: "movie_id", DBType: "INTEGER", ReadOnly: true},
				{Name: "actor_id", DBType: "INTEGER", Required: true},
				{Name: "character_name", DBType: "VARCHAR(100)", MaxLength: 100},
				{Name: "billing_order", DBType: "INT"},
			},
		},
		{
			Name: "MovieDirector",
			Tag:  "movies",
			Fields: []Field{
				{Name: "movie_id", DBType: "INTEGER", ReadOnly: true},
				{Name: "director_id", DBType: "INTEGER", Required: true},
			},
		},
	}
}

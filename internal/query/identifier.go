// Package query checks the SQL identifiers that FilmVault interpolates into
// statements rather than binding as parameters: configured procedure names
// and the table and column handed to the aggregate procedure.
package query

import (
	"fmt"
	"regexp"
	"strings"
)

// MaxIdentifierLength is the longest identifier part accepted. It matches
// the SQL Server limit; MySQL and PostgreSQL allow fewer, and the database
// reports those itself.
const MaxIdentifierLength = 128

var identifierRegex = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// reservedWords cannot be used as identifier parts.
var reservedWords = map[string]bool{
	"SELECT": true, "INSERT": true, "UPDATE": true, "DELETE": true,
	"DROP": true, "CREATE": true, "ALTER": true, "TRUNCATE": true,
	"EXEC": true, "EXECUTE": true, "UNION": true, "INTO": true,
	"FROM": true, "WHERE": true, "TABLE": true, "DATABASE": true,
	"GRANT": true, "REVOKE": true, "INDEX": true, "VIEW": true,
	"PROCEDURE": true, "FUNCTION": true, "TRIGGER": true, "SCHEMA": true,
	"CALL": true,
}

// ValidateIdentifier accepts a bare name such as sp_insert_award.
func ValidateIdentifier(name string) error {
	if name == "" {
		return fmt.Errorf("identifier cannot be empty")
	}
	if len(name) > MaxIdentifierLength {
		return fmt.Errorf("identifier too long (max %d chars): %q", MaxIdentifierLength, name)
	}
	if !identifierRegex.MatchString(name) {
		return fmt.Errorf("invalid identifier %q: must match [a-zA-Z_][a-zA-Z0-9_]*", name)
	}
	if reservedWords[strings.ToUpper(name)] {
		return fmt.Errorf("identifier %q is a SQL reserved word", name)
	}
	return nil
}

// ValidateQualified accepts a name with at most one schema qualifier, such
// as dbo.sp_insert_award.
func ValidateQualified(name string) error {
	parts := strings.Split(name, ".")
	if len(parts) > 2 {
		return fmt.Errorf("invalid identifier %q: at most one schema qualifier allowed", name)
	}
	for _, p := range parts {
		if err := ValidateIdentifier(p); err != nil {
			return err
		}
	}
	return nil
}

package store

import "strings"

// placeholderList returns "?,?,?" for n placeholders.
func placeholderList(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?,", n-1) + "?"
}

// stringsToArgs converts []string to []any for use with database/sql.
func stringsToArgs(vals []string) []any {
	args := make([]any, len(vals))
	for i, v := range vals {
		args[i] = v
	}
	return args
}

// InClause returns "col IN (?,?)" and its args, or "" when vals is empty.
// Exported for use by QueryBuilder.
func InClause(col string, vals []string) (string, []any) {
	if len(vals) == 0 {
		return "", nil
	}
	return col + " IN (" + placeholderList(len(vals)) + ")", stringsToArgs(vals)
}

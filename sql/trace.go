package sql

import (
	"strings"
)

// Fixed operation labels for verbs that carry no statement text.
const (
	opBegin    = "BEGIN"
	opCommit   = "COMMIT"
	opRollback = "ROLLBACK"
	opPing     = "PING"
	opExec     = "EXEC"
	opQuery    = "QUERY"
)

// operationName determines the operation label for one execution.
// Stored-procedure invocations use the procedure name; otherwise the leading
// SQL verb is used, and fallback covers empty or unparsable text.
func operationName(query, fallback string) string {
	if proc := procedureName(query); proc != "" {
		return proc
	}
	if op := extractOperation(query); op != "" {
		return op
	}
	return fallback
}

// spanName builds the span name for an operation: "<DBName>.<operation>"
// when a database name is configured, the bare operation otherwise.
func (cfg *config) spanName(operation string) string {
	if cfg.DBName != "" {
		return cfg.DBName + "." + operation
	}
	return operation
}

// extractOperation extracts the SQL operation (first word) from a query.
// Returns the uppercase operation name or empty string if query is empty.
//
// Example:
//
//	extractOperation("SELECT * FROM users") // returns "SELECT"
//	extractOperation("insert into users")   // returns "INSERT"
//	extractOperation("")                    // returns ""
func extractOperation(query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return ""
	}

	spaceIdx := strings.IndexAny(query, " \t\n\r")
	if spaceIdx == -1 {
		return strings.ToUpper(query)
	}

	return strings.ToUpper(query[:spaceIdx])
}

// procedureName returns the stored-procedure identifier from a CALL, EXEC or
// EXECUTE statement, or "" when the text is not a procedure invocation.
// The identifier is returned verbatim: procedure names are low-cardinality
// and are never sanitized.
//
// Example:
//
//	procedureName("CALL get_user(42)")      // returns "get_user"
//	procedureName("EXEC dbo.GetUser @id=1") // returns "dbo.GetUser"
//	procedureName("SELECT 1")               // returns ""
func procedureName(query string) string {
	fields := strings.Fields(query)
	if len(fields) < 2 {
		return ""
	}

	switch strings.ToUpper(fields[0]) {
	case "CALL", "EXEC", "EXECUTE":
	default:
		return ""
	}

	name := fields[1]
	if idx := strings.IndexByte(name, '('); idx >= 0 {
		name = name[:idx]
	}
	name = strings.TrimRight(name, ";")
	if name == "" {
		return ""
	}
	return name
}

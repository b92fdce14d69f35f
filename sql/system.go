package sql

import (
	"database/sql/driver"
	"reflect"
	"strings"
	"sync"
)

// systemOther is the identifier reported when the driver type is unknown.
const systemOther = "other"

// knownDriverTypes maps the fully qualified type of well-known driver
// implementations to the canonical database system identifier.
var knownDriverTypes = map[string]string{
	"*pq.Driver":                     "postgresql",
	"*stdlib.Driver":                 "postgresql", // jackc/pgx database/sql shim
	"*mysql.MySQLDriver":             "mysql",
	"mysql.MySQLDriver":              "mysql",
	"*sqlite3.SQLiteDriver":          "sqlite",
	"*sqlite.Driver":                 "sqlite",
	"*mssql.Driver":                  "mssql",
	"*sqlserver.Driver":              "mssql",
	"*godror.drv":                    "oracle",
	"*ora.OracleDriver":              "oracle",
	"*go_ibm_db.Driver":              "db2",
	"*firebirdsql.firebirdsqlDriver": "firebird",
}

// heuristicRules is the ordered substring fallback applied to the lowercased
// driver type name when no exact match exists. Ordering matters: the first
// rule whose fragment appears wins, and more specific fragments come first
// ("mssql"/"sqlserver" before the bare "sql" fragments they contain).
//
// The heuristic can misfire on user-defined types that happen to contain a
// recognized fragment (a wrapper named "MySQLConnPool" resolves to "mysql").
// That imprecision is deliberate: it keeps resolution working across driver
// forks and renames, and an explicit WithDBSystem always wins.
var heuristicRules = []struct {
	fragment string
	system   string
}{
	{"postgres", "postgresql"},
	{"pgx", "postgresql"},
	{"mysql", "mysql"},
	{"sqlite", "sqlite"},
	{"mssql", "mssql"},
	{"sqlserver", "mssql"},
	{"oracle", "oracle"},
	{"godror", "oracle"},
	{"db2", "db2"},
	{"firebird", "firebird"},
}

// systemCache caches resolution per concrete driver type. Resolution is a
// pure function of the type, so a lost write race stores an equivalent value.
var systemCache sync.Map // reflect.Type -> string

// resolveSystem maps a driver implementation to a database system
// identifier. A non-empty override is returned verbatim without inspecting
// the driver.
func resolveSystem(d driver.Driver, override string) string {
	if override != "" {
		return override
	}
	if d == nil {
		return systemOther
	}

	t := reflect.TypeOf(d)
	if cached, ok := systemCache.Load(t); ok {
		return cached.(string)
	}

	system := systemForTypeName(t.String())
	systemCache.Store(t, system)
	return system
}

// systemForTypeName resolves a reflect type string such as "*pq.Driver".
// Exact matches take priority; otherwise the substring heuristic applies.
func systemForTypeName(name string) string {
	if system, ok := knownDriverTypes[name]; ok {
		return system
	}

	lower := strings.ToLower(name)
	for _, rule := range heuristicRules {
		if strings.Contains(lower, rule.fragment) {
			return rule.system
		}
	}
	return systemOther
}

// Package sqlx provides sqlx helpers on top of the instrumented sql driver.
//
// The heavy lifting lives in the sibling sql package, which instruments
// database/sql at the driver level. Because sqlx is itself a thin layer over
// database/sql, wrapping the driver once covers every sqlx method: Get,
// Select, NamedExec, NamedQuery, struct scanning, all of it. This package
// only wires the two together.
//
// # Quick Start
//
//	import (
//	    otelsql "github.com/quarry-labs/instrumentation-go/sql"
//	    otelsqlx "github.com/quarry-labs/instrumentation-go/sqlx"
//	)
//
//	db, err := otelsqlx.Connect(ctx, "postgres", dsn,
//	    otelsql.WithDBName("mydb"),
//	    otelsql.WithSanitizedQuery(),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	var users []User
//	err = db.SelectContext(ctx, &users, "SELECT * FROM users WHERE active = true")
//
// All options accepted here are the sql package's options; see that package
// for the full list.
package sqlx

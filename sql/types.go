package sql

import (
	"database/sql/driver"
)

// DriverConn is the union of the optional context-aware connection
// interfaces this package instruments. A fake or mock implementing it
// exercises every instrumented code path on otelConn.
type DriverConn interface {
	driver.Conn
	driver.ConnPrepareContext
	driver.ConnBeginTx
	driver.ExecerContext
	driver.QueryerContext
	driver.Pinger
}

// DriverStmt is the union of the optional context-aware statement
// interfaces this package instruments.
type DriverStmt interface {
	driver.Stmt
	driver.StmtExecContext
	driver.StmtQueryContext
}

package sql

import (
	"context"
	"database/sql/driver"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapDriver(t *testing.T) {
	t.Run("given nil driver, then it panics", func(t *testing.T) {
		assert.Panics(t, func() { WrapDriver(nil) })
	})

	t.Run("given a driver, then Open returns an instrumented connection", func(t *testing.T) {
		wrapped := WrapDriver(&fakeDriver{conn: &fakeConn{}})

		conn, err := wrapped.Open("dsn")
		require.NoError(t, err)

		_, ok := conn.(*otelConn)
		assert.True(t, ok)
	})

	t.Run("given open failure, then the error passes through", func(t *testing.T) {
		openErr := errors.New("connection refused")
		wrapped := WrapDriver(&fakeDriver{openErr: openErr})

		_, err := wrapped.Open("dsn")

		assert.Same(t, openErr, err)
	})

	t.Run("given a known driver type, then the system is auto-resolved", func(t *testing.T) {
		wrapped := WrapDriver(&fakeMySQLDriver{})

		d, ok := wrapped.(*otelDriver)
		require.True(t, ok)
		assert.Equal(t, "mysql", d.cfg.DBSystem)
	})

	t.Run("given an explicit system, then it overrides resolution", func(t *testing.T) {
		wrapped := WrapDriver(&fakeMySQLDriver{}, WithDBSystem("mariadb"))

		d, ok := wrapped.(*otelDriver)
		require.True(t, ok)
		assert.Equal(t, "mariadb", d.cfg.DBSystem)
	})
}

func TestOpenConnector(t *testing.T) {
	t.Run("given driver without DriverContext, then a dsn connector is returned", func(t *testing.T) {
		wrapped := WrapDriver(&fakeDriver{conn: &fakeConn{}})

		d, ok := wrapped.(*otelDriver)
		require.True(t, ok)

		connector, err := d.OpenConnector("dsn")
		require.NoError(t, err)

		_, ok = connector.(*dsnConnector)
		assert.True(t, ok)
		assert.Same(t, driver.Driver(d), connector.Driver())
	})

	t.Run("given dsn connector, then Connect yields an instrumented connection", func(t *testing.T) {
		wrapped := WrapDriver(&fakeDriver{conn: &fakeConn{}})
		d := wrapped.(*otelDriver)

		connector, err := d.OpenConnector("dsn")
		require.NoError(t, err)

		conn, err := connector.Connect(context.Background())
		require.NoError(t, err)

		_, ok := conn.(*otelConn)
		assert.True(t, ok)
	})
}

// fakeConnector implements driver.Connector over a fakeDriver.
type fakeConnector struct {
	d *fakeDriver
}

var _ driver.Connector = (*fakeConnector)(nil)

func (c *fakeConnector) Connect(context.Context) (driver.Conn, error) { return c.d.Open("") }
func (c *fakeConnector) Driver() driver.Driver                        { return c.d }

func TestWrapConnector(t *testing.T) {
	t.Run("given nil connector, then it panics", func(t *testing.T) {
		assert.Panics(t, func() { WrapConnector(nil) })
	})

	t.Run("given a connector, then Connect yields an instrumented connection", func(t *testing.T) {
		wrapped := WrapConnector(&fakeConnector{d: &fakeDriver{conn: &fakeConn{}}})

		conn, err := wrapped.Connect(context.Background())
		require.NoError(t, err)

		_, ok := conn.(*otelConn)
		assert.True(t, ok)
	})

	t.Run("given a connector, then Driver returns the instrumented driver", func(t *testing.T) {
		wrapped := WrapConnector(&fakeConnector{d: &fakeDriver{conn: &fakeConn{}}})

		_, ok := wrapped.Driver().(*otelDriver)
		assert.True(t, ok)
	})
}

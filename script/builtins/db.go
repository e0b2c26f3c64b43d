// File: db.go
// Title: Database Builtins
// Description: The db namespace: SQLite access over database/sql. Connections
//              are opaque handles; query results come back as an array of
//              records keyed by column name, with SQLite's dynamic types
//              mapped onto script scalars.

package builtins

import (
	"database/sql"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/eblang/ebscript/script/registry"
	"github.com/eblang/ebscript/script/types"
)

// RegisterDB registers the db namespace
func RegisterDB(reg *registry.Registry) error {
	handlers := map[string]registry.Handler{
		"db.open":  dbOpen,
		"db.exec":  dbExec,
		"db.query": dbQuery,
		"db.close": dbClose,
	}
	for name, handler := range handlers {
		if err := reg.Register(name, handler); err != nil {
			return err
		}
	}
	return nil
}

func dbOpen(_ *registry.Context, args []types.Value) (types.Value, error) {
	if err := wantArgs("db.open", args, 1); err != nil {
		return nil, err
	}
	path, err := argString("db.open", args, 0)
	if err != nil {
		return nil, err
	}
	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, registry.WrapHost("db.open failed", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, registry.WrapHost("db.open failed", err)
	}
	return &types.Handle{Kind: "db", ID: uuid.NewString(), Payload: conn}, nil
}

// dbExec runs a statement with positional parameters and returns the number
// of affected rows
func dbExec(ctx *registry.Context, args []types.Value) (types.Value, error) {
	if len(args) < 2 {
		return nil, registry.Hostf("db.exec expects at least 2 arguments, got %d", len(args))
	}
	conn, err := dbConn("db.exec", args)
	if err != nil {
		return nil, err
	}
	query, err := argString("db.exec", args, 1)
	if err != nil {
		return nil, err
	}
	result, err := conn.ExecContext(ctx.Ctx, query, sqlParams(args[2:])...)
	if err != nil {
		return nil, registry.WrapHost("db.exec failed", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, registry.WrapHost("db.exec failed", err)
	}
	return affected, nil
}

// dbQuery runs a query with positional parameters and returns an array of
// records, one per row
func dbQuery(ctx *registry.Context, args []types.Value) (types.Value, error) {
	if len(args) < 2 {
		return nil, registry.Hostf("db.query expects at least 2 arguments, got %d", len(args))
	}
	conn, err := dbConn("db.query", args)
	if err != nil {
		return nil, err
	}
	query, err := argString("db.query", args, 1)
	if err != nil {
		return nil, err
	}

	rows, err := conn.QueryContext(ctx.Ctx, query, sqlParams(args[2:])...)
	if err != nil {
		return nil, registry.WrapHost("db.query failed", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, registry.WrapHost("db.query failed", err)
	}

	out := types.NewArray()
	for rows.Next() {
		cells := make([]interface{}, len(columns))
		targets := make([]interface{}, len(columns))
		for i := range cells {
			targets[i] = &cells[i]
		}
		if err := rows.Scan(targets...); err != nil {
			return nil, registry.WrapHost("db.query failed", err)
		}
		row := types.NewRecord()
		for i, col := range columns {
			row.Set(col, sqlValue(cells[i]))
		}
		out.Elems = append(out.Elems, row)
	}
	if err := rows.Err(); err != nil {
		return nil, registry.WrapHost("db.query failed", err)
	}
	return out, nil
}

func dbClose(_ *registry.Context, args []types.Value) (types.Value, error) {
	if err := wantArgs("db.close", args, 1); err != nil {
		return nil, err
	}
	h, err := argHandle("db.close", args, 0, "db")
	if err != nil {
		return nil, err
	}
	conn, ok := h.Payload.(*sql.DB)
	if !ok {
		return nil, nil // already closed
	}
	h.Payload = nil
	if err := conn.Close(); err != nil {
		return nil, registry.WrapHost("db.close failed", err)
	}
	return nil, nil
}

// dbConn extracts the live connection from a db handle argument
func dbConn(name string, args []types.Value) (*sql.DB, error) {
	h, err := argHandle(name, args, 0, "db")
	if err != nil {
		return nil, err
	}
	conn, ok := h.Payload.(*sql.DB)
	if !ok {
		return nil, registry.Hostf("%s: connection is already closed", name)
	}
	return conn, nil
}

// sqlParams passes script scalars through as driver parameters
func sqlParams(args []types.Value) []interface{} {
	params := make([]interface{}, len(args))
	for i, a := range args {
		params[i] = a
	}
	return params
}

// sqlValue maps a scanned cell onto a script scalar
func sqlValue(cell interface{}) types.Value {
	switch v := cell.(type) {
	case nil:
		return nil
	case int64:
		return v
	case float64:
		return v
	case bool:
		return v
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return types.Stringify(v)
	}
}

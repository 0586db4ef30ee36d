package tools

import (
	"context"
	"time"

	"github.com/localrivet/dbgateway/internal/connector"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Input/Output types for tools

type EmptyInput struct{}

type QueryInput struct {
	SQL string `json:"sql" jsonschema:"The SQL statement to execute. Only non-destructive statements (SELECT, SHOW, EXPLAIN, ...) are permitted."`
}

type QueryOutput struct {
	Columns  []string         `json:"columns"`
	Rows     []map[string]any `json:"rows"`
	RowCount int              `json:"row_count"`
}

type ListSchemasOutput struct {
	Schemas []string `json:"schemas"`
}

type ListTablesInput struct {
	Schema string `json:"schema,omitempty" jsonschema:"Schema to list tables from. Defaults to the dialect's default namespace."`
}

type ListTablesOutput struct {
	Schema string   `json:"schema,omitempty"`
	Tables []string `json:"tables"`
}

type TableExistsInput struct {
	Table  string `json:"table" jsonschema:"Table name to check"`
	Schema string `json:"schema,omitempty" jsonschema:"Schema to look in. Defaults to the dialect's default namespace."`
}

type TableExistsOutput struct {
	Exists bool `json:"exists"`
}

type DescribeTableInput struct {
	Table  string `json:"table" jsonschema:"Table name to describe"`
	Schema string `json:"schema,omitempty" jsonschema:"Schema the table lives in. Defaults to the dialect's default namespace."`
}

type DescribeTableOutput struct {
	Table   string                  `json:"table"`
	Columns []connector.TableColumn `json:"columns"`
	Indexes []connector.TableIndex  `json:"indexes"`
}

type ListProceduresInput struct {
	Schema string `json:"schema,omitempty" jsonschema:"Schema to list routines from. Defaults to the dialect's default namespace."`
}

type ListProceduresOutput struct {
	Procedures []string `json:"procedures"`
}

type DescribeProcedureInput struct {
	Name   string `json:"name" jsonschema:"Routine name to describe"`
	Schema string `json:"schema,omitempty" jsonschema:"Schema the routine lives in. Defaults to the dialect's default namespace."`
}

type ConnectionInfoOutput struct {
	Dialect    string            `json:"dialect"`
	Backend    string            `json:"backend"`
	State      string            `json:"state"`
	Available  []string          `json:"available_dialects"`
	SampleDSNs map[string]string `json:"sample_dsns"`
}

// RegisterDatabaseTools registers the introspection and query tools with
// the MCP server. Every handler resolves the active connector through the
// manager per call; failures come back as tool errors, never as a crash.
func RegisterDatabaseTools(server *mcp.Server, toolCtx *ToolContext) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "query",
		Description: "Execute a read-only SQL statement against the connected database",
	}, func(ctx context.Context, req *mcp.CallToolRequest, input QueryInput) (*mcp.CallToolResult, QueryOutput, error) {
		start := time.Now()
		result, err := toolCtx.Manager.Execute(ctx, input.SQL)
		if connector.IsReadOnlyViolation(err) {
			toolCtx.Metrics.RecordRejected()
		} else {
			toolCtx.Metrics.RecordQuery(time.Since(start), err)
		}
		if err != nil {
			toolCtx.Logger.Warn("query failed", "error", err)
			return nil, QueryOutput{}, err
		}

		return nil, QueryOutput{
			Columns:  result.Columns,
			Rows:     result.Rows,
			RowCount: len(result.Rows),
		}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_schemas",
		Description: "List the database's schemas (namespaces), excluding system schemas",
	}, func(ctx context.Context, req *mcp.CallToolRequest, input EmptyInput) (*mcp.CallToolResult, ListSchemasOutput, error) {
		toolCtx.Metrics.RecordIntrospection("list_schemas")
		c, err := toolCtx.Manager.Current()
		if err != nil {
			return nil, ListSchemasOutput{}, err
		}
		schemas, err := c.GetSchemas(ctx)
		if err != nil {
			return nil, ListSchemasOutput{}, err
		}
		return nil, ListSchemasOutput{Schemas: schemas}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_tables",
		Description: "List tables in a schema, ordered by name",
	}, func(ctx context.Context, req *mcp.CallToolRequest, input ListTablesInput) (*mcp.CallToolResult, ListTablesOutput, error) {
		toolCtx.Metrics.RecordIntrospection("list_tables")
		c, err := toolCtx.Manager.Current()
		if err != nil {
			return nil, ListTablesOutput{}, err
		}
		tables, err := c.GetTables(ctx, input.Schema)
		if err != nil {
			return nil, ListTablesOutput{}, err
		}
		return nil, ListTablesOutput{Schema: input.Schema, Tables: tables}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "table_exists",
		Description: "Check whether a table exists in a schema",
	}, func(ctx context.Context, req *mcp.CallToolRequest, input TableExistsInput) (*mcp.CallToolResult, TableExistsOutput, error) {
		toolCtx.Metrics.RecordIntrospection("table_exists")
		c, err := toolCtx.Manager.Current()
		if err != nil {
			return nil, TableExistsOutput{}, err
		}
		exists, err := c.TableExists(ctx, input.Table, input.Schema)
		if err != nil {
			return nil, TableExistsOutput{}, err
		}
		return nil, TableExistsOutput{Exists: exists}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "describe_table",
		Description: "Describe a table's columns (in ordinal order) and indexes",
	}, func(ctx context.Context, req *mcp.CallToolRequest, input DescribeTableInput) (*mcp.CallToolResult, DescribeTableOutput, error) {
		toolCtx.Metrics.RecordIntrospection("describe_table")
		c, err := toolCtx.Manager.Current()
		if err != nil {
			return nil, DescribeTableOutput{}, err
		}
		columns, err := c.GetTableSchema(ctx, input.Table, input.Schema)
		if err != nil {
			return nil, DescribeTableOutput{}, err
		}
		indexes, err := c.GetTableIndexes(ctx, input.Table, input.Schema)
		if err != nil {
			return nil, DescribeTableOutput{}, err
		}
		return nil, DescribeTableOutput{
			Table:   input.Table,
			Columns: columns,
			Indexes: indexes,
		}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_procedures",
		Description: "List stored procedures and functions in a schema",
	}, func(ctx context.Context, req *mcp.CallToolRequest, input ListProceduresInput) (*mcp.CallToolResult, ListProceduresOutput, error) {
		toolCtx.Metrics.RecordIntrospection("list_procedures")
		c, err := toolCtx.Manager.Current()
		if err != nil {
			return nil, ListProceduresOutput{}, err
		}
		procs, err := c.GetStoredProcedures(ctx, input.Schema)
		if err != nil {
			return nil, ListProceduresOutput{}, err
		}
		if procs == nil {
			procs = []string{}
		}
		return nil, ListProceduresOutput{Procedures: procs}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "describe_procedure",
		Description: "Describe a stored procedure or function, including its signature and (best-effort) source",
	}, func(ctx context.Context, req *mcp.CallToolRequest, input DescribeProcedureInput) (*mcp.CallToolResult, connector.StoredProcedure, error) {
		toolCtx.Metrics.RecordIntrospection("describe_procedure")
		c, err := toolCtx.Manager.Current()
		if err != nil {
			return nil, connector.StoredProcedure{}, err
		}
		proc, err := c.GetStoredProcedureDetail(ctx, input.Name, input.Schema)
		if err != nil {
			return nil, connector.StoredProcedure{}, err
		}
		return nil, *proc, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "connection_info",
		Description: "Report the active backend dialect and the dialects this gateway supports",
	}, func(ctx context.Context, req *mcp.CallToolRequest, input EmptyInput) (*mcp.CallToolResult, ConnectionInfoOutput, error) {
		c, err := toolCtx.Manager.Current()
		if err != nil {
			return nil, ConnectionInfoOutput{}, err
		}

		desc := c.Descriptor()
		out := ConnectionInfoOutput{
			Dialect:    string(desc.ID),
			Backend:    desc.DisplayName,
			State:      c.State().String(),
			SampleDSNs: map[string]string{},
		}
		for _, id := range toolCtx.Registry.Available() {
			out.Available = append(out.Available, string(id))
		}
		for id, sample := range toolCtx.Registry.SampleDSNs() {
			out.SampleDSNs[string(id)] = sample
		}
		return nil, out, nil
	})
}

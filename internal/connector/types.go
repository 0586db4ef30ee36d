package connector

// DialectID identifies a supported database product.
type DialectID string

const (
	DialectPostgres  DialectID = "postgres"
	DialectMySQL     DialectID = "mysql"
	DialectMariaDB   DialectID = "mariadb"
	DialectSQLServer DialectID = "sqlserver"
	DialectOracle    DialectID = "oracle"
	DialectSQLite    DialectID = "sqlite"
)

// Descriptor is the stable identity of a connector, used for registry
// lookup and for reporting which backend is active.
type Descriptor struct {
	ID          DialectID
	DisplayName string
}

// TableColumn describes one column of a table, in ordinal position order.
type TableColumn struct {
	Name     string `json:"name"`
	DataType string `json:"data_type"`
	Nullable bool   `json:"nullable"`
	Default  string `json:"default,omitempty"`
}

// TableIndex describes one index. Columns are in index key order,
// not table order. Primary is derived from constraint metadata,
// never from the index name alone.
type TableIndex struct {
	Name    string   `json:"name"`
	Columns []string `json:"columns"`
	Unique  bool     `json:"unique"`
	Primary bool     `json:"primary"`
}

// RoutineKind distinguishes procedures from functions.
type RoutineKind string

const (
	RoutineProcedure RoutineKind = "procedure"
	RoutineFunction  RoutineKind = "function"
)

// StoredProcedure describes a server-side routine. Definition is
// best-effort: some dialects expose routine source only under extra
// privileges, and its absence is not an error.
type StoredProcedure struct {
	Name       string      `json:"name"`
	Kind       RoutineKind `json:"kind"`
	Language   string      `json:"language,omitempty"`
	Signature  string      `json:"signature"`
	ReturnType string      `json:"return_type,omitempty"`
	Definition string      `json:"definition,omitempty"`
}

// SQLResult carries the rows a statement produced, as the driver
// returned them. No normalization beyond []byte to string is applied.
type SQLResult struct {
	Columns []string         `json:"columns"`
	Rows    []map[string]any `json:"rows"`
}

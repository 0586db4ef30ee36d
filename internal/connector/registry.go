package connector

// Registry is the in-memory catalogue of connector implementations,
// keyed by dialect. It holds no connection state. Registration order
// is authoritative for DSN dispatch: if two dialects ever accepted the
// same string, the earliest-registered one wins.
type Registry struct {
	order      []DialectID
	connectors map[DialectID]Connector
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		connectors: make(map[DialectID]Connector),
	}
}

// Register inserts a connector keyed by its declared dialect. Re-registering
// a dialect replaces the implementation in place, keeping its original
// position in dispatch order; that supports test doubles, while production
// wiring registers each dialect exactly once.
func (r *Registry) Register(c Connector) {
	id := c.Descriptor().ID
	if _, exists := r.connectors[id]; !exists {
		r.order = append(r.order, id)
	}
	r.connectors[id] = c
}

// Get returns the connector for a dialect, or nil if none is registered.
func (r *Registry) Get(id DialectID) Connector {
	return r.connectors[id]
}

// ForDSN returns the first registered connector whose parser accepts the
// DSN, in registration order. A nil result is a valid "no match" answer,
// not an error; callers decide how to surface it.
func (r *Registry) ForDSN(dsn string) Connector {
	for _, id := range r.order {
		if c := r.connectors[id]; c.IsValidDSN(dsn) {
			return c
		}
	}
	return nil
}

// Available returns the registered dialects in registration order.
func (r *Registry) Available() []DialectID {
	out := make([]DialectID, len(r.order))
	copy(out, r.order)
	return out
}

// SampleDSNs returns a canonical example DSN for every registered dialect,
// used to render help and startup-failure text.
func (r *Registry) SampleDSNs() map[DialectID]string {
	out := make(map[DialectID]string, len(r.order))
	for id, c := range r.connectors {
		out[id] = c.SampleDSN()
	}
	return out
}

// NewProductionRegistry wires every supported dialect in its canonical
// dispatch order.
func NewProductionRegistry() *Registry {
	r := NewRegistry()
	r.Register(NewPostgresConnector())
	r.Register(NewMySQLConnector())
	r.Register(NewMariaDBConnector())
	r.Register(NewSQLServerConnector())
	r.Register(NewOracleConnector())
	r.Register(NewSQLiteConnector())
	return r
}

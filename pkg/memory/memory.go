// Package memory is the unified facade over the structured SQLite store and
// the semantic vector store. All higher layers go through it; neither store
// handle leaks out.
package memory

import (
	"github.com/charmbracelet/log"

	"github.com/nutrigenie-ai/nutrigenie/pkg/db"
	"github.com/nutrigenie-ai/nutrigenie/pkg/vectordb"
)

type Memory struct {
	logger *log.Logger
	sql    *db.Store
	vector *vectordb.Store
}

// New wires the facade. Callers construct it explicitly at the composition
// point and pass it down.
func New(logger *log.Logger, sql *db.Store, vector *vectordb.Store) *Memory {
	return &Memory{
		logger: logger,
		sql:    sql,
		vector: vector,
	}
}

// WriteReceipt reports the outcome of a best-effort dual write. There is no
// rollback: RecordID is set once the structured append lands, SemanticID
// once the semantic append lands, and SemanticErr carries the failure when
// the second half did not. Callers decide whether to compensate.
type WriteReceipt struct {
	RecordID    string `json:"record_id"`
	SemanticID  string `json:"semantic_id,omitempty"`
	SemanticErr error  `json:"-"`
}

// Complete reports whether both halves of the dual write succeeded.
func (r WriteReceipt) Complete() bool {
	return r.RecordID != "" && r.SemanticID != "" && r.SemanticErr == nil
}

package executor

import (
	"github.com/leengari/memquery/internal/domain/schema"
	"github.com/leengari/memquery/internal/query/indexing"
)

// ExecutionContext provides resources for execution
type ExecutionContext struct {
	Table   *schema.Table
	Indexes indexing.Set
}

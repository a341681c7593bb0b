package eval

import (
	"sync"

	"github.com/souffle-lang/souffle-sub001/pkg/datalog/domain"
)

// context is the per-Query evaluation context: one tuple slot per nesting
// level, plus the subroutine's argument vector and its shared return
// slice (spec section 4.4, "Query establishes a fresh context"; Level -1
// on an ElementAccess reads args instead of a slot, per
// pkg/datalog/translate/clause.go's ast.SubroutineArg lowering).
type context struct {
	slots []domain.Tuple
	args  []domain.Value
	ret   *[]domain.Value
	retMu *sync.Mutex
}

func newContext(numSlots int, args []domain.Value, ret *[]domain.Value, retMu *sync.Mutex) *context {
	return &context{
		slots: make([]domain.Tuple, numSlots),
		args:  args,
		ret:   ret,
		retMu: retMu,
	}
}

func (c *context) get(level, column int) domain.Value {
	if level == -1 {
		return c.args[column]
	}

	return c.slots[level][column]
}

func (c *context) bind(level int, tuple domain.Tuple) {
	c.slots[level] = tuple
}

func (c *context) appendReturn(values []domain.Value) {
	c.retMu.Lock()
	*c.ret = append(*c.ret, values...)
	c.retMu.Unlock()
}

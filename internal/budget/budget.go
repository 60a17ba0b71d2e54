// Package budget enforces the execution-budget limits (visit count, depth,
// wall-clock timeout) checked at every statement and expression boundary
// during evaluation.
package budget

import (
	"time"

	"github.com/yang-sanmu/EasyExpression/internal/errs"
)

// Limits configures a Controller. A zero TimeoutMillis disables the
// wall-clock check.
type Limits struct {
	MaxNodeVisits int
	MaxDepth      int
	TimeoutMillis int
}

// Controller tracks visit count and elapsed time across one execution.
// It is not safe for concurrent use; each evaluation owns its own
// Controller.
type Controller struct {
	limits  Limits
	visits  int
	start   time.Time
	started bool
}

// New creates a Controller for one evaluation.
func New(limits Limits) *Controller {
	return &Controller{limits: limits}
}

func (c *Controller) ensureStarted() {
	if !c.started {
		c.start = time.Now()
		c.started = true
	}
}

// Enter is called on every statement and expression entry. depth is 0 for
// statement-level checks and the evaluator's current recursion depth for
// expression-level checks.
func (c *Controller) Enter(depth, line, column int) error {
	c.ensureStarted()

	c.visits++
	if c.limits.MaxNodeVisits > 0 && c.visits > c.limits.MaxNodeVisits {
		return errs.New(errs.MaxVisitsExceeded, line, column,
			"exceeded max node visits (%d)", c.limits.MaxNodeVisits)
	}
	if c.limits.MaxDepth > 0 && depth > c.limits.MaxDepth {
		return errs.New(errs.MaxDepthExceeded, line, column,
			"exceeded max depth (%d)", c.limits.MaxDepth)
	}
	if c.limits.TimeoutMillis > 0 {
		if time.Since(c.start) > time.Duration(c.limits.TimeoutMillis)*time.Millisecond {
			return errs.New(errs.ExecutionTimeout, line, column,
				"execution exceeded %dms", c.limits.TimeoutMillis)
		}
	}
	return nil
}

// Visits reports the number of Enter calls made so far, useful for
// diagnostics and tests.
func (c *Controller) Visits() int { return c.visits }

// CheckScriptSize enforces the precompile maxNodes check (§4.7); it is a
// free function rather than a Controller method because it runs once at
// compile time, before any Controller exists.
func CheckScriptSize(nodeCount, maxNodes, line, column int) error {
	if maxNodes > 0 && nodeCount > maxNodes {
		return errs.New(errs.ScriptTooLarge, line, column,
			"script has %d nodes, exceeds max of %d", nodeCount, maxNodes)
	}
	return nil
}

package budget

import (
	"testing"
	"time"

	"github.com/matryer/is"

	"github.com/yang-sanmu/EasyExpression/internal/errs"
)

func TestMaxVisitsExceeded(t *testing.T) {
	is := is.New(t)
	c := New(Limits{MaxNodeVisits: 2})
	is.NoErr(c.Enter(0, 1, 1))
	is.NoErr(c.Enter(0, 1, 1))
	err := c.Enter(0, 1, 1)
	var e *errs.Error
	is.True(asErr(err, &e))
	is.Equal(e.Code, errs.MaxVisitsExceeded)
}

func TestMaxDepthExceeded(t *testing.T) {
	is := is.New(t)
	c := New(Limits{MaxDepth: 3})
	is.NoErr(c.Enter(3, 1, 1))
	err := c.Enter(4, 1, 1)
	var e *errs.Error
	is.True(asErr(err, &e))
	is.Equal(e.Code, errs.MaxDepthExceeded)
}

func TestTimeoutExceeded(t *testing.T) {
	is := is.New(t)
	c := New(Limits{TimeoutMillis: 5})
	is.NoErr(c.Enter(0, 1, 1))
	time.Sleep(15 * time.Millisecond)
	err := c.Enter(0, 1, 1)
	var e *errs.Error
	is.True(asErr(err, &e))
	is.Equal(e.Code, errs.ExecutionTimeout)
}

func TestZeroLimitsDisableChecks(t *testing.T) {
	is := is.New(t)
	c := New(Limits{})
	for i := 0; i < 1000; i++ {
		is.NoErr(c.Enter(1000, 1, 1))
	}
}

func TestCheckScriptSize(t *testing.T) {
	is := is.New(t)
	is.NoErr(CheckScriptSize(50, 100, 1, 1))
	err := CheckScriptSize(150, 100, 1, 1)
	var e *errs.Error
	is.True(asErr(err, &e))
	is.Equal(e.Code, errs.ScriptTooLarge)
}

func asErr(err error, target **errs.Error) bool {
	e, ok := err.(*errs.Error)
	if ok {
		*target = e
	}
	return ok
}

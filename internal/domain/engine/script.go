package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/dop251/goja"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/Studio/backend/internal/shared/types"
)

// ErrScriptTimeout is returned when a script exceeds its time budget
var ErrScriptTimeout = errors.New("script execution timeout exceeded")

// Sandbox runs Script action bodies in a fresh goja VM per call
type Sandbox struct {
	timeout time.Duration
	logger  *zap.Logger
}

// NewSandbox creates a script runner bounded by timeout
func NewSandbox(timeout time.Duration, logger *zap.Logger) *Sandbox {
	if timeout <= 0 {
		timeout = time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sandbox{timeout: timeout, logger: logger}
}

// Run executes code with state, dispatch and navigate in scope. Only
// UpdateState objects may be dispatched.
func (s *Sandbox) Run(ctx context.Context, code string, rc RuntimeContext) error {
	vm := goja.New()
	vm.SetMaxCallStackSize(1024)

	for _, name := range []string{"require", "process", "module", "exports"} {
		if err := vm.Set(name, goja.Undefined()); err != nil {
			return err
		}
	}

	var dispatchErr error
	dispatch := func(call goja.FunctionCall) goja.Value {
		raw, ok := call.Argument(0).Export().(map[string]interface{})
		if !ok {
			dispatchErr = fmt.Errorf("%w: dispatch expects an action object", types.ErrUnknownActionKind)
			panic(vm.NewTypeError(dispatchErr.Error()))
		}
		action, err := types.DecodeActionMap(raw)
		if err == nil && action.Kind() != types.KindUpdateState {
			err = fmt.Errorf("%w: scripts may only dispatch UpdateState, got %s", types.ErrUnknownActionKind, action.Kind())
		}
		if err != nil {
			dispatchErr = err
			panic(vm.NewTypeError(err.Error()))
		}
		if rc.Dispatch != nil {
			rc.Dispatch(action)
		}
		return goja.Undefined()
	}
	navigate := func(call goja.FunctionCall) goja.Value {
		if rc.Navigate != nil {
			rc.Navigate(call.Argument(0).String())
		}
		return goja.Undefined()
	}

	console := vm.NewObject()
	for _, level := range []string{"log", "info", "warn", "error"} {
		level := level
		if err := console.Set(level, func(call goja.FunctionCall) goja.Value {
			parts := make([]string, len(call.Arguments))
			for i, arg := range call.Arguments {
				parts[i] = arg.String()
			}
			s.logger.Debug("Script console", zap.String("level", level), zap.String("message", strings.Join(parts, " ")))
			return goja.Undefined()
		}); err != nil {
			return err
		}
	}
	if err := vm.Set("console", console); err != nil {
		return err
	}

	fn, err := vm.RunString("(function(state, dispatch, navigate) {\n" + code + "\n})")
	if err != nil {
		return fmt.Errorf("script compile failed: %w", err)
	}
	callable, ok := goja.AssertFunction(fn)
	if !ok {
		return errors.New("script did not compile to a function")
	}

	timer := time.NewTimer(s.timeout)
	defer timer.Stop()
	stop := make(chan struct{})
	defer close(stop)
	var timedOut atomic.Bool
	go func() {
		select {
		case <-timer.C:
			timedOut.Store(true)
			vm.Interrupt(ErrScriptTimeout.Error())
		case <-ctx.Done():
			vm.Interrupt("context cancelled")
		case <-stop:
		}
	}()

	state := types.CopyMap(rc.snapshot())
	if state == nil {
		state = map[string]any{}
	}
	_, err = callable(goja.Undefined(),
		vm.ToValue(state),
		vm.ToValue(dispatch),
		vm.ToValue(navigate),
	)
	if err == nil {
		return nil
	}
	if dispatchErr != nil {
		return dispatchErr
	}
	var interrupted *goja.InterruptedError
	if errors.As(err, &interrupted) {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if timedOut.Load() {
			return ErrScriptTimeout
		}
	}
	return fmt.Errorf("script failed: %w", err)
}

package script

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/dop251/goja"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/HFT/cream-browser/internal/keybinds"
	"github.com/HFT/cream-browser/internal/theme"
)

// Runtime runs configuration scripts. Each Run uses a fresh VM, so a
// Runtime may be reused but not shared between goroutines.
type Runtime struct {
	opts   Options
	logger *zap.Logger
}

// New creates a configuration runtime.
func New(opts Options) *Runtime {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runtime{opts: opts, logger: logger.Named("script")}
}

// RunFile runs the script at path.
func (r *Runtime) RunFile(ctx context.Context, path string) (*Config, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigError{File: path, Err: err}
	}
	return r.Run(ctx, path, string(src))
}

// Run executes src and returns what it declared. name is used in error
// messages and log lines.
func (r *Runtime) Run(ctx context.Context, name, src string) (*Config, error) {
	vm := goja.New()
	vm.SetMaxCallStackSize(1024)

	s := &state{
		rt:  r,
		vm:  vm,
		cfg: &Config{File: name, Settings: map[string]string{}},
	}
	themeMap, err := themeObject(theme.Default())
	if err != nil {
		return nil, &ConfigError{File: name, Err: err}
	}
	s.setupGlobals(themeMap)

	timer := time.NewTimer(r.opts.Timeout)
	defer timer.Stop()
	done := make(chan struct{})
	defer close(done)

	go func() {
		select {
		case <-timer.C:
			vm.Interrupt("execution timeout exceeded")
		case <-ctx.Done():
			vm.Interrupt("context cancelled")
		case <-done:
		}
	}()

	if _, err := vm.RunScript(name, src); err != nil {
		return nil, &ConfigError{File: name, Err: err}
	}

	th, err := decodeTheme(themeMap)
	if err != nil {
		return nil, &ConfigError{File: name, Err: err}
	}
	s.cfg.Theme = th

	r.logger.Debug("configuration loaded",
		zap.String("file", name),
		zap.Int("protocols", len(s.cfg.Protocols)),
		zap.Int("bindings", len(s.cfg.Bindings)),
	)
	return s.cfg, nil
}

// state is the per-run binding between the VM and the Config being built.
type state struct {
	rt  *Runtime
	vm  *goja.Runtime
	cfg *Config
}

func (s *state) setupGlobals(themeMap map[string]interface{}) {
	s.vm.Set("require", goja.Undefined())

	console := s.vm.NewObject()
	console.Set("log", s.makeConsoleFunc(zap.InfoLevel))
	console.Set("info", s.makeConsoleFunc(zap.InfoLevel))
	console.Set("warn", s.makeConsoleFunc(zap.WarnLevel))
	console.Set("error", s.makeConsoleFunc(zap.ErrorLevel))
	s.vm.Set("console", console)

	protocol := s.vm.NewObject()
	protocol.Set("register", s.register)
	s.vm.Set("protocol", protocol)

	s.vm.Set("bind", s.bind)
	s.vm.Set("unbind", s.unbind)
	s.vm.Set("set", s.set)
	s.vm.Set("theme", themeMap)
}

func (s *state) makeConsoleFunc(level zapcore.Level) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		parts := make([]string, len(call.Arguments))
		for i, arg := range call.Arguments {
			parts[i] = arg.String()
		}
		if ce := s.rt.logger.Check(level, strings.Join(parts, " ")); ce != nil {
			ce.Write(zap.String("file", s.cfg.File))
		}
		return goja.Undefined()
	}
}

// stringArg returns argument i as a string, throwing a TypeError when it
// is missing or not a string.
func (s *state) stringArg(call goja.FunctionCall, fn string, i int) string {
	v := call.Argument(i)
	if goja.IsUndefined(v) || goja.IsNull(v) {
		panic(s.vm.NewTypeError("%s: missing argument %d", fn, i+1))
	}
	if _, ok := v.Export().(string); !ok {
		panic(s.vm.NewTypeError("%s: argument %d must be a string", fn, i+1))
	}
	return v.String()
}

func (s *state) register(call goja.FunctionCall) goja.Value {
	prefix := s.stringArg(call, "protocol.register", 0)
	if prefix == "" {
		panic(s.vm.NewTypeError("protocol.register: empty prefix"))
	}

	var module string
	if v := call.Argument(1); !goja.IsUndefined(v) && !goja.IsNull(v) {
		module = s.stringArg(call, "protocol.register", 1)
		if !slices.Contains(s.rt.opts.Modules, module) {
			panic(s.vm.NewTypeError("protocol.register: unknown module %q", module))
		}
	}

	s.cfg.Protocols = append(s.cfg.Protocols, Protocol{Prefix: prefix, Module: module})
	return goja.Undefined()
}

func (s *state) checkContext(fn, scope string) {
	for _, c := range keybinds.Contexts() {
		if string(c) == scope {
			return
		}
	}
	panic(s.vm.NewTypeError("%s: unknown context %q", fn, scope))
}

func (s *state) bind(call goja.FunctionCall) goja.Value {
	scope := s.stringArg(call, "bind", 0)
	key := s.stringArg(call, "bind", 1)
	command := s.stringArg(call, "bind", 2)

	s.checkContext("bind", scope)
	if err := keybinds.ValidateKey(key); err != nil {
		panic(s.vm.NewTypeError("bind: %v", err))
	}
	name := strings.Fields(command)
	if len(name) == 0 {
		panic(s.vm.NewTypeError("bind: empty command for %q", key))
	}
	if s.rt.opts.Commands != nil && !slices.Contains(s.rt.opts.Commands, name[0]) {
		panic(s.vm.NewTypeError("bind: unknown command %q", name[0]))
	}

	s.cfg.Bindings = append(s.cfg.Bindings, Binding{Context: scope, Key: key, Command: command})
	return goja.Undefined()
}

func (s *state) unbind(call goja.FunctionCall) goja.Value {
	scope := s.stringArg(call, "unbind", 0)
	key := s.stringArg(call, "unbind", 1)
	s.checkContext("unbind", scope)

	s.cfg.Bindings = append(s.cfg.Bindings, Binding{Context: scope, Key: key})
	return goja.Undefined()
}

func (s *state) set(call goja.FunctionCall) goja.Value {
	name := s.stringArg(call, "set", 0)
	v := call.Argument(1)
	if goja.IsUndefined(v) || goja.IsNull(v) {
		panic(s.vm.NewTypeError("set: missing value for %q", name))
	}

	value := v.String()
	if err := checkSetting(name, value); err != nil {
		panic(s.vm.NewTypeError("set: %v", err))
	}
	s.cfg.Settings[name] = value
	return goja.Undefined()
}

// themeObject turns t into nested maps. The VM wraps them without
// copying, so assignments like theme.tab.bg.focus = "#fff" land in the
// maps and are read back by decodeTheme.
func themeObject(t *theme.Theme) (map[string]interface{}, error) {
	data, err := json.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("failed to encode theme: %w", err)
	}
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to encode theme: %w", err)
	}
	return m, nil
}

func decodeTheme(m map[string]interface{}) (*theme.Theme, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("invalid theme: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var t theme.Theme
	if err := dec.Decode(&t); err != nil {
		return nil, fmt.Errorf("invalid theme: %w", err)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

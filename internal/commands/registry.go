// Package commands is the host command menu: user-invokable actions with
// labels that may change as their state flips.
package commands

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrUnknownHandle is returned when invoking a handle that is not
// registered.
var ErrUnknownHandle = errors.New("unknown command")

// Handle identifies a registered command.
type Handle int

// Func is a command callback.
type Func func(ctx context.Context) error

// Command is one registered entry.
type Command struct {
	Handle Handle
	Label  string
	fn     Func
}

// Registry holds commands in registration order.
type Registry struct {
	mu       sync.Mutex
	next     Handle
	commands []Command
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{next: 1}
}

// Register adds a command and returns its handle.
func (r *Registry) Register(label string, fn Func) Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	h := r.next
	r.next++
	r.commands = append(r.commands, Command{Handle: h, Label: label, fn: fn})
	return h
}

// Unregister removes a command. Unknown handles are ignored.
func (r *Registry) Unregister(h Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, c := range r.commands {
		if c.Handle == h {
			r.commands = append(r.commands[:i], r.commands[i+1:]...)
			return
		}
	}
}

// Commands returns the registered commands in order.
func (r *Registry) Commands() []Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Command(nil), r.commands...)
}

// Invoke runs the command registered under h. The registry lock is not
// held while the callback runs, so callbacks may re-register themselves.
func (r *Registry) Invoke(ctx context.Context, h Handle) error {
	r.mu.Lock()
	var fn Func
	for _, c := range r.commands {
		if c.Handle == h {
			fn = c.fn
			break
		}
	}
	r.mu.Unlock()

	if fn == nil {
		return fmt.Errorf("%w: %d", ErrUnknownHandle, h)
	}
	return fn(ctx)
}

// InvokeAt runs the command at 1-based position n of Commands.
func (r *Registry) InvokeAt(ctx context.Context, n int) error {
	cmds := r.Commands()
	if n < 1 || n > len(cmds) {
		return fmt.Errorf("%w: no command at position %d", ErrUnknownHandle, n)
	}
	return r.Invoke(ctx, cmds[n-1].Handle)
}

// Package shardfake is an in-process, scriptable stand-in for the
// transport that dispatches commands to shards (spec.md §1), playing
// for this router's tests the same role the teacher's kfake plays for
// the transactional Kafka client: exercise real command decoration and
// response processing without a live cluster.
package shardfake

import (
	"context"
	"sync"

	"github.com/shardmux/txrouter/pkg/txrouter"
)

// Call is one recorded invocation of a Shard.
type Call struct {
	Shard txrouter.ShardID
	Cmd   txrouter.Command
}

// Handler answers a Command with a Response.
type Handler func(txrouter.Command) txrouter.Response

// Shard is a single fake backend shard. By default it answers OK with
// readOnly=true for every command, transaction-control commands
// included; a write has to be scripted explicitly (e.g. with
// ReadOnlyResponse(false)). It records every call it receives for test
// assertions.
type Shard struct {
	ID txrouter.ShardID

	mu       sync.Mutex
	scripts  map[string]Handler
	fallback Handler
	calls    []Call
}

// New returns a Shard that answers every command OK/read-only until
// scripted otherwise.
func New(id txrouter.ShardID) *Shard {
	return &Shard{
		ID:      id,
		scripts: make(map[string]Handler),
		fallback: func(cmd txrouter.Command) txrouter.Response {
			ro := true
			return txrouter.Response{OK: true, ReadOnly: &ro}
		},
	}
}

// Script registers fn as the handler for commands named cmdName.
func (s *Shard) Script(cmdName string, fn Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scripts[cmdName] = fn
}

// ScriptDefault replaces the fallback handler used for any command
// without a specific script.
func (s *Shard) ScriptDefault(fn Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fallback = fn
}

// Handle answers cmd, recording the call.
func (s *Shard) Handle(cmd txrouter.Command) txrouter.Response {
	s.mu.Lock()
	fn, ok := s.scripts[cmd.Name]
	if !ok {
		fn = s.fallback
	}
	s.calls = append(s.calls, Call{Shard: s.ID, Cmd: cmd})
	s.mu.Unlock()
	return fn(cmd)
}

// Calls returns every call recorded so far, in arrival order.
func (s *Shard) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

// Network wires a set of Shards together as a txrouter.ShardTransport.
type Network struct {
	mu     sync.Mutex
	shards map[txrouter.ShardID]*Shard
}

// NewNetwork returns a Network serving the given shards.
func NewNetwork(shards ...*Shard) *Network {
	n := &Network{shards: make(map[txrouter.ShardID]*Shard, len(shards))}
	for _, s := range shards {
		n.shards[s.ID] = s
	}
	return n
}

// Add registers an additional shard after construction.
func (n *Network) Add(s *Shard) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.shards[s.ID] = s
}

// Send implements txrouter.ShardTransport.
func (n *Network) Send(ctx context.Context, shardID txrouter.ShardID, cmd txrouter.Command) (txrouter.Response, error) {
	n.mu.Lock()
	s, ok := n.shards[shardID]
	n.mu.Unlock()
	if !ok {
		return txrouter.Response{}, unknownShardError(shardID)
	}
	return s.Handle(cmd), nil
}

type unknownShardErr struct{ id txrouter.ShardID }

func (e unknownShardErr) Error() string { return "shardfake: unknown shard " + string(e.id) }

func unknownShardError(id txrouter.ShardID) error { return unknownShardErr{id: id} }

// ReadOnlyResponse is a convenience Handler returning OK with the given
// readOnly marker.
func ReadOnlyResponse(readOnly bool) Handler {
	return func(txrouter.Command) txrouter.Response {
		ro := readOnly
		return txrouter.Response{OK: true, ReadOnly: &ro}
	}
}

// ErrorResponse is a convenience Handler returning a non-OK response
// carrying the given error code.
func ErrorResponse(code string) Handler {
	return func(txrouter.Command) txrouter.Response {
		return txrouter.Response{OK: false, ErrorCode: code}
	}
}

package txrouter

import "context"

// fakeTransport is a minimal scriptable ShardTransport for this
// package's white-box tests, kept separate from pkg/shardfake so these
// tests have no dependency outside the standard library.
type fakeTransport struct {
	handlers map[ShardID]func(Command) Response
	calls    []fakeCall
}

type fakeCall struct {
	Shard ShardID
	Cmd   Command
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{handlers: make(map[ShardID]func(Command) Response)}
}

func (f *fakeTransport) on(id ShardID, fn func(Command) Response) {
	f.handlers[id] = fn
}

func (f *fakeTransport) Send(ctx context.Context, shardID ShardID, cmd Command) (Response, error) {
	f.calls = append(f.calls, fakeCall{Shard: shardID, Cmd: cmd})
	fn, ok := f.handlers[shardID]
	if !ok {
		return Response{OK: true, ReadOnly: readOnlyPtr(true)}, nil
	}
	return fn(cmd), nil
}

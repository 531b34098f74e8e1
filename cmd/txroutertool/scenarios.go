package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/shardmux/txrouter/pkg/routeradm"
	"github.com/shardmux/txrouter/pkg/shardfake"
	"github.com/shardmux/txrouter/pkg/txrouter"
)

func newSessionID() txrouter.SessionID {
	u := uuid.New()
	var id txrouter.SessionID
	copy(id[:], u[:])
	return id
}

// runScenario drives one of the spec's §8 worked examples and returns
// the reporter dump captured right after commit.
func runScenario(ctx context.Context, name string, registry *routeradm.Registry) (txrouter.Report, error) {
	switch name {
	case "s1":
		return scenarioSingleShardReadOnly(ctx, registry)
	case "s2":
		return scenarioTwoPhaseCommit(ctx, registry)
	case "s3":
		return scenarioSingleWriteShard(ctx, registry)
	default:
		return txrouter.Report{}, fmt.Errorf("unknown scenario %q (want s1, s2, or s3)", name)
	}
}

func newDemoRouter(registry *routeradm.Registry, net *shardfake.Network) (txrouter.SessionID, *txrouter.Router) {
	id := newSessionID()
	r := txrouter.New(id, txrouter.WithTransport(net))
	registry.Track(id, r)
	return id, r
}

// scenarioSingleShardReadOnly is spec.md §8 S1.
func scenarioSingleShardReadOnly(ctx context.Context, registry *routeradm.Registry) (txrouter.Report, error) {
	shardA := shardfake.New("A")
	shardA.Script("find", shardfake.ReadOnlyResponse(true))
	net := shardfake.NewNetwork(shardA)

	_, r := newDemoRouter(registry, net)

	if err := r.BeginOrContinue(ctx, 1, txrouter.ActionStart, &txrouter.ReadConcern{Level: txrouter.ReadConcernSnapshot}, txrouter.ClientInfo{}); err != nil {
		return txrouter.Report{}, err
	}
	if err := r.SetDefaultAtClusterTime(ctx); err != nil {
		return txrouter.Report{}, err
	}
	cmd := r.AttachTxnFieldsIfNeeded("A", txrouter.Command{Name: "find"})
	resp, err := net.Send(ctx, "A", cmd)
	if err != nil {
		return txrouter.Report{}, err
	}
	if err := r.ProcessParticipantResponse("A", resp); err != nil {
		return txrouter.Report{}, err
	}

	if _, err := r.CommitTransaction(ctx, nil); err != nil {
		return txrouter.Report{}, err
	}
	return r.ReportState(false), nil
}

// scenarioTwoPhaseCommit is spec.md §8 S2.
func scenarioTwoPhaseCommit(ctx context.Context, registry *routeradm.Registry) (txrouter.Report, error) {
	shardA := shardfake.New("A")
	shardB := shardfake.New("B")
	shardA.Script("insert", shardfake.ReadOnlyResponse(false))
	shardB.Script("insert", shardfake.ReadOnlyResponse(false))
	net := shardfake.NewNetwork(shardA, shardB)

	_, r := newDemoRouter(registry, net)

	if err := r.BeginOrContinue(ctx, 1, txrouter.ActionStart, &txrouter.ReadConcern{Level: txrouter.ReadConcernSnapshot}, txrouter.ClientInfo{}); err != nil {
		return txrouter.Report{}, err
	}
	if err := r.SetDefaultAtClusterTime(ctx); err != nil {
		return txrouter.Report{}, err
	}
	for _, shard := range []txrouter.ShardID{"A", "B"} {
		cmd := r.AttachTxnFieldsIfNeeded(shard, txrouter.Command{Name: "insert"})
		resp, err := net.Send(ctx, shard, cmd)
		if err != nil {
			return txrouter.Report{}, err
		}
		if err := r.ProcessParticipantResponse(shard, resp); err != nil {
			return txrouter.Report{}, err
		}
	}

	if _, err := r.CommitTransaction(ctx, nil); err != nil {
		return txrouter.Report{}, err
	}
	return r.ReportState(false), nil
}

// scenarioSingleWriteShard is spec.md §8 S3.
func scenarioSingleWriteShard(ctx context.Context, registry *routeradm.Registry) (txrouter.Report, error) {
	shardA := shardfake.New("A")
	shardB := shardfake.New("B")
	shardA.Script("find", shardfake.ReadOnlyResponse(true))
	shardB.Script("insert", shardfake.ReadOnlyResponse(false))
	net := shardfake.NewNetwork(shardA, shardB)

	_, r := newDemoRouter(registry, net)

	if err := r.BeginOrContinue(ctx, 1, txrouter.ActionStart, &txrouter.ReadConcern{Level: txrouter.ReadConcernSnapshot}, txrouter.ClientInfo{}); err != nil {
		return txrouter.Report{}, err
	}
	if err := r.SetDefaultAtClusterTime(ctx); err != nil {
		return txrouter.Report{}, err
	}

	cmdA := r.AttachTxnFieldsIfNeeded("A", txrouter.Command{Name: "find"})
	respA, err := net.Send(ctx, "A", cmdA)
	if err != nil {
		return txrouter.Report{}, err
	}
	if err := r.ProcessParticipantResponse("A", respA); err != nil {
		return txrouter.Report{}, err
	}

	cmdB := r.AttachTxnFieldsIfNeeded("B", txrouter.Command{Name: "insert"})
	respB, err := net.Send(ctx, "B", cmdB)
	if err != nil {
		return txrouter.Report{}, err
	}
	if err := r.ProcessParticipantResponse("B", respB); err != nil {
		return txrouter.Report{}, err
	}

	if _, err := r.CommitTransaction(ctx, nil); err != nil {
		return txrouter.Report{}, err
	}
	return r.ReportState(false), nil
}

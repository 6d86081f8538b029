package batch

import (
	"github.com/block/eventship-go/dispatch"
	"github.com/block/eventship-go/types"
)

// Submitter receives the merged requests of every flush.
// *dispatch.Dispatcher implements it.
type Submitter interface {
	Submit(req dispatch.Request)
}

var _ Submitter = &dispatch.Dispatcher{}

// MergeFunc turns the requests accumulated since the last flush
// into the requests that are submitted.
type MergeFunc func(batch []dispatch.Request) []dispatch.Request

// Merge combines metric requests by namespace and log requests by
// group and stream (see types.MergeMetricData and types.MergeLogEvents).
// Any other payload is passed through untouched, after the merged ones.
//
// The MetaData of a merged request is a []any with the MetaData of the
// requests sharing its namespace, or its group and stream. Every chunk of
// the same key carries the same MetaData.
func Merge(batch []dispatch.Request) []dispatch.Request {
	metrics := newGroups[string, *types.PutMetricDataRequest]()
	logs := newGroups[logKey, *types.PutLogEventsRequest]()
	var other []dispatch.Request

	for _, req := range batch {
		switch v := req.Data.(type) {
		case *types.PutMetricDataRequest:
			if v == nil {
				continue
			}
			metrics.add(v.Namespace, v, req.MetaData)
		case *types.PutLogEventsRequest:
			if v == nil {
				continue
			}
			logs.add(logKey{group: v.GroupName, stream: v.StreamName}, v, req.MetaData)
		default:
			other = append(other, req)
		}
	}

	var res []dispatch.Request
	for _, g := range metrics.ordered() {
		for _, m := range types.MergeMetricData(g.reqs) {
			res = append(res, dispatch.Request{Data: m, MetaData: g.meta})
		}
	}
	for _, g := range logs.ordered() {
		for _, l := range types.MergeLogEvents(g.reqs) {
			res = append(res, dispatch.Request{Data: l, MetaData: g.meta})
		}
	}
	return append(res, other...)
}

// NoMerge submits every request as it was added.
func NoMerge(batch []dispatch.Request) []dispatch.Request {
	return batch
}

type logKey struct {
	group  string
	stream string
}

type group[T any] struct {
	reqs []T
	meta []any
}

// groups keeps requests per key in the order keys were first seen.
type groups[K comparable, T any] struct {
	order []K
	byKey map[K]*group[T]
}

func newGroups[K comparable, T any]() *groups[K, T] {
	return &groups[K, T]{byKey: map[K]*group[T]{}}
}

func (g *groups[K, T]) add(key K, req T, meta any) {
	grp, ok := g.byKey[key]
	if !ok {
		grp = &group[T]{}
		g.byKey[key] = grp
		g.order = append(g.order, key)
	}
	grp.reqs = append(grp.reqs, req)
	if meta != nil {
		grp.meta = append(grp.meta, meta)
	}
}

func (g *groups[K, T]) ordered() []*group[T] {
	res := make([]*group[T], 0, len(g.order))
	for _, k := range g.order {
		res = append(res, g.byKey[k])
	}
	return res
}

package types

import (
	"slices"
)

// MergeMetricData combines requests sharing a namespace and splits the
// result into requests of at most MaxMetricDataPerRequest datums.
// Namespaces keep the order in which they were first seen.
func MergeMetricData(reqs []*PutMetricDataRequest) []*PutMetricDataRequest {
	var order []string
	byNamespace := map[string][]MetricDatum{}
	for _, r := range reqs {
		if r == nil || len(r.MetricData) == 0 {
			continue
		}
		if _, ok := byNamespace[r.Namespace]; !ok {
			order = append(order, r.Namespace)
		}
		byNamespace[r.Namespace] = append(byNamespace[r.Namespace], r.MetricData...)
	}

	var res []*PutMetricDataRequest
	for _, ns := range order {
		for chunk := range slices.Chunk(byNamespace[ns], MaxMetricDataPerRequest) {
			res = append(res, &PutMetricDataRequest{
				Namespace:  ns,
				MetricData: chunk,
			})
		}
	}
	return res
}

type logStream struct {
	group  string
	stream string
}

// MergeLogEvents combines requests targeting the same group and stream.
// Events are sorted chronologically (stable for equal timestamps) and split
// into requests of at most MaxLogEventsPerRequest events.
func MergeLogEvents(reqs []*PutLogEventsRequest) []*PutLogEventsRequest {
	var order []logStream
	byStream := map[logStream][]InputLogEvent{}
	for _, r := range reqs {
		if r == nil || len(r.Events) == 0 {
			continue
		}
		key := logStream{group: r.GroupName, stream: r.StreamName}
		if _, ok := byStream[key]; !ok {
			order = append(order, key)
		}
		byStream[key] = append(byStream[key], r.Events...)
	}

	var res []*PutLogEventsRequest
	for _, key := range order {
		events := byStream[key]
		slices.SortStableFunc(events, func(a, b InputLogEvent) int {
			return a.Timestamp.Compare(b.Timestamp)
		})
		for chunk := range slices.Chunk(events, MaxLogEventsPerRequest) {
			res = append(res, &PutLogEventsRequest{
				GroupName:  key.group,
				StreamName: key.stream,
				Events:     chunk,
			})
		}
	}
	return res
}

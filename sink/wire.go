package sink

import (
	"encoding/json"
	stderrors "errors"

	"github.com/block/eventship-go/errors"
	"github.com/block/eventship-go/format"
	"github.com/block/eventship-go/types"
)

// Wire forms carry numbers and timestamps already rendered with the
// format from the send context, so encoding/json never formats them.

type wireDimension struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type wireDatum struct {
	MetricName string          `json:"metricName"`
	Unit       types.Unit      `json:"unit"`
	Value      json.Number     `json:"value"`
	Timestamp  string          `json:"timestamp"`
	Dimensions []wireDimension `json:"dimensions,omitempty"`
}

type wireMetricData struct {
	Namespace  string      `json:"namespace"`
	MetricData []wireDatum `json:"metricData"`
}

type wireLogEvent struct {
	Timestamp json.Number `json:"timestamp"`
	Message   string      `json:"message"`
}

type wireLogEvents struct {
	GroupName  string         `json:"logGroupName"`
	StreamName string         `json:"logStreamName"`
	Events     []wireLogEvent `json:"logEvents"`
}

func toWireMetricData(f format.Format, r *types.PutMetricDataRequest) wireMetricData {
	res := wireMetricData{
		Namespace:  r.Namespace,
		MetricData: make([]wireDatum, 0, len(r.MetricData)),
	}
	for _, d := range r.MetricData {
		unit := d.Unit
		if unit == "" {
			unit = types.UnitNone
		}
		w := wireDatum{
			MetricName: d.MetricName,
			Unit:       unit,
			Value:      json.Number(f.Float(d.Value)),
			Timestamp:  f.Time(d.Timestamp),
		}
		for _, dim := range d.Dimensions {
			w.Dimensions = append(w.Dimensions, wireDimension(dim))
		}
		res.MetricData = append(res.MetricData, w)
	}
	return res
}

func toWireLogEvents(f format.Format, r *types.PutLogEventsRequest) wireLogEvents {
	res := wireLogEvents{
		GroupName:  r.GroupName,
		StreamName: r.StreamName,
		Events:     make([]wireLogEvent, 0, len(r.Events)),
	}
	for _, e := range r.Events {
		res.Events = append(res.Events, wireLogEvent{
			Timestamp: json.Number(f.Millis(e.Timestamp)),
			Message:   e.Message,
		})
	}
	return res
}

// encode validates the payload and returns its wire form
// and the endpoint path it is posted to.
func encode(f format.Format, data any) (any, string, error) {
	switch v := data.(type) {
	case *types.PutMetricDataRequest:
		if err := v.Validate(); err != nil {
			return nil, "", err
		}
		return toWireMetricData(f, v), PathMetrics, nil
	case types.PutMetricDataRequest:
		return encode(f, &v)
	case *types.PutLogEventsRequest:
		if err := v.Validate(); err != nil {
			return nil, "", err
		}
		return toWireLogEvents(f, v), PathLogs, nil
	case types.PutLogEventsRequest:
		return encode(f, &v)
	default:
		return nil, "", errUnsupported(data)
	}
}

// encodePayload is encode with every failure reported as *errors.SendError.
func encodePayload(f format.Format, data any) (any, string, error) {
	payload, path, err := encode(f, data)
	if err != nil {
		var sendErr *errors.SendError
		if stderrors.As(err, &sendErr) {
			return nil, "", sendErr
		}
		return nil, "", &errors.SendError{
			Stage:     errors.STAGE_BEFORE_REQUEST,
			Type:      errors.TYPE_INVALID_DATA,
			SourceErr: err,
		}
	}
	return payload, path, nil
}

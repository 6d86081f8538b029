package types

import (
	"errors"
	"fmt"
	"time"
)

const (
	// MaxDimensions is the number of dimensions a single datum may carry.
	MaxDimensions = 10
	// MaxMetricDataPerRequest is the number of datums accepted per request.
	MaxMetricDataPerRequest = 20
)

// ErrInvalidRequest is wrapped by every Validate error.
var ErrInvalidRequest = errors.New("invalid request")

type Dimension struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type MetricDatum struct {
	MetricName string      `json:"metricName"`
	Unit       Unit        `json:"unit,omitempty"`
	Value      float64     `json:"value"`
	Timestamp  time.Time   `json:"timestamp"`
	Dimensions []Dimension `json:"dimensions,omitempty"`
}

type PutMetricDataRequest struct {
	Namespace  string        `json:"namespace"`
	MetricData []MetricDatum `json:"metricData"`
}

func (r *PutMetricDataRequest) Validate() error {
	if r == nil {
		return fmt.Errorf("%w: nil metric request", ErrInvalidRequest)
	}
	if r.Namespace == "" {
		return fmt.Errorf("%w: empty namespace", ErrInvalidRequest)
	}
	if len(r.MetricData) == 0 {
		return fmt.Errorf("%w: no metric data", ErrInvalidRequest)
	}
	if len(r.MetricData) > MaxMetricDataPerRequest {
		return fmt.Errorf(
			"%w: %d datums, at most %d allowed",
			ErrInvalidRequest, len(r.MetricData), MaxMetricDataPerRequest,
		)
	}
	for i, d := range r.MetricData {
		if err := d.Validate(); err != nil {
			return fmt.Errorf("datum %d: %w", i, err)
		}
	}
	return nil
}

func (d MetricDatum) Validate() error {
	if d.MetricName == "" {
		return fmt.Errorf("%w: empty metric name", ErrInvalidRequest)
	}
	if !ValidUnit(d.Unit) {
		return fmt.Errorf("%w: unknown unit %q", ErrInvalidRequest, d.Unit)
	}
	if len(d.Dimensions) > MaxDimensions {
		return fmt.Errorf(
			"%w: metric %q has %d dimensions, at most %d allowed",
			ErrInvalidRequest, d.MetricName, len(d.Dimensions), MaxDimensions,
		)
	}
	for _, dim := range d.Dimensions {
		if dim.Name == "" {
			return fmt.Errorf("%w: metric %q has an unnamed dimension", ErrInvalidRequest, d.MetricName)
		}
	}
	return nil
}

package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/block/eventship-go/dispatch"
	"github.com/block/eventship-go/types"
)

type metricOptions struct {
	namespace  string
	name       string
	value      float64
	unit       string
	dimensions []string
	count      int
}

func newMetricCmd(root *rootOptions) *cobra.Command {
	opts := &metricOptions{}

	c := &cobra.Command{
		Use:   "metric",
		Short: "Send a metric datum",
		Example: `  eventship metric --namespace checkout --name latency --value 12.5 --unit Milliseconds
  eventship metric --name requests --value 1 --unit Count --dimension host=web-1 --count 10`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			req, err := opts.request(time.Now())
			if err != nil {
				return err
			}
			return runAppend(c, root, opts.count, func(at time.Time) dispatch.Request {
				return dispatch.Request{Data: req(at), MetaData: opts.name}
			})
		},
	}

	c.Flags().StringVar(&opts.namespace, "namespace", "eventship", "metric namespace")
	c.Flags().StringVar(&opts.name, "name", "", "metric name (required)")
	c.Flags().Float64Var(&opts.value, "value", 1, "metric value")
	c.Flags().StringVar(&opts.unit, "unit", string(types.UnitCount), "metric unit, e.g. Count, Milliseconds, Bytes/Second")
	c.Flags().StringArrayVar(&opts.dimensions, "dimension", nil, "dimension as name=value (repeatable)")
	c.Flags().IntVar(&opts.count, "count", 1, "number of events to append")
	_ = c.MarkFlagRequired("name")
	return c
}

// request validates the flags once and returns a builder stamping
// each datum with its own event time.
func (o *metricOptions) request(now time.Time) (func(at time.Time) *types.PutMetricDataRequest, error) {
	unit, ok := types.ParseUnit(o.unit)
	if !ok {
		return nil, fmt.Errorf("unknown unit %q", o.unit)
	}
	var dims []types.Dimension
	for _, d := range o.dimensions {
		name, value, ok := strings.Cut(d, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("dimension %q is not name=value", d)
		}
		dims = append(dims, types.Dimension{Name: name, Value: value})
	}

	build := func(at time.Time) *types.PutMetricDataRequest {
		return &types.PutMetricDataRequest{
			Namespace: o.namespace,
			MetricData: []types.MetricDatum{{
				MetricName: o.name,
				Unit:       unit,
				Value:      o.value,
				Timestamp:  at,
				Dimensions: dims,
			}},
		}
	}
	if err := build(now).Validate(); err != nil {
		return nil, err
	}
	return build, nil
}

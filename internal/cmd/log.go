package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/block/eventship-go/dispatch"
	"github.com/block/eventship-go/types"
)

type logOptions struct {
	group   string
	stream  string
	message string
	count   int
}

func newLogCmd(root *rootOptions) *cobra.Command {
	opts := &logOptions{}

	c := &cobra.Command{
		Use:     "log",
		Short:   "Send a log event",
		Example: `  eventship log --group orders --stream worker-1 --message "order 42 shipped"`,
		Args:    cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			return runAppend(c, root, opts.count, func(at time.Time) dispatch.Request {
				return dispatch.Request{
					Data: types.NewLogEventsRequest(opts.group, opts.stream, at, opts.message),
				}
			})
		},
	}

	c.Flags().StringVar(&opts.group, "group", types.DefaultGroupName, "log group name")
	c.Flags().StringVar(&opts.stream, "stream", types.DefaultStreamName, "log stream name")
	c.Flags().StringVar(&opts.message, "message", "", "log message (required)")
	c.Flags().IntVar(&opts.count, "count", 1, "number of events to append")
	_ = c.MarkFlagRequired("message")
	return c
}

// Package cmd implements the eventship command line: it loads the config,
// builds an appender and ships metric or log events from the shell.
package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	eventship "github.com/block/eventship-go"
	"github.com/block/eventship-go/config"
	"github.com/block/eventship-go/dispatch"
	"github.com/block/eventship-go/logger"
	"github.com/block/eventship-go/sink"
)

type rootOptions struct {
	cfgFile string
	verbose bool
	dryRun  bool
	stdout  io.Writer
	stderr  io.Writer
}

// NewRootCmd builds the eventship command tree writing to the given streams.
func NewRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &rootOptions{stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:   "eventship",
		Short: "Ship metric and log events to an ingestion endpoint",
		Long: `eventship sends metric data and log events through the same
rate-limited, asynchronous pipeline applications use, then waits
for the deliveries to finish.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.PersistentFlags().StringVar(&opts.cfgFile, "config", "", "config file (YAML); EVENTSHIP_* variables override it")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "verbose output (sets log level to debug)")
	root.PersistentFlags().BoolVar(&opts.dryRun, "dry-run", false, "print requests as JSON lines instead of sending them")

	root.AddCommand(newMetricCmd(opts), newLogCmd(opts))
	return root
}

// session is everything a subcommand needs to append and drain.
type session struct {
	cfg      *config.Config
	zap      *zap.Logger
	appender *eventship.Appender
	buffered *eventship.BufferedAppender
}

func (o *rootOptions) newSession() (*session, error) {
	cfg, err := config.Load(o.cfgFile)
	if err != nil {
		return nil, err
	}
	if o.verbose {
		cfg.Log.Level = "debug"
	}

	var factory dispatch.SinkFactory
	if o.dryRun {
		factory = dispatch.StaticSink(sink.NewWriter(o.stdout))
	} else {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		factory = sink.NewHTTPFactory(cfg.Endpoint, cfg.APIKey)
	}

	z, err := newZapLogger(cfg.Log.Level, o.stderr)
	if err != nil {
		return nil, err
	}
	l := logger.NewZap(z)

	s := &session{cfg: cfg, zap: z}
	s.appender = eventship.NewAppender(factory,
		eventship.WithMaxRequestsPerSecond(cfg.MaxRequestsPerSecond),
		eventship.WithSendTimeout(cfg.SendTimeout),
		eventship.WithLogger(l),
	)
	if cfg.Batch.Enabled {
		s.buffered = eventship.NewBufferedAppender(s.appender,
			eventship.WithBatchFlushQueueSize(cfg.Batch.FlushSize),
			eventship.WithBatchFlushInterval(cfg.Batch.FlushInterval),
			eventship.WithBatchBufferSize(cfg.Batch.BufferSize),
		)
		s.buffered.Start()
	}
	return s, nil
}

func (s *session) append(at time.Time, req dispatch.Request) bool {
	if s.buffered != nil {
		return s.buffered.Append(at, req)
	}
	return s.appender.Append(at, req)
}

// finish flushes buffered events, waits for the deliveries and prints
// the dispatcher counters.
func (s *session) finish(out io.Writer, admitted, rejected int) error {
	defer func() { _ = s.zap.Sync() }()

	if s.buffered != nil {
		s.buffered.Stop()
	}
	drained := s.drain()

	st := s.appender.Stats()
	_, _ = fmt.Fprintf(out,
		"admitted=%d rejected=%d submitted=%d sent=%d failed=%d timed_out=%d dropped=%d\n",
		admitted, rejected, st.Submitted, st.Sent, st.Failed, st.TimedOut, st.Dropped,
	)
	if !drained {
		return fmt.Errorf("deliveries still pending after %s", s.cfg.DrainTimeout)
	}
	return nil
}

// drain waits for pending deliveries. A zero drain timeout waits without
// bound; every task still ends once its send timeout fires.
func (s *session) drain() bool {
	if s.cfg.DrainTimeout == 0 {
		s.appender.WaitForPendingRequests()
		return true
	}
	return s.appender.WaitForPendingRequestsTimeout(s.cfg.DrainTimeout)
}

func newZapLogger(level string, w io.Writer) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(strings.ToLower(level))
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encCfg),
		zapcore.AddSync(w),
		lvl,
	)
	return zap.New(core, zap.AddCaller()), nil
}

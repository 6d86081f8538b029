package sink

import (
	"context"
	"encoding/json"
	"io"
	"sync"

	"github.com/block/eventship-go/dispatch"
	"github.com/block/eventship-go/errors"
	"github.com/block/eventship-go/format"
)

// Writer writes every payload as one JSON line to an io.Writer.
// Useful for dry runs and debugging. Lines from concurrent sends
// are never interleaved.
type Writer struct {
	mu sync.Mutex
	w  io.Writer
}

var _ dispatch.Sink = &Writer{}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

type writerLine struct {
	Path     string `json:"path"`
	Payload  any    `json:"payload"`
	MetaData any    `json:"metaData,omitempty"`
}

func (s *Writer) Send(ctx context.Context, req dispatch.Request) error {
	payload, path, err := encodePayload(format.FromContext(ctx), req.Data)
	if err != nil {
		return err
	}

	line, err := json.Marshal(writerLine{Path: path, Payload: payload, MetaData: req.MetaData})
	if err != nil {
		return &errors.SendError{
			Stage:     errors.STAGE_BEFORE_REQUEST,
			Type:      errors.TYPE_JSON_ENCODE,
			SourceErr: err,
		}
	}
	line = append(line, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err = s.w.Write(line); err != nil {
		return &errors.SendError{
			Stage:     errors.STAGE_REQUEST,
			Type:      errors.TYPE_IO,
			SourceErr: err,
		}
	}
	return nil
}

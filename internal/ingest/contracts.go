package ingest

import "github.com/tinytelemetry/logrelay/internal/model"

const (
	// ProcessorNameWire is the processor for the "<ts> [<Level>] <msg>" wire format.
	ProcessorNameWire = "wire"
)

// EnvelopeProcessor consumes source-tagged ingest lines and emits parsed entries.
type EnvelopeProcessor interface {
	Name() string
	ProcessEnvelope(model.IngestEnvelope) *ProcessResult
}

// NewEnvelopeProcessor creates the wire-format processor implementation.
func NewEnvelopeProcessor(sink model.EntrySink, conf ...ProcessorConfig) EnvelopeProcessor {
	return NewProcessor(sink, conf...)
}

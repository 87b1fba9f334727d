package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/puffyCid/artemis-sub004/pkg/compress"
	"github.com/puffyCid/artemis-sub004/pkg/xcrypto"
)

// ErrNoWriter is returned when a Pipeline is asked to emit with neither a
// local writer nor a remote UploadSink configured.
var ErrNoWriter = errors.New("output: pipeline has no destination")

// Options configures a Pipeline, mirroring the teacher's typed-Options
// construction style (pe.Options{Fast, SectionEntropy, ...}).
type Options struct {
	// Compress gzips the framed JSONL stream before it reaches Writer or
	// Upload.
	Compress bool
	// Upload, if set, receives the (optionally compressed) byte stream in
	// place of a local Writer.
	Upload UploadSink
	// Registry registers the pipeline's retry/skip counters; a nil
	// Registry disables metrics rather than touching a package-level
	// default one.
	Registry *prometheus.Registry
	// Logger defaults to zap's no-op logger when nil.
	Logger *zap.SugaredLogger
}

// Pipeline frames records as JSONL, attaches CollectionMetadata, and
// writes the result to a local io.Writer or an UploadSink.
type Pipeline struct {
	opts    Options
	writer  io.Writer
	logger  *zap.SugaredLogger
	metrics *pipelineMetrics
}

type pipelineMetrics struct {
	uploadRetries prometheus.Counter
	skipped       prometheus.Counter
}

func newPipelineMetrics(reg *prometheus.Registry) *pipelineMetrics {
	if reg == nil {
		return nil
	}
	m := &pipelineMetrics{
		uploadRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "artemis_upload_retries_total",
			Help: "Number of output-chunk upload retries.",
		}),
		skipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "artemis_artifacts_skipped_total",
			Help: "Number of artifacts skipped due to a fresh marker entry.",
		}),
	}
	reg.MustRegister(m.uploadRetries, m.skipped)
	return m
}

// NewPipeline builds a Pipeline writing to w (ignored when opts.Upload is
// set).
func NewPipeline(w io.Writer, opts Options) *Pipeline {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Pipeline{
		opts:    opts,
		writer:  w,
		logger:  logger,
		metrics: newPipelineMetrics(opts.Registry),
	}
}

// Emit frames records (one JSON line per element when records is a
// []any, otherwise a single line) with meta attached to every line, then
// writes the resulting stream through the configured destination.
func (p *Pipeline) Emit(meta CollectionMetadata, records any) error {
	lines, err := frame(meta, records)
	if err != nil {
		return err
	}
	payload := bytes.Join(lines, nil)

	uncompressedMD5 := xcrypto.MD5Hex(payload)

	out := payload
	if p.opts.Compress {
		out, err = compress.Gzip(payload, -1)
		if err != nil {
			return err
		}
	}

	if p.opts.Upload != nil {
		return p.uploadWithRetry(out, uncompressedMD5)
	}
	if p.writer == nil {
		return ErrNoWriter
	}
	_, err = p.writer.Write(out)
	return err
}

// frame renders one JSONL line per element of a []any (or one line for
// any other value), injecting meta into every line.
func frame(meta CollectionMetadata, records any) ([][]byte, error) {
	elems, isArray := asArray(records)
	if !isArray {
		elems = []any{records}
	}

	lines := make([][]byte, 0, len(elems))
	for _, elem := range elems {
		envelope := map[string]any{"collection_metadata": meta}
		merged, err := mergeRecord(envelope, elem)
		if err != nil {
			return nil, err
		}
		line, err := json.Marshal(merged)
		if err != nil {
			return nil, err
		}
		line = append(line, '\n')
		lines = append(lines, line)
	}
	return lines, nil
}

// asArray reports whether records is a []any and, if so, returns it.
// Slices of any other element type are not split; they are framed as a
// single value.
func asArray(records any) ([]any, bool) {
	switch v := records.(type) {
	case []any:
		return v, true
	default:
		return nil, false
	}
}

// mergeRecord flattens record's own JSON fields alongside envelope's
// "collection_metadata" key, so a record never has to know about the
// envelope it's emitted under.
func mergeRecord(envelope map[string]any, record any) (map[string]any, error) {
	raw, err := json.Marshal(record)
	if err != nil {
		return nil, err
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		// Scalar records (not a JSON object) are carried under "value".
		var scalar any
		if err2 := json.Unmarshal(raw, &scalar); err2 != nil {
			return nil, err
		}
		fields = map[string]any{"value": scalar}
	}
	for k, v := range envelope {
		fields[k] = v
	}
	return fields, nil
}

func (p *Pipeline) uploadWithRetry(payload []byte, uncompressedMD5 string) error {
	const maxAttempts = 3
	var lastErr error
	backoff := time.Second
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := p.opts.Upload.Upload(payload, uncompressedMD5); err == nil {
			return nil
		} else {
			lastErr = err
		}
		if p.metrics != nil {
			p.metrics.uploadRetries.Inc()
		}
		p.logger.Warnw("output upload attempt failed", "attempt", attempt, "error", lastErr)
		if attempt < maxAttempts {
			time.Sleep(backoff)
			backoff *= 2
		}
	}
	return lastErr
}

// SkipCounted records one artifact skipped by a fresh marker entry, for
// callers (drivers) that decide to skip before ever calling Emit.
func (p *Pipeline) SkipCounted() {
	if p.metrics != nil {
		p.metrics.skipped.Inc()
	}
}

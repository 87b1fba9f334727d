package output

import (
	"bufio"
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/puffyCid/artemis-sub004/pkg/compress"
)

type fakeHostInfo struct{}

func (fakeHostInfo) Hostname() (string, error) { return "test-host", nil }
func (fakeHostInfo) Platform() (string, string, string, error) {
	return "22.04", "ubuntu", "5.15.0", nil
}
func (fakeHostInfo) Load() (float64, float64, float64, error) { return 0.1, 0.2, 0.3, nil }
func (fakeHostInfo) Interfaces() ([]string, error)             { return []string{"eth0"}, nil }

func TestNewMetadataStampsFields(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	meta := NewMetadata(fakeHostInfo{}, "ep1", "run1", "prefetch", "1.0.0", "2024-01-01", start, start.Add(time.Second))
	require.Equal(t, "test-host", meta.Hostname)
	require.Equal(t, "prefetch", meta.ArtifactName)
	require.NotEmpty(t, meta.UUID)
	require.Equal(t, 0.1, meta.LoadPerformance.AvgOneMin)
}

func TestPipelineEmitArrayFramesOneLinePerElement(t *testing.T) {
	var buf bytes.Buffer
	p := NewPipeline(&buf, Options{})

	meta := CollectionMetadata{ArtifactName: "history", UUID: "u1"}
	records := []any{
		map[string]any{"command": "ls"},
		map[string]any{"command": "pwd"},
	}
	require.NoError(t, p.Emit(meta, records))

	scanner := bufio.NewScanner(&buf)
	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	require.Len(t, lines, 2)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &decoded))
	require.Equal(t, "ls", decoded["command"])
	envelope, ok := decoded["collection_metadata"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "history", envelope["artifact_name"])
}

func TestPipelineEmitScalarSingleLine(t *testing.T) {
	var buf bytes.Buffer
	p := NewPipeline(&buf, Options{})

	require.NoError(t, p.Emit(CollectionMetadata{ArtifactName: "x"}, map[string]any{"value": "standalone"}))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &decoded))
	require.Equal(t, "standalone", decoded["value"])
}

func TestPipelineEmitCompressesWhenRequested(t *testing.T) {
	var buf bytes.Buffer
	p := NewPipeline(&buf, Options{Compress: true})

	require.NoError(t, p.Emit(CollectionMetadata{}, map[string]any{"a": 1}))

	decompressed, err := compress.Gunzip(buf.Bytes())
	require.NoError(t, err)
	require.Contains(t, string(decompressed), `"a":1`)
}

type recordingUploadSink struct {
	payload []byte
	md5     string
}

func (r *recordingUploadSink) Upload(payload []byte, md5 string) error {
	r.payload = payload
	r.md5 = md5
	return nil
}

func TestPipelineEmitUploadsWhenSinkConfigured(t *testing.T) {
	sink := &recordingUploadSink{}
	p := NewPipeline(nil, Options{Upload: sink})

	require.NoError(t, p.Emit(CollectionMetadata{}, map[string]any{"a": 1}))
	require.NotEmpty(t, sink.payload)
	require.NotEmpty(t, sink.md5)
}

func TestPipelineEmitNoDestinationErrors(t *testing.T) {
	p := NewPipeline(nil, Options{})
	require.ErrorIs(t, p.Emit(CollectionMetadata{}, map[string]any{"a": 1}), ErrNoWriter)
}

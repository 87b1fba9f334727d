// Package output frames parser records into JSONL, attaches the
// collection_metadata envelope, optionally compresses and uploads the
// stream, and maintains the marker-file store that lets a driver skip a
// recently-collected artifact.
package output

import (
	"net"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/load"
)

// LoadPerformance mirrors the 1/5/15-minute load averages a host_info
// block carries.
type LoadPerformance struct {
	AvgOneMin     float64 `json:"avg_one_min"`
	AvgFiveMin    float64 `json:"avg_five_min"`
	AvgFifteenMin float64 `json:"avg_fifteen_min"`
}

// CollectionMetadata is the envelope the pipeline injects into every
// emitted line. Parsers never populate this themselves.
type CollectionMetadata struct {
	EndpointID      string          `json:"endpoint_id"`
	ID              string          `json:"id"`
	UUID            string          `json:"uuid"`
	ArtifactName    string          `json:"artifact_name"`
	StartTime       string          `json:"start_time"`
	CompleteTime    string          `json:"complete_time"`
	Hostname        string          `json:"hostname"`
	OSVersion       string          `json:"os_version"`
	Platform        string          `json:"platform"`
	KernelVersion   string          `json:"kernel_version"`
	LoadPerformance LoadPerformance `json:"load_performance"`
	Version         string          `json:"version"`
	BuildDate       string          `json:"build_date"`
	Interfaces      []string        `json:"interfaces"`
}

// HostInfoProvider supplies the host-identity fields a CollectionMetadata
// envelope needs, abstracted so tests don't depend on the real machine's
// gopsutil readout.
type HostInfoProvider interface {
	Hostname() (string, error)
	Platform() (osVersion, platform, kernelVersion string, err error)
	Load() (one, five, fifteen float64, err error)
	Interfaces() ([]string, error)
}

// gopsutilHostInfo is the default HostInfoProvider, backed by
// github.com/shirou/gopsutil/v3.
type gopsutilHostInfo struct{}

func (gopsutilHostInfo) Hostname() (string, error) { return os.Hostname() }

func (gopsutilHostInfo) Platform() (string, string, string, error) {
	info, err := host.Info()
	if err != nil {
		return "", "", "", err
	}
	return info.PlatformVersion, info.Platform, info.KernelVersion, nil
}

func (gopsutilHostInfo) Load() (float64, float64, float64, error) {
	avg, err := load.Avg()
	if err != nil {
		return 0, 0, 0, err
	}
	return avg.Load1, avg.Load5, avg.Load15, nil
}

func (gopsutilHostInfo) Interfaces() ([]string, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(ifaces))
	for _, i := range ifaces {
		names = append(names, i.Name)
	}
	return names, nil
}

// NewMetadata builds one CollectionMetadata envelope for artifactName,
// stamping a fresh UUID and the given start/complete ISO-8601 timestamps
// (the caller owns "now" so emissions stay deterministic in tests).
func NewMetadata(hi HostInfoProvider, endpointID, collectionID, artifactName, version, buildDate string, start, complete time.Time) CollectionMetadata {
	if hi == nil {
		hi = gopsutilHostInfo{}
	}
	hostname, _ := hi.Hostname()
	osVersion, platform, kernel, _ := hi.Platform()
	one, five, fifteen, _ := hi.Load()
	ifaces, _ := hi.Interfaces()

	return CollectionMetadata{
		EndpointID:   endpointID,
		ID:           collectionID,
		UUID:         uuid.NewString(),
		ArtifactName: artifactName,
		StartTime:    start.UTC().Format(time.RFC3339Nano),
		CompleteTime: complete.UTC().Format(time.RFC3339Nano),
		Hostname:     hostname,
		OSVersion:    osVersion,
		Platform:     platform,
		KernelVersion: kernel,
		LoadPerformance: LoadPerformance{
			AvgOneMin: one, AvgFiveMin: five, AvgFifteenMin: fifteen,
		},
		Version:    version,
		BuildDate:  buildDate,
		Interfaces: ifaces,
	}
}

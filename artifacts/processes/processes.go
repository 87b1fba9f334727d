// Package processes enumerates the live process table: pid/ppid, owning
// user and group, command line and environment, memory usage, and
// executable path - a supplemental artifact alongside the on-disk format
// parsers, sourced not from a byte stream but from the running kernel's
// process list.
package processes

import (
	"context"
	"os"

	"github.com/shirou/gopsutil/v3/process"

	"github.com/puffyCid/artemis-sub004/pkg/enc"
	"github.com/puffyCid/artemis-sub004/pkg/xcrypto"
)

// Entry is one decoded process table row.
type Entry struct {
	PID               int32
	PPID              int32
	Name              string
	Path              string
	FullPath          string
	Arguments         string
	Environment       []string
	Status            string
	UID               string
	GID               string
	MemoryUsageBytes  uint64
	VirtualMemoryBytes uint64
	StartTime         string
	MD5               string
	SHA1              string
	SHA256            string
}

// Hashes selects which digests List computes over each process's
// executable image, mirroring the cost/benefit tradeoff a collection run
// makes explicit rather than always hashing every running binary.
type Hashes struct {
	MD5    bool
	SHA1   bool
	SHA256 bool
}

// List enumerates every process visible to the caller. A process that
// exits mid-enumeration, or whose owner/executable can't be read due to
// permissions, is still listed, with the fields that could not be read
// left empty, rather than failing the whole listing - matching the "one
// bad record doesn't fail the artifact" failure semantics every other
// parser in this repository follows.
func List(ctx context.Context, hashes Hashes) ([]Entry, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(procs))
	for _, p := range procs {
		entries = append(entries, entryFor(ctx, p, hashes))
	}
	return entries, nil
}

func entryFor(ctx context.Context, p *process.Process, hashes Hashes) Entry {
	e := Entry{PID: p.Pid}

	if name, err := p.NameWithContext(ctx); err == nil {
		e.Name = name
	}
	if ppid, err := p.PpidWithContext(ctx); err == nil {
		e.PPID = ppid
	}
	if status, err := p.StatusWithContext(ctx); err == nil && len(status) > 0 {
		e.Status = status[0]
	}
	if uids, err := p.UidsWithContext(ctx); err == nil && len(uids) > 0 {
		e.UID = itoa(uids[0])
	}
	if gids, err := p.GidsWithContext(ctx); err == nil && len(gids) > 0 {
		e.GID = itoa(gids[0])
	}
	if args, err := p.CmdlineSliceWithContext(ctx); err == nil {
		e.Arguments = joinArgs(args)
	}
	if env, err := p.EnvironWithContext(ctx); err == nil {
		e.Environment = env
	}
	if exe, err := p.ExeWithContext(ctx); err == nil {
		e.FullPath = exe
		e.Path = parentDir(exe)
	}
	if mem, err := p.MemoryInfoWithContext(ctx); err == nil && mem != nil {
		e.MemoryUsageBytes = mem.RSS
		e.VirtualMemoryBytes = mem.VMS
	}
	if createdMs, err := p.CreateTimeWithContext(ctx); err == nil {
		e.StartTime = enc.UnixMicrosToISO8601(createdMs * 1000)
	}

	if (hashes.MD5 || hashes.SHA1 || hashes.SHA256) && e.FullPath != "" {
		e.MD5, e.SHA1, e.SHA256 = hashExecutable(e.FullPath, hashes)
	}

	return e
}

func hashExecutable(path string, hashes Hashes) (md5, sha1, sha256 string) {
	f, err := os.Open(path)
	if err != nil {
		return "", "", ""
	}
	defer f.Close()

	sums, err := xcrypto.HashFile(f)
	if err != nil {
		return "", "", ""
	}
	if hashes.MD5 {
		md5 = sums.MD5
	}
	if hashes.SHA1 {
		sha1 = sums.SHA1
	}
	if hashes.SHA256 {
		sha256 = sums.SHA256
	}
	return md5, sha1, sha256
}

func parentDir(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' || path[i] == '\\' {
			return path[:i]
		}
	}
	return ""
}

func joinArgs(args []string) string {
	out := ""
	for i, a := range args {
		if i > 0 {
			out += " "
		}
		out += a
	}
	return out
}

func itoa(v int32) string {
	if v == 0 {
		return "0"
	}
	neg := v < 0
	if neg {
		v = -v
	}
	var buf [12]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

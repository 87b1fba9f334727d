package eventlog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/puffyCid/artemis-sub004/pkg/peresource"
)

// ProviderFiles is the per-provider message-file configuration read out
// of a SYSTEM hive's EventLog\Publishers key: the message and parameter
// message file paths (semicolon-separated, %SystemRoot%-qualified) a
// publisher registered.
type ProviderFiles struct {
	EventMessageFile     string
	ParameterMessageFile string
}

// FileReader abstracts the byte source a Resolver reads PE modules from,
// so resolution works the same whether the collector is walking a live
// filesystem or a mounted/acquired image.
type FileReader interface {
	ReadFile(path string) ([]byte, error)
}

// osFileReader reads directly from the local filesystem.
type osFileReader struct{}

func (osFileReader) ReadFile(path string) ([]byte, error) { return os.ReadFile(path) }

// Resolver resolves an event's provider/EventID/parameters into a
// rendered message string by loading and caching the provider's
// RT_MESSAGETABLE resource from its registered EventMessageFile. The
// WEVT_TEMPLATE resource is not consulted. One Resolver is scoped to a single
// collection run; its cache is never shared globally across runs.
type Resolver struct {
	Files  FileReader
	Expand func(string) string // environment-variable expansion, overridable for tests

	tables *lru.Cache[string, map[uint32]string]

	// loadTable loads a module's message table from raw PE bytes read
	// through Files; overridable in tests to avoid constructing a real
	// PE image.
	loadTable func(path string) (map[uint32]string, error)
}

const defaultTableCacheSize = 64

// NewResolver builds a Resolver reading PE modules through files (the
// live filesystem when nil) with a bounded per-run message-table cache.
func NewResolver(files FileReader) *Resolver {
	if files == nil {
		files = osFileReader{}
	}
	cache, _ := lru.New[string, map[uint32]string](defaultTableCacheSize)
	res := &Resolver{Files: files, Expand: expandEnv, tables: cache}
	res.loadTable = res.loadFromPE
	return res
}

// expandEnv expands %VAR% references case-insensitively, the way the
// Windows loader resolves EventMessageFile path fragments such as
// "%SystemRoot%\\System32\\kernel32.dll".
func expandEnv(path string) string {
	var out strings.Builder
	for {
		start := strings.IndexByte(path, '%')
		if start < 0 {
			out.WriteString(path)
			break
		}
		end := strings.IndexByte(path[start+1:], '%')
		if end < 0 {
			out.WriteString(path)
			break
		}
		end += start + 1
		out.WriteString(path[:start])
		name := path[start+1 : end]
		if v, ok := lookupEnvCaseInsensitive(name); ok {
			out.WriteString(v)
		} else {
			out.WriteString(path[start : end+1])
		}
		path = path[end+1:]
	}
	return out.String()
}

func lookupEnvCaseInsensitive(name string) (string, bool) {
	for _, kv := range os.Environ() {
		eq := strings.IndexByte(kv, '=')
		if eq < 0 {
			continue
		}
		if strings.EqualFold(kv[:eq], name) {
			return kv[eq+1:], true
		}
	}
	return "", false
}

// messageTable loads (and caches) path's RT_MESSAGETABLE resource, trying
// an "en-US\<basename>.mui" sibling first when the direct load fails -
// the MUI resource redirection Windows uses for localized system files.
func (res *Resolver) messageTable(path string) (map[uint32]string, error) {
	expanded := res.expandPath(path)

	if res.tables != nil {
		if t, ok := res.tables.Get(expanded); ok {
			return t, nil
		}
	}

	table, err := res.loadTable(expanded)
	if err != nil {
		return nil, err
	}
	if res.tables != nil {
		res.tables.Add(expanded, table)
	}
	return table, nil
}

// loadFromPE is the default loadTable: read path (falling back to its
// "en-US\<basename>.mui" sibling), then parse its RT_MESSAGETABLE
// resource.
func (res *Resolver) loadFromPE(path string) (map[uint32]string, error) {
	data, err := res.Files.ReadFile(path)
	if err != nil {
		muiPath := filepath.Join(filepath.Dir(path), "en-US", filepath.Base(path)+".mui")
		data, err = res.Files.ReadFile(muiPath)
		if err != nil {
			return nil, err
		}
	}

	img, err := peresource.New(data)
	if err != nil {
		return nil, err
	}
	raw, err := img.FindResourceByID(peresource.RTMessageTable, 1, 0)
	if err != nil {
		return nil, err
	}
	return peresource.MessageTable(raw)
}

func (res *Resolver) expandPath(path string) string {
	if res.Expand != nil {
		return res.Expand(path)
	}
	return path
}

// Render resolves eventID against provider's registered message files
// (trying each semicolon-separated candidate in order) and renders the
// matching format string against args, substituting "%1".."%N"
// positionally and recursively expanding any "%%Nn" parameter-message
// reference the format string embeds.
func (res *Resolver) Render(provider ProviderFiles, eventID uint32, args []string) (string, error) {
	for _, candidate := range splitPaths(provider.EventMessageFile) {
		table, err := res.messageTable(candidate)
		if err != nil {
			continue
		}
		if tmpl, ok := table[eventID]; ok {
			return res.render(tmpl, args, provider), nil
		}
	}
	return "", fmt.Errorf("eventlog: no message text for event id %d", eventID)
}

func splitPaths(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ";") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (res *Resolver) render(tmpl string, args []string, provider ProviderFiles) string {
	return renderMessage(tmpl, args, 0, func(id uint32) (string, bool) {
		for _, candidate := range splitPaths(provider.ParameterMessageFile) {
			table, err := res.messageTable(candidate)
			if err != nil {
				continue
			}
			if s, ok := table[id]; ok {
				return s, true
			}
		}
		return "", false
	})
}

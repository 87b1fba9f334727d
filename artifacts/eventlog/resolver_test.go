package eventlog

import (
	"os"
	"testing"
)

func TestExpandEnvSubstitutesCaseInsensitively(t *testing.T) {
	os.Setenv("ARTEMIS_TEST_ROOT", `C:\Windows`)
	defer os.Unsetenv("ARTEMIS_TEST_ROOT")

	got := expandEnv(`%artemis_test_root%\System32\kernel32.dll`)
	want := `C:\Windows\System32\kernel32.dll`
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestExpandEnvLeavesUnknownVarLiteral(t *testing.T) {
	got := expandEnv(`%NoSuchArtemisVar%\foo.dll`)
	if got != `%NoSuchArtemisVar%\foo.dll` {
		t.Fatalf("got %q", got)
	}
}

func TestSplitPathsTrimsAndFiltersEmpty(t *testing.T) {
	got := splitPaths(` a.dll ;; b.dll `)
	if len(got) != 2 || got[0] != "a.dll" || got[1] != "b.dll" {
		t.Fatalf("got %+v", got)
	}
}

func TestResolverRenderUsesCachedTable(t *testing.T) {
	res := NewResolver(nil)
	calls := 0
	res.loadTable = func(path string) (map[uint32]string, error) {
		calls++
		return map[uint32]string{100: "Logon by %1 succeeded."}, nil
	}

	provider := ProviderFiles{EventMessageFile: `%SystemRoot%\System32\sample.dll`}
	res.Expand = func(s string) string { return s }

	got, err := res.Render(provider, 100, []string{"alice"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got != "Logon by alice succeeded." {
		t.Fatalf("got %q", got)
	}

	if _, err := res.Render(provider, 100, []string{"bob"}); err != nil {
		t.Fatalf("Render second call: %v", err)
	}
	if calls != 1 {
		t.Fatalf("loadTable called %d times, want 1 (cache miss on second call)", calls)
	}
}

func TestResolverRenderExpandsParameterMessage(t *testing.T) {
	res := NewResolver(nil)
	res.Expand = func(s string) string { return s }
	res.loadTable = func(path string) (map[uint32]string, error) {
		switch path {
		case "events.dll":
			return map[uint32]string{1: "Access level: %%5121"}, nil
		case "params.dll":
			return map[uint32]string{5121: "Administrator"}, nil
		}
		return nil, os.ErrNotExist
	}

	provider := ProviderFiles{EventMessageFile: "events.dll", ParameterMessageFile: "params.dll"}
	got, err := res.Render(provider, 1, nil)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got != "Access level: Administrator" {
		t.Fatalf("got %q", got)
	}
}

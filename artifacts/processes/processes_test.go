package processes

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestListReturnsTheCallingProcess(t *testing.T) {
	entries, err := List(context.Background(), Hashes{})
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	found := false
	for _, e := range entries {
		if e.Name != "" {
			found = true
			break
		}
	}
	require.True(t, found, "expected at least one process with a resolved name")
}

func TestItoaRoundTripsSignedValues(t *testing.T) {
	require.Equal(t, "0", itoa(0))
	require.Equal(t, "501", itoa(501))
	require.Equal(t, "-12", itoa(-12))
}

func TestJoinArgsSpacesArguments(t *testing.T) {
	require.Equal(t, "", joinArgs(nil))
	require.Equal(t, "a", joinArgs([]string{"a"}))
	require.Equal(t, "a b c", joinArgs([]string{"a", "b", "c"}))
}

func TestParentDirHandlesBothSeparators(t *testing.T) {
	require.Equal(t, "/usr/bin", parentDir("/usr/bin/bash"))
	require.Equal(t, `C:\Windows`, parentDir(`C:\Windows\explorer.exe`))
	require.Equal(t, "", parentDir("noslash"))
}

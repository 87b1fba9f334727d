package main

import (
	"fmt"
	"os"
	"time"

	"github.com/puffyCid/artemis-sub004/artifacts/fsevents"
	"github.com/puffyCid/artemis-sub004/artifacts/history"
	"github.com/puffyCid/artemis-sub004/artifacts/mft"
	"github.com/puffyCid/artemis-sub004/artifacts/prefetch"
)

// runDump wires a small representative set of byte-slice-in,
// records-out parsers to the CLI directly. Artifacts that need a
// registry hive, an ESE database, or an OLECF container (wmi, bits,
// search, shimdb, ole, outlook) take more than a bare path to
// construct and are not wired here; the script runtime registers no
// host function for them either.
func runDump(artifact, path string, pretty bool) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	switch artifact {
	case "prefetch":
		record, err := prefetch.Parse(raw)
		if err != nil {
			return err
		}
		return printJSON(record, pretty)

	case "mft":
		records, err := mft.Parse(raw, 512)
		if err != nil {
			return err
		}
		return printJSON(records, pretty)

	case "bash-history":
		return printJSON(history.ParseBash(raw), pretty)

	case "zsh-history":
		return printJSON(history.ParseZsh(raw), pretty)

	case "fsevents":
		records, err := fsevents.Parse(raw, time.Now().UTC().Format(time.RFC3339))
		if err != nil {
			return err
		}
		return printJSON(records, pretty)

	default:
		return fmt.Errorf("unknown artifact %q (want one of: prefetch, mft, bash-history, zsh-history, fsevents)", artifact)
	}
}

// Package history parses shell history files: bash's alternating
// "#epoch\ncommand" form and zsh's single-line ": epoch:duration;command"
// extended form. Both emit ISO-8601 timestamps; commands with no known
// timestamp carry an empty one rather than a fabricated epoch.
package history

import (
	"bufio"
	"bytes"
	"strconv"
	"strings"

	"github.com/puffyCid/artemis-sub004/pkg/enc"
)

// Entry is one decoded history line.
type Entry struct {
	History   string
	Timestamp string
	Line      int
}

// ParseBash decodes a .bash_history file. A line beginning with '#' followed
// by an all-digit epoch establishes the timestamp of the very next
// non-blank line that is not itself such a marker (a line starting with
// '#' but not all digits is emitted as a command); commands with no
// preceding "#epoch" marker are emitted with an empty Timestamp.
func ParseBash(raw []byte) []Entry {
	var out []Entry
	scanner := bufio.NewScanner(bytes.NewReader(raw))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	pendingTS := ""
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if ts, ok := bashEpoch(line); ok {
			pendingTS = ts
			continue
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		out = append(out, Entry{History: line, Timestamp: pendingTS, Line: lineNo})
		pendingTS = ""
	}
	return out
}

// bashEpoch reports whether line is a "#NNNN" timestamp marker, returning
// its ISO-8601 rendering.
func bashEpoch(line string) (string, bool) {
	if !strings.HasPrefix(line, "#") {
		return "", false
	}
	digits := line[1:]
	if digits == "" {
		return "", false
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return "", false
		}
	}
	sec, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return "", false
	}
	return enc.UnixSecondsToISO8601(sec), true
}

// ParseZsh decodes a .zsh_history file. Extended-history lines follow
// ": <epoch>:<duration>;<command>"; any other line is emitted command-only
// with an empty Timestamp; non-matching lines pass through as
// command-only.
func ParseZsh(raw []byte) []Entry {
	var out []Entry
	scanner := bufio.NewScanner(bytes.NewReader(raw))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		ts, cmd, ok := zshExtended(line)
		if !ok {
			out = append(out, Entry{History: line, Timestamp: "", Line: lineNo})
			continue
		}
		out = append(out, Entry{History: cmd, Timestamp: ts, Line: lineNo})
	}
	return out
}

// zshExtended parses the ": epoch:duration;command" extended-history form.
func zshExtended(line string) (ts, cmd string, ok bool) {
	if !strings.HasPrefix(line, ": ") {
		return "", "", false
	}
	rest := line[2:]
	semi := strings.IndexByte(rest, ';')
	if semi < 0 {
		return "", "", false
	}
	meta := rest[:semi]
	cmd = rest[semi+1:]
	colon := strings.IndexByte(meta, ':')
	if colon < 0 {
		return "", "", false
	}
	epochStr := meta[:colon]
	sec, err := strconv.ParseInt(epochStr, 10, 64)
	if err != nil {
		return "", "", false
	}
	if sec == 0 {
		return "", cmd, true
	}
	return enc.UnixSecondsToISO8601(sec), cmd, true
}

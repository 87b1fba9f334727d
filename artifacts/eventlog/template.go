package eventlog

import (
	"strconv"
	"strings"
)

// maxParameterDepth bounds "%%Nn" recursive expansion so a parameter
// message file that references itself (directly or through a cycle of
// a few providers) can't recurse forever.
const maxParameterDepth = 8

// renderMessage substitutes a message-table format string's "%1".."%N"
// positional placeholders with args (1-indexed) and expands any
// "%%Nn" parameter-message reference by looking it up through lookup,
// recursively rendering the referenced string against the same args.
func renderMessage(tmpl string, args []string, depth int, lookup func(id uint32) (string, bool)) string {
	var out strings.Builder
	i := 0
	for i < len(tmpl) {
		if tmpl[i] != '%' {
			out.WriteByte(tmpl[i])
			i++
			continue
		}
		if i+1 < len(tmpl) && tmpl[i+1] == '%' {
			if depth < maxParameterDepth {
				if id, n, ok := readDigits(tmpl, i+2); ok {
					if s, found := lookup(uint32(id)); found {
						out.WriteString(renderMessage(s, args, depth+1, lookup))
						i = n
						continue
					}
				}
			}
			out.WriteByte('%')
			i++
			continue
		}
		if idx, n, ok := readDigits(tmpl, i+1); ok {
			if idx >= 1 && idx <= len(args) {
				out.WriteString(args[idx-1])
			}
			i = n
			continue
		}
		out.WriteByte('%')
		i++
	}
	return out.String()
}

// readDigits parses a decimal run starting at pos, returning the parsed
// value and the index just past it.
func readDigits(s string, pos int) (int, int, bool) {
	start := pos
	for pos < len(s) && s[pos] >= '0' && s[pos] <= '9' {
		pos++
	}
	if pos == start {
		return 0, pos, false
	}
	v, err := strconv.Atoi(s[start:pos])
	if err != nil {
		return 0, pos, false
	}
	return v, pos, true
}

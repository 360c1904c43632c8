package project

import "strings"

type section struct {
	name   string
	values map[string]string
}

// parseIni reads `key = value` lines grouped by [section] headers. Lines
// starting with ; or # are comments, values are trimmed of blanks and quotes.
// Keys before the first section are returned in top.
func parseIni(data string) (top map[string]string, sections []section) {
	top = make(map[string]string)
	cur := top
	for _, line := range strings.Split(data, "\n") {
		if line == "" || line[0] == ';' || line[0] == '#' {
			continue
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line[0] == '[' && line[len(line)-1] == ']' {
			name := line[1 : len(line)-1]
			cur = make(map[string]string)
			sections = append(sections, section{name: name, values: cur})
			continue
		}
		pos := strings.IndexByte(line, '=')
		if pos < 0 {
			continue
		}
		key := strings.TrimSpace(line[:pos])
		cur[key] = strings.Trim(line[pos+1:], " '\t\"")
	}
	return top, sections
}

package configwriter

import (
	"strings"
)

// applySettings rewrites ini content so each desired key holds its
// desired value. Unknown keys, comments, blank lines and section order
// are preserved verbatim. A key already at the desired value produces
// identical output.
func applySettings(content []byte, settings []Setting) []byte {
	lines := strings.Split(string(content), "\n")
	trailingNewline := strings.HasSuffix(string(content), "\n")
	if trailingNewline && len(lines) > 0 {
		lines = lines[:len(lines)-1]
	}
	if len(content) == 0 {
		lines = nil
	}

	pending := make([]Setting, len(settings))
	copy(pending, settings)

	var out []string
	section := ""
	sectionEnd := map[string]int{}

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
			section = trimmed[1 : len(trimmed)-1]
			out = append(out, line)
			sectionEnd[section] = len(out)
			continue
		}
		if key, ok := iniKey(trimmed); ok {
			if idx := settingFor(pending, section, key); idx >= 0 {
				out = append(out, key+"="+pending[idx].Value)
				pending = append(pending[:idx], pending[idx+1:]...)
				sectionEnd[section] = len(out)
				continue
			}
		}
		out = append(out, line)
		if trimmed != "" {
			sectionEnd[section] = len(out)
		}
	}

	// Keys whose section exists but which the file does not set yet go
	// at the end of their section; new sections go at the end of file.
	for len(pending) > 0 {
		s := pending[0]
		pending = pending[1:]
		if end, ok := sectionEnd[s.Section]; ok {
			line := s.Key + "=" + s.Value
			out = append(out[:end], append([]string{line}, out[end:]...)...)
			sectionEnd[s.Section] = end + 1
			for name, e := range sectionEnd {
				if name != s.Section && e >= end {
					sectionEnd[name] = e + 1
				}
			}
			continue
		}
		if len(out) > 0 && strings.TrimSpace(out[len(out)-1]) != "" {
			out = append(out, "")
		}
		out = append(out, "["+s.Section+"]")
		sectionEnd[s.Section] = len(out)
		out = append(out, s.Key+"="+s.Value)
		sectionEnd[s.Section] = len(out)
	}

	result := strings.Join(out, "\n")
	if len(out) > 0 {
		result += "\n"
	}
	return []byte(result)
}

func iniKey(trimmed string) (string, bool) {
	if trimmed == "" || strings.HasPrefix(trimmed, ";") || strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, "//") {
		return "", false
	}
	eq := strings.Index(trimmed, "=")
	if eq <= 0 {
		return "", false
	}
	return strings.TrimSpace(trimmed[:eq]), true
}

func settingFor(pending []Setting, section, key string) int {
	for i, s := range pending {
		if s.Section == section && s.Key == key {
			return i
		}
	}
	return -1
}

package xmldoc

import "bytes"

type rawAttr struct {
	local  string
	quoted bool
}

// scanDelimiters reads the attribute names of a raw start tag and whether
// each value is quoted. encoding/xml accepts unquoted and missing values
// in non-strict mode without saying so.
func scanDelimiters(tag []byte) []rawAttr {
	i := 1
	for i < len(tag) && !isSpace(tag[i]) && tag[i] != '>' && tag[i] != '/' {
		i++
	}
	var out []rawAttr
	for {
		i = skipSpace(tag, i)
		if i >= len(tag) || tag[i] == '>' || tag[i] == '/' {
			return out
		}
		nameStart := i
		for i < len(tag) && !isSpace(tag[i]) && tag[i] != '=' && tag[i] != '>' && tag[i] != '/' {
			i++
		}
		name := tag[nameStart:i]
		if colon := bytes.LastIndexByte(name, ':'); colon >= 0 {
			name = name[colon+1:]
		}
		attr := rawAttr{local: string(name)}
		i = skipSpace(tag, i)
		if i < len(tag) && tag[i] == '=' {
			i = skipSpace(tag, i+1)
			if i < len(tag) && (tag[i] == '"' || tag[i] == '\'') {
				quote := tag[i]
				end := bytes.IndexByte(tag[i+1:], quote)
				if end < 0 {
					return append(out, attr)
				}
				attr.quoted = true
				i += end + 2
			} else {
				for i < len(tag) && !isSpace(tag[i]) && tag[i] != '>' {
					i++
				}
			}
		}
		out = append(out, attr)
	}
}

func skipSpace(b []byte, i int) int {
	for i < len(b) && isSpace(b[i]) {
		i++
	}
	return i
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

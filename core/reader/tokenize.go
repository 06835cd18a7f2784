package reader

// field is one whitespace-delimited data token. Quoted records whether the
// token was wrapped in double quotes on disk, which keeps the quoted string
// "nil" distinct from the bare null sentinel.
type field struct {
	text   string
	quoted bool
}

// splitFields tokenizes one data line: runs of spaces and tabs separate
// fields, and a double-quoted field may contain them. The format has no
// escape sequences inside quotes.
func splitFields(line string) []field {
	var fields []field
	i := 0
	for i < len(line) {
		for i < len(line) && (line[i] == ' ' || line[i] == '\t') {
			i++
		}
		if i >= len(line) {
			break
		}
		if line[i] == '"' {
			j := i + 1
			for j < len(line) && line[j] != '"' {
				j++
			}
			fields = append(fields, field{text: line[i+1 : j], quoted: true})
			i = j + 1
			continue
		}
		j := i
		for j < len(line) && line[j] != ' ' && line[j] != '\t' {
			j++
		}
		fields = append(fields, field{text: line[i:j]})
		i = j
	}
	return fields
}

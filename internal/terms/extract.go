package terms

// Fields exposes the text-bearing fields of a document. A missing field, or
// one that does not hold text, reports false.
type Fields interface {
	Field(name string) (string, bool)
}

// Extract returns the terms of the Title field followed by the terms of the
// Body field. Absent fields contribute nothing; the result may be empty.
func Extract(doc Fields) []string {
	var out []string
	if title, ok := doc.Field("Title"); ok {
		out = append(out, Tokenize(title)...)
	}
	if body, ok := doc.Field("Body"); ok {
		out = append(out, Tokenize(body)...)
	}
	return out
}

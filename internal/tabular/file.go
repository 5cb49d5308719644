package tabular

import "os"

// LoadFile reads and parses path.
func LoadFile(path string) (Document, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(string(b)), nil
}

// WriteFile serializes doc and overwrites path.
func WriteFile(path string, doc Document) error {
	return os.WriteFile(path, []byte(Format(doc)), 0o644)
}

package description

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrDecode is returned when a description payload cannot be parsed at all.
var ErrDecode = errors.New("description: decode failed")

// Format selects the wire format of a description payload.
type Format int

const (
	// FormatAuto sniffs the payload: a leading '{' is JSON, anything else is YAML.
	FormatAuto Format = iota
	FormatJSON
	FormatYAML
)

// FormatFromPath picks a format from a file extension.
//
// Parameters:
//   - path: the file path
//
// Returns:
//   - Format: FormatJSON for .json, FormatYAML for .yaml/.yml, FormatAuto otherwise
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatAuto
	}
}

// Decode parses a description payload.
//
// Parameters:
//   - data: the raw payload
//   - format: the payload format, or FormatAuto to sniff it
//
// Returns:
//   - *Description: the decoded description
//   - error: an ErrDecode-wrapped error if the payload is not a description
func Decode(data []byte, format Format) (*Description, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty payload", ErrDecode)
	}
	if format == FormatAuto {
		format = FormatYAML
		if trimmed[0] == '{' {
			format = FormatJSON
		}
	}

	d := &Description{}
	var err error
	switch format {
	case FormatJSON:
		err = json.Unmarshal(trimmed, d)
	default:
		err = yaml.Unmarshal(trimmed, d)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return d, nil
}

// Load reads and decodes a description file.
//
// Parameters:
//   - path: the file to read
//
// Returns:
//   - *Description: the decoded description
//   - error: an error if the file cannot be read or decoded
func Load(path string) (*Description, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("description: read %s: %w", path, err)
	}
	d, err := Decode(data, FormatFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// Encode serializes d in the given format. FormatAuto encodes YAML.
//
// Parameters:
//   - d: the description to encode
//   - format: the output format
//
// Returns:
//   - []byte: the encoded payload
//   - error: an error if encoding failed
func Encode(d *Description, format Format) ([]byte, error) {
	if format == FormatJSON {
		return json.MarshalIndent(d, "", "  ")
	}
	return yaml.Marshal(d)
}

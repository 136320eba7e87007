// Package xmlio reads payload files and writes response files for the
// aeat-sender CLI. Payloads are forwarded exactly as read; well-formedness
// is probed so the operator can be warned, never enforced, because the
// invoicing system upstream owns payload correctness.
package xmlio

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/beevik/etree"
)

// MaxPayloadSize caps input files at 10 MiB. The largest SII batch (10,000
// invoice records) stays well below this; anything bigger is a wrong file.
const MaxPayloadSize = 10 << 20

// ReadPayload reads the input XML file. The bytes are returned exactly as
// stored; no decoding, trimming or validation happens here.
func ReadPayload(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("reading payload %s: %w", path, err)
	}
	if info.Size() > MaxPayloadSize {
		return nil, fmt.Errorf("payload %s is %d bytes, above the %d byte limit", path, info.Size(), MaxPayloadSize)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading payload %s: %w", path, err)
	}
	return data, nil
}

// WellFormed reports whether data parses as an XML document. Callers warn
// on false but still send: AEAT's reply is the authoritative verdict.
func WellFormed(data []byte) bool {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return false
	}
	return doc.Root() != nil
}

// WriteResponse stores a reply under dir as
// respuesta_<system>_<environment>_<yyyymmdd_hhmmss>.xml, creating the
// directory if needed, and returns the written path.
func WriteResponse(dir, system, environment string, data []byte) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory %s: %w", dir, err)
	}

	name := fmt.Sprintf("respuesta_%s_%s_%s.xml",
		system, environment, time.Now().Format("20060102_150405"))
	path := filepath.Join(dir, name)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing response %s: %w", path, err)
	}
	return path, nil
}

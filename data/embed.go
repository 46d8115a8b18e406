// Package data provides the embedded sample collection.
package data

import (
	"embed"
	"io"
)

// SampleCollectionFile is the embedded collection the CLI falls back to.
const SampleCollectionFile = "sample_collection.yaml"

// dataFS embeds all YAML files from the data directory at build time.
//
//go:embed *.yaml
var dataFS embed.FS

// SampleCollection opens the embedded sample collection.
func SampleCollection() (io.ReadCloser, error) {
	return dataFS.Open(SampleCollectionFile)
}

// Package manifest loads batch upload manifests written in CUE.
//
// A manifest names a set of artifacts to push in one batch:
//
//	defaults: {
//		app:   "arkdex"
//		owner: "alice"
//	}
//	artifacts: [{
//		source:      "data/mnist-train.parquet"
//		datasetName: "mnist"
//		split:       "train"
//		version:     "1.0.0"
//		contentType: "application/x-parquet"
//		extra: {license: "CC-BY-4.0"}
//	}]
//
// Entry-level fields override defaults. CUE (rather than a plain data
// format) lets a manifest compute entries, share constants, and enforce its
// own constraints before this loader ever sees it.
package manifest

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/arkdex/arkdex/internal/record"
)

// Defaults are manifest-wide fallback values for entry fields.
type Defaults struct {
	App         string `json:"app"`
	Owner       string `json:"owner"`
	ContentType string `json:"contentType"`
}

// Entry describes one artifact to upload.
type Entry struct {
	Source      string            `json:"source"` // payload path, relative to the manifest
	DatasetName string            `json:"datasetName"`
	Split       string            `json:"split"`
	Version     string            `json:"version"`
	Owner       string            `json:"owner"`
	App         string            `json:"app"`
	ContentType string            `json:"contentType"`
	Extra       map[string]string `json:"extra"`
}

// Manifest is a parsed batch upload manifest.
type Manifest struct {
	Defaults Defaults
	Entries  []Entry
}

// LoadError describes a manifest that failed to parse or validate.
type LoadError struct {
	Message string
	Pos     token.Pos
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Message)
	}
	return e.Message
}

// LoadFile reads and parses a CUE manifest from disk.
func LoadFile(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return Load(data, path)
}

// Load parses a CUE manifest from source bytes. filename is used in error
// positions only.
func Load(source []byte, filename string) (*Manifest, error) {
	ctx := cuecontext.New()

	v := ctx.CompileBytes(source, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	m := &Manifest{}

	defaultsVal := v.LookupPath(cue.ParsePath("defaults"))
	if defaultsVal.Exists() {
		if err := defaultsVal.Decode(&m.Defaults); err != nil {
			return nil, formatCUEError(err)
		}
	}

	artifactsVal := v.LookupPath(cue.ParsePath("artifacts"))
	if !artifactsVal.Exists() {
		return nil, &LoadError{Message: "manifest has no artifacts list", Pos: v.Pos()}
	}

	iter, err := artifactsVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for iter.Next() {
		var entry Entry
		if err := iter.Value().Decode(&entry); err != nil {
			return nil, formatCUEError(err)
		}
		applyDefaults(&entry, m.Defaults)
		if err := validateEntry(entry, iter.Value().Pos()); err != nil {
			return nil, err
		}
		m.Entries = append(m.Entries, entry)
	}

	if len(m.Entries) == 0 {
		return nil, &LoadError{Message: "manifest artifacts list is empty", Pos: artifactsVal.Pos()}
	}

	return m, nil
}

// Tags builds the artifact tag bag for an entry. createdAt is stamped by
// the caller at push time.
func (e Entry) Tags(createdAt string) record.Tags {
	return record.Tags{
		App:         e.App,
		ContentType: e.ContentType,
		DatasetName: e.DatasetName,
		Split:       e.Split,
		Version:     e.Version,
		Owner:       e.Owner,
		CreatedAt:   createdAt,
		Extra:       e.Extra,
	}
}

func applyDefaults(entry *Entry, d Defaults) {
	if entry.App == "" {
		entry.App = d.App
	}
	if entry.Owner == "" {
		entry.Owner = d.Owner
	}
	if entry.ContentType == "" {
		entry.ContentType = d.ContentType
	}
}

func validateEntry(entry Entry, pos token.Pos) error {
	required := []struct {
		name  string
		value string
	}{
		{"source", entry.Source},
		{"datasetName", entry.DatasetName},
		{"split", entry.Split},
		{"version", entry.Version},
		{"owner", entry.Owner},
		{"app", entry.App},
		{"contentType", entry.ContentType},
	}
	for _, f := range required {
		if f.value == "" {
			return &LoadError{
				Message: fmt.Sprintf("artifact entry is missing %q (set it on the entry or in defaults)", f.name),
				Pos:     pos,
			}
		}
	}
	return nil
}

// formatCUEError converts a CUE error into a positioned LoadError.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	firstErr := errs[0]
	pos := token.NoPos
	if positions := cueerrors.Positions(firstErr); len(positions) > 0 {
		pos = positions[0]
	}
	return &LoadError{Message: firstErr.Error(), Pos: pos}
}

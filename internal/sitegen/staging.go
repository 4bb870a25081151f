package sitegen

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"

	ferrors "git.home.luguber.info/inful/contentpipe/internal/foundation/errors"
	"git.home.luguber.info/inful/contentpipe/internal/logfields"
)

// staging is a sibling directory the build writes into before it replaces
// the output directory.
type staging struct {
	dir    string
	output string
}

func beginStaging(output string) (*staging, error) {
	dir := filepath.Clean(output) + "_stage"
	if err := os.RemoveAll(dir); err != nil {
		return nil, fsError(err, "clear staging directory", dir)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fsError(err, "create staging directory", dir)
	}
	slog.Debug("Initialized staging directory", logfields.Path(dir))
	return &staging{dir: dir, output: filepath.Clean(output)}, nil
}

func (s *staging) writeFile(rel string, data []byte) error {
	path := filepath.Join(s.dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fsError(err, "create directory", filepath.Dir(path))
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fsError(err, "write file", path)
	}
	return nil
}

func (s *staging) writeJSON(rel string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryInternal, "encode "+rel).Build()
	}
	return s.writeFile(rel, append(data, '\n'))
}

// finalize promotes the staging directory: the current output moves to
// <output>.prev, staging is renamed to output and the backup is removed.
func (s *staging) finalize() error {
	prev := s.output + ".prev"
	if err := os.RemoveAll(prev); err != nil {
		return fsError(err, "remove previous backup", prev)
	}
	hadOutput := false
	if _, err := os.Stat(s.output); err == nil {
		if err := os.Rename(s.output, prev); err != nil {
			return fsError(err, "back up output directory", s.output)
		}
		hadOutput = true
	}
	if err := os.MkdirAll(filepath.Dir(s.output), 0o755); err != nil {
		return fsError(err, "create output parent", filepath.Dir(s.output))
	}
	if err := os.Rename(s.dir, s.output); err != nil {
		if hadOutput {
			_ = os.Rename(prev, s.output)
		}
		return fsError(err, "promote staging directory", s.dir)
	}
	if hadOutput {
		if err := os.RemoveAll(prev); err != nil {
			slog.Warn("Failed to remove previous output", logfields.Path(prev), logfields.Error(err))
		}
	}
	return nil
}

func (s *staging) abort() {
	if err := os.RemoveAll(s.dir); err != nil {
		slog.Warn("Failed to remove staging directory", logfields.Path(s.dir), logfields.Error(err))
	}
}

func fsError(err error, msg, path string) error {
	return ferrors.WrapError(err, ferrors.CategoryFileSystem, msg).WithContext("path", path).Build()
}

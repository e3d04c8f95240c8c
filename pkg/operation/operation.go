// Copyright 2025 docrules LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package operation wires the replacement engine to the filesystem: it
// selects documents by glob, runs batches over them, and writes results.
// The engine itself stays pure; all I/O lives here.
package operation

import (
	"context"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"gitlab.com/tozd/go/errors"

	"github.com/docrules/batchreplace/pkg/config"
	"github.com/docrules/batchreplace/pkg/log"
)

// 🎯 Operation is a single runnable unit of work
type Operation interface {
	// 🏃 Execute runs the operation
	Execute(ctx context.Context) error
	// 📝 Name returns the operation name for logging
	Name() string
}

// 🔧 Options contains configuration for operations
type Options struct {
	// Config is the loaded batchreplace configuration
	Config *config.Config
	// Logger renders user-facing console output
	Logger *log.Logger
}

// 📦 BaseOperation contains common operation fields
type BaseOperation struct {
	Config *config.Config
	Logger *log.Logger
}

// 🏭 NewBaseOperation creates a new base operation
func NewBaseOperation(opts Options) BaseOperation {
	return BaseOperation{
		Config: opts.Config,
		Logger: opts.Logger,
	}
}

// 📄 selectDocuments resolves the config's document globs to a sorted,
// de-duplicated list of file paths.
func (op *BaseOperation) selectDocuments() ([]string, error) {
	seen := map[string]struct{}{}
	var files []string
	for _, pattern := range op.Config.Documents {
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, errors.Errorf("resolving document glob %q: %w", pattern, err)
		}
		for _, m := range matches {
			info, err := os.Stat(m)
			if err != nil || info.IsDir() {
				continue
			}
			if _, dup := seen[m]; dup {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	sort.Strings(files)
	return files, nil
}

// 📄 readDocument reads one document as text.
func readDocument(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", errors.Errorf("reading document: %w", err)
	}
	return string(data), nil
}

// 📄 outputPath decides where a rewritten document lands: under OutputDir
// when configured, in place otherwise.
func (op *BaseOperation) outputPath(docPath string) string {
	if op.Config.OutputDir == "" {
		return docPath
	}
	return filepath.Join(op.Config.OutputDir, filepath.Base(docPath))
}

// 📄 writeDocument writes a rewritten document, creating the output
// directory when needed.
func (op *BaseOperation) writeDocument(path, content string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Errorf("creating output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return errors.Errorf("writing document: %w", err)
	}
	return nil
}

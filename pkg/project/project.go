// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package project

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gabrielekarra/neurocode/internal/config"
	"github.com/gabrielekarra/neurocode/pkg/extract"
	"github.com/gabrielekarra/neurocode/pkg/resolver"
	"github.com/gabrielekarra/neurocode/pkg/rir"
	"github.com/gabrielekarra/neurocode/pkg/toon"
)

// excludedDirs are skipped entirely during discovery, matching the
// original implementation's venv/build-artifact skip list.
var excludedDirs = map[string]bool{
	".venv":       true,
	"venv":        true,
	"dist":        true,
	"build":       true,
	"__pycache__": true,
	".git":        true,
	".neurocode":  true,
}

// Project scopes every engine operation to one repository root and its
// loaded configuration.
type Project struct {
	Root   string
	Config config.Config
	Logger *slog.Logger
}

// Open loads repoRoot's configuration (or DefaultConfig if none exists)
// and returns a Project scoped to it.
func Open(repoRoot string, logger *slog.Logger) (*Project, error) {
	absRoot, err := filepath.Abs(repoRoot)
	if err != nil {
		return nil, fmt.Errorf("resolve repo root: %w", err)
	}
	cfg, err := config.Load(absRoot)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Project{Root: absRoot, Config: cfg, Logger: logger}, nil
}

// IRPath is the conventional on-disk location of the serialized repository
// IR, relative to the project root.
func (p *Project) IRPath() string {
	return filepath.Join(p.Root, ".neurocode", "ir.toon")
}

// EmbeddingStorePath is the conventional on-disk location of the
// embedding store, relative to the project root.
func (p *Project) EmbeddingStorePath() string {
	return filepath.Join(p.Root, ".neurocode", "ir-embeddings.toon")
}

// DiscoverPythonFiles walks root and returns paths (relative to root,
// slash-separated, sorted) to every *.py file not under an excluded
// directory.
func DiscoverPythonFiles(root string) ([]string, error) {
	var rel []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		relPath, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}
		if relPath == "." {
			return nil
		}
		base := filepath.Base(relPath)
		if d.IsDir() {
			if excludedDirs[base] {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(relPath, ".py") {
			rel = append(rel, filepath.ToSlash(relPath))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk repository: %w", err)
	}
	sort.Strings(rel)
	return rel, nil
}

// BuildResult summarizes one Build call.
type BuildResult struct {
	Repository    *rir.Repository
	FilesScanned  int
	FilesParsed   int
	ParseErrors   int
}

// Build discovers every Python file under p.Root, extracts an unresolved
// module IR from each, and resolves the result into a repository-wide IR.
// Files that fail to parse are skipped and counted in ParseErrors, matching
// the original implementation's best-effort discovery pass.
func (p *Project) Build() (*BuildResult, error) {
	relPaths, err := DiscoverPythonFiles(p.Root)
	if err != nil {
		return nil, err
	}

	parser := extract.NewTreeSitterParser(p.Logger)

	var modules []rir.ModuleIR
	parseErrors := 0
	for _, relPath := range relPaths {
		content, readErr := os.ReadFile(filepath.Join(p.Root, relPath))
		if readErr != nil {
			parseErrors++
			p.Logger.Warn("project.build.read_error", "path", relPath, "err", readErr)
			continue
		}
		mod, extractErr := parser.ExtractFile(relPath, content)
		if extractErr != nil {
			parseErrors++
			p.Logger.Warn("project.build.parse_error", "path", relPath, "err", extractErr)
			continue
		}
		modules = append(modules, *mod)
	}

	repo := resolver.Resolve(p.Root, modules)

	return &BuildResult{
		Repository:   repo,
		FilesScanned: len(relPaths),
		FilesParsed:  len(modules),
		ParseErrors:  parseErrors,
	}, nil
}

// SaveRepository serializes repo to p.IRPath(), creating the .neurocode
// directory if needed.
func (p *Project) SaveRepository(repo *rir.Repository) error {
	dir := filepath.Dir(p.IRPath())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create ir dir: %w", err)
	}
	if err := os.WriteFile(p.IRPath(), []byte(toon.Serialize(repo)), 0o644); err != nil {
		return fmt.Errorf("write ir: %w", err)
	}
	return nil
}

// LoadRepository reads and parses the repository IR from p.IRPath().
func (p *Project) LoadRepository() (*rir.Repository, error) {
	data, err := os.ReadFile(p.IRPath())
	if err != nil {
		return nil, fmt.Errorf("read ir: %w", err)
	}
	repo, err := toon.Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("parse ir: %w", err)
	}
	return repo, nil
}


package main

import (
	"sort"
	"strings"
)

// tempDirNames is the fixed set of directory names treated as reclaimable.
// Matching is exact and case-sensitive: "node_modules" matches, while
// "my_node_modules" or "node_modules2" never do. Missing a cache directory
// is fine; flagging a directory the user meant to keep is not, so the set
// stays conservative and substring matching is deliberately absent.
var tempDirNames = []string{
	// Node.js / JavaScript
	"node_modules",
	".npm",
	".yarn",
	".pnpm-store",
	".turbo",
	".parcel-cache",
	".webpack",
	".rollup.cache",
	".vite",
	".next",
	".nuxt",
	".output",
	".vercel",
	".netlify",
	"bower_components",

	// Python
	".venv",
	"venv",
	"env",
	".env",
	"__pycache__",
	".pytest_cache",
	".mypy_cache",
	".tox",
	".eggs",
	".ipynb_checkpoints",

	// Rust
	"target",
	".fingerprint",
	".cargo",

	// Build outputs
	"dist",
	"build",
	"out",
	".build",
	"_build",
	".gradle",
	".mvn",

	// Caches
	".cache",
	"cache",
	".tmp",
	"tmp",
	"temp",
	".temp",

	// Version managers
	".nvm",
	".rvm",
	".rbenv",
	".pyenv",

	// IDEs and editors
	".idea",
	".vscode",
	".vs",
	".eclipse",
	".settings",

	// OS artifacts
	".DS_Store",
	"Thumbs.db",
	".Trash",

	// Coverage and doc tooling
	"coverage",
	".coverage",
	".nyc_output",
	"htmlcov",
	".sass-cache",
	".docusaurus",
}

var defaultTempSet = func() map[string]struct{} {
	set := make(map[string]struct{}, len(tempDirNames))
	for _, name := range tempDirNames {
		set[name] = struct{}{}
	}
	return set
}()

// classify maps a directory base name to its kind against the fixed table.
func classify(name string) Kind {
	if _, ok := defaultTempSet[name]; ok {
		return KindTemporary
	}
	return KindNormal
}

// buildTempSet derives a scan-time name set from the fixed table plus
// user-supplied include/exclude lists. The base table itself never changes.
func buildTempSet(includes, excludes []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tempDirNames)+len(includes))
	for _, name := range tempDirNames {
		set[name] = struct{}{}
	}
	for _, name := range includes {
		if name != "" {
			set[name] = struct{}{}
		}
	}
	for _, name := range excludes {
		delete(set, name)
	}
	return set
}

func parseTargetList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}

func sortedTargetNames(set map[string]struct{}) []string {
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

package fetch

import (
	"path"
	"strings"
)

// relevantExtensions are the file types worth pulling into an analysis.
var relevantExtensions = map[string]bool{
	".py":   true,
	".js":   true,
	".ts":   true,
	".jsx":  true,
	".tsx":  true,
	".md":   true,
	".yml":  true,
	".yaml": true,
	".json": true,
	".env":  true,
	".txt":  true,
}

// skipDirectories are tree entries never worth descending into.
var skipDirectories = map[string]bool{
	".git":          true,
	"__pycache__":   true,
	"node_modules":  true,
	".venv":         true,
	"venv":          true,
	".pytest_cache": true,
	".mypy_cache":   true,
	"dist":          true,
	"build":         true,
	".next":         true,
	".nuxt":         true,
	"coverage":      true,
	".coverage":     true,
}

// importantFiles are always fetched regardless of extension. Config files
// like OAI_CONFIG_LIST are detection evidence in their own right.
var importantFiles = map[string]bool{
	"requirements.txt":   true,
	"package.json":       true,
	"pyproject.toml":     true,
	"setup.py":           true,
	"Dockerfile":         true,
	"docker-compose.yml": true,
	"config.yaml":        true,
	"config.yml":         true,
	"OAI_CONFIG_LIST":    true,
}

// Relevant reports whether a repo-relative path is worth analyzing.
func Relevant(filePath string) bool {
	return includeFile(filePath) && !inSkippedDirectory(filePath)
}

// SkippedDir reports whether a directory name should never be descended into.
func SkippedDir(name string) bool {
	return skipDirectories[name]
}

// includeFile reports whether a path is worth analyzing.
func includeFile(filePath string) bool {
	name := path.Base(filePath)
	if importantFiles[name] {
		return true
	}
	return relevantExtensions[path.Ext(name)]
}

// inSkippedDirectory reports whether any path segment is a skipped directory.
func inSkippedDirectory(filePath string) bool {
	for _, part := range strings.Split(filePath, "/") {
		if skipDirectories[part] {
			return true
		}
	}
	return false
}

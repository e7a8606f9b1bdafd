package render

import (
	"path/filepath"
	"strings"
)

var languages = map[string]string{
	".php": "php", ".twig": "twig", ".html": "html", ".htm": "html",
	".js": "javascript", ".jsx": "javascript", ".ts": "typescript", ".tsx": "typescript",
	".css": "css", ".scss": "scss", ".sass": "scss",
	".yml": "yaml", ".yaml": "yaml", ".md": "markdown", ".json": "json", ".sql": "sql",
	".xml": "xml", ".ps1": "powershell", ".sh": "bash", ".bash": "bash", ".zsh": "bash",
	".go": "go", ".py": "python", ".rb": "ruby", ".rs": "rust", ".java": "java",
	".kt": "kotlin", ".c": "c", ".h": "c", ".cpp": "cpp", ".hpp": "cpp", ".cs": "csharp",
	".swift": "swift", ".toml": "toml", ".ini": "ini",
}

// Language returns the fence info string for a file name, or "".
func Language(name string) string {
	lower := strings.ToLower(name)
	if strings.HasSuffix(lower, ".blade.php") {
		return "php"
	}
	return languages[filepath.Ext(lower)]
}

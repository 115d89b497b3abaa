package coherence

import (
	"os"
	"path/filepath"
	"strings"
)

// Index is an immutable set of known words used by the dictionary check.
// It is safe for concurrent reads once constructed; it is never mutated
// after construction.
type Index map[string]struct{}

// NewIndex builds an index from the given words. Words are trimmed and
// lowercased; entries shorter than 3 characters are dropped to match the
// tokenizer's minimum token length.
func NewIndex(words ...string) Index {
	ix := make(Index, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if len(w) < 3 {
			continue
		}
		ix[w] = struct{}{}
	}
	return ix
}

// Contains reports whether word is in the index.
func (ix Index) Contains(word string) bool {
	_, ok := ix[word]
	return ok
}

// Len returns the number of words in the index.
func (ix Index) Len() int {
	return len(ix)
}

// DefaultDictionaryPaths returns the ordered word-list candidates probed by
// LoadIndex: system dictionaries first, then the per-user fallback.
func DefaultDictionaryPaths() []string {
	paths := []string{
		"/usr/share/dict/words",
		"/usr/share/dict/american-english",
		"/usr/share/dict/british-english",
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".cips", "data", "words.txt"))
	}
	return paths
}

// LoadIndex populates an Index from the first readable file in paths.
// An unreadable candidate falls through to the next; if none can be read
// the returned index holds only the built-in technical terms, degrading the
// dictionary check rather than failing it.
func LoadIndex(paths []string) Index {
	ix := make(Index)
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		for _, line := range strings.Split(string(data), "\n") {
			w := strings.ToLower(strings.TrimSpace(line))
			if len(w) < 3 {
				continue
			}
			ix[w] = struct{}{}
		}
		break
	}

	// Common technical and programming terms absent from standard
	// dictionaries. Merged even when no word list was found.
	for _, w := range technicalTerms {
		ix[w] = struct{}{}
	}
	return ix
}

// technicalTerms supplements the word list with jargon the dictionary check
// would otherwise reject.
var technicalTerms = []string{
	// Programming
	"api", "json", "yaml", "html", "css", "sql", "npm", "pip", "git",
	"cli", "gui", "sdk", "ide", "http", "https", "url", "uri", "ssh",
	"tcp", "udp", "dns", "cdn", "aws", "gcp", "azure", "docker",
	"kubernetes", "postgres", "mysql", "redis", "mongodb", "graphql",
	"oauth", "jwt", "auth", "async", "await", "const", "var", "let",
	"func", "def", "class", "import", "export", "module", "package",
	// Learning-engine vocabulary
	"cips", "claude", "optim", "embeddings", "novelty", "venv", "pyenv",
	"lembed", "apsw", "sqlite", "gguf", "minilm", "anthropic",
	// Common abbreviations
	"config", "init", "env", "dev", "prod", "repo", "dir", "src", "lib",
	"pkg", "cmd", "arg", "args", "param", "params", "req", "res", "err",
}

// Package keywords turns free text into a filtered keyword sequence.
package keywords

import (
	"strings"
	"unicode/utf8"
)

const (
	DefaultMinLength   = 3
	DefaultPunctuation = `.,;:!?¿¡()[]{}"'` + "`"
)

// DefaultStopWords are common English and Spanish words carrying no signal.
var DefaultStopWords = []string{
	// English
	"the", "and", "for", "are", "but", "not", "you", "all", "any", "can",
	"had", "her", "was", "one", "our", "out", "has", "him", "his", "how",
	"its", "who", "did", "yes", "she", "they", "them", "this", "that",
	"with", "from", "have", "what", "when", "your", "will", "would",
	// Spanish
	"que", "los", "las", "del", "por", "con", "una", "para", "como",
	"pero", "sus", "este", "esta", "esto", "eso", "ese", "esa", "hay",
	"muy", "sin", "sobre", "entre", "cuando", "donde", "porque", "también",
	"mis", "tus", "nos", "ella", "ellos", "ellas", "usted", "ustedes",
}

// Options configures extraction.
type Options struct {
	// MinLength is the shortest token kept, in runes.
	MinLength   int
	Punctuation string
	StopWords   []string
}

// DefaultOptions returns the default extraction options.
func DefaultOptions() Options {
	return Options{
		MinLength:   DefaultMinLength,
		Punctuation: DefaultPunctuation,
		StopWords:   DefaultStopWords,
	}
}

// Extractor splits text into keywords. It is immutable and safe for concurrent use.
type Extractor struct {
	minLength int
	replacer  *strings.Replacer
	stop      map[string]bool
}

// New builds an Extractor. A zero MinLength falls back to the default.
func New(opts Options) *Extractor {
	if opts.MinLength <= 0 {
		opts.MinLength = DefaultMinLength
	}

	var pairs []string
	for _, r := range opts.Punctuation {
		pairs = append(pairs, string(r), "")
	}

	stop := make(map[string]bool, len(opts.StopWords))
	for _, w := range opts.StopWords {
		stop[strings.ToLower(strings.TrimSpace(w))] = true
	}

	return &Extractor{
		minLength: opts.MinLength,
		replacer:  strings.NewReplacer(pairs...),
		stop:      stop,
	}
}

// Extract returns the keywords of text in order. Repeated words are kept,
// so a word used twice contributes twice downstream.
func (e *Extractor) Extract(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	cleaned := e.replacer.Replace(strings.ToLower(text))

	var out []string
	for _, tok := range strings.Fields(cleaned) {
		if utf8.RuneCountInString(tok) < e.minLength || e.stop[tok] {
			continue
		}
		out = append(out, tok)
	}
	return out
}

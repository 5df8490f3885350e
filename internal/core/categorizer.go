package core

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

//go:embed keywords.yaml
var defaultKeywords []byte

// KeywordRule maps one category label to the keywords that select it.
type KeywordRule struct {
	Category string   `yaml:"categoria"`
	Keywords []string `yaml:"palavras"`
}

// Categorizer assigns a category to a free-text description using an
// ordered keyword table. It is immutable after construction and safe for
// concurrent use.
type Categorizer struct {
	rules []KeywordRule
}

// NewCategorizer copies rules, lower-casing keywords and dropping blanks.
// Rule order is preserved and decides ties.
func NewCategorizer(rules []KeywordRule) *Categorizer {
	c := &Categorizer{rules: make([]KeywordRule, 0, len(rules))}
	for _, r := range rules {
		kws := make([]string, 0, len(r.Keywords))
		for _, k := range r.Keywords {
			k = strings.ToLower(strings.TrimSpace(k))
			if k != "" {
				kws = append(kws, k)
			}
		}
		c.rules = append(c.rules, KeywordRule{Category: r.Category, Keywords: kws})
	}
	return c
}

// LoadKeywordTable decodes a YAML keyword table.
func LoadKeywordTable(r io.Reader) ([]KeywordRule, error) {
	var rules []KeywordRule
	if err := yaml.NewDecoder(r).Decode(&rules); err != nil {
		return nil, fmt.Errorf("decode keyword table: %w", err)
	}
	for i, rule := range rules {
		if strings.TrimSpace(rule.Category) == "" {
			return nil, fmt.Errorf("keyword table entry %d: empty category", i+1)
		}
	}
	if len(rules) == 0 {
		return nil, errors.New("keyword table is empty")
	}
	return rules, nil
}

var defaultCategorizer = sync.OnceValue(func() *Categorizer {
	rules, err := LoadKeywordTable(bytes.NewReader(defaultKeywords))
	if err != nil {
		panic(fmt.Sprintf("embedded keyword table: %v", err))
	}
	return NewCategorizer(rules)
})

// DefaultCategorizer returns the categorizer built from the embedded table.
func DefaultCategorizer() *Categorizer {
	return defaultCategorizer()
}

// Categorize returns the first category whose keyword occurs as a whole
// word in description, or FallbackCategory.
func (c *Categorizer) Categorize(description string) string {
	if strings.TrimSpace(description) == "" {
		return FallbackCategory
	}
	text := strings.ToLower(description)
	for _, r := range c.rules {
		for _, kw := range r.Keywords {
			if containsWord(text, kw) {
				return r.Category
			}
		}
	}
	return FallbackCategory
}

// Categories lists the table's labels in table order.
func (c *Categorizer) Categories() []string {
	out := make([]string, len(c.rules))
	for i, r := range c.rules {
		out[i] = r.Category
	}
	return out
}

// Keywords returns the keywords of category, in table order.
func (c *Categorizer) Keywords(category string) []string {
	for _, r := range c.rules {
		if r.Category == category {
			return append([]string(nil), r.Keywords...)
		}
	}
	return nil
}

// containsWord reports whether word occurs in text delimited by word
// boundaries on both sides. Letters and digits of any script count as word
// characters.
func containsWord(text, word string) bool {
	for start := 0; start <= len(text)-len(word); {
		i := strings.Index(text[start:], word)
		if i < 0 {
			return false
		}
		i += start
		if atBoundary(text, i) && atBoundary(text, i+len(word)) {
			return true
		}
		_, size := utf8.DecodeRuneInString(text[i:])
		start = i + size
	}
	return false
}

func atBoundary(text string, i int) bool {
	var before, after bool
	if i > 0 {
		r, _ := utf8.DecodeLastRuneInString(text[:i])
		before = isWordRune(r)
	}
	if i < len(text) {
		r, _ := utf8.DecodeRuneInString(text[i:])
		after = isWordRune(r)
	}
	return before != after
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}

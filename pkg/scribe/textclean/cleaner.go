package textclean

import (
	"regexp"
	"sort"
	"strings"

	"golang.org/x/net/html"
)

// Cleaner normalizes raw transcript text: markup removal, whitespace
// collapsing, abbreviation expansion, and punctuation normalization.
// Cleaning is a pure function; Clean(Clean(x)) == Clean(x).
type Cleaner struct {
	abbrevs []abbreviation
}

type abbreviation struct {
	pattern   *regexp.Regexp
	expansion string
}

var (
	markupRe     = regexp.MustCompile(`\*+|_{2,}`)
	htmlTagRe    = regexp.MustCompile(`<[a-zA-Z!/]`)
	hspaceRe     = regexp.MustCompile(`[ \t\r\f\v]+`)
	newlineRunRe = regexp.MustCompile(`\n(\s*\n)+`)
	punctSpaceRe = regexp.MustCompile(`\s+([.,;:!?])`)
)

// NewCleaner creates a cleaner with the given abbreviation table.
// Abbreviations are expanded longest-first so that overlapping keys
// (e.g. "BP" and "B") never partially match.
func NewCleaner(abbrevs map[string]string) *Cleaner {
	keys := make([]string, 0, len(abbrevs))
	for k := range abbrevs {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})

	c := &Cleaner{abbrevs: make([]abbreviation, 0, len(keys))}
	for _, k := range keys {
		re, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(k) + `\b`)
		if err != nil {
			continue
		}
		c.abbrevs = append(c.abbrevs, abbreviation{pattern: re, expansion: abbrevs[k]})
	}
	return c
}

// DefaultAbbreviations returns the standard medical abbreviation table.
func DefaultAbbreviations() map[string]string {
	return map[string]string{
		"A&E":  "Accident and Emergency",
		"hx":   "history",
		"tx":   "treatment",
		"rx":   "prescription",
		"sx":   "symptoms",
		"dx":   "diagnosis",
		"ROM":  "range of motion",
		"BP":   "blood pressure",
		"HR":   "heart rate",
		"resp": "respiration",
	}
}

// Clean applies all cleaning operations in fixed order. Empty input
// yields empty output; line breaks between speaker turns survive.
func (c *Cleaner) Clean(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}

	text = c.stripHTML(text)
	text = markupRe.ReplaceAllString(text, "")
	text = c.normalizeWhitespace(text)
	text = c.expandAbbreviations(text)
	text = normalizePunctuation(text)

	return strings.TrimSpace(text)
}

// CleanForDisplay cleans text and truncates it to maxLength, cutting at
// the nearest word boundary and appending a truncation marker. Words are
// never split.
func (c *Cleaner) CleanForDisplay(text string, maxLength int) string {
	cleaned := c.Clean(text)
	if maxLength <= 0 || len(cleaned) <= maxLength {
		return cleaned
	}

	cut := cleaned[:maxLength]
	if idx := strings.LastIndexByte(cut, ' '); idx > 0 {
		cut = cut[:idx]
	}
	return strings.TrimRight(cut, " .,;:") + "..."
}

// stripHTML removes markup tags from pasted transcripts, keeping text
// content. Plain text without tag-like sequences passes through untouched.
func (c *Cleaner) stripHTML(text string) string {
	if !htmlTagRe.MatchString(text) {
		return text
	}

	var b strings.Builder
	tok := html.NewTokenizer(strings.NewReader(text))
	for {
		tt := tok.Next()
		switch tt {
		case html.ErrorToken:
			return b.String()
		case html.TextToken:
			b.Write(tok.Text())
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			name, _ := tok.TagName()
			// Block-level breaks separate speaker turns
			switch string(name) {
			case "p", "br", "div", "li", "tr":
				b.WriteByte('\n')
			}
		}
	}
}

func (c *Cleaner) normalizeWhitespace(text string) string {
	text = hspaceRe.ReplaceAllString(text, " ")
	text = newlineRunRe.ReplaceAllString(text, "\n")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	return strings.Join(lines, "\n")
}

func (c *Cleaner) expandAbbreviations(text string) string {
	for _, a := range c.abbrevs {
		text = a.pattern.ReplaceAllString(text, a.expansion)
	}
	return text
}

func normalizePunctuation(text string) string {
	replacer := strings.NewReplacer(
		"—", "-", // em dash
		"–", "-", // en dash
		"…", "...",
		"“", `"`,
		"”", `"`,
		"‘", "'",
		"’", "'",
	)
	text = replacer.Replace(text)
	return punctSpaceRe.ReplaceAllString(text, "$1")
}

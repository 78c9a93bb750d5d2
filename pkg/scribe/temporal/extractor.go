package temporal

import (
	"regexp"
	"sort"
	"strings"
)

// Kind classifies a temporal mention.
type Kind string

const (
	KindDate     Kind = "date"
	KindTime     Kind = "time"
	KindDuration Kind = "duration"
)

// Mention is a temporal phrase found in text. Start and End are character
// offsets into the text the extractor was given.
type Mention struct {
	Text  string `json:"text"`
	Start int    `json:"start"`
	End   int    `json:"end"`
	Kind  Kind   `json:"kind"`
}

// Mentions groups extracted mentions by kind. Each list is sorted by
// start offset and contains no overlapping spans.
type Mentions struct {
	Dates     []Mention
	Times     []Mention
	Durations []Mention
}

// Rules holds the ordered regex sources per kind. Earlier rules take
// priority: when two rules match at overlapping positions, the earlier
// rule's match survives.
type Rules struct {
	Dates     []string `yaml:"dates"`
	Times     []string `yaml:"times"`
	Durations []string `yaml:"durations"`
}

// DefaultRules returns the standard temporal pattern set.
func DefaultRules() Rules {
	months := `(?:january|february|march|april|may|june|july|august|september|october|november|december)`
	weekdays := `(?:monday|tuesday|wednesday|thursday|friday|saturday|sunday)`
	spelled := `(?:one|two|three|four|five|six|seven|eight|nine|ten|eleven|twelve)`

	return Rules{
		Dates: []string{
			`\d{4}-\d{2}-\d{2}`,
			`\d{1,2}/\d{1,2}/\d{2,4}`,
			months + `\s+\d{1,2}(?:st|nd|rd|th)?(?:,?\s+\d{4})?`,
			`\d{1,2}(?:st|nd|rd|th)?\s+(?:of\s+)?` + months + `(?:,?\s+\d{4})?`,
			`(?:last|this|next)\s+(?:week|month|year|` + weekdays + `)`,
			`\b(?:yesterday|today|tomorrow)\b`,
		},
		Times: []string{
			`\d{1,2}:\d{2}(?::\d{2})?\s*(?:am|pm)?`,
			`\d{1,2}\s*(?:am|pm)\b`,
			`\b(?:morning|afternoon|evening|night)\b`,
		},
		Durations: []string{
			`(?:first|last|past)\s+(?:\d+|` + spelled + `)\s*(?:week|month|day|year)s?`,
			`(?:\d+|` + spelled + `)\s*(?:week|month|day|year|hour|minute)s?\b`,
			`(?:\d+|` + spelled + `)\s*sessions?\b`,
			`\d+\s*times?\b`,
		},
	}
}

// Extractor finds date, time, and duration mentions via ordered pattern
// rules. Pure and safe for concurrent use.
type Extractor struct {
	dates     []*regexp.Regexp
	times     []*regexp.Regexp
	durations []*regexp.Regexp
}

// NewExtractor compiles the given rules. Invalid patterns are skipped.
func NewExtractor(rules Rules) *Extractor {
	compile := func(srcs []string) []*regexp.Regexp {
		out := make([]*regexp.Regexp, 0, len(srcs))
		for _, src := range srcs {
			re, err := regexp.Compile(`(?i)` + src)
			if err != nil {
				continue
			}
			out = append(out, re)
		}
		return out
	}
	return &Extractor{
		dates:     compile(rules.Dates),
		times:     compile(rules.Times),
		durations: compile(rules.Durations),
	}
}

// ExtractAll extracts every temporal mention from text, grouped by kind.
func (e *Extractor) ExtractAll(text string) Mentions {
	return Mentions{
		Dates:     e.extract(text, KindDate, e.dates),
		Times:     e.extract(text, KindTime, e.times),
		Durations: e.extract(text, KindDuration, e.durations),
	}
}

// extract runs the rules for one kind in priority order. A match is kept
// only if it does not overlap an already-kept mention and its text was
// not already seen (case-insensitive).
func (e *Extractor) extract(text string, kind Kind, rules []*regexp.Regexp) []Mention {
	var kept []Mention
	seen := make(map[string]struct{})

	overlaps := func(start, end int) bool {
		for _, m := range kept {
			if start < m.End && m.Start < end {
				return true
			}
		}
		return false
	}

	for _, re := range rules {
		for _, loc := range re.FindAllStringIndex(text, -1) {
			matched := strings.TrimSpace(text[loc[0]:loc[1]])
			if matched == "" || overlaps(loc[0], loc[1]) {
				continue
			}
			key := strings.ToLower(matched)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			kept = append(kept, Mention{
				Text:  matched,
				Start: loc[0],
				End:   loc[1],
				Kind:  kind,
			})
		}
	}

	sort.Slice(kept, func(i, j int) bool { return kept[i].Start < kept[j].Start })
	return kept
}

// incident cue words used to locate the primary incident date
var incidentCues = []string{"accident", "incident", "injury", "crash", "collision", "happened", "fall", "onset"}

// IncidentDate returns the earliest date mention whose sentence contains
// an incident cue word. ok is false when no candidate qualifies.
func (e *Extractor) IncidentDate(text string) (Mention, bool) {
	lower := strings.ToLower(text)
	for _, m := range e.extract(text, KindDate, e.dates) {
		lo, hi := sentenceBounds(lower, m.Start, m.End)
		sentence := lower[lo:hi]
		for _, cue := range incidentCues {
			if strings.Contains(sentence, cue) {
				return m, true
			}
		}
	}
	return Mention{}, false
}

// sentenceBounds widens [start, end) to the enclosing sentence. Sentences
// end at '.', '?', '!', or a newline.
func sentenceBounds(text string, start, end int) (int, int) {
	isBoundary := func(b byte) bool {
		return b == '.' || b == '?' || b == '!' || b == '\n'
	}
	for start > 0 && !isBoundary(text[start-1]) {
		start--
	}
	for end < len(text) && !isBoundary(text[end]) {
		end++
	}
	return start, end
}

// TreatmentDuration returns the longest duration mention; among equals
// the last one wins. ok is false when no duration was found.
func (e *Extractor) TreatmentDuration(text string) (Mention, bool) {
	durations := e.extract(text, KindDuration, e.durations)
	if len(durations) == 0 {
		return Mention{}, false
	}

	best := durations[0]
	for _, m := range durations[1:] {
		if len(m.Text) > len(best.Text) || (len(m.Text) == len(best.Text) && m.Start > best.Start) {
			best = m
		}
	}
	return best, true
}

// Texts returns just the mention texts, order preserved.
func Texts(mentions []Mention) []string {
	out := make([]string, len(mentions))
	for i, m := range mentions {
		out[i] = m.Text
	}
	return out
}

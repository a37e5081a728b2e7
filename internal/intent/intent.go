// Package intent decides from a raw user utterance whether a note should be
// saved and, if the user named one, which project it goes to.
//
// Matching is literal: a save keyword must appear in the utterance, and a
// destination is only looked for after the "directed form", the keyword
// followed by its preposition (e.g. "сохрани в «Здоровье»").
package intent

import (
	"fmt"
	"regexp"
	"strings"
)

// Rule names the extraction rule that produced a destination.
type Rule int

const (
	RuleNone Rule = iota
	RuleGuillemets
	RuleQuotes
	RuleRemainder
)

func (r Rule) String() string {
	switch r {
	case RuleGuillemets:
		return "guillemets"
	case RuleQuotes:
		return "quotes"
	case RuleRemainder:
		return "remainder"
	default:
		return "none"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (r Rule) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

// Intent is the parsed outcome of an utterance. An empty Destination means
// the default (Inbox) project.
type Intent struct {
	ShouldSave  bool   `json:"should_save"`
	Destination string `json:"destination,omitempty"`
	Rule        Rule   `json:"rule"`
}

// HasDestination reports whether the utterance named a project.
func (i Intent) HasDestination() bool { return i.Destination != "" }

// Trigger is a save keyword and the preposition that introduces a
// destination after it.
type Trigger struct {
	Keyword     string
	Preposition string
}

// DefaultTriggers are used by Parse.
var DefaultTriggers = []Trigger{
	{Keyword: "сохрани", Preposition: "в"},
	{Keyword: "save", Preposition: "to"},
}

var (
	guillemetPair = regexp.MustCompile(`«([^«»]*)»`)
	quotePair     = regexp.MustCompile(`"([^"]*)"`)
)

type compiledTrigger struct {
	keyword  *regexp.Regexp
	directed *regexp.Regexp
}

// Parser applies a fixed set of triggers. It is immutable and safe for
// concurrent use.
type Parser struct {
	triggers []compiledTrigger
}

// NewParser compiles triggers. With no triggers, DefaultTriggers are used.
func NewParser(triggers ...Trigger) (*Parser, error) {
	if len(triggers) == 0 {
		triggers = DefaultTriggers
	}
	p := &Parser{}
	for _, t := range triggers {
		kw := strings.TrimSpace(t.Keyword)
		prep := strings.TrimSpace(t.Preposition)
		if kw == "" || prep == "" {
			return nil, fmt.Errorf("trigger needs keyword and preposition, got %q/%q", t.Keyword, t.Preposition)
		}
		// The preposition must end at whitespace, an opening quote, or the end
		// of input so "save to" does not match "save tomorrow".
		directed := `(?i)(` + regexp.QuoteMeta(kw) + `[\s\p{Zs}]+` + regexp.QuoteMeta(prep) + `)(?:[\s\p{Zs}«"]|$)`
		p.triggers = append(p.triggers, compiledTrigger{
			keyword:  regexp.MustCompile(`(?i)` + regexp.QuoteMeta(kw)),
			directed: regexp.MustCompile(directed),
		})
	}
	return p, nil
}

var defaultParser, _ = NewParser()

// Parse runs the default parser over raw.
func Parse(raw string) Intent {
	return defaultParser.Parse(raw)
}

// Parse evaluates raw:
//
//  1. no keyword: no save.
//  2. keyword without the directed form: save to the default project.
//  3. directed form: the destination is the first non-empty of «…», "…",
//     or the trimmed text after the directed form; if all are empty the
//     default project is used.
func (p *Parser) Parse(raw string) Intent {
	if strings.TrimSpace(raw) == "" {
		return Intent{}
	}

	triggered := false
	for _, t := range p.triggers {
		if t.keyword.MatchString(raw) {
			triggered = true
			break
		}
	}
	if !triggered {
		return Intent{}
	}

	rest, ok := p.afterDirected(raw)
	if !ok {
		return Intent{ShouldSave: true}
	}

	if d := quoted(guillemetPair, rest); d != "" {
		return Intent{ShouldSave: true, Destination: d, Rule: RuleGuillemets}
	}
	if d := quoted(quotePair, rest); d != "" {
		return Intent{ShouldSave: true, Destination: d, Rule: RuleQuotes}
	}
	if d := remainder(rest); d != "" {
		return Intent{ShouldSave: true, Destination: d, Rule: RuleRemainder}
	}
	return Intent{ShouldSave: true}
}

// afterDirected returns the text following the earliest directed-form marker.
func (p *Parser) afterDirected(raw string) (string, bool) {
	var best []int
	for _, t := range p.triggers {
		loc := t.directed.FindStringSubmatchIndex(raw)
		if loc != nil && (best == nil || loc[0] < best[0]) {
			best = loc
		}
	}
	if best == nil {
		return "", false
	}
	return raw[best[3]:], true
}

func quoted(re *regexp.Regexp, s string) string {
	for _, m := range re.FindAllStringSubmatch(s, -1) {
		if d := strings.TrimSpace(m[1]); d != "" {
			return d
		}
	}
	return ""
}

// remainder is the trimmed tail, or "" when only quote marks remain.
func remainder(s string) string {
	d := strings.TrimSpace(s)
	if strings.Trim(d, "«»\" \t\r\n") == "" {
		return ""
	}
	return d
}

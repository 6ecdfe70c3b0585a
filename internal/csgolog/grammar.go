package csgolog

import (
	"fmt"
	"regexp"
	"sync"
)

// Timestamp prefix shared by every line: "L 01/02/2006 - 15:04:05: "
const prefixPattern = `^L (?P<log_month>\d\d)/(?P<log_day>\d\d)/(?P<log_year>\d\d\d\d) - (?P<log_hour>\d\d):(?P<log_minute>\d\d):(?P<log_second>\d\d): `

// rule is one grammar table row. The pattern body and the builder that
// decodes its captures live together so neither can exist without the other.
type rule struct {
	kind  Kind
	body  string // appended to prefixPattern; anchors itself with $
	build func(c *captures) LogEntry
}

type compiledRule struct {
	rule
	re *regexp.Regexp
}

// Grammar is a compiled, immutable grammar table. It is safe for concurrent
// use by any number of processors.
type Grammar struct {
	rules []compiledRule
}

func newGrammar(rules []rule) (*Grammar, error) {
	g := &Grammar{rules: make([]compiledRule, 0, len(rules))}
	for i, r := range rules {
		if r.build == nil {
			return nil, fmt.Errorf("grammar rule %d (%s) has no builder", i, r.kind)
		}
		re, err := regexp.Compile(prefixPattern + r.body)
		if err != nil {
			return nil, fmt.Errorf("compiling grammar rule %d (%s): %w", i, r.kind, err)
		}
		g.rules = append(g.rules, compiledRule{rule: r, re: re})
	}
	return g, nil
}

var defaultGrammar = sync.OnceValue(func() *Grammar {
	g, err := newGrammar(lineKinds)
	if err != nil {
		panic(err)
	}
	return g
})

// Default returns the built-in CS:GO grammar. It is compiled on first use.
func Default() *Grammar {
	return defaultGrammar()
}

// Len returns the number of rows in the table
func (g *Grammar) Len() int {
	return len(g.rules)
}

// KindAt returns the kind produced by table row i
func (g *Grammar) KindAt(i int) Kind {
	return g.rules[i].kind
}

// Kinds lists the kinds of every table row in order
func (g *Grammar) Kinds() []Kind {
	kinds := make([]Kind, len(g.rules))
	for i, r := range g.rules {
		kinds[i] = r.kind
	}
	return kinds
}

// Classify returns the index of the single table row matching line.
// No match yields ErrUnrecognized, more than one yields ErrAmbiguous.
func (g *Grammar) Classify(line string) (int, error) {
	var matched []int
	for i := range g.rules {
		if g.rules[i].re.MatchString(line) {
			matched = append(matched, i)
		}
	}

	switch len(matched) {
	case 0:
		return -1, &LineError{Err: ErrUnrecognized, Line: line}
	case 1:
		return matched[0], nil
	}

	candidates := make([]Kind, len(matched))
	for i, idx := range matched {
		candidates[i] = g.rules[idx].kind
	}
	return -1, &LineError{Err: ErrAmbiguous, Line: line, Candidates: candidates}
}

// Parse classifies line and decodes it into its LogEntry
func (g *Grammar) Parse(line string) (LogEntry, error) {
	idx, err := g.Classify(line)
	if err != nil {
		return nil, err
	}
	return g.extract(idx, line), nil
}

// extract runs the builder of row idx against line. Any failure here means
// the pattern and the builder disagree, so it panics.
func (g *Grammar) extract(idx int, line string) LogEntry {
	r := &g.rules[idx]
	loc := r.re.FindStringSubmatchIndex(line)
	if loc == nil {
		fault(r.kind, "", "classified line does not match on extraction")
	}

	entry := r.build(&captures{kind: r.kind, re: r.re, line: line, loc: loc})
	if entry == nil {
		fault(r.kind, "", "builder returned nil")
	}
	if entry.Kind() != r.kind {
		fault(r.kind, "", "builder produced %s", entry.Kind())
	}
	return entry
}

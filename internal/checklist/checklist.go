package checklist

import (
	"errors"
	"fmt"
	"regexp"

	"voice-coach-go/internal/intent"
)

var (
	ErrInvalidItem    = errors.New("invalid checklist item")
	ErrDuplicateID    = errors.New("duplicate checklist item id")
	ErrWeightMismatch = errors.New("checklist weights do not sum to the published maximum")
)

// Rule selects how an item turns evidence into points.
type Rule int

const (
	// RuleProportional awards weight*m/max(3,k) for m of k cues found.
	RuleProportional Rule = iota
	// RuleConjunctive awards the full weight only once every cue group matched.
	RuleConjunctive
	// RuleDistinctFields counts distinct personal data categories requested.
	RuleDistinctFields
	// RuleBaseline starts at the full weight and is debited on faults.
	RuleBaseline
)

func (r Rule) String() string {
	switch r {
	case RuleConjunctive:
		return "conjunctive"
	case RuleDistinctFields:
		return "distinct_fields"
	case RuleBaseline:
		return "baseline"
	default:
		return "proportional"
	}
}

// Cue is one recognised phrase family. Group is only meaningful for
// conjunctive items.
type Cue struct {
	Label string
	Group int
	re    *regexp.Regexp
}

// NewCue compiles pattern against normalized text. It panics on a bad
// pattern: cues are static rubric data.
func NewCue(label, pattern string) Cue {
	return Cue{Label: label, re: regexp.MustCompile(pattern)}
}

// GroupCue is NewCue for conjunctive items.
func GroupCue(group int, label, pattern string) Cue {
	c := NewCue(label, pattern)
	c.Group = group
	return c
}

// Match reports whether the cue occurs in normalized text.
func (c Cue) Match(normalized string) bool {
	if c.re == nil {
		return false
	}
	return c.re.MatchString(normalized)
}

type Item struct {
	ID        int
	Weight    int
	Label     string
	Tip       string
	Rule      Rule
	Cues      []Cue
	Fields    []intent.Field
	DebitStep int
}

// Checklist is an immutable, validated rubric.
type Checklist struct {
	items    []Item
	index    map[int]int
	maxTotal int
}

// New validates items against the published maximum. Any error here is a
// programming error and should stop startup.
func New(maxTotal int, items []Item) (*Checklist, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: empty checklist", ErrInvalidItem)
	}
	c := &Checklist{
		items:    make([]Item, len(items)),
		index:    make(map[int]int, len(items)),
		maxTotal: maxTotal,
	}
	sum := 0
	for i, it := range items {
		if err := validateItem(it); err != nil {
			return nil, err
		}
		if _, ok := c.index[it.ID]; ok {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateID, it.ID)
		}
		c.index[it.ID] = i
		c.items[i] = it
		sum += it.Weight
	}
	if sum != maxTotal {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrWeightMismatch, sum, maxTotal)
	}
	return c, nil
}

func validateItem(it Item) error {
	if it.Weight <= 0 {
		return fmt.Errorf("%w: item %d has weight %d", ErrInvalidItem, it.ID, it.Weight)
	}
	switch it.Rule {
	case RuleProportional:
		if len(it.Cues) == 0 {
			return fmt.Errorf("%w: item %d has no cues", ErrInvalidItem, it.ID)
		}
	case RuleConjunctive:
		groups := map[int]bool{}
		for _, cue := range it.Cues {
			groups[cue.Group] = true
		}
		if len(groups) < 2 {
			return fmt.Errorf("%w: conjunctive item %d needs at least two cue groups", ErrInvalidItem, it.ID)
		}
	case RuleDistinctFields:
		if len(it.Fields) == 0 {
			return fmt.Errorf("%w: item %d lists no fields", ErrInvalidItem, it.ID)
		}
	case RuleBaseline:
		if it.DebitStep <= 0 {
			return fmt.Errorf("%w: baseline item %d needs a positive debit step", ErrInvalidItem, it.ID)
		}
	default:
		return fmt.Errorf("%w: item %d has unknown rule %d", ErrInvalidItem, it.ID, it.Rule)
	}
	return nil
}

// Items returns the items in rubric order.
func (c *Checklist) Items() []Item {
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Checklist) Item(id int) (Item, bool) {
	i, ok := c.index[id]
	if !ok {
		return Item{}, false
	}
	return c.items[i], true
}

func (c *Checklist) Len() int { return len(c.items) }

func (c *Checklist) MaxTotal() int { return c.maxTotal }

// ListeningItem returns the first baseline item, if any.
func (c *Checklist) ListeningItem() (Item, bool) {
	for _, it := range c.items {
		if it.Rule == RuleBaseline {
			return it, true
		}
	}
	return Item{}, false
}

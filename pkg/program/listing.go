package program

import (
	"errors"
	"strings"

	"github.com/google/btree"
)

var (
	ErrNoSuchLine = errors.New("no such line")
	ErrBadRange   = errors.New("syntax error")
)

// Line is one numbered line of the editable listing, before colon splitting.
type Line struct {
	Key  Key
	Text string
}

func (l Line) String() string {
	if l.Text == "" {
		return l.Key.String()
	}
	return l.Key.String() + " " + l.Text
}

// Less implements btree.Item.
func (l Line) Less(than btree.Item) bool {
	return l.Key.Less(than.(Line).Key)
}

// Listing is the program as the user edits it, ordered by line number.
type Listing struct {
	tree *btree.BTree
}

func NewListing() *Listing {
	return &Listing{tree: btree.New(4)}
}

// Set stores or replaces a line.
func (l *Listing) Set(k Key, text string) {
	l.tree.ReplaceOrInsert(Line{Key: k, Text: text})
}

// Delete removes a line and reports whether it existed.
func (l *Listing) Delete(k Key) bool {
	return l.tree.Delete(Line{Key: k}) != nil
}

// Get returns the text stored under k.
func (l *Listing) Get(k Key) (string, bool) {
	item := l.tree.Get(Line{Key: k})
	if item == nil {
		return "", false
	}
	return item.(Line).Text, true
}

func (l *Listing) Len() int { return l.tree.Len() }

func (l *Listing) Clear() { l.tree.Clear(false) }

// Enter applies an edit typed at the prompt: "<number> <text>" replaces the
// line, a bare "<number>" deletes it. ok is false when raw has no line number.
func (l *Listing) Enter(raw string) (k Key, deleted bool, ok bool) {
	k, text, ok := SplitNumber(raw)
	if !ok {
		return Key{}, false, false
	}
	if text == "" {
		l.Delete(k)
		return k, true, true
	}
	l.Set(k, text)
	return k, false, true
}

// Lines returns every line in ascending order.
func (l *Listing) Lines() []Line {
	lines := make([]Line, 0, l.tree.Len())
	l.tree.Ascend(func(i btree.Item) bool {
		lines = append(lines, i.(Line))
		return true
	})
	return lines
}

// Select returns the lines covered by r. A single-line range that does not
// exist yields ErrNoSuchLine.
func (l *Listing) Select(r Range) ([]Line, error) {
	var lines []Line
	l.tree.AscendGreaterOrEqual(Line{Key: r.From}, func(i btree.Item) bool {
		line := i.(Line)
		if r.To.Less(line.Key) {
			return false
		}
		lines = append(lines, line)
		return true
	})
	if r.Single && len(lines) == 0 {
		return nil, ErrNoSuchLine
	}
	return lines, nil
}

// DeleteRange removes the lines covered by r and returns how many were removed.
func (l *Listing) DeleteRange(r Range) (int, error) {
	lines, err := l.Select(r)
	if err != nil {
		return 0, err
	}
	for _, line := range lines {
		l.tree.Delete(line)
	}
	return len(lines), nil
}

// Raw returns the listing as source lines, suitable for Load.
func (l *Listing) Raw() []string {
	var raw []string
	l.tree.Ascend(func(i btree.Item) bool {
		raw = append(raw, i.(Line).String())
		return true
	})
	return raw
}

// String renders the listing as newline-terminated program text.
func (l *Listing) String() string {
	var b strings.Builder
	for _, line := range l.Raw() {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}

// Program explodes the listing into an executable Program.
func (l *Listing) Program() *Program {
	return Load(l.Raw())
}

// Replace discards the listing and enters every numbered line of src.
// It returns the number of lines kept.
func (l *Listing) Replace(src string) int {
	l.Clear()
	for _, raw := range strings.Split(src, "\n") {
		if _, text, ok := SplitNumber(raw); ok && text != "" {
			l.Enter(raw)
		}
	}
	return l.Len()
}

// Range is an inclusive span of line keys used by LIST and DELETE.
type Range struct {
	From, To Key
	Single   bool
}

// All covers every line.
var All = Range{From: Key{}, To: Key{Line: int(^uint(0) >> 1)}}

// ParseRange accepts "", "n", "a-b", "a-" and "-b".
func ParseRange(s string) (Range, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return All, nil
	}
	from, to, isSpan := strings.Cut(s, "-")
	if !isSpan {
		k, ok := ParseKey(s)
		if !ok {
			return Range{}, ErrBadRange
		}
		return Range{From: k, To: Key{Line: k.Line, Sub: k.Sub}, Single: true}, nil
	}
	r := All
	if strings.TrimSpace(from) != "" {
		k, ok := ParseKey(from)
		if !ok {
			return Range{}, ErrBadRange
		}
		r.From = k
	}
	if strings.TrimSpace(to) != "" {
		k, ok := ParseKey(to)
		if !ok {
			return Range{}, ErrBadRange
		}
		r.To = Key{Line: k.Line, Sub: int(^uint(0) >> 1)}
		if k.Sub != 0 {
			r.To = k
		}
	}
	if r.To.Less(r.From) {
		return Range{}, ErrBadRange
	}
	return r, nil
}

package server

import (
	"fmt"
	"regexp"
	"strings"
)

// LineKind tags a parsed config line.
type LineKind int

const (
	LineOther LineKind = iota
	LineComment
	LineCVar
	LineExec
	LineBot
)

var (
	cvarLineRe  = regexp.MustCompile(`^set\s+(\w+)\b`)
	cvarValueRe = regexp.MustCompile(`^set\s+\w+\s+"(.*)"`)
	cvarBareRe  = regexp.MustCompile(`^set\s+\w+\s+(\S+)`)
	execLineRe  = regexp.MustCompile(`^exec\s+(\w+)\b`)
	botLineRe   = regexp.MustCompile(`^bot\s+(\w+)\b`)
)

// Line is one line of a config document. Raw always holds the exact
// text serialized back out; Name/Value are parsed views.
type Line struct {
	Kind  LineKind
	Name  string
	Value string
	Raw   string
}

// Document is a parsed config file: an ordered list of tagged lines.
// Edits mutate the list structurally, then serialize back to text, so
// the replace-vs-append policy is explicit rather than regex-incidental.
type Document struct {
	lines []Line
}

// ParseDocument splits text into tagged lines.
func ParseDocument(text string) *Document {
	raw := strings.Split(text, "\n")
	// A trailing newline produces one empty trailing element; drop it
	// so serialization stays stable.
	if len(raw) > 0 && raw[len(raw)-1] == "" {
		raw = raw[:len(raw)-1]
	}

	doc := &Document{lines: make([]Line, 0, len(raw))}
	for _, r := range raw {
		doc.lines = append(doc.lines, parseLine(r))
	}
	return doc
}

func parseLine(raw string) Line {
	switch {
	case strings.HasPrefix(strings.TrimSpace(raw), "//"):
		return Line{Kind: LineComment, Raw: raw}
	case cvarLineRe.MatchString(raw):
		name := cvarLineRe.FindStringSubmatch(raw)[1]
		value := ""
		if m := cvarValueRe.FindStringSubmatch(raw); m != nil {
			value = m[1]
		} else if m := cvarBareRe.FindStringSubmatch(raw); m != nil && !strings.HasPrefix(m[1], `"`) {
			// hand-written configs often skip the quotes
			value = m[1]
		}
		return Line{Kind: LineCVar, Name: name, Value: value, Raw: raw}
	case execLineRe.MatchString(raw):
		return Line{Kind: LineExec, Name: execLineRe.FindStringSubmatch(raw)[1], Raw: raw}
	case botLineRe.MatchString(raw):
		name := botLineRe.FindStringSubmatch(raw)[1]
		value := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(raw), "bot "+name))
		return Line{Kind: LineBot, Name: name, Value: value, Raw: raw}
	default:
		return Line{Kind: LineOther, Raw: raw}
	}
}

// String serializes the document back to text with a trailing newline.
func (d *Document) String() string {
	if len(d.lines) == 0 {
		return ""
	}
	var b strings.Builder
	for _, l := range d.lines {
		b.WriteString(l.Raw)
		b.WriteByte('\n')
	}
	return b.String()
}

// UpsertCVar sets a cvar to the canonical line
// `set name "value" // cvar updated by etsm`. The first line holding
// the cvar (exact name match) is replaced and any later duplicates are
// removed, collapsing a dirty duplicate-key file to a single effective
// line. When the cvar is absent the canonical line is appended.
// Returns true when the line was appended rather than replaced.
func (d *Document) UpsertCVar(name, value string) bool {
	canonical := Line{
		Kind:  LineCVar,
		Name:  name,
		Value: value,
		Raw:   fmt.Sprintf("set %s \"%s\" // cvar updated by etsm", name, value),
	}
	return d.upsert(LineCVar, name, canonical)
}

// UpsertBot sets a bot setting to the canonical line
// `bot name value // bot config updated by etsm`. Unlike cvars the
// value is unquoted; the duplicate-collapse policy is identical.
func (d *Document) UpsertBot(name, value string) bool {
	canonical := Line{
		Kind:  LineBot,
		Name:  name,
		Value: value,
		Raw:   fmt.Sprintf("bot %s %s // bot config updated by etsm", name, value),
	}
	return d.upsert(LineBot, name, canonical)
}

func (d *Document) upsert(kind LineKind, name string, canonical Line) bool {
	replaced := false
	kept := d.lines[:0]
	for _, l := range d.lines {
		if l.Kind == kind && l.Name == name {
			if !replaced {
				kept = append(kept, canonical)
				replaced = true
			}
			// later duplicates dropped
			continue
		}
		kept = append(kept, l)
	}
	d.lines = kept
	if !replaced {
		d.lines = append(d.lines, canonical)
	}
	return !replaced
}

// AddExec appends `exec name // exec added by etsm`, but only when the
// document holds no exec line at all, whatever its target. A file may
// carry at most one exec line.
func (d *Document) AddExec(name string) bool {
	for _, l := range d.lines {
		if l.Kind == LineExec {
			return false
		}
	}
	d.lines = append(d.lines, Line{
		Kind: LineExec,
		Name: name,
		Raw:  fmt.Sprintf("exec %s // exec added by etsm", name),
	})
	return true
}

// RemoveExec deletes every exec line referencing name, regardless of
// trailing content. Returns the number of removed lines.
func (d *Document) RemoveExec(name string) int {
	removed := 0
	kept := d.lines[:0]
	for _, l := range d.lines {
		if l.Kind == LineExec && l.Name == name {
			removed++
			continue
		}
		kept = append(kept, l)
	}
	d.lines = kept
	return removed
}

// CVarNames returns the names of all cvar lines in file order.
func (d *Document) CVarNames() []string {
	var names []string
	for _, l := range d.lines {
		if l.Kind == LineCVar {
			names = append(names, l.Name)
		}
	}
	return names
}

// ExecNames returns the targets of all exec lines in file order.
func (d *Document) ExecNames() []string {
	var names []string
	for _, l := range d.lines {
		if l.Kind == LineExec {
			names = append(names, l.Name)
		}
	}
	return names
}

// CVar returns the value of the named cvar. When duplicate lines exist
// the last one wins, reflecting how the game engine applies the file.
func (d *Document) CVar(name string) (string, bool) {
	value := ""
	found := false
	for _, l := range d.lines {
		if l.Kind == LineCVar && l.Name == name {
			value = l.Value
			found = true
		}
	}
	return value, found
}

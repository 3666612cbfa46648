package gedcom

import "strings"

// Record is the tagged parse tree node for one GEDCOM line and everything
// nested under it. Downstream code matches on Tag and never inspects raw
// text, so all format tolerance lives in the parser.
//
// For record-opening lines like "0 @I1@ INDI", Pointer holds the
// cross-reference token and Data is empty. For field lines like
// "1 NAME John /Smith/", Data holds everything after the tag.
type Record struct {
	Tag      string
	Pointer  string
	Data     string
	Children []*Record
}

// First returns the first child with the given tag, or nil.
func (r *Record) First(tag string) *Record {
	for _, c := range r.Children {
		if c.Tag == tag {
			return c
		}
	}
	return nil
}

// All returns every child with the given tag, in file order.
func (r *Record) All(tag string) []*Record {
	var out []*Record
	for _, c := range r.Children {
		if c.Tag == tag {
			out = append(out, c)
		}
	}
	return out
}

// FirstData returns the data of the first child with the given tag, or "".
func (r *Record) FirstData(tag string) string {
	if c := r.First(tag); c != nil {
		return c.Data
	}
	return ""
}

// parseRecords parses level-numbered GEDCOM lines into a record forest.
//
// The grammar per line is: LEVEL [@POINTER@] TAG [DATA]. Lines are CRLF or
// LF terminated; blank lines, lines without a level number and lines with
// a level but no tag are skipped silently. A line at level N becomes a
// child of the most recent line at level N-1; lines that skip levels
// attach to the nearest shallower ancestor, which also transparently
// flattens documents that nest everything under an initial header record.
func parseRecords(text string) []*Record {
	var roots []*Record
	// stack[i] is the most recent record seen at level i
	var stack []*Record

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		line = strings.TrimLeft(line, " \t")
		if line == "" {
			continue
		}

		level, rest, ok := splitLevel(line)
		if !ok {
			continue
		}
		rec, ok := parseLine(rest)
		if !ok {
			continue
		}

		if level == 0 || len(stack) == 0 {
			roots = append(roots, rec)
			stack = stack[:0]
			stack = append(stack, rec)
			continue
		}

		// clamp to the nearest existing ancestor
		if level > len(stack) {
			level = len(stack)
		}
		parent := stack[level-1]
		parent.Children = append(parent.Children, rec)
		stack = append(stack[:level], rec)
	}

	return roots
}

// splitLevel extracts the leading level number. Returns ok=false for
// lines that do not start with digits.
func splitLevel(line string) (level int, rest string, ok bool) {
	i := 0
	for i < len(line) && line[i] >= '0' && line[i] <= '9' {
		level = level*10 + int(line[i]-'0')
		i++
	}
	if i == 0 {
		return 0, "", false
	}
	return level, strings.TrimLeft(line[i:], " "), true
}

// parseLine splits "[@POINTER@] TAG [DATA]". Returns ok=false when no tag
// remains after the optional pointer.
func parseLine(rest string) (*Record, bool) {
	rec := &Record{}

	if strings.HasPrefix(rest, "@") {
		end := strings.Index(rest[1:], "@")
		if end >= 0 {
			rec.Pointer = rest[:end+2]
			rest = strings.TrimLeft(rest[end+2:], " ")
		}
	}

	if rest == "" {
		return nil, false
	}
	if sp := strings.IndexByte(rest, ' '); sp >= 0 {
		rec.Tag = rest[:sp]
		rec.Data = rest[sp+1:]
	} else {
		rec.Tag = rest
	}
	return rec, true
}

// collect walks the record forest depth-first and returns every record
// with the given tag, regardless of nesting depth. This is what lets the
// codec accept both flat documents and documents nested under a header.
func collect(records []*Record, tag string) []*Record {
	var out []*Record
	var walk func(rs []*Record)
	walk = func(rs []*Record) {
		for _, r := range rs {
			if r.Tag == tag {
				out = append(out, r)
			}
			walk(r.Children)
		}
	}
	walk(records)
	return out
}

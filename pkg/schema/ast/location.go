package ast

import "strconv"

// Location points at a node in a schema definition file. Line and Column
// are 1-based; a zero Line means the position is unknown.
type Location struct {
	File   string
	Line   int
	Column int
}

// String formats the location as file:line:column, or just the file when
// the position is unknown.
func (l Location) String() string {
	switch {
	case l.File == "":
		return "<unknown>"
	case l.Line == 0:
		return l.File
	}
	return l.File + ":" + strconv.Itoa(l.Line) + ":" + strconv.Itoa(l.Column)
}

func (l Location) IsValid() bool {
	return l.File != "" && l.Line > 0
}

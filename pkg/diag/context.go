package diag

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Context is a range of text in a source. It is typically used for errors
// that can be associated with a part of the source, like parse errors.
type Context struct {
	Name   string
	Source string
	Ranging
}

// NewContext creates a new Context.
func NewContext(name, source string, r Ranger) *Context {
	return &Context{name, source, r.Range()}
}

// Variables controlling the style of the culprit and the message. They are
// changed by SetStyled.
var (
	culpritStart = "\033[1;4m"
	culpritEnd   = "\033[m"
	messageStart = "\033[31;1m"
	messageEnd   = "\033[m"
	// When true, a line of carets is shown under a single-line culprit.
	underline = false
)

const culpritPlaceHolder = "^"

// SetStyled sets whether errors are shown with ANSI escape sequences. When
// not styled, a single-line culprit is marked with carets on the next line.
func SetStyled(styled bool) {
	if styled {
		culpritStart, culpritEnd = "\033[1;4m", "\033[m"
		messageStart, messageEnd = "\033[31;1m", "\033[m"
		underline = false
	} else {
		culpritStart, culpritEnd, messageStart, messageEnd = "", "", "", ""
		underline = true
	}
}

// Show shows the context.
//
// The text is of the form "name:line:col: head<culprit>tail", where the
// culprit is marked with culpritStart and culpritEnd. If the culprit spans
// more than one line, subsequent lines are indented with indent.
func (c *Context) Show(indent string) string {
	if err := c.checkPosition(); err != nil {
		return err.Error()
	}
	desc := c.describeStart() + ": "
	before := c.Source[:c.From]
	culprit := c.Source[c.From:c.To]
	head := lastLine(before)

	var tail string
	if strings.HasSuffix(culprit, "\n") {
		culprit = culprit[:len(culprit)-1]
	} else {
		tail = firstLine(c.Source[c.To:])
	}
	if culprit == "" {
		culprit = culpritPlaceHolder
	}

	var sb strings.Builder
	sb.WriteString(desc)
	sb.WriteString(head)
	lines := strings.Split(culprit, "\n")
	for i, line := range lines {
		if i > 0 {
			sb.WriteString("\n" + indent)
		}
		sb.WriteString(culpritStart + line + culpritEnd)
	}
	sb.WriteString(tail)
	if underline && len(lines) == 1 && c.From != c.To {
		pad := utf8.RuneCountInString(desc + head)
		sb.WriteString("\n" + indent + strings.Repeat(" ", pad) +
			strings.Repeat("^", utf8.RuneCountInString(culprit)))
	}
	return sb.String()
}

func (c *Context) describeStart() string {
	if c.checkPosition() != nil {
		return c.Name + ":?"
	}
	before := c.Source[:c.From]
	line := strings.Count(before, "\n") + 1
	col := utf8.RuneCountInString(lastLine(before)) + 1
	return fmt.Sprintf("%s:%d:%d", c.Name, line, col)
}

func (c *Context) checkPosition() error {
	if c.From == -1 {
		return fmt.Errorf("%s, unknown position", c.Name)
	} else if c.From < 0 || c.To > len(c.Source) || c.From > c.To {
		return fmt.Errorf("%s, invalid position %d-%d", c.Name, c.From, c.To)
	}
	return nil
}

func firstLine(s string) string {
	i := strings.IndexByte(s, '\n')
	if i == -1 {
		return s
	}
	return s[:i]
}

func lastLine(s string) string {
	// When s does not contain '\n', LastIndexByte returns -1, which happens to
	// be what we want.
	return s[strings.LastIndexByte(s, '\n')+1:]
}

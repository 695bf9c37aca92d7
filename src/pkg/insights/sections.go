package insights

import (
	"strings"
	"unicode"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

type SectionType string

const (
	SectionPositive SectionType = "positive"
	SectionWarning  SectionType = "warning"
	SectionInsight  SectionType = "insight"
)

// Section is one titled block of a model answer.
type Section struct {
	Title   string      `json:"title"`
	Type    SectionType `json:"type"`
	Body    string      `json:"body,omitempty"`
	Bullets []string    `json:"bullets"`
}

var markdown = goldmark.New()

/*
ParseSections splits a markdown answer into sections.

A section starts at a heading, at a paragraph that is only bold text, or at
an ordered list item written in capitals ("1. RISK ALERTS - ..."). Bullet
items are collected per section and paragraphs become the body. Text before
the first heading lands in a "Summary" section.
*/
func ParseSections(answer string) []Section {
	source := []byte(answer)
	document := markdown.Parser().Parse(text.NewReader(source))

	p := &sectionParser{source: source}
	for node := document.FirstChild(); node != nil; node = node.NextSibling() {
		p.block(node)
	}
	p.flush()
	if p.sections == nil {
		return []Section{}
	}
	return p.sections
}

type sectionParser struct {
	source   []byte
	sections []Section
	current  *Section
}

func (p *sectionParser) start(title string) {
	p.flush()
	title = strings.TrimLeft(strings.TrimSpace(title), "0123456789.) ")
	title = strings.TrimSpace(strings.TrimRight(title, ":"))
	p.current = &Section{Title: title, Type: Classify(title), Bullets: []string{}}
}

func (p *sectionParser) flush() {
	if p.current == nil {
		return
	}
	p.current.Body = strings.TrimSpace(p.current.Body)
	if p.current.Title != "" || p.current.Body != "" || len(p.current.Bullets) > 0 {
		p.sections = append(p.sections, *p.current)
	}
	p.current = nil
}

func (p *sectionParser) section() *Section {
	if p.current == nil {
		p.current = &Section{Title: "Summary", Type: SectionInsight, Bullets: []string{}}
	}
	return p.current
}

func (p *sectionParser) block(node ast.Node) {
	switch n := node.(type) {
	case *ast.Heading:
		p.start(p.text(n))
	case *ast.Paragraph:
		if title, ok := p.boldLine(n); ok {
			p.start(title)
			return
		}
		s := p.section()
		if s.Body != "" {
			s.Body += "\n\n"
		}
		s.Body += p.text(n)
	case *ast.List:
		p.list(n)
	case *ast.ThematicBreak:
	default:
		if line := strings.TrimSpace(p.text(n)); line != "" {
			s := p.section()
			s.Body += "\n" + line
		}
	}
}

func (p *sectionParser) list(list *ast.List) {
	for item := list.FirstChild(); item != nil; item = item.NextSibling() {
		var lead string
		if first := item.FirstChild(); first != nil {
			lead = p.text(first)
		}

		if list.IsOrdered() && isCapitalHeading(lead) {
			title, rest := splitHeading(lead)
			p.start(title)
			p.current.Body = rest
		} else if lead != "" {
			s := p.section()
			s.Bullets = append(s.Bullets, lead)
		}

		// nested lists hold the bullets of this item
		for child := item.FirstChild(); child != nil; child = child.NextSibling() {
			if nested, ok := child.(*ast.List); ok {
				p.list(nested)
			}
		}
	}
}

// boldLine reports a paragraph made only of strong text, "**Risk Alerts**".
func (p *sectionParser) boldLine(paragraph *ast.Paragraph) (string, bool) {
	child := paragraph.FirstChild()
	if child == nil {
		return "", false
	}
	emphasis, ok := child.(*ast.Emphasis)
	if !ok || emphasis.Level != 2 {
		return "", false
	}
	rest := ""
	for sibling := child.NextSibling(); sibling != nil; sibling = sibling.NextSibling() {
		rest += p.text(sibling)
	}
	if strings.Trim(strings.TrimSpace(rest), ":") != "" {
		return "", false
	}
	return p.text(emphasis), true
}

// text flattens inline content; soft line breaks become spaces.
func (p *sectionParser) text(node ast.Node) string {
	var builder strings.Builder
	_ = ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := n.(type) {
		case *ast.List:
			if n != node {
				return ast.WalkSkipChildren, nil
			}
		case *ast.Text:
			builder.Write(t.Segment.Value(p.source))
			if t.SoftLineBreak() || t.HardLineBreak() {
				builder.WriteByte(' ')
			}
		case *ast.String:
			builder.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(builder.String())
}

/*
isCapitalHeading matches "KEY FINANCIAL METRICS SUMMARY - Overview of ..." :
the part before any dash or colon has letters and no lower case ones.
*/
func isCapitalHeading(line string) bool {
	head, _ := splitHeading(line)
	letters := 0
	for _, r := range head {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsLetter(r) {
			letters++
		}
	}
	return letters >= 3
}

// splitHeading cuts "TITLE - rest" (or "TITLE: rest") in two.
func splitHeading(line string) (head, rest string) {
	if i := strings.IndexAny(line, "-:–"); i >= 0 {
		return strings.TrimSpace(line[:i]), strings.TrimSpace(strings.TrimLeft(line[i:], "-:– "))
	}
	return strings.TrimSpace(line), ""
}

// Classify maps a section title to the card colour the dashboard uses.
func Classify(title string) SectionType {
	upper := strings.ToUpper(title)
	for _, word := range []string{"RISK", "ALERT", "WARNING", "CONCERN", "RED FLAG"} {
		if strings.Contains(upper, word) {
			return SectionWarning
		}
	}
	for _, word := range []string{"OPPORTUNIT", "GROWTH", "STRENGTH", "POSITIVE"} {
		if strings.Contains(upper, word) {
			return SectionPositive
		}
	}
	return SectionInsight
}

package intents

import (
	"bytes"
	"fmt"
	"strings"
	"sync"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
	"gopkg.in/yaml.v3"
)

// frontmatterFence delimits the YAML header of an intent file.
const frontmatterFence = "---"

// frontmatter is the YAML header of an intent markdown file.
type frontmatter struct {
	ID          string     `yaml:"id"`
	Status      string     `yaml:"status"`
	UserGoal    string     `yaml:"userGoal"`
	Objectives  []string   `yaml:"objectives"`
	Outcomes    []string   `yaml:"outcomes"`
	Constraints []string   `yaml:"constraints"`
	Relations   []Relation `yaml:"relations"`
	CreatedAt   string     `yaml:"createdAt"`
	UpdatedAt   string     `yaml:"updatedAt"`
}

var (
	markdownOnce   sync.Once
	markdownParser goldmark.Markdown
)

func getMarkdownParser() goldmark.Markdown {
	markdownOnce.Do(func() {
		markdownParser = goldmark.New(goldmark.WithExtensions(extension.GFM))
	})
	return markdownParser
}

// ParseIntent decodes an intent file. fallbackID is used when the
// frontmatter has no id (normally the file name without extension).
//
// Layout:
//
//	---
//	id: checkout-flow
//	status: draft
//	userGoal: Let customers pay with saved cards
//	relations:
//	  - target: payment-api
//	    type: depends_on
//	---
//	## Objectives
//	- Reuse stored card tokens
//
// List items under "Objectives", "Outcomes" and "Constraints" headings are
// appended to the matching frontmatter lists.
func ParseIntent(fallbackID string, data []byte) (*Intent, error) {
	front, body, err := splitFrontmatter(data)
	if err != nil {
		return nil, err
	}

	var fm frontmatter
	if len(front) > 0 {
		if err := yaml.Unmarshal(front, &fm); err != nil {
			return nil, fmt.Errorf("parsing frontmatter: %w", err)
		}
	}

	in := &Intent{
		ID:          strings.TrimSpace(fm.ID),
		UserGoal:    strings.TrimSpace(fm.UserGoal),
		Objectives:  fm.Objectives,
		Outcomes:    fm.Outcomes,
		Constraints: fm.Constraints,
		Relations:   fm.Relations,
		CreatedAt:   fm.CreatedAt,
		UpdatedAt:   fm.UpdatedAt,
	}
	if in.ID == "" {
		in.ID = fallbackID
	}

	in.Status = StatusDraft
	if strings.TrimSpace(fm.Status) != "" {
		s, err := ParseStatus(fm.Status)
		if err != nil {
			return nil, err
		}
		in.Status = s
	}

	sections := parseBody(body)
	in.Objectives = append(in.Objectives, sections.objectives...)
	in.Outcomes = append(in.Outcomes, sections.outcomes...)
	in.Constraints = append(in.Constraints, sections.constraints...)
	if in.UserGoal == "" {
		in.UserGoal = sections.title
	}

	return in, nil
}

// splitFrontmatter separates the YAML header from the markdown body.
// A file without an opening fence has no frontmatter.
func splitFrontmatter(data []byte) (front, body []byte, err error) {
	data = bytes.TrimPrefix(data, []byte("\ufeff"))
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if !bytes.HasPrefix(trimmed, []byte(frontmatterFence)) {
		return nil, data, nil
	}

	rest := trimmed[len(frontmatterFence):]
	nl := bytes.IndexByte(rest, '\n')
	if nl < 0 {
		return nil, nil, fmt.Errorf("unterminated frontmatter")
	}
	if strings.TrimSpace(string(rest[:nl])) != "" {
		// "---something" on the first line is not a fence.
		return nil, data, nil
	}
	rest = rest[nl+1:]

	for offset := 0; offset <= len(rest); {
		end := bytes.IndexByte(rest[offset:], '\n')
		var line []byte
		if end < 0 {
			line = rest[offset:]
		} else {
			line = rest[offset : offset+end]
		}
		if strings.TrimSpace(string(line)) == frontmatterFence {
			front = rest[:offset]
			if end < 0 {
				return front, nil, nil
			}
			return front, rest[offset+end+1:], nil
		}
		if end < 0 {
			break
		}
		offset += end + 1
	}
	return nil, nil, fmt.Errorf("unterminated frontmatter")
}

type bodySections struct {
	title       string
	objectives  []string
	outcomes    []string
	constraints []string
}

// parseBody walks the markdown AST and collects top-level list items
// under the known section headings.
func parseBody(body []byte) bodySections {
	var out bodySections
	if len(bytes.TrimSpace(body)) == 0 {
		return out
	}

	doc := getMarkdownParser().Parser().Parse(text.NewReader(body))

	var current *[]string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Heading:
			title := inlineText(node, body)
			if node.Level == 1 && out.title == "" {
				out.title = title
			}
			switch strings.ToLower(title) {
			case "objectives":
				current = &out.objectives
			case "outcomes", "expected outcomes":
				current = &out.outcomes
			case "constraints":
				current = &out.constraints
			default:
				current = nil
			}
			return ast.WalkSkipChildren, nil
		case *ast.ListItem:
			if current == nil || node.Parent() == nil || node.Parent().Parent() != doc {
				return ast.WalkContinue, nil
			}
			if item := listItemText(node, body); item != "" {
				*current = append(*current, item)
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})

	return out
}

// inlineText concatenates the text segments below n.
func inlineText(n ast.Node, source []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(source))
			if t.SoftLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(t.Value)
		case *ast.CodeSpan:
			for child := t.FirstChild(); child != nil; child = child.NextSibling() {
				if seg, ok := child.(*ast.Text); ok {
					b.Write(seg.Segment.Value(source))
				}
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(b.String())
}

// listItemText returns the text of the first block in a list item.
func listItemText(item *ast.ListItem, source []byte) string {
	first := item.FirstChild()
	if first == nil {
		return ""
	}
	return inlineText(first, source)
}

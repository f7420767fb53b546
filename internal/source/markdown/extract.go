package markdown

import (
	"bytes"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// item is one card extracted from a document, with its byte offset so
// mixed extraction kinds keep document order.
type item struct {
	front  string
	back   string
	offset int
}

// pairSeparator splits a single-line card into front and back.
const pairSeparator = "::"

// section is the byte range covered by a question heading's body.
// Lines inside it are not scanned for single-line pairs.
type section struct {
	start, end int
}

// extract pulls review items out of one markdown document. Two forms
// are recognized:
//
//   - a paragraph or list line "front :: back";
//   - a top-level ATX heading ending in "?", whose front is the heading
//     text and whose back is the raw section body up to the next
//     heading of the same or higher level.
//
// Items come back in document order. Malformed lines are simply not
// items; extraction never fails.
func extract(src []byte) []item {
	doc := goldmark.New().Parser().Parse(text.NewReader(src))

	headings := collectHeadings(src, doc)
	items, sections := headingItems(src, headings)

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		var lines *text.Segments
		switch b := n.(type) {
		case *ast.Paragraph:
			lines = b.Lines()
		case *ast.TextBlock:
			lines = b.Lines()
		default:
			return ast.WalkContinue, nil
		}

		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			if insideSection(sections, seg.Start) {
				continue
			}
			front, back, ok := splitPair(string(seg.Value(src)))
			if !ok {
				continue
			}
			items = append(items, item{front: front, back: back, offset: seg.Start})
		}
		return ast.WalkContinue, nil
	})

	sortItems(items)
	return items
}

// docHeading is a top-level heading with enough position data to bound
// its section.
type docHeading struct {
	level     int
	text      string
	lineStart int // offset of the first byte of the heading line
	bodyStart int // offset just past the heading line
	atx       bool
}

func collectHeadings(src []byte, doc ast.Node) []docHeading {
	var out []docHeading
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		h, ok := n.(*ast.Heading)
		if !ok || h.Lines().Len() == 0 {
			continue
		}

		first := h.Lines().At(0)
		last := h.Lines().At(h.Lines().Len() - 1)
		lineStart := bytes.LastIndexByte(src[:first.Start], '\n') + 1

		bodyStart := last.Stop
		if idx := bytes.IndexByte(src[bodyStart:], '\n'); idx >= 0 {
			bodyStart += idx + 1
		} else {
			bodyStart = len(src)
		}

		out = append(out, docHeading{
			level:     h.Level,
			text:      strings.TrimSpace(nodeText(src, h)),
			lineStart: lineStart,
			bodyStart: bodyStart,
			atx:       lineStart < len(src) && src[lineStart] == '#',
		})
	}
	return out
}

// headingItems turns question headings into items and reports the byte
// ranges their bodies cover.
func headingItems(src []byte, headings []docHeading) ([]item, []section) {
	var items []item
	var sections []section

	for i, h := range headings {
		if !h.atx || !strings.HasSuffix(h.text, "?") {
			continue
		}

		end := len(src)
		for _, next := range headings[i+1:] {
			if next.level <= h.level {
				end = next.lineStart
				break
			}
		}

		back := strings.TrimSpace(string(src[h.bodyStart:end]))
		if back == "" {
			continue
		}

		items = append(items, item{front: h.text, back: back, offset: h.lineStart})
		sections = append(sections, section{start: h.bodyStart, end: end})
	}
	return items, sections
}

// splitPair parses a "front :: back" line. Both halves must be
// non-empty after trimming. List markers never reach here; the parser
// strips them before handing over the line.
func splitPair(line string) (front, back string, ok bool) {
	before, after, found := strings.Cut(line, pairSeparator)
	if !found {
		return "", "", false
	}
	front = strings.TrimSpace(before)
	back = strings.TrimSpace(after)
	if front == "" || back == "" {
		return "", "", false
	}
	return front, back, true
}

func insideSection(sections []section, offset int) bool {
	for _, s := range sections {
		if offset >= s.start && offset < s.end {
			return true
		}
	}
	return false
}

// nodeText flattens a node's inline content to plain text.
func nodeText(src []byte, n ast.Node) string {
	var buf bytes.Buffer
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			buf.Write(t.Segment.Value(src))
		case *ast.String:
			buf.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return buf.String()
}

// sortItems orders items by byte offset. Extraction appends all
// heading items before the line items, so the mixed kinds need one
// stable sort to restore document order.
func sortItems(items []item) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].offset < items[j].offset
	})
}

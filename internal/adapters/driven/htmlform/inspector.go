// Package htmlform inspects generated form HTML with goquery.
package htmlform

import (
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/custodia-labs/pageform/internal/core/domain"
	"github.com/custodia-labs/pageform/internal/core/ports/driven"
)

// Ensure Inspector implements the interface.
var _ driven.FormInspector = (*Inspector)(nil)

var (
	// redValue matches CSS values that render red.
	redValue = regexp.MustCompile(`(?i)(^|[\s:,(])(red|#f00|#ff0000|#e53935|#d32f2f|#dc3545|rgba?\(\s*255\s*,\s*0\s*,\s*0)\b`)

	// cssRule captures a selector list and its declarations.
	cssRule = regexp.MustCompile(`([^{}]+)\{([^}]*)\}`)

	// classSelector picks class names out of a selector list.
	classSelector = regexp.MustCompile(`\.([A-Za-z_][\w-]*)`)
)

// Inspector implements driven.FormInspector.
type Inspector struct{}

// New creates an Inspector.
func New() *Inspector {
	return &Inspector{}
}

// Inspect reports the title, the number of editable fields, and how many
// elements the model flagged in red.
func (i *Inspector) Inspect(src string) (*domain.FormStats, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("parse form html: %w", err)
	}

	stats := &domain.FormStats{
		Title: strings.TrimSpace(doc.Find("title").First().Text()),
	}
	if stats.Title == "" {
		stats.Title = strings.TrimSpace(doc.Find("h1").First().Text())
	}

	doc.Find("input, select, textarea").Each(func(_ int, s *goquery.Selection) {
		if goquery.NodeName(s) == "input" {
			switch strings.ToLower(s.AttrOr("type", "text")) {
			case "hidden", "submit", "button", "reset", "image":
				return
			}
		}
		stats.Fields++
	})

	redClasses := redClassNames(doc)
	doc.Find("body *").Each(func(_ int, s *goquery.Selection) {
		if style, ok := s.Attr("style"); ok && isRedStyle(style) {
			stats.LowConfidence++
			return
		}
		for _, class := range strings.Fields(s.AttrOr("class", "")) {
			if redClasses[class] {
				stats.LowConfidence++
				return
			}
		}
	})

	return stats, nil
}

// redClassNames collects classes whose <style> rules paint them red.
func redClassNames(doc *goquery.Document) map[string]bool {
	classes := make(map[string]bool)
	doc.Find("style").Each(func(_ int, s *goquery.Selection) {
		for _, rule := range cssRule.FindAllStringSubmatch(s.Text(), -1) {
			if !isRedStyle(rule[2]) {
				continue
			}
			for _, m := range classSelector.FindAllStringSubmatch(rule[1], -1) {
				classes[m[1]] = true
			}
		}
	})
	return classes
}

func isRedStyle(decls string) bool {
	for _, decl := range strings.Split(decls, ";") {
		name, value, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		name = strings.ToLower(strings.TrimSpace(name))
		if name != "color" && !strings.HasPrefix(name, "border") && !strings.HasPrefix(name, "background") && !strings.HasPrefix(name, "outline") {
			continue
		}
		if redValue.MatchString(" " + value) {
			return true
		}
	}
	return false
}

// Document wraps a fragment in a minimal page. Complete documents are
// returned unchanged.
func (i *Inspector) Document(src, title string) string {
	head := strings.ToLower(strings.TrimSpace(src))
	if strings.HasPrefix(head, "<!doctype") || strings.HasPrefix(head, "<html") {
		return src
	}

	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>")
	sb.WriteString(html.EscapeString(title))
	sb.WriteString("</title>\n</head>\n<body>\n")
	sb.WriteString(src)
	sb.WriteString("\n</body>\n</html>\n")
	return sb.String()
}

// Package rules parses the comprehensive rules document into a navigable
// tree of sections and subsections.
package rules

import (
	"regexp"
	"strings"
	"unicode"
)

// Subsection is an ordered run of content lines under a numbered (or
// synthetic) heading.
type Subsection struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Content []string `json:"content"`
}

// Section groups subsections under a top-level heading.
type Section struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Subsections []Subsection `json:"subsections"`
}

const (
	sectionIntroduction = "Introduction"
	sectionGlossary     = "Glossary"
	sectionCredits      = "Credits"
)

var (
	subsectionRe = regexp.MustCompile(`^(\d{3})\.\s+(.+)$`)
	sectionRe    = regexp.MustCompile(`^(\d+)\.\s+(.+)$`)

	definitionEndRe  = regexp.MustCompile(`[.:;"”]$`)
	numberedClauseRe = regexp.MustCompile(`^\d+\.`)
)

// isGlossaryTerm classifies a glossary line as a term heading rather
// than definition content. The heuristic is deliberate and must not be
// "improved": correctness is defined by matching the known document, not
// by linguistic accuracy.
func isGlossaryTerm(line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return false
	}
	// Definitions end in sentence punctuation or a closing quote
	if definitionEndRe.MatchString(trimmed) {
		return false
	}
	// Enumerated definition clauses start with a number and period
	if numberedClauseRe.MatchString(trimmed) {
		return false
	}
	// Cross-references are definition content
	if strings.HasPrefix(trimmed, "See rule") || strings.HasPrefix(trimmed, "See section") {
		return false
	}
	return true
}

// parser holds the cursors for the single left-to-right scan.
type parser struct {
	sections     []*Section
	sectionByID  map[string]*Section
	currentSecID string
	currentSubID string
}

// Parse builds the rules tree from the raw document text. The scan is a
// single non-recursive fold over lines, so parsing the same text always
// yields an identical tree.
func Parse(text string) []Section {
	p := &parser{sectionByID: make(map[string]*Section)}

	for _, line := range strings.Split(text, "\n") {
		p.consume(strings.TrimSpace(strings.TrimSuffix(line, "\r")))
	}

	result := make([]Section, 0, len(p.sections))
	for _, s := range p.sections {
		result = append(result, *s)
	}
	return result
}

func (p *parser) consume(trimmed string) {
	if trimmed == "" {
		return
	}
	if trimmed == "Contents" {
		return // table-of-contents header
	}
	if strings.HasPrefix(trimmed, "Magic: The Gathering Comprehensive Rules") {
		return // document title
	}

	switch trimmed {
	case sectionIntroduction:
		sec := p.getOrCreateSection(sectionIntroduction, sectionIntroduction)
		p.currentSecID = sectionIntroduction
		p.ensureSubsection(sec, "intro", "")
		p.currentSubID = "intro"
		return
	case sectionGlossary:
		p.getOrCreateSection(sectionGlossary, sectionGlossary)
		p.currentSecID = sectionGlossary
		p.currentSubID = ""
		return
	case sectionCredits:
		// Also terminates glossary mode when encountered inside it
		sec := p.getOrCreateSection(sectionCredits, sectionCredits)
		p.currentSecID = sectionCredits
		p.ensureSubsection(sec, "credits", sectionCredits)
		p.currentSubID = "credits"
		return
	}

	if p.currentSecID == sectionGlossary {
		p.consumeGlossary(trimmed)
		return
	}

	// Subsection heading: NNN. Title, parented by the leading digit
	if m := subsectionRe.FindStringSubmatch(trimmed); m != nil {
		id, title := m[1], m[2]

		parentID := p.currentSecID
		if parentID == "" || (!isSpecialSection(parentID) && !strings.HasPrefix(id, parentID)) {
			parentID = id[:1]
		}

		parentTitle := "Section " + parentID
		if existing, ok := p.sectionByID[parentID]; ok {
			parentTitle = existing.Title
		}
		sec := p.getOrCreateSection(parentID, parentTitle)
		p.currentSecID = parentID
		p.ensureSubsection(sec, id, title)
		p.currentSubID = id
		return
	}

	// Section heading: N. Title
	if m := sectionRe.FindStringSubmatch(trimmed); m != nil {
		p.getOrCreateSection(m[1], m[2])
		p.currentSecID = m[1]
		p.currentSubID = ""
		return
	}

	p.appendContent(trimmed)
}

// consumeGlossary handles the glossary sub-mode: term lines open (or
// reuse) a letter bucket, everything else appends to the most recently
// opened bucket.
func (p *parser) consumeGlossary(trimmed string) {
	sec := p.sectionByID[sectionGlossary]

	if !isGlossaryTerm(trimmed) {
		if p.currentSubID != "" {
			if sub := findSubsection(sec, p.currentSubID); sub != nil {
				sub.Content = append(sub.Content, trimmed)
			}
		}
		return
	}

	first := unicode.ToUpper(rune(trimmed[0]))
	switch {
	case first >= 'A' && first <= 'Z', first >= '0' && first <= '9':
		title := "#"
		if first >= 'A' && first <= 'Z' {
			title = string(first)
		}
		id := "glossary-" + title

		sub := findSubsection(sec, id)
		if sub == nil {
			sec.Subsections = append(sec.Subsections, Subsection{ID: id, Title: title})
			sub = &sec.Subsections[len(sec.Subsections)-1]
		}
		p.currentSubID = id
		sub.Content = append(sub.Content, trimmed)
	default:
		// Unusual leading character: treat as content of the last bucket
		if p.currentSubID == "" && len(sec.Subsections) > 0 {
			p.currentSubID = sec.Subsections[len(sec.Subsections)-1].ID
		}
		if p.currentSubID != "" {
			if sub := findSubsection(sec, p.currentSubID); sub != nil {
				sub.Content = append(sub.Content, trimmed)
			}
		}
	}
}

// appendContent adds a plain line to the open subsection, falling back to
// the section's last subsection. Lines with no open section are dropped.
func (p *parser) appendContent(trimmed string) {
	if p.currentSecID == "" {
		return
	}
	sec, ok := p.sectionByID[p.currentSecID]
	if !ok {
		return
	}

	targetID := p.currentSubID
	if targetID == "" && len(sec.Subsections) > 0 {
		targetID = sec.Subsections[len(sec.Subsections)-1].ID
	}
	if targetID == "" {
		return
	}
	if sub := findSubsection(sec, targetID); sub != nil {
		sub.Content = append(sub.Content, trimmed)
	}
}

func (p *parser) getOrCreateSection(id, title string) *Section {
	if sec, ok := p.sectionByID[id]; ok {
		return sec
	}
	sec := &Section{ID: id, Title: title}
	p.sectionByID[id] = sec
	p.sections = append(p.sections, sec)
	return sec
}

func (p *parser) ensureSubsection(sec *Section, id, title string) {
	if findSubsection(sec, id) == nil {
		sec.Subsections = append(sec.Subsections, Subsection{ID: id, Title: title})
	}
}

func findSubsection(sec *Section, id string) *Subsection {
	for i := range sec.Subsections {
		if sec.Subsections[i].ID == id {
			return &sec.Subsections[i]
		}
	}
	return nil
}

func isSpecialSection(id string) bool {
	return id == sectionIntroduction || id == sectionGlossary || id == sectionCredits
}

// Search filters the tree by a case-insensitive term. A section whose
// title matches is kept whole; otherwise it is narrowed to subsections
// matching by id, title, or any content line. Sections with no matching
// subsections are dropped.
func Search(sections []Section, term string) []Section {
	if term == "" {
		return sections
	}
	needle := strings.ToLower(term)

	var result []Section
	for _, sec := range sections {
		if strings.Contains(strings.ToLower(sec.Title), needle) {
			result = append(result, sec)
			continue
		}

		var matched []Subsection
		for _, sub := range sec.Subsections {
			if strings.Contains(sub.ID, needle) ||
				strings.Contains(strings.ToLower(sub.Title), needle) ||
				anyLineContains(sub.Content, needle) {
				matched = append(matched, sub)
			}
		}
		if len(matched) > 0 {
			result = append(result, Section{ID: sec.ID, Title: sec.Title, Subsections: matched})
		}
	}
	return result
}

func anyLineContains(lines []string, needle string) bool {
	for _, line := range lines {
		if strings.Contains(strings.ToLower(line), needle) {
			return true
		}
	}
	return false
}

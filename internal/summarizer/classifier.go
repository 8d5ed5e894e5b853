package summarizer

import (
	"regexp"
	"strings"
)

// Category selects the prompt template used for a piece of text.
type Category int

const (
	// Generic text gets a plain summarization prompt.
	Generic Category = iota
	// ResumeLike text gets a structured extraction prompt.
	ResumeLike
)

const (
	genericTemplate = "summarize: "
	resumeTemplate  = "Extract the key details from this resume. List the candidate's education, " +
		"work experience, skills, certifications and notable projects:\n"
)

var (
	resumeStrongRe  = regexp.MustCompile(`\b(curriculum vitae|cv)\b|résumé`)
	resumeSectionRe = regexp.MustCompile(`\b(resume|education|experience|skills|certifications?|projects|employment|work history|objective|references)\b`)
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case ResumeLike:
		return "resume"
	default:
		return "generic"
	}
}

// Template returns the prompt prefix for the category.
func (c Category) Template() string {
	if c == ResumeLike {
		return resumeTemplate
	}
	return genericTemplate
}

// Classify decides whether text reads like a résumé or CV.
// An explicit résumé/CV marker, or two distinct section headings, is enough.
// The unaccented "resume" is also a verb, so it only counts as a heading.
func Classify(text string) Category {
	lower := strings.ToLower(text)
	if resumeStrongRe.MatchString(lower) {
		return ResumeLike
	}
	seen := make(map[string]struct{})
	for _, m := range resumeSectionRe.FindAllString(lower, -1) {
		seen[strings.TrimSuffix(m, "s")] = struct{}{}
		if len(seen) >= 2 {
			return ResumeLike
		}
	}
	return Generic
}

// Prompt prefixes text with the template of its category.
func Prompt(text string) string {
	return Classify(text).Template() + text
}

// StripPrompt removes a known template prefix, for providers that work on raw text.
func StripPrompt(text string) string {
	for _, tmpl := range []string{resumeTemplate, genericTemplate} {
		if strings.HasPrefix(text, tmpl) {
			return text[len(tmpl):]
		}
	}
	return text
}

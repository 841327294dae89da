package wordpress

import (
	"fmt"
	"html"
	"strings"

	"yt2wp/internal/metadata"
)

// Shortcode renders the dharma_player shortcode for one entry. mediaBase must
// not end with a slash.
func Shortcode(mediaBase string, entry metadata.Entry, audioExt string, skip int) string {
	return fmt.Sprintf(`[dharma_player audio="%s/%s.%s" image="%s/%s.jpg" title="%s" skip="%d"]`,
		mediaBase, entry.ID, audioExt,
		mediaBase, entry.ID,
		html.EscapeString(entry.Title),
		skip,
	)
}

// RenderContent builds the block-editor content of a post: the shortcode
// block followed by one paragraph block per blank-line separated paragraph
// of the description.
func RenderContent(mediaBase string, entry metadata.Entry, audioExt string, skip int) string {
	var b strings.Builder
	b.WriteString("<!-- wp:shortcode -->\n")
	b.WriteString(Shortcode(mediaBase, entry, audioExt, skip))
	b.WriteString("\n<!-- /wp:shortcode -->\n\n")
	b.WriteString(renderParagraphs(entry.Description))
	return b.String()
}

func renderParagraphs(description string) string {
	paragraphs := splitParagraphs(description)
	if len(paragraphs) == 0 {
		return "<!-- wp:paragraph -->\n<p></p>\n<!-- /wp:paragraph -->"
	}
	blocks := make([]string, 0, len(paragraphs))
	for _, p := range paragraphs {
		blocks = append(blocks, "<!-- wp:paragraph -->\n<p>"+html.EscapeString(p)+"</p>\n<!-- /wp:paragraph -->")
	}
	return strings.Join(blocks, "\n")
}

// splitParagraphs joins consecutive non-blank lines with a space and splits
// on blank lines.
func splitParagraphs(text string) []string {
	var paragraphs []string
	var current []string
	flush := func() {
		if len(current) > 0 {
			paragraphs = append(paragraphs, strings.Join(current, " "))
			current = nil
		}
	}
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			current = append(current, trimmed)
			continue
		}
		flush()
	}
	flush()
	return paragraphs
}

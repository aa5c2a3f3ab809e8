package ops

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/yuin/goldmark"

	"marginalia/internal/annot"
	"marginalia/internal/errors"
)

// Export formats
const (
	FormatMarkdown = "markdown"
	FormatHTML     = "html"
)

// ExportInput contains parameters for the Export operation.
type ExportInput struct {
	// Title heads the exported document. Defaults to "Annotations".
	Title string `json:"title,omitempty"`

	// Records is the canonical list to export, in display order.
	Records []annot.Summary `json:"records"`

	// Format is "markdown" (default) or "html".
	Format string `json:"format,omitempty"`
}

// ExportOutput contains the rendered document.
type ExportOutput struct {
	Format  string `json:"format"`
	Content string `json:"content"`
	Records int    `json:"records"`
}

// Export renders the canonical annotation list as a markdown document
// grouped by page, optionally converted to HTML.
func Export(input ExportInput) (*ExportOutput, error) {
	format := strings.ToLower(strings.TrimSpace(input.Format))
	if format == "" {
		format = FormatMarkdown
	}
	if format != FormatMarkdown && format != FormatHTML {
		return nil, errors.NewInvalidRequest("format must be one of: markdown, html")
	}

	md := renderMarkdown(input.Title, input.Records)

	content := md
	if format == FormatHTML {
		var buf bytes.Buffer
		if err := goldmark.Convert([]byte(md), &buf); err != nil {
			return nil, errors.NewInternal(err)
		}
		content = buf.String()
	}

	return &ExportOutput{
		Format:  format,
		Content: content,
		Records: len(input.Records),
	}, nil
}

func renderMarkdown(title string, records []annot.Summary) string {
	if strings.TrimSpace(title) == "" {
		title = "Annotations"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n", title)

	lastPage := -1
	for _, rec := range records {
		if rec.PageIndex != lastPage {
			fmt.Fprintf(&b, "\n## Page %d\n", rec.PageNumber())
			lastPage = rec.PageIndex
		}

		label := rec.KindLabel
		if label == "" {
			label = rec.Subtype
		}
		if label == "" {
			label = "Annotation"
		}

		fmt.Fprintf(&b, "\n### %s", label)
		if rec.Author != "" {
			fmt.Fprintf(&b, " by %s", rec.Author)
		}
		b.WriteString("\n")

		if rec.ModifiedAt != nil {
			fmt.Fprintf(&b, "*%s*\n", time.Unix(*rec.ModifiedAt, 0).UTC().Format("2006-01-02 15:04"))
		}
		if text := rec.TrimmedText(); text != "" {
			fmt.Fprintf(&b, "\n%s\n", text)
		}
	}

	return b.String()
}

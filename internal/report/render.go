package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/russross/blackfriday/v2"

	"github.com/kurihiro0119/github-leak-audit/internal/domain"
)

// Format is an output format for a report
type Format string

const (
	FormatHTML  Format = "html"
	FormatJSON  Format = "json"
	FormatTable Format = "table"
)

// ParseFormat returns the format named by s
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatHTML, FormatJSON, FormatTable:
		return f, nil
	default:
		return "", fmt.Errorf("unknown report format %q (want html, json or table)", s)
	}
}

// Extension is the file extension, with dot, conventional for the format
func (f Format) Extension() string {
	switch f {
	case FormatJSON:
		return ".json"
	case FormatTable:
		return ".txt"
	default:
		return ".html"
	}
}

// Render writes the report in the given format
func Render(w io.Writer, rep *domain.Report, format Format) error {
	switch format {
	case FormatHTML:
		return RenderHTML(w, rep)
	case FormatJSON:
		return RenderJSON(w, rep)
	case FormatTable:
		return RenderTable(w, rep)
	default:
		return fmt.Errorf("unknown report format %q", format)
	}
}

// Markdown returns the report as a Markdown document
func Markdown(rep *domain.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Leak Report: %s\n\n", escapeMarkdown(rep.Org))
	fmt.Fprintf(&b, "Generated %s. Searched %d members in %d queries for references to **%s**.\n\n",
		rep.GeneratedAt.Format(time.RFC1123), rep.MemberCount, rep.QueryCount, escapeMarkdown(rep.Keyword))

	fmt.Fprintf(&b, "## Potential leaks (%d)\n\n", rep.Count)
	if rep.Count == 0 {
		b.WriteString("No personal repositories reference the organization.\n\n")
	} else {
		b.WriteString("| Repository | Remediation |\n|---|---|\n")
		for _, leak := range rep.Leaks {
			fmt.Fprintf(&b, "| [%s](%s) | %s |\n", escapeMarkdown(leak.Repo), leak.URL, escapeMarkdown(leak.Remediation))
		}
		b.WriteString("\n")
	}

	if len(rep.AbandonedQueries) > 0 {
		b.WriteString("## Abandoned queries\n\nThese queries stayed rate limited past the maximum backoff and were not searched:\n\n")
		for _, q := range rep.AbandonedQueries {
			fmt.Fprintf(&b, "- `%s`\n", q)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// RenderHTML writes the report as a standalone HTML page
func RenderHTML(w io.Writer, rep *domain.Report) error {
	body := blackfriday.Run([]byte(Markdown(rep)), blackfriday.WithExtensions(blackfriday.CommonExtensions))

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>Leak Report: %s</title>\n</head>\n<body>\n",
		html.EscapeString(rep.Org))
	buf.Write(body)
	buf.WriteString("</body>\n</html>\n")

	_, err := w.Write(buf.Bytes())
	return err
}

// RenderJSON writes the report as indented JSON
func RenderJSON(w io.Writer, rep *domain.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}

// RenderTable writes the leaks as a terminal table
func RenderTable(w io.Writer, rep *domain.Report) error {
	fmt.Fprintf(w, "\nLeak Report: %s (%s)\n\n", rep.Org, rep.Keyword)

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Repository", "URL"})
	for _, leak := range rep.Leaks {
		table.Append([]string{leak.Repo, leak.URL})
	}
	table.SetFooter([]string{"Total", fmt.Sprintf("%d", rep.Count)})
	table.Render()

	for _, q := range rep.AbandonedQueries {
		fmt.Fprintf(w, "Abandoned query: %s\n", q)
	}
	return nil
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`, "|", `\|`, "*", `\*`, "_", `\_`, "[", `\[`, "]", `\]`, "<", "&lt;", ">", "&gt;", "`", "\\`",
)

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

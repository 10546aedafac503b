package worksheet

import (
	"encoding/json"
	"fmt"
	"html/template"
	"io"

	"github.com/felixgeelhaar/mathdrill/internal/domain"
	"github.com/felixgeelhaar/mathdrill/internal/markup"
)

// Format selects the output of Render
type Format string

const (
	FormatText Format = "text"
	FormatTeX  Format = "tex"
	FormatHTML Format = "html"
	FormatJSON Format = "json"
)

// ParseFormat validates a format name. Empty means text.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case "":
		return FormatText, nil
	case FormatText, FormatTeX, FormatHTML, FormatJSON:
		return f, nil
	}
	return "", fmt.Errorf("%w: format %q", domain.ErrInvalidInput, s)
}

// Render writes one side of the worksheet
func Render(w io.Writer, ws *domain.Worksheet, v domain.View, f Format) error {
	items := ws.Markup(v)
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			ID    string      `json:"id"`
			Topic string      `json:"topic"`
			View  domain.View `json:"view"`
			Items []string    `json:"items"`
		}{ws.ID, ws.Topic, v, items})
	case FormatHTML:
		return htmlPage.Execute(w, htmlData{Worksheet: ws, View: v, Items: blocks(items)})
	case FormatTeX:
		for i, item := range items {
			if _, err := fmt.Fprintf(w, "(%d) %s\n", i+1, markup.Block(item)); err != nil {
				return err
			}
		}
		return nil
	default:
		for i, item := range items {
			if _, err := fmt.Fprintf(w, "(%d) %s\n", i+1, markup.Inline(item)); err != nil {
				return err
			}
		}
		return nil
	}
}

func blocks(items []string) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = markup.Block(item)
	}
	return out
}

type htmlData struct {
	Worksheet *domain.Worksheet
	View      domain.View
	Items     []string
}

var htmlPage = template.Must(template.New("worksheet").Funcs(template.FuncMap{
	"add": func(a, b int) int { return a + b },
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Worksheet.Topic}} ({{.View}})</title>
<link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/katex@0.16.9/dist/katex.min.css">
<script defer src="https://cdn.jsdelivr.net/npm/katex@0.16.9/dist/katex.min.js"></script>
<script defer src="https://cdn.jsdelivr.net/npm/katex@0.16.9/dist/contrib/auto-render.min.js" onload="renderMathInElement(document.body)"></script>
<style>
.problem-grid { display: grid; grid-template-columns: repeat(2, 1fr); gap: 1rem; }
.problem-card { border: 1px solid #ddd; border-radius: 6px; padding: 0.75rem; }
.problem-number { font-weight: bold; }
</style>
</head>
<body>
<h1>{{.Worksheet.Topic}} <small>{{.Worksheet.Mode}} / {{.Worksheet.Difficulty}}</small></h1>
<div class="problem-grid">
{{range $i, $item := .Items}}<div class="problem-card"><span class="problem-number">({{add $i 1}})</span> {{$item}}</div>
{{end}}</div>
</body>
</html>
`))

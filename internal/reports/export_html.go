package reports

import (
	"encoding/json"
	"html/template"
	"sort"
	"strings"

	"github.com/cbmgo/financeiro/internal/shared"
)

var reportTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="pt-BR">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: Helvetica, Arial, sans-serif; margin: 2.5cm 2cm; color: #222; }
h1 { font-size: 18pt; border-bottom: 2px solid #444; padding-bottom: 6px; }
table.content { width: 100%; border-collapse: collapse; margin-top: 12px; }
table.content td { border: 1px solid #bbb; padding: 6px 8px; font-size: 10pt; vertical-align: top; }
table.content td.key { width: 30%; font-weight: bold; background: #f4f4f4; }
.signatures { margin-top: 36px; }
.signature { border-top: 1px solid #888; margin-top: 28px; padding-top: 4px; width: 60%; font-size: 10pt; }
.meta { color: #666; font-size: 9pt; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<p class="meta">Situação: {{.Status}} &mdash; criado em {{.CreatedAt}}</p>
<table class="content">
{{range .Fields}}<tr><td class="key">{{.Key}}</td><td>{{.Value}}</td></tr>
{{end}}</table>
<div class="signatures">
{{range .Signatures}}<div class="signature">{{.Name}}<br><span class="meta">assinado em {{.SignedAt}}</span></div>
{{end}}</div>
</body>
</html>`))

type reportField struct {
	Key   string
	Value string
}

type signatureView struct {
	Name     string
	SignedAt string
}

type reportView struct {
	Title      string
	Status     string
	CreatedAt  string
	Fields     []reportField
	Signatures []signatureView
}

// renderReportHTML produces the HTML document handed to Gotenberg. The
// free-form JSON content is flattened to key/value rows; signatures appear
// in ascending signing order, first signer first.
func renderReportHTML(detail *ReportDetail) (string, error) {
	view := reportView{
		Title:     detail.Title,
		Status:    detail.Status,
		CreatedAt: shared.FormatBRDate(detail.CreatedAt),
	}

	var content map[string]any
	if err := json.Unmarshal(detail.Content, &content); err == nil {
		keys := make([]string, 0, len(content))
		for key := range content {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			view.Fields = append(view.Fields, reportField{Key: key, Value: stringify(content[key])})
		}
	} else {
		view.Fields = append(view.Fields, reportField{Key: "conteúdo", Value: string(detail.Content)})
	}

	for _, sig := range detail.Signatures {
		name := sig.UserName
		if name == "" {
			name = "Usuário removido"
		}
		view.Signatures = append(view.Signatures, signatureView{
			Name:     name,
			SignedAt: sig.SignedAt.Format("02/01/2006 15:04"),
		})
	}

	var sb strings.Builder
	if err := reportTemplate.Execute(&sb, view); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func stringify(value any) string {
	switch v := value.(type) {
	case string:
		return v
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(data)
	}
}

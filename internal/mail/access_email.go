package mail

import (
	"html/template"
	"strings"

	"github.com/go-faster/errors"
)

// AccessEmailData feeds the access-details confirmation template.
// AccessDetails is operator-entered plain text; it is escaped and its
// newlines become <br> tags in the rendered body.
type AccessEmailData struct {
	OrderNumber   string
	CustomerName  string
	AccessDetails string
	Items         []AccessEmailItem
}

// AccessEmailItem is one purchased line shown in the email summary.
type AccessEmailItem struct {
	Name     string
	Duration string
	Quantity int
}

var accessEmailTmpl = template.Must(template.New("access_email").
	Funcs(template.FuncMap{"nl2br": nl2br}).
	Parse(`<p>Dear {{.CustomerName}},</p>
<p>Thank you! Your order has been confirmed. Your access details are below.</p>
<div style="padding: 15px; background-color: #f9f9f9; border: 1px solid #e0e0e0;">{{nl2br .AccessDetails}}</div>
<p>Order summary for order #{{.OrderNumber}}:</p>
<ul>
{{- range .Items}}
<li>{{.Name}} ({{.Duration}}) &times; {{.Quantity}}</li>
{{- end}}
</ul>
<p>&mdash; The Submonth Team</p>
`))

// RenderAccessEmail produces the HTML body for the manual fulfillment email.
func RenderAccessEmail(d AccessEmailData) (string, error) {
	var sb strings.Builder
	if err := accessEmailTmpl.Execute(&sb, d); err != nil {
		return "", errors.Wrap(err, "render access email")
	}
	return sb.String(), nil
}

// nl2br escapes each line of s and joins them with <br> so multi-line
// access details keep their layout in HTML clients.
func nl2br(s string) template.HTML {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = template.HTMLEscapeString(strings.TrimSuffix(l, "\r"))
	}
	return template.HTML(strings.Join(lines, "<br>"))
}

package notifier

import (
	"html/template"
	"strings"
	textTemplate "text/template"
)

const customerCreatedHTML = `<h2>Thanks for your order, {{.Order.CustomerName}}!</h2>
<p>We received your payment for order <strong>{{.Order.ID}}</strong>.</p>
<table>
<tr><td>Poster</td><td>{{.Product}}</td></tr>
<tr><td>Quantity</td><td>{{.Order.Quantity}}</td></tr>
<tr><td>Total</td><td>{{.Total}}</td></tr>
{{if .Order.ShippingAddress}}<tr><td>Ship to</td><td>{{.Order.ShippingAddress}}</td></tr>{{end}}
</table>
<p>Our designers will send you a proof before anything is printed.</p>`

const customerCreatedText = `Thanks for your order, {{.Order.CustomerName}}!
Order {{.Order.ID}}: {{.Product}} x{{.Order.Quantity}}, total {{.Total}}.
Our designers will send you a proof before anything is printed.
`

const staffCreatedHTML = `<h2>New order {{.Order.ID}}</h2>
<ul>
<li>Poster: {{.Product}} x{{.Order.Quantity}}</li>
<li>Total: {{.Total}}</li>
<li>Customer: {{.Order.CustomerName}} &lt;{{.Order.CustomerEmail}}&gt;{{if .Order.CustomerPhone}} {{.Order.CustomerPhone}}{{end}}</li>
{{if .Order.ShippingAddress}}<li>Ship to: {{.Order.ShippingAddress}}</li>{{end}}
{{if .Order.Notes}}<li>Notes: {{.Order.Notes}}</li>{{end}}
<li>Upload: {{if .UploadURL}}<a href="{{.UploadURL}}">{{.Order.UploadID}}</a>{{else}}{{.Order.UploadID}}{{end}}</li>
<li>Session: {{.Order.SessionID}}</li>
</ul>`

const staffCreatedText = `New order {{.Order.ID}}: {{.Product}} x{{.Order.Quantity}}, total {{.Total}}.
Customer: {{.Order.CustomerName}} <{{.Order.CustomerEmail}}>
Upload: {{.Order.UploadID}}
`

const statusChangedHTML = `<h2>Order {{.Order.ID}} update</h2>
<p>Hi {{.Order.CustomerName}}, your order is now <strong>{{.StatusLabel}}</strong>.</p>
<p>{{.Order.Status.Description}}</p>`

const statusChangedText = `Order {{.Order.ID}} is now {{.StatusLabel}}.
{{.Order.Status.Description}}
`

// 模板在包初始化时解析，语法错误直接 panic
var (
	customerCreated = pair(customerCreatedHTML, customerCreatedText)
	staffCreated    = pair(staffCreatedHTML, staffCreatedText)
	statusChanged   = pair(statusChangedHTML, statusChangedText)
)

type templatePair struct {
	html *template.Template
	text *textTemplate.Template
}

func pair(html, text string) templatePair {
	return templatePair{
		html: template.Must(template.New("html").Parse(html)),
		text: textTemplate.Must(textTemplate.New("text").Parse(text)),
	}
}

func (p templatePair) render(data interface{}) (string, string, error) {
	var h, t strings.Builder
	if err := p.html.Execute(&h, data); err != nil {
		return "", "", err
	}
	if err := p.text.Execute(&t, data); err != nil {
		return "", "", err
	}
	return h.String(), t.String(), nil
}

package notification

import (
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

type templateSource struct {
	subject string
	text    string
	html    string
}

type compiled struct {
	subject *texttemplate.Template
	text    *texttemplate.Template
	html    *htmltemplate.Template
}

// template keys
const (
	tmplInquiryTeam     = "inquiry_team"
	tmplInquiryAck      = "inquiry_ack"
	tmplInquiryAssigned = "inquiry_assigned"
	tmplInquiryWon      = "inquiry_converted"
	tmplFollowUpDue     = "follow_up_due"
	tmplOrderTeam       = "order_team"
	tmplOrderCustomer   = "order_customer"
	tmplOrderStatus     = "order_status"
	tmplPaymentOverdue  = "payment_overdue"
	tmplLowStock        = "low_stock"
)

const htmlLayoutStart = `<div style="font-family:Arial,sans-serif;font-size:14px;color:#222">`
const htmlLayoutEnd = `<p style="color:#888;font-size:12px">{{.Company}}</p></div>`

var sources = map[string]templateSource{
	tmplInquiryTeam: {
		subject: `New inquiry {{.P.InquiryNumber}} from {{.P.CustomerName}}`,
		text: `Inquiry {{.P.InquiryNumber}}
Name: {{.P.CustomerName}}
Email: {{.P.Email}}
{{with .P.Company}}Company: {{.}}
{{end}}Quantity: {{.P.Quantity}}
{{with .P.Requirements}}Requirements: {{.}}
{{end}}Open: {{.Link}}`,
		html: `<h2>New inquiry {{.P.InquiryNumber}}</h2>
<table>
<tr><td>Name</td><td>{{.P.CustomerName}}</td></tr>
<tr><td>Email</td><td>{{.P.Email}}</td></tr>
{{with .P.Phone}}<tr><td>Phone</td><td>{{.}}</td></tr>{{end}}
{{with .P.Company}}<tr><td>Company</td><td>{{.}}</td></tr>{{end}}
{{with .P.UniformType}}<tr><td>Uniform</td><td>{{.}}</td></tr>{{end}}
<tr><td>Quantity</td><td>{{.P.Quantity}}</td></tr>
{{with .P.Source}}<tr><td>Source</td><td>{{.}}</td></tr>{{end}}
</table>
{{with .P.Requirements}}<p>{{.}}</p>{{end}}
<p><a href="{{.Link}}">Open in back office</a></p>`,
	},
	tmplInquiryAck: {
		subject: `We received your inquiry {{.P.InquiryNumber}}`,
		text: `Hello {{.P.CustomerName}},

Thank you for contacting {{.Company}}. Your inquiry {{.P.InquiryNumber}} has been received and our sales team will reply shortly.`,
		html: `<p>Hello {{.P.CustomerName}},</p>
<p>Thank you for contacting {{.Company}}. Your inquiry <strong>{{.P.InquiryNumber}}</strong> has been received and our sales team will reply shortly.</p>`,
	},
	tmplInquiryAssigned: {
		subject: `Inquiry {{.P.InquiryNumber}} assigned to you`,
		text:    `{{.P.CustomerName}} ({{.P.Email}}) is now yours. Quantity {{.P.Quantity}}. {{.Link}}`,
		html: `<p>Inquiry <strong>{{.P.InquiryNumber}}</strong> from {{.P.CustomerName}} ({{.P.Email}}) is now assigned to you.</p>
<p>Quantity: {{.P.Quantity}}</p>
<p><a href="{{.Link}}">Open inquiry</a></p>`,
	},
	tmplInquiryWon: {
		subject: `Inquiry {{.P.InquiryNumber}} converted`,
		text:    `{{.P.CustomerName}} was converted to {{if .P.NewCustomer}}a new{{else}}an existing{{end}} customer. {{.Link}}`,
		html: `<p>Inquiry <strong>{{.P.InquiryNumber}}</strong> from {{.P.CustomerName}} was converted to
{{if .P.NewCustomer}}a new{{else}}an existing{{end}} customer.</p>
<p><a href="{{.Link}}">Open customer</a></p>`,
	},
	tmplFollowUpDue: {
		subject: `Follow-up due: {{.P.InquiryNumber}} {{.P.CustomerName}}`,
		text: `Follow-up with {{.P.CustomerName}} was due{{with .P.FollowUpDate}} on {{date .}}{{end}}.
{{with .P.FollowUpNotes}}Notes: {{.}}
{{end}}{{.Link}}`,
		html: `<p>Follow-up with <strong>{{.P.CustomerName}}</strong> ({{.P.InquiryNumber}}) was due{{with .P.FollowUpDate}} on {{date .}}{{end}}.</p>
{{with .P.FollowUpNotes}}<p>{{.}}</p>{{end}}
<p><a href="{{.Link}}">Open inquiry</a></p>`,
	},
	tmplOrderTeam: {
		subject: `Order {{.O.OrderNumber}} created for {{.O.CustomerName}}`,
		text:    `{{.O.ItemCount}} line(s), total {{money .O.TotalAmount}}. {{.Link}}`,
		html: `<p>Order <strong>{{.O.OrderNumber}}</strong> was created for {{.O.CustomerName}}.</p>
<p>{{.O.ItemCount}} line(s), total {{money .O.TotalAmount}}</p>
<p><a href="{{.Link}}">Open order</a></p>`,
	},
	tmplOrderCustomer: {
		subject: `Your order {{.O.OrderNumber}}`,
		text:    `Dear {{.O.CustomerName}}, we have registered your order {{.O.OrderNumber}} totalling {{money .O.TotalAmount}}.`,
		html: `<p>Dear {{.O.CustomerName}},</p>
<p>We have registered your order <strong>{{.O.OrderNumber}}</strong> totalling {{money .O.TotalAmount}}.</p>
{{with .O.DeliveryDate}}<p>Planned delivery: {{date .}}</p>{{end}}`,
	},
	tmplOrderStatus: {
		subject: `Order {{.O.OrderNumber}} is now {{label .O.NewStatus}}`,
		text:    `Dear {{.O.CustomerName}}, your order {{.O.OrderNumber}} moved from {{label .O.OldStatus}} to {{label .O.NewStatus}}.`,
		html: `<p>Dear {{.O.CustomerName}},</p>
<p>Your order <strong>{{.O.OrderNumber}}</strong> moved from {{label .O.OldStatus}} to <strong>{{label .O.NewStatus}}</strong>.</p>`,
	},
	tmplPaymentOverdue: {
		subject: `Payment overdue on {{.O.OrderNumber}}`,
		text:    `{{.O.CustomerName}} owes {{money .O.Outstanding}} of {{money .O.TotalAmount}}{{with .O.PaymentDue}}, due {{date .}}{{end}}. {{.Link}}`,
		html: `<p>Order <strong>{{.O.OrderNumber}}</strong> for {{.O.CustomerName}} has an outstanding balance of
<strong>{{money .O.Outstanding}}</strong> of {{money .O.TotalAmount}}{{with .O.PaymentDue}}, due {{date .}}{{end}}.</p>
<p><a href="{{.Link}}">Open order</a></p>`,
	},
	tmplLowStock: {
		subject: `Low stock: {{.S.Code}} {{.S.Name}}`,
		text:    `{{.S.Name}} ({{.S.Code}}) has {{.S.StockQuantity}} left, minimum {{.S.MinStockLevel}}. {{.Link}}`,
		html: `<p><strong>{{.S.Name}}</strong> ({{.S.Code}}) has {{.S.StockQuantity}} left, minimum level {{.S.MinStockLevel}}.</p>
<p><a href="{{.Link}}">Open product</a></p>`,
	},
}

func compileTemplates(printer *message.Printer) map[string]compiled {
	funcs := map[string]any{
		"money": func(d decimal.Decimal) string {
			return printer.Sprintf("%.2f", d.InexactFloat64())
		},
		"date": func(t *time.Time) string {
			if t == nil {
				return ""
			}
			return t.Format("2 Jan 2006")
		},
		"label": func(s string) string {
			return strings.ReplaceAll(s, "_", " ")
		},
	}

	out := make(map[string]compiled, len(sources))
	for key, src := range sources {
		out[key] = compiled{
			subject: texttemplate.Must(texttemplate.New(key + ".subject").Funcs(funcs).Parse(src.subject)),
			text:    texttemplate.Must(texttemplate.New(key + ".text").Funcs(funcs).Parse(src.text)),
			html:    htmltemplate.Must(htmltemplate.New(key + ".html").Funcs(funcs).Parse(htmlLayoutStart + src.html + htmlLayoutEnd)),
		}
	}
	return out
}

func newPrinter(lang string) *message.Printer {
	tag, err := language.Parse(lang)
	if err != nil {
		tag = language.English
	}
	return message.NewPrinter(tag)
}

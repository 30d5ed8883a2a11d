package notification

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/uniformco/backoffice/internal/infrastructure/config"
)

// ComposerConfig holds the addresses and branding used when rendering
type ComposerConfig struct {
	CompanyName     string
	BaseURL         string // back office root used for links
	SalesInbox      string
	AdminRecipients []string
	ReplyTo         string
	Language        string
}

// ComposerConfigFrom maps application configuration onto ComposerConfig
func ComposerConfigFrom(app config.AppConfig, n config.NotificationConfig) ComposerConfig {
	company := n.FromName
	if company == "" {
		company = app.Name
	}
	return ComposerConfig{
		CompanyName:     company,
		BaseURL:         app.BaseURL,
		SalesInbox:      n.SalesInbox,
		AdminRecipients: n.AdminRecipients,
		ReplyTo:         n.SalesInbox,
		Language:        "en",
	}
}

// Composer turns an envelope into rendered messages, one per recipient
type Composer struct {
	cfg       ComposerConfig
	templates map[string]compiled
}

// NewComposer parses the built-in templates
func NewComposer(cfg ComposerConfig) *Composer {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Composer{cfg: cfg, templates: compileTemplates(newPrinter(cfg.Language))}
}

type viewData struct {
	P       InquiryPayload
	O       OrderPayload
	S       StockPayload
	Link    string
	Company string
}

type delivery struct {
	to       string
	template string
	replyTo  string
}

// Compose renders env. Recipients that are empty are skipped; an event that
// resolves to no recipient at all returns ErrNoRecipients.
func (c *Composer) Compose(env Envelope) ([]*Message, error) {
	data := viewData{Company: c.cfg.CompanyName}
	var deliveries []delivery

	switch env.Event {
	case EventInquirySubmitted, EventInquiryAssigned, EventInquiryConverted, EventInquiryFollowUpDue:
		if err := json.Unmarshal(env.Payload, &data.P); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", env.Event, err)
		}
		data.Link = c.link("inquiries", data.P.InquiryID)
		deliveries = c.inquiryDeliveries(env.Event, data.P)
		if env.Event == EventInquiryConverted && data.P.CustomerID != "" {
			data.Link = c.link("customers", data.P.CustomerID)
		}
	case EventOrderCreated, EventOrderStatusChanged, EventOrderPaymentOverdue:
		if err := json.Unmarshal(env.Payload, &data.O); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", env.Event, err)
		}
		data.Link = c.link("orders", data.O.OrderID)
		deliveries = c.orderDeliveries(env.Event, data.O)
	case EventProductLowStock:
		if err := json.Unmarshal(env.Payload, &data.S); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", env.Event, err)
		}
		data.Link = c.link("products", data.S.ProductID)
		for _, to := range c.staffRecipients() {
			deliveries = append(deliveries, delivery{to: to, template: tmplLowStock})
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownEvent, env.Event)
	}

	msgs := make([]*Message, 0, len(deliveries))
	for _, d := range deliveries {
		if d.to == "" {
			continue
		}
		msg, err := c.render(d, data)
		if err != nil {
			return nil, err
		}
		msg.Event = env.Event
		msg.Envelope = env.ID
		msgs = append(msgs, msg)
	}
	if len(msgs) == 0 {
		return nil, ErrNoRecipients
	}
	return msgs, nil
}

func (c *Composer) inquiryDeliveries(event string, p InquiryPayload) []delivery {
	switch event {
	case EventInquirySubmitted:
		return []delivery{
			{to: c.cfg.SalesInbox, template: tmplInquiryTeam, replyTo: p.Email},
			{to: p.Email, template: tmplInquiryAck, replyTo: c.cfg.ReplyTo},
		}
	case EventInquiryAssigned:
		return []delivery{{to: p.AssigneeEmail, template: tmplInquiryAssigned, replyTo: p.Email}}
	case EventInquiryConverted:
		out := []delivery{{to: c.cfg.SalesInbox, template: tmplInquiryWon}}
		if p.AssigneeEmail != "" && p.AssigneeEmail != c.cfg.SalesInbox {
			out = append(out, delivery{to: p.AssigneeEmail, template: tmplInquiryWon})
		}
		return out
	default:
		to := p.AssigneeEmail
		if to == "" {
			to = c.cfg.SalesInbox
		}
		return []delivery{{to: to, template: tmplFollowUpDue}}
	}
}

func (c *Composer) orderDeliveries(event string, o OrderPayload) []delivery {
	switch event {
	case EventOrderCreated:
		return []delivery{
			{to: c.cfg.SalesInbox, template: tmplOrderTeam},
			{to: o.CustomerEmail, template: tmplOrderCustomer, replyTo: c.cfg.ReplyTo},
		}
	case EventOrderStatusChanged:
		return []delivery{{to: o.CustomerEmail, template: tmplOrderStatus, replyTo: c.cfg.ReplyTo}}
	default:
		out := make([]delivery, 0, 2)
		for _, to := range c.staffRecipients() {
			out = append(out, delivery{to: to, template: tmplPaymentOverdue})
		}
		if o.AssigneeEmail != "" {
			out = append(out, delivery{to: o.AssigneeEmail, template: tmplPaymentOverdue})
		}
		return out
	}
}

// staffRecipients are the admin recipients, or the sales inbox when none are set
func (c *Composer) staffRecipients() []string {
	if len(c.cfg.AdminRecipients) > 0 {
		return c.cfg.AdminRecipients
	}
	return []string{c.cfg.SalesInbox}
}

func (c *Composer) link(section, id string) string {
	if c.cfg.BaseURL == "" || id == "" {
		return ""
	}
	return c.cfg.BaseURL + "/" + section + "/" + id
}

func (c *Composer) render(d delivery, data viewData) (*Message, error) {
	t, ok := c.templates[d.template]
	if !ok {
		return nil, fmt.Errorf("template %s not found", d.template)
	}
	var subject, text, html bytes.Buffer
	if err := t.subject.Execute(&subject, data); err != nil {
		return nil, fmt.Errorf("render %s subject: %w", d.template, err)
	}
	if err := t.text.Execute(&text, data); err != nil {
		return nil, fmt.Errorf("render %s text: %w", d.template, err)
	}
	if err := t.html.Execute(&html, data); err != nil {
		return nil, fmt.Errorf("render %s html: %w", d.template, err)
	}
	return &Message{
		To:      d.to,
		Subject: strings.TrimSpace(subject.String()),
		Text:    text.String(),
		HTML:    html.String(),
		ReplyTo: d.replyTo,
	}, nil
}

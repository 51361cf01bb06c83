package email

import (
	"context"
	"io"
)

// TemplateElement is used by a renderer to identify the different parts of an email template.
type TemplateElement string

const (
	ElementSubject TemplateElement = "subject"
	ElementHTML    TemplateElement = "html"
	ElementText    TemplateElement = "text"
)

// Elements lists all parts an email template must provide.
var Elements = []TemplateElement{ElementSubject, ElementHTML, ElementText}

// Renderer is responsible for rendering email templates.
type Renderer interface {
	Render(w io.Writer, name string, element TemplateElement, data any) error
}

// Sender is responsible for actually delivering an email. Senders provide
// both an HTML and a plain text body so recipients with text-only clients
// are not left out.
type Sender interface {
	Send(ctx context.Context, from, to Address, subject, htmlBody, textBody string) error
}

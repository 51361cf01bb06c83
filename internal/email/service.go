package email

import (
	"context"
	"fmt"
	"strings"
)

// Service renders named email templates and hands the result to a Sender.
// It does not retry, failures are reported to the caller as-is.
type Service struct {
	renderer Renderer
	sender   Sender
	from     Address
}

// NewService creates a new email service that sends from the provided address.
func NewService(renderer Renderer, sender Sender, from Address) *Service {
	return &Service{
		renderer: renderer,
		sender:   sender,
		from:     from,
	}
}

// Send renders the template with the given name and sends it to the recipient.
func (s *Service) Send(ctx context.Context, name string, to Address, data any) error {
	parts := make(map[TemplateElement]string, len(Elements))
	for _, el := range Elements {
		var b strings.Builder
		if err := s.renderer.Render(&b, name, el, data); err != nil {
			return fmt.Errorf("failed to render %s of email %q: %w", el, name, err)
		}
		parts[el] = strings.TrimSpace(b.String())
	}

	err := s.sender.Send(ctx, s.from, to, parts[ElementSubject], parts[ElementHTML], parts[ElementText])
	if err != nil {
		return fmt.Errorf("failed to send email %q: %w", name, err)
	}

	return nil
}

package email

import "context"

// MemoryEmail is an email captured by the MemorySender.
type MemoryEmail struct {
	From     Address
	To       Address
	Subject  string
	HTMLBody string
	TextBody string
}

// MemorySender is a Sender that keeps all emails in memory. It is meant for
// use in tests. MemorySender is not safe for concurrent use.
type MemorySender struct {
	Emails []MemoryEmail
}

func NewMemorySender() *MemorySender {
	return &MemorySender{}
}

func (s *MemorySender) Send(_ context.Context, from, to Address, subject, htmlBody, textBody string) error {
	s.Emails = append(s.Emails, MemoryEmail{
		From:     from,
		To:       to,
		Subject:  subject,
		HTMLBody: htmlBody,
		TextBody: textBody,
	})
	return nil
}

package sendmail

import (
	"context"

	"github.com/toolforge/jobs-emailer/compose"
)

// MockSender records deliveries and returns preconfigured responses.
// Use this in tests to avoid real SMTP traffic. Set SendFn for dynamic
// per-call responses, otherwise Err is returned.
type MockSender struct {
	Calls  []compose.Email
	Err    error
	SendFn func(email compose.Email) error
}

func (m *MockSender) Send(_ context.Context, email compose.Email) error {
	m.Calls = append(m.Calls, email)
	if m.SendFn != nil {
		return m.SendFn(email)
	}
	return m.Err
}

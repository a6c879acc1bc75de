package compose

import (
	"fmt"
	"strings"

	"github.com/toolforge/jobs-emailer/events"
	"github.com/toolforge/jobs-emailer/settings"
)

// Email is a fully composed outbound notification.
type Email struct {
	FromAddr string
	ToAddr   string
	Subject  string
	Body     string
}

// Compose turns one user's cached job events into a single email digest.
// The subject counts jobs, not events; the per-job event counts live in
// the body.
func Compose(userjobs *events.UserJobs, s settings.Settings) Email {
	jobcount := len(userjobs.Jobs)

	address := fmt.Sprintf("%s.%s@%s", s.EmailToPrefix, userjobs.Username, s.EmailToDomain)
	subject := fmt.Sprintf("[Toolforge] notification about %d job events", jobcount)

	var body strings.Builder
	body.WriteString("We wanted to notify you about the activity of some jobs in Toolforge.\n")
	for _, job := range userjobs.Jobs {
		fmt.Fprintf(&body, "\n* Job '%s' (%s) (emails: %s) had %d events:\n",
			job.Name, job.Type, job.EmailsConfig, len(job.Events))
		for _, event := range job.Events {
			fmt.Fprintf(&body, "  -- %s\n", event)
		}
	}

	body.WriteString("\n\n")
	body.WriteString("If you requested 'filelog' for any of the jobs mentioned above, you may find ")
	body.WriteString("additional information about what happened in the associated log files. ")
	body.WriteString("Check them from Toolforge bastions as usual.\n")
	body.WriteString("\n")
	body.WriteString("You are receiving this email because:\n")
	body.WriteString(" 1) when the job was created, it was requested to send email notfications\n")
	body.WriteString(" 2) you are listed as tool maintainer for this tool\n")
	body.WriteString("\n")
	body.WriteString("Find help and more information in wikitech: https://wikitech.wikimedia.org/\n")
	body.WriteString("\n")
	body.WriteString("Thanks for your contributions to the Wikimedia movement.\n")

	// TODO: run the extra mile and include the last few log lines in the email?

	return Email{
		FromAddr: s.EmailFromAddr,
		ToAddr:   address,
		Subject:  subject,
		Body:     body.String(),
	}
}

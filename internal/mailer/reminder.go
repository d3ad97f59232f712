package mailer

import (
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var english = message.NewPrinter(language.English)

// ExpiryReminder builds the renewal email sent when a subscription is
// close to its end date.
func ExpiryReminder(to string, planName string, daysLeft int, endDate time.Time) Email {
	subject := english.Sprintf("Your %s plan expires in %d day(s)", planName, daysLeft)
	body := english.Sprintf(
		"<p>Hi,</p>"+
			"<p>Your <strong>%s</strong> subscription expires in <strong>%d day(s)</strong>, on %s.</p>"+
			"<p>Renew now to keep your dashboards and team access uninterrupted.</p>",
		planName, daysLeft, endDate.Format("January 2, 2006"),
	)
	return Email{To: to, Subject: subject, HTML: body}
}

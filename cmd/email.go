/*
Copyright 2020 Google LLC

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"errors"
	"fmt"
	"html"
	"io"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/ademuri/beetseer/internal/analysis"
)

type SendEmailConfig struct {
	From   string
	To     string
	APIKey string
	DryRun bool
}

// mailer is the part of the SendGrid client used to send mail.
type mailer interface {
	Send(email *mail.SGMailV3) (*rest.Response, error)
}

var (
	newMailer = func(apiKey string) mailer { return sendgrid.NewSendClient(apiKey) }

	emailAttempts   uint = 3
	emailRetryDelay      = time.Second
)

// sendStatusError is a non-2xx response from SendGrid.
type sendStatusError struct {
	StatusCode int
	Body       string
}

func (e *sendStatusError) Error() string {
	return fmt.Sprintf("sendgrid returned status %d: %s", e.StatusCode, e.Body)
}

func (e *sendStatusError) retryable() bool {
	return e.StatusCode == 429 || e.StatusCode/100 == 5
}

func sendAnalysisEmail(config SendEmailConfig, resp *analysis.Response, out io.Writer) error {
	subject, body := generateEmailContent(resp)

	if config.DryRun {
		fmt.Fprintf(out, "Would have sent email: \nsubject: %s\n%s\n", subject, body)
		return nil
	}
	if config.APIKey == "" {
		return fmt.Errorf("sendgrid_api_key must be set in order to send emails")
	}

	from := mail.NewEmail(appName, config.From)
	to := mail.NewEmail(config.To, config.To)
	message := mail.NewSingleEmail(from, subject, to, plainTextSummary(resp), body)
	client := newMailer(config.APIKey)

	err := retry.Do(
		func() error {
			response, err := client.Send(message)
			if err != nil {
				return err
			}
			if response.StatusCode/100 != 2 {
				return &sendStatusError{StatusCode: response.StatusCode, Body: response.Body}
			}
			return nil
		},
		retry.Attempts(emailAttempts),
		retry.Delay(emailRetryDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			var serr *sendStatusError
			if errors.As(err, &serr) {
				if serr.retryable() {
					fmt.Fprintf(out, "sendgrid errored, retrying: %v\n", serr)
					return true
				}
				return false
			}
			return false
		}),
	)
	if err != nil {
		return fmt.Errorf("sendEmail: %w", err)
	}
	return nil
}

func generateEmailContent(resp *analysis.Response) (subject string, body string) {
	out := `
<html>
  <head>
<style>
td {
  padding: 0.1em 0.2em;
  vertical-align: top;
}
table, th, td {
  border: 1px solid black;
  border-collapse: collapse;
}
</style>
  </head>
  <body>
`
	out += fmt.Sprintf("<h2>Genre analysis for %s</h2>\n", html.EscapeString(resp.ArtistName))
	out += `
		<table>
			<thead>
				<tr><th>Field</th><th>Value</th></tr>
			</thead>
			<tbody>
`
	for _, row := range documentRows(resp) {
		out += "<tr>\n"
		out += fmt.Sprintf("<td>%s</td>\n", html.EscapeString(row[0]))
		out += fmt.Sprintf("<td>%s</td>\n", strings.ReplaceAll(html.EscapeString(row[1]), "\n", "<br>"))
		out += "</tr>\n"
	}
	out += `
			</tbody>
		</table>
  </body>
</html>
`

	subject = fmt.Sprintf("Genre analysis for %s", resp.ArtistName)
	return subject, out
}

func plainTextSummary(resp *analysis.Response) string {
	var b strings.Builder
	for _, row := range documentRows(resp) {
		fmt.Fprintf(&b, "%s: %s\n", row[0], strings.ReplaceAll(row[1], "\n", "; "))
	}
	return b.String()
}

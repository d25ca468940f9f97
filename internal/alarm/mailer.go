package alarm

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	sestypes "github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// SESClient is the slice of the SES API the mailer needs.
type SESClient interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

var _ SESClient = (*sesv2.Client)(nil)

// Mailer sends alarm notification emails from a verified sender address.
type Mailer struct {
	client SESClient
	from   string
}

// NewMailer creates a Mailer.
func NewMailer(client SESClient, from string) *Mailer {
	return &Mailer{client: client, from: from}
}

// SendAlarm sends the notification to the recipients and returns the
// provider message id.
func (m *Mailer) SendAlarm(ctx context.Context, equipment, timestamp, message string, recipients []string) (string, error) {
	subject := fmt.Sprintf("Alerta Biorreator %s", equipment)
	htmlBody := buildHTMLBody(equipment, timestamp, message, recipients)
	textBody := buildTextBody(equipment, timestamp, message, recipients)

	out, err := m.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(m.from),
		Destination: &sestypes.Destination{
			ToAddresses: recipients,
		},
		Content: &sestypes.EmailContent{
			Simple: &sestypes.Message{
				Subject: &sestypes.Content{Data: aws.String(subject)},
				Body: &sestypes.Body{
					Text: &sestypes.Content{Data: aws.String(textBody)},
					Html: &sestypes.Content{Data: aws.String(htmlBody)},
				},
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("sending alarm email: %w", err)
	}
	return aws.ToString(out.MessageId), nil
}

func buildHTMLBody(equipment, timestamp, message string, recipients []string) string {
	return fmt.Sprintf(`<html>
<body>
    <h2 style="color: #d32f2f;">ALERTA BIORREATOR</h2>
    <table style="border-collapse: collapse;">
        <tr><td style="padding: 8px; font-weight: bold;">Equipamento:</td><td style="padding: 8px;">%s</td></tr>
        <tr><td style="padding: 8px; font-weight: bold;">Data/Hora:</td><td style="padding: 8px;">%s</td></tr>
        <tr><td style="padding: 8px; font-weight: bold;">Mensagem:</td><td style="padding: 8px; color: #d32f2f;">%s</td></tr>
    </table>
    <p>Destinatários: %s</p>
</body>
</html>`, equipment, timestamp, message, strings.Join(recipients, ", "))
}

func buildTextBody(equipment, timestamp, message string, recipients []string) string {
	return fmt.Sprintf(`ALERTA BIORREATOR

Equipamento: %s
Data/Hora: %s
Mensagem: %s

Destinatários: %s
`, equipment, timestamp, message, strings.Join(recipients, ", "))
}

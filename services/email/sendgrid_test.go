package emailsvc

import (
	"net/mail"
	"testing"

	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/thinkwise/core"
)

func Test_sendgridService_prepare(t *testing.T) {
	from := sgmail.NewEmail("ThinkWise", "noreply@thinkwise.it")
	secretary := mail.Address{Name: "Segreteria", Address: "segreteria@thinkwise.it"}
	mario := mail.Address{Name: "Mario Bianchi", Address: "mario@test.it"}

	tests := []struct {
		name           string
		sandbox        bool
		msg            core.EmailMessage
		wantReplyTo    string
		wantCategories []string
		wantContent    []string
	}{
		{
			name: "plain text",
			msg: core.EmailMessage{
				To:          []mail.Address{mario},
				Subject:     "Promemoria",
				TextContent: "ciao",
			},
			wantReplyTo: "noreply@thinkwise.it",
			wantContent: []string{"text/plain"},
		},
		{
			name:    "receipt",
			sandbox: true,
			msg: core.EmailMessage{
				To:           []mail.Address{mario},
				ReplyTo:      &secretary,
				Subject:      "Ricevuta di pagamento REC-1",
				Categories:   []string{"ricevute"},
				TemplateName: "payment_receipt",
				TextContent:  "ricevuta",
				HTMLContent:  "<p>ricevuta</p>",
			},
			wantReplyTo:    "segreteria@thinkwise.it",
			wantCategories: []string{"ricevute", "payment_receipt"},
			wantContent:    []string{"text/plain", "text/html"},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := sendgridService{from: from, subjPrefix: "[ThinkWise] ", env: "test", sandbox: tc.sandbox}
			m := svc.prepare(tc.msg)

			require.Len(t, m.Personalizations, 1)
			assert.Equal(t, "[ThinkWise] "+tc.msg.Subject, m.Personalizations[0].Subject)
			require.Len(t, m.Personalizations[0].To, 1)
			assert.Equal(t, "mario@test.it", m.Personalizations[0].To[0].Address)

			require.NotNil(t, m.ReplyTo)
			assert.Equal(t, tc.wantReplyTo, m.ReplyTo.Address)
			assert.Equal(t, tc.wantCategories, m.Categories)
			assert.Equal(t, "test", m.CustomArgs["env"])

			types := make([]string, 0, len(m.Content))
			for _, c := range m.Content {
				assert.NotEmpty(t, c.Value)
				types = append(types, c.Type)
			}
			assert.Equal(t, tc.wantContent, types)

			if tc.sandbox {
				require.NotNil(t, m.MailSettings)
				require.NotNil(t, m.MailSettings.SandboxMode)
				assert.True(t, *m.MailSettings.SandboxMode.Enable)
			} else {
				assert.Nil(t, m.MailSettings)
			}
		})
	}
}

package utils

import (
	"os"

	mailjet "github.com/mailjet/mailjet-apiv3-go"
)

// SendMail delivers a transactional email through Mailjet. Configured via
// MJ_APIKEY_PUBLIC / MJ_APIKEY_PRIVATE and EMAIL_FROM.
func SendMail(email string, subject string, html string) (bool, error) {
	mailjetClient := mailjet.NewMailjetClient(
		os.Getenv("MJ_APIKEY_PUBLIC"), os.Getenv("MJ_APIKEY_PRIVATE"))

	messagesInfo := []mailjet.InfoMessagesV31{
		{
			From: &mailjet.RecipientV31{
				Email: os.Getenv("EMAIL_FROM"),
				Name:  "Homestead",
			},
			To: &mailjet.RecipientsV31{
				mailjet.RecipientV31{
					Email: email,
				},
			},
			Subject:  subject,
			HTMLPart: html,
		},
	}

	messages := mailjet.MessagesV31{Info: messagesInfo}
	res, err := mailjetClient.SendMailV31(&messages)
	if err != nil {
		return false, err
	}

	if len(res.ResultsV31) > 0 && res.ResultsV31[0].Status == "success" {
		return true, nil
	}

	return false, nil
}

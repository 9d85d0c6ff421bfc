package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log"
	"strings"
	"sync"
	"time"

	"motorent/internal/booking/status"
	intconfig "motorent/internal/config"
	"motorent/internal/domain/models"
	"motorent/internal/utils"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
)

// Notifier is told about every reservation that was created or changed status.
// from is empty for a new reservation.
type Notifier interface {
	ReservationChanged(ctx context.Context, res models.Reservation, from status.Status)
}

type EmailSender interface {
	SendEmail(toEmail, toName, subject, plainText, html string) error
}

type SMSSender interface {
	SendSMS(toNumber, body string) error
}

// SendGridSender delivers mail through the SendGrid v3 API.
type SendGridSender struct {
	APIKey    string
	FromEmail string
	FromName  string
}

func (s SendGridSender) SendEmail(toEmail, toName, subject, plainText, html string) error {
	from := mail.NewEmail(s.FromName, s.FromEmail)
	to := mail.NewEmail(toName, toEmail)
	message := mail.NewSingleEmail(from, subject, to, plainText, html)

	resp, err := sendgrid.NewSendClient(s.APIKey).Send(message)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

// TwilioSender delivers SMS through the Twilio REST API.
type TwilioSender struct {
	Client *twilio.RestClient
	From   string
}

func NewTwilioSender(accountSID, authToken, from string) TwilioSender {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username:   accountSID,
		Password:   authToken,
		AccountSid: accountSID,
	})
	return TwilioSender{Client: client, From: from}
}

func (s TwilioSender) SendSMS(toNumber, body string) error {
	if !strings.HasPrefix(toNumber, "+") {
		return fmt.Errorf("phone %q is not E.164", toNumber)
	}
	params := &openapi.CreateMessageParams{}
	params.SetTo(toNumber)
	params.SetFrom(s.From)
	params.SetBody(body)

	if _, err := s.Client.Api.CreateMessage(params); err != nil {
		return fmt.Errorf("twilio send: %w", err)
	}
	return nil
}

// NotifyService emails and texts the customer when a reservation changes.
// Sending happens in the background and never fails the caller.
type NotifyService struct {
	Email    EmailSender
	SMS      SMSSender
	Location *time.Location

	wg sync.WaitGroup
}

// NewNotifyService wires the senders whose credentials are configured.
func NewNotifyService(env intconfig.Env, loc *time.Location) *NotifyService {
	n := &NotifyService{Location: loc}
	if env.SendGridAPIKey != "" && env.SendGridFromEmail != "" {
		n.Email = SendGridSender{APIKey: env.SendGridAPIKey, FromEmail: env.SendGridFromEmail, FromName: env.SendGridFromName}
	} else {
		log.Println("[NOTIFY] SendGrid not configured, email disabled")
	}
	if env.TwilioAccountSID != "" && env.TwilioAuthToken != "" && env.TwilioFromNumber != "" {
		n.SMS = NewTwilioSender(env.TwilioAccountSID, env.TwilioAuthToken, env.TwilioFromNumber)
	} else {
		log.Println("[NOTIFY] Twilio not configured, SMS disabled")
	}
	return n
}

func (n *NotifyService) ReservationChanged(ctx context.Context, res models.Reservation, from status.Status) {
	msg, err := buildStatusMessage(res, from, n.Location)
	if err != nil {
		log.Printf("[NOTIFY] reservation=%d build message failed: %v", res.ID, err)
		return
	}

	if n.Email != nil && res.CustomerEmail != "" {
		n.wg.Add(1)
		go func() {
			defer n.wg.Done()
			if err := n.Email.SendEmail(res.CustomerEmail, res.CustomerName, msg.Subject, msg.Plain, msg.HTML); err != nil {
				log.Printf("[NOTIFY] reservation=%d email failed: %v", res.ID, err)
			}
		}()
	}
	if n.SMS != nil && res.CustomerPhone != "" {
		n.wg.Add(1)
		go func() {
			defer n.wg.Done()
			if err := n.SMS.SendSMS(res.CustomerPhone, msg.SMS); err != nil {
				log.Printf("[NOTIFY] reservation=%d sms failed: %v", res.ID, err)
			}
		}()
	}
}

// Wait blocks until in-flight sends finish.
func (n *NotifyService) Wait() {
	n.wg.Wait()
}

type statusMessage struct {
	Subject string
	Plain   string
	HTML    string
	SMS     string
}

var statusMailTemplate = template.Must(template.New("status").Parse(`<!DOCTYPE html>
<html lang="ja"><body>
<p>{{.Name}} 様</p>
<p>{{.Lead}}</p>
<table>
<tr><th align="left">予約番号</th><td>#{{.ID}}</td></tr>
<tr><th align="left">ステータス</th><td>{{.Status}}</td></tr>
<tr><th align="left">バイク</th><td>{{.Bike}}</td></tr>
<tr><th align="left">店舗</th><td>{{.Vendor}}</td></tr>
<tr><th align="left">開始</th><td>{{.Start}}</td></tr>
<tr><th align="left">終了</th><td>{{.End}}</td></tr>
<tr><th align="left">料金</th><td>{{.Price}}</td></tr>
</table>
</body></html>`))

func buildStatusMessage(res models.Reservation, from status.Status, loc *time.Location) (statusMessage, error) {
	data := struct {
		Name, Lead, Status, Bike, Vendor, Start, End, Price string
		ID                                                  int64
	}{
		Name:   safe(res.CustomerName, "お客"),
		Status: res.Status.Label(),
		Bike:   safe(res.BikeName, "-"),
		Vendor: safe(res.VendorName, "-"),
		Start:  utils.FormatDisplay(res.StartDatetime, loc),
		End:    utils.FormatDisplay(res.EndDatetime, loc),
		Price:  utils.FormatYen(res.TotalPrice),
		ID:     res.ID,
	}

	var subject string
	if from == "" {
		subject = fmt.Sprintf("【MotoRent】ご予約 #%d を受け付けました", res.ID)
		data.Lead = "ご予約を受け付けました。店舗からの確定連絡をお待ちください。"
	} else {
		subject = fmt.Sprintf("【MotoRent】ご予約 #%d は「%s」になりました", res.ID, res.Status.Label())
		data.Lead = fmt.Sprintf("ご予約のステータスが「%s」から「%s」に変更されました。", from.Label(), res.Status.Label())
	}

	plain := fmt.Sprintf("%s 様\n\n%s\n\n予約番号: #%d\nステータス: %s\nバイク: %s\n店舗: %s\n開始: %s\n終了: %s\n料金: %s\n",
		data.Name, data.Lead, data.ID, data.Status, data.Bike, data.Vendor, data.Start, data.End, data.Price)

	var html bytes.Buffer
	if err := statusMailTemplate.Execute(&html, data); err != nil {
		return statusMessage{}, err
	}

	sms := fmt.Sprintf("MotoRent: ご予約 #%d は「%s」です。開始 %s", res.ID, res.Status.Label(), data.Start)
	return statusMessage{Subject: subject, Plain: plain, HTML: html.String(), SMS: sms}, nil
}

package services

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"
	"strings"
	"time"

	"resepi/internal/config"

	"github.com/codeGROOVE-dev/retry"
	"github.com/sirupsen/logrus"
)

type MailService struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	Enabled  bool

	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewMailService(cfg *config.Config) *MailService {
	enabled := cfg.MailEnabled()
	if !enabled {
		logrus.Warn("MailService disabled: missing SMTP environment variables")
	}
	return &MailService{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUser,
		Password: cfg.SMTPPass,
		From:     cfg.SMTPFrom,
		Enabled:  enabled,
		send:     smtp.SendMail,
	}
}

var verificationTmpl = template.Must(template.New("verify").Parse(`<!DOCTYPE html>
<html lang="ms">
<body style="font-family:sans-serif;color:#3f3f46">
  <h2>Terima kasih kerana melanggan!</h2>
  <p>Sila sahkan alamat e-mel anda untuk menerima resipi terbaharu kami.</p>
  <p><a href="{{.Link}}" style="background:#b45309;color:#fff;padding:10px 18px;border-radius:6px;text-decoration:none">Sahkan e-mel</a></p>
  <p style="font-size:12px;color:#71717a">Pautan ini sah sehingga {{.Expires}}. Abaikan e-mel ini jika anda tidak melanggan.</p>
</body>
</html>`))

func (s *MailService) buildMessage(to []string, subject, body string) []byte {
	mime := "MIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\n\n"
	return []byte(fmt.Sprintf("To: %s\r\n"+
		"From: Dapur Resepi <%s>\r\n"+
		"Subject: %s\r\n"+
		"%s\r\n%s", strings.Join(to, ","), s.From, subject, mime, body))
}

// deliver sends synchronously with a few retries on SMTP errors.
func (s *MailService) deliver(to []string, subject, body string) error {
	if !s.Enabled {
		return nil
	}
	auth := smtp.PlainAuth("", s.Username, s.Password, s.Host)
	addr := fmt.Sprintf("%s:%s", s.Host, s.Port)
	msg := s.buildMessage(to, subject, body)

	return retry.Do(
		func() error {
			return s.send(addr, auth, s.From, to, msg)
		},
		retry.Attempts(3),
		retry.Delay(time.Second),
		retry.OnRetry(func(n uint, err error) {
			logrus.WithError(err).WithField("attempt", n).Warn("Retrying email delivery")
		}),
	)
}

func (s *MailService) sendAsync(to []string, subject, body string) {
	if !s.Enabled {
		return
	}
	go func() {
		if err := s.deliver(to, subject, body); err != nil {
			logrus.WithError(err).WithField("to", to).Error("Failed to send email")
			return
		}
		logrus.WithFields(logrus.Fields{"to": to, "subject": subject}).Info("Email sent")
	}()
}

// SendVerificationEmail 发送订阅确认邮件
func (s *MailService) SendVerificationEmail(email, link string, expires time.Time) {
	var buf bytes.Buffer
	err := verificationTmpl.Execute(&buf, map[string]string{
		"Link":    link,
		"Expires": expires.Format("02 Jan 2006 15:04"),
	})
	if err != nil {
		logrus.WithError(err).Error("Error rendering verification email")
		return
	}
	s.sendAsync([]string{email}, "Sahkan langganan resipi anda", buf.String())
}

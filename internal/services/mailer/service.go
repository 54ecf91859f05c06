// -----------------------------------------------------------------------
// Mailer Service - best-effort submission notifications over SMTP
// Bodies are authored as markdown and rendered to HTML for the mail part
// -----------------------------------------------------------------------

package mailer

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/formforge/internal/common"
	"github.com/ternarybob/formforge/internal/interfaces"
	"github.com/yuin/goldmark"
)

// Service sends submission notifications using the configured SMTP account.
type Service struct {
	config   *common.SMTPConfig
	logger   arbor.ILogger
	markdown goldmark.Markdown
}

var _ interfaces.Notifier = (*Service)(nil)

// NewService creates a new mailer service
func NewService(config *common.SMTPConfig, logger arbor.ILogger) *Service {
	return &Service{
		config:   config,
		logger:   logger,
		markdown: goldmark.New(),
	}
}

// IsConfigured checks whether the minimum SMTP settings are present.
func (s *Service) IsConfigured() bool {
	return s.config.Host != "" && s.config.Username != "" && s.config.Password != "" && s.config.From != ""
}

// SendSubmitterConfirmation emails the person who submitted the form.
func (s *Service) SendSubmitterConfirmation(ctx context.Context, to, formName, submissionID string, submittedAt time.Time) error {
	subject := fmt.Sprintf("Submission received: %s", formName)
	body := fmt.Sprintf(
		"# Thank you\n\nYour submission to **%s** was received on %s.\n\nReference: `%s`\n",
		formName, submittedAt.Format("2 January 2006 15:04 MST"), submissionID,
	)
	return s.sendMarkdown(ctx, to, subject, body)
}

// SendOwnerNotification emails the form owner a summary of the submission.
func (s *Service) SendOwnerNotification(ctx context.Context, to, formName, submissionID string, data map[string]interface{}) error {
	subject := fmt.Sprintf("New submission: %s", formName)

	var body strings.Builder
	body.WriteString(fmt.Sprintf("# New submission\n\nForm **%s** received submission `%s`.\n\n", formName, submissionID))
	for key, value := range data {
		body.WriteString(fmt.Sprintf("- **%s**: %v\n", key, value))
	}
	return s.sendMarkdown(ctx, to, subject, body.String())
}

// sendMarkdown renders the markdown body to HTML and sends a
// multipart/alternative message with both forms.
func (s *Service) sendMarkdown(_ context.Context, to, subject, markdownBody string) error {
	if !s.IsConfigured() {
		return fmt.Errorf("SMTP is not configured")
	}

	var html bytes.Buffer
	if err := s.markdown.Convert([]byte(markdownBody), &html); err != nil {
		return fmt.Errorf("failed to render email body: %w", err)
	}

	msg := buildMessage(s.config, to, subject, html.String(), markdownBody)

	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	auth := smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)

	var err error
	if s.config.UseTLS {
		err = sendWithTLS(addr, s.config.Host, auth, s.config.From, to, msg)
	} else {
		err = smtp.SendMail(addr, auth, s.config.From, []string{to}, []byte(msg))
	}
	if err != nil {
		return err
	}

	s.logger.Info().Str("to", to).Str("subject", subject).Msg("Notification email sent")
	return nil
}

// buildMessage assembles a multipart/alternative MIME message. Both parts
// are base64 encoded so long HTML lines stay within RFC 5322 limits.
func buildMessage(config *common.SMTPConfig, to, subject, htmlBody, textBody string) string {
	boundary := generateBoundary()

	var msg strings.Builder
	msg.WriteString(fmt.Sprintf("From: %s <%s>\r\n", config.FromName, config.From))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", to))
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString(fmt.Sprintf("Content-Type: multipart/alternative; boundary=\"%s\"\r\n", boundary))
	msg.WriteString("\r\n")

	msg.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	msg.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	msg.WriteString("Content-Transfer-Encoding: base64\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(encodeBase64WithLineBreaks(textBody))
	msg.WriteString("\r\n")

	msg.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	msg.WriteString("Content-Transfer-Encoding: base64\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(encodeBase64WithLineBreaks(htmlBody))
	msg.WriteString("\r\n")

	msg.WriteString(fmt.Sprintf("--%s--\r\n", boundary))
	return msg.String()
}

// sendWithTLS connects over direct TLS, falling back to STARTTLS.
func sendWithTLS(addr, host string, auth smtp.Auth, from, to, msg string) error {
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: host})
	if err != nil {
		return sendWithSTARTTLS(addr, host, auth, from, to, msg)
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, host)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	defer client.Close()

	return transmit(client, auth, from, to, msg)
}

// sendWithSTARTTLS connects plain and upgrades the connection.
func sendWithSTARTTLS(addr, host string, auth smtp.Auth, from, to, msg string) error {
	client, err := smtp.Dial(addr)
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer client.Close()

	if err := client.StartTLS(&tls.Config{ServerName: host}); err != nil {
		return fmt.Errorf("failed to start TLS: %w", err)
	}

	return transmit(client, auth, from, to, msg)
}

func transmit(client *smtp.Client, auth smtp.Auth, from, to, msg string) error {
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("SMTP authentication failed: %w", err)
	}
	if err := client.Mail(from); err != nil {
		return fmt.Errorf("failed to set mail from: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("failed to set mail recipient: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to start data: %w", err)
	}
	if _, err := w.Write([]byte(msg)); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	return client.Quit()
}

// generateBoundary creates a unique MIME boundary string.
func generateBoundary() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "formforge_boundary_fallback"
	}
	return fmt.Sprintf("formforge_%x", b)
}

// encodeBase64WithLineBreaks encodes content as base64 with 76-char line
// breaks per RFC 2045.
func encodeBase64WithLineBreaks(content string) string {
	encoded := base64.StdEncoding.EncodeToString([]byte(content))

	var result strings.Builder
	const lineLen = 76
	for i := 0; i < len(encoded); i += lineLen {
		end := i + lineLen
		if end > len(encoded) {
			end = len(encoded)
		}
		result.WriteString(encoded[i:end])
		if end < len(encoded) {
			result.WriteString("\r\n")
		}
	}
	return result.String()
}

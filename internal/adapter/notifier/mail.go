package notifier

import (
	"context"
	"fmt"

	"github.com/chitralhive/hivekeep/internal/config"
	"github.com/chitralhive/hivekeep/internal/domain"
	"github.com/wneessen/go-mail"
)

// MailNotifier emails the backup artifact to the operator. A send failure is
// returned to the caller and fails the run; only a missing transport (no
// SMTP host configured) degrades to the stdout fallback, which the app wires
// instead of this notifier.
type MailNotifier struct {
	cfg *config.MailConfig
}

func NewMail(cfg *config.MailConfig) *MailNotifier {
	return &MailNotifier{cfg: cfg}
}

func (n *MailNotifier) NotifyBackup(ctx context.Context, b domain.Backup) error {
	msg := mail.NewMsg()
	if err := msg.From(n.cfg.From); err != nil {
		return fmt.Errorf("invalid sender address: %w", err)
	}
	if err := msg.To(n.cfg.To); err != nil {
		return fmt.Errorf("invalid recipient address: %w", err)
	}

	msg.Subject(subject(b))
	msg.SetBodyString(mail.TypeTextPlain, body(b))
	msg.AttachFile(b.FilePath)

	opts := []mail.Option{mail.WithPort(n.cfg.SMTPPort)}
	if n.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(n.cfg.Username),
			mail.WithPassword(n.cfg.Password),
		)
	}

	client, err := mail.NewClient(n.cfg.SMTPHost, opts...)
	if err != nil {
		return fmt.Errorf("failed to create smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("failed to send backup mail: %w", err)
	}

	return nil
}

func subject(b domain.Backup) string {
	return fmt.Sprintf("Database backup: %s %s", b.DatabaseName, b.CreatedAt.Format("2006-01-02"))
}

func body(b domain.Backup) string {
	return fmt.Sprintf(
		"Backup of database %s taken on %s.\n\nArtifact: %s\nSize: %.2f MB\n",
		b.DatabaseName,
		b.CreatedAt.Format("2006-01-02"),
		b.Filename,
		float64(b.Size)/(1024*1024),
	)
}

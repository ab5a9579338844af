package smtp

import (
	"fmt"
	smtpPkg "net/smtp"
	"os"
)

type ItfSmtp interface {
	CreateSmtp(userEmail string, otp string) error
}

type smtp struct {
	auth smtpPkg.Auth
	mail string
	addr string
}

// New reads SMTP_MAIL and SMTP_PASSWORD for the sending account.
// SMTP_HOST and SMTP_PORT default to Gmail submission.
func New() ItfSmtp {
	host := os.Getenv("SMTP_HOST")
	if host == "" {
		host = "smtp.gmail.com"
	}

	port := os.Getenv("SMTP_PORT")
	if port == "" {
		port = "587"
	}

	mail := os.Getenv("SMTP_MAIL")
	password := os.Getenv("SMTP_PASSWORD")

	return &smtp{
		auth: smtpPkg.PlainAuth("", mail, password, host),
		mail: mail,
		addr: host + ":" + port,
	}
}

func (s *smtp) CreateSmtp(userEmail string, otp string) error {
	headers := fmt.Sprintf("From: Attendify <%s>\r\n"+
		"To: %s\r\n"+
		"Subject: Attendify verification code\r\n"+
		"MIME-Version: 1.0\r\n"+
		"Content-Type: text/plain; charset=\"UTF-8\"\r\n"+
		"\r\n", s.mail, userEmail)

	body := fmt.Sprintf("Your Attendify verification code is %s.\r\n\r\n"+
		"Enter it in the app to confirm this address. The code is single use "+
		"and expires in a few minutes. If you did not request it, ignore this "+
		"message.\r\n", otp)

	return smtpPkg.SendMail(s.addr, s.auth, s.mail, []string{userEmail}, []byte(headers+body))
}

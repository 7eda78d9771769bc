package mail

import (
	"github.com/labstack/gommon/log"
	"github.com/pastalink/pastalink/internal/model"
)

// Sender delivers account emails. Delivery transport is out of scope for the
// server core, so the default implementation just logs the links it would
// have sent.
type Sender interface {
	SendVerification(user *model.User, url string) error
	SendPasswordReset(user *model.User, url string) error
}

type logSender struct{}

func NewLogSender() Sender {
	return &logSender{}
}

func (s *logSender) SendVerification(user *model.User, url string) error {
	log.Infof("verification mail for %s <%s>: %s", user.Username, user.Email, url)
	return nil
}

func (s *logSender) SendPasswordReset(user *model.User, url string) error {
	log.Infof("password reset mail for %s <%s>: %s", user.Username, user.Email, url)
	return nil
}

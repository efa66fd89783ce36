// Package emailsvc delivers core.EmailMessage values: printed to the console in debug, through SendGrid otherwise.
package emailsvc

import (
	"log"

	"github.com/trezcool/academia/core"
)

func NewService(conf *core.Config, std *log.Logger, logger core.Logger) core.EmailService {
	if conf.Debug || conf.SendgridApiKey == "" {
		return NewConsoleService(std, conf)
	}
	return NewSendgridService(conf, logger)
}

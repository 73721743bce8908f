package telegram

import (
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"crypto-actus-bot/internal/infra/logging"
)

// botLogger routes tgbotapi's internal log lines (polling errors, debug dumps) into zerolog.
// Polling errors quote the request URL, so secrets are scrubbed from every line.
type botLogger struct {
	log     *zerolog.Logger
	secrets []string
}

func (b botLogger) Println(v ...interface{}) {
	b.write(strings.TrimSuffix(fmt.Sprintln(v...), "\n"))
}

func (b botLogger) Printf(format string, v ...interface{}) {
	b.write(strings.TrimSuffix(fmt.Sprintf(format, v...), "\n"))
}

func (b botLogger) write(line string) {
	line = logging.RedactError(errors.New(line), b.secrets...).Error()
	b.log.Warn().Str("component", "tgbotapi").Msg(line)
}

// UseLogger installs logger as the tgbotapi package logger. Call once at startup with the
// bot token among secrets.
func UseLogger(logger *zerolog.Logger, secrets ...string) error {
	if logger == nil {
		logger = logging.Nop()
	}
	return tgbotapi.SetLogger(botLogger{log: logger, secrets: secrets})
}

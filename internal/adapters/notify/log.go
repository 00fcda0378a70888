package notify

import (
	"log"

	"github.com/hivestarter/governance/internal/core/ports"
)

// LogNotifier writes toast-style notifications to the process log. The
// web client renders these as toasts; on the server they are purely
// informational.
type LogNotifier struct {
	logger *log.Logger
}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{logger: log.Default()}
}

func (n *LogNotifier) Notify(t ports.Notification) {
	n.logger.Printf("notify [%s] %s: %s", t.Severity, t.Title, t.Description)
}

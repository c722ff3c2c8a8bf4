package workshop

import (
	"fmt"
	"strings"
)

// Status is the lifecycle stage of a work order.
type Status string

const (
	StatusQuote     Status = "ORCAMENTO"
	StatusApproved  Status = "APROVADO"
	StatusInService Status = "EM_SERVICO"
	StatusFinished  Status = "FINALIZADO"
	StatusArchived  Status = "ARQUIVADO" // set by hand, never reached by Advance
)

var nextStatus = map[Status]Status{
	StatusQuote:     StatusApproved,
	StatusApproved:  StatusInService,
	StatusInService: StatusFinished,
	StatusFinished:  StatusFinished,
	StatusArchived:  StatusArchived,
}

var statusLabels = map[Status]string{
	StatusQuote:     "📝 Orçamento",
	StatusApproved:  "✅ Aprovado",
	StatusInService: "🔧 Em Serviço",
	StatusFinished:  "🏁 Finalizado",
	StatusArchived:  "🗄️ Arquivado",
}

// Statuses lists every status, flow order first.
func Statuses() []Status {
	return []Status{StatusQuote, StatusApproved, StatusInService, StatusFinished, StatusArchived}
}

// Advance returns the status following s. Finished and Archived are
// terminal. Unknown statuses are returned unchanged.
func Advance(s Status) Status {
	if next, ok := nextStatus[s]; ok {
		return next
	}
	return s
}

// Label returns the display label for s, or s itself if unknown.
func Label(s Status) string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

// ParseStatus accepts a status name in any case.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := nextStatus[st]; !ok {
		return "", fmt.Errorf("unknown work order status: %q", s)
	}
	return st, nil
}

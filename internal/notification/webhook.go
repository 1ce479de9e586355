package notification

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Notifier envia alertas operacionais para um webhook externo.
type Notifier struct {
	URL  string
	http *http.Client
}

func NewNotifier(url string) *Notifier {
	return &Notifier{
		URL:  url,
		http: &http.Client{Timeout: 10 * time.Second},
	}
}

// AlertaLeadDuplicado avisa que um lead chegou com e-mail ou CNPJ já
// cadastrado. Disparo assíncrono, falha só gera log.
func (n *Notifier) AlertaLeadDuplicado(email, cnpj string) {
	if n == nil || n.URL == "" {
		return
	}
	go func() {
		payload := map[string]string{
			"mensagem": "Alerta: novo lead com e-mail ou CNPJ já existente",
			"email":    email,
			"cnpj":     cnpj,
		}
		body, _ := json.Marshal(payload)

		resp, err := n.http.Post(n.URL, "application/json", bytes.NewBuffer(body))
		if err != nil {
			zap.L().Warn("erro ao enviar webhook de alerta", zap.Error(err))
			return
		}
		resp.Body.Close()
	}()
}

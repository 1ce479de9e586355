package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

// JSON serializa o payload com o status informado.
func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

// Error responde com o corpo padrão {"message": "..."}.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"message": message})
}

// ValidationError converte erros do validator em um mapa campo → problemas.
// Qualquer outro erro vira uma mensagem genérica de payload inválido.
func ValidationError(w http.ResponseWriter, err error) {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		Error(w, http.StatusBadRequest, "payload inválido")
		return
	}

	problems := map[string][]string{}
	for _, fe := range ve {
		field := strings.ToLower(fe.Field()[:1]) + fe.Field()[1:]
		switch fe.Tag() {
		case "required":
			problems[field] = append(problems[field], "campo obrigatório")
		case "email":
			problems[field] = append(problems[field], "e-mail inválido")
		case "min":
			problems[field] = append(problems[field], "abaixo do tamanho mínimo")
		case "max":
			problems[field] = append(problems[field], "acima do tamanho máximo")
		case "len":
			problems[field] = append(problems[field], "tamanho inválido")
		case "oneof":
			problems[field] = append(problems[field], "valor fora do conjunto permitido")
		default:
			problems[field] = append(problems[field], "valor inválido")
		}
	}
	JSON(w, http.StatusBadRequest, map[string]any{"errors": problems})
}

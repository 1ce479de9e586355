package cep

import (
	"errors"
	"net/http"

	"github.com/HeliosEnergia/api-backoffice/internal/httpx"
	"github.com/gorilla/mux"
)

type Handler struct {
	Client *Client
}

func NewHandler(client *Client) *Handler {
	return &Handler{Client: client}
}

// Buscar trata GET /cep/{cep}.
func (h *Handler) Buscar(w http.ResponseWriter, r *http.Request) {
	e, err := h.Client.Buscar(r.Context(), mux.Vars(r)["cep"])
	switch {
	case err == nil:
		httpx.JSON(w, http.StatusOK, e)
	case errors.Is(err, ErrInvalido):
		httpx.Error(w, http.StatusBadRequest, "CEP deve ter 8 dígitos")
	case errors.Is(err, ErrNotFound):
		httpx.Error(w, http.StatusNotFound, "CEP não encontrado")
	case errors.Is(err, ErrTimeout):
		httpx.Error(w, http.StatusGatewayTimeout, "tempo limite ao consultar o CEP")
	default:
		httpx.Error(w, http.StatusBadGateway, "erro ao consultar o CEP")
	}
}

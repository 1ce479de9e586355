package cep

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/HeliosEnergia/api-backoffice/internal/cache"
	"github.com/HeliosEnergia/api-backoffice/internal/metrics"
	"github.com/HeliosEnergia/api-backoffice/internal/utils"
	"go.uber.org/zap"
)

var (
	// ErrNotFound indica CEP inexistente na base do provedor.
	ErrNotFound = errors.New("cep não encontrado")
	// ErrTimeout indica estouro do tempo limite na consulta externa.
	ErrTimeout = errors.New("tempo limite na consulta de cep")
	// ErrInvalido indica formato diferente de 8 dígitos.
	ErrInvalido = errors.New("cep inválido")
)

// Endereco é o recorte do retorno do ViaCEP usado pelo formulário.
type Endereco struct {
	CEP          string `json:"cep"`
	Street       string `json:"street"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
	State        string `json:"state"`
}

type viaCEPResponse struct {
	CEP        string `json:"cep"`
	Logradouro string `json:"logradouro"`
	Bairro     string `json:"bairro"`
	Localidade string `json:"localidade"`
	UF         string `json:"uf"`
	Erro       bool   `json:"erro"`
}

type Client struct {
	baseURL  string
	http     *http.Client
	cache    cache.Cache
	cacheTTL time.Duration
}

func NewClient(baseURL string, timeout time.Duration, c cache.Cache, cacheTTL time.Duration) *Client {
	return &Client{
		baseURL:  baseURL,
		http:     &http.Client{Timeout: timeout},
		cache:    c,
		cacheTTL: cacheTTL,
	}
}

// Buscar consulta um CEP de 8 dígitos, com cache na frente do provedor.
func (c *Client) Buscar(ctx context.Context, raw string) (*Endereco, error) {
	digits := utils.ApenasDigitos(raw)
	if len(digits) != 8 {
		return nil, ErrInvalido
	}

	cacheKey := "cep:" + digits
	if c.cache != nil {
		if v, err := c.cache.Get(ctx, cacheKey); err == nil {
			var e Endereco
			if json.Unmarshal([]byte(v), &e) == nil {
				metrics.ObserveCEPLookup("hit")
				return &e, nil
			}
		}
	}

	url := fmt.Sprintf("%s/%s/json/", c.baseURL, digits)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			metrics.ObserveCEPLookup("timeout")
			return nil, ErrTimeout
		}
		metrics.ObserveCEPLookup("error")
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.ObserveCEPLookup("error")
		return nil, fmt.Errorf("provedor de cep respondeu %d", resp.StatusCode)
	}

	var body viaCEPResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		metrics.ObserveCEPLookup("error")
		return nil, err
	}
	if body.Erro {
		metrics.ObserveCEPLookup("not_found")
		return nil, ErrNotFound
	}

	e := &Endereco{
		CEP:          utils.FormatarCEP(digits),
		Street:       body.Logradouro,
		Neighborhood: body.Bairro,
		City:         body.Localidade,
		State:        body.UF,
	}
	metrics.ObserveCEPLookup("success")

	if c.cache != nil {
		if raw, err := json.Marshal(e); err == nil {
			if err := c.cache.Set(ctx, cacheKey, string(raw), c.cacheTTL); err != nil {
				zap.L().Warn("falha ao gravar cep no cache", zap.Error(err))
			}
		}
	}
	return e, nil
}

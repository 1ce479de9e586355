package landing

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// ErrPaginaNaoEncontrada indica code sem entrada no registro.
var ErrPaginaNaoEncontrada = errors.New("landing page não encontrada")

// Pagina é o conteúdo de uma landing page por empresa, servido como está
// para o site público.
type Pagina struct {
	CompanyCode string   `json:"companyCode"`
	Title       string   `json:"title"`
	Subtitle    string   `json:"subtitle"`
	HeroImage   string   `json:"heroImage"`
	Highlights  []string `json:"highlights"`
	WhatsApp    string   `json:"whatsapp"`
}

// Registry carrega o arquivo JSON de landing pages na subida e resolve
// por code de empresa.
type Registry struct {
	byCode map[string]Pagina
}

func LoadRegistry(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("erro ao ler registro de landing pages: %w", err)
	}

	var pages []Pagina
	if err := json.Unmarshal(data, &pages); err != nil {
		return nil, fmt.Errorf("registro de landing pages inválido: %w", err)
	}

	byCode := make(map[string]Pagina, len(pages))
	for _, p := range pages {
		byCode[p.CompanyCode] = p
	}
	return &Registry{byCode: byCode}, nil
}

// EmptyRegistry serve para ambientes sem landing pages configuradas.
func EmptyRegistry() *Registry {
	return &Registry{byCode: map[string]Pagina{}}
}

func (r *Registry) Resolve(code string) (*Pagina, error) {
	p, ok := r.byCode[code]
	if !ok {
		return nil, ErrPaginaNaoEncontrada
	}
	return &p, nil
}

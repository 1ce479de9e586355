package pagination

import (
	"net/http"
	"strconv"

	"gorm.io/gorm"
)

// Ellipsis marca uma lacuna na janela de páginas ("..." no dashboard).
const Ellipsis = -1

const (
	defaultPerPage = 20
	maxPerPage     = 100
)

// Params são os parâmetros de paginação extraídos da query string.
type Params struct {
	Page    int
	PerPage int
}

// Parse lê page/perPage com defaults e limites.
func Parse(r *http.Request) Params {
	p := Params{Page: 1, PerPage: defaultPerPage}
	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && v > 0 {
		p.Page = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("perPage")); err == nil && v > 0 {
		p.PerPage = v
	}
	if p.PerPage > maxPerPage {
		p.PerPage = maxPerPage
	}
	return p
}

// Scope aplica offset/limit numa consulta gorm.
func (p Params) Scope() func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset((p.Page - 1) * p.PerPage).Limit(p.PerPage)
	}
}

// Meta descreve a página corrente para o cliente.
type Meta struct {
	Page       int   `json:"page"`
	PerPage    int   `json:"perPage"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
	Pages      []int `json:"pages"`
}

// NewMeta calcula o total de páginas e a janela de navegação.
func NewMeta(p Params, total int64) Meta {
	totalPages := int((total + int64(p.PerPage) - 1) / int64(p.PerPage))
	if totalPages < 1 {
		totalPages = 1
	}
	return Meta{
		Page:       p.Page,
		PerPage:    p.PerPage,
		Total:      total,
		TotalPages: totalPages,
		Pages:      PageNumbers(p.Page, totalPages),
	}
}

// PageNumbers devolve a janela de páginas exibida na navegação: a
// primeira e a última sempre presentes, vizinhas da corrente no meio e
// Ellipsis nas lacunas. Com até 7 páginas devolve todas.
func PageNumbers(current, total int) []int {
	if total < 1 {
		return []int{}
	}
	if total <= 7 {
		pages := make([]int, total)
		for i := range pages {
			pages[i] = i + 1
		}
		return pages
	}

	if current < 1 {
		current = 1
	}
	if current > total {
		current = total
	}

	pages := []int{1}
	start := current - 1
	end := current + 1
	if start < 2 {
		start = 2
	}
	if end > total-1 {
		end = total - 1
	}

	if start > 2 {
		pages = append(pages, Ellipsis)
	}
	for i := start; i <= end; i++ {
		pages = append(pages, i)
	}
	if end < total-1 {
		pages = append(pages, Ellipsis)
	}
	return append(pages, total)
}

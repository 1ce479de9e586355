package pagination

import (
	"net/http/httptest"
	"testing"
)

func TestParseDefaults(t *testing.T) {
	r := httptest.NewRequest("GET", "/leads", nil)
	p := Parse(r)
	if p.Page != 1 || p.PerPage != 20 {
		t.Errorf("defaults errados: %+v", p)
	}
}

func TestParseLimites(t *testing.T) {
	r := httptest.NewRequest("GET", "/leads?page=3&perPage=500", nil)
	p := Parse(r)
	if p.Page != 3 {
		t.Errorf("page = %d", p.Page)
	}
	if p.PerPage != 100 {
		t.Errorf("perPage deveria ser limitado a 100, veio %d", p.PerPage)
	}

	r = httptest.NewRequest("GET", "/leads?page=-1&perPage=0", nil)
	p = Parse(r)
	if p.Page != 1 || p.PerPage != 20 {
		t.Errorf("valores inválidos deveriam cair nos defaults: %+v", p)
	}
}

func TestNewMeta(t *testing.T) {
	m := NewMeta(Params{Page: 2, PerPage: 20}, 45)
	if m.TotalPages != 3 {
		t.Errorf("totalPages = %d", m.TotalPages)
	}
	m = NewMeta(Params{Page: 1, PerPage: 20}, 0)
	if m.TotalPages != 1 {
		t.Errorf("lista vazia deveria ter 1 página, veio %d", m.TotalPages)
	}
}

func TestPageNumbersPoucasPaginas(t *testing.T) {
	got := PageNumbers(3, 7)
	if len(got) != 7 {
		t.Fatalf("com 7 páginas esperava todas, veio %v", got)
	}
	for i, p := range got {
		if p != i+1 {
			t.Errorf("posição %d = %d", i, p)
		}
	}
}

func TestPageNumbersJanela(t *testing.T) {
	for _, caso := range []struct {
		current, total int
	}{
		{1, 20}, {2, 20}, {5, 20}, {10, 20}, {19, 20}, {20, 20},
	} {
		got := PageNumbers(caso.current, caso.total)

		if got[0] != 1 {
			t.Errorf("current=%d: primeira página ausente em %v", caso.current, got)
		}
		if got[len(got)-1] != caso.total {
			t.Errorf("current=%d: última página ausente em %v", caso.current, got)
		}

		temCorrente := false
		for i, p := range got {
			if p == caso.current {
				temCorrente = true
			}
			if p == Ellipsis && i+1 < len(got) && got[i+1] == Ellipsis {
				t.Errorf("current=%d: ellipsis dupla em %v", caso.current, got)
			}
		}
		if !temCorrente {
			t.Errorf("current=%d: página corrente ausente em %v", caso.current, got)
		}
	}
}

func TestPageNumbersForaDoIntervalo(t *testing.T) {
	got := PageNumbers(99, 10)
	if got[len(got)-1] != 10 {
		t.Errorf("current acima do total deveria ser grampeado: %v", got)
	}
	if len(PageNumbers(1, 0)) != 0 {
		t.Error("total zero deveria devolver lista vazia")
	}
}

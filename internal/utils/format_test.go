package utils

import "testing"

func TestFormatarCNPJ(t *testing.T) {
	casos := []struct {
		entrada  string
		esperado string
	}{
		{"12345678000195", "12.345.678/0001-95"},
		{"12.345.678/0001-95", "12.345.678/0001-95"},
		{"123", "123"},
		{"", ""},
	}
	for _, c := range casos {
		if got := FormatarCNPJ(c.entrada); got != c.esperado {
			t.Errorf("FormatarCNPJ(%q) = %q, esperado %q", c.entrada, got, c.esperado)
		}
	}
}

func TestFormatarCNPJIdempotente(t *testing.T) {
	uma := FormatarCNPJ("12345678000195")
	duas := FormatarCNPJ(uma)
	if uma != duas {
		t.Errorf("formatar duas vezes mudou o valor: %q != %q", uma, duas)
	}
	if ApenasDigitos(duas) != "12345678000195" {
		t.Errorf("dígitos perdidos na formatação: %q", duas)
	}
}

func TestFormatarCEP(t *testing.T) {
	if got := FormatarCEP("01310100"); got != "01310-100" {
		t.Errorf("FormatarCEP = %q", got)
	}
	if got := FormatarCEP("123"); got != "123" {
		t.Errorf("CEP curto deveria voltar inalterado, veio %q", got)
	}
}

func TestSlugValido(t *testing.T) {
	validos := []string{"solar", "energia-solar", "empresa-1", "a1-b2-c3"}
	for _, s := range validos {
		if !SlugValido(s) {
			t.Errorf("SlugValido(%q) deveria ser true", s)
		}
	}
	invalidos := []string{"", "Energia", "solar_", "-solar", "solar-", "so lar", "çódigo"}
	for _, s := range invalidos {
		if SlugValido(s) {
			t.Errorf("SlugValido(%q) deveria ser false", s)
		}
	}
}

func TestHashEVerificarSenha(t *testing.T) {
	hash, err := HashSenha("segredo123")
	if err != nil {
		t.Fatalf("HashSenha: %v", err)
	}
	if !VerificarSenha(hash, "segredo123") {
		t.Error("senha correta não verificou")
	}
	if VerificarSenha(hash, "outra") {
		t.Error("senha errada verificou")
	}
}

func TestGerarSenhaTemporaria(t *testing.T) {
	s1, err := GerarSenhaTemporaria()
	if err != nil {
		t.Fatalf("GerarSenhaTemporaria: %v", err)
	}
	s2, _ := GerarSenhaTemporaria()
	if len(s1) != 12 {
		t.Errorf("tamanho esperado 12, veio %d", len(s1))
	}
	if s1 == s2 {
		t.Error("duas senhas temporárias iguais")
	}
}

package utils

import (
	"regexp"
	"strings"
)

var naoDigitos = regexp.MustCompile(`\D`)

// ApenasDigitos remove tudo que não for dígito.
func ApenasDigitos(s string) string {
	return naoDigitos.ReplaceAllString(s, "")
}

// FormatarCNPJ formata 14 dígitos como XX.XXX.XXX/XXXX-XX.
// Entradas com tamanho diferente voltam inalteradas.
func FormatarCNPJ(cnpj string) string {
	d := ApenasDigitos(cnpj)
	if len(d) != 14 {
		return cnpj
	}
	return d[0:2] + "." + d[2:5] + "." + d[5:8] + "/" + d[8:12] + "-" + d[12:14]
}

// FormatarCEP formata 8 dígitos como XXXXX-XXX.
func FormatarCEP(cep string) string {
	d := ApenasDigitos(cep)
	if len(d) != 8 {
		return cep
	}
	return d[0:5] + "-" + d[5:8]
}

var slugValido = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// SlugValido confere o formato dos códigos de empresa usados nas
// landing pages e no login com escopo de empresa.
func SlugValido(code string) bool {
	return slugValido.MatchString(strings.TrimSpace(code))
}

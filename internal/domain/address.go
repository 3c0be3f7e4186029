package domain

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// NormalizeAddress devuelve la dirección en hex minúsculas si es una wallet EVM válida.
func NormalizeAddress(addr string) (string, error) {
	a := strings.TrimSpace(addr)
	if !common.IsHexAddress(a) {
		return "", fmt.Errorf("%w: invalid address %q", ErrInvalidInput, addr)
	}
	return strings.ToLower(common.HexToAddress(a).Hex()), nil
}

// NormalizeUser normaliza el identificador de usuario según la plataforma.
// Plataformas EVM exigen wallet; el resto acepta su id de cuenta tal cual.
func NormalizeUser(p Platform, user string) (string, error) {
	if p.IsEVM() {
		return NormalizeAddress(user)
	}
	u := strings.TrimSpace(user)
	if u == "" {
		return "", fmt.Errorf("%w: empty user id", ErrInvalidInput)
	}
	return u, nil
}

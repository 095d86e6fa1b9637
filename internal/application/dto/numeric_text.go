package dto

import (
	"bytes"

	json "github.com/goccy/go-json"
)

// NumericText valor numérico recibido como texto. En JSON acepta tanto número
// (10.5) como cadena ("10.5"); en formularios llega siempre como cadena.
// La interpretación queda en el caso de uso, que decide si un valor inválido
// se rechaza (alta) o se ignora (actualización).
type NumericText string

// UnmarshalJSON guarda el literal tal cual llega. Cualquier otro tipo JSON
// (booleano, objeto) se conserva como texto y fallará al interpretarse.
func (n *NumericText) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = NumericText(s)
		return nil
	}
	*n = NumericText(data)
	return nil
}

// String devuelve el texto recibido.
func (n NumericText) String() string { return string(n) }

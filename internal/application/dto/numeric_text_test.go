package dto

import (
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumericText_AceptaNumeroOTexto(t *testing.T) {
	cases := map[string]NumericText{
		`{"price":10.5,"stock":3}`:      "10.5",
		`{"price":"10.5","stock":"3"}`:  "10.5",
		`{"price":" 7 ","stock":0}`:     " 7 ",
		`{"price":null,"stock":null}`:   "",
		`{"price":true,"stock":"otro"}`: "true",
		`{"price":1e3,"stock":"1"}`:     "1e3",
		`{"name":"sin precio"}`:         "",
	}
	for body, want := range cases {
		t.Run(body, func(t *testing.T) {
			var in CreateProductRequest
			require.NoError(t, json.Unmarshal([]byte(body), &in))
			assert.Equal(t, want, in.Price)
		})
	}
}

func TestNumericText_PunteroEnUpdate(t *testing.T) {
	var in UpdateProductRequest
	require.NoError(t, json.Unmarshal([]byte(`{"price":25}`), &in))
	require.NotNil(t, in.Price)
	assert.Equal(t, "25", in.Price.String())
	assert.Nil(t, in.Stock, "campo ausente no cambia")
}

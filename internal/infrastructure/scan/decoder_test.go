package scan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
)

func TestDecoder_Formatos(t *testing.T) {
	want := entity.ScanPayload{LotID: "LOT-20240301-AB12CD34", Quantity: 30, SubLocationID: 7}
	cases := map[string]string{
		"json antiguo": `{"lotId":"LOT-20240301-AB12CD34","quantity":30,"subLocationId":7}`,
		"json snake":   `{"lot_id":"LOT-20240301-AB12CD34","quantity":"30","sub_location_id":"7"}`,
		"compacto":     "LOT-20240301-AB12CD34|30|7",
		"con espacios": "  LOT-20240301-AB12CD34 | 30 | 7 \n",
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			got, err := Decoder{}.Decode(raw)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestDecoder_CantidadOpcionalEnJSON(t *testing.T) {
	got, err := Decoder{}.Decode(`{"lot":"L1","subLocationId":3}`)
	require.NoError(t, err)
	assert.Equal(t, entity.ScanPayload{LotID: "L1", SubLocationID: 3}, got)
}

func TestDecoder_Invalidos(t *testing.T) {
	for _, raw := range []string{
		"",
		"L1|30",
		"L1|x|7",
		"|30|7",
		"L1|30|0",
		`{"lotId":"L1"}`,
		`{"lotId":`,
		"L1|-2|7",
	} {
		_, err := Decoder{}.Decode(raw)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "raw=%q", raw)
	}
}

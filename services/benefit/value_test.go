package benefit

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestParseValueNativeJSON(t *testing.T) {
	b := &Benefit{Type: TypeCashback, RawValue: datatypes.JSON(`{"percentage":7.5}`)}
	require.Equal(t, 7.5, b.ParseValue().Percentage)
}

func TestParseValueStringEncoded(t *testing.T) {
	b := &Benefit{Type: TypeDesconto, RawValue: datatypes.JSON(`"{\"percentage\":12}"`)}
	require.Equal(t, 12.0, b.ParseValue().Percentage)
}

func TestParseValueLegacyValueField(t *testing.T) {
	b := &Benefit{Type: TypeDesconto, RawValue: datatypes.JSON(`{"value":20}`)}
	require.Equal(t, 20.0, b.ParseValue().Percentage)
}

func TestParseValueStringNumber(t *testing.T) {
	b := &Benefit{Type: TypeCashback, RawValue: datatypes.JSON(`{"percentage":"5"}`)}
	require.Equal(t, 5.0, b.ParseValue().Percentage)
}

func TestParseValueMonthlyPoints(t *testing.T) {
	b := &Benefit{Type: TypePontos, RawValue: datatypes.JSON(`{"monthlyPoints":100}`)}
	require.Equal(t, int64(100), b.ParseValue().MonthlyPoints)
}

func TestParseValueTier(t *testing.T) {
	b := &Benefit{Type: TypeAcessoExclusivo, RawValue: datatypes.JSON(`{"tier":"gold"}`)}
	require.Equal(t, "gold", b.ParseValue().Tier)
}

func TestParseValueGarbage(t *testing.T) {
	for _, raw := range []string{"", "not json", `"also not {json"`, `[1,2,3]`, `null`} {
		b := &Benefit{Type: TypeCashback, RawValue: datatypes.JSON(raw)}
		v := b.ParseValue()
		require.Equal(t, 0.0, v.Percentage, "raw=%q", raw)
		require.Equal(t, TypeCashback, v.Type)
	}
}

package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInfer(t *testing.T) {
	tests := []struct {
		raw  string
		kind Kind
		num  float64
		text string
	}{
		{raw: "", kind: KindNull},
		{raw: "   ", kind: KindNull},
		{raw: "NaN", kind: KindNull},
		{raw: "N/A", kind: KindNull},
		{raw: "TRUE", kind: KindBool, text: "TRUE"},
		{raw: "false", kind: KindBool, text: "false"},
		{raw: "42", kind: KindNumber, num: 42, text: "42"},
		{raw: " 3.5 ", kind: KindNumber, num: 3.5, text: "3.5"},
		{raw: "-7", kind: KindNumber, num: -7, text: "-7"},
		{raw: "4.20777123456E+11", kind: KindNumber, num: 420777123456, text: "4.20777123456E+11"},
		{raw: "0", kind: KindNumber, num: 0, text: "0"},
		{raw: "0.25", kind: KindNumber, num: 0.25, text: "0.25"},
		{raw: "2023.10", kind: KindNumber, num: 2023.1, text: "2023.10"},
		{raw: "01234", kind: KindString, text: "01234"},
		{raw: "2023-2024", kind: KindString, text: "2023-2024"},
		{raw: "Inf", kind: KindString, text: "Inf"},
		{raw: "0x1F", kind: KindString, text: "0x1F"},
		{raw: "  TUINA A, QIGONG ", kind: KindString, text: "TUINA A, QIGONG"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			v := Infer(tt.raw)
			assert.Equal(t, tt.kind, v.Kind)
			assert.Equal(t, tt.text, v.String())
			if tt.kind == KindNumber {
				assert.InDelta(t, tt.num, v.Num, 1e-9)
			}
		})
	}
}

func TestInfer_KeepsSourceText(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "trailing zero decimal", raw: "2023.10"},
		{name: "mixed case boolean", raw: "True"},
		{name: "exponent", raw: "1E3"},
		{name: "explicit plus", raw: "+5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.raw, Infer(tt.raw).String())
		})
	}
}

func TestValue_String(t *testing.T) {
	assert.Equal(t, "", Null().String())
	assert.Equal(t, "abc", StringValue("abc").String())
	assert.Equal(t, "110", NumberValue(110).String())
	assert.Equal(t, "420777123456", NumberValue(420777123456).String())
	assert.Equal(t, "2.5", NumberValue(2.5).String())
	assert.Equal(t, "true", BoolValue(true).String())
}

func TestValue_Int(t *testing.T) {
	tests := []struct {
		name    string
		v       Value
		want    int64
		wantErr bool
	}{
		{name: "integral number", v: NumberValue(7), want: 7},
		{name: "fractional number", v: NumberValue(7.5), wantErr: true},
		{name: "numeric string", v: StringValue(" 12 "), want: 12},
		{name: "text", v: StringValue("abc"), wantErr: true},
		{name: "decimal string", v: StringValue("7.0"), wantErr: true},
		{name: "bool", v: BoolValue(true), wantErr: true},
		{name: "null", v: Null(), wantErr: true},
		{name: "inferred integer beyond float precision", v: Infer("9007199254740993"), want: 9007199254740993},
		{name: "inferred neighbour stays distinct", v: Infer("9007199254740992"), want: 9007199254740992},
		{name: "inferred integral float text", v: Infer("1001.0"), want: 1001},
		{name: "inferred fraction", v: Infer("10.5"), wantErr: true},
		{name: "inferred one", v: Infer("1"), want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.v.Int()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValue_Truthy(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want bool
	}{
		{name: "bool true", v: BoolValue(true), want: true},
		{name: "bool false", v: BoolValue(false), want: false},
		{name: "one", v: NumberValue(1), want: true},
		{name: "zero", v: NumberValue(0), want: false},
		{name: "negative", v: NumberValue(-2), want: true},
		{name: "yes", v: StringValue("Yes"), want: true},
		{name: "ano", v: StringValue("ano"), want: true},
		{name: "no", v: StringValue("NO"), want: false},
		{name: "string zero", v: StringValue("0"), want: false},
		{name: "other text", v: StringValue("whatever"), want: true},
		{name: "null", v: Null(), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.v.Truthy())
		})
	}
}

package dataprocessing

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "floxcli/internal/errors"
	"floxcli/internal/ingest"
)

func strPtr(s string) *string { return &s }

func TestBuildStudent_Defaults(t *testing.T) {
	s, err := BuildStudent(ingest.Row{Index: 0, UserID: ingest.NumberValue(1001)})
	require.NoError(t, err)

	assert.Equal(t, int64(1001), s.UserID)
	assert.Equal(t, "", s.Email)
	assert.Nil(t, s.Title)
	assert.Nil(t, s.Name)
	assert.Nil(t, s.Surname)
	assert.Nil(t, s.InternalNote)
	assert.Nil(t, s.ActiveTo)
	assert.Nil(t, s.AddressPhone)
	assert.True(t, s.Active)
	assert.False(t, s.Newsletter)
	assert.False(t, s.HasGroups())
	assert.Equal(t, "", s.FullName())
}

func TestBuildStudent_Fields(t *testing.T) {
	row := ingest.Row{
		Index:          3,
		UserID:         ingest.StringValue(" 42 "),
		Email:          ingest.StringValue("  Jana.Novak@Example.CZ "),
		Title:          ingest.StringValue(" Ing. "),
		Name:           ingest.StringValue(" Jana"),
		Surname:        ingest.StringValue("Nováková "),
		Active:         ingest.StringValue("ne"),
		Newsletter:     ingest.NumberValue(1),
		InternalNote:   ingest.NumberValue(7),
		AddressStreet:  ingest.StringValue("Dlouhá 5"),
		AddressCity:    ingest.StringValue("Praha"),
		AddressZip:     ingest.NumberValue(11000),
		AddressCountry: ingest.StringValue("CZ"),
		AddressPhone:   ingest.NumberValue(420777123456),
	}

	s, err := BuildStudent(row)
	require.NoError(t, err)

	assert.Equal(t, int64(42), s.UserID)
	assert.Equal(t, "jana.novak@example.cz", s.Email)
	assert.Equal(t, strPtr("Ing."), s.Title)
	assert.Equal(t, strPtr("Jana"), s.Name)
	assert.Equal(t, strPtr("Nováková"), s.Surname)
	assert.Equal(t, "Ing. Jana Nováková", s.FullName())
	assert.False(t, s.Active)
	assert.True(t, s.Newsletter)
	assert.Equal(t, strPtr("7"), s.InternalNote)
	assert.Equal(t, strPtr("11000"), s.AddressZip)
	assert.Equal(t, strPtr("420777123456"), s.AddressPhone)
}

func TestBuildStudent_InvalidUserID(t *testing.T) {
	tests := []struct {
		name string
		v    ingest.Value
	}{
		{name: "missing", v: ingest.Null()},
		{name: "text", v: ingest.StringValue("abc")},
		{name: "fraction", v: ingest.NumberValue(1.5)},
		{name: "bool", v: ingest.BoolValue(true)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildStudent(ingest.Row{Index: 9, UserID: tt.v})
			require.Error(t, err)

			var buildErr *StudentBuildError
			require.True(t, errors.As(err, &buildErr))
			assert.Equal(t, 9, buildErr.Row)
			assert.Equal(t, ingest.ColUserID, buildErr.Field)
			assert.Contains(t, err.Error(), "row 9")

			appErr := buildErr.AppError()
			assert.Equal(t, apperrors.ErrTypeRow, appErr.Type)
			assert.False(t, appErr.Fatal())
			assert.Equal(t, 9, appErr.Context["row"])
		})
	}
}

func TestBuildStudent_Phone(t *testing.T) {
	tests := []struct {
		name    string
		v       ingest.Value
		want    string
		wantErr bool
	}{
		{name: "integral number", v: ingest.NumberValue(777123456), want: "777123456"},
		{name: "digit string", v: ingest.StringValue("00420777123456"), want: "00420777123456"},
		{name: "padded digits", v: ingest.StringValue(" 777123456 "), want: "777123456"},
		{name: "fractional number", v: ingest.NumberValue(777.5), wantErr: true},
		{name: "negative number", v: ingest.NumberValue(-777), wantErr: true},
		{name: "formatted", v: ingest.StringValue("+420 777 123 456"), wantErr: true},
		{name: "text", v: ingest.StringValue("unknown"), wantErr: true},
		{name: "bool", v: ingest.BoolValue(true), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := BuildStudent(ingest.Row{Index: 1, UserID: ingest.NumberValue(5), AddressPhone: tt.v})
			if tt.wantErr {
				var buildErr *StudentBuildError
				require.True(t, errors.As(err, &buildErr))
				assert.Equal(t, ingest.ColAddressPhone, buildErr.Field)
				assert.Nil(t, s)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, s.AddressPhone)
			assert.Equal(t, tt.want, *s.AddressPhone)
		})
	}
}

func TestBuildStudent_Booleans(t *testing.T) {
	tests := []struct {
		name           string
		active         ingest.Value
		newsletter     ingest.Value
		wantActive     bool
		wantNewsletter bool
	}{
		{name: "absent", wantActive: true, wantNewsletter: false},
		{name: "bools", active: ingest.BoolValue(false), newsletter: ingest.BoolValue(true), wantActive: false, wantNewsletter: true},
		{name: "numbers", active: ingest.NumberValue(0), newsletter: ingest.NumberValue(2), wantActive: false, wantNewsletter: true},
		{name: "spellings", active: ingest.StringValue("Ano"), newsletter: ingest.StringValue("no"), wantActive: true, wantNewsletter: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := BuildStudent(ingest.Row{UserID: ingest.NumberValue(1), Active: tt.active, Newsletter: tt.newsletter})
			require.NoError(t, err)
			assert.Equal(t, tt.wantActive, s.Active)
			assert.Equal(t, tt.wantNewsletter, s.Newsletter)
		})
	}
}

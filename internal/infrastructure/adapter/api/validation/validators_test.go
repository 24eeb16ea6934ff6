package validation

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Mode      string `validate:"gamemode"`
	Selection string `validate:"selection"`
	Amount    string `validate:"money"`
	Market    string `validate:"market"`
}

func TestRegister(t *testing.T) {
	v := validator.New()
	require.NoError(t, Register(v))

	assert.NoError(t, v.Struct(sample{Mode: "30s", Selection: "Green", Amount: "1000.00", Market: "55Five"}))
	assert.NoError(t, v.Struct(sample{Mode: "5Min", Selection: "7", Amount: "1", Market: "PreA"}))

	cases := map[string]sample{
		"mode":      {Mode: "10s", Selection: "Red", Amount: "1.00", Market: "PreA"},
		"selection": {Mode: "30s", Selection: "Purple", Amount: "1.00", Market: "PreA"},
		"amount":    {Mode: "30s", Selection: "Red", Amount: "1.001", Market: "PreA"},
		"market":    {Mode: "30s", Selection: "Red", Amount: "1.00", Market: "NASDAQ"},
	}
	for field, s := range cases {
		t.Run(field, func(t *testing.T) {
			err := v.Struct(s)
			require.Error(t, err)
			var verrs validator.ValidationErrors
			require.ErrorAs(t, err, &verrs)
			assert.Len(t, verrs, 1)
		})
	}
}

func TestRegisterWithGin(t *testing.T) {
	assert.NoError(t, RegisterWithGin())
}

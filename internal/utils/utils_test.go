package utils

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeBase64Image(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString([]byte("fake-png-bytes"))

	img, err := DecodeBase64Image("data:image/png;base64," + payload)
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.ContentType)
	assert.Equal(t, []byte("fake-png-bytes"), img.Data)

	img, err = DecodeBase64Image("data:image/jpeg;base64," + payload)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", img.ContentType)
}

func TestDecodeBase64Image_Invalid(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString([]byte("data"))

	cases := map[string]string{
		"no header":      payload,
		"not an image":   "data:text/plain;base64," + payload,
		"empty subtype":  "data:image/;base64," + payload,
		"broken payload": "data:image/png;base64,***",
		"empty payload":  "data:image/png;base64,",
	}
	for name, uri := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeBase64Image(uri)
			assert.ErrorIs(t, err, ErrInvalidDataURI)
		})
	}
}

func TestGetConfigDefaults(t *testing.T) {
	require.NoError(t, ParseConfig([]byte("{}")))

	assert.Equal(t, "8080", GetConfig("APP_PORT"))
	assert.Equal(t, "./logs/app.log", GetConfig("LOG_FILE"))
	assert.Equal(t, 20, GetRateLimitMax())
	assert.Equal(t, "", GetConfig("UNKNOWN"))

	require.NoError(t, ParseConfig([]byte("APP_PORT: \"9000\"\nRATE_LIMIT_MAX: 50\nAPP_URL: https://foodgram.test\n")))
	t.Cleanup(func() { _ = ParseConfig([]byte("{}")) })

	assert.Equal(t, "9000", GetConfig("APP_PORT"))
	assert.Equal(t, "https://foodgram.test", GetConfig("APP_URL"))
	assert.Equal(t, 50, GetRateLimitMax())
}

func TestPasswordHash(t *testing.T) {
	hashed, err := HashPassword("correct-horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct-horse", hashed)
	assert.True(t, CheckPassword(hashed, "correct-horse"))
	assert.False(t, CheckPassword(hashed, "battery-staple"))
}

func TestValidatorRules(t *testing.T) {
	InitValidator()

	type account struct {
		Username string `validate:"required,username"`
		Slug     string `validate:"required,slug"`
	}

	assert.NoError(t, Validate.Struct(account{Username: "chef.mario+1@home", Slug: "break_fast-1"}))
	assert.Error(t, Validate.Struct(account{Username: "chef mario", Slug: "breakfast"}))
	assert.Error(t, Validate.Struct(account{Username: "chef", Slug: "break fast"}))
	assert.Error(t, Validate.Struct(account{Username: "chef!", Slug: "breakfast"}))
}

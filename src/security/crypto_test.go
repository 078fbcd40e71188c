package security

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncryptDecryptRoundtrip(t *testing.T) {
	secrets := []string{
		"",
		"simple",
		"a-longer-secret-with-symbols-!@#$%^&*()",
		"пароль-unicode-密码",
	}

	for _, plain := range secrets {
		enc, err := EncryptString(plain)
		require.NoError(t, err)
		if plain != "" {
			require.NotEqual(t, plain, enc)
		}

		dec, err := DecryptString(enc)
		require.NoError(t, err)
		require.Equal(t, plain, dec)
	}
}

func TestEncryptNonDeterministic(t *testing.T) {
	a, err := EncryptString("secret")
	require.NoError(t, err)
	b, err := EncryptString("secret")
	require.NoError(t, err)
	require.NotEqual(t, a, b, "random nonce must vary the ciphertext")
}

func TestDecryptRejectsGarbage(t *testing.T) {
	_, err := DecryptString("not-base64!!!")
	require.Error(t, err)

	_, err = DecryptString("c2hvcnQ=")
	require.Error(t, err, "ciphertext shorter than the nonce must fail")
}

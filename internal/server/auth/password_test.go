package auth

import (
	"testing"

	"github.com/dmitrijs2005/filevault/internal/common"
	"github.com/stretchr/testify/require"
)

func TestPassword(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	require.NotEqual(t, []byte("correct horse"), hash)

	require.NoError(t, CheckPassword(hash, "correct horse"))
	require.ErrorIs(t, CheckPassword(hash, "battery staple"), common.ErrInvalidCredentials)
	require.Error(t, CheckPassword([]byte("not a hash"), "x"))
}

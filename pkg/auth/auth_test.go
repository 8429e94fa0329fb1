package auth

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/arnavshah/shift-roster-go/pkg/database"
)

func init() {
	BcryptCost = bcrypt.MinCost
}

func newAuth(t *testing.T) *Authenticator {
	t.Helper()
	a, err := New("jwt-secret", "master-secret")
	require.NoError(t, err)
	return a
}

func TestNewRequiresSecrets(t *testing.T) {
	_, err := New("", "x")
	assert.Error(t, err)
	_, err = New("x", "")
	assert.Error(t, err)
}

func TestToken(t *testing.T) {
	a := newAuth(t)
	token, err := a.CreateToken("admin")
	require.NoError(t, err)

	claims, err := a.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Username)
	assert.WithinDuration(t, time.Now().Add(TokenTTL), claims.ExpiresAt.Time, time.Minute)

	other, err := New("other-secret", "master-secret")
	require.NoError(t, err)
	_, err = other.VerifyToken(token)
	assert.Error(t, err)
}

func TestExpiredToken(t *testing.T) {
	a := newAuth(t)
	claims := &Claims{
		Username: "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwtAlgorithm, claims).SignedString([]byte("jwt-secret"))
	require.NoError(t, err)
	_, err = a.VerifyToken(token)
	assert.Error(t, err)
}

func TestHMACKey(t *testing.T) {
	a := newAuth(t)
	key, err := a.GenerateHMACKey("ward-3")
	require.NoError(t, err)

	userID, err := a.VerifyHMACKey(key)
	require.NoError(t, err)
	assert.Equal(t, "ward-3", userID)

	for _, bad := range []string{"", "ward-3", "ward-3.deadbeef", ".abc", key + ".x"} {
		_, err := a.VerifyHMACKey(bad)
		assert.Error(t, err, bad)
	}

	_, err = a.GenerateHMACKey("a.b")
	assert.Error(t, err)
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)
	assert.True(t, CheckPasswordHash("s3cret", hash))
	assert.False(t, CheckPasswordHash("wrong", hash))
}

func TestEnsureAdminExists(t *testing.T) {
	db, err := database.InitDB(database.Options{DataPath: filepath.Join(t.TempDir(), "auth.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	created, err := EnsureAdminExists(db, "admin", "pw")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = EnsureAdminExists(db, "someone", "pw2")
	require.NoError(t, err)
	assert.False(t, created)

	var user database.MasterUser
	require.NoError(t, db.Where("username = ?", "admin").First(&user).Error)
	assert.True(t, CheckPasswordHash("pw", user.PasswordHash))
}

package account

import (
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/academia/core"
)

func TestTokenizer(t *testing.T) {
	conf := core.NewTestConfig()
	tk := NewTokenizer(conf)
	acc := Account{ID: "acc-1", Role: RoleStudent, Handle: "STD-001", Name: "Ada Lovelace"}

	validToken, err := tk.Issue(acc)
	require.NoError(t, err)

	// generate an expired token
	NowFunc = func() time.Time { return time.Now().Add(-2 * conf.JWTExpirationDelta) }
	expiredToken, err := tk.Issue(acc)
	NowFunc = time.Now // reset
	require.NoError(t, err)

	otherConf := core.NewTestConfig()
	otherConf.SecretKey = "not-our-secret"
	forgedToken, err := NewTokenizer(otherConf).Issue(acc)
	require.NoError(t, err)

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, tk.claimsFor(acc)).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noRole, err := tk.Issue(Account{ID: "acc-2", Role: Role("admin")})
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{name: "no token", token: "", wantErr: ErrMissingToken},
		{name: "malformed", token: "lmaooolol", wantErr: ErrInvalidToken},
		{name: "expired", token: expiredToken, wantErr: ErrInvalidToken},
		{name: "foreign signature", token: forgedToken, wantErr: ErrInvalidToken},
		{name: "unsigned", token: noneToken, wantErr: ErrInvalidToken},
		{name: "unknown role", token: noRole, wantErr: ErrInvalidToken},
		{name: "valid", token: validToken},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			claims, err := tk.Parse(tc.token)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				assert.Equal(t, core.KindUnauthenticated, core.KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, acc.ID, claims.Subject)
			assert.Equal(t, acc.Role, claims.Role)
			assert.Equal(t, acc.Handle, claims.Handle)
		})
	}
}

func TestPasswordViolation(t *testing.T) {
	tests := []struct {
		name  string
		pwd   string
		attrs []string
		want  string
	}{
		{name: "too short", pwd: "aB3$x", want: pwdMinLenTag},
		{name: "whitespace", pwd: "Kx9#m Q2$vL", want: pwdNoSpaceTag},
		{name: "all numeric", pwd: "2024202420", want: pwdNotAllNumTag},
		{name: "similar to handle", pwd: "std-001-pass", attrs: []string{"Ada Lovelace", "STD-001"}, want: pwdAttrSimTag},
		{name: "similar to name", pwd: "AdaLovelace1", attrs: []string{"Ada Lovelace", "STD-001"}, want: pwdAttrSimTag},
		{name: "ok", pwd: "Kx9#mQ2$vL", attrs: []string{"Ada Lovelace", "STD-001"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, passwordViolation(tc.pwd, tc.attrs...))
		})
	}
}

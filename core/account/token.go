package account

import (
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/pkg/errors"

	"github.com/trezcool/academia/core"
)

var (
	NowFunc = time.Now // mockable

	signingMethod = jwt.SigningMethodHS256
	audience      = "academia"
)

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.StandardClaims
	Role   Role   `json:"role"`
	Handle string `json:"handle,omitempty"`
}

// Tokenizer issues and parses signed session tokens. Tokens are immutable once issued.
type Tokenizer struct {
	key    []byte
	issuer string
	ttl    time.Duration
}

func NewTokenizer(conf *core.Config) *Tokenizer {
	return &Tokenizer{
		key:    []byte(conf.SecretKey),
		issuer: conf.AppName,
		ttl:    conf.JWTExpirationDelta,
	}
}

func (tk *Tokenizer) claimsFor(acc Account) *Claims {
	now := NowFunc()
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    tk.issuer,
			Subject:   acc.ID,
			Audience:  audience,
			ExpiresAt: now.Add(tk.ttl).Unix(),
			IssuedAt:  now.Unix(),
		},
		Role:   acc.Role,
		Handle: acc.Handle,
	}
}

// Issue generates a signed JWT token string for the Account.
func (tk *Tokenizer) Issue(acc Account) (string, error) {
	token := jwt.NewWithClaims(signingMethod, tk.claimsFor(acc))
	ss, err := token.SignedString(tk.key)
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

// Parse verifies the token signature & expiry and returns its claims.
func (tk *Tokenizer) Parse(tokenStr string) (*Claims, error) {
	if tokenStr == "" {
		return nil, ErrMissingToken
	}

	claims := new(Claims)
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != signingMethod.Alg() {
			return nil, errors.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return tk.key, nil
	})
	if err != nil || !token.Valid {
		return nil, core.E(core.KindUnauthenticated, ErrInvalidToken.Reason, err)
	}
	if claims.Subject == "" || !claims.Role.Valid() || !claims.VerifyAudience(audience, true) {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

package security

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

var ErrUnsupportedAlgorithm = errors.New("неподдерживаемый алгоритм подписи")

// Codec : подписывает и разбирает токены общим секретом (семейство HMAC).
// Время жизни и aud здесь не проверяются, это делает Validator.
type Codec struct {
	secret []byte
	method jwt.SigningMethod
}

func NewCodec(secret []byte, algorithm string) (*Codec, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("пустой секрет для подписи токенов")
	}

	var method jwt.SigningMethod
	switch algorithm {
	case "", jwt.SigningMethodHS256.Alg():
		method = jwt.SigningMethodHS256
	case jwt.SigningMethodHS384.Alg():
		method = jwt.SigningMethodHS384
	case jwt.SigningMethodHS512.Alg():
		method = jwt.SigningMethodHS512
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedAlgorithm, algorithm)
	}

	return &Codec{secret: secret, method: method}, nil
}

func (c *Codec) Algorithm() string {
	return c.method.Alg()
}

// Encode : подписывает claims
func (c *Codec) Encode(claims *Claims) (string, error) {
	token, err := jwt.NewWithClaims(c.method, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("ошибка подписи токена: %w", err)
	}
	return token, nil
}

// Decode : проверяет подпись и alg заголовка, возвращает claims.
// Ошибки: ErrMalformedToken, ErrSignature.
func (c *Codec) Decode(token string) (*Claims, error) {
	claims := &Claims{}

	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{c.method.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, fmt.Errorf("%w: %v", ErrSignature, err)
		default:
			return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
		}
	}

	return claims, nil
}

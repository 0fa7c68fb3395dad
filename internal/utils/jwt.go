package utils // package utils provides token signing, verification and hashing helpers

import (
    "crypto/rand"  // secure random number generation for activation codes
    "errors"       // sentinel error for failed verification
    "math/big"     // unbiased random integer in the code range
    "time"         // expiries

    "github.com/golang-jwt/jwt/v5" // JWT library for creating and parsing signed tokens
)

// ErrTokenVerification is returned for every verification failure: bad
// signature, expired token, malformed input, wrong claim shape.  Collapsing
// them denies callers an oracle for distinguishing expiry from tampering.
var ErrTokenVerification = errors.New("token verification failed")

// SignedToken is a serialized JWT together with its expiry.  Access and
// refresh tokens are both of this shape; they differ only in secret and TTL.
type SignedToken struct {
    Token string    // the serialized JWT string
    Exp   time.Time // the UTC expiration time
}

// NewActivationCode returns a random 4-digit numeric code (1000-9999) that
// is mailed to the user out-of-band and embedded in the activation token.
func NewActivationCode() (string, error) {
    // 1000 + [0,9000) keeps the code at exactly four digits.
    n, err := rand.Int(rand.Reader, big.NewInt(9000))
    if err != nil {
        return "", err
    }
    return big.NewInt(1000 + n.Int64()).String(), nil
}

// SignActivationToken builds an HS256 JWT binding a pending user id to an
// activation code for the given TTL.  The token is returned to the client
// while the code travels by email; activation requires presenting both.
func SignActivationToken(secret string, userID uint64, code string, ttl time.Duration) (SignedToken, error) {
    exp := time.Now().UTC().Add(ttl)
    claims := jwt.MapClaims{
        "uid":  userID,
        "code": code,
        "exp":  exp.Unix(),
        "iat":  time.Now().UTC().Unix(),
    }
    t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
    signed, err := t.SignedString([]byte(secret))
    if err != nil {
        return SignedToken{}, err
    }
    return SignedToken{Token: signed, Exp: exp}, nil
}

// ParseActivationToken verifies signature and expiry and extracts the user
// id and code claims.  Any failure collapses to ErrTokenVerification.
func ParseActivationToken(secret, token string) (uint64, string, error) {
    claims, err := parseHS256(secret, token)
    if err != nil {
        return 0, "", ErrTokenVerification
    }
    uid, ok := numericClaim(claims, "uid")
    if !ok || uid == 0 {
        return 0, "", ErrTokenVerification
    }
    code, ok := claims["code"].(string)
    if !ok || code == "" {
        return 0, "", ErrTokenVerification
    }
    return uid, code, nil
}

// SignSessionToken builds an HS256 JWT carrying only the user id.  It is
// used for both access and refresh tokens; the two classes are kept apart
// by signing them with independent secrets.
func SignSessionToken(secret string, userID uint64, ttl time.Duration) (SignedToken, error) {
    exp := time.Now().UTC().Add(ttl)
    claims := jwt.MapClaims{
        "id":  userID,
        "exp": exp.Unix(),
        "iat": time.Now().UTC().Unix(),
    }
    t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
    signed, err := t.SignedString([]byte(secret))
    if err != nil {
        return SignedToken{}, err
    }
    return SignedToken{Token: signed, Exp: exp}, nil
}

// ParseSessionToken verifies a session (access or refresh) token against
// the matching secret and returns the embedded user id.  A token signed
// with a different secret, expired, malformed, or lacking the id claim
// fails with ErrTokenVerification.
func ParseSessionToken(secret, token string) (uint64, error) {
    claims, err := parseHS256(secret, token)
    if err != nil {
        return 0, ErrTokenVerification
    }
    uid, ok := numericClaim(claims, "id")
    if !ok || uid == 0 {
        return 0, ErrTokenVerification
    }
    return uid, nil
}

// parseHS256 parses and validates a token, rejecting any signing method
// other than HMAC so an attacker cannot downgrade to "none" or swap in an
// asymmetric algorithm.
func parseHS256(secret, token string) (jwt.MapClaims, error) {
    tok, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
        if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
            return nil, ErrTokenVerification
        }
        return []byte(secret), nil
    })
    if err != nil || !tok.Valid {
        return nil, ErrTokenVerification
    }
    claims, ok := tok.Claims.(jwt.MapClaims)
    if !ok {
        return nil, ErrTokenVerification
    }
    return claims, nil
}

// numericClaim reads a claim that the library may decode as float64 (JSON
// numbers) and converts it to uint64.
func numericClaim(claims jwt.MapClaims, key string) (uint64, bool) {
    switch v := claims[key].(type) {
    case float64:
        if v < 0 {
            return 0, false
        }
        return uint64(v), true
    case uint64:
        return v, true
    }
    return 0, false
}

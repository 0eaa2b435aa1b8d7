package invites

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
)

const (
	codeChars  = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	codeLength = 10
)

type CodeAvailabilityChecker interface {
	ExistsByCode(ctx context.Context, code string) (bool, error)
}

// GenerateCode returns an unused invite code, retrying on collision and
// widening the code once if collisions persist.
func GenerateCode(ctx context.Context, checker CodeAvailabilityChecker) (string, error) {
	const maxRetries = 5
	for i := 0; i < maxRetries; i++ {
		code, err := randomCode(codeLength)
		if err != nil {
			return "", err
		}
		exists, err := checker.ExistsByCode(ctx, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}

	code, err := randomCode(codeLength + 2)
	if err != nil {
		return "", err
	}
	exists, err := checker.ExistsByCode(ctx, code)
	if err != nil {
		return "", err
	}
	if exists {
		return "", errors.New("failed to generate unique invite code")
	}
	return code, nil
}

func randomCode(length int) (string, error) {
	b := make([]byte, length)
	max := big.NewInt(int64(len(codeChars)))
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = codeChars[n.Int64()]
	}
	return string(b), nil
}

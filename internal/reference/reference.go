// Package reference turns booking IDs into short public codes like
// "APT-7KQ2M9XD" so sequential database IDs are not exposed to users.
package reference

import (
	"errors"
	"fmt"
	"strings"

	"github.com/speps/go-hashids/v2"
)

const (
	prefix    = "APT-"
	alphabet  = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	minLength = 8
)

var ErrInvalid = errors.New("invalid booking reference")

type Encoder struct {
	h *hashids.HashID
}

func New(salt string) (*Encoder, error) {
	hd := hashids.NewData()
	hd.Salt = salt
	hd.Alphabet = alphabet
	hd.MinLength = minLength

	h, err := hashids.NewWithData(hd)
	if err != nil {
		return nil, fmt.Errorf("hashids: %w", err)
	}
	return &Encoder{h: h}, nil
}

func (e *Encoder) Encode(bookingID int64) (string, error) {
	code, err := e.h.EncodeInt64([]int64{bookingID})
	if err != nil {
		return "", fmt.Errorf("encode booking %d: %w", bookingID, err)
	}
	return prefix + code, nil
}

// Decode accepts the code with or without prefix, in any letter case.
func (e *Encoder) Decode(ref string) (int64, error) {
	code := strings.ToUpper(strings.TrimSpace(ref))
	code = strings.TrimPrefix(code, prefix)
	if code == "" {
		return 0, ErrInvalid
	}

	ids, err := e.h.DecodeInt64WithError(code)
	if err != nil || len(ids) != 1 {
		return 0, ErrInvalid
	}
	return ids[0], nil
}

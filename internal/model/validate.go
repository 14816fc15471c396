package model

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"

	svcErr "github.com/oggyb/skillswap/internal/errors"
)

// MaxPhotoBytes bounds the decoded size of an inline profile photo.
const MaxPhotoBytes = 5 << 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// "dataimage": empty, or a base64 data URL whose payload is an image.
	_ = v.RegisterValidation("dataimage", func(fl validator.FieldLevel) bool {
		return CheckPhoto(fl.Field().String()) == nil
	})
	return v
}

// Validate checks the struct tags of a draft or patch and reports every
// failing field as a single ErrInvalidArgument.
func Validate(in any) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return svcErr.InvalidArgument(err.Error())
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Tag() == "dataimage" {
			if s, ok := fe.Value().(string); ok {
				msgs = append(msgs, fmt.Sprintf("%s: %v", fe.Field(), CheckPhoto(s)))
				continue
			}
		}
		msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Field(), fe.Tag()))
	}
	return svcErr.InvalidArgument(strings.Join(msgs, "; "))
}

// CheckPhoto accepts an empty string or an inline "data:image/...;base64,"
// URL of at most MaxPhotoBytes whose decoded content sniffs as an image.
func CheckPhoto(photo string) error {
	if photo == "" {
		return nil
	}

	rest, ok := strings.CutPrefix(photo, "data:")
	if !ok {
		return errors.New("photo must be a data URL")
	}
	header, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return errors.New("photo data URL has no payload")
	}
	declared, ok := strings.CutSuffix(header, ";base64")
	if !ok {
		return errors.New("photo must be base64 encoded")
	}
	if !strings.HasPrefix(declared, "image/") {
		return fmt.Errorf("photo has non-image type %q", declared)
	}
	if len(payload) > base64.StdEncoding.EncodedLen(MaxPhotoBytes) {
		return fmt.Errorf("photo exceeds %d bytes", MaxPhotoBytes)
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return fmt.Errorf("photo payload: %w", err)
	}
	if len(raw) > MaxPhotoBytes {
		return fmt.Errorf("photo exceeds %d bytes", MaxPhotoBytes)
	}

	if detected := mimetype.Detect(raw); !strings.HasPrefix(detected.String(), "image/") {
		return fmt.Errorf("photo content is %s, not an image", detected.String())
	}
	return nil
}

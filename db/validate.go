package db

import (
	"encoding/base64"
	"errors"
	"reflect"
	"regexp"
	"strings"

	"Gin_postgres_redis_donations/models"

	"github.com/go-playground/validator/v10"
)

const (
	MaxImages     = 5
	MaxImageBytes = 5 << 20
	maxMessageLen = 1000
	maxReasonLen  = 500
)

var dataImagePrefix = regexp.MustCompile(`^data:image/[a-zA-Z0-9.+-]+;base64,`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// 错误信息里用 json 字段名
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) || len(ves) == 0 {
		return validationErr("invalid input: %v", err)
	}
	fe := ves[0]
	switch fe.Tag() {
	case "required":
		return validationErr("%s is required", fe.Field())
	case "oneof":
		return validationErr("%s must be one of: %s", fe.Field(), fe.Param())
	case "max":
		return validationErr("%s exceeds the maximum of %s", fe.Field(), fe.Param())
	}
	return validationErr("%s is invalid", fe.Field())
}

// validateImages accepts inline base64 data URIs only, each at most 5 MiB
// once decoded.
func validateImages(imgs []string) error {
	if len(imgs) > MaxImages {
		return validationErr("images exceeds the maximum of %d", MaxImages)
	}
	for i, img := range imgs {
		loc := dataImagePrefix.FindStringIndex(img)
		if loc == nil {
			return validationErr("images[%d] must be a data:image base64 URI", i)
		}
		payload := img[loc[1]:]
		if base64.StdEncoding.DecodedLen(len(payload)) > MaxImageBytes+2 {
			return validationErr("images[%d] exceeds 5MB", i)
		}
		raw, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return validationErr("images[%d] is not valid base64", i)
		}
		if len(raw) > MaxImageBytes {
			return validationErr("images[%d] exceeds 5MB", i)
		}
	}
	return nil
}

func normalizeInput(in models.ItemInput) models.ItemInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	in.Size = strings.TrimSpace(in.Size)
	return in
}

// normalizePatch trims strings and drops empty descriptive fields. An empty
// size is kept: it clears the size.
func normalizePatch(p models.ItemPatch) models.ItemPatch {
	trim := func(s *string) *string {
		if s == nil {
			return nil
		}
		t := strings.TrimSpace(*s)
		return &t
	}
	p.Name = trim(p.Name)
	if p.Name != nil && *p.Name == "" {
		p.Name = nil
	}
	p.Description = trim(p.Description)
	if p.Description != nil && *p.Description == "" {
		p.Description = nil
	}
	if p.Category != nil && *p.Category == "" {
		p.Category = nil
	}
	if p.Condition != nil && *p.Condition == "" {
		p.Condition = nil
	}
	p.Size = trim(p.Size)
	return p
}

func validateItemInput(in models.ItemInput) error {
	if err := validateStruct(in); err != nil {
		return err
	}
	return validateImages(in.Images)
}

func validateItemPatch(p models.ItemPatch) error {
	if err := validateStruct(p); err != nil {
		return err
	}
	if p.Images != nil {
		return validateImages(*p.Images)
	}
	return nil
}

func validateText(field, s string, max int) error {
	if len(s) > max {
		return validationErr("%s exceeds the maximum of %d", field, max)
	}
	return nil
}

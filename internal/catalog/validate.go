package catalog

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// ValidationError reports the first invalid field of an input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(field, msg string) *ValidationError {
	return &ValidationError{Field: field, Message: msg}
}

// ImageMeta describes an image chosen for upload.
type ImageMeta struct {
	Name        string
	ContentType string
	Size        int64
}

// CategoryInput is the editable part of a category.
type CategoryInput struct {
	ID          int64
	Name        string `validate:"required"`
	Description string `validate:"required"`
	Active      bool
}

// SubcategoryInput is the editable part of a subcategory.
type SubcategoryInput struct {
	ID         int64
	Name       string `validate:"required"`
	CategoryID int64  `validate:"gt=0"`
}

// ProductInput is the editable part of a product.
type ProductInput struct {
	ID                  int64
	Name                string `validate:"required"`
	Description         string `validate:"required"`
	CompleteDescription string
	CategoryID          int64 `validate:"gt=0"`
	SubcategoryID       *int64
	Price               decimal.Decimal
	DiscountPrice       *decimal.Decimal
	Type                ProductType
	Colors              []Color
	Tags                []string
	Ingredients         []string
	HowToUse            string
	Active              bool
}

// Credentials are the login form fields.
type Credentials struct {
	Username string `validate:"required,min=3"`
	Password string `validate:"required,min=4"`
}

// Limits bounds input sizes.
type Limits struct {
	MaxColors          int
	SubcategoryNameMax int
	MaxImageSize       int64
	AllowedImageTypes  []string
}

var hexColorRE = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// IsHexColor reports whether s is a #RRGGBB color.
func IsHexColor(s string) bool {
	return hexColorRE.MatchString(s)
}

// Validator checks inputs locally before any request is made.
type Validator struct {
	v      *validator.Validate
	limits Limits
}

// NewValidator creates a Validator enforcing limits.
func NewValidator(limits Limits) *Validator {
	v := validator.New()
	_ = v.RegisterValidation("hexrgb", func(fl validator.FieldLevel) bool {
		return IsHexColor(fl.Field().String())
	})
	return &Validator{v: v, limits: limits}
}

// fieldMessages maps "<Struct>.<Field>" to the message for a failed rule.
var fieldMessages = map[string]string{
	"CategoryInput.Name":          MsgCategoryNameRequired,
	"CategoryInput.Description":   MsgCategoryDescRequired,
	"SubcategoryInput.Name":       MsgSubcategoryNameRequired,
	"SubcategoryInput.CategoryID": MsgCategoryRequired,
	"ProductInput.Name":           MsgProductNameRequired,
	"ProductInput.Description":    MsgProductDescRequired,
	"ProductInput.CategoryID":     MsgCategoryRequired,
	"Credentials.Username":        MsgUsernameRequired,
	"Credentials.Password":        MsgPasswordRequired,
}

// tagMessages overrides fieldMessages for a specific rule.
var tagMessages = map[string]string{
	"Credentials.Username.min": MsgUsernameTooShort,
	"Credentials.Password.min": MsgPasswordTooShort,
}

// structErr converts the first validator failure into a ValidationError.
func (v *Validator) structErr(s any) error {
	err := v.v.Struct(s)
	if err == nil {
		return nil
	}
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) || len(errs) == 0 {
		return invalid("", err.Error())
	}
	fe := errs[0]
	if msg, ok := tagMessages[fe.Namespace()+"."+fe.Tag()]; ok {
		return invalid(fe.Field(), msg)
	}
	if msg, ok := fieldMessages[fe.Namespace()]; ok {
		return invalid(fe.Field(), msg)
	}
	return invalid(fe.Field(), fmt.Sprintf("%s is invalid", fe.Field()))
}

// Category validates a category. img may be nil; creating requires it.
func (v *Validator) Category(in CategoryInput, img *ImageMeta, creating bool) error {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	if err := v.structErr(in); err != nil {
		return err
	}
	return v.imageRule(img, creating, MsgCategoryImageRequired)
}

// Credentials validates a login attempt. The username is trimmed; the
// password is checked as typed.
func (v *Validator) Credentials(in Credentials) error {
	in.Username = strings.TrimSpace(in.Username)
	return v.structErr(in)
}

// Subcategory validates a subcategory.
func (v *Validator) Subcategory(in SubcategoryInput) error {
	in.Name = strings.TrimSpace(in.Name)
	if err := v.structErr(in); err != nil {
		return err
	}
	if v.limits.SubcategoryNameMax > 0 {
		if err := v.v.Var(in.Name, fmt.Sprintf("max=%d", v.limits.SubcategoryNameMax)); err != nil {
			return invalid("Name", MsgSubcategoryNameTooLong)
		}
	}
	return nil
}

// Product validates a product. img may be nil; creating requires it.
func (v *Validator) Product(in ProductInput, img *ImageMeta, creating bool) error {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	if err := v.structErr(in); err != nil {
		return err
	}
	if !in.Price.IsPositive() {
		return invalid("Price", MsgProductPriceRequired)
	}
	if in.DiscountPrice != nil && in.DiscountPrice.IsPositive() && !in.DiscountPrice.LessThan(in.Price) {
		return invalid("DiscountPrice", MsgDiscountNotBelowPrice)
	}
	if err := v.imageRule(img, creating, MsgProductImageRequired); err != nil {
		return err
	}
	switch in.Type {
	case TypeStatic, "":
		return nil
	case TypeMultiColor:
		return v.colors(in.Colors)
	default:
		return invalid("Type", MsgProductTypeRequired)
	}
}

func (v *Validator) colors(colors []Color) error {
	if len(colors) == 0 {
		return invalid("Colors", MsgColorsRequired)
	}
	if v.limits.MaxColors > 0 && len(colors) > v.limits.MaxColors {
		return invalid("Colors", MsgTooManyColors)
	}
	seen := make(map[string]bool, len(colors))
	for _, c := range colors {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return invalid("Colors", MsgColorNameRequired)
		}
		if strings.TrimSpace(c.Hex) == "" {
			return invalid("Colors", MsgColorHexRequired)
		}
		if err := v.v.Var(c.Hex, "hexrgb"); err != nil {
			return invalid("Colors", MsgColorHexInvalid)
		}
		key := strings.ToLower(name)
		if seen[key] {
			return invalid("Colors", MsgColorDuplicateName)
		}
		seen[key] = true
	}
	return nil
}

func (v *Validator) imageRule(img *ImageMeta, creating bool, requiredMsg string) error {
	if img == nil {
		if creating {
			return invalid("Image", requiredMsg)
		}
		return nil
	}
	return v.Image(*img)
}

// Image checks the image size and MIME type against the configured limits.
func (v *Validator) Image(img ImageMeta) error {
	if v.limits.MaxImageSize > 0 && img.Size > v.limits.MaxImageSize {
		return invalid("Image", MsgImageTooLarge)
	}
	if len(v.limits.AllowedImageTypes) > 0 && !slices.Contains(v.limits.AllowedImageTypes, strings.ToLower(img.ContentType)) {
		return invalid("Image", MsgImageBadType)
	}
	return nil
}

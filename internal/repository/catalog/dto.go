package catalog

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/kailas-cloud/shoprec/internal/domain"
	"github.com/kailas-cloud/shoprec/internal/domain/interaction"
	"github.com/kailas-cloud/shoprec/internal/domain/product"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// report column names instead of Go field names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("db"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// interactionRow is one row of the interactions union query.
type interactionRow struct {
	UserID    string `db:"user_id" validate:"required,max=128"`
	ProductID string `db:"product_id" validate:"required,max=128"`
	Kind      string `db:"kind" validate:"required,oneof=order wishlist view"`
}

// toRecord validates the row and converts it to a domain record.
func (r *interactionRow) toRecord() (interaction.Record, error) {
	if err := validate.Struct(r); err != nil {
		return interaction.Record{}, malformed(err)
	}
	kind, err := interaction.ParseKind(r.Kind)
	if err != nil {
		return interaction.Record{}, domain.NewMalformedRecord("kind", err.Error())
	}
	return interaction.Record{UserID: r.UserID, ProductID: r.ProductID, Kind: kind}, nil
}

// productRow is one row of the products table.
type productRow struct {
	ID         string   `db:"id" validate:"required,max=128"`
	Name       string   `db:"name"`
	Category   string   `db:"category"`
	ImageURL   string   `db:"image_url"`
	PriceCents int64    `db:"price_cents" validate:"gte=0"`
	CreatedAt  timeScan `db:"created_at"`
}

func (r *productRow) dest() []any {
	return []any{&r.ID, &r.Name, &r.Category, &r.ImageURL, &r.PriceCents, &r.CreatedAt}
}

func (r *productRow) toProduct() (product.Product, error) {
	if err := validate.Struct(r); err != nil {
		return product.Product{}, malformed(err)
	}
	return product.Product{
		ID:         r.ID,
		Name:       r.Name,
		Category:   r.Category,
		ImageURL:   r.ImageURL,
		PriceCents: r.PriceCents,
		CreatedAt:  r.CreatedAt.Time,
	}, nil
}

func malformed(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return domain.NewMalformedRecord(fe.Field(), fmt.Sprintf("failed %q check", fe.Tag()))
	}
	return domain.NewMalformedRecord("row", err.Error())
}

// timeScan accepts the timestamp representations the supported drivers
// return: time.Time from lib/pq, text or unix seconds from sqlite.
type timeScan struct {
	Time time.Time
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func (t *timeScan) Scan(v any) error {
	switch x := v.(type) {
	case nil:
		t.Time = time.Time{}
		return nil
	case time.Time:
		t.Time = x.UTC()
		return nil
	case int64:
		t.Time = time.Unix(x, 0).UTC()
		return nil
	case []byte:
		return t.parse(string(x))
	case string:
		return t.parse(x)
	default:
		return fmt.Errorf("unsupported timestamp type %T", v)
	}
}

func (t *timeScan) parse(s string) error {
	for _, layout := range timeLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			t.Time = ts.UTC()
			return nil
		}
	}
	return fmt.Errorf("unparseable timestamp %q", s)
}

// Package catalog holds the static, read-only product list.
package catalog

import (
	"errors"
	"fmt"

	"storefront/internal/models"

	"github.com/shopspring/decimal"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrInvalidVariant  = errors.New("invalid product variant")
)

// CategoryAll selects every product
const CategoryAll = "all"

var standardSizes = []string{"S", "M", "L", "XL", "2XL"}

var price = decimal.RequireFromString("35.00")

var products = []models.Product{
	{
		ID:          "flying-birds",
		Name:        "Flying Birds",
		Slug:        "flying-birds",
		Price:       price,
		Description: "Three birds in eternal flight, connected by circles of cosmic energy. A meditation on freedom and connection.",
		Images:      map[string]string{"natural": "/images/products/image(7).png"},
		Sizes:       standardSizes,
		Colors:      []string{"Natural"},
		Category:    "collection",
	},
	{
		ID:          "bloom-creature",
		Name:        "Bloom Creature",
		Slug:        "bloom-creature",
		Price:       price,
		Description: "A whimsical guardian emerging from its shell, reaching for a single flower. Growth meets wonder.",
		Images: map[string]string{
			"natural": "/images/products/image(4).png",
			"black":   "/images/products/image(6).png",
		},
		Sizes:    standardSizes,
		Colors:   []string{"Natural", "Black"},
		Category: "collection",
	},
	{
		ID:          "the-other-cat-blue",
		Name:        "The Other Cat",
		Slug:        "the-other-cat-blue",
		Price:       price,
		Description: "An all-knowing cat living between a riddle and a dream. The blue-striped visionary from Joe's early notebook.",
		Images:      map[string]string{"natural": "/images/products/image(10).png"},
		Sizes:       standardSizes,
		Colors:      []string{"Natural"},
		Category:    "collection",
	},
	{
		ID:          "the-other-cat-spotted",
		Name:        "The Other Cat - Spotted",
		Slug:        "the-other-cat-spotted",
		Price:       price,
		Description: "The spotted guardian of imagination. A playful creature that watches over creative souls.",
		Images:      map[string]string{"white": "/images/products/image(1).png"},
		Sizes:       standardSizes,
		Colors:      []string{"White"},
		Category:    "collection",
	},
	{
		ID:          "infinite-eyes",
		Name:        "Infinite Eyes",
		Slug:        "infinite-eyes",
		Price:       price,
		Description: "Eyes that see with love, circling forever in overlapping spheres of perception.",
		Images:      map[string]string{"natural": "/images/products/image(5).png"},
		Sizes:       standardSizes,
		Colors:      []string{"Natural"},
		Category:    "collection",
	},
	{
		ID:          "messenger-bird",
		Name:        "Messenger Bird",
		Slug:        "messenger-bird",
		Price:       price,
		Description: "A cosmic messenger speaking in symbols, transmitting wisdom from beyond the ordinary.",
		Images:      map[string]string{"natural": "/images/products/image(2).png"},
		Sizes:       standardSizes,
		Colors:      []string{"Natural"},
		Category:    "collection",
	},
	{
		ID:          "bird-of-prey",
		Name:        "Bird of Prey",
		Slug:        "bird-of-prey",
		Price:       price,
		Description: "A bird perched between worlds, carrying the weight of perception and the lightness of flight.",
		Images:      map[string]string{"natural": "/images/products/image(9).png"},
		Sizes:       standardSizes,
		Colors:      []string{"Natural"},
		Category:    "collection",
	},
	{
		ID:          "cosmic-star",
		Name:        "Cosmic Star",
		Slug:        "cosmic-star",
		Price:       price,
		Description: "A simple star radiating cosmic energy. Minimal line work, maximum impact.",
		Images:      map[string]string{"natural": "/images/products/image.png"},
		Sizes:       standardSizes,
		Colors:      []string{"Natural"},
		Category:    "collection",
	},
	{
		ID:          "abstract-mind",
		Name:        "Abstract Mind",
		Slug:        "abstract-mind",
		Price:       price,
		Description: "Fragments of thought, scattered across the canvas of consciousness. Joe's exploration of the inner landscape.",
		Images:      map[string]string{"natural": "/images/products/image(3).png"},
		Sizes:       standardSizes,
		Colors:      []string{"Natural"},
		Category:    "collection",
	},
	{
		ID:          "cosmic-forms",
		Name:        "Cosmic Forms",
		Slug:        "cosmic-forms",
		Price:       price,
		Description: "Abstract shapes dancing in cosmic space. Forms that exist between the seen and the imagined.",
		Images:      map[string]string{"natural": "/images/products/image(8).png"},
		Sizes:       standardSizes,
		Colors:      []string{"Natural"},
		Category:    "collection",
	},
}

// Products returns every product in listing order
func Products() []models.Product {
	out := make([]models.Product, len(products))
	copy(out, products)
	return out
}

// BySlug retrieves a product by its URL slug
func BySlug(slug string) (models.Product, error) {
	for _, p := range products {
		if p.Slug == slug {
			return p, nil
		}
	}
	return models.Product{}, fmt.Errorf("%w: %s", ErrProductNotFound, slug)
}

// ByID retrieves a product by its identifier
func ByID(id string) (models.Product, error) {
	for _, p := range products {
		if p.ID == id {
			return p, nil
		}
	}
	return models.Product{}, fmt.Errorf("%w: %s", ErrProductNotFound, id)
}

// ByCategory filters products; CategoryAll returns the full list
func ByCategory(category string) []models.Product {
	if category == CategoryAll {
		return Products()
	}
	var out []models.Product
	for _, p := range products {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out
}

// ImageFor picks the image for a color, falling back to any other color the
// product is photographed in.
func ImageFor(p models.Product, color string) string {
	var order []string
	switch color {
	case "Black":
		order = []string{"black", "natural", "white"}
	case "White":
		order = []string{"white", "natural", "black"}
	default:
		order = []string{"natural", "black", "white"}
	}
	for _, k := range order {
		if img := p.Images[k]; img != "" {
			return img
		}
	}
	return ""
}

// NewLine builds a cart line for a product variant
func NewLine(p models.Product, size, color string, quantity int) (models.CartLine, error) {
	if !contains(p.Sizes, size) {
		return models.CartLine{}, fmt.Errorf("%w: size %q not offered for %s", ErrInvalidVariant, size, p.ID)
	}
	if !contains(p.Colors, color) {
		return models.CartLine{}, fmt.Errorf("%w: color %q not offered for %s", ErrInvalidVariant, color, p.ID)
	}
	if quantity < 1 {
		return models.CartLine{}, fmt.Errorf("%w: quantity must be > 0", ErrInvalidVariant)
	}
	return models.CartLine{
		ProductID: p.ID,
		Name:      p.Name,
		UnitPrice: p.Price,
		ImageRef:  ImageFor(p, color),
		Size:      size,
		Color:     color,
		Quantity:  quantity,
	}, nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

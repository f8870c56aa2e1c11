package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/smileynet/storefront/internal/catalog"
)

func categoryDetail(c catalog.Category, subs []catalog.Subcategory) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s\n", titleText.Render(c.Name), ActiveBadge(c.Active))
	fmt.Fprintf(&b, "%s\n\n", mutedText.Render(fmt.Sprintf("#%d", c.ID)))
	if c.Description != "" {
		b.WriteString(c.Description + "\n\n")
	}
	if c.ImageURL != "" {
		fmt.Fprintf(&b, "Image: %s\n", c.ImageURL)
	}
	if len(subs) > 0 {
		b.WriteString("\nSubcategories:\n")
		for _, s := range subs {
			fmt.Fprintf(&b, "  • %s\n", s.Name)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func subcategoryDetail(s catalog.Subcategory) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", titleText.Render(s.Name))
	fmt.Fprintf(&b, "%s\n\n", mutedText.Render(fmt.Sprintf("#%d", s.ID)))
	cat := s.CategoryName
	if cat == "" {
		cat = fmt.Sprintf("#%d", s.CategoryID)
	}
	fmt.Fprintf(&b, "Category: %s", cat)
	return b.String()
}

func productDetail(p catalog.Product) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s\n", titleText.Render(p.Name), ActiveBadge(p.Active))
	fmt.Fprintf(&b, "%s\n\n", mutedText.Render(fmt.Sprintf("#%d  %s", p.ID, p.Type.Label())))

	if p.HasDiscount() {
		fmt.Fprintf(&b, "Price: %s  %s\n",
			catalog.FormatBRL(*p.DiscountPrice),
			mutedText.Strikethrough(true).Render(catalog.FormatBRL(p.Price)))
	} else {
		fmt.Fprintf(&b, "Price: %s\n", catalog.FormatBRL(p.Price))
	}
	cat := p.CategoryName
	if p.SubcategoryName != "" {
		cat += " › " + p.SubcategoryName
	}
	fmt.Fprintf(&b, "Category: %s\n", cat)

	if p.Description != "" {
		b.WriteString("\n" + p.Description + "\n")
	}
	if p.CompleteDescription != "" && p.CompleteDescription != p.Description {
		b.WriteString("\n" + p.CompleteDescription + "\n")
	}
	if colors := p.ColorList(); len(colors) > 0 {
		b.WriteString("\nColors:\n")
		for _, c := range colors {
			swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(c.Hex)).Render("■")
			fmt.Fprintf(&b, "  %s %s %s\n", swatch, c.Name, mutedText.Render(c.Hex))
		}
	}
	if len(p.Ingredients) > 0 {
		fmt.Fprintf(&b, "\nIngredients: %s\n", strings.Join(p.Ingredients, ", "))
	}
	if p.HowToUse != "" {
		fmt.Fprintf(&b, "\nHow to use: %s\n", p.HowToUse)
	}
	if len(p.Tags) > 0 {
		fmt.Fprintf(&b, "\nTags: %s\n", strings.Join(p.Tags, ", "))
	}
	return strings.TrimRight(b.String(), "\n")
}

func categoryStatsView(s catalog.CategoryStats) string {
	return fmt.Sprintf("%d categories · %d active · %d inactive", s.Total, s.Active, s.Inactive)
}

func productStatsView(s catalog.ProductStats) string {
	return fmt.Sprintf("%d products · %d active · %d on sale · avg %s",
		s.Total, s.Active, s.WithDiscount, catalog.FormatBRL(s.AveragePrice))
}

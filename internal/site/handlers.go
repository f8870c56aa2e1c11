package site

import (
	"context"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/smileynet/storefront/internal/catalog"
)

var activeOnly = catalog.Filter{Status: catalog.StatusActive}

// pathID parses the :id route parameter. Anything but a positive integer is
// a 404, never a 500.
func pathID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusNotFound, "This page does not exist.")
	}
	return id, nil
}

func unavailable(msg string) error {
	return fiber.NewError(fiber.StatusBadGateway, msg)
}

func (s *Server) home(c *fiber.Ctx) error {
	ctx := requestContext(c)
	if res := s.cats.Fetch(ctx, false); !res.Success {
		return unavailable(res.Error)
	}
	return render(c, "home", fiber.Map{
		"Title":      "Categories",
		"Categories": s.cats.Filtered(activeOnly),
	})
}

// findCategory returns an active category, loading the list if needed.
func (s *Server) findCategory(ctx context.Context, id int64) (catalog.Category, error) {
	if res := s.cats.Fetch(ctx, false); !res.Success {
		return catalog.Category{}, unavailable(res.Error)
	}
	cat, ok := s.cats.Get(id)
	if !ok || !cat.Active {
		return catalog.Category{}, fiber.NewError(fiber.StatusNotFound, "This category is no longer available.")
	}
	return cat, nil
}

func (s *Server) category(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	ctx := requestContext(c)
	cat, err := s.findCategory(ctx, id)
	if err != nil {
		return err
	}
	if res := s.products.FetchCategory(ctx, id, false); !res.Success {
		return unavailable(res.Error)
	}
	// Subcategory chips are optional; a failure only hides them.
	var subs []catalog.Subcategory
	if res := s.subs.FetchFor(ctx, id, false); res.Success {
		subs = s.subs.ItemsFor(id)
	}

	items := catalog.FilterProducts(s.products.ItemsIn(id), activeOnly)
	sub := int64(c.QueryInt("sub"))
	if sub > 0 {
		items = catalog.InSubcategory(items, sub)
	}
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	pageItems, pages := catalog.Paginate(items, page, s.pageSize)

	return render(c, "category", fiber.Map{
		"Title":         cat.Name,
		"Category":      cat,
		"Subcategories": subs,
		"Sub":           sub,
		"Products":      pageItems,
		"Page":          page,
		"Pages":         pages,
	})
}

func (s *Server) product(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	ctx := requestContext(c)
	p, res := s.products.Find(ctx, id)
	if !res.Success || !p.Active {
		return fiber.NewError(fiber.StatusNotFound, "This product is no longer available.")
	}

	var related []catalog.Product
	if res := s.products.FetchCategory(ctx, p.CategoryID, false); res.Success {
		for _, other := range catalog.FilterProducts(s.products.ItemsIn(p.CategoryID), activeOnly) {
			if other.ID == p.ID {
				continue
			}
			related = append(related, other)
			if len(related) == RelatedLimit {
				break
			}
		}
	}

	return render(c, "product", fiber.Map{
		"Title":   p.Name,
		"Product": p,
		"Related": related,
	})
}

// healthz reports the site as up, along with the last backend check when a
// checker is configured.
func (s *Server) healthz(c *fiber.Ctx) error {
	body := fiber.Map{"status": "UP"}
	if s.health != nil {
		ctx, cancel := context.WithTimeout(requestContext(c), healthTimeout)
		defer cancel()
		st, err := s.health.Check(ctx)
		switch {
		case err != nil:
			body["backend"] = "DOWN"
		case st.Up():
			body["backend"] = "UP"
		default:
			body["backend"] = "DOWN"
		}
	}
	return c.JSON(body)
}

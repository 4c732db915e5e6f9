package catalog

import (
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
)

// Controller serves the catalog browsing API.
type Controller struct {
	client *Client
	repo   RandomCocktails
	worker *RefreshWorker
	logger Logger
}

func NewController(client *Client, repo RandomCocktails, worker *RefreshWorker) *Controller {
	return &Controller{
		client: client,
		repo:   repo,
		worker: worker,
		logger: noopLogger{},
	}
}

func (c *Controller) WithLogger(l Logger) *Controller {
	if l != nil {
		c.logger = l
	}
	return c
}

// RegisterRoutes mounts the catalog endpoints. Every browse endpoint sits
// behind the protected middleware so the live revocation check runs on each
// request; refresh additionally requires the elevated claim.
func RegisterRoutes[T any](app router.Router[T], c *Controller, protected, admin router.MiddlewareFunc) {
	guard := func(h router.HandlerFunc) router.HandlerFunc {
		if protected == nil {
			return h
		}
		return protected(h)
	}

	app.Get("/cocktails/alcohol-types", guard(c.AlcoholTypes)).
		SetName("cocktails.alcohol-types")
	app.Get("/cocktails/by-alcohol-type", guard(c.ByAlcoholType)).
		SetName("cocktails.by-alcohol-type")
	app.Get("/cocktails/categories", guard(c.Categories)).
		SetName("cocktails.categories")
	app.Get("/cocktails/by-category", guard(c.ByCategory)).
		SetName("cocktails.by-category")
	app.Get("/cocktails/glasses", guard(c.Glasses)).
		SetName("cocktails.glasses")
	app.Get("/cocktails/by-glass", guard(c.ByGlass)).
		SetName("cocktails.by-glass")
	app.Get("/cocktails/ingredients", guard(c.Ingredients)).
		SetName("cocktails.ingredients")
	app.Get("/cocktails/ingredients/:id", guard(c.IngredientByID)).
		SetName("cocktails.ingredients.by-id")
	app.Get("/cocktails/ingredient-by-name", guard(c.IngredientByName)).
		SetName("cocktails.ingredient-by-name")
	app.Get("/cocktails/random/row", guard(c.RandomRow)).
		SetName("cocktails.random.row")
	app.Get("/cocktails/:id", guard(c.ByID)).
		SetName("cocktails.by-id")

	refresh := router.HandlerFunc(c.RefreshRandomNow)
	if admin != nil {
		refresh = admin(refresh)
	} else {
		refresh = guard(refresh)
	}
	app.Post("/cocktails/random/refresh-now", refresh).
		SetName("cocktails.random.refresh")
}

func (c *Controller) AlcoholTypes(ctx router.Context) error {
	out, err := c.client.AlcoholTypes(ctx.Context())
	if err != nil {
		return c.upstreamError(ctx, err)
	}
	return ctx.JSON(router.StatusOK, out)
}

func (c *Controller) ByAlcoholType(ctx router.Context) error {
	alcoholType := ctx.Query("type", "")
	if alcoholType == "" {
		return c.missingParam(ctx, "type")
	}

	out, err := c.client.ByAlcoholType(ctx.Context(), alcoholType)
	if err != nil {
		return c.upstreamError(ctx, err)
	}
	return ctx.JSON(router.StatusOK, out)
}

func (c *Controller) Categories(ctx router.Context) error {
	out, err := c.client.Categories(ctx.Context())
	if err != nil {
		return c.upstreamError(ctx, err)
	}
	return ctx.JSON(router.StatusOK, out)
}

func (c *Controller) ByCategory(ctx router.Context) error {
	category := ctx.Query("category", "")
	if category == "" {
		return c.missingParam(ctx, "category")
	}

	out, err := c.client.ByCategory(ctx.Context(), category)
	if err != nil {
		return c.upstreamError(ctx, err)
	}
	return ctx.JSON(router.StatusOK, out)
}

func (c *Controller) Glasses(ctx router.Context) error {
	out, err := c.client.Glasses(ctx.Context())
	if err != nil {
		return c.upstreamError(ctx, err)
	}
	return ctx.JSON(router.StatusOK, out)
}

func (c *Controller) ByGlass(ctx router.Context) error {
	glass := ctx.Query("glass", "")
	if glass == "" {
		return c.missingParam(ctx, "glass")
	}

	out, err := c.client.ByGlass(ctx.Context(), glass)
	if err != nil {
		return c.upstreamError(ctx, err)
	}
	return ctx.JSON(router.StatusOK, out)
}

func (c *Controller) Ingredients(ctx router.Context) error {
	out, err := c.client.Ingredients(ctx.Context())
	if err != nil {
		return c.upstreamError(ctx, err)
	}
	return ctx.JSON(router.StatusOK, out)
}

func (c *Controller) IngredientByID(ctx router.Context) error {
	out, err := c.client.IngredientByID(ctx.Context(), ctx.Param("id"))
	if err != nil {
		return c.upstreamError(ctx, err)
	}
	if out == nil {
		return c.notFound(ctx)
	}
	return ctx.JSON(router.StatusOK, out)
}

func (c *Controller) IngredientByName(ctx router.Context) error {
	name := ctx.Query("name", "")
	if name == "" {
		return c.missingParam(ctx, "name")
	}

	out, err := c.client.IngredientByName(ctx.Context(), name)
	if err != nil {
		return c.upstreamError(ctx, err)
	}
	if out == nil {
		return c.notFound(ctx)
	}
	return ctx.JSON(router.StatusOK, out)
}

func (c *Controller) ByID(ctx router.Context) error {
	out, err := c.client.ByID(ctx.Context(), ctx.Param("id"))
	if err != nil {
		return c.upstreamError(ctx, err)
	}
	if out == nil {
		return c.notFound(ctx)
	}
	return ctx.JSON(router.StatusOK, out)
}

// RandomRow serves the cached row; it never calls upstream.
func (c *Controller) RandomRow(ctx router.Context) error {
	record, err := c.repo.Current(ctx.Context())
	if err != nil {
		if errors.IsNotFound(err) {
			return c.notFound(ctx)
		}
		c.logger.Error("failed to read cached random cocktail: %s", err)
		return ctx.JSON(router.StatusInternalServerError, map[string]any{
			"error": "internal server error",
		})
	}
	return ctx.JSON(router.StatusOK, record.toRow())
}

// RefreshRandomNow forces a refresh outside the schedule.
func (c *Controller) RefreshRandomNow(ctx router.Context) error {
	row := c.worker.RefreshNow(ctx.Context())
	if row == nil {
		return ctx.JSON(router.StatusServiceUnavailable, map[string]any{
			"error": "refresh did not produce a result",
		})
	}
	return ctx.JSON(router.StatusOK, row)
}

func (c *Controller) missingParam(ctx router.Context, name string) error {
	return ctx.JSON(router.StatusBadRequest, map[string]any{
		"error": "missing required query parameter: " + name,
	})
}

func (c *Controller) notFound(ctx router.Context) error {
	return ctx.JSON(router.StatusNotFound, map[string]any{
		"error": "not found",
	})
}

func (c *Controller) upstreamError(ctx router.Context, err error) error {
	c.logger.Error("catalog upstream error: %s", err)
	return ctx.JSON(router.StatusBadGateway, map[string]any{
		"error": "catalog upstream error",
	})
}

package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/goliatone/go-errors"
)

// DefaultBaseURL is the public v1 endpoint of TheCocktailDB.
const DefaultBaseURL = "https://www.thecocktaildb.com/api/json/v1/1"

// Logger matches the auth package logger so both share implementations.
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Client fetches drink data from the upstream catalog API.
type Client struct {
	baseURL string
	http    *http.Client
	logger  Logger
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// NewClient builds a catalog client against baseURL. Pass an empty string to
// use the public endpoint.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	c := &Client{
		baseURL: baseURL,
		http: &http.Client{
			Timeout: 15 * time.Second,
		},
		logger: noopLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	return c
}

type ClientOption func(*Client)

func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

func WithLogger(l Logger) ClientOption {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// AlcoholTypes returns the alcoholic filter list.
func (c *Client) AlcoholTypes(ctx context.Context) ([]AlcoholType, error) {
	var out alcoholTypeListResponse
	if err := c.get(ctx, "list.php", url.Values{"a": {"list"}}, &out); err != nil {
		return nil, err
	}
	return out.Drinks, nil
}

// ByAlcoholType filters drinks by alcohol type.
func (c *Client) ByAlcoholType(ctx context.Context, alcoholType string) ([]CocktailItem, error) {
	var out cocktailItemListResponse
	if err := c.get(ctx, "filter.php", url.Values{"a": {alcoholType}}, &out); err != nil {
		return nil, err
	}
	return out.Drinks, nil
}

// Categories returns the category filter list.
func (c *Client) Categories(ctx context.Context) ([]Category, error) {
	var out categoryListResponse
	if err := c.get(ctx, "list.php", url.Values{"c": {"list"}}, &out); err != nil {
		return nil, err
	}
	return out.Drinks, nil
}

// ByCategory filters drinks by category.
func (c *Client) ByCategory(ctx context.Context, category string) ([]CocktailItem, error) {
	var out cocktailItemListResponse
	if err := c.get(ctx, "filter.php", url.Values{"c": {category}}, &out); err != nil {
		return nil, err
	}
	return out.Drinks, nil
}

// Glasses returns the glass filter list.
func (c *Client) Glasses(ctx context.Context) ([]Glass, error) {
	var out glassListResponse
	if err := c.get(ctx, "list.php", url.Values{"g": {"list"}}, &out); err != nil {
		return nil, err
	}
	return out.Drinks, nil
}

// ByGlass filters drinks by glass type.
func (c *Client) ByGlass(ctx context.Context, glass string) ([]CocktailItem, error) {
	var out cocktailItemListResponse
	if err := c.get(ctx, "filter.php", url.Values{"g": {glass}}, &out); err != nil {
		return nil, err
	}
	return out.Drinks, nil
}

// Ingredients returns the ingredient list.
func (c *Client) Ingredients(ctx context.Context) ([]IngredientSummary, error) {
	var out ingredientSummaryListResponse
	if err := c.get(ctx, "list.php", url.Values{"i": {"list"}}, &out); err != nil {
		return nil, err
	}
	return out.Drinks, nil
}

// IngredientByID looks up one ingredient by its numeric id.
func (c *Client) IngredientByID(ctx context.Context, id string) (*IngredientDetail, error) {
	var out ingredientLookupResponse
	if err := c.get(ctx, "lookup.php", url.Values{"iid": {id}}, &out); err != nil {
		return nil, err
	}
	if len(out.Ingredients) == 0 {
		return nil, nil
	}
	return &out.Ingredients[0], nil
}

// IngredientByName searches one ingredient by name.
func (c *Client) IngredientByName(ctx context.Context, name string) (*IngredientDetail, error) {
	var out ingredientLookupResponse
	if err := c.get(ctx, "search.php", url.Values{"i": {name}}, &out); err != nil {
		return nil, err
	}
	if len(out.Ingredients) == 0 {
		return nil, nil
	}
	return &out.Ingredients[0], nil
}

// ByID looks up one drink and flattens its recipe.
func (c *Client) ByID(ctx context.Context, id string) (*CocktailDetail, error) {
	raw, err := c.firstDrink(ctx, "lookup.php", url.Values{"i": {id}})
	if err != nil || raw == nil {
		return nil, err
	}
	return raw.toDetail(), nil
}

// Random returns one random drink with its full recipe.
func (c *Client) Random(ctx context.Context) (*CocktailDetail, error) {
	raw, err := c.firstDrink(ctx, "random.php", nil)
	if err != nil || raw == nil {
		return nil, err
	}
	return raw.toDetail(), nil
}

// RandomLite returns the thin projection of one random drink.
func (c *Client) RandomLite(ctx context.Context) (*RandomCocktailRow, error) {
	raw, err := c.firstDrink(ctx, "random.php", nil)
	if err != nil || raw == nil {
		return nil, err
	}
	return raw.toRandomRow(), nil
}

func (c *Client) firstDrink(ctx context.Context, path string, query url.Values) (*rawDrink, error) {
	var out drinkListResponse
	if err := c.get(ctx, path, query, &out); err != nil {
		return nil, err
	}
	if len(out.Drinks) == 0 {
		return nil, nil
	}
	return &out.Drinks[0], nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	endpoint := fmt.Sprintf("%s/%s", c.baseURL, path)
	if len(query) > 0 {
		endpoint = fmt.Sprintf("%s?%s", endpoint, query.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to build catalog request")
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return errors.Wrap(err, errors.CategoryOperation, "catalog request failed").
			WithMetadata(map[string]any{"path": path})
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return errors.Wrap(err, errors.CategoryOperation, "failed to read catalog response")
	}

	if res.StatusCode != http.StatusOK {
		c.logger.Error("catalog API returned %d for %s", res.StatusCode, path)
		return errors.New("catalog API returned an error", errors.CategoryOperation).
			WithTextCode("CATALOG_UPSTREAM_ERROR").
			WithMetadata(map[string]any{
				"status": res.StatusCode,
				"path":   path,
			})
	}

	if err := json.Unmarshal(body, out); err != nil {
		return errors.Wrap(err, errors.CategoryOperation, "failed to decode catalog response")
	}

	return nil
}

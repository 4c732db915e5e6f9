package catalog_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Isra8Rubio/CocktailDockerizado/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFakeUpstream(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/list.php", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.URL.Query().Get("a") == "list":
			w.Write([]byte(`{"drinks":[{"strAlcoholic":"Alcoholic"},{"strAlcoholic":"Non alcoholic"}]}`))
		case r.URL.Query().Get("c") == "list":
			w.Write([]byte(`{"drinks":[{"strCategory":"Ordinary Drink"},{"strCategory":"Shot"}]}`))
		case r.URL.Query().Get("g") == "list":
			w.Write([]byte(`{"drinks":[{"strGlass":"Cocktail glass"}]}`))
		case r.URL.Query().Get("i") == "list":
			w.Write([]byte(`{"drinks":[{"strIngredient1":"Vodka"},{"strIngredient1":"Gin"}]}`))
		default:
			w.Write([]byte(`{"drinks":null}`))
		}
	})
	mux.HandleFunc("/filter.php", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("a") == "Alcoholic" {
			w.Write([]byte(`{"drinks":[{"idDrink":"11007","strDrink":"Margarita","strDrinkThumb":"https://example.com/m.jpg"}]}`))
			return
		}
		w.Write([]byte(`{"drinks":null}`))
	})
	mux.HandleFunc("/lookup.php", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.URL.Query().Get("i") == "11007":
			w.Write([]byte(`{"drinks":[{"idDrink":"11007","strDrink":"Margarita","strIngredient1":"Tequila","strMeasure1":"1 1/2 oz "}]}`))
		case r.URL.Query().Get("iid") == "552":
			w.Write([]byte(`{"ingredients":[{"idIngredient":"552","strIngredient":"Vodka","strType":"Vodka"}]}`))
		default:
			w.Write([]byte(`{"drinks":null}`))
		}
	})
	mux.HandleFunc("/random.php", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"drinks":[{"idDrink":"17222","strDrink":"A1","strDrinkThumb":"https://example.com/a1.jpg"}]}`))
	})
	mux.HandleFunc("/search.php", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ingredients":null}`))
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestClient_Lists(t *testing.T) {
	server := newFakeUpstream(t)
	client := catalog.NewClient(server.URL)
	ctx := context.Background()

	t.Run("alcohol types", func(t *testing.T) {
		types, err := client.AlcoholTypes(ctx)
		require.NoError(t, err)
		require.Len(t, types, 2)
		assert.Equal(t, "Alcoholic", types[0].Name)
	})

	t.Run("categories", func(t *testing.T) {
		categories, err := client.Categories(ctx)
		require.NoError(t, err)
		require.Len(t, categories, 2)
		assert.Equal(t, "Shot", categories[1].Name)
	})

	t.Run("glasses", func(t *testing.T) {
		glasses, err := client.Glasses(ctx)
		require.NoError(t, err)
		require.Len(t, glasses, 1)
	})

	t.Run("ingredients", func(t *testing.T) {
		ingredients, err := client.Ingredients(ctx)
		require.NoError(t, err)
		require.Len(t, ingredients, 2)
		assert.Equal(t, "Vodka", ingredients[0].Name)
	})
}

func TestClient_Filters(t *testing.T) {
	server := newFakeUpstream(t)
	client := catalog.NewClient(server.URL)
	ctx := context.Background()

	t.Run("matching filter returns items", func(t *testing.T) {
		items, err := client.ByAlcoholType(ctx, "Alcoholic")
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "Margarita", items[0].Name)
	})

	t.Run("empty result is nil without error", func(t *testing.T) {
		items, err := client.ByCategory(ctx, "Unknown")
		require.NoError(t, err)
		assert.Nil(t, items)
	})
}

func TestClient_Lookups(t *testing.T) {
	server := newFakeUpstream(t)
	client := catalog.NewClient(server.URL)
	ctx := context.Background()

	t.Run("drink by id flattens the recipe", func(t *testing.T) {
		detail, err := client.ByID(ctx, "11007")
		require.NoError(t, err)
		require.NotNil(t, detail)
		assert.Equal(t, "Margarita", detail.Name)
		require.Len(t, detail.Ingredients, 1)
		assert.Equal(t, "Tequila", detail.Ingredients[0].Name)
	})

	t.Run("unknown drink id returns nil", func(t *testing.T) {
		detail, err := client.ByID(ctx, "99999")
		require.NoError(t, err)
		assert.Nil(t, detail)
	})

	t.Run("ingredient by id", func(t *testing.T) {
		ingredient, err := client.IngredientByID(ctx, "552")
		require.NoError(t, err)
		require.NotNil(t, ingredient)
		assert.Equal(t, "Vodka", ingredient.Name)
	})

	t.Run("ingredient search without match returns nil", func(t *testing.T) {
		ingredient, err := client.IngredientByName(ctx, "Unobtainium")
		require.NoError(t, err)
		assert.Nil(t, ingredient)
	})

	t.Run("random lite keeps the thin projection", func(t *testing.T) {
		row, err := client.RandomLite(ctx)
		require.NoError(t, err)
		require.NotNil(t, row)
		assert.Equal(t, "17222", row.DrinkID)
		assert.Equal(t, "A1", row.Name)
	})
}

func TestClient_UpstreamFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(server.Close)

	client := catalog.NewClient(server.URL)

	_, err := client.Categories(context.Background())
	assert.Error(t, err)
}

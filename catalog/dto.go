package catalog

import "strings"

// AlcoholType is one entry of the alcoholic filter list.
type AlcoholType struct {
	Name string `json:"strAlcoholic"`
}

// Category is one entry of the category filter list.
type Category struct {
	Name string `json:"strCategory"`
}

// Glass is one entry of the glass filter list.
type Glass struct {
	Name string `json:"strGlass"`
}

// IngredientSummary is one entry of the ingredient list.
type IngredientSummary struct {
	Name string `json:"strIngredient1"`
}

// IngredientDetail describes a single ingredient.
type IngredientDetail struct {
	ID          string `json:"idIngredient"`
	Name        string `json:"strIngredient"`
	Type        string `json:"strType"`
	Description string `json:"strDescription"`
}

// CocktailItem is the thin projection returned by filter queries.
type CocktailItem struct {
	ID       string `json:"idDrink"`
	Name     string `json:"strDrink"`
	ThumbURL string `json:"strDrinkThumb"`
}

// Ingredient is a (name, measure) pair of a drink recipe.
type Ingredient struct {
	Name    string `json:"name"`
	Measure string `json:"measure"`
}

// CocktailDetail is the full drink projection with its recipe flattened into
// ordered ingredient pairs.
type CocktailDetail struct {
	ID             string       `json:"idDrink"`
	Name           string       `json:"strDrink"`
	Category       string       `json:"strCategory"`
	Alcoholic      string       `json:"strAlcoholic"`
	Glass          string       `json:"strGlass"`
	Instructions   string       `json:"strInstructions"`
	InstructionsES string       `json:"strInstructionsES"`
	ThumbURL       string       `json:"strDrinkThumb"`
	Ingredients    []Ingredient `json:"ingredients"`
}

// RandomCocktailRow is the lite projection cached by the refresh worker.
type RandomCocktailRow struct {
	DrinkID  string `json:"drink_id"`
	Name     string `json:"name"`
	ThumbURL string `json:"thumb_url"`
}

// rawDrink mirrors the upstream payload. The numbered ingredient and measure
// columns are mapped through explicit field pairs below; the upstream shape
// is flat on purpose and stays contained in this file.
type rawDrink struct {
	IDDrink           string `json:"idDrink"`
	StrDrink          string `json:"strDrink"`
	StrCategory       string `json:"strCategory"`
	StrAlcoholic      string `json:"strAlcoholic"`
	StrGlass          string `json:"strGlass"`
	StrInstructions   string `json:"strInstructions"`
	StrInstructionsES string `json:"strInstructionsES"`
	StrDrinkThumb     string `json:"strDrinkThumb"`

	StrIngredient1  string `json:"strIngredient1"`
	StrIngredient2  string `json:"strIngredient2"`
	StrIngredient3  string `json:"strIngredient3"`
	StrIngredient4  string `json:"strIngredient4"`
	StrIngredient5  string `json:"strIngredient5"`
	StrIngredient6  string `json:"strIngredient6"`
	StrIngredient7  string `json:"strIngredient7"`
	StrIngredient8  string `json:"strIngredient8"`
	StrIngredient9  string `json:"strIngredient9"`
	StrIngredient10 string `json:"strIngredient10"`
	StrIngredient11 string `json:"strIngredient11"`
	StrIngredient12 string `json:"strIngredient12"`
	StrIngredient13 string `json:"strIngredient13"`
	StrIngredient14 string `json:"strIngredient14"`
	StrIngredient15 string `json:"strIngredient15"`

	StrMeasure1  string `json:"strMeasure1"`
	StrMeasure2  string `json:"strMeasure2"`
	StrMeasure3  string `json:"strMeasure3"`
	StrMeasure4  string `json:"strMeasure4"`
	StrMeasure5  string `json:"strMeasure5"`
	StrMeasure6  string `json:"strMeasure6"`
	StrMeasure7  string `json:"strMeasure7"`
	StrMeasure8  string `json:"strMeasure8"`
	StrMeasure9  string `json:"strMeasure9"`
	StrMeasure10 string `json:"strMeasure10"`
	StrMeasure11 string `json:"strMeasure11"`
	StrMeasure12 string `json:"strMeasure12"`
	StrMeasure13 string `json:"strMeasure13"`
	StrMeasure14 string `json:"strMeasure14"`
	StrMeasure15 string `json:"strMeasure15"`
}

// ingredientPairs walks the numbered columns in order through direct field
// access. Blank ingredient slots are skipped; a measure without an ingredient
// is meaningless upstream and dropped with it.
func (d *rawDrink) ingredientPairs() []Ingredient {
	pairs := [...]struct {
		name    string
		measure string
	}{
		{d.StrIngredient1, d.StrMeasure1},
		{d.StrIngredient2, d.StrMeasure2},
		{d.StrIngredient3, d.StrMeasure3},
		{d.StrIngredient4, d.StrMeasure4},
		{d.StrIngredient5, d.StrMeasure5},
		{d.StrIngredient6, d.StrMeasure6},
		{d.StrIngredient7, d.StrMeasure7},
		{d.StrIngredient8, d.StrMeasure8},
		{d.StrIngredient9, d.StrMeasure9},
		{d.StrIngredient10, d.StrMeasure10},
		{d.StrIngredient11, d.StrMeasure11},
		{d.StrIngredient12, d.StrMeasure12},
		{d.StrIngredient13, d.StrMeasure13},
		{d.StrIngredient14, d.StrMeasure14},
		{d.StrIngredient15, d.StrMeasure15},
	}

	out := make([]Ingredient, 0, len(pairs))
	for _, p := range pairs {
		if strings.TrimSpace(p.name) == "" {
			continue
		}
		out = append(out, Ingredient{
			Name:    p.name,
			Measure: p.measure,
		})
	}
	return out
}

func (d *rawDrink) toDetail() *CocktailDetail {
	return &CocktailDetail{
		ID:             d.IDDrink,
		Name:           d.StrDrink,
		Category:       d.StrCategory,
		Alcoholic:      d.StrAlcoholic,
		Glass:          d.StrGlass,
		Instructions:   d.StrInstructions,
		InstructionsES: d.StrInstructionsES,
		ThumbURL:       d.StrDrinkThumb,
		Ingredients:    d.ingredientPairs(),
	}
}

func (d *rawDrink) toRandomRow() *RandomCocktailRow {
	return &RandomCocktailRow{
		DrinkID:  d.IDDrink,
		Name:     d.StrDrink,
		ThumbURL: d.StrDrinkThumb,
	}
}

type drinkListResponse struct {
	Drinks []rawDrink `json:"drinks"`
}

type alcoholTypeListResponse struct {
	Drinks []AlcoholType `json:"drinks"`
}

type categoryListResponse struct {
	Drinks []Category `json:"drinks"`
}

type glassListResponse struct {
	Drinks []Glass `json:"drinks"`
}

type ingredientSummaryListResponse struct {
	Drinks []IngredientSummary `json:"drinks"`
}

type ingredientLookupResponse struct {
	Ingredients []IngredientDetail `json:"ingredients"`
}

type cocktailItemListResponse struct {
	Drinks []CocktailItem `json:"drinks"`
}

package kitchen

import "slices"

type RecipeIngredient struct {
	Type  Ingredient `json:"type"`
	State ItemState  `json:"state"`
}

type Recipe struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Ingredients []RecipeIngredient `json:"ingredients"`
	Points      int                `json:"points"`
	TimeLimit   float64            `json:"timeLimit"` // seconds
}

// Uses reports whether the recipe calls for the ingredient in any state.
func (r Recipe) Uses(t Ingredient) bool {
	return slices.ContainsFunc(r.Ingredients, func(ri RecipeIngredient) bool {
		return ri.Type == t
	})
}

var recipeBook = []Recipe{
	{
		ID:   "sushi_roll",
		Name: "Sushi Roll",
		Ingredients: []RecipeIngredient{
			{Type: Fish, State: Chopped},
			{Type: Rice, State: Cooked},
			{Type: Seaweed, State: Raw},
		},
		Points:    30,
		TimeLimit: 60,
	},
	{
		ID:   "shrimp_nigiri",
		Name: "Shrimp Nigiri",
		Ingredients: []RecipeIngredient{
			{Type: Shrimp, State: Cooked},
			{Type: Rice, State: Cooked},
		},
		Points:    20,
		TimeLimit: 45,
	},
	{
		ID:   "salmon_sashimi",
		Name: "Salmon Sashimi",
		Ingredients: []RecipeIngredient{
			{Type: Salmon, State: Chopped},
		},
		Points:    15,
		TimeLimit: 30,
	},
	{
		ID:   "cucumber_roll",
		Name: "Cucumber Roll",
		Ingredients: []RecipeIngredient{
			{Type: Cucumber, State: Chopped},
			{Type: Rice, State: Cooked},
			{Type: Seaweed, State: Raw},
		},
		Points:    25,
		TimeLimit: 50,
	},
}

// DefaultRecipes returns a copy of the recipe book.
func DefaultRecipes() []Recipe {
	out := make([]Recipe, len(recipeBook))
	for i, r := range recipeBook {
		r.Ingredients = slices.Clone(r.Ingredients)
		out[i] = r
	}
	return out
}

// RecipeByID looks a recipe up in the default book.
func RecipeByID(id string) (Recipe, bool) {
	for _, r := range DefaultRecipes() {
		if r.ID == id {
			return r, true
		}
	}
	return Recipe{}, false
}

// DefaultLayout is the 12x8 kitchen: boxes along the top, boards on the left,
// stoves on the right, an island of counters in the middle and the pass at
// the bottom.
func DefaultLayout() Layout {
	return Layout{
		Width:  12,
		Height: 8,
		Stations: []StationConfig{
			{Type: IngredientBox, Position: Cell{1, 0}, Ingredient: Fish},
			{Type: IngredientBox, Position: Cell{2, 0}, Ingredient: Rice},
			{Type: IngredientBox, Position: Cell{3, 0}, Ingredient: Seaweed},
			{Type: IngredientBox, Position: Cell{4, 0}, Ingredient: Shrimp},
			{Type: IngredientBox, Position: Cell{5, 0}, Ingredient: Salmon},
			{Type: IngredientBox, Position: Cell{6, 0}, Ingredient: Cucumber},

			{Type: CuttingBoard, Position: Cell{0, 2}},
			{Type: CuttingBoard, Position: Cell{0, 3}},

			{Type: Stove, Position: Cell{11, 2}},
			{Type: Stove, Position: Cell{11, 3}},

			{Type: Counter, Position: Cell{4, 3}},
			{Type: Counter, Position: Cell{5, 3}},
			{Type: Counter, Position: Cell{6, 3}},
			{Type: Counter, Position: Cell{7, 3}},
			{Type: Counter, Position: Cell{4, 4}},
			{Type: Counter, Position: Cell{5, 4}},
			{Type: Counter, Position: Cell{6, 4}},
			{Type: Counter, Position: Cell{7, 4}},

			{Type: PlateStation, Position: Cell{9, 5}},
			{Type: PlateStation, Position: Cell{10, 5}},

			{Type: Delivery, Position: Cell{5, 7}},
			{Type: Delivery, Position: Cell{6, 7}},

			{Type: Trash, Position: Cell{0, 7}},
		},
		SpawnPoints: []Point{
			{X: 3, Y: 5},
			{X: 8, Y: 5},
		},
	}
}

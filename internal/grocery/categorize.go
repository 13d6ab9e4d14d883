// Package grocery guesses a reference category for a free-typed item name,
// used by the suggestion endpoint when the item is not in the catalog yet.
package grocery

import "strings"

// Categorize returns the category name for the given item name, or "" when
// nothing matches. Matching is case-insensitive: exact match first, then
// substring match with more specific phrases checked before generic ones.
func Categorize(itemName string) string {
	name := strings.ToLower(strings.TrimSpace(itemName))
	if name == "" {
		return ""
	}

	if cat, ok := exactMatch[name]; ok {
		return cat
	}

	for _, entry := range substringMatches {
		if strings.Contains(name, entry.keyword) {
			return entry.category
		}
	}

	return ""
}

var exactMatch = map[string]string{
	// dairy
	"milk":           "dairy",
	"eggs":           "dairy",
	"butter":         "dairy",
	"cheese":         "dairy",
	"yogurt":         "dairy",
	"cream":          "dairy",
	"sour cream":     "dairy",
	"cream cheese":   "dairy",
	"cottage cheese": "dairy",

	// meat
	"chicken": "meat",
	"beef":    "meat",
	"pork":    "meat",
	"turkey":  "meat",
	"bacon":   "meat",
	"sausage": "meat",
	"lamb":    "meat",

	// fish/seafood
	"salmon":  "fish/seafood",
	"tuna":    "fish/seafood",
	"shrimp":  "fish/seafood",
	"cod":     "fish/seafood",
	"tilapia": "fish/seafood",
	"crab":    "fish/seafood",

	// fruits
	"apples":       "fruits",
	"bananas":      "fruits",
	"oranges":      "fruits",
	"lemons":       "fruits",
	"limes":        "fruits",
	"grapes":       "fruits",
	"strawberries": "fruits",
	"blueberries":  "fruits",
	"watermelon":   "fruits",
	"pineapple":    "fruits",
	"mango":        "fruits",
	"peaches":      "fruits",
	"pears":        "fruits",
	"avocado":      "fruits",
	"avocados":     "fruits",

	// vegetables
	"lettuce":   "vegetables",
	"spinach":   "vegetables",
	"kale":      "vegetables",
	"broccoli":  "vegetables",
	"carrots":   "vegetables",
	"celery":    "vegetables",
	"cucumber":  "vegetables",
	"tomatoes":  "vegetables",
	"potatoes":  "vegetables",
	"onions":    "vegetables",
	"garlic":    "vegetables",
	"peppers":   "vegetables",
	"mushrooms": "vegetables",
	"corn":      "vegetables",
	"zucchini":  "vegetables",
	"asparagus": "vegetables",

	// canned/pantry
	"beans":         "canned/pantry",
	"black beans":   "canned/pantry",
	"chickpeas":     "canned/pantry",
	"tomato sauce":  "canned/pantry",
	"peanut butter": "canned/pantry",
	"soup":          "canned/pantry",
	"broth":         "canned/pantry",

	// bread/bakery
	"bread":      "bread/bakery",
	"bagels":     "bread/bakery",
	"tortillas":  "bread/bakery",
	"croissants": "bread/bakery",
	"buns":       "bread/bakery",

	// pasta/grains
	"pasta":     "pasta/grains",
	"spaghetti": "pasta/grains",
	"rice":      "pasta/grains",
	"quinoa":    "pasta/grains",
	"oats":      "pasta/grains",
	"oatmeal":   "pasta/grains",
	"cereal":    "pasta/grains",

	// deli
	"ham":          "deli",
	"salami":       "deli",
	"prosciutto":   "deli",
	"potato salad": "deli",

	// condiments/spices
	"ketchup":    "condiments/spices",
	"mustard":    "condiments/spices",
	"mayonnaise": "condiments/spices",
	"salt":       "condiments/spices",
	"pepper":     "condiments/spices",
	"cumin":      "condiments/spices",
	"paprika":    "condiments/spices",
	"soy sauce":  "condiments/spices",
	"hot sauce":  "condiments/spices",
	"olive oil":  "condiments/spices",

	// snacks
	"chips":    "snacks",
	"crackers": "snacks",
	"pretzels": "snacks",
	"popcorn":  "snacks",
	"cookies":  "snacks",
	"granola":  "snacks",

	// beverages
	"coffee": "beverages",
	"tea":    "beverages",
	"juice":  "beverages",
	"soda":   "beverages",
	"water":  "beverages",
	"beer":   "beverages",
	"wine":   "beverages",

	// baking
	"flour":           "baking",
	"sugar":           "baking",
	"baking soda":     "baking",
	"baking powder":   "baking",
	"yeast":           "baking",
	"vanilla":         "baking",
	"chocolate chips": "baking",

	// frozen
	"ice cream":         "frozen",
	"frozen pizza":      "frozen",
	"frozen vegetables": "frozen",

	// prepared foods
	"rotisserie chicken": "prepared foods",
	"sushi":              "prepared foods",

	// personal care
	"shampoo":    "personal care",
	"soap":       "personal care",
	"toothpaste": "personal care",
	"deodorant":  "personal care",
	"razors":     "personal care",

	// cleaning/household items
	"paper towels":      "cleaning/household items",
	"toilet paper":      "cleaning/household items",
	"dish soap":         "cleaning/household items",
	"laundry detergent": "cleaning/household items",
	"trash bags":        "cleaning/household items",
	"sponges":           "cleaning/household items",

	// pet care
	"dog food":   "pet care",
	"cat food":   "pet care",
	"cat litter": "pet care",
	"dog treats": "pet care",
}

type substringEntry struct {
	keyword  string
	category string
}

// Ordered with the more specific phrases first so "frozen chicken" lands in
// frozen rather than meat.
var substringMatches = []substringEntry{
	{"frozen", "frozen"},
	{"ice cream", "frozen"},

	{"dog", "pet care"},
	{"cat ", "pet care"},
	{"pet ", "pet care"},

	{"detergent", "cleaning/household items"},
	{"cleaner", "cleaning/household items"},
	{"wipes", "cleaning/household items"},
	{"paper towel", "cleaning/household items"},
	{"toilet paper", "cleaning/household items"},

	{"shampoo", "personal care"},
	{"conditioner", "personal care"},
	{"toothbrush", "personal care"},
	{"toothpaste", "personal care"},
	{"lotion", "personal care"},

	{"chicken breast", "meat"},
	{"chicken thigh", "meat"},
	{"ground beef", "meat"},
	{"ground turkey", "meat"},
	{"steak", "meat"},
	{"chicken", "meat"},
	{"beef", "meat"},
	{"pork", "meat"},
	{"bacon", "meat"},
	{"sausage", "meat"},

	{"salmon", "fish/seafood"},
	{"tuna", "fish/seafood"},
	{"shrimp", "fish/seafood"},
	{"fish", "fish/seafood"},

	{"deli", "deli"},

	{"yogurt", "dairy"},
	{"cheese", "dairy"},
	{"milk", "dairy"},
	{"cream", "dairy"},

	{"bread", "bread/bakery"},
	{"bagel", "bread/bakery"},
	{"tortilla", "bread/bakery"},
	{"muffin", "bread/bakery"},

	{"pasta", "pasta/grains"},
	{"noodle", "pasta/grains"},
	{"rice", "pasta/grains"},
	{"cereal", "pasta/grains"},

	{"canned", "canned/pantry"},
	{"beans", "canned/pantry"},
	{"soup", "canned/pantry"},

	{"sauce", "condiments/spices"},
	{"dressing", "condiments/spices"},
	{"spice", "condiments/spices"},
	{"seasoning", "condiments/spices"},
	{"oil", "condiments/spices"},
	{"vinegar", "condiments/spices"},

	{"chips", "snacks"},
	{"cracker", "snacks"},
	{"cookie", "snacks"},
	{"candy", "snacks"},
	{"chocolate", "snacks"},

	{"juice", "beverages"},
	{"soda", "beverages"},
	{"water", "beverages"},
	{"coffee", "beverages"},
	{"tea", "beverages"},

	{"flour", "baking"},
	{"sugar", "baking"},
	{"baking", "baking"},

	{"spinach", "vegetables"},
	{"salad", "vegetables"},
	{"vegetable", "vegetables"},

	{"berries", "fruits"},
	{"apple", "fruits"},
	{"banana", "fruits"},
	{"fruit", "fruits"},
}

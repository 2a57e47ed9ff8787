package extract

// Heuristic vocabularies for the generic extractor. Data, not control flow,
// so each table can be tested and extended independently.

// unitWords mark a list item as ingredient-like when present.
var unitWords = []string{
	"cup", "cups", "tablespoon", "tablespoons", "tbsp",
	"teaspoon", "teaspoons", "tsp", "pound", "pounds", "lb", "lbs",
	"ounce", "ounces", "oz", "gram", "grams", "kg", "ml", "liter", "litre",
	"pinch", "dash", "clove", "cloves", "quart", "pint", "stick", "can",
}

// foodWords mark a list item as ingredient-like even without a unit.
var foodWords = []string{
	"flour", "sugar", "salt", "pepper", "oil", "butter", "milk", "egg",
	"eggs", "cheese", "cream", "water", "garlic", "onion", "chicken",
	"beef", "pork", "fish", "rice", "pasta", "tomato", "lemon", "vanilla",
	"cinnamon", "honey", "yeast", "vinegar", "broth", "stock", "herb",
	"spice", "vegetable",
}

// actionVerbs mark text as instruction-like.
var actionVerbs = []string{
	"heat", "add", "mix", "stir", "cook", "bake", "fry", "boil", "simmer",
	"preheat", "place", "put", "combine", "blend", "whisk", "beat", "fold",
	"pour", "drain", "remove", "serve", "knead", "rest", "chill", "season",
	"slice", "chop", "dice", "melt", "roast", "grill", "cover", "transfer",
}

// skipPhrases reject navigation, category and metadata text that leaks into
// candidate lists on busy pages.
var skipPhrases = []string{
	"ingredients", "directions", "instructions", "method",
	"breakfast", "dinner", "lunch", "appetizers", "side dishes", "main dishes",
	"see all", "see more", "view all", "read more", "jump to",
	"vegetarian recipes", "vegan recipes", "gluten-free recipes",
	"categories", "tags", "cuisine", "difficulty",
	"cook time", "prep time", "total time", "servings", "yield",
	"nutrition", "calories", "cholesterol", "sodium",
	"submitted by", "recipe by", "photo by", "author",
	"review", "rating", "stars", "comments",
	"sign up", "subscribe", "newsletter", "follow us", "share",
	"advertisement", "sponsored",
	"privacy policy", "terms of use",
}

// instructionSkipPhrases is the narrower reject list for instruction
// candidates; "ingredients" headers and credit lines are the main offenders.
var instructionSkipPhrases = []string{
	"ingredients", "ingredient list",
	"submitted by", "recipe by", "author", "photo by",
	"review", "rating", "stars", "votes",
	"nutrition", "calories", "cholesterol", "sodium",
	"serves", "yield", "prep time", "cook time", "total time",
	"difficulty", "skill level",
	"sign up", "subscribe", "newsletter", "advertisement",
}

// imageSkipSubstrings reject site chrome and promotional images.
var imageSkipSubstrings = []string{
	"placeholder", "icon", "logo", "avatar", "profile", "spacer", "pixel",
	"promo", "advertisement", "banner", "header", "nav",
	"social", "facebook", "twitter", "instagram", "pinterest", "youtube",
	"subscribe", "newsletter", "signup", "login", "register", "account",
	"menu", "hamburger", "search", "cart", "shopping",
}

// Output caps bound pathological pages. The ingredient cap sits one below
// the exactly-20 generative-padding veto so a truncated deterministic list
// can never trip it.
const (
	maxIngredients  = 19
	maxInstructions = 30
)

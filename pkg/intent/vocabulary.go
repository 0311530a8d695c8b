package intent

// Keyword sets shared by the rule table and by handlers that need to re-read a message.
var (
	CartTerms = []string{
		"cart", "total", "remove", "delete", "show cart", "my cart", "view cart",
		"what's in my cart", "clear", "empty my cart",
	}

	AddVerbs = []string{
		"add", "order", "get", "buy", "want", "purchase",
		"i'll have", "i will have", "i'd like", "i would like", "give me", "can i have",
	}

	ConfirmVerbs = []string{
		"confirm", "place", "yes", "proceed", "checkout", "check out", "pay",
	}

	Affirmatives = []string{
		"sure", "ok", "okay", "yep", "yeah", "yup", "sounds good", "go ahead", "do it",
	}

	MenuTerms = []string{
		"menu", "recommend", "recommendation", "recommendations", "suggest", "suggestion",
		"options", "drinks", "available", "offer", "what do you have", "what's good",
		"what do you sell",
	}

	CultureTerms = []string{
		"coffee", "espresso", "latte", "cappuccino", "mocha", "americano", "brew",
		"pastry", "pastries", "croissant", "muffin", "toast", "food", "snack", "breakfast",
		"sweet", "strong", "caffeine", "decaf", "milk", "roast", "beans", "barista",
	}

	GreetingTerms = []string{
		"hello", "hi", "hey", "help", "greetings", "good morning", "good afternoon", "good evening",
	}
)

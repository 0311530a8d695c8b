package router

import "context"

const welcomeText = `Hello! Welcome to our café! ☕

I can help you:
• Browse the menu ("show me the menu")
• Get a recommendation ("recommend something sweet")
• Add items to your cart ("add a latte")
• Check your cart ("show my cart")
• Place your order ("confirm")

What can I get for you today?`

const clarifyText = `I'm not quite sure what you meant. Here are some things you can say:
• "show me the menu" or "what pastries do you have?"
• "add 2 lattes and a croissant"
• "remove the croissant"
• "show my cart"
• "confirm" to place your order

Could you rephrase that?`

// GreetingHandler welcomes the customer.
type GreetingHandler struct{}

func (GreetingHandler) Name() string { return HandlerGreeting }

func (GreetingHandler) Handle(ctx context.Context, env *Env, req *Request) (Reply, error) {
	return Reply{Text: welcomeText}, nil
}

// ClarifyHandler answers messages the classifier was not confident about.
type ClarifyHandler struct{}

func (ClarifyHandler) Name() string { return HandlerClarify }

func (ClarifyHandler) Handle(ctx context.Context, env *Env, req *Request) (Reply, error) {
	return Reply{Text: clarifyText, Features: []string{"clarification"}}, nil
}

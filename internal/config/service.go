package config

type ServiceConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`

	Stripe  StripeConfig  `mapstructure:"stripe"`
	BotHelp BotHelpConfig `mapstructure:"bothelp"`

	// ForwardURL is an optional secondary endpoint that receives a copy of
	// every verified event, best-effort.
	ForwardURL string `mapstructure:"forward_url"`

	// PaymentLinks maps a language code to a Stripe payment-link code and
	// checkout locale for the /pay redirect.
	PaymentLinks map[string]PaymentLink `mapstructure:"payment_links"`
}

type StripeConfig struct {
	SecretKey     string `mapstructure:"secret_key" validate:"required"`
	WebhookSecret string `mapstructure:"webhook_secret" validate:"required"`
}

type BotHelpConfig struct {
	APIBase      string `mapstructure:"api_base" validate:"required,url"`
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	Tag          string `mapstructure:"tag" validate:"required"`
}

type PaymentLink struct {
	// Code is the path segment after buy.stripe.com/.
	Code string `mapstructure:"code"`
	// Locale is passed to Stripe checkout as the locale query parameter.
	Locale string `mapstructure:"locale"`
}

package config

import "time"

type Config struct {
	Environment Environment
	Log         Log
	HTTP        HTTPServer
	API         API
	Session     Session
	Checkout    Checkout

	CartStore CartStore `envPrefix:"CART_STORE_"`
	Paypal    Paypal    `envPrefix:"PAYPAL_"`
	BrainTree Braintree `envPrefix:"BRAINTREE_"`
	Kafka     Kafka     `envPrefix:"KAFKA_"`
}

type Environment struct {
	Name string `env:"ENVIRONMENT" envDefault:"development"`
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type HTTPServer struct {
	Host string `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port string `env:"HTTP_PORT" envDefault:"8080"`
}

// API is the product/order/inventory backend the storefront consumes.
type API struct {
	URL       string        `env:"API_URL" envDefault:"http://localhost:5000/api"`
	Timeout   time.Duration `env:"API_TIMEOUT" envDefault:"10s"`
	RateLimit float64       `env:"API_RATE_LIMIT" envDefault:"0"` // requests per second, 0 disables
}

type CartStore struct {
	Driver    string        `env:"DRIVER" envDefault:"sqlite"` // sqlite, mysql or redis
	DSN       string        `env:"DSN" envDefault:"storefront.db"`
	RedisAddr string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	TTL       time.Duration `env:"TTL" envDefault:"720h"`
}

type Session struct {
	Secret        string        `env:"SESSION_SECRET" envDefault:"change-me"`
	Cookie        string        `env:"SESSION_COOKIE" envDefault:"storefront_session"`
	MaxAge        time.Duration `env:"SESSION_MAX_AGE" envDefault:"720h"`
	Secure        bool          `env:"SESSION_SECURE" envDefault:"false"`
	DefaultUserID int64         `env:"SESSION_DEFAULT_USER_ID" envDefault:"1"`
	IdleTimeout   time.Duration `env:"SESSION_IDLE_TIMEOUT" envDefault:"30m"` // checkout flows idle longer are dropped
}

type Checkout struct {
	Provider       string        `env:"PAYMENT_PROVIDER" envDefault:"paypal"`
	RedirectDelay  time.Duration `env:"CHECKOUT_REDIRECT_DELAY" envDefault:"2s"`
	SubmitTimeout  time.Duration `env:"CHECKOUT_SUBMIT_TIMEOUT" envDefault:"15s"`
	PublishTimeout time.Duration `env:"CHECKOUT_PUBLISH_TIMEOUT" envDefault:"5s"`
}

type Paypal struct {
	BaseApiURL   string `env:"BASE_API_URL" envDefault:"https://api-m.sandbox.paypal.com"`
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
	Currency     string `env:"CURRENCY" envDefault:"USD"`
}

type Braintree struct {
	Environment string `env:"ENVIRONMENT"`
	MerchantID  string `env:"MERCHANT_ID"`
	PublicKey   string `env:"PUBLIC_KEY"`
	PrivateKey  string `env:"PRIVATE_KEY"`
}

type Kafka struct {
	Brokers      []string      `env:"BROKERS" envSeparator:","`
	Topic        string        `env:"TOPIC" envDefault:"storefront.checkout"`
	WriteTimeout time.Duration `env:"WRITE_TIMEOUT" envDefault:"5s"`
	BatchTimeout time.Duration `env:"BATCH_TIMEOUT" envDefault:"10ms"` // one event per order, don't wait for a full batch
}

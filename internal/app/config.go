package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/cszshop/checkout-api/internal/domain/checkout"
	"github.com/cszshop/checkout-api/internal/domain/pricing"
)

// Config holds the complete application configuration, loadable from
// environment variables (CSZ_ prefix), flags, or YAML config files.
type Config struct {
	Addr      string `default:"0.0.0.0:8080" usage:"API server listen address"`
	Store     StoreConfig
	Gateway   GatewayConfig
	Checkout  CheckoutConfig
	Shipping  ShippingConfig
	VATRate   string `default:"0.27" usage:"VAT rate as a decimal fraction" flag:"vat-rate"`
	Bank      BankConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
	Graceful  GracefulConfig
}

// StoreConfig points at the headless commerce backend that owns products,
// coupons, and orders.
type StoreConfig struct {
	BaseURL string `usage:"Base URL of the commerce backend API (CSZ_STORE_BASE_URL)" flag:"store-base-url"`
	Token   string `usage:"Bearer token for the commerce backend" flag:"store-token"`
}

// GatewayConfig points at the hosted payment gateway.
type GatewayConfig struct {
	BaseURL   string `usage:"Base URL of the payment gateway API" flag:"gateway-base-url"`
	SecretKey string `usage:"Secret API key for the payment gateway (CSZ_GATEWAY_SECRET_KEY)" flag:"gateway-secret-key"`
}

// CheckoutConfig holds per-session parameters for the card flow.
type CheckoutConfig struct {
	Currency   string        `default:"huf" usage:"Payment session currency"`
	Locale     string        `default:"hu"  usage:"Payment session locale"`
	ReturnURL  string        `usage:"URL the gateway redirects to after payment" flag:"return-url"`
	AttemptTTL time.Duration `default:"30m" usage:"Retention of memoized checkout attempts" flag:"attempt-ttl"`
}

// ShippingConfig is the shipping fee table in integer HUF and kilograms.
type ShippingConfig struct {
	BaseRate              int64 `default:"1990"  usage:"Flat shipping fee" flag:"shipping-base-rate"`
	WeightThresholdKg     int64 `default:"5"     usage:"Weight included in the flat fee" flag:"shipping-weight-threshold"`
	SurchargePerKg        int64 `default:"500"   usage:"Surcharge per started kg above the threshold" flag:"shipping-surcharge"`
	FreeShippingThreshold int64 `default:"50000" usage:"Discounted subtotal above which shipping is free" flag:"free-shipping-threshold"`
}

// BankConfig is the static receiving account returned on bank-transfer
// orders.
type BankConfig struct {
	AccountHolder string `default:"CSZ Tűzvédelem Kft." usage:"Bank account holder name" flag:"bank-account-holder"`
	BankName      string `default:"OTP Bank"            usage:"Receiving bank name" flag:"bank-name"`
	IBAN          string `default:"HU42117730161111101800000000" usage:"Receiving IBAN" flag:"bank-iban"`
	BIC           string `default:"OTPVHUHB"            usage:"Receiving BIC/SWIFT" flag:"bank-bic"`
}

// RedisConfig enables the shared attempt store when Addr is set; otherwise
// checkout attempts are memoized in process memory.
type RedisConfig struct {
	Addr     string `usage:"Redis address for the shared attempt store (empty = in-memory)" flag:"redis-addr"`
	Password string `usage:"Redis password" flag:"redis-password"`
	DB       int    `default:"0" usage:"Redis database number" flag:"redis-db"`
}

// RateLimitConfig controls the per-client sliding window rate limiter.
type RateLimitConfig struct {
	Max    int           `default:"100" usage:"Max requests per window"`
	Window time.Duration `default:"1m"  usage:"Rate limit window duration"`
}

// CORSConfig controls Cross-Origin Resource Sharing headers.
type CORSConfig struct {
	Origins          []string `default:"*" usage:"Allowed CORS origins"`
	AllowCredentials bool     `default:"false" usage:"Allow credentials (cookies, auth headers)" flag:"cors-credentials"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from environment variables, YAML config
// files, and applies platform-specific defaults.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "CSZ",
		Files:     []string{"config.yaml", "/etc/csz/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if cfg.Store.BaseURL == "" {
		return nil, errors.New("store base URL is required: set CSZ_STORE_BASE_URL")
	}
	if cfg.Gateway.BaseURL == "" || cfg.Gateway.SecretKey == "" {
		return nil, errors.New("gateway base URL and secret key are required: set CSZ_GATEWAY_BASE_URL and CSZ_GATEWAY_SECRET_KEY")
	}

	return &cfg, nil
}

// applyPlatformDefaults maps platform-provided environment variables (Railway,
// Render, etc.) that use standard names like PORT and REDIS_ADDR to the
// application's CSZ_-prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	if port := os.Getenv("PORT"); port != "" && c.Addr == "0.0.0.0:8080" {
		c.Addr = "0.0.0.0:" + port
	}
	if c.Redis.Addr == "" {
		if v := os.Getenv("REDIS_ADDR"); v != "" {
			c.Redis.Addr = v
		}
	}
}

// shippingPolicy converts the integer config values into the decimal fee
// table used by the calculator.
func (c *Config) shippingPolicy() pricing.ShippingPolicy {
	return pricing.ShippingPolicy{
		BaseRate:              decimal.NewFromInt(c.Shipping.BaseRate),
		WeightThresholdKg:     decimal.NewFromInt(c.Shipping.WeightThresholdKg),
		SurchargePerKg:        decimal.NewFromInt(c.Shipping.SurchargePerKg),
		FreeShippingThreshold: decimal.NewFromInt(c.Shipping.FreeShippingThreshold),
	}
}

func (c *Config) vatRate() (decimal.Decimal, error) {
	rate, err := decimal.NewFromString(c.VATRate)
	if err != nil {
		return decimal.Decimal{}, errors.Wrap(err, "parse VAT rate")
	}
	if rate.IsNegative() || rate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return decimal.Decimal{}, errors.Errorf("VAT rate %s out of range [0, 1)", rate)
	}
	return rate, nil
}

func (c *Config) checkoutConfig() checkout.Config {
	return checkout.Config{
		Currency:  c.Checkout.Currency,
		Locale:    c.Checkout.Locale,
		ReturnURL: c.Checkout.ReturnURL,
		Bank: checkout.BankAccount{
			AccountHolder: c.Bank.AccountHolder,
			BankName:      c.Bank.BankName,
			IBAN:          c.Bank.IBAN,
			BIC:           c.Bank.BIC,
		},
	}
}

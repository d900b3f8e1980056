package generator

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

// Label keys present on every Record
const (
	LabelService  = "service"
	LabelLevel    = "level"
	LabelCurrency = "currency"
	LabelUserID   = "user_id"
	LabelAction   = "action"
)

var (
	Currencies = []string{"BTC", "ETH", "SOL", "USDT", "XRP", "DOT", "ADA"}
	Actions    = []string{"buy", "sell", "deposit", "withdraw", "login", "api_call", "order_cancel"}
	Services   = []string{"trading-engine", "wallet-service", "auth-service", "market-data", "risk-monitor"}
	Levels     = []string{LevelInfo, LevelWarn, LevelError}

	LevelWeights = []int{12, 3, 1}

	APIEndpoints = []string{"/v1/ticker", "/v1/order", "/v1/balance", "/v2/trades"}
	ErrorReasons = []string{"Timeout", "Insufficient balance", "Invalid API key", "Rate limit", "Network failure"}
)

// A Record is one synthetic exchange event, ready to ship
type Record struct {
	Message string
	Labels  map[string]string
}

// Level is a shortcut for the level label
func (r *Record) Level() string {
	return r.Labels[LabelLevel]
}

// event holds the drawn fields a message template can refer to
type event struct {
	UserID   string
	Currency string
	Action   string
}

type templateFunc func(g *Generator, ev *event) string

// One template per action. Anything missing here falls back to
// genericMessage.
var templates = map[string]templateFunc{
	"login": func(g *Generator, ev *event) string {
		ip := fmt.Sprintf("192.168.%d.%d", g.rnd.Intn(256), 1+g.rnd.Intn(254))
		return fmt.Sprintf("User %s logged in from %s", ev.UserID, ip)
	},
	"buy":  tradeMessage,
	"sell": tradeMessage,
	"deposit": func(g *Generator, ev *event) string {
		amount := g.amount(50, 20000, 2)
		return fmt.Sprintf("Deposit of $%s received for %s", amount, ev.Currency)
	},
	"withdraw": func(g *Generator, ev *event) string {
		amount := g.amount(30, 10000, 2)
		return fmt.Sprintf("Withdrawal of $%s initiated for %s", amount, ev.Currency)
	},
	"api_call": func(g *Generator, ev *event) string {
		return fmt.Sprintf("API call to %s by %s", g.pick(APIEndpoints), ev.UserID)
	},
	"order_cancel": func(g *Generator, ev *event) string {
		orderID := fmt.Sprintf("ord_%d", g.intBetween(100000, 999999))
		return fmt.Sprintf("Order %s cancelled by %s", orderID, ev.UserID)
	},
}

func tradeMessage(g *Generator, ev *event) string {
	amount := g.amount(0.001, 10.0, g.intBetween(2, 6))
	price := decimal.NewFromFloat(g.uniform(10000, 70000)).Round(2)

	return fmt.Sprintf("%s %s %s at $%s",
		strings.ToUpper(ev.Action), amount, ev.Currency, price.StringFixed(2),
	)
}

func genericMessage(ev *event) string {
	return fmt.Sprintf("Action '%s' performed", ev.Action)
}

// A Generator fabricates Records from the fixed vocabularies. It is not safe
// for concurrent use because it owns a single rand.Rand.
type Generator struct {
	rnd    *rand.Rand
	levels *WeightedChoice
}

// NewGenerator returns a Generator drawing from rnd. A nil rnd gets a source
// seeded from the clock.
func NewGenerator(rnd *rand.Rand) *Generator {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	levels, err := NewWeightedChoice(Levels, LevelWeights)
	if err != nil {
		// The level table is static, this can only be a programming error
		panic(err)
	}

	return &Generator{rnd: rnd, levels: levels}
}

// Generate draws a new Record
func (g *Generator) Generate() *Record {
	ev := &event{
		UserID:   fmt.Sprintf("user_%d", g.intBetween(10000, 99999)),
		Currency: g.pick(Currencies),
		Action:   g.pick(Actions),
	}
	service := g.pick(Services)
	level := g.levels.Pick(g.rnd)

	message := g.messageFor(ev)

	// Error framing applies on top of whatever template was used
	if level == LevelError {
		message = fmt.Sprintf("ERROR: %s | %s", message, g.pick(ErrorReasons))
	}

	return &Record{
		Message: message,
		Labels: map[string]string{
			LabelService:  service,
			LabelLevel:    level,
			LabelCurrency: ev.Currency,
			LabelUserID:   ev.UserID,
			LabelAction:   ev.Action,
		},
	}
}

func (g *Generator) messageFor(ev *event) string {
	if tmpl, ok := templates[ev.Action]; ok {
		return tmpl(g, ev)
	}

	return genericMessage(ev)
}

func (g *Generator) pick(from []string) string {
	return from[g.rnd.Intn(len(from))]
}

// intBetween is inclusive at both ends
func (g *Generator) intBetween(low, high int) int {
	return low + g.rnd.Intn(high-low+1)
}

func (g *Generator) uniform(low, high float64) float64 {
	return low + (high-low)*g.rnd.Float64()
}

// amount draws a uniform value and renders it rounded to places, in the
// shortest form that keeps a fractional part: 12.5 not 12.50, 12.0 not 12.
func (g *Generator) amount(low, high float64, places int) string {
	rendered := decimal.NewFromFloat(g.uniform(low, high)).Round(int32(places)).String()
	if !strings.Contains(rendered, ".") {
		rendered += ".0"
	}

	return rendered
}

package risk

import (
	"errors"
	"fmt"
	"strings"
)

// Strategy identifies the integration that produced a trade.
type Strategy int

const (
	StrategyUnknown Strategy = iota
	SmartMoney
	Arbitrage
	DipArb
	Direct
)

var ErrUnknownStrategy = errors.New("unknown strategy")

var strategyNames = map[Strategy]string{
	SmartMoney: "smartMoney",
	Arbitrage:  "arbitrage",
	DipArb:     "dipArb",
	Direct:     "direct",
}

// Strategies returns every recognized strategy in a stable order.
func Strategies() []Strategy {
	return []Strategy{SmartMoney, Arbitrage, DipArb, Direct}
}

func (s Strategy) String() string {
	if n, ok := strategyNames[s]; ok {
		return n
	}
	return "unknown"
}

// Valid reports whether s is one of the recognized strategies.
func (s Strategy) Valid() bool {
	_, ok := strategyNames[s]
	return ok
}

// ParseStrategy maps a tag such as "arbitrage" or "dipArb" to a Strategy.
// Matching is case-insensitive.
func ParseStrategy(tag string) (Strategy, error) {
	tag = strings.TrimSpace(tag)
	for s, n := range strategyNames {
		if strings.EqualFold(n, tag) {
			return s, nil
		}
	}
	return StrategyUnknown, fmt.Errorf("%w: %q", ErrUnknownStrategy, tag)
}

func (s Strategy) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Strategy) UnmarshalText(b []byte) error {
	v, err := ParseStrategy(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

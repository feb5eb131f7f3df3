package patient

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"stroke-mcs/internal/geography"
)

var ErrStrategyMismatch = errors.New("center does not support strategy")

// Kind is the closed set of routing strategies. Every switch over Kind must handle all three
// values and panic in the default branch.
type Kind int

const (
	KindPrimary Kind = iota
	KindComprehensive
	KindDripAndShip
)

func (k Kind) String() string {
	switch k {
	case KindPrimary:
		return "Primary"
	case KindComprehensive:
		return "Comprehensive"
	case KindDripAndShip:
		return "Drip and Ship"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind accepts the labels produced by Kind.String.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "Primary", "primary":
		return KindPrimary, nil
	case "Comprehensive", "comprehensive":
		return KindComprehensive, nil
	case "Drip and Ship", "drip_and_ship", "dripAndShip":
		return KindDripAndShip, nil
	default:
		return 0, fmt.Errorf("unknown strategy kind %q", s)
	}
}

// Strategy is comparable and usable as a map key; equality is (kind, center id).
type Strategy struct {
	Kind   Kind
	Center geography.CenterID
}

// NewStrategy validates that the center's type and transfer route fit the kind.
func NewStrategy(reg *geography.Registry, kind Kind, id geography.CenterID) (Strategy, error) {
	c, err := reg.Get(id)
	if err != nil {
		return Strategy{}, err
	}
	switch kind {
	case KindPrimary:
		if !c.IsPrimary() {
			return Strategy{}, fmt.Errorf("%w: %s strategy needs a primary center, %q is %s", ErrStrategyMismatch, kind, c.ShortName, c.Type)
		}
	case KindComprehensive:
		if !c.IsComprehensive() {
			return Strategy{}, fmt.Errorf("%w: %s strategy needs a comprehensive center, %q is %s", ErrStrategyMismatch, kind, c.ShortName, c.Type)
		}
	case KindDripAndShip:
		if !c.IsPrimary() {
			return Strategy{}, fmt.Errorf("%w: %s strategy needs a primary center, %q is %s", ErrStrategyMismatch, kind, c.ShortName, c.Type)
		}
		if _, ok := c.Transfer(); !ok {
			return Strategy{}, fmt.Errorf("%w: %q has no transfer destination", ErrStrategyMismatch, c.ShortName)
		}
	default:
		return Strategy{}, fmt.Errorf("%w: unknown kind %d", ErrStrategyMismatch, int(kind))
	}
	return Strategy{Kind: kind, Center: id}, nil
}

func (s Strategy) String() string {
	return fmt.Sprintf("%s #%d", s.Kind, s.Center)
}

// MarshalText encodes the strategy as "kind:id", e.g. "comprehensive:2", so it can key JSON objects.
func (s Strategy) MarshalText() ([]byte, error) {
	var kind string
	switch s.Kind {
	case KindPrimary:
		kind = "primary"
	case KindComprehensive:
		kind = "comprehensive"
	case KindDripAndShip:
		kind = "drip_and_ship"
	default:
		return nil, fmt.Errorf("unknown strategy kind %d", int(s.Kind))
	}
	return []byte(kind + ":" + strconv.Itoa(int(s.Center))), nil
}

func (s *Strategy) UnmarshalText(text []byte) error {
	kindText, idText, ok := strings.Cut(string(text), ":")
	if !ok {
		return fmt.Errorf("strategy %q: want kind:id", text)
	}
	kind, err := ParseKind(kindText)
	if err != nil {
		return err
	}
	id, err := strconv.Atoi(idText)
	if err != nil {
		return fmt.Errorf("strategy %q: %w", text, err)
	}
	*s = Strategy{Kind: kind, Center: geography.CenterID(id)}
	return nil
}

// Less orders strategies by kind, then center id.
func (s Strategy) Less(o Strategy) bool {
	if s.Kind != o.Kind {
		return s.Kind < o.Kind
	}
	return s.Center < o.Center
}

// Label renders the strategy with center names, e.g. "Drip and Ship (Primary 1 to Comprehensive)".
func (s Strategy) Label(reg *geography.Registry) string {
	c, err := reg.Get(s.Center)
	if err != nil {
		return fmt.Sprintf("%s (#%d)", s.Kind, s.Center)
	}
	switch s.Kind {
	case KindPrimary, KindComprehensive:
		return fmt.Sprintf("%s (%s)", s.Kind, c.ShortName)
	case KindDripAndShip:
		tr, ok := c.Transfer()
		if !ok {
			return fmt.Sprintf("%s (%s)", s.Kind, c.ShortName)
		}
		dest, err := reg.Get(tr.Destination)
		if err != nil {
			return fmt.Sprintf("%s (%s)", s.Kind, c.ShortName)
		}
		return fmt.Sprintf("%s (%s to %s)", s.Kind, c.ShortName, dest.ShortName)
	default:
		panic(fmt.Sprintf("patient: unhandled strategy kind %d", int(s.Kind)))
	}
}
